package util

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatClock 把秒数格式化成 MM:SS,分钟为累计分钟数,超过一小时不回绕
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ParseClock 解析 MM:SS 形式的时间戳,返回对应的秒数
func ParseClock(clock string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", clock)
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock minutes %q", clock)
	}
	secs, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock seconds %q", clock)
	}
	if minutes < 0 || secs < 0 || secs > 59 {
		return 0, fmt.Errorf("clock %q out of range", clock)
	}
	return float64(minutes*60 + secs), nil
}
