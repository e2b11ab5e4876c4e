package media

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	framePrefix = "frame_"
	gridPrefix  = "grid_"
)

var frameNameRe = regexp.MustCompile(`^frame_(\d{2})_(\d{2})\.jpg$`)

// FrameFileName 按 frame_MM_SS.jpg 约定生成帧文件名,分钟为累计分钟数。
func FrameFileName(seconds int) string {
	return fmt.Sprintf("frame_%02d_%02d.jpg", seconds/60, seconds%60)
}

// ParseFrameSeconds 从帧文件名解析出采样时间戳(秒),不符合命名约定时返回 false。
func ParseFrameSeconds(name string) (int, bool) {
	matches := frameNameRe.FindStringSubmatch(filepath.Base(name))
	if matches == nil {
		return 0, false
	}
	mm, _ := strconv.Atoi(matches[1])
	ss, _ := strconv.Atoi(matches[2])
	return mm*60 + ss, true
}

// ListFrames 列出目录中符合帧命名约定的文件,按时间戳升序返回完整路径。
// 采样和拼图之间正常以内存列表交接,这里是只剩落盘产物时的恢复通道,
// 混入的陈旧文件与子目录都会被跳过。目录不存在时返回空列表。
func ListFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := ParseFrameSeconds(entry.Name()); !ok {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	SortFramesByTime(paths)
	return paths, nil
}

// SortFramesByTime 按文件名里的时间戳把帧路径升序排序,
// 无法解析的文件排在末尾,同名冲突按路径字典序兜底。
func SortFramesByTime(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		si, oki := ParseFrameSeconds(paths[i])
		sj, okj := ParseFrameSeconds(paths[j])
		if oki != okj {
			return oki
		}
		if si != sj {
			return si < sj
		}
		return paths[i] < paths[j]
	})
}

// ClearStaleOutputs 删除目录中上一次运行留下的同前缀输出文件,
// 避免把不同视频的产物混在一起。目录不存在时视作已清空。
func ClearStaleOutputs(dir, prefix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if err = os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
