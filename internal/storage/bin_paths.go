package storage

import (
	"os/exec"
	"path/filepath"
	"strings"
)

// 外部解码器路径。启动时由配置显式下发，组件通过这里取用，
// 不读写进程环境变量。
var (
	FfmpegPath  = "ffmpeg"
	FfprobePath = "ffprobe"
)

// ApplyConfiguredBinPaths threads the configured decoder locations into the
// package vars. Empty values keep the bare command names for PATH lookup.
func ApplyConfiguredBinPaths(ffmpegPath, ffprobePath string) {
	if resolved, ok := resolveBinaryPath(ffmpegPath); ok {
		FfmpegPath = resolved
	}
	if resolved, ok := resolveBinaryPath(ffprobePath); ok {
		FfprobePath = resolved
	}
}

func resolveBinaryPath(configuredPath string) (string, bool) {
	cleaned := strings.TrimSpace(configuredPath)
	if cleaned == "" {
		return "", false
	}

	if resolved, err := exec.LookPath(cleaned); err == nil {
		return resolved, true
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return "", false
	}
	return absPath, true
}
