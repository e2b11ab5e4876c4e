package media

import (
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/storage"
	"github.com/Acclerate/BiliNote/log"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
)

// probeDuration 可在测试中替换,避免依赖真实的 ffprobe。
var probeDuration = ffprobeDuration

// 任务媒体文件写入后不会再修改,同一路径只探测一次。
var durationCache sync.Map

// Duration 探测媒体文件的容器时长(秒)。
func Duration(mediaPath string) (float64, error) {
	key := mediaPath
	if abs, err := filepath.Abs(mediaPath); err == nil {
		key = abs
	}
	if cached, ok := durationCache.Load(key); ok {
		return cached.(float64), nil
	}
	duration, err := probeDuration(mediaPath)
	if err != nil {
		return 0, err
	}
	durationCache.Store(key, duration)
	return duration, nil
}

func ffprobeDuration(mediaPath string) (float64, error) {
	cmdArgs := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mediaPath,
	}
	cmd := exec.Command(storage.FfprobePath, cmdArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.GetLogger().Error("探测媒体时长失败", zap.Error(err), zap.String("media file", mediaPath), zap.String("output", string(output)))
		return 0, apperrors.Wrap(apperrors.CodeMediaProbe, "视频探测失败 Media probe failed", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		log.GetLogger().Error("解析媒体时长失败", zap.Error(err), zap.String("media file", mediaPath), zap.String("output", string(output)))
		return 0, apperrors.Wrap(apperrors.CodeMediaProbe, "视频探测失败 Media probe failed", err)
	}
	return duration, nil
}
