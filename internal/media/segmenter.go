package media

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/appdirs"
	"github.com/Acclerate/BiliNote/internal/storage"
	"github.com/Acclerate/BiliNote/log"
)

// PlannedSegments 计算按 segmentSec 切分的分段数,等价于 ceil(duration/segmentSec)。
func PlannedSegments(duration float64, segmentSec int) int {
	if segmentSec <= 0 || duration <= 0 {
		return 0
	}
	if duration <= float64(segmentSec) {
		return 1
	}
	n := int(duration / float64(segmentSec))
	if duration > float64(n*segmentSec) {
		n++
	}
	return n
}

// SplitByDuration 把长媒体按固定时长切成连续分段,流复制不转码,
// 分段命名为 {原名}_part{两位序号}{原扩展名},最后一段只覆盖剩余时长。
// 时长不超过 segmentSec 时直接返回输入路径,避免无意义的切分。
// 失败策略为 soft-fail:任何一步出错都记录日志并退回 [inputPath],不向调用方抛错。
// outputDir 为空时使用输入文件同级的 segments 子目录。
func SplitByDuration(inputPath, outputDir string, segmentSec int) []string {
	fallback := []string{inputPath}
	if segmentSec <= 0 {
		return fallback
	}

	duration, err := Duration(inputPath)
	if err != nil {
		log.GetLogger().Error("媒体分段失败",
			zap.Error(err),
			zap.String("media file", inputPath),
			zap.Stringer("policy", SplitPolicy))
		return fallback
	}
	if duration <= float64(segmentSec) {
		log.GetLogger().Info("媒体时长不超过分段阈值,无需分段",
			zap.Float64("duration", duration),
			zap.Int("threshold", segmentSec))
		return fallback
	}

	if outputDir == "" {
		outputDir = filepath.Join(filepath.Dir(inputPath), appdirs.SegmentDirName)
	}
	if err = os.MkdirAll(outputDir, 0755); err != nil {
		log.GetLogger().Error("创建分段目录失败",
			zap.Error(err),
			zap.String("dir", outputDir),
			zap.Stringer("policy", SplitPolicy))
		return fallback
	}

	ext := filepath.Ext(inputPath)
	name := strings.TrimSuffix(filepath.Base(inputPath), ext)
	numSegments := PlannedSegments(duration, segmentSec)
	log.GetLogger().Info("开始媒体分段",
		zap.String("media file", inputPath),
		zap.Float64("duration", duration),
		zap.Int("segments", numSegments))

	segmentPaths := make([]string, 0, numSegments)
	for i := 0; i < numSegments; i++ {
		start := i * segmentSec
		outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_part%02d%s", name, i+1, ext))
		cmdArgs := []string{
			"-i", inputPath,
			"-ss", strconv.Itoa(start),
			"-t", strconv.Itoa(segmentSec),
			"-c", "copy",
			"-y",
			outputPath,
		}
		cmd := exec.Command(storage.FfmpegPath, cmdArgs...)
		output, err := cmd.CombinedOutput()
		if err != nil {
			log.GetLogger().Error("媒体分段失败,退回原始文件",
				zap.Error(err),
				zap.Int("segment", i+1),
				zap.String("output", string(output)),
				zap.Stringer("policy", SplitPolicy))
			return fallback
		}
		segmentPaths = append(segmentPaths, outputPath)
		log.GetLogger().Info("分段完成",
			zap.Int("segment", i+1),
			zap.Int("total", numSegments),
			zap.String("output", outputPath))
	}
	return segmentPaths
}
