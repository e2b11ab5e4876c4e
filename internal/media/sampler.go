package media

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Acclerate/BiliNote/internal/storage"
	"github.com/Acclerate/BiliNote/log"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
)

// SampleOptions 控制帧采样行为。
type SampleOptions struct {
	IntervalSec int // 相邻两帧的时间间隔(秒)
	MaxFrames   int // 单次采样的帧数上限,0 表示不设上限
	Workers     int // 并行抽帧的进程数,0 表示逐帧串行
}

// PlanTimestamps 计算采样时间戳序列:0, interval, 2*interval ...,
// 严格小于 floor(duration),超出 maxFrames 的部分从尾部截断。
func PlanTimestamps(duration float64, intervalSec, maxFrames int) []int {
	if intervalSec <= 0 || duration <= 0 {
		return nil
	}
	limit := int(duration)
	timestamps := make([]int, 0, limit/intervalSec+1)
	for ts := 0; ts < limit; ts += intervalSec {
		timestamps = append(timestamps, ts)
	}
	if maxFrames > 0 && len(timestamps) > maxFrames {
		timestamps = timestamps[:maxFrames]
	}
	return timestamps
}

// ExtractFrames 按固定间隔从视频中抽取静帧,写入 frameDir 并按采样顺序返回帧路径。
// 写入前会清掉目录里上一次运行的帧文件。失败策略为 fail-fast:
// 任何一帧抽取失败都会中止整个操作,不返回部分结果。
func ExtractFrames(ctx context.Context, videoPath, frameDir string, opts SampleOptions) ([]string, error) {
	duration, err := Duration(videoPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMediaProcessing, "视频处理失败 Media processing failed", err)
	}
	if err = os.MkdirAll(frameDir, 0755); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMediaProcessing, "视频处理失败 Media processing failed", err)
	}
	if err = ClearStaleOutputs(frameDir, framePrefix); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMediaProcessing, "视频处理失败 Media processing failed", err)
	}

	timestamps := PlanTimestamps(duration, opts.IntervalSec, opts.MaxFrames)
	log.GetLogger().Info("开始提取视频帧",
		zap.String("video", videoPath),
		zap.Float64("duration", duration),
		zap.Int("interval", opts.IntervalSec),
		zap.Int("frames", len(timestamps)))

	framePaths := make([]string, len(timestamps))
	g, gctx := errgroup.WithContext(ctx)
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, ts := range timestamps {
		i, ts := i, ts // per-iteration copies; required for pre-1.22 loop semantics
		g.Go(func() error {
			outputPath := filepath.Join(frameDir, FrameFileName(ts))
			if err := extractSingleFrame(gctx, videoPath, ts, outputPath); err != nil {
				return err
			}
			framePaths[i] = outputPath
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		log.GetLogger().Error("提取视频帧失败",
			zap.Error(err),
			zap.String("video", videoPath),
			zap.Stringer("policy", SamplePolicy))
		return nil, apperrors.Wrap(apperrors.CodeMediaProcessing, "视频处理失败 Media processing failed", err)
	}
	return framePaths, nil
}

// CaptureFrame 截取指定时间点的单帧,用于笔记正文里的画面插图。
func CaptureFrame(ctx context.Context, videoPath string, seconds int, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return apperrors.Wrap(apperrors.CodeFrameExtract, "视频截图失败 Frame extraction failed", err)
	}
	return extractSingleFrame(ctx, videoPath, seconds, outputPath)
}

func extractSingleFrame(ctx context.Context, videoPath string, seconds int, outputPath string) error {
	cmdArgs := []string{
		"-ss", strconv.Itoa(seconds),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y", outputPath,
		"-hide_banner",
		"-loglevel", "error",
	}
	cmd := exec.CommandContext(ctx, storage.FfmpegPath, cmdArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.GetLogger().Error("截取视频帧失败",
			zap.Error(err),
			zap.Int("timestamp", seconds),
			zap.String("video", videoPath),
			zap.String("output", string(output)))
		return apperrors.Wrap(apperrors.CodeFrameExtract, "视频截图失败 Frame extraction failed", err)
	}
	return nil
}
