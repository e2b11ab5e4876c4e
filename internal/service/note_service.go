package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/config"
	"github.com/Acclerate/BiliNote/internal/appdirs"
	"github.com/Acclerate/BiliNote/internal/dto"
	"github.com/Acclerate/BiliNote/internal/media"
	"github.com/Acclerate/BiliNote/internal/storage"
	"github.com/Acclerate/BiliNote/internal/types"
	"github.com/Acclerate/BiliNote/log"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
	"github.com/Acclerate/BiliNote/pkg/util"
)

// StartNoteTask 校验请求、持久化任务并投递执行,立即返回任务 id。
func (s *Service) StartNoteTask(req dto.CreateNoteTaskReq) (*dto.CreateNoteTaskResData, error) {
	if strings.TrimSpace(req.VideoPath) == "" && strings.TrimSpace(req.VideoUrl) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "需要 video_path 或 video_url Video path or URL is required")
	}

	// 片段入参在此处一次性归一化,之后全程使用定型结构
	segments, err := types.NormalizeSegments(req.Segments)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidParams, "转写片段不合法 Invalid transcript segments", err)
	}
	if len(segments) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "转写片段为空 Transcript segments are empty")
	}

	source := types.NoteSource{
		Title:      req.Title,
		Tags:       req.Tags,
		Segments:   segments,
		Formats:    req.Formats,
		Style:      req.Style,
		Extras:     req.Extras,
		Screenshot: req.Screenshot,
		Link:       req.Link,
	}
	sourceJson, err := json.Marshal(source)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err)
	}

	task := &types.NoteTask{
		TaskId:       uuid.NewString(),
		Title:        req.Title,
		VideoPath:    strings.TrimSpace(req.VideoPath),
		VideoUrl:     strings.TrimSpace(req.VideoUrl),
		ProviderId:   req.ProviderId,
		Model:        req.Model,
		Status:       types.NoteTaskStatusPending,
		StatusMsg:    "排队中 Queued",
		SourceJson:   string(sourceJson),
		SegmentCount: len(segments),
	}
	if err = storage.SaveNoteTask(task); err != nil {
		log.GetLogger().Error("StartNoteTask SaveNoteTask err", zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeDBError, "保存任务失败 Failed to save task", err)
	}

	log.GetLogger().Info("note task created",
		zap.String("task_id", task.TaskId),
		zap.String("title", task.Title),
		zap.Int("segments", len(segments)))

	if err = s.submitTask(task); err != nil {
		return nil, err
	}
	return &dto.CreateNoteTaskResData{TaskId: task.TaskId}, nil
}

// RetryNoteTask 重置失败或已完成的任务并重新投递,沿用原任务参数。
func (s *Service) RetryNoteTask(taskId string) (*dto.CreateNoteTaskResData, error) {
	task, err := storage.GetNoteTask(taskId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "任务不存在 Task not found", err)
	}
	if task.Status != types.NoteTaskStatusFailed && task.Status != types.NoteTaskStatusSuccess {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "只能重试失败或已完成的任务 Only failed or completed tasks can be retried")
	}

	task.Status = types.NoteTaskStatusPending
	task.ProcessPercent = 0
	task.FailReason = ""
	task.StatusMsg = "正在重试 Retrying..."
	task.Markdown = ""
	if err = storage.SaveNoteTask(task); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "保存任务失败 Failed to save task", err)
	}

	if err = s.submitTask(task); err != nil {
		return nil, err
	}
	return &dto.CreateNoteTaskResData{TaskId: task.TaskId}, nil
}

func (s *Service) submitTask(task *types.NoteTask) error {
	if s.Submitter == nil {
		return apperrors.New(apperrors.CodeUnknown, "任务执行器未初始化 Task submitter not initialized")
	}
	if err := s.Submitter.SubmitNoteTask(types.NoteTaskPayload{TaskId: task.TaskId}); err != nil {
		log.GetLogger().Error("投递笔记任务失败", zap.String("task_id", task.TaskId), zap.Error(err))
		task.Status = types.NoteTaskStatusFailed
		task.FailReason = err.Error()
		task.StatusMsg = "任务投递失败 Enqueue failed"
		_ = storage.SaveNoteTask(task)
		return apperrors.Wrap(apperrors.CodeUnknown, "任务投递失败 Failed to enqueue task", err)
	}
	return nil
}

// GetNoteTaskStatus 查询任务进度与结果,失败原因随状态一并返回。
func (s *Service) GetNoteTaskStatus(taskId string) (*dto.GetNoteTaskResData, error) {
	task, err := storage.GetNoteTask(taskId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "任务不存在 Task not found", err)
	}
	return &dto.GetNoteTaskResData{
		TaskId:         task.TaskId,
		Title:          task.Title,
		Status:         task.Status,
		ProcessPercent: task.ProcessPercent,
		StatusMsg:      task.StatusMsg,
		FailReason:     task.FailReason,
		FrameCount:     task.FrameCount,
		SheetCount:     task.SheetCount,
		ImageCount:     task.ImageCount,
		Markdown:       task.Markdown,
	}, nil
}

// DeleteNoteTask 删除任务记录及其工作目录下的帧、网格图和截图。
func (s *Service) DeleteNoteTask(taskId string) error {
	if _, err := storage.GetNoteTask(taskId); err != nil {
		return apperrors.Wrap(apperrors.CodeNotFound, "任务不存在 Task not found", err)
	}
	if err := storage.DeleteNoteTask(taskId); err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "删除任务失败 Failed to delete task", err)
	}
	taskRoot, err := resolveTaskRoot()
	if err != nil {
		log.GetLogger().Warn("任务目录解析失败,跳过清理", zap.String("task_id", taskId), zap.Error(err))
		return nil
	}
	if err = os.RemoveAll(filepath.Join(taskRoot, taskId)); err != nil {
		log.GetLogger().Warn("清理任务目录失败", zap.String("task_id", taskId), zap.Error(err))
	}
	return nil
}

// RunNoteTask 执行一个笔记任务:取源(可选下载)→抽帧→拼图→编码→生成→整理。
// 由任务执行器的工作协程调用;发生 panic 时恢复并把任务标记为失败。
func (s *Service) RunNoteTask(ctx context.Context, taskId string) (err error) {
	task, err := storage.GetNoteTask(taskId)
	if err != nil {
		log.GetLogger().Error("RunNoteTask 任务不存在", zap.String("task_id", taskId), zap.Error(err))
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.GetLogger().Error("RunNoteTask panic", zap.Any("panic", r), zap.ByteString("stack", buf))
			err = fmt.Errorf("note task panic: %v", r)
			s.markTaskFailed(task, err, "任务异常中断 Task aborted")
		}
	}()

	var source types.NoteSource
	if err = json.Unmarshal([]byte(task.SourceJson), &source); err != nil {
		s.markTaskFailed(task, err, "任务参数损坏 Task source corrupted")
		return err
	}

	log.GetLogger().Info("note task start", zap.String("task_id", taskId), zap.String("title", task.Title))
	task.Status = types.NoteTaskStatusRunning
	s.updateProgress(task, 5, "正在准备任务 Preparing...")

	taskDir, err := resolveTaskDir(taskId)
	if err != nil {
		s.markTaskFailed(task, err, "任务目录解析失败 Task directory resolution failed")
		return err
	}

	videoPath := task.VideoPath
	if videoPath == "" {
		uploadRoot, rootErr := resolveUploadRoot()
		if rootErr != nil {
			s.markTaskFailed(task, rootErr, "上传目录解析失败 Upload root resolution failed")
			return rootErr
		}
		s.updateProgress(task, 10, "正在下载资源 Downloading Resources...")
		videoPath, err = s.Fetcher.FetchToDir(ctx, task.VideoUrl, uploadRoot)
		if err != nil {
			s.markTaskFailed(task, err, "下载失败 Download Failed")
			return err
		}
		task.VideoPath = videoPath
	}
	if _, statErr := os.Stat(videoPath); statErr != nil {
		err = apperrors.Wrap(apperrors.CodeVideoNotFound, "视频文件不存在 Video file not found", statErr)
		s.markTaskFailed(task, err, "视频文件不存在 Video file missing")
		return err
	}

	s.updateProgress(task, 20, "正在提取视频帧 Extracting frames...")
	framePaths, err := media.ExtractFrames(ctx, videoPath, filepath.Join(taskDir, appdirs.FrameDirName), media.SampleOptions{
		IntervalSec: config.Conf.Media.FrameIntervalSec,
		MaxFrames:   config.Conf.Media.MaxFrames,
		Workers:     config.Conf.Media.SampleWorkers,
	})
	if err != nil {
		s.markTaskFailed(task, err, "视频处理失败 Media processing failed")
		return err
	}
	task.FrameCount = len(framePaths)

	s.updateProgress(task, 45, "正在拼接网格图 Composing contact sheets...")
	sheetPaths, err := media.ComposeGrids(framePaths, filepath.Join(taskDir, appdirs.GridDirName), media.GridOptions{
		Rows:        config.Conf.Media.GridRows,
		Cols:        config.Conf.Media.GridCols,
		CellWidth:   config.Conf.Media.CellWidth,
		CellHeight:  config.Conf.Media.CellHeight,
		JpegQuality: config.Conf.Media.JpegQuality,
		FontPath:    config.Conf.Media.FontPath,
	})
	if err != nil {
		s.markTaskFailed(task, err, "视频处理失败 Media processing failed")
		return err
	}
	task.SheetCount = len(sheetPaths)

	s.updateProgress(task, 60, "正在编码图像 Encoding images...")
	imageUrls, err := media.EncodeImages(sheetPaths)
	if err != nil {
		s.markTaskFailed(task, err, "图片编码失败 Image encoding failed")
		return err
	}
	task.ImageCount = len(imageUrls)

	s.updateProgress(task, 70, "正在生成笔记 Summarizing...")
	completer, model, err := s.completerForTask(task.ProviderId)
	if err != nil {
		s.markTaskFailed(task, err, "模型服务不可用 Provider unavailable")
		return err
	}
	if task.Model != "" {
		model = task.Model
	}
	markdown, err := NewSummarizer(completer, model).Summarize(ctx, types.SummarizeSource{
		Title:      source.Title,
		Tags:       source.Tags,
		Segments:   lo.ToAnySlice(source.Segments),
		ImageURLs:  imageUrls,
		Formats:    source.Formats,
		Style:      source.Style,
		Extras:     source.Extras,
		Screenshot: source.Screenshot,
		Link:       source.Link,
	})
	if err != nil {
		s.markTaskFailed(task, err, "笔记生成失败 Summarization failed")
		return err
	}

	s.updateProgress(task, 90, "正在整理笔记 Post-processing...")
	markdown = util.StripMarkdownFence(markdown)
	if source.Screenshot {
		markdown = s.materializeScreenshots(ctx, markdown, videoPath, taskDir, taskId)
	}

	task.Markdown = markdown
	task.Status = types.NoteTaskStatusSuccess
	s.updateProgress(task, 100, "任务完成 Completed")
	log.GetLogger().Info("note task end",
		zap.String("task_id", taskId),
		zap.Int("frames", task.FrameCount),
		zap.Int("sheets", task.SheetCount),
		zap.Int("markdown_len", len(markdown)))
	return nil
}

func (s *Service) updateProgress(task *types.NoteTask, percent uint8, statusMsg string) {
	task.ProcessPercent = percent
	task.StatusMsg = statusMsg
	if err := storage.SaveNoteTask(task); err != nil {
		log.GetLogger().Warn("更新任务进度失败", zap.String("task_id", task.TaskId), zap.Error(err))
	}
}

func (s *Service) markTaskFailed(task *types.NoteTask, cause error, statusMsg string) {
	log.GetLogger().Error("note task failed",
		zap.String("task_id", task.TaskId),
		zap.String("stage", statusMsg),
		zap.Error(cause))
	task.Status = types.NoteTaskStatusFailed
	task.FailReason = cause.Error()
	task.StatusMsg = statusMsg
	if err := storage.SaveNoteTask(task); err != nil {
		log.GetLogger().Error("保存任务失败状态失败", zap.String("task_id", task.TaskId), zap.Error(err))
	}
}
