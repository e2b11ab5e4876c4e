// Package taskrunner 进程内笔记任务执行器:固定数量的 worker 消费一条
// 内存队列,单机部署不装 Redis 也能异步跑任务。
package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/service"
	"github.com/Acclerate/BiliNote/internal/types"
	"github.com/Acclerate/BiliNote/log"
)

const (
	defaultQueueSize   = 128
	defaultConcurrency = 2
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

// Runner 实现 types.TaskSubmitter。队列满时直接拒绝而不是阻塞接口请求;
// 任务失败态由 service 层落库,runner 只负责调度和日志。
type Runner struct {
	service *service.Service
	config  Config

	queue  chan types.NoteTaskPayload
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

// New 创建 runner 并立即启动 worker。
func New(svc *service.Service, cfg Config) *Runner {
	if svc == nil {
		svc = service.NewService()
	}
	cfg = normalizeConfig(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	runner := &Runner{
		service: svc,
		config:  cfg,
		queue:   make(chan types.NoteTaskPayload, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	runner.workerWg.Add(cfg.Concurrency)
	for i := 0; i < cfg.Concurrency; i++ {
		go runner.worker(i + 1)
	}
	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// SubmitNoteTask 非阻塞入队。
func (r *Runner) SubmitNoteTask(payload types.NoteTaskPayload) error {
	if payload.TaskId == "" {
		return errors.New("note task id is required")
	}
	if r.closed.Load() || r.ctx.Err() != nil {
		return ErrRunnerStopped
	}

	select {
	case r.queue <- payload:
	default:
		return ErrQueueFull
	}

	log.GetLogger().Info("[TaskRunner] task submitted", zap.String("task_id", payload.TaskId))
	return nil
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		if r.ctx.Err() != nil {
			return
		}
		select {
		case <-r.ctx.Done():
			return
		case payload := <-r.queue:
			r.process(workerID, payload)
		}
	}
}

// process 执行单个任务。RunNoteTask 自己兜底 panic 并写失败态,
// 这里失败只记日志,worker 继续消费下一个。
func (r *Runner) process(workerID int, payload types.NoteTaskPayload) {
	if err := r.service.RunNoteTask(r.ctx, payload.TaskId); err != nil {
		log.GetLogger().Error("[TaskRunner] task failed",
			zap.Int("worker_id", workerID),
			zap.String("task_id", payload.TaskId),
			zap.Error(err))
		return
	}
	log.GetLogger().Info("[TaskRunner] task completed",
		zap.Int("worker_id", workerID),
		zap.String("task_id", payload.TaskId))
}

// Close 幂等:停止接单,等正在跑的任务退出。
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.cancel()
	r.workerWg.Wait()
}

// Pending 返回还没被 worker 取走的排队任务数。
func (r *Runner) Pending() int {
	return len(r.queue)
}
