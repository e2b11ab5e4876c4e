// Package queue 基于 Asynq/Redis 的跨进程任务队列,多实例部署时
// 替代进程内 worker 承接笔记生成任务。
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/types"
	"github.com/Acclerate/BiliNote/log"
)

// TypeNoteGenerate 笔记生成任务的队列类型名。
const TypeNoteGenerate = "note:generate"

const (
	noteTaskMaxRetry = 3
	noteTaskTimeout  = 30 * time.Minute
)

// QueueConfig Redis 连接与消费参数。
type QueueConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
}

// Queue 实现 types.TaskSubmitter,投递与消费共用一份 Redis 配置。
type Queue struct {
	client *asynq.Client
	server *asynq.Server
	config QueueConfig
}

func NewQueue(cfg QueueConfig) *Queue {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Concurrency,
		// 10s、20s、40s……跟帧采样/LLM 调用的耗时量级匹配
		RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
			return time.Duration(10<<uint(n)) * time.Second
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.GetLogger().Error("队列任务失败 Queue task failed",
				zap.String("type", task.Type()),
				zap.ByteString("payload", task.Payload()),
				zap.Error(err))
		}),
	})

	return &Queue{
		client: asynq.NewClient(redisOpt),
		server: server,
		config: cfg,
	}
}

// SubmitNoteTask 把笔记生成任务投递进队列。
func (q *Queue) SubmitNoteTask(payload types.NoteTaskPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal note task payload: %w", err)
	}

	task := asynq.NewTask(TypeNoteGenerate, data,
		asynq.MaxRetry(noteTaskMaxRetry),
		asynq.Timeout(noteTaskTimeout),
	)

	info, err := q.client.Enqueue(task)
	if err != nil {
		return fmt.Errorf("enqueue note task: %w", err)
	}

	log.GetLogger().Info("任务已入队 Note task enqueued",
		zap.String("task_id", payload.TaskId),
		zap.String("queue_id", info.ID),
		zap.String("queue", info.Queue))
	return nil
}

// Close 停止消费并断开 Redis 连接。
func (q *Queue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	q.server.Shutdown()
	return nil
}
