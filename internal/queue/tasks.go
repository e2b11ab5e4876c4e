// Package queue provides task handlers for Asynq background processing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/service"
	"github.com/Acclerate/BiliNote/internal/types"
	"github.com/Acclerate/BiliNote/log"
)

// TaskHandlers provides handlers for different task types
type TaskHandlers struct {
	service *service.Service
}

// NewTaskHandlers creates a new TaskHandlers instance
func NewTaskHandlers(svc *service.Service) *TaskHandlers {
	return &TaskHandlers{service: svc}
}

// HandleNoteTask processes note generation tasks. RunNoteTask persists the
// failure state itself; the returned error additionally drives Asynq retries.
func (h *TaskHandlers) HandleNoteTask(ctx context.Context, t *asynq.Task) error {
	var payload types.NoteTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing note task",
		zap.String("task_id", payload.TaskId))

	if err := h.service.RunNoteTask(ctx, payload.TaskId); err != nil {
		return err
	}

	log.GetLogger().Info("[Queue] Note task completed",
		zap.String("task_id", payload.TaskId))

	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeNoteGenerate, h.HandleNoteTask)
}

// StartWorker starts the Asynq worker with registered handlers
func StartWorker(q *Queue, svc *service.Service) error {
	handlers := NewTaskHandlers(svc)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}
