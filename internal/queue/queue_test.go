package queue

import (
	"context"
	"os"
	"testing"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/log"
)

func TestMain(m *testing.M) {
	log.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// 坏载荷直接拒绝,不会触碰 service 层。
func TestHandleNoteTaskRejectsMalformedPayload(t *testing.T) {
	handlers := NewTaskHandlers(nil)

	task := asynq.NewTask(TypeNoteGenerate, []byte("{not-json"))
	if err := handlers.HandleNoteTask(context.Background(), task); err == nil {
		t.Fatal("HandleNoteTask() accepted a malformed payload")
	}
}
