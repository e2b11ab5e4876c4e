package types

import "context"

// ChatRequest 单次对话补全请求。ImageURLs 为空时发送纯文本消息，
// 否则构造 text + image_url 的多模态内容。
type ChatRequest struct {
	Model       string
	Prompt      string
	ImageURLs   []string
	Temperature float32
	MaxTokens   int
}

// ChatCompleter 对话补全服务
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (string, error)
}

// NoteTaskPayload 任务投递载荷，任务内容以 TaskId 回查持久层
type NoteTaskPayload struct {
	TaskId string `json:"task_id"`
}

// TaskSubmitter 任务投递入口，进程内 runner 与 Redis 队列各自实现
type TaskSubmitter interface {
	SubmitNoteTask(payload NoteTaskPayload) error
}
