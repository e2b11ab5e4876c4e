package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/dto"
	"github.com/Acclerate/BiliNote/internal/storage"
	"github.com/Acclerate/BiliNote/internal/types"
	"github.com/Acclerate/BiliNote/log"
)

const (
	progressPollInterval = 500 * time.Millisecond
	progressWriteWait    = 5 * time.Second
)

var progressUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 本地部署,页面与接口同源,不做来源校验
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NoteTaskProgress 轮询任务行并把进度帧推给客户端,只在内容变化时发送,
// 任务到达终态后推送最后一帧并正常关闭连接。
func (h Handler) NoteTaskProgress(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		c.JSON(400, gin.H{"error": -1, "msg": "taskId 不能为空 taskId is required"})
		return
	}

	conn, err := progressUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Error("websocket 升级失败", zap.String("task_id", taskId), zap.Error(err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	var lastFrame dto.NoteTaskProgressFrame
	for {
		task, err := storage.GetNoteTask(taskId)
		if err != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(progressWriteWait))
			_ = conn.WriteJSON(dto.NoteTaskProgressFrame{
				TaskId:  taskId,
				Status:  types.NoteTaskStatusFailed,
				Message: "任务不存在 Task not found",
			})
			return
		}

		frame := dto.NoteTaskProgressFrame{
			TaskId:  task.TaskId,
			Status:  task.Status,
			Percent: task.ProcessPercent,
			Message: task.StatusMsg,
		}
		if frame != lastFrame {
			_ = conn.SetWriteDeadline(time.Now().Add(progressWriteWait))
			if err = conn.WriteJSON(frame); err != nil {
				log.GetLogger().Warn("进度推送失败,关闭连接", zap.String("task_id", taskId), zap.Error(err))
				return
			}
			lastFrame = frame
		}

		if task.Status == types.NoteTaskStatusSuccess || task.Status == types.NoteTaskStatusFailed {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
				time.Now().Add(progressWriteWait))
			return
		}

		select {
		case <-ticker.C:
		case <-c.Request.Context().Done():
			return
		}
	}
}
