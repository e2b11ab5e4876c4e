package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/dto"
	"github.com/Acclerate/BiliNote/internal/response"
	"github.com/Acclerate/BiliNote/internal/storage"
	"github.com/Acclerate/BiliNote/log"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
)

func (h Handler) CreateNoteTask(c *gin.Context) {
	var req dto.CreateNoteTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("CreateNoteTask ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}
	log.GetLogger().Info("CreateNoteTask received request",
		zap.String("title", req.Title),
		zap.Int("segments", len(req.Segments)))

	data, err := h.Service.StartNoteTask(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GetNoteTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "taskId 不能为空 taskId is required"))
		return
	}

	data, err := h.Service.GetNoteTaskStatus(taskId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GetNoteTaskHistory(c *gin.Context) {
	tasks, err := storage.GetNoteTaskHistory(200)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "获取历史记录失败 Failed to load task history", err))
		return
	}
	response.Success(c, tasks)
}

func (h Handler) DeleteNoteTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "taskId 不能为空 taskId is required"))
		return
	}

	if err := h.Service.DeleteNoteTask(taskId); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}

// RetryNoteTask 重新投递失败或已完成的任务
func (h Handler) RetryNoteTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "taskId 不能为空 taskId is required"))
		return
	}

	data, err := h.Service.RetryNoteTask(taskId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}
