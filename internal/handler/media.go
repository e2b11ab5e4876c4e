package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/dto"
	"github.com/Acclerate/BiliNote/internal/response"
	"github.com/Acclerate/BiliNote/log"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
)

// SplitMedia 同步切分媒体,供外部转写服务按片拉取
func (h Handler) SplitMedia(c *gin.Context) {
	var req dto.SplitMediaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("SplitMedia ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	data, err := h.Service.SplitMedia(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

// GetMediaInfo 探测媒体时长并预估分段数,不产生切分文件
func (h Handler) GetMediaInfo(c *gin.Context) {
	videoPath := c.Query("video_path")
	thresholdSec, err := strconv.Atoi(c.DefaultQuery("threshold_sec", "0"))
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "threshold_sec 必须是整数 threshold_sec must be an integer", err))
		return
	}

	data, err := h.Service.MediaInfo(videoPath, thresholdSec)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}
