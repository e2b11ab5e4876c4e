package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/dto"
	"github.com/Acclerate/BiliNote/internal/response"
	"github.com/Acclerate/BiliNote/internal/storage"
	"github.com/Acclerate/BiliNote/internal/types"
	"github.com/Acclerate/BiliNote/log"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
)

func (h Handler) ListProviders(c *gin.Context) {
	providers, err := storage.ListProviders()
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "获取服务商列表失败 Failed to list providers", err))
		return
	}
	// api_key 不回传明文,只标注是否已配置
	masked := make([]gin.H, 0, len(providers))
	for _, p := range providers {
		masked = append(masked, gin.H{
			"id":          p.Id,
			"name":        p.Name,
			"base_url":    p.BaseUrl,
			"model":       p.Model,
			"enabled":     p.Enabled,
			"has_api_key": p.ApiKey != "",
		})
	}
	response.Success(c, masked)
}

// SaveProvider 新建或更新服务商,api_key 留空时保留已存储的值
func (h Handler) SaveProvider(c *gin.Context) {
	var req dto.SaveProviderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("SaveProvider ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}
	if strings.TrimSpace(req.Id) == "" || strings.TrimSpace(req.BaseUrl) == "" {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "id 和 base_url 不能为空 id and base_url are required"))
		return
	}

	provider := &types.Provider{
		Id:      strings.TrimSpace(req.Id),
		Name:    req.Name,
		BaseUrl: strings.TrimSpace(req.BaseUrl),
		ApiKey:  req.ApiKey,
		Model:   req.Model,
		Enabled: req.Enabled,
	}
	if provider.ApiKey == "" {
		if existing, err := storage.GetProvider(provider.Id); err == nil {
			provider.ApiKey = existing.ApiKey
			provider.CreateTime = existing.CreateTime
		}
	}

	if err := storage.SaveProvider(provider); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "保存服务商失败 Failed to save provider", err))
		return
	}
	log.GetLogger().Info("服务商已保存 Provider saved", zap.String("id", provider.Id), zap.String("base_url", provider.BaseUrl))
	response.Success(c, gin.H{"id": provider.Id})
}

func (h Handler) DeleteProvider(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "id 不能为空 id is required"))
		return
	}

	if _, err := storage.GetProvider(id); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeProviderNotFound, "模型服务商不存在 Provider not found", err))
		return
	}
	if err := storage.DeleteProvider(id); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "删除服务商失败 Failed to delete provider", err))
		return
	}
	response.Success(c, nil)
}
