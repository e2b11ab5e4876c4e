package handler

import (
	"github.com/Acclerate/BiliNote/internal/service"
)

// Handler HTTP 接口层,持有业务服务实例。
type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{Service: svc}
}
