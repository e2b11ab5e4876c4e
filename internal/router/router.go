package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Acclerate/BiliNote/config"
	"github.com/Acclerate/BiliNote/internal/handler"
)

// SetupRouter 注册全部 HTTP 路由。
func SetupRouter(r *gin.Engine, hdl *handler.Handler) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"app": config.Conf.App.Name, "status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/note/task", hdl.CreateNoteTask)
		api.GET("/note/task/:taskId", hdl.GetNoteTask)
		api.DELETE("/note/task/:taskId", hdl.DeleteNoteTask)
		api.POST("/note/task/:taskId/retry", hdl.RetryNoteTask)
		api.GET("/note/history", hdl.GetNoteTaskHistory)
		api.GET("/note/progress/:taskId", hdl.NoteTaskProgress)

		api.POST("/file/upload", hdl.UploadFile)
		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)

		api.POST("/media/segments", hdl.SplitMedia)
		api.GET("/media/info", hdl.GetMediaInfo)

		api.GET("/providers", hdl.ListProviders)
		api.POST("/providers", hdl.SaveProvider)
		api.DELETE("/providers/:id", hdl.DeleteProvider)
	}
}
