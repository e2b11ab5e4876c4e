package handler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/appdirs"
	"github.com/Acclerate/BiliNote/internal/response"
	"github.com/Acclerate/BiliNote/log"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
)

// UploadFile 接收本地视频上传,保存到 uploads 根目录。返回的 file_path
// 可直接用作建任务请求里的 video_path,download_path 用于 /api/file 下载。
func (h Handler) UploadFile(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "未能获取文件 Failed to read upload", err))
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "未上传任何文件 No file uploaded"))
		return
	}

	uploadRoot := preferredUploadRoot()
	if err = os.MkdirAll(uploadRoot, 0o755); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "创建上传目录失败 Failed to create upload dir", err))
		return
	}

	saved := make([]gin.H, 0, len(files))
	for _, file := range files {
		name := sanitizeUploadName(file.Filename)
		savePath := filepath.Join(uploadRoot, name)
		if _, statErr := os.Stat(savePath); statErr == nil {
			name = uuid.NewString()[:8] + "_" + name
			savePath = filepath.Join(uploadRoot, name)
		}
		if err = c.SaveUploadedFile(file, savePath); err != nil {
			log.GetLogger().Error("保存上传文件失败", zap.String("file", file.Filename), zap.Error(err))
			response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "文件保存失败 Failed to save file", err))
			return
		}
		saved = append(saved, gin.H{
			"file_path":     savePath,
			"download_path": appdirs.UploadRootName + "/" + name,
		})
	}

	log.GetLogger().Info("文件上传成功 Upload completed", zap.Int("count", len(saved)))
	response.Success(c, gin.H{"files": saved})
}

// DownloadFile 沙箱化的产物下载,只放行任务、上传和静态三个根别名,
// 带上级目录穿越的请求一律拒绝。
func (h Handler) DownloadFile(c *gin.Context) {
	requestedFile := c.Param("filepath")

	localFilePath, ok := resolveDownloadPath(requestedFile)
	if !ok {
		c.JSON(403, response.FromError(apperrors.New(apperrors.CodeUnauthorized, "非法路径 Illegal path")))
		return
	}
	info, err := os.Stat(localFilePath)
	if err != nil || info.IsDir() {
		c.JSON(404, response.FromError(apperrors.New(apperrors.CodeFileNotFound, "文件不存在 File not found")))
		return
	}
	c.FileAttachment(localFilePath, filepath.Base(localFilePath))
}

// sanitizeUploadName 只保留文件名本体并替换易出问题的字符。
func sanitizeUploadName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	replacer := strings.NewReplacer(
		"=", "_",
		"?", "_",
		"&", "_",
		"#", "_",
		"%", "_",
		" ", "_",
	)
	name = replacer.Replace(name)
	name = strings.Trim(name, "_")
	if name == "" || name == "." {
		name = uuid.NewString()[:8]
	}
	return name
}
