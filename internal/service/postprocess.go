package service

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/media"
	"github.com/Acclerate/BiliNote/log"
)

// 模型按指令输出的截图标记独占一行,如 *Screenshot-03:25
var screenshotMarkerRe = regexp.MustCompile(`(?m)^[ \t]*\*Screenshot-(\d{1,3}):(\d{2})[ \t]*$`)

const shotDirName = "shots"

// materializeScreenshots 把笔记里的 *Screenshot-MM:SS 标记替换为真实截图的
// Markdown 图片引用,截图文件落在任务目录的 shots 子目录下。
// 单个标记失败只丢弃该标记并记录日志,不影响整篇笔记。
func (s *Service) materializeScreenshots(ctx context.Context, markdown, videoPath, taskDir, taskId string) string {
	return screenshotMarkerRe.ReplaceAllStringFunc(markdown, func(marker string) string {
		groups := screenshotMarkerRe.FindStringSubmatch(marker)
		minutes, _ := strconv.Atoi(groups[1])
		seconds, _ := strconv.Atoi(groups[2])
		if seconds > 59 {
			log.GetLogger().Warn("截图标记时间无效,丢弃该标记",
				zap.String("task_id", taskId),
				zap.String("marker", strings.TrimSpace(marker)))
			return ""
		}

		outputPath := filepath.Join(taskDir, shotDirName, fmt.Sprintf("shot_%02d_%02d.jpg", minutes, seconds))
		if err := media.CaptureFrame(ctx, videoPath, minutes*60+seconds, outputPath); err != nil {
			log.GetLogger().Warn("截图标记处理失败,丢弃该标记",
				zap.String("task_id", taskId),
				zap.String("marker", strings.TrimSpace(marker)),
				zap.Error(err))
			return ""
		}

		downloadPath, err := resolveTaskDownloadPath(outputPath)
		if err != nil {
			log.GetLogger().Warn("截图路径转换失败,丢弃该标记",
				zap.String("task_id", taskId),
				zap.String("path", outputPath),
				zap.Error(err))
			return ""
		}
		clock := fmt.Sprintf("%02d:%02d", minutes, seconds)
		return fmt.Sprintf("![%s](/api/file/%s)", clock, downloadPath)
	})
}
