package appdirs

import (
	"path/filepath"
	"strings"
)

// 运行期磁盘布局:任务产物在 <output>/tasks/<id> 下按用途分子目录,
// 上传文件在 <output>/uploads,数据库固定放缓存目录。
const (
	TaskRootName   = "tasks"
	UploadRootName = "uploads"
	dbFileName     = "bilinote.db"

	// 每个任务目录下的工作子目录。
	FrameDirName   = "frames"
	GridDirName    = "grids"
	SegmentDirName = "segments"
)

func TaskRootFor(paths Paths) string {
	return filepath.Join(normalizeDir(paths.OutputDir, "."), TaskRootName)
}

func TaskDirFor(paths Paths, taskID string) string {
	return filepath.Join(TaskRootFor(paths), taskID)
}

func UploadRootFor(paths Paths) string {
	return filepath.Join(normalizeDir(paths.OutputDir, "."), UploadRootName)
}

func DBPathFor(paths Paths) string {
	return filepath.Join(normalizeDir(paths.CacheDir, "cache"), dbFileName)
}

// normalizeDir 清洗目录值,空白时使用回退目录。
func normalizeDir(dir, fallback string) string {
	cleaned := strings.TrimSpace(dir)
	if cleaned == "" {
		return fallback
	}
	return filepath.Clean(cleaned)
}
