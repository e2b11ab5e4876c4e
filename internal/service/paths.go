package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Acclerate/BiliNote/internal/appdirs"
)

var appDirsResolver = appdirs.Resolve

func resolveTaskRoot() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.TaskRootFor(dirs), nil
}

func resolveTaskDir(taskID string) (string, error) {
	if strings.TrimSpace(taskID) == "" {
		return "", fmt.Errorf("task id is empty")
	}

	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.TaskDirFor(dirs, taskID), nil
}

func resolveUploadRoot() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.UploadRootFor(dirs), nil
}

// resolveTaskDownloadPath 把任务目录下的本地产物换算成对外下载用的相对路径
// (tasks/<id>/...,斜杠分隔)。换算不出或越出任务根目录的一律报错。
func resolveTaskDownloadPath(localPath string) (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	taskRoot := appdirs.TaskRootFor(dirs)

	relPath, err := filepath.Rel(taskRoot, filepath.Clean(localPath))
	if err != nil {
		return "", err
	}
	switch {
	case relPath == "." || relPath == "":
		return "", fmt.Errorf("task artifact path %q is not a file path", localPath)
	case relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)):
		return "", fmt.Errorf("task artifact path %q is outside task root %q", localPath, taskRoot)
	}
	return filepath.ToSlash(filepath.Join(appdirs.TaskRootName, relPath)), nil
}
