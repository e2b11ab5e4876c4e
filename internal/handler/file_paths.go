package handler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Acclerate/BiliNote/internal/appdirs"
)

var appDirsResolver = appdirs.Resolve

// sandboxRoot 是一个允许对外下载的根:URL 中的别名加一组本地候选目录,
// 候选按优先级排列,第一个命中的文件生效。
type sandboxRoot struct {
	alias string
	dirs  []string
}

// sandboxRoots 列出全部放行的下载根。目录解析失败时只剩相对目录回退,
// 与便携布局下的历史产物保持兼容。
func sandboxRoots() []sandboxRoot {
	taskDirs := []string{appdirs.TaskRootName}
	uploadDirs := []string{appdirs.UploadRootName}
	if dirs, err := appDirsResolver(); err == nil {
		taskDirs = append([]string{appdirs.TaskRootFor(dirs)}, taskDirs...)
		uploadDirs = append([]string{appdirs.UploadRootFor(dirs)}, uploadDirs...)
	}

	return []sandboxRoot{
		{alias: appdirs.TaskRootName, dirs: dedupePaths(taskDirs)},
		{alias: appdirs.UploadRootName, dirs: dedupePaths(uploadDirs)},
		{alias: "static", dirs: []string{"static"}},
	}
}

// preferredUploadRoot 返回上传文件落盘的目录。
func preferredUploadRoot() string {
	for _, root := range sandboxRoots() {
		if root.alias == appdirs.UploadRootName && len(root.dirs) > 0 {
			return root.dirs[0]
		}
	}
	return appdirs.UploadRootName
}

// resolveDownloadPath 把 /api/file 的请求路径映射到本地文件。只认
// sandboxRoots 列出的根;请求可以带根别名前缀(tasks/…、uploads/…),
// 不带时逐个根尝试。返回的路径不保证存在,调用方需自行 Stat。
func resolveDownloadPath(requested string) (string, bool) {
	cleaned, ok := normalizeRequestPath(requested)
	if !ok {
		return "", false
	}

	roots := sandboxRoots()
	alias, remainder := splitRootAlias(cleaned, roots)

	var fallback string
	for _, root := range roots {
		if alias != "" && root.alias != alias {
			continue
		}
		local := cleaned
		if root.alias == alias {
			local = remainder
		}
		local = filepath.FromSlash(local)

		for _, dir := range root.dirs {
			candidate := filepath.Clean(filepath.Join(dir, local))
			if escapesRoot(dir, candidate) {
				continue
			}
			if fallback == "" {
				fallback = candidate
			}
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
	}

	if fallback == "" {
		return "", false
	}
	return fallback, true
}

// normalizeRequestPath 去掉前导分隔符并统一成斜杠形式;
// 任何一段是 ".." 的请求直接判非法。
func normalizeRequestPath(requested string) (string, bool) {
	requested = strings.TrimSpace(requested)
	requested = strings.TrimPrefix(requested, string(filepath.Separator))
	requested = strings.TrimPrefix(requested, "/")

	for _, part := range strings.Split(strings.ReplaceAll(requested, "\\", "/"), "/") {
		if part == ".." {
			return "", false
		}
	}

	cleaned := filepath.Clean(requested)
	if cleaned == "." {
		cleaned = ""
	}
	return filepath.ToSlash(cleaned), true
}

// splitRootAlias 判断请求是否以某个根别名开头,是则剥掉别名返回剩余部分。
func splitRootAlias(requested string, roots []sandboxRoot) (alias, remainder string) {
	for _, root := range roots {
		if requested == root.alias {
			return root.alias, ""
		}
		if strings.HasPrefix(requested, root.alias+"/") {
			return root.alias, strings.TrimPrefix(requested, root.alias+"/")
		}
	}
	return "", requested
}

// escapesRoot 报告 candidate 是否越出 root 之外。
func escapesRoot(root, candidate string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(candidate))
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// dedupePaths 清洗并去重候选目录,保持原有顺序。
func dedupePaths(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	paths := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		value = filepath.Clean(value)
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		paths = append(paths, value)
	}
	return paths
}
