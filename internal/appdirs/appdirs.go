// Package appdirs 决定应用的磁盘布局:配置、日志、产物与缓存目录。
// 支持三种布局:便携模式(数据跟随可执行文件)、Windows 用户目录,
// 以及其余平台沿用的工作目录相对布局。
package appdirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// PortableEnv 置为 1/true 时启用便携布局。
	PortableEnv = "BILINOTE_PORTABLE"

	appName        = "BiliNote"
	configFileName = "config.toml"
)

// Paths 是一次目录解析的结果。
type Paths struct {
	Portable   bool
	ConfigDir  string
	ConfigFile string
	LogDir     string
	OutputDir  string
	CacheDir   string
}

// resolveDeps 把所有环境探测收拢成可替换的依赖,便于测试。
type resolveDeps struct {
	goos          string
	getenv        func(string) string
	executable    func() (string, error)
	userConfigDir func() (string, error)
	userCacheDir  func() (string, error)
}

func Resolve() (Paths, error) {
	return resolve(resolveDeps{
		goos:          runtime.GOOS,
		getenv:        os.Getenv,
		executable:    os.Executable,
		userConfigDir: os.UserConfigDir,
		userCacheDir:  os.UserCacheDir,
	})
}

func resolve(rawDeps resolveDeps) (Paths, error) {
	deps := withDefaults(rawDeps)
	switch {
	case isPortableEnabled(deps.getenv(PortableEnv)):
		return portableLayout(deps)
	case deps.goos == "windows":
		return windowsLayout(deps)
	default:
		return legacyLayout(), nil
	}
}

func withDefaults(deps resolveDeps) resolveDeps {
	if deps.goos == "" {
		deps.goos = runtime.GOOS
	}
	if deps.getenv == nil {
		deps.getenv = os.Getenv
	}
	if deps.executable == nil {
		deps.executable = os.Executable
	}
	if deps.userConfigDir == nil {
		deps.userConfigDir = os.UserConfigDir
	}
	if deps.userCacheDir == nil {
		deps.userCacheDir = os.UserCacheDir
	}
	return deps
}

// derive 由配置目录和数据基目录展开其余路径。
func derive(portable bool, configDir, baseDir string) Paths {
	return Paths{
		Portable:   portable,
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, configFileName),
		LogDir:     filepath.Join(baseDir, "logs"),
		OutputDir:  filepath.Join(baseDir, "output"),
		CacheDir:   filepath.Join(baseDir, "cache"),
	}
}

// portableLayout 把全部数据放在可执行文件旁的 data 目录下。
func portableLayout(deps resolveDeps) (Paths, error) {
	executablePath, err := deps.executable()
	if err != nil {
		return Paths{}, err
	}
	dataDir := filepath.Join(filepath.Dir(executablePath), "data")
	return derive(true, filepath.Join(dataDir, "config"), dataDir), nil
}

// windowsLayout 配置进用户配置目录,数据进用户缓存目录。
func windowsLayout(deps resolveDeps) (Paths, error) {
	configRoot, err := deps.userConfigDir()
	if err != nil {
		return Paths{}, err
	}
	if strings.TrimSpace(configRoot) == "" {
		return Paths{}, errors.New("user config dir is empty")
	}

	cacheRoot, err := deps.userCacheDir()
	if err != nil {
		return Paths{}, err
	}
	if strings.TrimSpace(cacheRoot) == "" {
		return Paths{}, errors.New("user cache dir is empty")
	}

	return derive(false, filepath.Join(configRoot, appName), filepath.Join(cacheRoot, appName)), nil
}

// legacyLayout 与早期版本一致:一切相对当前工作目录。
func legacyLayout() Paths {
	return Paths{
		ConfigDir:  "config",
		ConfigFile: filepath.Join("config", configFileName),
		LogDir:     ".",
		OutputDir:  ".",
		CacheDir:   "cache",
	}
}

func isPortableEnabled(value string) bool {
	normalized := strings.TrimSpace(strings.ToLower(value))
	return normalized == "1" || normalized == "true"
}
