// Package deps 自检外部二进制依赖:解码器工具链装没装、配置的路径对不对,
// 启动时一次性报告,避免任务跑到一半才发现缺命令。
package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Acclerate/BiliNote/internal/storage"
	"github.com/Acclerate/BiliNote/log"
)

type DependencyTier string

const (
	DependencyTierMust     DependencyTier = "must"
	DependencyTierOptional DependencyTier = "optional"
)

type DependencyStatus string

const (
	DependencyStatusOK      DependencyStatus = "ok"
	DependencyStatusMissing DependencyStatus = "missing"
	DependencyStatusError   DependencyStatus = "error"
)

type DependencySource string

const (
	DependencySourceStorage  DependencySource = "storage"
	DependencySourceLookPath DependencySource = "lookpath"
)

// DependencySpec 描述一个外部命令;StoragePath 非空表示用户显式配置了二进制路径。
type DependencySpec struct {
	ID          string
	Name        string
	Command     string
	Tier        DependencyTier
	StoragePath string
	Hint        string
}

// DependencyState 是对单个依赖做一次解析的结果。
type DependencyState struct {
	DependencySpec
	ResolvedPath string
	Status       DependencyStatus
	Source       DependencySource
	Error        string
}

// PathResolver 的探测函数可替换,测试时不需要真的安装 ffmpeg。
type PathResolver struct {
	LookPath func(file string) (string, error)
	AbsPath  func(path string) (string, error)
	Stat     func(name string) (os.FileInfo, error)
}

func NewPathResolver() PathResolver {
	return PathResolver{
		LookPath: exec.LookPath,
		AbsPath:  filepath.Abs,
		Stat:     os.Stat,
	}
}

// Resolve 解析单个依赖:显式配置的路径优先,否则落回 PATH 查找。
func (r PathResolver) Resolve(spec DependencySpec) DependencyState {
	if strings.TrimSpace(spec.StoragePath) != "" {
		return r.resolveConfigured(spec)
	}
	return r.resolveFromPath(spec)
}

func (r PathResolver) resolveConfigured(spec DependencySpec) DependencyState {
	state := DependencyState{DependencySpec: spec, Source: DependencySourceStorage}
	configured := strings.TrimSpace(spec.StoragePath)

	// 配置值本身可能就是个可执行名或相对路径,先按 PATH 规则试一次。
	if resolvedPath, err := r.LookPath(configured); err == nil {
		state.Status = DependencyStatusOK
		state.ResolvedPath = resolvedPath
		return state
	}

	absPath, err := r.AbsPath(configured)
	if err != nil {
		state.ResolvedPath = configured
		state.Status = DependencyStatusError
		state.Error = err.Error()
		return state
	}
	state.ResolvedPath = absPath

	if _, err = r.Stat(absPath); err != nil {
		state.Status = statusForError(err)
		state.Error = err.Error()
		return state
	}

	state.Status = DependencyStatusOK
	return state
}

func (r PathResolver) resolveFromPath(spec DependencySpec) DependencyState {
	state := DependencyState{DependencySpec: spec, Source: DependencySourceLookPath}

	resolvedPath, err := r.LookPath(spec.Command)
	if err != nil {
		state.Status = statusForError(err)
		state.Error = err.Error()
		return state
	}

	state.Status = DependencyStatusOK
	state.ResolvedPath = resolvedPath
	return state
}

// statusForError 把「没装」和「装了但访问不了」区分开。
func statusForError(err error) DependencyStatus {
	if isMissingPathError(err) {
		return DependencyStatusMissing
	}
	return DependencyStatusError
}

func isMissingPathError(err error) bool {
	if err == nil {
		return false
	}
	// exec.Error 和 *os.PathError 都实现 Unwrap,errors.Is 能看穿包装。
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "not found") || strings.Contains(message, "cannot find")
}

func ResolveDependencyStates(specs []DependencySpec, resolver PathResolver) []DependencyState {
	resolved := make([]DependencyState, 0, len(specs))
	for _, spec := range specs {
		resolved = append(resolved, resolver.Resolve(spec))
	}
	return resolved
}

func ResolveDependencyInventory() []DependencyState {
	return ResolveDependencyStates(BuildDependencyInventory(), NewPathResolver())
}

// BuildDependencyInventory 列出全部外部二进制依赖。解码器工具链是硬依赖,
// 帧采样、时长探测、截图和分段都经由它们完成。
func BuildDependencyInventory() []DependencySpec {
	return []DependencySpec{
		{
			ID:          "ffmpeg",
			Name:        "ffmpeg",
			Command:     "ffmpeg",
			Tier:        DependencyTierMust,
			StoragePath: storage.FfmpegPath,
			Hint:        "Required for frame extraction, screenshots and media segmentation.",
		},
		{
			ID:          "ffprobe",
			Name:        "ffprobe",
			Command:     "ffprobe",
			Tier:        DependencyTierMust,
			StoragePath: storage.FfprobePath,
			Hint:        "Required for media duration detection.",
		},
	}
}

// Check 解析依赖清单并记录诊断报告,必装依赖缺失时返回错误。
func Check() error {
	states := ResolveDependencyInventory()
	log.GetLogger().Info("外部依赖检查 External dependency check\n" + FormatDependencyReport(states))

	var missing []string
	for _, state := range states {
		if state.Tier == DependencyTierMust && state.Status != DependencyStatusOK {
			missing = append(missing, state.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
	}
	return nil
}

// FormatDependencyReport 渲染人读的依赖状态清单,--diagnose 也用它输出。
func FormatDependencyReport(states []DependencyState) string {
	if len(states) == 0 {
		return "No dependencies to diagnose."
	}

	lines := []string{"Dependency status"}
	for _, state := range states {
		lines = append(lines, formatDependencyLine(state))
		if state.Error != "" {
			lines = append(lines, "  error: "+state.Error)
		}
		if state.Hint != "" {
			lines = append(lines, "  hint: "+state.Hint)
		}
	}
	return strings.Join(lines, "\n")
}

func formatDependencyLine(state DependencyState) string {
	resolvedPath := strings.TrimSpace(state.ResolvedPath)
	if resolvedPath == "" {
		resolvedPath = "unknown"
	}
	source := strings.TrimSpace(string(state.Source))
	if source == "" {
		source = "n/a"
	}
	return fmt.Sprintf("- %s [%s]: %s | path=%s | source=%s",
		state.Name, strings.ToUpper(string(state.Tier)), state.Status, resolvedPath, source)
}
