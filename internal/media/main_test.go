package media

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/storage"
	"github.com/Acclerate/BiliNote/log"
)

func TestMain(m *testing.M) {
	log.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// stubProbeDuration 替换时长探测,测试不依赖真实 ffprobe。
func stubProbeDuration(t *testing.T, duration float64, err error) {
	t.Helper()
	orig := probeDuration
	probeDuration = func(string) (float64, error) { return duration, err }
	t.Cleanup(func() { probeDuration = orig })
}

// stubFfmpeg 用一段 shell 脚本顶替解码器,用来验证调用行为与失败路径。
func stubFfmpeg(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake decoder script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	orig := storage.FfmpegPath
	storage.FfmpegPath = path
	t.Cleanup(func() { storage.FfmpegPath = orig })
}
