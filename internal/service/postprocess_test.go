package service

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Acclerate/BiliNote/internal/storage"
)

// stubShotFfmpeg 顶替截图用的 ffmpeg,把固定内容写到 -y 之后的输出路径。
func stubShotFfmpeg(t *testing.T, script string) {
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

const captureScript = `#!/bin/sh
prev=""
out=""
for a in "$@"; do
  if [ "$prev" = "-y" ]; then out="$a"; fi
  prev="$a"
done
if [ -n "$out" ]; then printf 'jpeg-bytes' > "$out"; fi
exit 0
`

func TestMaterializeScreenshots(t *testing.T) {
	tempDir := stubAppDirs(t)
	stubShotFfmpeg(t, captureScript)

	taskDir := filepath.Join(tempDir, "output-root", "tasks", "task-9")
	require.NoError(t, os.MkdirAll(taskDir, 0o755))

	markdown := "# 第一章\n\n要点\n\n*Screenshot-03:25\n\n# 第二章\n\n*Screenshot-00:75\n\n结尾"
	svc := &Service{}
	got := svc.materializeScreenshots(context.Background(), markdown, "/data/lecture.mp4", taskDir, "task-9")

	assert.Contains(t, got, "![03:25](/api/file/tasks/task-9/shots/shot_03_25.jpg)")
	// 秒数非法的标记被丢弃
	assert.NotContains(t, got, "Screenshot-00:75")
	assert.NotContains(t, got, "*Screenshot-03:25")

	data, err := os.ReadFile(filepath.Join(taskDir, "shots", "shot_03_25.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestMaterializeScreenshotsKeepsInlineText(t *testing.T) {
	tempDir := stubAppDirs(t)
	stubShotFfmpeg(t, captureScript)

	taskDir := filepath.Join(tempDir, "output-root", "tasks", "task-10")
	require.NoError(t, os.MkdirAll(taskDir, 0o755))

	// 行内提及不是标记,只有独占一行的标记才会被替换
	markdown := "正文提到 *Screenshot-01:02 的写法\n*Screenshot-01:02\n"
	svc := &Service{}
	got := svc.materializeScreenshots(context.Background(), markdown, "/data/lecture.mp4", taskDir, "task-10")

	assert.Contains(t, got, "正文提到 *Screenshot-01:02 的写法")
	assert.Contains(t, got, "![01:02](/api/file/tasks/task-10/shots/shot_01_02.jpg)")
}

func TestMaterializeScreenshotsDropsMarkerOnCaptureFailure(t *testing.T) {
	tempDir := stubAppDirs(t)
	stubShotFfmpeg(t, "#!/bin/sh\nexit 1\n")

	taskDir := filepath.Join(tempDir, "output-root", "tasks", "task-11")
	require.NoError(t, os.MkdirAll(taskDir, 0o755))

	markdown := "# 章节\n\n*Screenshot-00:30\n\n正文"
	svc := &Service{}
	got := svc.materializeScreenshots(context.Background(), markdown, "/data/lecture.mp4", taskDir, "task-11")

	assert.NotContains(t, got, "Screenshot-00:30")
	assert.NotContains(t, got, "![")
	assert.Contains(t, got, "正文")
}
