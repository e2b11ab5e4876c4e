package media

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Acclerate/BiliNote/internal/storage"
)

func TestPlannedSegments(t *testing.T) {
	assert.Equal(t, 1, PlannedSegments(200, 300))
	assert.Equal(t, 1, PlannedSegments(300, 300))
	assert.Equal(t, 2, PlannedSegments(600, 300))
	assert.Equal(t, 3, PlannedSegments(601, 300))
	assert.Equal(t, 3, PlannedSegments(700, 300))
	assert.Equal(t, 0, PlannedSegments(0, 300))
	assert.Equal(t, 0, PlannedSegments(100, 0))
}

func TestSplitByDurationShortInput(t *testing.T) {
	// 指向不存在的解码器,证明短视频直接返回、不触发任何调用
	orig := storage.FfmpegPath
	storage.FfmpegPath = filepath.Join(t.TempDir(), "missing-ffmpeg")
	t.Cleanup(func() { storage.FfmpegPath = orig })
	stubProbeDuration(t, 200, nil)

	input := filepath.Join(t.TempDir(), "video.mp4")
	assert.Equal(t, []string{input}, SplitByDuration(input, "", 300))
}

func TestSplitByDurationProbeFailure(t *testing.T) {
	stubProbeDuration(t, 0, errors.New("no such file"))

	input := filepath.Join(t.TempDir(), "video.mp4")
	assert.Equal(t, []string{input}, SplitByDuration(input, "", 300))
}

func TestSplitByDurationStreamCopies(t *testing.T) {
	argsLog := filepath.Join(t.TempDir(), "args.log")
	stubFfmpeg(t, "#!/bin/sh\necho \"$@\" >> "+argsLog+"\n")
	stubProbeDuration(t, 700, nil)

	dir := t.TempDir()
	input := filepath.Join(dir, "lecture.mp4")
	outputDir := filepath.Join(dir, "segments")

	got := SplitByDuration(input, outputDir, 300)
	require.Len(t, got, 3)
	assert.Equal(t, filepath.Join(outputDir, "lecture_part01.mp4"), got[0])
	assert.Equal(t, filepath.Join(outputDir, "lecture_part02.mp4"), got[1])
	assert.Equal(t, filepath.Join(outputDir, "lecture_part03.mp4"), got[2])

	data, err := os.ReadFile(argsLog)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		assert.Contains(t, line, "-ss "+strconv.Itoa(i*300))
		assert.Contains(t, line, "-t 300")
		assert.Contains(t, line, "-c copy")
	}
}

func TestSplitByDurationDefaultDir(t *testing.T) {
	stubFfmpeg(t, "#!/bin/sh\nexit 0\n")
	stubProbeDuration(t, 400, nil)

	dir := t.TempDir()
	input := filepath.Join(dir, "talk.mkv")

	got := SplitByDuration(input, "", 300)
	require.Len(t, got, 2)
	assert.Equal(t, filepath.Join(dir, "segments", "talk_part01.mkv"), got[0])
	assert.Equal(t, filepath.Join(dir, "segments", "talk_part02.mkv"), got[1])

	info, err := os.Stat(filepath.Join(dir, "segments"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSplitByDurationSoftFail(t *testing.T) {
	stubFfmpeg(t, "#!/bin/sh\nexit 1\n")
	stubProbeDuration(t, 700, nil)

	input := filepath.Join(t.TempDir(), "video.mp4")
	assert.Equal(t, []string{input}, SplitByDuration(input, filepath.Join(t.TempDir(), "segments"), 300))
}
