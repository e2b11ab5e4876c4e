package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
)

func TestPlanTimestamps(t *testing.T) {
	cases := []struct {
		name     string
		duration float64
		interval int
		max      int
		want     int
		last     int
	}{
		{"ten minute lecture", 610, 2, 1000, 305, 608},
		{"one second longer", 611, 2, 1000, 306, 610},
		{"capped by max frames", 610, 2, 100, 100, 198},
		{"shorter than one second", 0.5, 2, 1000, 0, 0},
		{"sub interval keeps zero frame", 1.5, 2, 1000, 1, 0},
		{"exact multiple", 600, 300, 0, 2, 300},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PlanTimestamps(tc.duration, tc.interval, tc.max)
			require.Len(t, got, tc.want)
			if tc.want == 0 {
				return
			}
			assert.Equal(t, 0, got[0])
			assert.Equal(t, tc.last, got[len(got)-1])
			for i, ts := range got {
				assert.Equal(t, i*tc.interval, ts)
			}
		})
	}

	assert.Nil(t, PlanTimestamps(100, 0, 10))
	assert.Nil(t, PlanTimestamps(-3, 2, 10))
}

func TestExtractFramesWritesInSampleOrder(t *testing.T) {
	stubFfmpeg(t, "#!/bin/sh\nexit 0\n")
	stubProbeDuration(t, 13, nil)

	frameDir := filepath.Join(t.TempDir(), "frames")
	video := filepath.Join(t.TempDir(), "video.mp4")
	paths, err := ExtractFrames(context.Background(), video, frameDir, SampleOptions{IntervalSec: 3, Workers: 4})
	require.NoError(t, err)

	want := []string{"frame_00_00.jpg", "frame_00_03.jpg", "frame_00_06.jpg", "frame_00_09.jpg", "frame_00_12.jpg"}
	require.Len(t, paths, len(want))
	for i, path := range paths {
		assert.Equal(t, want[i], filepath.Base(path))
		assert.Equal(t, frameDir, filepath.Dir(path))
	}
}

func TestExtractFramesClearsStaleFrames(t *testing.T) {
	stubFfmpeg(t, "#!/bin/sh\nexit 0\n")
	stubProbeDuration(t, 2, nil)

	frameDir := t.TempDir()
	stale := filepath.Join(frameDir, "frame_59_59.jpg")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))
	keep := filepath.Join(frameDir, "grid_1.jpg")
	require.NoError(t, os.WriteFile(keep, []byte("keep"), 0o644))

	_, err := ExtractFrames(context.Background(), filepath.Join(t.TempDir(), "v.mp4"), frameDir, SampleOptions{IntervalSec: 2})
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(keep)
	assert.NoError(t, err)
}

func TestExtractFramesFailFast(t *testing.T) {
	stubFfmpeg(t, "#!/bin/sh\nexit 1\n")
	stubProbeDuration(t, 10, nil)

	paths, err := ExtractFrames(context.Background(), filepath.Join(t.TempDir(), "v.mp4"), filepath.Join(t.TempDir(), "frames"), SampleOptions{IntervalSec: 2, Workers: 2})
	require.Error(t, err)
	assert.Nil(t, paths)
	assert.True(t, apperrors.Is(err, apperrors.CodeMediaProcessing))
}

func TestExtractFramesProbeFailure(t *testing.T) {
	stubProbeDuration(t, 0, apperrors.New(apperrors.CodeMediaProbe, "视频探测失败 Media probe failed"))

	paths, err := ExtractFrames(context.Background(), filepath.Join(t.TempDir(), "v.mp4"), filepath.Join(t.TempDir(), "frames"), SampleOptions{IntervalSec: 2})
	require.Error(t, err)
	assert.Nil(t, paths)
	assert.True(t, apperrors.Is(err, apperrors.CodeMediaProcessing))
}
