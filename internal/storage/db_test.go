package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Acclerate/BiliNote/internal/appdirs"
)

func stubAppDirs(t *testing.T, paths appdirs.Paths, err error) {
	t.Helper()

	original := appDirsResolver
	appDirsResolver = func() (appdirs.Paths, error) { return paths, err }
	t.Cleanup(func() { appDirsResolver = original })
}

func TestResolveDBPath(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache-root")
	stubAppDirs(t, appdirs.Paths{CacheDir: cacheDir}, nil)

	got, err := resolveDBPath()
	if err != nil {
		t.Fatalf("resolveDBPath() error: %v", err)
	}
	if want := filepath.Join(cacheDir, "bilinote.db"); got != want {
		t.Fatalf("resolveDBPath() = %q, want %q", got, want)
	}
}

func TestResolveDBPathPropagatesResolverError(t *testing.T) {
	stubAppDirs(t, appdirs.Paths{}, errors.New("no home"))

	if _, err := resolveDBPath(); err == nil || !strings.Contains(err.Error(), "no home") {
		t.Fatalf("resolveDBPath() error = %v, want resolver failure", err)
	}
}

func TestApplyConfiguredBinPaths(t *testing.T) {
	originalFfmpeg := FfmpegPath
	originalFfprobe := FfprobePath
	t.Cleanup(func() {
		FfmpegPath = originalFfmpeg
		FfprobePath = originalFfprobe
	})

	// Empty values keep the bare command names.
	FfmpegPath = "ffmpeg"
	FfprobePath = "ffprobe"
	ApplyConfiguredBinPaths("", "  ")
	if FfmpegPath != "ffmpeg" {
		t.Fatalf("FfmpegPath = %q, want %q", FfmpegPath, "ffmpeg")
	}
	if FfprobePath != "ffprobe" {
		t.Fatalf("FfprobePath = %q, want %q", FfprobePath, "ffprobe")
	}

	// A configured location that is not on PATH resolves to an absolute path.
	tempDir := t.TempDir()
	configured := filepath.Join(tempDir, "bin", "ffmpeg-custom")
	ApplyConfiguredBinPaths(configured, "")
	if !filepath.IsAbs(FfmpegPath) {
		t.Fatalf("FfmpegPath = %q, want absolute path", FfmpegPath)
	}
	if filepath.Base(FfmpegPath) != "ffmpeg-custom" {
		t.Fatalf("FfmpegPath base = %q, want %q", filepath.Base(FfmpegPath), "ffmpeg-custom")
	}
}
