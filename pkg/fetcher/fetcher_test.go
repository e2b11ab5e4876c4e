package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/log"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
)

func TestMain(m *testing.M) {
	log.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func TestFetchToDir(t *testing.T) {
	payload := []byte("fake mp4 bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	destDir := t.TempDir()
	got, err := New("").FetchToDir(context.Background(), server.URL+"/media/lecture.mp4", destDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "lecture.mp4"), got)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFetchToDirAvoidsOverwrite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("new"))
	}))
	defer server.Close()

	destDir := t.TempDir()
	existing := filepath.Join(destDir, "lecture.mp4")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	got, err := New("").FetchToDir(context.Background(), server.URL+"/lecture.mp4", destDir)
	require.NoError(t, err)
	assert.NotEqual(t, existing, got)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), data)
}

func TestFetchToDirErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	destDir := t.TempDir()
	_, err := New("").FetchToDir(context.Background(), server.URL+"/missing.mp4", destDir)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeFetchFailed))

	// 失败时不留下半截文件
	entries, readErr := os.ReadDir(destDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestFetchToDirUnsupportedScheme(t *testing.T) {
	_, err := New("").FetchToDir(context.Background(), "ftp://example.com/video.mp4", t.TempDir())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeUnsupportedURL))
}

func TestDownloadFileName(t *testing.T) {
	assert.Equal(t, "talk_v_1.mp4", sanitizeFileName("talk v=1.mp4"))
	assert.Equal(t, "a.mp4", sanitizeFileName("__a.mp4_"))
}
