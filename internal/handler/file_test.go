package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/appdirs"
	"github.com/Acclerate/BiliNote/log"
)

func TestMain(m *testing.M) {
	log.Logger = zap.NewNop()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func configurePathResolverForTest(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	originalResolver := appDirsResolver
	appDirsResolver = func() (appdirs.Paths, error) {
		return appdirs.Paths{
			OutputDir: filepath.Join(tempDir, "output"),
			CacheDir:  filepath.Join(tempDir, "cache"),
		}, nil
	}
	t.Cleanup(func() {
		appDirsResolver = originalResolver
	})
	return tempDir
}

func buildFileRouter() *gin.Engine {
	router := gin.New()
	h := Handler{}
	router.GET("/api/file/*filepath", h.DownloadFile)
	router.HEAD("/api/file/*filepath", h.DownloadFile)
	router.POST("/api/file/upload", h.UploadFile)
	return router
}

func TestDownloadFile_NotFound(t *testing.T) {
	configurePathResolverForTest(t)

	router := buildFileRouter()

	req, _ := http.NewRequest("HEAD", "/api/file/tasks/nonexistent/frames/frame_00_00.jpg", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code, "Should return 404 for non-existent file")
}

func TestDownloadFile_Exists(t *testing.T) {
	tempDir := configurePathResolverForTest(t)

	shotsDir := filepath.Join(tempDir, "output", "tasks", "test_task_exists", "shots")
	require.NoError(t, os.MkdirAll(shotsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(shotsDir, "shot_00_02.jpg"), []byte("jpeg"), 0o644))

	router := buildFileRouter()

	req, _ := http.NewRequest("HEAD", "/api/file/tasks/test_task_exists/shots/shot_00_02.jpg", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Should return 200 for existing file")
}

func TestDownloadFile_EmptyPath(t *testing.T) {
	configurePathResolverForTest(t)

	router := buildFileRouter()

	req, _ := http.NewRequest("GET", "/api/file/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code, "Empty path should not resolve to a file")
}

func TestDownloadFile_GET_ReturnsFileContent(t *testing.T) {
	tempDir := configurePathResolverForTest(t)

	gridDir := filepath.Join(tempDir, "output", "tasks", "test_download_task", "grids")
	require.NoError(t, os.MkdirAll(gridDir, 0o755))

	testContent := "grid sheet bytes"
	require.NoError(t, os.WriteFile(filepath.Join(gridDir, "grid_1.jpg"), []byte(testContent), 0o644))

	router := buildFileRouter()

	req, _ := http.NewRequest("GET", "/api/file/tasks/test_download_task/grids/grid_1.jpg", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "GET should return 200 for existing file")
	assert.Equal(t, testContent, w.Body.String(), "GET should return file content")
}

func TestDownloadFile_PathTraversalBlocked(t *testing.T) {
	configurePathResolverForTest(t)

	router := buildFileRouter()
	req, _ := http.NewRequest("GET", "/api/file/tasks/../../etc/passwd", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code, "Traversal path should be blocked")
}

func TestUploadFile(t *testing.T) {
	tempDir := configurePathResolverForTest(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "my lecture?.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake video bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	router := buildFileRouter()
	req, _ := http.NewRequest("POST", "/api/file/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Error int `json:"error"`
		Data  struct {
			Files []struct {
				FilePath     string `json:"file_path"`
				DownloadPath string `json:"download_path"`
			} `json:"files"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 0, res.Error)
	require.Len(t, res.Data.Files, 1)

	// 文件名特殊字符被替换,文件落在 uploads 根下
	assert.Equal(t, "my_lecture_.mp4", filepath.Base(res.Data.Files[0].FilePath))
	assert.Equal(t, "uploads/my_lecture_.mp4", res.Data.Files[0].DownloadPath)
	saved, err := os.ReadFile(filepath.Join(tempDir, "output", "uploads", "my_lecture_.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "fake video bytes", string(saved))

	// 已存盘的内容可经下载接口取回
	req, _ = http.NewRequest("GET", "/api/file/"+res.Data.Files[0].DownloadPath, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fake video bytes", w.Body.String())
}

func TestUploadFile_NoFile(t *testing.T) {
	configurePathResolverForTest(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.Close())

	router := buildFileRouter()
	req, _ := http.NewRequest("POST", "/api/file/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Error int `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEqual(t, 0, res.Error)
}

func TestSanitizeUploadName(t *testing.T) {
	assert.Equal(t, "a_b.mp4", sanitizeUploadName("a b.mp4"))
	assert.Equal(t, "evil.mp4", sanitizeUploadName("../evil.mp4"))
	assert.Equal(t, "evil.mp4", sanitizeUploadName("..\\evil.mp4"))
	assert.NotEmpty(t, sanitizeUploadName("###"))
}
