package log

import (
	"errors"
	"os"
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

func TestResolveLogDir(t *testing.T) {
	testCases := []struct {
		name    string
		paths   appdirs.Paths
		err     error
		want    string
		wantErr string
	}{
		{
			name:  "uses resolved log dir",
			paths: appdirs.Paths{LogDir: filepath.Join("tmp", "logs")},
			want:  filepath.Join("tmp", "logs"),
		},
		{
			name:  "blank dir falls back to cwd",
			paths: appdirs.Paths{LogDir: " \t "},
			want:  ".",
		},
		{
			name:    "resolver error propagates",
			err:     errors.New("resolve failed"),
			wantErr: "resolve failed",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			stubAppDirs(t, tc.paths, tc.err)

			got, err := ResolveLogDir()
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("ResolveLogDir() error = %v, want containing %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveLogDir() returned unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ResolveLogDir() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInitLoggerWritesJSONFile(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "data", "logs")
	stubAppDirs(t, appdirs.Paths{LogDir: logDir}, nil)

	InitLogger()
	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil after InitLogger()")
	}

	// Debug 级别只进文件核心,不上控制台
	GetLogger().Debug("logger file core check")
	_ = GetLogger().Sync()

	data, err := os.ReadFile(filepath.Join(logDir, logFileName))
	if err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
	if !strings.Contains(string(data), "logger file core check") {
		t.Fatalf("log file does not contain the written entry: %q", string(data))
	}
	if !strings.Contains(string(data), `"msg"`) {
		t.Fatalf("log file entry is not JSON encoded: %q", string(data))
	}
}
