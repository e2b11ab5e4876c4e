package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/internal/storage"
	"github.com/Acclerate/BiliNote/log"
)

func TestMain(m *testing.M) {
	log.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func TestPathResolverResolve(t *testing.T) {
	storedBin := filepath.Join(t.TempDir(), "ffmpeg-stored")
	if err := os.WriteFile(storedBin, []byte("bin"), 0o755); err != nil {
		t.Fatalf("write stored binary: %v", err)
	}
	goneBin := filepath.Join(t.TempDir(), "ffmpeg-gone")

	notFound := func(file string) (string, error) {
		return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
	}

	testCases := []struct {
		name       string
		spec       DependencySpec
		configure  func(*PathResolver)
		wantStatus DependencyStatus
		wantSource DependencySource
		wantPath   string
		wantErr    bool
		wantErrSub string
	}{
		{
			name:       "configured path wins over PATH lookup",
			spec:       DependencySpec{Name: "ffmpeg", Command: "ffmpeg", StoragePath: storedBin},
			configure:  func(r *PathResolver) { r.LookPath = notFound },
			wantStatus: DependencyStatusOK,
			wantSource: DependencySourceStorage,
			wantPath:   storedBin,
		},
		{
			name: "unconfigured falls back to PATH lookup",
			spec: DependencySpec{Name: "ffmpeg", Command: "ffmpeg"},
			configure: func(r *PathResolver) {
				r.LookPath = func(file string) (string, error) {
					if file != "ffmpeg" {
						return "", fmt.Errorf("unexpected lookup %q", file)
					}
					return "/usr/bin/ffmpeg", nil
				}
			},
			wantStatus: DependencyStatusOK,
			wantSource: DependencySourceLookPath,
			wantPath:   "/usr/bin/ffmpeg",
		},
		{
			name:       "absent everywhere is reported missing",
			spec:       DependencySpec{Name: "ffmpeg", Command: "ffmpeg"},
			configure:  func(r *PathResolver) { r.LookPath = notFound },
			wantStatus: DependencyStatusMissing,
			wantSource: DependencySourceLookPath,
			wantErr:    true,
			wantErrSub: "executable file not found",
		},
		{
			name:       "configured path without file is reported missing",
			spec:       DependencySpec{Name: "ffmpeg", Command: "ffmpeg", StoragePath: goneBin},
			configure:  func(r *PathResolver) { r.LookPath = notFound },
			wantStatus: DependencyStatusMissing,
			wantSource: DependencySourceStorage,
			wantPath:   goneBin,
			wantErr:    true,
		},
		{
			name: "configured path stat failure is an error, not missing",
			spec: DependencySpec{Name: "ffmpeg", Command: "ffmpeg", StoragePath: "configured"},
			configure: func(r *PathResolver) {
				r.LookPath = notFound
				r.AbsPath = func(string) (string, error) { return "/cfg/ffmpeg", nil }
				r.Stat = func(string) (os.FileInfo, error) { return nil, errors.New("permission denied") }
			},
			wantStatus: DependencyStatusError,
			wantSource: DependencySourceStorage,
			wantPath:   "/cfg/ffmpeg",
			wantErr:    true,
			wantErrSub: "permission denied",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := NewPathResolver()
			tc.configure(&resolver)

			state := resolver.Resolve(tc.spec)

			if state.Status != tc.wantStatus {
				t.Fatalf("Status = %q, want %q", state.Status, tc.wantStatus)
			}
			if state.Source != tc.wantSource {
				t.Fatalf("Source = %q, want %q", state.Source, tc.wantSource)
			}
			if tc.wantPath != "" && state.ResolvedPath != tc.wantPath {
				t.Fatalf("ResolvedPath = %q, want %q", state.ResolvedPath, tc.wantPath)
			}
			if tc.wantErr && state.Error == "" {
				t.Fatal("Error is empty, want failure detail")
			}
			if !tc.wantErr && state.Error != "" {
				t.Fatalf("Error = %q, want empty for resolved dependency", state.Error)
			}
			if tc.wantErrSub != "" && !strings.Contains(state.Error, tc.wantErrSub) {
				t.Fatalf("Error = %q, want containing %q", state.Error, tc.wantErrSub)
			}
		})
	}
}

func TestBuildDependencyInventoryCoversDecoderToolchain(t *testing.T) {
	specs := BuildDependencyInventory()
	if len(specs) != 2 {
		t.Fatalf("len(specs) = %d, want 2", len(specs))
	}

	for _, id := range []string{"ffmpeg", "ffprobe"} {
		spec, ok := findDependencySpec(specs, id)
		if !ok {
			t.Fatalf("%s spec not found", id)
		}
		if spec.Tier != DependencyTierMust {
			t.Fatalf("%s tier = %q, want %q", id, spec.Tier, DependencyTierMust)
		}
	}
}

func TestCheckFailsWhenDecoderMissing(t *testing.T) {
	origFfmpeg, origFfprobe := storage.FfmpegPath, storage.FfprobePath
	t.Cleanup(func() {
		storage.FfmpegPath, storage.FfprobePath = origFfmpeg, origFfprobe
	})

	missingDir := t.TempDir()
	storage.FfmpegPath = filepath.Join(missingDir, "ffmpeg")
	storage.FfprobePath = filepath.Join(missingDir, "ffprobe")

	err := Check()
	if err == nil {
		t.Fatal("Check() = nil, want error for missing decoders")
	}
	if !strings.Contains(err.Error(), "ffmpeg") || !strings.Contains(err.Error(), "ffprobe") {
		t.Fatalf("Check() error = %q, want to name both decoders", err.Error())
	}
}

func TestCheckPassesWithResolvableDecoders(t *testing.T) {
	origFfmpeg, origFfprobe := storage.FfmpegPath, storage.FfprobePath
	t.Cleanup(func() {
		storage.FfmpegPath, storage.FfprobePath = origFfmpeg, origFfprobe
	})

	binDir := t.TempDir()
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		path := filepath.Join(binDir, name)
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatalf("os.WriteFile() failed: %v", err)
		}
	}
	storage.FfmpegPath = filepath.Join(binDir, "ffmpeg")
	storage.FfprobePath = filepath.Join(binDir, "ffprobe")

	if err := Check(); err != nil {
		t.Fatalf("Check() returned error: %v", err)
	}
}

func TestFormatDependencyReport(t *testing.T) {
	states := []DependencyState{
		{
			DependencySpec: DependencySpec{Name: "ffmpeg", Tier: DependencyTierMust, Hint: "install ffmpeg"},
			Status:         DependencyStatusMissing,
			Source:         DependencySourceLookPath,
			Error:          "executable file not found",
		},
	}

	report := FormatDependencyReport(states)
	for _, want := range []string{"ffmpeg", "MUST", "missing", "error: executable file not found", "hint: install ffmpeg"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report %q does not contain %q", report, want)
		}
	}

	if got := FormatDependencyReport(nil); got != "No dependencies to diagnose." {
		t.Fatalf("FormatDependencyReport(nil) = %q", got)
	}
}

func findDependencySpec(specs []DependencySpec, id string) (DependencySpec, bool) {
	for _, spec := range specs {
		if spec.ID == id {
			return spec, true
		}
	}
	return DependencySpec{}, false
}
