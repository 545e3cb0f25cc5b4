// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/scanner111/pkg/crashlog"
)

type stubHasher struct {
	hash string
	err  error
}

func (s stubHasher) HashFile(string) (string, error) { return s.hash, s.err }

type stubModManager struct {
	staging ModManagerStaging
	err     error
}

func (s stubModManager) Probe() (ModManagerStaging, error) { return s.staging, s.err }

func TestFileIntegrityAnalyzer_DisabledWithoutFcxMode(t *testing.T) {
	a := NewFileIntegrityAnalyzer(false, "", "", nil, nil, [2]string{}, nil, nil)
	res, err := a.Analyze(context.Background(), &crashlog.CrashLog{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.HasFindings() {
		t.Fatal("disabled analyzer should report no findings")
	}
	if res.Fcx.GameStatus != GameStatusGood {
		t.Errorf("expected Good status when disabled, got %s", res.Fcx.GameStatus)
	}
}

func TestFileIntegrityAnalyzer_MissingExecutableIsCritical(t *testing.T) {
	root := t.TempDir()
	a := NewFileIntegrityAnalyzer(true, root, "Fallout4.exe", nil, nil, [2]string{}, nil, nil)
	res, err := a.Analyze(context.Background(), &crashlog.CrashLog{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Fcx.GameStatus != GameStatusCritical {
		t.Errorf("expected Critical status, got %s", res.Fcx.GameStatus)
	}
}

func TestFileIntegrityAnalyzer_KnownHashIsGood(t *testing.T) {
	root := t.TempDir()
	exePath := filepath.Join(root, "Fallout4.exe")
	if err := os.WriteFile(exePath, []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	knownHashes := map[string]string{"deadbeef": "1.10.163.0"}
	a := NewFileIntegrityAnalyzer(true, root, "Fallout4.exe", knownHashes, nil, [2]string{}, stubHasher{hash: "deadbeef"}, nil)
	res, err := a.Analyze(context.Background(), &crashlog.CrashLog{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Fcx.GameStatus != GameStatusGood {
		t.Errorf("expected Good status, got %s", res.Fcx.GameStatus)
	}
	if len(res.Fcx.HashValidations) != 1 || !res.Fcx.HashValidations[0].Matched {
		t.Fatalf("expected a matched hash validation entry: %+v", res.Fcx.HashValidations)
	}
}

func TestFileIntegrityAnalyzer_UnknownHashWarns(t *testing.T) {
	root := t.TempDir()
	exePath := filepath.Join(root, "Fallout4.exe")
	if err := os.WriteFile(exePath, []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	a := NewFileIntegrityAnalyzer(true, root, "Fallout4.exe", map[string]string{}, nil, [2]string{}, stubHasher{hash: "unknownhash"}, nil)
	res, err := a.Analyze(context.Background(), &crashlog.CrashLog{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Fcx.VersionWarnings) == 0 {
		t.Fatal("expected a version warning for an unrecognized hash")
	}
}

func TestFileIntegrityAnalyzer_MissingXSELoaderWarns(t *testing.T) {
	root := t.TempDir()
	exePath := filepath.Join(root, "Fallout4.exe")
	if err := os.WriteFile(exePath, []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	a := NewFileIntegrityAnalyzer(true, root, "Fallout4.exe", map[string]string{}, nil, [2]string{"f4se_loader.exe", "f4sevr_loader.exe"}, stubHasher{hash: "x"}, nil)
	res, err := a.Analyze(context.Background(), &crashlog.CrashLog{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Fcx.GameStatus != GameStatusWarning {
		t.Errorf("expected Warning status, got %s", res.Fcx.GameStatus)
	}
	if len(res.Fcx.FileChecks) != 2 {
		t.Fatalf("expected 2 file checks, got %d", len(res.Fcx.FileChecks))
	}
}

func TestFileIntegrityAnalyzer_PluginLimitExceeded(t *testing.T) {
	root := t.TempDir()
	exePath := filepath.Join(root, "Fallout4.exe")
	if err := os.WriteFile(exePath, []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	mgr := stubModManager{staging: ModManagerStaging{EnabledModCount: 300, PluginCountLimit: 254}}
	a := NewFileIntegrityAnalyzer(true, root, "Fallout4.exe", map[string]string{}, nil, [2]string{}, stubHasher{hash: "x"}, mgr)
	res, err := a.Analyze(context.Background(), &crashlog.CrashLog{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Fcx.GameStatus != GameStatusWarning {
		t.Errorf("expected Warning status for exceeding plugin limit, got %s", res.Fcx.GameStatus)
	}
}

func TestFileIntegrityAnalyzer_ModManagerProbeFailureIsNotFatal(t *testing.T) {
	root := t.TempDir()
	exePath := filepath.Join(root, "Fallout4.exe")
	if err := os.WriteFile(exePath, []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	mgr := stubModManager{err: errors.New("mod manager not running")}
	a := NewFileIntegrityAnalyzer(true, root, "Fallout4.exe", map[string]string{}, nil, [2]string{}, stubHasher{hash: "x"}, mgr)
	res, err := a.Analyze(context.Background(), &crashlog.CrashLog{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Fcx.GameStatus != GameStatusGood {
		t.Errorf("a probe failure should not by itself mark the scan unhealthy, got %s", res.Fcx.GameStatus)
	}
}

func TestDetectPlatform(t *testing.T) {
	cases := map[string]Platform{
		`C:\Program Files (x86)\Steam\steamapps\common\Fallout4`: PlatformSteam,
		`C:\GOG Games\Fallout4`:                                  PlatformGOG,
		`C:\Games\Fallout4`:                                      PlatformUnknown,
	}
	for path, want := range cases {
		if got := detectPlatform(path); got != want {
			t.Errorf("detectPlatform(%q) = %v, want %v", path, got, want)
		}
	}
}
