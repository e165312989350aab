// SPDX-License-Identifier: MIT
package build

import (
	"os"
	"runtime/debug"
	"testing"
)

var (
	origName    string
	origTime    string
	origCommit  string
	origVersion string
	origInfo    Info
)

func TestMain(m *testing.M) {
	origName = buildName
	origTime = buildTime
	origCommit = buildCommit
	origVersion = buildVersion
	origInfo = buildInfo

	exitCode := m.Run()

	buildName = origName
	buildTime = origTime
	buildCommit = origCommit
	buildVersion = origVersion
	buildInfo = origInfo

	os.Exit(exitCode)
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name        string
		buildName   string
		buildTime   string
		buildCommit string
		buildVer    string
		wantErrMsg  string
	}{
		{
			"Missing BuildName",
			"",
			"2025-04-13",
			"abcdef123",
			"v1.0.0",
			"BuildName is required",
		},
		{
			"Missing BuildTime",
			"testapp",
			"",
			"abcdef123",
			"v1.0.0",
			"BuildTime is required",
		},
		{
			"Missing BuildCommit",
			"testapp",
			"2025-04-13",
			"",
			"v1.0.0",
			"BuildCommit is required",
		},
		{
			"Missing BuildVersion",
			"testapp",
			"2025-04-13",
			"abcdef123",
			"",
			"BuildVersion is required",
		},
		{
			"Success Case",
			"testapp",
			"2025-04-13",
			"abcdef123",
			"v1.0.0",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buildInfo = origInfo

			buildName = tt.buildName
			buildTime = tt.buildTime
			buildCommit = tt.buildCommit
			buildVersion = tt.buildVer

			err := Initialize()

			if tt.wantErrMsg != "" {
				if err == nil {
					t.Errorf("Initialize() expected error, got nil")
					return
				}
				if err.Error() != tt.wantErrMsg {
					t.Errorf("Initialize() error = %v, want %v", err, tt.wantErrMsg)
					return
				}
				return
			}

			if err != nil {
				t.Errorf("Initialize() unexpected error: %v", err)
				return
			}

			if buildInfo.Name != tt.buildName {
				t.Errorf("buildInfo.Name = %v, want %v", buildInfo.Name, tt.buildName)
			}
			if buildInfo.Time != tt.buildTime {
				t.Errorf("buildInfo.Time = %v, want %v", buildInfo.Time, tt.buildTime)
			}
			if buildInfo.Commit != tt.buildCommit {
				t.Errorf("buildInfo.Commit = %v, want %v", buildInfo.Commit, tt.buildCommit)
			}
			if buildInfo.Version != tt.buildVer {
				t.Errorf("buildInfo.Version = %v, want %v", buildInfo.Version, tt.buildVer)
			}
		})
	}
}

func TestGetReturnsCopy(t *testing.T) {
	buildInfo = Info{Name: "testapp", Time: "2025-04-13", Commit: "abcdef123", Version: "v1.0.0"}

	info := Get()
	info.Version = "changed"

	if Get().Version != "v1.0.0" {
		t.Errorf("Get() exposed internal state: %+v", Get())
	}
	if got, want := Get().String(), "v1.0.0 (commit abcdef123, built 2025-04-13)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestInitializeOrDefault(t *testing.T) {
	orig := readBuildInfo
	defer func() { readBuildInfo = orig }()

	buildName, buildTime, buildCommit, buildVersion = "", "", "", ""
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Path: "spectro", Version: "v0.3.0"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123abc"},
				{Key: "vcs.time", Value: "2025-05-01T10:00:00Z"},
			},
		}, true
	}

	tests := []struct {
		name string
		info func() (*debug.BuildInfo, bool)
		want Info
	}{
		{"From toolchain", readBuildInfo, Info{"spectro", "2025-05-01T10:00:00Z", "0123abc", "v0.3.0"}},
		{"No build info", func() (*debug.BuildInfo, bool) { return nil, false }, Info{"spectro", "unknown", "unknown", "unknown"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buildInfo = Info{Name: "spectro", Time: "unknown", Commit: "unknown", Version: "unknown"}
			readBuildInfo = tt.info
			if got := InitializeOrDefault(); got != tt.want {
				t.Errorf("InitializeOrDefault() = %+v, want %+v", got, tt.want)
			}
		})
	}

	buildName, buildTime, buildCommit, buildVersion = "app", "now", "c0ffee", "v9"
	if got := InitializeOrDefault(); got.Version != "v9" || got.Commit != "c0ffee" {
		t.Errorf("ldflags should win: %+v", got)
	}
}
