// SPDX-License-Identifier: MIT
//
// Package build carries the metadata stamped into the spectro binary with
// linker flags:
//
//	go build -ldflags "-X spectro/pkg/build.buildName=spectro \
//	  -X spectro/pkg/build.buildVersion=0.3.0 ..."
//
// Development builds fall back to the module version recorded by the Go
// toolchain.
package build

import (
	"fmt"
	"runtime/debug"
)

// Info describes one build.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// String formats the info for --version output.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.Commit, i.Time)
}

// Package-level variables for build information. These are populated by -ldflags
// during compilation. Default values of "unknown" are used during development.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildInfo    = Info{
		Name:    "spectro",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "unknown",
	}
)

// readBuildInfo is swapped out in tests.
var readBuildInfo = debug.ReadBuildInfo

// Initialize validates and copies build information from ldflags variables.
// It returns an error naming the first missing flag; the development
// defaults stay in place in that case.
func Initialize() error {
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildInfo = Info{
		Name:    buildName,
		Time:    buildTime,
		Commit:  buildCommit,
		Version: buildVersion,
	}
	return nil
}

// InitializeOrDefault is Initialize for binaries built without ldflags: the
// version and VCS revision recorded by the toolchain are used instead.
func InitializeOrDefault() Info {
	if err := Initialize(); err == nil {
		return buildInfo
	}

	bi, ok := readBuildInfo()
	if !ok {
		return buildInfo
	}
	if v := bi.Main.Version; v != "" {
		buildInfo.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			buildInfo.Commit = s.Value
		case "vcs.time":
			buildInfo.Time = s.Value
		}
	}
	return buildInfo
}

// Get returns a copy of the current build information.
func Get() Info {
	return buildInfo
}
