// SPDX-License-Identifier: MIT
//
// Package build provides functionality to manage and retrieve build information
// for a Go application. It allows embedding metadata such as the application
// name, build timestamp, Git commit hash, and semantic version into the binary
// at compile time using linker flags. Unstamped development builds keep their
// defaults instead of failing, so `go run .` works without ldflags.
package build

import "fmt"

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Package-level variables for build information. These are populated by -ldflags
// during compilation, for example:
//
//	go build -ldflags "-X nowplaying/pkg/build.buildVersion=0.3.0"
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "nowplaying",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
)

// Initialize copies build information from the ldflags variables into the
// buildFlags struct. This should be called early in program startup. Flags
// the build left unset keep their development defaults.
func Initialize() {
	if buildName != "" {
		buildFlags.Name = buildName
	}
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildCommit != "" {
		buildFlags.Commit = buildCommit
	}
	if buildVersion != "" {
		buildFlags.Version = buildVersion
	}
}

// GetBuildFlags returns the current build information. Initialize()
// should be called before this function so stamped values are visible.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// Stamped reports whether the binary carries release build information
// rather than development defaults.
func (f *ldFlags) Stamped() bool {
	return f.Version != "dev"
}

// String renders the build information for the CLI version line.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}
