// SPDX-License-Identifier: MIT
//
// Package build exposes the name, version, commit and build time of the
// binary. Values come from linker flags when present:
//
//	go build -ldflags "-X wavemath/pkg/build.buildName=wavemath -X wavemath/pkg/build.buildVersion=0.1.0 ..."
//
// and otherwise from the module and VCS metadata the Go toolchain embeds.
package build

import (
	"fmt"
	"runtime/debug"
)

// Description is the one-line summary shown in command help.
const Description = "Decompose audio into dominant sinusoids and synthesize waveforms from equations"

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Package-level variables for build information. These are populated by -ldflags
// during compilation. Default values of "unknown" are used during development.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "unknown",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "unknown",
	}

	readBuildInfo = debug.ReadBuildInfo
)

// Initialize copies build information into the buildFlags struct. When no
// linker flags were given it falls back to the embedded build info. Partially
// set linker flags are an error.
func Initialize() error {
	if buildName == "" && buildTime == "" && buildCommit == "" && buildVersion == "" {
		fromBuildInfo()
		return nil
	}

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

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

func fromBuildInfo() {
	buildFlags.Name = "wavemath"

	info, ok := readBuildInfo()
	if !ok {
		return
	}
	if info.Main.Version != "" {
		buildFlags.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			buildFlags.Commit = s.Value
		case "vcs.time":
			buildFlags.Time = s.Value
		}
	}
}

// GetBuildFlags returns the current build information. Initialize()
// must be called before this function to ensure the build information
// is valid.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
