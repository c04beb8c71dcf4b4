// Package version provides version information for the foundry CLI.
//
// Overview:
//   - Responsibility: CLI version metadata (version, commit, build time)
//   - Key Types: Info
//   - Concurrency Model: Values are set at link time and read-only afterwards
//   - Error Semantics: No errors; unknown fields fall back to module build info or "unknown"
//   - Performance Notes: Build info read once per call
//
// Usage:
//
//	fmt.Println(version.GetVersionString())
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the CLI version, set with -ldflags "-X" during release builds.
var Version = "dev"

// Commit is the git commit hash, set during release builds.
var Commit = ""

// BuildTime is the build timestamp in RFC3339 format, set during release builds.
var BuildTime = ""

// Info is the resolved version metadata.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get resolves version metadata. Fields not stamped at link time are taken
// from the module's VCS build settings when available.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" && len(s.Value) >= 7 {
					info.Commit = s.Value[:7]
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}

	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.BuildTime == "" {
		info.BuildTime = "unknown"
	}
	return info
}

// GetVersionString returns the version line, e.g.
// foundry version v0.1.0 (commit 4a9b2c1, built 2026-03-07T12:10:00Z)
func GetVersionString() string {
	i := Get()
	return fmt.Sprintf("foundry version %s (commit %s, built %s)", i.Version, i.Commit, i.BuildTime)
}

// GetFullVersionInfo returns the version line plus the toolchain and platform.
func GetFullVersionInfo() string {
	i := Get()
	return fmt.Sprintf("%s\ngo version %s (%s)", GetVersionString(), i.GoVersion, i.Platform)
}
