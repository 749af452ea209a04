package dataconv

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// version, commit, and buildTime are set via ldflags for release builds.
	// Development builds report "dev" and fall back to VCS stamping.
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Version returns the compiled version or 'dev' if run from source
func Version() string {
	return version
}

// Commit returns the short VCS revision the binary was built from, or
// "unknown".
func Commit() string {
	if commit != "unknown" {
		return commit
	}
	if rev := vcsSetting("vcs.revision"); len(rev) >= 7 {
		return rev[:7]
	}
	return commit
}

// BuildTime returns the RFC 3339 build or commit time, or "unknown".
func BuildTime() string {
	if buildTime != "unknown" {
		return buildTime
	}
	if t := vcsSetting("vcs.time"); t != "" {
		return t
	}
	return buildTime
}

// GoVersion returns the Go toolchain version the binary was built with.
func GoVersion() string {
	return runtime.Version()
}

// UserAgent returns the User-Agent string to use
func UserAgent() string {
	return fmt.Sprintf("dataconv/%s", version)
}

// BuildInfo returns a multi-line summary of the build metadata.
func BuildInfo() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuild Time: %s\nGo Version: %s",
		Version(), Commit(), BuildTime(), GoVersion())
}

func vcsSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}
