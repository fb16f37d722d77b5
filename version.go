package imagemeta

import (
	"runtime"

	"github.com/simonhull/imagemeta/internal/codes"
)

// Version is the semantic version of the imagemeta library.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// VersionInfo contains detailed version information.
type VersionInfo struct {
	// Version is the semantic version (e.g., "0.1.0")
	Version string
	// CodecVersion is the codec family version the failure codes follow
	CodecVersion string
	// ErrorTable is the classification table in use ("modern" or "legacy")
	ErrorTable string
	// GitCommit is the git commit hash (set via ldflags at build time)
	GitCommit string
	// BuildTime is the build timestamp (set via ldflags at build time)
	BuildTime string
	// GoVersion is the Go version used to build
	GoVersion string
}

// GetVersionInfo returns detailed version information.
//
// GitCommit, BuildTime, and GoVersion are populated at build time via -ldflags:
//
//	go build -ldflags="-X github.com/simonhull/imagemeta.gitCommit=$(git rev-parse HEAD) \
//	  -X github.com/simonhull/imagemeta.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
func GetVersionInfo() VersionInfo {
	goVer := goVersion
	if goVer == "unknown" {
		goVer = runtime.Version()
	}

	return VersionInfo{
		Version:      Version,
		CodecVersion: codes.CodecVersion,
		ErrorTable:   codes.Active().Name(),
		GitCommit:    gitCommit,
		BuildTime:    buildTime,
		GoVersion:    goVer,
	}
}

// Variables populated at build time via -ldflags.
var (
	gitCommit = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)
