// Package version holds build metadata stamped in through -ldflags, e.g.
//
//	go build -ldflags "-X github.com/banshee-data/highlow/internal/version.Version=v0.3.0"
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build metadata for -version output.
func String() string {
	return fmt.Sprintf("highlow %s (commit %s, built %s)", Version, GitSHA, BuildTime)
}
