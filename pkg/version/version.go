// Package version exposes build metadata injected with -ldflags.
package version

// Set at build time, e.g.
//
//	-ldflags "-X github.com/rshade/energyprophet/pkg/version.version=v0.3.0"
//
//nolint:gochecknoglobals // ldflags targets must be package variables
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the release version, or "dev" for local builds.
func GetVersion() string {
	return version
}

// GetCommit returns the git commit the binary was built from.
func GetCommit() string {
	return commit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}
