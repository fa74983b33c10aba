// Package version reports the dirsearch build. The linker fills these in:
//
//	go build -ldflags "-X github.com/kailas-cloud/dirsearch/internal/version.Version=v1.2.0 ..."
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build for --version output and startup logs.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}

// UserAgent is sent to the directory backend with every request.
func UserAgent() string {
	return "dirsearch/" + Version
}
