// Package version carries build metadata, set with -ldflags -X at link time.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release tag of the altitude tool
	Version = "dev"
	// GitSHA is the commit the binary was built from
	GitSHA = "unknown"
	// BuildTime is the UTC build timestamp
	BuildTime = "unknown"
)

// String renders the metadata on one line for the version subcommand.
func String() string {
	sha := GitSHA
	if len(sha) > 12 {
		sha = sha[:12]
	}
	return fmt.Sprintf("altitude %s (commit %s, built %s, %s)", Version, sha, BuildTime, runtime.Version())
}
