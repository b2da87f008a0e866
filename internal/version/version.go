// Package version reports build information set through -ldflags.
package version

import "fmt"

// Set at build time:
//
//	-ldflags "-X github.com/example/editorial/internal/version.Version=v1.2.0 -X ...Commit=$(git rev-parse HEAD)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns "editorial <version> (commit: <short>, built: <time>)".
func String() string {
	return fmt.Sprintf("editorial %s (commit: %s, built: %s)", Version, shortCommit(), BuildTime)
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
