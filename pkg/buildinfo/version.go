// Package buildinfo carries the version stamped into release binaries.
//
// Release builds overwrite the defaults with ldflags:
//
//	go build -ldflags "\
//	  -X github.com/masonworks/cardgrid/pkg/buildinfo.Version=v1.0.0 \
//	  -X github.com/masonworks/cardgrid/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/masonworks/cardgrid/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// A plain `go build` identifies itself as the dev version; binaries
// installed with `go install module@version` pick the module version
// up from the embedded build info instead.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the stamped fields, one per line.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", resolveVersion(), Commit, Date)
}

// Template is the cobra version template, so a --version flag and a
// version subcommand print the same thing.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", resolveVersion(), Commit, Date)
}

func resolveVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
