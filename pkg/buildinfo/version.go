// Package buildinfo exposes the version stamped into a release binary.
package buildinfo

import "fmt"

// Set at build time with -ldflags "-X .../pkg/buildinfo.Version=v1.2.3" and
// friends; the defaults identify an untagged development build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the build information for --version style output.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is the cobra version template equivalent of String.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
