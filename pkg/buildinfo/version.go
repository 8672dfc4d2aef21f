// Package buildinfo carries the version metadata stamped into release
// binaries.
//
// Release builds inject the values with -ldflags -X on this package's
// variables; a plain go build reports the development defaults.
package buildinfo

import "fmt"

// Set at link time. The defaults identify a development build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template renders the cobra --version output, one field per line.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit %s\nbuilt %s\n", Version, Commit, Date)
}
