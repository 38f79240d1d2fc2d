// Package buildinfo carries version metadata stamped at build time via
// -ldflags "-X github.com/moldraw/moldraw/pkg/buildinfo.Version=v1.0.0"
// (likewise Commit and Date). Unstamped builds report "dev".
package buildinfo

import "fmt"

var (
	// Version is the semantic version of the binary.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "none"
	// Date is the UTC build timestamp.
	Date = "unknown"
)

// String formats the build information for `moldraw --version`-style output.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
