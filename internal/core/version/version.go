// Package version provides build information for walletsync binaries
package version

// BuildInfo holds version information about a build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information for service
// version, commit, and date are set at build time:
//
//	-ldflags "-X 'walletsync/internal/core/version.version=v0.1.0' -X 'walletsync/internal/core/version.commit=abcd'"
func Info(service string) BuildInfo {
	if service == "" {
		service = "walletsync"
	}
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// String renders a one line banner used by the CLI
func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (" + b.Commit + ", " + b.Date + ")"
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
