// Package version provides information about the build version of the service.
package version

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	// FlagTokens is the coercion table revision used by listing flags
	FlagTokens string `json:"flag_tokens"`
}

// Info returns the build information for service. version, commit and date
// are set at build time:
//
//	-ldflags "-X 'showroom/internal/core/version.version=v0.1.0' -X 'showroom/internal/core/version.commit=abcd'"
func Info(service string) BuildInfo {
	return BuildInfo{
		Service:    service,
		Version:    version,
		Commit:     commit,
		Date:       date,
		FlagTokens: flagTokens,
	}
}

var (
	version    = "dev"
	commit     = "none"
	date       = "unknown"
	flagTokens = "v1"
)
