// Package version reports build information and checks GitHub for newer
// releases.
//
// Version, Commit and Date are overridden at build time:
//
//	go build -ldflags "-X github.com/khanglvm/strapd/internal/version.Version=v0.3.0"
package version

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"
	// Commit is the short git hash of the build.
	Commit = "none"
	// Date is the UTC build date (YYYY-MM-DD).
	Date = "unknown"
)

// GetVersion returns the build information as one line.
func GetVersion() string {
	return FormatVersion(Version, Commit, Date)
}

// FormatVersion renders version components the way --version prints them.
func FormatVersion(version, commit, date string) string {
	if version == "dev" {
		return "dev (development build)"
	}
	return version + " (commit: " + commit + ", built: " + date + ")"
}
