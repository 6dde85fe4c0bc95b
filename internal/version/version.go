// Package version reports the fader build. Values are injected with -ldflags
// and fall back to the module build info for `go install` builds.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	// Version is the semantic version (injected at build time via -ldflags)
	version = "dev"
	// Commit is the git commit hash (injected at build time via -ldflags)
	commit = "none"
	// Date is the build date (injected at build time via -ldflags)
	date = "unknown"
)

// Info describes one build of fader
type Info struct {
	Version string
	Commit  string
	Date    string
}

// String formats the build as "version (commit: x, built: y)"
func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}

var (
	once    sync.Once
	current Info
)

// Get returns the build info, filling values that were not injected from the
// embedded module build info
func Get() Info {
	once.Do(func() {
		current = fromBuildInfo(Info{Version: version, Commit: commit, Date: date}, debug.ReadBuildInfo)
	})

	return current
}

func fromBuildInfo(info Info, read func() (*debug.BuildInfo, bool)) Info {
	bi, ok := read()
	if !ok || bi == nil {
		return info
	}

	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}

	return info
}

// GetVersion returns the version string
func GetVersion() string {
	return Get().Version
}

// GetCommit returns the git commit hash.
func GetCommit() string {
	return Get().Commit
}

// GetDate returns the build date.
func GetDate() string {
	return Get().Date
}

// GetFullVersion returns version with commit and date info
func GetFullVersion() string {
	return Get().String()
}
