package version

import (
	"runtime/debug"
	"strings"
	"sync"
)

const (
	versionDevel   = "devel"
	versionUnknown = "unknown"
)

// version is set via ldflags at build time.
// falls back to debug.ReadBuildInfo for go install.
var version = versionDevel

var (
	once     sync.Once
	revision string
)

func load() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if version == versionDevel {
		if v := info.Main.Version; v != "" && v != "("+versionDevel+")" {
			version = v
		}
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			revision = setting.Value
			if len(revision) > shortRevision {
				revision = revision[:shortRevision]
			}
		}
	}
}

const shortRevision = 12

func Get() string {
	once.Do(load)
	return version
}

// Revision returns the abbreviated VCS commit the binary was built from, or
// "" when the build carries no VCS stamp.
func Revision() string {
	once.Do(load)
	return revision
}

// IsDevelopment reports whether v is a local or unreleased build.
func IsDevelopment(v string) bool {
	return v == versionDevel || v == versionUnknown || v == "" ||
		strings.Contains(v, "dirty") ||
		strings.Contains(v, "-0.")
}
