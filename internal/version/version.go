// Package version reports the build version of videohub-cfg.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Name is the command name shown in banners and version output
const Name = "videohub-cfg"

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/videohub/internal/version.Version=v1.0.0 \
//	                   -X github.com/muurk/videohub/internal/version.Commit=abc1234"
//
// Unset values are taken from the VCS stamp in the build info, then fall
// back to "dev-<timestamp>" and "unknown".
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version == "" || Commit == "" {
		fromBuildInfo()
	}
	if Version == "" {
		Version = fmt.Sprintf("dev-%s", time.Now().Format("20060102-150405"))
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

func fromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	var revision, modified, vcsTime string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			vcsTime = s.Value
		}
	}

	if Commit == "" && revision != "" {
		Commit = shortRevision(revision, modified == "true")
	}
	if Version == "" && vcsTime != "" {
		if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
			Version = fmt.Sprintf("dev-%s", t.Format("20060102"))
		}
	}
}

func shortRevision(revision string, dirty bool) string {
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}

// Full returns the version with its commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// String returns the line printed by "videohub-cfg version"
func String() string {
	return fmt.Sprintf("%s %s %s/%s %s", Name, Full(), runtime.GOOS, runtime.GOARCH, runtime.Version())
}
