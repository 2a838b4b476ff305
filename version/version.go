// Package version identifies the plugmig binary. Release builds stamp the
// variables below with ldflags; binaries built with `go install` fall back to
// the module and VCS information the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/teranos/plugmig/version.Version=v0.3.0"
var (
	Version    = "dev"
	CommitHash = "dev"
	BuildTime  = "unknown"
)

// Info identifies a plugmig build. `plugmig version` prints it, and registry
// lookups send it as their User-Agent so registry operators can tell
// migration traffic apart.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Modified   bool   `json:"modified,omitempty"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

var readBuildInfo = debug.ReadBuildInfo

// Get returns the build information of the running binary.
func Get() Info {
	info := Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := readBuildInfo(); ok {
		info.fill(bi)
	}
	return info
}

// fill completes the fields ldflags left at their defaults.
func (i *Info) fill(bi *debug.BuildInfo) {
	if i.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		i.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if i.CommitHash == "dev" {
				i.CommitHash = s.Value
			}
		case "vcs.time":
			if i.BuildTime == "unknown" {
				i.BuildTime = s.Value
			}
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
}

func (i Info) String() string {
	s := fmt.Sprintf("plugmig %s (commit %s, built %s)", i.Version, i.CommitHash, i.BuildTime)
	if i.Modified {
		s += " with local changes"
	}
	return s
}

// UserAgent is sent with registry requests.
func (i Info) UserAgent() string {
	return fmt.Sprintf("plugmig/%s (%s; %s)", i.Version, i.Platform, i.GoVersion)
}
