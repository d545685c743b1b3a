// Package buildinfo reports the version of the running binary.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

const (
	settingGOOS     = "GOOS"
	settingGOARCH   = "GOARCH"
	settingRevision = "vcs.revision"
	settingTime     = "vcs.time"
	settingModified = "vcs.modified"
)

// version is set by the linker: -X github.com/kakao/snorch/internal/buildinfo.version=v0.1.0
var version = "devel"

type Info struct {
	Version   string
	GoVersion string
	Revision  string
	Time      string
	Modified  bool
	Platform  string
}

func ReadVersionInfo() Info {
	info := Info{Version: version}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	return fromBuildInfo(info, bi)
}

func fromBuildInfo(info Info, bi *debug.BuildInfo) Info {
	info.GoVersion = bi.GoVersion
	var goos, goarch string
	for _, kv := range bi.Settings {
		switch kv.Key {
		case settingRevision:
			info.Revision = kv.Value
		case settingTime:
			info.Time = kv.Value
		case settingModified:
			info.Modified = kv.Value == "true"
		case settingGOOS:
			goos = kv.Value
		case settingGOARCH:
			goarch = kv.Value
		}
	}
	if goos != "" || goarch != "" {
		info.Platform = goos + "/" + goarch
	}
	return info
}

func (info Info) String() string {
	revision := info.Revision
	if info.Modified {
		revision += " (modified)"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Version:     %s\n", info.Version)
	fmt.Fprintf(&sb, "Go Version:  %s\n", info.GoVersion)
	fmt.Fprintf(&sb, "Git Commit:  %s\n", revision)
	fmt.Fprintf(&sb, "Built:       %s\n", info.Time)
	fmt.Fprintf(&sb, "OS/Arch:     %s", info.Platform)
	return sb.String()
}
