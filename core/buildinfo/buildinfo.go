// Package buildinfo carries release metadata stamped in with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/m3rciful/citybot/core/buildinfo.Version=v0.3.0 \
//	  -X github.com/m3rciful/citybot/core/buildinfo.Commit=$(git rev-parse --short HEAD)" ./cmd/citybot
//
// Without ldflags the commit falls back to the VCS stamp Go embeds in module builds.
package buildinfo

import (
	"runtime/debug"
	"strings"
)

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Revision returns Commit or, when unset, the short VCS revision recorded by
// the Go toolchain. A "+dirty" suffix marks builds from a modified tree.
func Revision() string {
	if Commit != "" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "local"
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return "local"
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if dirty {
		rev += "+dirty"
	}
	return rev
}

// String renders "version (revision, date)" for startup banners.
func String() string {
	var b strings.Builder
	b.WriteString(Version)
	b.WriteString(" (")
	b.WriteString(Revision())
	if Date != "" {
		b.WriteString(", ")
		b.WriteString(Date)
	}
	b.WriteByte(')')
	return b.String()
}
