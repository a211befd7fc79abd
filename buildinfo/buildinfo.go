// Package buildinfo reports which commit a binary was built from, so the
// provenance of an analysis output can be traced from its logs.
package buildinfo

import (
	"fmt"
	"os"
	"runtime/debug"
)

type Info struct {
	Main      string
	GoVersion string
	Revision  string
	BuildTime string
	Dirty     bool
}

func (i Info) String() string {
	rev := i.Revision
	if rev == "" {
		rev = "unknown revision"
	}
	if i.Dirty {
		rev += " (modified working tree)"
	}

	return fmt.Sprintf("%s built with %s from %s at %s", i.Main, i.GoVersion, rev, i.BuildTime)
}

func Get() Info {
	out := Info{}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.Main = bi.Path
	out.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Revision = s.Value
		case "vcs.time":
			out.BuildTime = s.Value
		case "vcs.modified":
			out.Dirty = s.Value == "true"
		}
	}

	return out
}

// PrintToStdErr writes the build description to stderr, keeping it out of
// any table being written to stdout.
func PrintToStdErr() {
	fmt.Fprintln(os.Stderr, Get())
}
