package build

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// AppVersion is the semantic version of resumo.
const AppVersion = "0.1.0"

// Commit is set at link time:
//
//	go build -ldflags "-X github.com/roasbeef/resumo/internal/build.Commit=$(git rev-parse HEAD)"
var Commit string

// Version returns the version string, with a pre-release suffix for
// development builds.
func Version() string {
	if Commit == "" {
		return AppVersion + "-dev"
	}

	return AppVersion
}

// Info describes the running binary.
func Info() string {
	var b strings.Builder
	fmt.Fprintf(&b, "resumo version %s", Version())

	commit := Commit
	info, ok := debug.ReadBuildInfo()
	if ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && commit == "" {
				commit = s.Value
			}
		}
	}
	if commit != "" {
		fmt.Fprintf(&b, " commit=%s", commit)
	}
	if ok {
		fmt.Fprintf(&b, " go=%s", info.GoVersion)
	}

	return b.String()
}
