// Package version describes the build of the program.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// The name to use when referring to the application
const ApplicationName = "amichip"

// number is set by the linker for release builds:
//
//	-ldflags "-X github.com/jetsetilly/amichip/version.number=v0.1"
var number string

// Info is the version information of the build
type Info struct {
	// empty unless this is a numbered release
	Number string

	// the vcs revision. empty if the build has no vcs information
	Revision string

	// the source had uncommitted changes when it was built
	Modified bool
}

func (inf Info) Release() bool {
	return inf.Number != ""
}

// String is the number of a release, otherwise the revision
func (inf Info) String() string {
	if inf.Release() {
		return inf.Number
	}
	if inf.Revision == "" {
		return "local"
	}
	if inf.Modified {
		return fmt.Sprintf("%s+dirty", inf.Revision)
	}
	return inf.Revision
}

var build = sync.OnceValue(func() Info {
	inf := Info{
		Number: number,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return inf
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			inf.Revision = s.Value
		case "vcs.modified":
			inf.Modified = s.Value == "true"
		}
	}
	return inf
})

// Build returns the version information of the running program
func Build() Info {
	return build()
}

// Title is used in window titles and the command line tool
func Title() string {
	return fmt.Sprintf("%s (%s)", ApplicationName, Build())
}
