package version_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/amichip/test"
	"github.com/jetsetilly/amichip/version"
)

func TestInfo(t *testing.T) {
	inf := version.Info{Number: "v0.1", Revision: "abc", Modified: true}
	test.ExpectEquality(t, inf.Release(), true)
	test.ExpectEquality(t, inf.String(), "v0.1")

	inf = version.Info{Revision: "abc", Modified: true}
	test.ExpectEquality(t, inf.Release(), false)
	test.ExpectEquality(t, inf.String(), "abc+dirty")

	inf = version.Info{Revision: "abc"}
	test.ExpectEquality(t, inf.String(), "abc")

	test.ExpectEquality(t, version.Info{}.String(), "local")
}

func TestTitle(t *testing.T) {
	test.ExpectEquality(t, strings.HasPrefix(version.Title(), version.ApplicationName+" ("), true)
}
