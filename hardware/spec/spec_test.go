package spec_test

import (
	"testing"

	"github.com/jetsetilly/amichip/hardware/spec"
	"github.com/jetsetilly/amichip/test"
)

func TestRGB(t *testing.T) {
	test.ExpectEquality(t, spec.RGB(0x000), uint32(0xff000000))
	test.ExpectEquality(t, spec.RGB(0xfff), uint32(0xffffffff))
	test.ExpectEquality(t, spec.RGB(0xf80), uint32(0xffff8800))
	test.ExpectEquality(t, spec.RGB(0x00a), uint32(0xff0000aa))

	r, g, b, a := spec.RGBA(spec.RGB(0x123))
	test.ExpectEquality(t, r, uint8(0x11))
	test.ExpectEquality(t, g, uint8(0x22))
	test.ExpectEquality(t, b, uint8(0x33))
	test.ExpectEquality(t, a, uint8(0xff))
}

func TestFrameGeometry(t *testing.T) {
	test.ExpectEquality(t, spec.ColourClocks, 227)
	test.ExpectEquality(t, spec.FrameWidth, 724)
	test.ExpectEquality(t, spec.FrameHeight, 574)
}
