package mix_test

import (
	"testing"

	"github.com/jetsetilly/amichip/hardware/custom/mix"
	"github.com/jetsetilly/amichip/test"
)

func TestClip(t *testing.T) {
	test.ExpectEquality(t, mix.Clip(0), int16(0))
	test.ExpectEquality(t, mix.Clip(1000), int16(1000))
	test.ExpectEquality(t, mix.Clip(-24576), int16(-24576))

	test.ExpectEquality(t, mix.Clip(65535), int16(32767))
	test.ExpectEquality(t, mix.Clip(100000), int16(32767))
	test.ExpectEquality(t, mix.Clip(-100000), int16(-32767))

	// above the knee the curve is symmetrical, rising and never exceeds the input
	prev := mix.Clip(24576)
	for _, v := range []int32{24577, 30000, 32767, 40000, 60000} {
		c := mix.Clip(v)
		test.ExpectEquality(t, c, -mix.Clip(-v))
		test.ExpectEquality(t, c <= int16(min(v, 32767)), true)
		test.ExpectEquality(t, c >= prev, true)
		prev = c
	}
}
