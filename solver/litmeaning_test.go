package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLitMeaningNegate(t *testing.T) {
	cases := []struct {
		in, want LitMeaning
	}{
		{Eq(5), NotEq(5)},
		{NotEq(5), Eq(5)},
		{GreaterEq(5), Less(5)},
		{Less(5), GreaterEq(5)},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.in.Negate())
		assert.Equal(t, c.in, c.in.Negate().Negate())
	}
}

func TestLitMeaningHolds(t *testing.T) {
	assert.True(t, Eq(3).Holds(3))
	assert.False(t, Eq(3).Holds(4))
	assert.True(t, NotEq(3).Holds(4))
	assert.False(t, NotEq(3).Holds(3))
	assert.True(t, GreaterEq(3).Holds(3))
	assert.True(t, GreaterEq(3).Holds(4))
	assert.False(t, GreaterEq(3).Holds(2))
	assert.True(t, Less(3).Holds(2))
	assert.False(t, Less(3).Holds(3))
}

func TestLitMeaningHoldsAgreesWithNegate(t *testing.T) {
	for _, m := range []LitMeaning{Eq(0), NotEq(0), GreaterEq(0), Less(0)} {
		for x := int64(-2); x <= 2; x++ {
			assert.Equal(t, !m.Holds(x), m.Negate().Holds(x), "m=%v x=%d", m, x)
		}
	}
}

func TestLitMeaningString(t *testing.T) {
	assert.Equal(t, "= 5", Eq(5).String())
	assert.Equal(t, "≠ 5", NotEq(5).String())
	assert.Equal(t, "≥ 5", GreaterEq(5).String())
	assert.Equal(t, "< 5", Less(5).String())
}
