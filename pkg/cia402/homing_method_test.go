package cia402

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineHomingMethodDefault(t *testing.T) {
	method, err := DetermineHomingMethod()
	require.Nil(t, err)
	assert.Equal(t, 35, method)

	// Direction does not matter for homing at the current position.
	method, err = DetermineHomingMethod(WithDirection(Backward))
	require.Nil(t, err)
	assert.Equal(t, 35, method)
}

func TestDetermineHomingMethodHardStop(t *testing.T) {
	method, err := DetermineHomingMethod(WithHardStop(), WithDirection(Forward))
	require.Nil(t, err)
	assert.Equal(t, -3, method)

	method, err = DetermineHomingMethod(WithHardStop(), WithDirection(Backward))
	require.Nil(t, err)
	assert.Equal(t, -4, method)

	method, err = DetermineHomingMethod(WithHardStop(), WithIndexPulse())
	require.Nil(t, err)
	assert.Equal(t, -1, method)

	method, err = DetermineHomingMethod(WithHardStop(), WithIndexPulse(), WithDirection(Backward))
	require.Nil(t, err)
	assert.Equal(t, -2, method)
}

func TestDetermineHomingMethodSwitches(t *testing.T) {
	cases := []struct {
		options []HomingOption
		method  int
	}{
		{[]HomingOption{WithEndSwitch(), WithIndexPulse(), WithDirection(Backward)}, 1},
		{[]HomingOption{WithEndSwitch(), WithIndexPulse()}, 2},
		{[]HomingOption{WithHomeSwitch(EdgeFalling), WithIndexPulse()}, 3},
		{[]HomingOption{WithHomeSwitch(EdgeRising), WithIndexPulse(), WithDirection(Backward)}, 6},
		{[]HomingOption{WithEndSwitch(), WithHomeSwitch(EdgeFalling), WithIndexPulse()}, 7},
		{[]HomingOption{WithEndSwitch(), WithHomeSwitch(EdgeRisingReversal), WithIndexPulse(), WithDirection(Backward)}, 14},
		{[]HomingOption{WithEndSwitch(), WithDirection(Backward)}, 17},
		{[]HomingOption{WithEndSwitch()}, 18},
		{[]HomingOption{WithHomeSwitch(EdgeFalling)}, 19},
		{[]HomingOption{WithHomeSwitch(EdgeRising), WithDirection(Backward)}, 22},
		{[]HomingOption{WithEndSwitch(), WithHomeSwitch(EdgeFalling)}, 23},
		{[]HomingOption{WithEndSwitch(), WithHomeSwitch(EdgeRisingReversal), WithDirection(Backward)}, 30},
		{[]HomingOption{WithIndexPulse(), WithDirection(Backward)}, 33},
		{[]HomingOption{WithIndexPulse()}, 34},
	}
	for _, c := range cases {
		method, err := DetermineHomingMethod(c.options...)
		require.Nil(t, err)
		assert.Equal(t, c.method, method)
	}
}

func TestHomingMethodTableIsInjective(t *testing.T) {
	assert.Len(t, homingMethods, 35)
	seen := map[int]bool{}
	for _, method := range homingMethods {
		assert.False(t, seen[method], "method %d assigned twice", method)
		seen[method] = true
	}
}

func TestDetermineHomingMethodUnknownSetup(t *testing.T) {
	// Hard stop homing is incompatible with switches.
	_, err := DetermineHomingMethod(WithHardStop(), WithEndSwitch())
	assert.ErrorIs(t, err, ErrNoHomingMethod)
}
