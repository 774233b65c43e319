package cia402

import (
	"errors"
	"fmt"
)

var ErrNoHomingMethod = errors.New("no homing method defined for this switch configuration")

// Homing search direction.
const (
	Forward  = 1
	Backward = -1
)

// HomeSwitchEdge selects between the standardized home switch variants.
// Plain home switch methods only use the first two, the combined
// home + limit switch methods use all four.
type HomeSwitchEdge int

const (
	EdgeFalling HomeSwitchEdge = iota
	EdgeRising
	EdgeFallingReversal
	EdgeRisingReversal
)

// homingSetup is the normalized parameter record of a homing method
// lookup.
type homingSetup struct {
	endSwitch  bool
	homeSwitch bool
	edge       HomeSwitchEdge
	indexPulse bool
	direction  int
	hardStop   bool
}

// homingMethods maps each of the 35 standardized switch configurations
// to its CiA 402 homing method number. Negative numbers are the
// vendor range used for hard stop (current threshold) homing.
var homingMethods = map[homingSetup]int{
	// Limit switch with index pulse (methods 1, 2)
	{endSwitch: true, indexPulse: true, direction: Backward}: 1,
	{endSwitch: true, indexPulse: true, direction: Forward}:  2,

	// Home switch with index pulse (methods 3..6)
	{homeSwitch: true, indexPulse: true, direction: Forward, edge: EdgeFalling}:  3,
	{homeSwitch: true, indexPulse: true, direction: Forward, edge: EdgeRising}:   4,
	{homeSwitch: true, indexPulse: true, direction: Backward, edge: EdgeFalling}: 5,
	{homeSwitch: true, indexPulse: true, direction: Backward, edge: EdgeRising}:  6,

	// Home switch + limit switch reversal with index pulse (methods 7..14)
	{endSwitch: true, homeSwitch: true, indexPulse: true, direction: Forward, edge: EdgeFalling}:          7,
	{endSwitch: true, homeSwitch: true, indexPulse: true, direction: Forward, edge: EdgeRising}:           8,
	{endSwitch: true, homeSwitch: true, indexPulse: true, direction: Forward, edge: EdgeFallingReversal}:  9,
	{endSwitch: true, homeSwitch: true, indexPulse: true, direction: Forward, edge: EdgeRisingReversal}:   10,
	{endSwitch: true, homeSwitch: true, indexPulse: true, direction: Backward, edge: EdgeFalling}:         11,
	{endSwitch: true, homeSwitch: true, indexPulse: true, direction: Backward, edge: EdgeRising}:          12,
	{endSwitch: true, homeSwitch: true, indexPulse: true, direction: Backward, edge: EdgeFallingReversal}: 13,
	{endSwitch: true, homeSwitch: true, indexPulse: true, direction: Backward, edge: EdgeRisingReversal}:  14,

	// Limit switch without index pulse (methods 17, 18)
	{endSwitch: true, direction: Backward}: 17,
	{endSwitch: true, direction: Forward}:  18,

	// Home switch without index pulse (methods 19..22)
	{homeSwitch: true, direction: Forward, edge: EdgeFalling}:  19,
	{homeSwitch: true, direction: Forward, edge: EdgeRising}:   20,
	{homeSwitch: true, direction: Backward, edge: EdgeFalling}: 21,
	{homeSwitch: true, direction: Backward, edge: EdgeRising}:  22,

	// Home switch + limit switch reversal without index pulse (methods 23..30)
	{endSwitch: true, homeSwitch: true, direction: Forward, edge: EdgeFalling}:          23,
	{endSwitch: true, homeSwitch: true, direction: Forward, edge: EdgeRising}:           24,
	{endSwitch: true, homeSwitch: true, direction: Forward, edge: EdgeFallingReversal}:  25,
	{endSwitch: true, homeSwitch: true, direction: Forward, edge: EdgeRisingReversal}:   26,
	{endSwitch: true, homeSwitch: true, direction: Backward, edge: EdgeFalling}:         27,
	{endSwitch: true, homeSwitch: true, direction: Backward, edge: EdgeRising}:          28,
	{endSwitch: true, homeSwitch: true, direction: Backward, edge: EdgeFallingReversal}: 29,
	{endSwitch: true, homeSwitch: true, direction: Backward, edge: EdgeRisingReversal}:  30,

	// Index pulse only (methods 33, 34)
	{indexPulse: true, direction: Backward}: 33,
	{indexPulse: true, direction: Forward}:  34,

	// Home at current position (method 35)
	{direction: Forward}: 35,

	// Hard stop homing, vendor range
	{hardStop: true, indexPulse: true, direction: Forward}:  -1,
	{hardStop: true, indexPulse: true, direction: Backward}: -2,
	{hardStop: true, direction: Forward}:                    -3,
	{hardStop: true, direction: Backward}:                   -4,
}

// HomingOption configures a homing method lookup.
type HomingOption func(*homingSetup)

func WithEndSwitch() HomingOption {
	return func(s *homingSetup) { s.endSwitch = true }
}

func WithHomeSwitch(edge HomeSwitchEdge) HomingOption {
	return func(s *homingSetup) {
		s.homeSwitch = true
		s.edge = edge
	}
}

func WithIndexPulse() HomingOption {
	return func(s *homingSetup) { s.indexPulse = true }
}

func WithDirection(direction int) HomingOption {
	return func(s *homingSetup) { s.direction = direction }
}

func WithHardStop() HomingOption {
	return func(s *homingSetup) { s.hardStop = true }
}

// DetermineHomingMethod resolves the CiA 402 homing method number for a
// switch configuration. Without any options the method is 35, home at
// current position. The mapping covers exactly the 35 standardized
// configurations, anything else is an error.
func DetermineHomingMethod(options ...HomingOption) (int, error) {
	setup := homingSetup{direction: Forward}
	for _, option := range options {
		option(&setup)
	}
	// Method 35 ignores the search direction
	if !setup.endSwitch && !setup.homeSwitch && !setup.indexPulse && !setup.hardStop {
		setup.direction = Forward
	}
	method, ok := homingMethods[setup]
	if !ok {
		return 0, fmt.Errorf("%w : %+v", ErrNoHomingMethod, setup)
	}
	return method, nil
}
