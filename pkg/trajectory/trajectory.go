// Package trajectory implements the bang-bang optimal trajectory filter
// producing safe motion set points : minimum time velocity profiles
// honoring speed and acceleration bounds, replanned online every tick.
package trajectory

import (
	"math"
)

// State is the kinematic state of one axis.
type State struct {
	Position     float64
	Velocity     float64
	Acceleration float64
}

// Segment is one phase of a bang-bang profile : constant acceleration
// held for a duration.
type Segment struct {
	Duration     float64
	Acceleration float64
}

// Durations shorter than this are treated as zero and never emitted.
const minDuration = 1e-12

func sign(x float64) float64 {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

// OptimalTrajectory computes the minimum time accelerate / cruise /
// decelerate profile from initial to target under the given bounds.
// It returns one to three segments (critical, triangular or trapezoidal
// shape), zero duration segments are dropped. The empty profile means
// the target state is already reached.
func OptimalTrajectory(initial State, target State, maxSpeed float64, maxAcc float64) []Segment {
	dx := target.Position - initial.Position
	v0 := initial.Velocity
	vEnd := target.Velocity

	if dx == 0 && v0 == vEnd {
		return nil
	}

	// The stopping point from the initial state decides the direction
	// of the acceleration phase. Targets inside the braking distance
	// need a pure deceleration (critical) profile.
	brakingDx := v0 * math.Abs(v0) / (2 * maxAcc)
	direction := sign(dx - brakingDx)
	if direction == 0 {
		direction = sign(v0)
	}
	if direction == 0 {
		direction = 1
	}

	// Transform into the coordinate frame moving in profile direction
	d := direction * dx
	v0d := direction * v0
	vEndd := direction * vEnd

	cruise := math.Sqrt(maxAcc*d + (v0d*v0d+vEndd*vEndd)/2)
	if cruise > maxSpeed {
		cruise = maxSpeed
	}

	accelTime := (cruise - v0d) / maxAcc
	decelTime := (cruise - vEndd) / maxAcc
	accelDx := (cruise*cruise - v0d*v0d) / (2 * maxAcc)
	decelDx := (cruise*cruise - vEndd*vEndd) / (2 * maxAcc)
	var cruiseTime float64
	if cruise > 0 {
		cruiseTime = (d - accelDx - decelDx) / cruise
	}

	var profile []Segment
	if accelTime > minDuration {
		profile = append(profile, Segment{Duration: accelTime, Acceleration: direction * maxAcc})
	}
	if cruiseTime > minDuration {
		profile = append(profile, Segment{Duration: cruiseTime, Acceleration: 0})
	}
	if decelTime > minDuration {
		profile = append(profile, Segment{Duration: decelTime, Acceleration: -direction * maxAcc})
	}
	return profile
}

// Duration sums the segment durations of a profile.
func Duration(profile []Segment) float64 {
	var total float64
	for _, segment := range profile {
		total += segment.Duration
	}
	return total
}

// Integrate steps a state exactly dt forward through the profile,
// advancing partially through a segment when dt ends inside it. When
// the profile is exhausted before dt the end state of the profile is
// returned with zero velocity change beyond it.
func Integrate(state State, profile []Segment, dt float64) State {
	remaining := dt
	for _, segment := range profile {
		if remaining <= 0 {
			break
		}
		h := segment.Duration
		if h > remaining {
			h = remaining
		}
		state.Position += state.Velocity*h + 0.5*segment.Acceleration*h*h
		state.Velocity += segment.Acceleration * h
		state.Acceleration = segment.Acceleration
		remaining -= h
	}
	if remaining > 0 {
		// Profile finished early, hold position
		state.Acceleration = 0
	}
	return state
}

// Filter clips the target position to [lower, upper], replans the
// optimal profile from the current state and integrates exactly dt
// through it. This is the online replanning primitive used for motion
// set points and for the simulated motor.
func Filter(targetPosition float64, dt float64, state State, maxSpeed float64, maxAcc float64, lower float64, upper float64) State {
	target := targetPosition
	if target < lower {
		target = lower
	}
	if target > upper {
		target = upper
	}
	profile := OptimalTrajectory(state, State{Position: target}, maxSpeed, maxAcc)
	if len(profile) == 0 {
		state.Position = target
		state.Velocity = 0
		state.Acceleration = 0
		return state
	}
	return Integrate(state, profile, dt)
}
