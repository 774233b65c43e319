// Package homing implements the travel limit discovery procedures. Two
// variants exist with identical shape : hard stop homing sweeps the
// axis against its mechanical end stops watching the motor current,
// device native homing delegates to the drive's built in homing mode.
// Both are cooperative jobs polled once per tick, so several drives
// home concurrently in lock step without threads.
package homing

import (
	"errors"
	"time"

	"github.com/rauc-lab/being/pkg/job"
)

var (
	ErrHomingFailed    = errors.New("homing failed")
	ErrWindowTooNarrow = errors.New("homing failed : discovered travel window narrower than expected length")
)

// HomingState is the per motor homing lifecycle. Terminal at HOMED or
// FAILED until re-armed by a new homing job.
type HomingState int

const (
	Unhomed HomingState = iota
	Ongoing
	Homed
	Failed
)

func (s HomingState) String() string {
	switch s {
	case Unhomed:
		return "UNHOMED"
	case Ongoing:
		return "ONGOING"
	case Homed:
		return "HOMED"
	case Failed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Job is a homing procedure : a resumable job that additionally exposes
// its lifecycle state and the discovered travel window.
type Job interface {
	job.Job
	State() HomingState
	// Window returns the usable travel range in device units, only
	// meaningful once State() == Homed.
	Window() (lower float64, upper float64)
}

// AwaitAll advances every drive's homing job once per spacing interval
// until all report a non ongoing result or the global timeout elapses.
// A single slow drive does not block the others, each job progresses
// independently within the same round.
func AwaitAll(runner *job.Runner, spacing time.Duration, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		now := time.Now()
		if runner.PollAll(now) {
			for _, progress := range runner.Results() {
				if progress.Status == job.StatusFailed {
					return progress.Err
				}
			}
			return nil
		}
		if now.After(deadline) {
			return job.ErrTimeout
		}
		time.Sleep(spacing)
	}
}
