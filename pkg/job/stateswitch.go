package job

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rauc-lab/being/pkg/cia402"
	"github.com/rauc-lab/being/pkg/drive"
)

// Minimum spacing between polls when driving a job to completion
// synchronously, keeps the SDO rate within bus limits.
const DefaultPollSpacing = 10 * time.Millisecond

// StateSwitchJob drives one device towards a target CiA 402 state, one
// intermediate command per poll, following the precomputed next hop
// table. The deadline is wall time, captured relative to job creation.
type StateSwitchJob struct {
	drive    *drive.Drive
	target   cia402.State
	deadline time.Time
	logger   *log.Entry
}

// NewStateSwitchJob creates a job towards target with the given timeout
// measured from now.
func NewStateSwitchJob(d *drive.Drive, target cia402.State, timeout time.Duration, now time.Time) *StateSwitchJob {
	return &StateSwitchJob{
		drive:    d,
		target:   target,
		deadline: now.Add(timeout),
		logger: log.WithFields(log.Fields{
			"service": "[STATE]",
			"node":    d.NodeId(),
		}),
	}
}

// Poll re-reads the device state and issues at most one transition
// command. A job whose target equals the current state settles on the
// first poll.
func (j *StateSwitchJob) Poll(now time.Time) Progress {
	current, err := j.drive.State()
	if err != nil {
		return Fail(err)
	}
	if current == j.target {
		j.logger.Debugf("reached %v", j.target)
		return Done()
	}
	if now.After(j.deadline) {
		return Fail(fmt.Errorf("%w : switching to %v, still at %v", ErrTimeout, j.target, current))
	}

	next, ok := cia402.WhereToGoNext[cia402.Transition{From: current, To: j.target}]
	if !ok {
		return Fail(fmt.Errorf("%w : %v -> %v", cia402.ErrInvalidTransition, current, j.target))
	}
	// Re-issue the intermediate command until the drive gets there.
	// Automatic transitions carry no command, the drive progresses on
	// its own and we only wait.
	command := cia402.TransitionCommands[cia402.Transition{From: current, To: next}]
	if command != cia402.CmdDisableVoltage || isDeliberateDisable(current, next) {
		if err := j.drive.WriteControlword(uint16(command)); err != nil {
			return Fail(err)
		}
	}
	return Ongoing()
}

// isDeliberateDisable tells a real disable voltage command apart from
// the zero placeholder of automatic transitions.
func isDeliberateDisable(from, to cia402.State) bool {
	switch from {
	case cia402.ReadyToSwitchOn, cia402.SwitchedOn, cia402.OperationEnabled, cia402.QuickStopActive:
		return to == cia402.SwitchOnDisabled
	}
	return false
}

// ChangeState polls a state switch to completion, observing a fixed
// minimum spacing between polls.
func ChangeState(d *drive.Drive, target cia402.State, timeout time.Duration) error {
	j := NewStateSwitchJob(d, target, timeout, time.Now())
	for {
		progress := j.Poll(time.Now())
		switch progress.Status {
		case StatusDone:
			return nil
		case StatusFailed:
			return progress.Err
		}
		time.Sleep(DefaultPollSpacing)
	}
}
