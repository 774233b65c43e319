package homing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rauc-lab/being/pkg/cia402"
	"github.com/rauc-lab/being/pkg/drive"
	"github.com/rauc-lab/being/pkg/job"
)

const simInterval = 10 * time.Millisecond

// enabledSimDrive returns an OPERATION ENABLED simulated drive with end
// stops at [0, travelMax].
func enabledSimDrive(t *testing.T, travelMax float64) (*drive.Drive, *drive.Sim) {
	t.Helper()
	sim := drive.NewSim(0, travelMax)
	d := drive.NewDrive(sim, 1, "SIM")
	require.Nil(t, job.ChangeState(d, cia402.OperationEnabled, time.Second))
	return d, sim
}

// runHoming polls the job and steps the simulation in lock step, like
// the control cycle would.
func runHoming(t *testing.T, h Job, sim *drive.Sim, maxTicks int) job.Progress {
	t.Helper()
	now := time.Now()
	for i := 0; i < maxTicks; i++ {
		progress := h.Poll(now)
		if progress.Settled() {
			return progress
		}
		sim.Step(simInterval)
		now = now.Add(simInterval)
	}
	t.Fatal("homing did not settle")
	return job.Progress{}
}

func TestCrudeHomingDiscoversWindow(t *testing.T) {
	d, sim := enabledSimDrive(t, 100000)

	h := NewCrudeHoming(d, 100000, 1000, cia402.Forward, 80000, time.Minute, time.Now())
	assert.Equal(t, Unhomed, h.State())

	progress := runHoming(t, h, sim, 1000)
	require.Equal(t, job.StatusDone, progress.Status)
	assert.Equal(t, Homed, h.State())

	// The window is centered around the expected length.
	lower, upper := h.Window()
	assert.InDelta(t, 10000, lower, 1)
	assert.InDelta(t, 90000, upper, 1)

	// The axis is stopped after homing.
	velocity, err := d.ReadInt32(drive.TargetVelocity, 0)
	require.Nil(t, err)
	assert.Equal(t, int32(0), velocity)
}

func TestCrudeHomingBackwardFirst(t *testing.T) {
	d, sim := enabledSimDrive(t, 100000)

	h := NewCrudeHoming(d, 100000, 1000, cia402.Backward, 0, time.Minute, time.Now())
	progress := runHoming(t, h, sim, 1000)
	require.Equal(t, job.StatusDone, progress.Status)

	// Without a known length the raw extremes are the window.
	lower, upper := h.Window()
	assert.InDelta(t, 0, lower, 1)
	assert.InDelta(t, 100000, upper, 1)
}

func TestCrudeHomingStartsAtEndStop(t *testing.T) {
	d, sim := enabledSimDrive(t, 100000)

	// Park the axis pressed against the lower stop before homing starts.
	require.Nil(t, d.SetOperationMode(cia402.ModeProfiledVelocity))
	require.Nil(t, d.SetTargetVelocity(-200000))
	for i := 0; i < 30; i++ {
		sim.Step(simInterval)
	}
	require.Equal(t, 0.0, sim.Position())

	// The first sweep heads into the stop we are already touching, the
	// stall must be taken at face value instead of waiting for the
	// current to drop first.
	h := NewCrudeHoming(d, 100000, 1000, cia402.Backward, 0, time.Minute, time.Now())
	progress := runHoming(t, h, sim, 1000)
	require.Equal(t, job.StatusDone, progress.Status)

	lower, upper := h.Window()
	assert.InDelta(t, 0, lower, 1)
	assert.InDelta(t, 100000, upper, 1)
}

func TestCrudeHomingWindowTooNarrow(t *testing.T) {
	d, sim := enabledSimDrive(t, 100000)

	// Expecting more travel than the mechanics have.
	h := NewCrudeHoming(d, 100000, 1000, cia402.Forward, 200000, time.Minute, time.Now())
	progress := runHoming(t, h, sim, 1000)
	require.Equal(t, job.StatusFailed, progress.Status)
	assert.ErrorIs(t, progress.Err, ErrWindowTooNarrow)
	assert.Equal(t, Failed, h.State())
}

func TestCrudeHomingTimeout(t *testing.T) {
	d, _ := enabledSimDrive(t, 100000)

	now := time.Now()
	h := NewCrudeHoming(d, 100000, 1000, cia402.Forward, 0, time.Millisecond, now)
	progress := h.Poll(now.Add(time.Second))
	require.Equal(t, job.StatusFailed, progress.Status)
	assert.ErrorIs(t, progress.Err, job.ErrTimeout)
}

func TestProperHomingAttains(t *testing.T) {
	d, sim := enabledSimDrive(t, 100000)
	sim.SetHomingDuration(3 * simInterval)

	h := NewProperHoming(d, 35, 1000, 500, 10000, time.Minute, time.Now())
	progress := runHoming(t, h, sim, 100)
	require.Equal(t, job.StatusDone, progress.Status)
	assert.Equal(t, Homed, h.State())

	// Native homing zeroes the position.
	assert.Equal(t, 0.0, sim.Position())

	// The configured method reached the drive.
	method, err := d.ReadUint8(drive.HomingMethod, 0)
	require.Nil(t, err)
	assert.Equal(t, int8(35), int8(method))
}

func TestProperHomingErrorFails(t *testing.T) {
	d, sim := enabledSimDrive(t, 100000)
	sim.FailHoming()

	h := NewProperHoming(d, 35, 1000, 500, 10000, time.Minute, time.Now())
	progress := runHoming(t, h, sim, 100)
	require.Equal(t, job.StatusFailed, progress.Status)
	assert.ErrorIs(t, progress.Err, ErrHomingFailed)
	assert.Equal(t, Failed, h.State())
}

func TestProperHomingTimeout(t *testing.T) {
	d, _ := enabledSimDrive(t, 100000)

	now := time.Now()
	h := NewProperHoming(d, 35, 1000, 500, 10000, time.Millisecond, now)
	progress := h.Poll(now.Add(time.Second))
	require.Equal(t, job.StatusFailed, progress.Status)
	assert.ErrorIs(t, progress.Err, job.ErrTimeout)
	assert.Equal(t, Failed, h.State())
}

// fakeJob settles after a fixed number of polls.
type fakeJob struct {
	polls  int
	needed int
	result job.Progress
}

func (j *fakeJob) Poll(now time.Time) job.Progress {
	j.polls++
	if j.polls >= j.needed {
		return j.result
	}
	return job.Ongoing()
}

func TestAwaitAll(t *testing.T) {
	r := job.NewRunner()
	r.Add(1, &fakeJob{needed: 2, result: job.Done()})
	r.Add(2, &fakeJob{needed: 5, result: job.Done()})

	assert.Nil(t, AwaitAll(r, time.Millisecond, time.Second))
}

func TestAwaitAllReportsFailure(t *testing.T) {
	r := job.NewRunner()
	r.Add(1, &fakeJob{needed: 1, result: job.Done()})
	r.Add(2, &fakeJob{needed: 2, result: job.Fail(ErrHomingFailed)})

	err := AwaitAll(r, time.Millisecond, time.Second)
	assert.ErrorIs(t, err, ErrHomingFailed)
}

func TestHomingStateString(t *testing.T) {
	assert.Equal(t, "UNHOMED", Unhomed.String())
	assert.Equal(t, "ONGOING", Ongoing.String())
	assert.Equal(t, "HOMED", Homed.String())
	assert.Equal(t, "FAILED", Failed.String())
}
