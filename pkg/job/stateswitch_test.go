package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rauc-lab/being/pkg/cia402"
	"github.com/rauc-lab/being/pkg/drive"
)

func newSimDrive() *drive.Drive {
	return drive.NewDrive(drive.NewSim(0, 100000), 1, "SIM")
}

func TestStateSwitchAlreadyThereSettlesOnFirstPoll(t *testing.T) {
	d := newSimDrive() // starts in SWITCH ON DISABLED
	j := NewStateSwitchJob(d, cia402.SwitchOnDisabled, time.Second, time.Now())

	progress := j.Poll(time.Now())
	assert.Equal(t, StatusDone, progress.Status)
}

func TestStateSwitchEnableChain(t *testing.T) {
	d := newSimDrive()
	now := time.Now()
	j := NewStateSwitchJob(d, cia402.OperationEnabled, time.Second, now)

	// One intermediate command per poll : SHUT DOWN, SWITCH ON,
	// ENABLE OPERATION, then the target is observed.
	states := []cia402.State{
		cia402.ReadyToSwitchOn,
		cia402.SwitchedOn,
		cia402.OperationEnabled,
	}
	for _, expected := range states {
		progress := j.Poll(now)
		require.Equal(t, StatusOngoing, progress.Status)
		state, err := d.State()
		require.Nil(t, err)
		assert.Equal(t, expected, state)
	}
	assert.Equal(t, StatusDone, j.Poll(now).Status)
}

func TestStateSwitchDisable(t *testing.T) {
	d := newSimDrive()
	require.Nil(t, ChangeState(d, cia402.OperationEnabled, time.Second))

	j := NewStateSwitchJob(d, cia402.ReadyToSwitchOn, time.Second, time.Now())
	progress := j.Poll(time.Now())
	require.Equal(t, StatusOngoing, progress.Status)
	assert.Equal(t, StatusDone, j.Poll(time.Now()).Status)

	state, err := d.State()
	require.Nil(t, err)
	assert.Equal(t, cia402.ReadyToSwitchOn, state)
}

func TestStateSwitchTimeout(t *testing.T) {
	d := newSimDrive()
	now := time.Now()
	j := NewStateSwitchJob(d, cia402.Halt, 0, now)

	progress := j.Poll(now.Add(time.Millisecond))
	require.Equal(t, StatusFailed, progress.Status)
	assert.ErrorIs(t, progress.Err, ErrTimeout)
}

func TestStateSwitchUnreachableTarget(t *testing.T) {
	d := newSimDrive()
	j := NewStateSwitchJob(d, cia402.FaultReactionActive, time.Second, time.Now())

	progress := j.Poll(time.Now())
	require.Equal(t, StatusFailed, progress.Status)
	assert.ErrorIs(t, progress.Err, cia402.ErrInvalidTransition)
	assert.NotErrorIs(t, progress.Err, ErrTimeout)
}

func TestStateSwitchFaultRecovery(t *testing.T) {
	sim := drive.NewSim(0, 100000)
	d := drive.NewDrive(sim, 1, "SIM")
	sim.Fault()

	require.Nil(t, ChangeState(d, cia402.OperationEnabled, time.Second))
	state, err := d.State()
	require.Nil(t, err)
	assert.Equal(t, cia402.OperationEnabled, state)
}
