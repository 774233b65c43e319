package motor

import (
	"github.com/rauc-lab/being/pkg/block"
	"github.com/rauc-lab/being/pkg/cia402"
	"github.com/rauc-lab/being/pkg/clock"
	"github.com/rauc-lab/being/pkg/homing"
	"github.com/rauc-lab/being/pkg/trajectory"
)

// Dummy is a motor without hardware. The kinematic filter integrates
// the block towards its target, so installations can run and be
// developed without drives attached. It exposes the same control
// surface as a real motor.
type Dummy struct {
	block.Base
	targetPosition *block.ValueInput
	actualPosition *block.ValueOutput
	*publisher

	clock       *clock.Clock
	state       trajectory.State
	length      float64
	maxSpeed    float64
	maxAcc      float64
	enabled     bool
	homingState homing.HomingState
}

func NewDummy(name string, length float64, maxSpeed float64, maxAcc float64, clk *clock.Clock) *Dummy {
	d := &Dummy{
		publisher:   newPublisher(),
		clock:       clk,
		length:      length,
		maxSpeed:    maxSpeed,
		maxAcc:      maxAcc,
		homingState: homing.Unhomed,
	}
	d.Init(name, d)
	d.targetPosition = d.AddValueInput()
	d.actualPosition = d.AddValueOutput()
	return d
}

func (d *Dummy) TargetPosition() *block.ValueInput  { return d.targetPosition }
func (d *Dummy) ActualPosition() *block.ValueOutput { return d.actualPosition }

func (d *Dummy) Enable() {
	d.enabled = true
	d.publish(EventStateChanged)
}

func (d *Dummy) Disable() {
	d.enabled = false
	d.publish(EventStateChanged)
}

// Home succeeds immediately, there is no hardware to discover.
func (d *Dummy) Home() {
	d.homingState = homing.Homed
	d.publish(EventHomingChanged)
}

func (d *Dummy) MotorState() cia402.State {
	if d.enabled {
		return cia402.OperationEnabled
	}
	return cia402.ReadyToSwitchOn
}

func (d *Dummy) HomingState() homing.HomingState { return d.homingState }

// Update integrates one interval of the optimal trajectory towards the
// target position.
func (d *Dummy) Update() {
	if d.enabled && d.homingState == homing.Homed {
		d.state = trajectory.Filter(
			d.targetPosition.Get(),
			d.clock.DT(),
			d.state,
			d.maxSpeed,
			d.maxAcc,
			0,
			d.length,
		)
	}
	d.actualPosition.Set(d.state.Position)
}
