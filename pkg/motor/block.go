package motor

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rauc-lab/being/pkg/block"
	"github.com/rauc-lab/being/pkg/cia402"
	"github.com/rauc-lab/being/pkg/drive"
	"github.com/rauc-lab/being/pkg/homing"
	"github.com/rauc-lab/being/pkg/job"
)

// Interface is the minimal control surface a motor block exposes to
// external orchestrators (motion player, behavior engine, web layer).
type Interface interface {
	block.Block
	Enable()
	Disable()
	Home()
	MotorState() cia402.State
	HomingState() homing.HomingState
}

// Switch timeout for enable / disable requests.
const stateSwitchTimeout = 5 * time.Second

// Motor is the block facade over one physical drive : it converts the
// SI target position to device units, keeps the drive in an operable
// state and publishes the actual position. Errors on a single motor are
// logged and do not halt the cycle, the other motors keep running.
type Motor struct {
	block.Base
	targetPosition *block.ValueInput
	actualPosition *block.ValueOutput

	controller Controller
	*publisher

	switchJob   *job.StateSwitchJob
	homingJob   homing.Job
	homingState homing.HomingState
	lower       float64 // SI travel window
	upper       float64
	lastState   cia402.State
	faulted     bool
	logger      *log.Entry
}

// NewMotor wires a motor block around a controller.
func NewMotor(name string, controller Controller) *Motor {
	m := &Motor{
		controller:  controller,
		publisher:   newPublisher(),
		homingState: homing.Unhomed,
		upper:       controller.Length(),
		logger: log.WithFields(log.Fields{
			"service": "[MOTOR]",
			"node":    controller.Drive().NodeId(),
		}),
	}
	m.Init(name, m)
	m.targetPosition = m.AddValueInput()
	m.actualPosition = m.AddValueOutput()
	controller.Drive().OnEmergency(m.handleEmergency)
	return m
}

func (m *Motor) TargetPosition() *block.ValueInput  { return m.targetPosition }
func (m *Motor) ActualPosition() *block.ValueOutput { return m.actualPosition }

// Enable requests OPERATION ENABLED, driven to completion over the next
// ticks by the state switching job.
func (m *Motor) Enable() {
	if err := m.controller.Drive().SetOperationMode(cia402.ModeProfiledPosition); err != nil {
		m.logger.Errorf("setting operation mode failed : %v", err)
	}
	m.switchJob = job.NewStateSwitchJob(m.controller.Drive(), cia402.OperationEnabled, stateSwitchTimeout, time.Now())
}

// Disable requests READY TO SWITCH ON.
func (m *Motor) Disable() {
	m.switchJob = job.NewStateSwitchJob(m.controller.Drive(), cia402.ReadyToSwitchOn, stateSwitchTimeout, time.Now())
}

// Home arms a fresh homing procedure for the controller's hardware.
func (m *Motor) Home() {
	m.homingJob = m.controller.HomingJob(time.Now())
	m.setHomingState(homing.Ongoing)
}

// MotorState returns the last observed CiA 402 state.
func (m *Motor) MotorState() cia402.State { return m.lastState }

// HomingState returns the homing lifecycle state.
func (m *Motor) HomingState() homing.HomingState { return m.homingState }

// TravelWindow returns the homed SI position bounds.
func (m *Motor) TravelWindow() (float64, float64) { return m.lower, m.upper }

func (m *Motor) setHomingState(state homing.HomingState) {
	if m.homingState == state {
		return
	}
	m.homingState = state
	m.publish(EventHomingChanged)
}

// handleEmergency reacts to decoded EMCY frames of the owning drive.
// Faults stay local to this motor, the cycle keeps scheduling the rest.
func (m *Motor) handleEmergency(emcy drive.Emergency) {
	if emcy.Recovered() {
		m.faulted = false
		return
	}
	m.faulted = true
	m.logger.Errorf("drive fault : %s", emcy.Describe())
	m.publish(EventError)
}

// Update advances the motor by one tick : poll pending jobs, forward
// the target set point, read back the actual position.
func (m *Motor) Update() {
	now := time.Now()
	d := m.controller.Drive()

	if m.switchJob != nil {
		progress := m.switchJob.Poll(now)
		if progress.Settled() {
			if progress.Err != nil {
				m.logger.Errorf("state switch failed : %v", progress.Err)
				m.publish(EventError)
			}
			m.switchJob = nil
		}
	}

	if m.homingJob != nil {
		progress := m.homingJob.Poll(now)
		if progress.Settled() {
			if progress.Status == job.StatusDone {
				// The window comes back in device coordinates, a reversed
				// motor flips it into descending SI bounds.
				lower, upper := m.homingJob.Window()
				m.lower = m.controller.ApplyMotorDirection(m.controller.DeviceToSi(int32(lower)))
				m.upper = m.controller.ApplyMotorDirection(m.controller.DeviceToSi(int32(upper)))
				if m.lower > m.upper {
					m.lower, m.upper = m.upper, m.lower
				}
				if err := d.SetOperationMode(cia402.ModeProfiledPosition); err != nil {
					m.logger.Errorf("restoring operation mode failed : %v", err)
				}
				m.setHomingState(homing.Homed)
			} else {
				m.logger.Errorf("homing failed : %v", progress.Err)
				m.setHomingState(homing.Failed)
				m.publish(EventError)
			}
			m.homingJob = nil
		}
	}

	state, err := d.State()
	if err != nil {
		m.logger.Errorf("reading state failed : %v", err)
		return
	}
	if state != m.lastState {
		m.lastState = state
		m.publish(EventStateChanged)
	}

	if state == cia402.OperationEnabled && m.homingState == homing.Homed && m.homingJob == nil && m.switchJob == nil {
		target := clip(m.targetPosition.Get(), m.lower, m.upper)
		dev := m.controller.SiToDevice(m.controller.ApplyMotorDirection(target))
		if err := d.SetTargetPosition(dev); err != nil {
			m.logger.Errorf("writing target position failed : %v", err)
		}
	}

	actual, err := d.ActualPosition()
	if err != nil {
		m.logger.Errorf("reading actual position failed : %v", err)
		return
	}
	m.actualPosition.Set(m.controller.ApplyMotorDirection(m.controller.DeviceToSi(actual)))
}

func clip(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
