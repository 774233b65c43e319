package drive

import (
	"fmt"
	"sync"
	"time"

	"github.com/rauc-lab/being/pkg/cia402"
)

// Sim emulates a single CiA 402 drive : the device state machine,
// profiled position / velocity motion between two mechanical end stops
// and device native homing. It implements Connection and is used for
// tests and for installations running without hardware.
type Sim struct {
	mu        sync.Mutex
	registers map[uint32]int64

	state cia402.State
	mode  cia402.OperationMode

	position   float64 // device units
	travelMin  float64
	travelMax  float64
	velocity   float64 // device units per second

	nominalCurrent int16
	stallCurrent   int16
	stalled        bool

	homingActive   bool
	homingAttained bool
	homingError    bool
	homingElapsed  time.Duration
	homingDuration time.Duration

	lastControlword uint16
	faulted         bool
	nmtState        NMTState
}

// Default supported drive modes : everything except the cyclic torque modes.
const simSupportedDriveModes = 0x01EF

func regKey(index uint16, subindex uint8) uint32 {
	return uint32(index)<<8 | uint32(subindex)
}

// NewSim creates a simulated drive with mechanical end stops at the
// given travel bounds (device units).
func NewSim(travelMin, travelMax float64) *Sim {
	s := &Sim{
		registers:      map[uint32]int64{},
		state:          cia402.SwitchOnDisabled,
		travelMin:      travelMin,
		travelMax:      travelMax,
		position:       (travelMin + travelMax) / 2,
		nominalCurrent: 100,
		stallCurrent:   3000,
		homingDuration: 100 * time.Millisecond,
		nmtState:       NMTPreOperational,
	}
	s.registers[regKey(SupportedDriveModes, 0)] = simSupportedDriveModes
	s.registers[regKey(DeviceType, 0)] = 0x00020192
	return s
}

// SetTravel moves the mechanical end stops and re-centers the axis
// between them. Used when the travel range is only known after the
// device scaling has been resolved.
func (s *Sim) SetTravel(travelMin, travelMax float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.travelMin = travelMin
	s.travelMax = travelMax
	s.position = (travelMin + travelMax) / 2
}

// SetHomingDuration overrides how long device native homing takes.
func (s *Sim) SetHomingDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.homingDuration = d
}

// FailHoming makes the next (or the running) homing procedure report a
// homing error instead of attaining the home position.
func (s *Sim) FailHoming() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.homingError = true
	s.homingActive = false
}

// Fault puts the drive into the FAULT state, as a device fault would.
func (s *Sim) Fault() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faulted = true
	s.state = cia402.Fault
}

// Position returns the simulated absolute position in device units.
func (s *Sim) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Step advances the simulation by dt : integrates velocity motion,
// detects end stop stalls and progresses an active homing procedure.
func (s *Sim) Step(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != cia402.OperationEnabled {
		s.stalled = false
		return
	}

	switch s.mode {
	case cia402.ModeProfiledVelocity:
		s.position += s.velocity * dt.Seconds()
		s.stalled = false
		if s.position <= s.travelMin {
			s.position = s.travelMin
			s.stalled = s.velocity < 0
		}
		if s.position >= s.travelMax {
			s.position = s.travelMax
			s.stalled = s.velocity > 0
		}
	case cia402.ModeProfiledPosition:
		target := float64(s.registers[regKey(TargetPosition, 0)])
		s.position = clamp(target, s.travelMin, s.travelMax)
		s.stalled = false
	case cia402.ModeHoming:
		if s.homingActive {
			s.homingElapsed += dt
			if s.homingElapsed >= s.homingDuration {
				s.homingActive = false
				s.homingAttained = true
				s.position = 0
			}
		}
	}
}

func clamp(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}

func (s *Sim) statusword() uint16 {
	_, value, ok := cia402.StatusPattern(s.state)
	if !ok {
		value = 0
	}
	sw := value
	if s.mode == cia402.ModeHoming {
		if s.homingAttained {
			sw |= cia402.SwHomingAttained | cia402.SwTargetReached
		}
		if s.homingError {
			sw |= cia402.SwHomingError
		}
	} else if s.mode == cia402.ModeProfiledPosition {
		target := float64(s.registers[regKey(TargetPosition, 0)])
		if s.position == clamp(target, s.travelMin, s.travelMax) {
			sw |= cia402.SwTargetReached
		}
	}
	return sw
}

// handleControlword applies a control word to the device state machine.
func (s *Sim) handleControlword(value uint16) {
	previous := s.lastControlword
	s.lastControlword = value

	if value&cia402.CwFaultReset != 0 {
		if s.state == cia402.Fault {
			s.faulted = false
			s.state = cia402.SwitchOnDisabled
		}
		return
	}
	if s.state == cia402.Fault || s.state == cia402.FaultReactionActive {
		return
	}

	switch value & 0x000F {
	case 0x0F: // enable operation
		switch s.state {
		case cia402.SwitchedOn, cia402.QuickStopActive, cia402.Halt:
			s.state = cia402.OperationEnabled
			if s.mode == cia402.ModeProfiledPosition {
				s.registers[regKey(TargetPosition, 0)] = int64(s.position)
			}
		case cia402.OperationEnabled:
			if value&cia402.CwHalt != 0 {
				s.state = cia402.Halt
			}
		}
		// Rising edge of bit 4 starts homing in homing mode
		if s.mode == cia402.ModeHoming && s.state == cia402.OperationEnabled &&
			value&cia402.CwStartHoming != 0 && previous&cia402.CwStartHoming == 0 {
			s.homingActive = true
			s.homingAttained = false
			s.homingElapsed = 0
		}
	case 0x07: // switch on / disable operation
		switch s.state {
		case cia402.ReadyToSwitchOn, cia402.OperationEnabled:
			s.state = cia402.SwitchedOn
		}
	case 0x06: // shut down
		switch s.state {
		case cia402.SwitchOnDisabled, cia402.SwitchedOn, cia402.OperationEnabled:
			s.state = cia402.ReadyToSwitchOn
		}
	case 0x02: // quick stop
		switch s.state {
		case cia402.ReadyToSwitchOn, cia402.SwitchedOn, cia402.OperationEnabled:
			s.state = cia402.QuickStopActive
		}
	case 0x00: // disable voltage
		switch s.state {
		case cia402.ReadyToSwitchOn, cia402.SwitchedOn,
			cia402.OperationEnabled, cia402.QuickStopActive, cia402.Halt:
			s.state = cia402.SwitchOnDisabled
		}
	}
}

func (s *Sim) read(index uint16, subindex uint8) int64 {
	switch {
	case index == Statusword:
		return int64(s.statusword())
	case index == PositionActualValue:
		return int64(s.position)
	case index == VelocityActualValue:
		return int64(s.velocity)
	case index == CurrentActualValue:
		if s.stalled {
			return int64(s.stallCurrent)
		}
		return int64(s.nominalCurrent)
	case index == ModesOfOperationDisplay:
		return int64(s.mode)
	default:
		return s.registers[regKey(index, subindex)]
	}
}

func (s *Sim) write(index uint16, subindex uint8, value int64) error {
	switch index {
	case Controlword:
		s.handleControlword(uint16(value))
	case ModesOfOperation:
		s.mode = cia402.OperationMode(value)
		// Hold position until a target is actually commanded.
		if s.mode == cia402.ModeProfiledPosition {
			s.registers[regKey(TargetPosition, 0)] = int64(s.position)
		}
	case TargetVelocity:
		s.velocity = float64(value)
	case Statusword, PositionActualValue, VelocityActualValue, CurrentActualValue:
		return fmt.Errorf("register 0x%04X is read only", index)
	}
	s.registers[regKey(index, subindex)] = value
	return nil
}

// Connection implementation

func (s *Sim) ReadUint8(index uint16, subindex uint8) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint8(s.read(index, subindex)), nil
}

func (s *Sim) ReadUint16(index uint16, subindex uint8) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint16(s.read(index, subindex)), nil
}

func (s *Sim) ReadUint32(index uint16, subindex uint8) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint32(s.read(index, subindex)), nil
}

func (s *Sim) ReadInt16(index uint16, subindex uint8) (int16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int16(s.read(index, subindex)), nil
}

func (s *Sim) ReadInt32(index uint16, subindex uint8) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int32(s.read(index, subindex)), nil
}

func (s *Sim) WriteUint8(index uint16, subindex uint8, value uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(index, subindex, int64(value))
}

func (s *Sim) WriteUint16(index uint16, subindex uint8, value uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(index, subindex, int64(value))
}

func (s *Sim) WriteUint32(index uint16, subindex uint8, value uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(index, subindex, int64(value))
}

func (s *Sim) WriteInt8(index uint16, subindex uint8, value int8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(index, subindex, int64(value))
}

func (s *Sim) WriteInt16(index uint16, subindex uint8, value int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(index, subindex, int64(value))
}

func (s *Sim) WriteInt32(index uint16, subindex uint8, value int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(index, subindex, int64(value))
}

func (s *Sim) SetNMTState(state NMTState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nmtState = state
	return nil
}

// NMTState returns the current network state, test helper.
func (s *Sim) NMTState() NMTState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nmtState
}
