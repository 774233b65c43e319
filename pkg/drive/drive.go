// Package drive wraps a single CiA 402 servo drive behind typed register
// access. The SDO / PDO wire encoding itself is the job of the
// underlying CANopen transport, this package only knows which registers
// to touch and what their values mean.
package drive

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/rauc-lab/being/pkg/cia402"
)

// NMT network states addressable through the connection.
type NMTState string

const (
	NMTOperational        NMTState = "OPERATIONAL"
	NMTPreOperational     NMTState = "PRE-OPERATIONAL"
	NMTStopped            NMTState = "STOPPED"
	NMTReset              NMTState = "RESET"
	NMTResetCommunication NMTState = "RESET COMMUNICATION"
)

// Connection is the transport-facing side of a drive : typed register
// access plus NMT control for one node. Implementations wrap an SDO
// client of an actual CANopen stack, or a simulation.
type Connection interface {
	ReadUint8(index uint16, subindex uint8) (uint8, error)
	ReadUint16(index uint16, subindex uint8) (uint16, error)
	ReadUint32(index uint16, subindex uint8) (uint32, error)
	ReadInt16(index uint16, subindex uint8) (int16, error)
	ReadInt32(index uint16, subindex uint8) (int32, error)
	WriteUint8(index uint16, subindex uint8, value uint8) error
	WriteUint16(index uint16, subindex uint8, value uint16) error
	WriteUint32(index uint16, subindex uint8, value uint32) error
	WriteInt8(index uint16, subindex uint8, value int8) error
	WriteInt16(index uint16, subindex uint8, value int16) error
	WriteInt32(index uint16, subindex uint8, value int32) error
	SetNMTState(state NMTState) error
}

var ErrUnsupportedMode = fmt.Errorf("operation mode not supported by drive")

// Drive is one physical (or simulated) CiA 402 node on the bus.
type Drive struct {
	Connection
	nodeId        uint8
	name          string
	logger        *log.Entry
	emcyCallbacks []func(emcy Emergency)
}

func NewDrive(connection Connection, nodeId uint8, name string) *Drive {
	return &Drive{
		Connection: connection,
		nodeId:     nodeId,
		name:       name,
		logger:     log.WithFields(log.Fields{"service": "[DRIVE]", "node": nodeId}),
	}
}

func (d *Drive) NodeId() uint8 { return d.nodeId }
func (d *Drive) Name() string  { return d.name }

// Statusword reads the raw status word.
func (d *Drive) Statusword() (uint16, error) {
	return d.ReadUint16(Statusword, 0)
}

// WriteControlword writes a raw control word, this is the
// cia402.ControlwordWriter implementation.
func (d *Drive) WriteControlword(value uint16) error {
	return d.WriteUint16(Controlword, 0, value)
}

// State decodes the current CiA 402 state from the status word.
func (d *Drive) State() (cia402.State, error) {
	sw, err := d.Statusword()
	if err != nil {
		return 0, err
	}
	return cia402.WhichState(sw)
}

// SetState issues the single direct transition command towards target.
// Multi-hop changes must be driven through a state switching job.
func (d *Drive) SetState(target cia402.State) error {
	current, err := d.State()
	if err != nil {
		return err
	}
	return cia402.SetState(d, current, target)
}

// OperationMode reads the active operation mode from the display register.
func (d *Drive) OperationMode() (cia402.OperationMode, error) {
	mode, err := d.ReadUint8(ModesOfOperationDisplay, 0)
	if err != nil {
		return 0, err
	}
	return cia402.OperationMode(mode), nil
}

// SetOperationMode switches the operation mode after checking it against
// the drive's supported modes capability register.
func (d *Drive) SetOperationMode(mode cia402.OperationMode) error {
	supported, err := d.ReadUint32(SupportedDriveModes, 0)
	if err != nil {
		return err
	}
	if !cia402.ModeSupported(supported, mode) {
		return fmt.Errorf("%w : %v", ErrUnsupportedMode, mode)
	}
	d.logger.Debugf("switching to operation mode %v", mode)
	return d.WriteInt8(ModesOfOperation, 0, int8(mode))
}

// ActualPosition reads the actual position in device units.
func (d *Drive) ActualPosition() (int32, error) {
	return d.ReadInt32(PositionActualValue, 0)
}

// SetTargetPosition writes the target position in device units.
func (d *Drive) SetTargetPosition(target int32) error {
	return d.WriteInt32(TargetPosition, 0, target)
}

// SetTargetVelocity writes the target velocity in device units.
func (d *Drive) SetTargetVelocity(target int32) error {
	return d.WriteInt32(TargetVelocity, 0, target)
}

// ActualCurrent reads the motor current, used for hard stop detection.
func (d *Drive) ActualCurrent() (int16, error) {
	return d.ReadInt16(CurrentActualValue, 0)
}

// DisableSoftwarePositionLimits opens the software position limit window
// completely, done after successful homing.
func (d *Drive) DisableSoftwarePositionLimits() error {
	if err := d.WriteInt32(SoftwarePositionLimit, SubPositionLimitMin, -0x80000000); err != nil {
		return err
	}
	return d.WriteInt32(SoftwarePositionLimit, SubPositionLimitMax, 0x7FFFFFFF)
}

// OnEmergency registers a listener for decoded EMCY frames of this node.
// Listeners are invoked in registration order.
func (d *Drive) OnEmergency(callback func(emcy Emergency)) {
	d.emcyCallbacks = append(d.emcyCallbacks, callback)
}

// HandleEmergency decodes and dispatches an EMCY frame, the owning motor
// keeps scheduling, a faulted drive never halts the whole cycle.
func (d *Drive) HandleEmergency(emcy Emergency) {
	d.logger.Warnf("emergency : %s", emcy.Describe())
	for _, callback := range d.emcyCallbacks {
		callback(emcy)
	}
}
