package cia402

// Control word bits (0x6040)
const (
	CwSwitchOn             uint16 = 1 << 0
	CwEnableVoltage        uint16 = 1 << 1
	CwQuickStop            uint16 = 1 << 2
	CwEnableOperation      uint16 = 1 << 3
	CwNewSetPoint          uint16 = 1 << 4 // doubles as start homing in homing mode
	CwStartHoming          uint16 = 1 << 4
	CwChangeSetImmediately uint16 = 1 << 5
	CwRelative             uint16 = 1 << 6
	CwFaultReset           uint16 = 1 << 7
	CwHalt                 uint16 = 1 << 8
)

// Status word bits (0x6041)
const (
	SwReadyToSwitchOn   uint16 = 1 << 0
	SwSwitchedOn        uint16 = 1 << 1
	SwOperationEnabled  uint16 = 1 << 2
	SwFault             uint16 = 1 << 3
	SwVoltageEnabled    uint16 = 1 << 4
	SwQuickStop         uint16 = 1 << 5
	SwSwitchOnDisabled  uint16 = 1 << 6
	SwWarning           uint16 = 1 << 7
	SwRemote            uint16 = 1 << 9
	SwTargetReached     uint16 = 1 << 10
	SwInternalLimit     uint16 = 1 << 11
	SwHomingAttained    uint16 = 1 << 12 // set point acknowledge outside homing mode
	SwHomingError       uint16 = 1 << 13 // following / deviation error outside homing mode
)

// Operation modes (0x6060 / 0x6061)
type OperationMode int8

const (
	ModeNone                      OperationMode = 0
	ModeProfiledPosition          OperationMode = 1
	ModeVelocity                  OperationMode = 2
	ModeProfiledVelocity          OperationMode = 3
	ModeProfiledTorque            OperationMode = 4
	ModeHoming                    OperationMode = 6
	ModeInterpolatedPosition      OperationMode = 7
	ModeCyclicSynchronousPosition OperationMode = 8
	ModeCyclicSynchronousVelocity OperationMode = 9
	ModeCyclicSynchronousTorque   OperationMode = 10
)

var modeDescription = map[OperationMode]string{
	ModeNone:                      "NO MODE",
	ModeProfiledPosition:          "PROFILED POSITION",
	ModeVelocity:                  "VELOCITY",
	ModeProfiledVelocity:          "PROFILED VELOCITY",
	ModeProfiledTorque:            "PROFILED TORQUE",
	ModeHoming:                    "HOMING",
	ModeInterpolatedPosition:      "INTERPOLATED POSITION",
	ModeCyclicSynchronousPosition: "CYCLIC SYNCHRONOUS POSITION",
	ModeCyclicSynchronousVelocity: "CYCLIC SYNCHRONOUS VELOCITY",
	ModeCyclicSynchronousTorque:   "CYCLIC SYNCHRONOUS TORQUE",
}

func (m OperationMode) String() string {
	if description, ok := modeDescription[m]; ok {
		return description
	}
	return "UNKNOWN MODE"
}

// Bit positions in SUPPORTED_DRIVE_MODES (0x6502) per mode.
var supportedDriveModeBit = map[OperationMode]uint32{
	ModeProfiledPosition:          1 << 0,
	ModeVelocity:                  1 << 1,
	ModeProfiledVelocity:          1 << 2,
	ModeProfiledTorque:            1 << 3,
	ModeHoming:                    1 << 5,
	ModeInterpolatedPosition:      1 << 6,
	ModeCyclicSynchronousPosition: 1 << 7,
	ModeCyclicSynchronousVelocity: 1 << 8,
	ModeCyclicSynchronousTorque:   1 << 9,
}

// ModeSupported checks an operation mode against the SUPPORTED_DRIVE_MODES
// register value.
func ModeSupported(supportedDriveModes uint32, mode OperationMode) bool {
	bit, ok := supportedDriveModeBit[mode]
	if !ok {
		return false
	}
	return supportedDriveModes&bit != 0
}
