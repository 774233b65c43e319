package drive

// CiA 301 / 402 object dictionary register addresses.
const (
	DeviceType              uint16 = 0x1000
	Controlword             uint16 = 0x6040
	Statusword              uint16 = 0x6041
	ModesOfOperation        uint16 = 0x6060
	ModesOfOperationDisplay uint16 = 0x6061
	PositionActualValue     uint16 = 0x6064
	VelocityActualValue     uint16 = 0x606C
	CurrentActualValue      uint16 = 0x6078
	TargetPosition          uint16 = 0x607A
	SoftwarePositionLimit   uint16 = 0x607D
	ProfileVelocity         uint16 = 0x6081
	ProfileAcceleration     uint16 = 0x6083
	ProfileDeceleration     uint16 = 0x6084
	HomingMethod            uint16 = 0x6098
	HomingSpeeds            uint16 = 0x6099
	HomingAcceleration      uint16 = 0x609A
	TargetVelocity          uint16 = 0x60FF
	SupportedDriveModes     uint16 = 0x6502
)

// Sub indices
const (
	SubHomingSpeedSwitchSearch uint8 = 1
	SubHomingSpeedZeroSearch   uint8 = 2
	SubPositionLimitMin        uint8 = 1
	SubPositionLimitMax        uint8 = 2
)
