package drive

import (
	"encoding/binary"
	"fmt"

	"github.com/rauc-lab/being/pkg/can"
)

// Emergency is a decoded EMCY frame.
// Layout (8 bytes total) :
//
//	0..1 error code (little endian)
//	2    error register
//	3..7 manufacturer specific data
type Emergency struct {
	Code         uint16
	Register     uint8
	Manufacturer [5]byte
}

// EmergencyFromFrame decodes an EMCY payload from a CAN frame.
func EmergencyFromFrame(frame can.Frame) (Emergency, error) {
	if frame.DLC < 8 {
		return Emergency{}, fmt.Errorf("emergency frame too short : %d", frame.DLC)
	}
	emcy := Emergency{
		Code:     binary.LittleEndian.Uint16(frame.Data[0:2]),
		Register: frame.Data[2],
	}
	copy(emcy.Manufacturer[:], frame.Data[3:8])
	return emcy, nil
}

// Describe renders a human readable message for the error code, falling
// back to generic CiA 301 classes when the vendor table has no entry.
func (e Emergency) Describe() string {
	if description, ok := faulhaberEmergencyDescriptions[e.Code]; ok {
		return fmt.Sprintf("0x%04X %s (error register 0x%02X)", e.Code, description, e.Register)
	}
	if description, ok := genericEmergencyClasses[e.Code&0xFF00]; ok {
		return fmt.Sprintf("0x%04X %s (error register 0x%02X)", e.Code, description, e.Register)
	}
	return fmt.Sprintf("0x%04X unknown error (error register 0x%02X)", e.Code, e.Register)
}

// ErrorCodeZero means no error, EMCY frames with code 0 signal recovery.
func (e Emergency) Recovered() bool {
	return e.Code == 0
}

// Generic CiA 301 error classes, keyed by the high byte of the code.
var genericEmergencyClasses = map[uint16]string{
	0x0000: "error reset or no error",
	0x1000: "generic error",
	0x2000: "current error",
	0x3000: "voltage error",
	0x4000: "temperature error",
	0x5000: "device hardware error",
	0x6000: "device software error",
	0x7000: "additional modules error",
	0x8000: "monitoring error",
	0x9000: "external error",
	0xF000: "additional functions error",
}

// Vendor error code table for Faulhaber motion controllers.
// Static lookup data, matching the controller documentation.
var faulhaberEmergencyDescriptions = map[uint16]string{
	0x0000: "no error",
	0x1000: "generic error",
	0x2310: "over current",
	0x3210: "over voltage",
	0x3220: "under voltage",
	0x4310: "over temperature",
	0x5442: "flash memory error",
	0x6100: "internal software error",
	0x6320: "invalid parameter",
	0x7400: "encoder error",
	0x8110: "CAN overrun, message lost",
	0x8120: "CAN in error passive mode",
	0x8130: "life guard or heartbeat error",
	0x8140: "recovered from bus off",
	0x8611: "following error, deviation too large",
	0xFF01: "dynamic limit exceeded",
	0xFF02: "continuous current limit active",
}
