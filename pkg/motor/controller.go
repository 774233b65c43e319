// Package motor glues the device state machine, homing and the
// kinematic trajectory filter into dataflow blocks, converting between
// SI units and device units. Vendor specifics live behind the
// Controller interface, selected once at construction through a
// registry keyed by device name.
package motor

import (
	"fmt"
	"time"

	"github.com/thoas/go-funk"

	"github.com/rauc-lab/being/pkg/drive"
	"github.com/rauc-lab/being/pkg/homing"
)

// Params are the construction time settings of a controller.
type Params struct {
	// Length is the physical travel / rod length in SI units, 0 when
	// unknown.
	Length float64
	// Direction flips the motion sense, cia402.Forward or Backward.
	Direction int
	// MaxSpeed and MaxAcc bound the trajectory filter, SI units.
	MaxSpeed float64
	MaxAcc   float64
	// UnitsPerSi overrides the vendor default device unit scaling.
	UnitsPerSi float64
	// HomingTimeout bounds a homing procedure.
	HomingTimeout time.Duration
	// CurrentLimit is the hard stop detection threshold in device
	// units, only used by controllers homing against end stops.
	CurrentLimit int16
	// HomingSpeed for the homing sweeps, SI units per second.
	HomingSpeed float64
}

// Controller wraps one drive with its vendor specifics : unit scaling,
// direction handling and the homing flavor of the hardware.
type Controller interface {
	Drive() *drive.Drive
	// SiToDevice / DeviceToSi convert positions.
	SiToDevice(si float64) int32
	DeviceToSi(dev int32) float64
	// ApplyMotorDirection flips SI values according to the mounting
	// direction of the motor.
	ApplyMotorDirection(si float64) float64
	// HomingJob creates a fresh homing procedure for this hardware.
	HomingJob(now time.Time) homing.Job
	SupportedHomingMethods() []int
	Length() float64
}

// Factory builds a controller for a drive. Registered per device name.
type Factory func(d *drive.Drive, params Params) (Controller, error)

var controllerRegistry = map[string]Factory{}

// RegisterController adds a controller factory for a device name.
// Called from init() of the vendor implementations.
func RegisterController(deviceName string, factory Factory) {
	controllerRegistry[deviceName] = factory
}

// NewController selects the vendor implementation by device name.
func NewController(deviceName string, d *drive.Drive, params Params) (Controller, error) {
	factory, ok := controllerRegistry[deviceName]
	if !ok {
		return nil, fmt.Errorf("unsupported device : %q, known devices : %v", deviceName, funk.Keys(controllerRegistry))
	}
	return factory(d, params)
}

// controllerBase carries what all vendor controllers share.
type controllerBase struct {
	drive      *drive.Drive
	length     float64
	direction  float64
	unitsPerSi float64
	params     Params
}

func (c *controllerBase) Drive() *drive.Drive { return c.drive }
func (c *controllerBase) Length() float64     { return c.length }

func (c *controllerBase) SiToDevice(si float64) int32 {
	return int32(si * c.unitsPerSi)
}

func (c *controllerBase) DeviceToSi(dev int32) float64 {
	return float64(dev) / c.unitsPerSi
}

func (c *controllerBase) ApplyMotorDirection(si float64) float64 {
	return c.direction * si
}

// checkHomingMethod validates a homing method against the controller's
// capabilities.
func checkHomingMethod(supported []int, method int) error {
	if !funk.ContainsInt(supported, method) {
		return fmt.Errorf("homing method %d not supported, supported methods : %v", method, supported)
	}
	return nil
}
