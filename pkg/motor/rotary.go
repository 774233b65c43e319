package motor

import (
	"math"
	"time"

	"github.com/rauc-lab/being/pkg/cia402"
	"github.com/rauc-lab/being/pkg/drive"
	"github.com/rauc-lab/being/pkg/homing"
)

func init() {
	RegisterController("EPOS4", NewRotaryController)
}

// Maxon EPOS4 with a 2048 line encoder in quadrature, increments per
// radian.
const eposUnitsPerRadian = 2048 * 4 / (2 * math.Pi)

// RotaryController drives a Maxon EPOS4 rotary drive using the device
// native homing procedures.
type RotaryController struct {
	controllerBase
	homingMethod int
}

func NewRotaryController(d *drive.Drive, params Params) (Controller, error) {
	if params.UnitsPerSi == 0 {
		params.UnitsPerSi = eposUnitsPerRadian
	}
	if params.Direction == 0 {
		params.Direction = cia402.Forward
	}
	if params.HomingTimeout == 0 {
		params.HomingTimeout = 10 * time.Second
	}
	if params.HomingSpeed == 0 {
		params.HomingSpeed = 1.0
	}
	controller := &RotaryController{
		controllerBase: controllerBase{
			drive:      d,
			length:     params.Length,
			direction:  float64(params.Direction),
			unitsPerSi: params.UnitsPerSi,
			params:     params,
		},
	}
	method, err := cia402.DetermineHomingMethod(
		cia402.WithHardStop(),
		cia402.WithDirection(params.Direction),
	)
	if err != nil {
		return nil, err
	}
	if err := checkHomingMethod(controller.SupportedHomingMethods(), method); err != nil {
		return nil, err
	}
	controller.homingMethod = method
	return controller, nil
}

// HomingJob starts the drive's built in current threshold homing.
func (c *RotaryController) HomingJob(now time.Time) homing.Job {
	speed := uint32(math.Abs(c.params.HomingSpeed) * c.unitsPerSi)
	return homing.NewProperHoming(
		c.drive,
		c.homingMethod,
		speed,
		speed/2,
		speed*10,
		c.params.HomingTimeout,
		now,
	)
}

func (c *RotaryController) SupportedHomingMethods() []int {
	return []int{-4, -3, -2, -1, 1, 2, 7, 11, 17, 18, 23, 27, 33, 34, 35}
}
