package motor

import (
	"math"
	"time"

	"github.com/rauc-lab/being/pkg/cia402"
	"github.com/rauc-lab/being/pkg/drive"
	"github.com/rauc-lab/being/pkg/homing"
)

func init() {
	RegisterController("MCLM3002", NewLinearController)
	RegisterController("MCLM3006", NewLinearController)
}

// Faulhaber linear motors position in micrometers.
const faulhaberUnitsPerMeter = 1e6

// Default hard stop detection threshold, device current units.
const faulhaberDefaultCurrentLimit = 1000

// LinearController drives a Faulhaber MCLM linear motor. The hardware
// has no reference switches, travel limits are discovered by hard stop
// homing against the mechanical ends of the rod.
type LinearController struct {
	controllerBase
}

func NewLinearController(d *drive.Drive, params Params) (Controller, error) {
	if params.UnitsPerSi == 0 {
		params.UnitsPerSi = faulhaberUnitsPerMeter
	}
	if params.Direction == 0 {
		params.Direction = cia402.Forward
	}
	if params.CurrentLimit == 0 {
		params.CurrentLimit = faulhaberDefaultCurrentLimit
	}
	if params.HomingTimeout == 0 {
		params.HomingTimeout = 10 * time.Second
	}
	if params.HomingSpeed == 0 {
		params.HomingSpeed = 0.05
	}
	return &LinearController{
		controllerBase: controllerBase{
			drive:      d,
			length:     params.Length,
			direction:  float64(params.Direction),
			unitsPerSi: params.UnitsPerSi,
			params:     params,
		},
	}, nil
}

// HomingJob sweeps the rod against both hard stops.
func (c *LinearController) HomingJob(now time.Time) homing.Job {
	return homing.NewCrudeHoming(
		c.drive,
		math.Abs(c.params.HomingSpeed)*c.unitsPerSi,
		c.params.CurrentLimit,
		c.params.Direction,
		c.length*c.unitsPerSi,
		c.params.HomingTimeout,
		now,
	)
}

func (c *LinearController) SupportedHomingMethods() []int {
	return []int{-4, -3, 35}
}
