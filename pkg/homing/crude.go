package homing

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rauc-lab/being/pkg/cia402"
	"github.com/rauc-lab/being/pkg/drive"
	"github.com/rauc-lab/being/pkg/job"
)

type crudePhase int

const (
	crudeSetup crudePhase = iota
	crudeFirstSweep
	crudeSecondSweep
	crudeFinish
)

// CrudeHoming discovers the travel limits by driving the axis at
// constant velocity into both mechanical end stops. A stop is detected
// when the motor current exceeds the configured limit. With a known rod
// length the discovered window is centered around it, and the homing
// fails when the window turns out narrower than that length.
type CrudeHoming struct {
	drive        *drive.Drive
	speed        float64 // device units per second
	currentLimit int16
	direction    int     // first sweep direction
	length       float64 // expected usable length in device units, 0 = unknown
	deadline     time.Time

	phase    crudePhase
	armed    bool
	first    float64
	second   float64
	lower    float64
	upper    float64
	state    HomingState
	logger   *log.Entry
}

// NewCrudeHoming creates a hard stop homing job. direction selects the
// first sweep (cia402.Forward or cia402.Backward), length is the known
// physical rod length in device units or 0 when unknown.
func NewCrudeHoming(d *drive.Drive, speed float64, currentLimit int16, direction int, length float64, timeout time.Duration, now time.Time) *CrudeHoming {
	return &CrudeHoming{
		drive:        d,
		speed:        speed,
		currentLimit: currentLimit,
		direction:    direction,
		length:       length,
		deadline:     now.Add(timeout),
		state:        Unhomed,
		logger: log.WithFields(log.Fields{
			"service": "[HOMING]",
			"node":    d.NodeId(),
		}),
	}
}

func (c *CrudeHoming) State() HomingState { return c.state }

func (c *CrudeHoming) Window() (float64, float64) { return c.lower, c.upper }

func (c *CrudeHoming) fail(err error) job.Progress {
	c.state = Failed
	_ = c.drive.SetTargetVelocity(0)
	return job.Fail(err)
}

// Poll advances the sweep by one cooperative step.
func (c *CrudeHoming) Poll(now time.Time) job.Progress {
	if c.state == Homed {
		return job.Done()
	}
	if now.After(c.deadline) {
		return c.fail(fmt.Errorf("%w : hard stop homing", job.ErrTimeout))
	}

	switch c.phase {
	case crudeSetup:
		c.state = Ongoing
		if err := c.drive.SetOperationMode(cia402.ModeProfiledVelocity); err != nil {
			return c.fail(err)
		}
		if err := c.drive.SetTargetVelocity(int32(float64(c.direction) * c.speed)); err != nil {
			return c.fail(err)
		}
		// The first sweep is armed right away : starting pressed against
		// the stop we sweep towards must count as reaching it.
		c.armed = true
		c.phase = crudeFirstSweep

	case crudeFirstSweep:
		stalled, err := c.checkStall()
		if err != nil {
			return c.fail(err)
		}
		if stalled {
			position, err := c.drive.ActualPosition()
			if err != nil {
				return c.fail(err)
			}
			c.first = float64(position)
			c.logger.Debugf("first end stop at %v", c.first)
			if err := c.drive.SetTargetVelocity(int32(float64(-c.direction) * c.speed)); err != nil {
				return c.fail(err)
			}
			c.armed = false
			c.phase = crudeSecondSweep
		}

	case crudeSecondSweep:
		stalled, err := c.checkStall()
		if err != nil {
			return c.fail(err)
		}
		if stalled {
			position, err := c.drive.ActualPosition()
			if err != nil {
				return c.fail(err)
			}
			c.second = float64(position)
			c.logger.Debugf("second end stop at %v", c.second)
			if err := c.drive.SetTargetVelocity(0); err != nil {
				return c.fail(err)
			}
			c.phase = crudeFinish
		}

	case crudeFinish:
		return c.finish()
	}
	return job.Ongoing()
}

// checkStall reads the motor current. After the reversal, detection is
// re-armed only once the current dropped below the limit, otherwise the
// stop we are still pressing against would trigger again immediately.
func (c *CrudeHoming) checkStall() (bool, error) {
	current, err := c.drive.ActualCurrent()
	if err != nil {
		return false, err
	}
	exceeded := abs16(current) >= abs16(c.currentLimit)
	if !c.armed {
		if !exceeded {
			c.armed = true
		}
		return false, nil
	}
	return exceeded, nil
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

// finish computes the usable travel window from the two recorded
// extremes. With a known rod length the window is centered around it.
func (c *CrudeHoming) finish() job.Progress {
	c.lower = c.first
	c.upper = c.second
	if c.lower > c.upper {
		c.lower, c.upper = c.upper, c.lower
	}
	width := c.upper - c.lower
	if c.length > 0 {
		if width < c.length {
			return c.fail(fmt.Errorf("%w : %v < %v", ErrWindowTooNarrow, width, c.length))
		}
		center := (c.lower + c.upper) / 2
		c.lower = center - c.length/2
		c.upper = center + c.length/2
	}
	c.state = Homed
	c.logger.Infof("homed, travel window [%v, %v]", c.lower, c.upper)
	return job.Done()
}
