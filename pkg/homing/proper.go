package homing

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rauc-lab/being/pkg/cia402"
	"github.com/rauc-lab/being/pkg/drive"
	"github.com/rauc-lab/being/pkg/job"
)

type properPhase int

const (
	properConfigure properPhase = iota
	properStart
	properWait
)

// ProperHoming runs the drive's device native homing procedure :
// configure the homing method and speeds, switch to homing mode, start
// with the controlword and poll the status word for the attained and
// target reached bits.
type ProperHoming struct {
	drive             *drive.Drive
	method            int
	switchSearchSpeed uint32
	zeroSearchSpeed   uint32
	acceleration      uint32
	deadline          time.Time

	phase  properPhase
	state  HomingState
	logger *log.Entry
}

func NewProperHoming(d *drive.Drive, method int, switchSearchSpeed, zeroSearchSpeed, acceleration uint32, timeout time.Duration, now time.Time) *ProperHoming {
	return &ProperHoming{
		drive:             d,
		method:            method,
		switchSearchSpeed: switchSearchSpeed,
		zeroSearchSpeed:   zeroSearchSpeed,
		acceleration:      acceleration,
		deadline:          now.Add(timeout),
		state:             Unhomed,
		logger: log.WithFields(log.Fields{
			"service": "[HOMING]",
			"node":    d.NodeId(),
		}),
	}
}

func (p *ProperHoming) State() HomingState { return p.state }

// Window is the full software range after native homing, the drive
// position limits are disabled on success.
func (p *ProperHoming) Window() (float64, float64) {
	return float64(-0x80000000), float64(0x7FFFFFFF)
}

func (p *ProperHoming) fail(err error) job.Progress {
	p.state = Failed
	return job.Fail(err)
}

func (p *ProperHoming) Poll(now time.Time) job.Progress {
	if p.state == Homed {
		return job.Done()
	}
	if now.After(p.deadline) {
		return p.fail(fmt.Errorf("%w : homing method %d", job.ErrTimeout, p.method))
	}

	switch p.phase {
	case properConfigure:
		p.state = Ongoing
		if err := p.drive.WriteInt8(drive.HomingMethod, 0, int8(p.method)); err != nil {
			return p.fail(err)
		}
		if err := p.drive.WriteUint32(drive.HomingSpeeds, drive.SubHomingSpeedSwitchSearch, p.switchSearchSpeed); err != nil {
			return p.fail(err)
		}
		if err := p.drive.WriteUint32(drive.HomingSpeeds, drive.SubHomingSpeedZeroSearch, p.zeroSearchSpeed); err != nil {
			return p.fail(err)
		}
		if err := p.drive.WriteUint32(drive.HomingAcceleration, 0, p.acceleration); err != nil {
			return p.fail(err)
		}
		if err := p.drive.SetOperationMode(cia402.ModeHoming); err != nil {
			return p.fail(err)
		}
		p.phase = properStart

	case properStart:
		// Start homing on the rising edge of bit 4
		if err := p.drive.WriteControlword(uint16(cia402.CmdEnableOperation)); err != nil {
			return p.fail(err)
		}
		if err := p.drive.WriteControlword(uint16(cia402.CmdEnableOperation) | cia402.CwStartHoming); err != nil {
			return p.fail(err)
		}
		p.logger.Debugf("started homing with method %d", p.method)
		p.phase = properWait

	case properWait:
		sw, err := p.drive.Statusword()
		if err != nil {
			return p.fail(err)
		}
		if sw&cia402.SwHomingError != 0 {
			return p.fail(fmt.Errorf("%w : drive reports homing error", ErrHomingFailed))
		}
		attained := sw&cia402.SwHomingAttained != 0
		reached := sw&cia402.SwTargetReached != 0
		if attained && reached {
			if err := p.drive.DisableSoftwarePositionLimits(); err != nil {
				return p.fail(err)
			}
			p.state = Homed
			p.logger.Info("homing attained")
			return job.Done()
		}
	}
	return job.Ongoing()
}
