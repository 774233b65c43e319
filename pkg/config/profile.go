package config

import (
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/rauc-lab/being/pkg/drive"
)

// Profile holds the vendor register defaults of a device family,
// loaded from a small INI table.
//
//	[Motion]
//	ProfileVelocity     = 50000
//	ProfileAcceleration = 100000
//	ProfileDeceleration = 100000
//
//	[Homing]
//	CurrentLimit = 1000
type Profile struct {
	Motion MotionProfile `ini:"Motion"`
	Homing HomingProfile `ini:"Homing"`
}

type MotionProfile struct {
	ProfileVelocity     uint32 `ini:"ProfileVelocity"`
	ProfileAcceleration uint32 `ini:"ProfileAcceleration"`
	ProfileDeceleration uint32 `ini:"ProfileDeceleration"`
}

type HomingProfile struct {
	CurrentLimit int16 `ini:"CurrentLimit"`
}

// LoadProfile parses an INI device profile.
func LoadProfile(path string) (*Profile, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading device profile : %w", err)
	}
	profile := &Profile{}
	if err := file.Section("Motion").MapTo(&profile.Motion); err != nil {
		return nil, err
	}
	if err := file.Section("Homing").MapTo(&profile.Homing); err != nil {
		return nil, err
	}
	return profile, nil
}

// Apply writes the profile's motion registers to a drive.
func (p *Profile) Apply(d *drive.Drive) error {
	if p.Motion.ProfileVelocity != 0 {
		if err := d.WriteUint32(drive.ProfileVelocity, 0, p.Motion.ProfileVelocity); err != nil {
			return err
		}
	}
	if p.Motion.ProfileAcceleration != 0 {
		if err := d.WriteUint32(drive.ProfileAcceleration, 0, p.Motion.ProfileAcceleration); err != nil {
			return err
		}
	}
	if p.Motion.ProfileDeceleration != 0 {
		if err := d.WriteUint32(drive.ProfileDeceleration, 0, p.Motion.ProfileDeceleration); err != nil {
			return err
		}
	}
	return nil
}
