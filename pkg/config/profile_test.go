package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rauc-lab/being/pkg/drive"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "device.ini")
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t, `
[Motion]
ProfileVelocity     = 50000
ProfileAcceleration = 100000
ProfileDeceleration = 120000

[Homing]
CurrentLimit = 800
`)
	profile, err := LoadProfile(path)
	require.Nil(t, err)

	assert.Equal(t, uint32(50000), profile.Motion.ProfileVelocity)
	assert.Equal(t, uint32(100000), profile.Motion.ProfileAcceleration)
	assert.Equal(t, uint32(120000), profile.Motion.ProfileDeceleration)
	assert.Equal(t, int16(800), profile.Homing.CurrentLimit)
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.ini"))
	assert.NotNil(t, err)
}

func TestProfileApplyWritesMotionRegisters(t *testing.T) {
	path := writeProfile(t, `
[Motion]
ProfileVelocity     = 50000
ProfileAcceleration = 100000
`)
	profile, err := LoadProfile(path)
	require.Nil(t, err)

	sim := drive.NewSim(0, 100000)
	d := drive.NewDrive(sim, 1, "MCLM3002")
	require.Nil(t, profile.Apply(d))

	velocity, err := d.ReadUint32(drive.ProfileVelocity, 0)
	require.Nil(t, err)
	assert.Equal(t, uint32(50000), velocity)

	acceleration, err := d.ReadUint32(drive.ProfileAcceleration, 0)
	require.Nil(t, err)
	assert.Equal(t, uint32(100000), acceleration)

	// Unset values are not written.
	deceleration, err := d.ReadUint32(drive.ProfileDeceleration, 0)
	require.Nil(t, err)
	assert.Equal(t, uint32(0), deceleration)
}
