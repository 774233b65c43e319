package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullConfig(t *testing.T) {
	cfg, err := Parse([]byte(`
bus:
  interface: virtual
  channel: vcan0
cycle:
  interval: 20ms
  pacemaker_window: 100ms
motors:
  - name: left
    device: MCLM3002
    node_id: 1
    simulated: true
    length: 0.1
    direction: -1
    max_speed: 0.3
    max_acc: 0.8
  - name: head
    device: Dummy
    length: 0.2
`))
	require.Nil(t, err)

	assert.Equal(t, "virtual", cfg.Bus.Interface)
	assert.Equal(t, "vcan0", cfg.Bus.Channel)
	assert.Equal(t, 20*time.Millisecond, cfg.Cycle.Interval)
	assert.Equal(t, 100*time.Millisecond, cfg.Cycle.PacemakerWindow)

	require.Len(t, cfg.Motors, 2)
	left := cfg.Motors[0]
	assert.Equal(t, "left", left.Name)
	assert.Equal(t, uint8(1), left.NodeId)
	assert.True(t, left.Simulated)
	assert.Equal(t, -1, left.Direction)
	assert.Equal(t, 0.3, left.MaxSpeed)
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
motors:
  - name: head
    device: Dummy
    length: 0.2
`))
	require.Nil(t, err)

	assert.Equal(t, "socketcan", cfg.Bus.Interface)
	assert.Equal(t, "can0", cfg.Bus.Channel)
	assert.Equal(t, DefaultInterval, cfg.Cycle.Interval)
	assert.Equal(t, DefaultPacemakerFactor*DefaultInterval, cfg.Cycle.PacemakerWindow)
	assert.Equal(t, 0.5, cfg.Motors[0].MaxSpeed)
	assert.Equal(t, 1.0, cfg.Motors[0].MaxAcc)
}

func TestParseRejectsNarrowPacemakerWindow(t *testing.T) {
	_, err := Parse([]byte(`
cycle:
  interval: 10ms
  pacemaker_window: 10ms
`))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "pacemaker window")
}

func TestParseRejectsDuplicateMotorNames(t *testing.T) {
	_, err := Parse([]byte(`
motors:
  - name: axis
    device: Dummy
  - name: axis
    device: Dummy
`))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "duplicate motor names")
}

func TestParseRejectsMissingDevice(t *testing.T) {
	_, err := Parse([]byte(`
motors:
  - name: axis
`))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "device")
}

func TestParseRejectsMissingNodeId(t *testing.T) {
	_, err := Parse([]byte(`
motors:
  - name: axis
    device: MCLM3002
`))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "node id")
}

func TestParseRejectsDuplicateNodeIds(t *testing.T) {
	_, err := Parse([]byte(`
motors:
  - name: left
    device: MCLM3002
    node_id: 1
  - name: right
    device: MCLM3002
    node_id: 1
`))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "node id 1 used twice")
}

func TestParseInvalidYaml(t *testing.T) {
	_, err := Parse([]byte("motors: [not closed"))
	assert.NotNil(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "being.yml")
	content := `
bus:
  interface: virtual
motors:
  - name: head
    device: Dummy
`
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.Nil(t, err)
	assert.Equal(t, "virtual", cfg.Bus.Interface)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.NotNil(t, err)
}
