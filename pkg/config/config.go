// Package config loads the application configuration (YAML) and the
// per vendor device profiles (INI register tables).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/thoas/go-funk"
	"gopkg.in/yaml.v3"
)

// Config is the top level application configuration.
type Config struct {
	Bus    BusConfig     `yaml:"bus"`
	Cycle  CycleConfig   `yaml:"cycle"`
	Motors []MotorConfig `yaml:"motors"`
}

type BusConfig struct {
	// Interface selects the CAN backend, socketcan or virtual.
	Interface string `yaml:"interface"`
	Channel   string `yaml:"channel"`
}

type CycleConfig struct {
	Interval time.Duration `yaml:"interval"`
	// PacemakerWindow is the watchdog deadline, must exceed Interval.
	PacemakerWindow time.Duration `yaml:"pacemaker_window"`
}

type MotorConfig struct {
	Name      string  `yaml:"name"`
	Device    string  `yaml:"device"` // device name, selects the controller, "Dummy" for no hardware
	NodeId    uint8   `yaml:"node_id"`
	Simulated bool    `yaml:"simulated"`
	Length    float64 `yaml:"length"`
	Direction int     `yaml:"direction"`
	MaxSpeed  float64 `yaml:"max_speed"`
	MaxAcc    float64 `yaml:"max_acc"`
	Profile   string  `yaml:"profile"` // optional INI device profile path
}

const (
	DefaultInterval        = 10 * time.Millisecond
	DefaultPacemakerFactor = 3
)

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config : %w", err)
	}
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Bus.Interface == "" {
		c.Bus.Interface = "socketcan"
	}
	if c.Bus.Channel == "" {
		c.Bus.Channel = "can0"
	}
	if c.Cycle.Interval == 0 {
		c.Cycle.Interval = DefaultInterval
	}
	if c.Cycle.PacemakerWindow == 0 {
		c.Cycle.PacemakerWindow = DefaultPacemakerFactor * c.Cycle.Interval
	}
	for i := range c.Motors {
		if c.Motors[i].MaxSpeed == 0 {
			c.Motors[i].MaxSpeed = 0.5
		}
		if c.Motors[i].MaxAcc == 0 {
			c.Motors[i].MaxAcc = 1.0
		}
	}
}

func (c *Config) validate() error {
	if c.Cycle.PacemakerWindow <= c.Cycle.Interval {
		return fmt.Errorf("pacemaker window %v must exceed the cycle interval %v",
			c.Cycle.PacemakerWindow, c.Cycle.Interval)
	}
	names := funk.Map(c.Motors, func(m MotorConfig) string { return m.Name }).([]string)
	if len(names) != len(funk.UniqString(names)) {
		return fmt.Errorf("duplicate motor names : %v", names)
	}
	for _, m := range c.Motors {
		if m.Name == "" {
			return fmt.Errorf("motor without a name")
		}
		if m.Device == "" {
			return fmt.Errorf("motor %q without a device name", m.Name)
		}
		if m.Device != "Dummy" && m.NodeId == 0 {
			return fmt.Errorf("motor %q needs a node id", m.Name)
		}
	}
	nodeIds := []int{}
	for _, m := range c.Motors {
		if m.Device == "Dummy" {
			continue
		}
		if funk.ContainsInt(nodeIds, int(m.NodeId)) {
			return fmt.Errorf("node id %d used twice", m.NodeId)
		}
		nodeIds = append(nodeIds, int(m.NodeId))
	}
	return nil
}
