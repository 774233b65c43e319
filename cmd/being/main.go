package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/rauc-lab/being/pkg/block"
	"github.com/rauc-lab/being/pkg/can"
	"github.com/rauc-lab/being/pkg/clock"
	"github.com/rauc-lab/being/pkg/config"
	"github.com/rauc-lab/being/pkg/cycle"
	"github.com/rauc-lab/being/pkg/drive"
	"github.com/rauc-lab/being/pkg/motor"
	"github.com/rauc-lab/being/pkg/pacemaker"
)

const defaultConfig = "being.yml"

// simTicker advances all simulated drives by one interval per tick.
type simTicker struct {
	block.Base
	sims []*drive.Sim
	clk  *clock.Clock
}

func newSimTicker(sims []*drive.Sim, clk *clock.Clock) *simTicker {
	t := &simTicker{sims: sims, clk: clk}
	t.Init("sim-ticker", t)
	return t
}

func (t *simTicker) Update() {
	for _, sim := range t.sims {
		sim.Step(t.clk.Interval())
	}
}

func run() error {
	configPath := flag.String("c", defaultConfig, "configuration file")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// Resources are released in reverse acquisition order on shutdown.
	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	bus, err := can.NewBus(cfg.Bus.Interface, cfg.Bus.Channel)
	if err != nil {
		return err
	}
	if err := bus.Connect(); err != nil {
		return err
	}
	cleanups = append(cleanups, func() { _ = bus.Disconnect() })

	busSync := drive.NewBusSync(bus)
	clk := clock.New(cfg.Cycle.Interval)

	emcyDispatcher := drive.NewEmergencyDispatcher()
	if err := bus.Subscribe(emcyDispatcher); err != nil {
		return err
	}

	pm := pacemaker.New(busSync, cfg.Cycle.PacemakerWindow)
	pm.Start()
	cleanups = append(cleanups, pm.Stop)

	var motors []motor.Interface
	var sims []*drive.Sim

	for _, mc := range cfg.Motors {
		if mc.Device == "Dummy" {
			motors = append(motors, motor.NewDummy(mc.Name, mc.Length, mc.MaxSpeed, mc.MaxAcc, clk))
			continue
		}
		if !mc.Simulated {
			// The SDO transport of a real drive comes from the CANopen
			// stack below us, inject it as a drive.Connection here.
			return fmt.Errorf("motor %q : only simulated drives are wired in this binary", mc.Name)
		}
		sim := drive.NewSim(0, 0)
		sims = append(sims, sim)
		d := drive.NewDrive(sim, mc.NodeId, mc.Device)
		emcyDispatcher.Register(d)
		if err := d.SetNMTState(drive.NMTOperational); err != nil {
			return err
		}
		if mc.Profile != "" {
			profile, err := config.LoadProfile(mc.Profile)
			if err != nil {
				return err
			}
			if err := profile.Apply(d); err != nil {
				return err
			}
		}
		controller, err := motor.NewController(mc.Device, d, motor.Params{
			Length:    mc.Length,
			Direction: mc.Direction,
			MaxSpeed:  mc.MaxSpeed,
			MaxAcc:    mc.MaxAcc,
		})
		if err != nil {
			return err
		}
		// The simulated end stops span the configured length in the
		// controller's own device unit scaling.
		sim.SetTravel(0, float64(controller.SiToDevice(mc.Length)))
		motors = append(motors, motor.NewMotor(mc.Name, controller))
	}

	loop := cycle.New(clk, busSync, pm)
	starting := make([]block.Block, 0, len(motors)+1)
	for _, m := range motors {
		starting = append(starting, m)
	}
	if len(sims) > 0 {
		starting = append(starting, newSimTicker(sims, clk))
	}
	loop.SetBlocks(starting...)

	for _, m := range motors {
		m.Enable()
		m.Home()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	loop.Run(ctx)
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
