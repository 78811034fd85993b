package mmio

import (
	"context"
	"log/slog"

	"github.com/rs5lab/grayplug/pkg/hw/memory"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/pixel"
	"github.com/rs5lab/grayplug/pkg/logging"
	"github.com/rs5lab/grayplug/pkg/utils"
)

type DriverConfig struct {
	Registers RegisterMap
	// Bus cycles spent busy waiting after each trigger before polling CONTROL
	SpinCycles int
	// Maximum CONTROL reads per operation. Zero polls until ready
	PollLimit int
	Logger    *slog.Logger
}

// Counters of the driver bus activity
type DriverStats struct {
	Invocations int
	Spins       int
	Polls       int
}

// Software side of the handshake, issuing the same access sequence as the generated
// bare metal program: write INPUT, write CONTROL, wait, read RESULT
type Driver struct {
	bus    memory.ClockedBus
	config DriverConfig
	logger *slog.Logger
	stats  DriverStats
}

func NewDriver(bus memory.ClockedBus, config DriverConfig) *Driver {
	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Driver{
		bus:    bus,
		config: config,
		logger: logger.With("component", "driver"),
	}
}

func (d *Driver) Stats() DriverStats {
	return d.stats
}

func (d *Driver) wait() error {
	for i := 0; i < d.config.SpinCycles; i++ {
		d.bus.Tick()
		d.stats.Spins++
	}

	for polls := 1; ; polls++ {
		status, err := d.bus.Read(d.config.Registers.Control())
		if err != nil {
			return err
		}
		d.stats.Polls++

		if status&StatusReady != 0 {
			return nil
		}

		if d.config.PollLimit > 0 && polls >= d.config.PollLimit {
			return utils.MakeError(ErrPollTimeout, "plugin still busy after %v polls", polls)
		}

		d.bus.Tick()
	}
}

// Runs one operation on the plugin and returns its result. AUX is left untouched when
// aux is nil
func (d *Driver) Invoke(input uint32, aux *uint32) (uint32, error) {
	registers := d.config.Registers

	if err := d.bus.Write(input, registers.Input()); err != nil {
		return 0, err
	}

	if aux != nil {
		if err := d.bus.Write(*aux, registers.Aux()); err != nil {
			return 0, err
		}
	}

	if err := d.bus.Write(1, registers.Control()); err != nil {
		return 0, err
	}

	d.stats.Invocations++

	if err := d.wait(); err != nil {
		return 0, err
	}

	return d.bus.Read(registers.Result())
}

// Converts a single pixel through the plugin
func (d *Driver) Process(p pixel.Word) (pixel.Result, error) {
	result, err := d.Invoke(uint32(p), nil)
	return pixel.Result(result), err
}

// Adds two values with a plugin configured with the Adder function
func (d *Driver) Add(a, b uint32) (uint32, error) {
	return d.Invoke(a, &b)
}

// Converts pixels in order, one plugin operation each. The context is checked between pixels
func (d *Driver) ProcessStream(ctx context.Context, pixels []pixel.Word) ([]pixel.Result, error) {
	results := make([]pixel.Result, len(pixels))

	for i, p := range pixels {
		if err := ctx.Err(); err != nil {
			return results[:i], err
		}

		result, err := d.Process(p)
		if err != nil {
			return results[:i], utils.MakeError(err, "pixel %v", i)
		}

		results[i] = result
	}

	return results, nil
}

// Converts count pixel words stored at source, writing the result words at destination.
// Mirrors the main loop of the generated program
func (d *Driver) ProcessRegion(ctx context.Context, source uint32, destination uint32, count int) error {
	d.logger.Debug("processing region", "source", hex32(source), "destination", hex32(destination), "pixels", count)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		offset := uint32(i * memory.WordSize)

		word, err := d.bus.Read(source + offset)
		if err != nil {
			return utils.MakeError(err, "reading pixel %v", i)
		}

		result, err := d.Invoke(word, nil)
		if err != nil {
			return utils.MakeError(err, "pixel %v", i)
		}

		if err := d.bus.Write(result, destination+offset); err != nil {
			return utils.MakeError(err, "writing result %v", i)
		}
	}

	return nil
}
