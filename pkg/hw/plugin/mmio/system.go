package mmio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rs5lab/grayplug/pkg/hw/memory"
	"github.com/rs5lab/grayplug/pkg/utils"
)

func hex32(value uint32) string {
	return fmt.Sprintf("0x%08X", value)
}

type SystemConfig struct {
	// Plugin register window base
	BaseAddress uint32
	// RAM size in bytes, mapped at address 0
	RAMSize    int
	Plugin     Config
	SpinCycles int
	PollLimit  int
	Logger     *slog.Logger
}

// A RAM and a plugin attached to the same bus, driven by a software driver
type System struct {
	Bus       *memory.MappedBus
	RAM       *memory.RAM
	Plugin    *Accelerator
	Driver    *Driver
	Registers RegisterMap
}

func NewSystem(config SystemConfig) (*System, error) {
	registers, err := NewRegisterMap(config.BaseAddress)
	if err != nil {
		return nil, err
	}

	if config.Plugin.Logger == nil {
		config.Plugin.Logger = config.Logger
	}

	s := &System{
		Bus:       memory.NewMappedBus(),
		RAM:       memory.NewRAM(config.RAMSize),
		Plugin:    NewAccelerator(config.Plugin),
		Registers: registers,
	}

	if err := s.Bus.Map("ram", 0, uint32(config.RAMSize), s.RAM); err != nil {
		return nil, err
	}

	if err := s.Bus.Map("plugin", registers.Base(), WindowSize, s.Plugin); err != nil {
		return nil, err
	}

	s.Driver = NewDriver(s.Bus, DriverConfig{
		Registers:  registers,
		SpinCycles: config.SpinCycles,
		PollLimit:  config.PollLimit,
		Logger:     config.Logger,
	})

	return s, nil
}

// Page boundary result buffers are aligned to when placed automatically
const ResultAlignment = 0x1000

// Returns the first ResultAlignment boundary past an image of count pixels stored at imageAddress
func ResultAddressAfter(imageAddress uint32, count int) uint32 {
	end := uint64(imageAddress) + uint64(count)*memory.WordSize
	return uint32((end + ResultAlignment - 1) / ResultAlignment * ResultAlignment)
}

// Returns the RAM size needed to hold an image and its results
func RequiredRAM(imageAddress uint32, resultAddress uint32, count int) int {
	size := uint64(count) * memory.WordSize
	return int(max(uint64(imageAddress), uint64(resultAddress)) + size)
}

// Loads pixel words at imageAddress, converts them through the plugin and returns the
// result words stored at resultAddress
func (s *System) RunImage(ctx context.Context, pixels []uint32, imageAddress uint32, resultAddress uint32) ([]uint32, error) {
	size := uint64(len(pixels)) * memory.WordSize

	if uint64(imageAddress) < uint64(resultAddress)+size && uint64(resultAddress) < uint64(imageAddress)+size {
		return nil, utils.MakeError(memory.ErrOverlappingWindow, "image buffer at %v and result buffer at %v overlap (%v bytes each)", hex32(imageAddress), hex32(resultAddress), size)
	}

	if err := memory.LoadWords(s.Bus, imageAddress, pixels); err != nil {
		return nil, utils.MakeError(err, "loading image")
	}

	if err := s.Driver.ProcessRegion(ctx, imageAddress, resultAddress, len(pixels)); err != nil {
		return nil, err
	}

	return memory.ReadWords(s.Bus, resultAddress, len(pixels))
}
