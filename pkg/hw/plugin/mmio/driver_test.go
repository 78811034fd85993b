package mmio

import (
	"context"
	"testing"

	"github.com/rs5lab/grayplug/pkg/hw/memory"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/pixel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSystem(t *testing.T, settle, spin, pollLimit int) *System {
	t.Helper()

	system, err := NewSystem(SystemConfig{
		BaseAddress: DefaultBaseAddress,
		RAMSize:     0x4000,
		Plugin:      Config{SettleCycles: settle, Strict: true},
		SpinCycles:  spin,
		PollLimit:   pollLimit,
	})
	require.NoError(t, err)

	return system
}

func TestDriver_Process(t *testing.T) {
	tests := []struct {
		name   string
		settle int
		spin   int
	}{
		{"immediate", 0, 0},
		{"spin covers settle", 10, 10},
		{"polling covers settle", 10, 0},
		{"spin and polling", 10, 4},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			system := newTestSystem(t, test.settle, test.spin, 0)

			result, err := system.Driver.Process(pixel.Pack(255, 255, 255))
			require.NoError(t, err)
			assert.Equal(t, pixel.Result(0xBFBFBF00), result)

			stats := system.Driver.Stats()
			assert.Equal(t, 1, stats.Invocations)
			assert.Equal(t, test.spin, stats.Spins)
			assert.Equal(t, max(test.settle-test.spin, 0)+1, stats.Polls)
			assert.Zero(t, system.Plugin.Stats().Violations)
		})
	}
}

func TestDriver_PollTimeout(t *testing.T) {
	system := newTestSystem(t, 10, 0, 5)

	_, err := system.Driver.Process(pixel.Pack(1, 2, 3))
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.Equal(t, 5, system.Driver.Stats().Polls)
	assert.Equal(t, State_Triggered, system.Plugin.State())
}

func TestDriver_ProcessStream(t *testing.T) {
	system := newTestSystem(t, 3, 1, 100)

	pixels := []pixel.Word{0xFF000000, 0x00FF0000, 0x0000FF00, 0xFFFFFF00, 0x00000000, 0x808080FF}

	results, err := system.Driver.ProcessStream(context.Background(), pixels)
	require.NoError(t, err)

	assert.Equal(t, []pixel.Result{0x3F3F3F00, 0x3F3F3F00, 0x3F3F3F00, 0xBFBFBF00, 0x00000000, 0x60606000}, results)
	assert.Equal(t, len(pixels), system.Plugin.Stats().Triggers)
}

func TestDriver_ProcessStreamCancelled(t *testing.T) {
	system := newTestSystem(t, 0, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := system.Driver.ProcessStream(ctx, []pixel.Word{1, 2, 3})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestDriver_Add(t *testing.T) {
	system, err := NewSystem(SystemConfig{
		BaseAddress: DefaultBaseAddress,
		RAMSize:     0x100,
		Plugin:      Config{Function: Adder{}, SettleCycles: 2, Strict: true},
		PollLimit:   1000,
	})
	require.NoError(t, err)

	for _, operands := range [][3]uint32{{5, 7, 12}, {100, 200, 300}, {0, 42, 42}} {
		sum, err := system.Driver.Add(operands[0], operands[1])
		require.NoError(t, err)
		assert.Equal(t, operands[2], sum)
	}
}

func TestSystem_RunImage(t *testing.T) {
	system := newTestSystem(t, 10, 10, 0)

	pixels := make([]uint32, 100)
	expected := make([]uint32, len(pixels))
	for i := range pixels {
		p := pixel.Pack(uint8(i), uint8(2*i), uint8(255-i))
		pixels[i] = uint32(p)
		expected[i] = uint32(p.Grayscale())
	}

	resultAddress := ResultAddressAfter(0x1000, len(pixels))
	assert.Equal(t, uint32(0x2000), resultAddress)

	results, err := system.RunImage(context.Background(), pixels, 0x1000, resultAddress)
	require.NoError(t, err)
	assert.Equal(t, expected, results)

	t.Run("source is preserved", func(t *testing.T) {
		source, err := memory.ReadWords(system.RAM, 0x1000, len(pixels))
		require.NoError(t, err)
		assert.Equal(t, pixels, source)
	})

	t.Run("overlapping buffers", func(t *testing.T) {
		_, err := system.RunImage(context.Background(), pixels, 0x1000, 0x1010)
		assert.ErrorIs(t, err, memory.ErrOverlappingWindow)
	})

	t.Run("buffer outside RAM", func(t *testing.T) {
		_, err := system.RunImage(context.Background(), pixels, 0x1000, 0x3FF0)
		assert.ErrorIs(t, err, memory.ErrSegfault)
	})
}

func TestNewSystem_PluginOverlapsRAM(t *testing.T) {
	_, err := NewSystem(SystemConfig{BaseAddress: 0x100, RAMSize: 0x1000})
	assert.ErrorIs(t, err, memory.ErrOverlappingWindow)
}

func TestRequiredRAM(t *testing.T) {
	assert.Equal(t, 0x2000+400, RequiredRAM(0x1000, 0x2000, 100))
	assert.Equal(t, uint32(0x1000), ResultAddressAfter(0, 1024))
	assert.Equal(t, uint32(0x2000), ResultAddressAfter(0, 1025))
}
