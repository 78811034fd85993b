package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDevice struct {
	RAM
	ticks int
}

func (d *countingDevice) Tick() {
	d.ticks++
}

func TestRAM_ReadWrite(t *testing.T) {
	ram := NewRAM(1024)

	t.Run("write and read", func(t *testing.T) {
		require.NoError(t, ram.Write(0xDEADBEEF, 0x100))

		value, err := ram.Read(0x100)
		require.NoError(t, err)
		assert.Equal(t, uint32(0xDEADBEEF), value)
	})

	t.Run("little endian", func(t *testing.T) {
		require.NoError(t, ram.Write(0x04030201, 0x200))
		assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, ram.buffer[0x200:0x204])
	})

	t.Run("out of bounds", func(t *testing.T) {
		_, err := ram.Read(1024)
		assert.ErrorIs(t, err, ErrSegfault)

		assert.ErrorIs(t, ram.Write(1, 0xFFFFFFFC), ErrSegfault)
	})

	t.Run("unaligned", func(t *testing.T) {
		_, err := ram.Read(0x102)
		assert.ErrorIs(t, err, ErrUnalignedAccess)
	})
}

func TestLoadReadWords(t *testing.T) {
	ram := NewRAM(64)

	require.NoError(t, LoadWords(ram, 8, []uint32{1, 2, 3}))

	words, err := ReadWords(ram, 8, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3}, words)

	assert.ErrorIs(t, LoadWords(ram, 56, []uint32{1, 2, 3}), ErrSegfault)
}

func TestMappedBus(t *testing.T) {
	bus := NewMappedBus()
	ram := NewRAM(0x1000)
	device := &countingDevice{RAM: *NewRAM(16)}

	require.NoError(t, bus.Map("ram", 0, 0x1000, ram))
	require.NoError(t, bus.Map("plugin", 0x10000000, 16, device))

	t.Run("routes by window", func(t *testing.T) {
		require.NoError(t, bus.Write(0xCAFE, 0x10000008))
		require.NoError(t, bus.Write(0xBEEF, 0x8))

		value, err := device.Read(0x8)
		require.NoError(t, err)
		assert.Equal(t, uint32(0xCAFE), value)

		value, err = bus.Read(0x8)
		require.NoError(t, err)
		assert.Equal(t, uint32(0xBEEF), value)
	})

	t.Run("unmapped", func(t *testing.T) {
		_, err := bus.Read(0x10000010)
		assert.ErrorIs(t, err, ErrSegfault)

		_, err = bus.Read(0x10000001)
		assert.ErrorIs(t, err, ErrUnalignedAccess)
	})

	t.Run("overlap", func(t *testing.T) {
		assert.ErrorIs(t, bus.Map("shadow", 0xFFC, 8, NewRAM(8)), ErrOverlappingWindow)
		assert.ErrorIs(t, bus.Map("plugin2", 0x1000000C, 4, NewRAM(4)), ErrOverlappingWindow)
	})

	t.Run("tick", func(t *testing.T) {
		bus.Tick()
		bus.Tick()
		assert.Equal(t, 2, device.ticks)
	})

	assert.Equal(t, []string{
		"ram [0x00000000, 0x00001000)",
		"plugin [0x10000000, 0x10000010)",
	}, bus.Windows())
}
