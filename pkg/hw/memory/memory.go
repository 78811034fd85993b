// Package memory provides the byte addressable memory abstraction the plugin is attached
// to: plain RAM and a bus decoding addresses into device windows.
package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/rs5lab/grayplug/pkg/utils"
)

var (
	ErrUnalignedAccess   = errors.New("unaligned access")
	ErrSegfault          = errors.New("segmentation fault")
	ErrOverlappingWindow = errors.New("overlapping memory window")
)

// Bytes per bus word
const WordSize = 4

// Word wide access to a byte addressable space
type Bus interface {
	Read(address uint32) (uint32, error)
	Write(value uint32, address uint32) error
}

// Implemented by bus targets that advance with the bus clock
type Ticker interface {
	Tick()
}

// A clocked peripheral. Addresses seen by a device are offsets from its window base
type Device interface {
	Bus
	Ticker
}

// A bus whose clock can be advanced by the master, used to busy wait on peripherals
type ClockedBus interface {
	Bus
	Ticker
}

func checkAlignment(address uint32) error {
	if address%WordSize != 0 {
		return utils.MakeError(ErrUnalignedAccess, "tried accessing address 0x%08X which is not aligned to the %v bytes word boundary", address, WordSize)
	}

	return nil
}

// Little endian RAM
type RAM struct {
	buffer []byte
}

// Creates a zeroed RAM of the given size in bytes
func NewRAM(size int) *RAM {
	return &RAM{
		buffer: make([]byte, size),
	}
}

// Size of the RAM in bytes
func (m *RAM) Size() int {
	return len(m.buffer)
}

func (m *RAM) slice(address uint32) ([]byte, error) {
	if err := checkAlignment(address); err != nil {
		return nil, err
	}

	if uint64(address)+WordSize > uint64(len(m.buffer)) {
		return nil, utils.MakeError(ErrSegfault, "address 0x%08X outside of %v bytes RAM", address, len(m.buffer))
	}

	return m.buffer[address : address+WordSize], nil
}

func (m *RAM) Read(address uint32) (uint32, error) {
	bytes, err := m.slice(address)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(bytes), nil
}

func (m *RAM) Write(value uint32, address uint32) error {
	bytes, err := m.slice(address)
	if err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(bytes, value)
	return nil
}

// Stores consecutive words starting at the given address
func LoadWords(bus Bus, address uint32, words []uint32) error {
	for i, word := range words {
		if err := bus.Write(word, address+uint32(i*WordSize)); err != nil {
			return err
		}
	}

	return nil
}

// Reads count consecutive words starting at the given address
func ReadWords(bus Bus, address uint32, count int) ([]uint32, error) {
	words := make([]uint32, count)

	for i := range words {
		word, err := bus.Read(address + uint32(i*WordSize))
		if err != nil {
			return nil, err
		}

		words[i] = word
	}

	return words, nil
}

type window struct {
	name   string
	base   uint32
	size   uint32
	target Bus
}

func (w *window) contains(address uint32) bool {
	return address >= w.base && address-w.base < w.size
}

func (w *window) overlaps(other *window) bool {
	return uint64(w.base) < uint64(other.base)+uint64(other.size) && uint64(other.base) < uint64(w.base)+uint64(w.size)
}

func (w *window) String() string {
	return fmt.Sprintf("%v [0x%08X, 0x%08X)", w.name, w.base, uint64(w.base)+uint64(w.size))
}

// A bus routing word accesses to the target whose window contains the address
type MappedBus struct {
	windows []*window
}

func NewMappedBus() *MappedBus {
	return &MappedBus{}
}

// Maps a target into [base, base + size). Windows must not overlap
func (b *MappedBus) Map(name string, base uint32, size uint32, target Bus) error {
	if err := checkAlignment(base); err != nil {
		return err
	}

	w := &window{name: name, base: base, size: size, target: target}

	for _, other := range b.windows {
		if w.overlaps(other) {
			return utils.MakeError(ErrOverlappingWindow, "%v overlaps %v", w, other)
		}
	}

	b.windows = append(b.windows, w)
	sort.Slice(b.windows, func(i, j int) bool { return b.windows[i].base < b.windows[j].base })

	return nil
}

func (b *MappedBus) find(address uint32) (*window, error) {
	if err := checkAlignment(address); err != nil {
		return nil, err
	}

	for _, w := range b.windows {
		if w.contains(address) {
			return w, nil
		}
	}

	return nil, utils.MakeError(ErrSegfault, "no target mapped at 0x%08X", address)
}

func (b *MappedBus) Read(address uint32) (uint32, error) {
	w, err := b.find(address)
	if err != nil {
		return 0, err
	}

	return w.target.Read(address - w.base)
}

func (b *MappedBus) Write(value uint32, address uint32) error {
	w, err := b.find(address)
	if err != nil {
		return err
	}

	return w.target.Write(value, address-w.base)
}

// Advances one clock cycle on every mapped target implementing Ticker
func (b *MappedBus) Tick() {
	for _, w := range b.windows {
		if ticker, ok := w.target.(Ticker); ok {
			ticker.Tick()
		}
	}
}

// Returns a human readable description of the address map
func (b *MappedBus) Windows() []string {
	descriptions := make([]string, len(b.windows))
	for i, w := range b.windows {
		descriptions[i] = w.String()
	}
	return descriptions
}
