// Package mmio models the plugin as a memory mapped peripheral and implements the
// write, trigger, poll and read handshake software follows to drive it.
package mmio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs5lab/grayplug/pkg/hw/memory"
	"github.com/rs5lab/grayplug/pkg/utils"
)

var (
	ErrNotReady          = errors.New("result not ready")
	ErrUnmappedRegister  = errors.New("unmapped register")
	ErrReadOnlyRegister  = errors.New("register is read only")
	ErrWriteOnlyRegister = errors.New("register is write only")
	ErrPollTimeout       = errors.New("timed out polling plugin status")
)

// Identifies a plugin register
type Register uint

const (
	// Operand written by software, captured on trigger
	Register_Input Register = iota
	// Second operand. Unused by the grayscale function
	Register_Aux
	// Output of the last completed operation
	Register_Result
	// Writing a non zero value triggers an operation, reading returns the status
	Register_Control

	// Total registers implemented
	TOTAL_REGISTERS
)

// Register offsets from the plugin base address
const (
	InputOffset   uint32 = 0x0
	AuxOffset     uint32 = 0x4
	ResultOffset  uint32 = 0x8
	ControlOffset uint32 = 0xC

	// Bytes decoded by the plugin window
	WindowSize uint32 = 0x10
)

// Values read from the CONTROL register
const (
	StatusBusy  uint32 = 0
	StatusReady uint32 = 1
)

// Default plugin base address of the RS5 platform
const DefaultBaseAddress uint32 = 0x10000000

type Access uint

const (
	Access_ReadWrite Access = iota
	Access_ReadOnly
	Access_WriteOnly
)

func (a Access) String() string {
	switch a {
	case Access_ReadOnly:
		return "R"
	case Access_WriteOnly:
		return "W"
	default:
		return "RW"
	}
}

// Contains implementation information of a plugin register
type RegisterDescriptor struct {
	Register    Register
	Name        string
	Offset      uint32
	Access      Access
	Description string
}

var registerDescriptors = [TOTAL_REGISTERS]RegisterDescriptor{
	{Register_Input, "INPUT", InputOffset, Access_WriteOnly, "operand (pixel word 0xRRGGBB00)"},
	{Register_Aux, "AUX", AuxOffset, Access_ReadWrite, "reserved second operand"},
	{Register_Result, "RESULT", ResultOffset, Access_ReadOnly, "result word (0xGGGGGG00)"},
	{Register_Control, "CONTROL", ControlOffset, Access_ReadWrite, "write: trigger, read: status"},
}

// Returns the descriptor of a register
func Describe(r Register) *RegisterDescriptor {
	if r >= TOTAL_REGISTERS {
		return nil
	}

	return &registerDescriptors[r]
}

// Returns the descriptors of all registers, sorted by offset
func AllRegisters() []RegisterDescriptor {
	return append([]RegisterDescriptor(nil), registerDescriptors[:]...)
}

func (r Register) String() string {
	if d := Describe(r); d != nil {
		return d.Name
	}

	return fmt.Sprintf("Register(%d)", uint(r))
}

// Returns the register decoded at the given offset from the plugin base
func RegisterAt(offset uint32) (Register, error) {
	if offset%memory.WordSize == 0 && offset < WindowSize {
		return Register(offset / memory.WordSize), nil
	}

	return 0, utils.MakeError(ErrUnmappedRegister, "offset 0x%X", offset)
}

// Absolute addresses of the plugin registers for a given base address
type RegisterMap struct {
	base uint32
}

// Creates the register map of a plugin mapped at base. The base must be word aligned and
// leave room for the whole register window
func NewRegisterMap(base uint32) (RegisterMap, error) {
	if base%memory.WordSize != 0 {
		return RegisterMap{}, utils.MakeError(memory.ErrUnalignedAccess, "plugin base address 0x%08X", base)
	}

	if uint64(base)+uint64(WindowSize) > 1<<32 {
		return RegisterMap{}, utils.MakeError(memory.ErrSegfault, "plugin window at 0x%08X exceeds the address space", base)
	}

	return RegisterMap{base: base}, nil
}

func (m RegisterMap) Base() uint32 {
	return m.base
}

// Returns the absolute address of a register
func (m RegisterMap) Address(r Register) (uint32, error) {
	d := Describe(r)
	if d == nil {
		return 0, utils.MakeError(ErrUnmappedRegister, "%v", r)
	}

	return m.base + d.Offset, nil
}

func (m RegisterMap) Input() uint32   { return m.base + InputOffset }
func (m RegisterMap) Aux() uint32     { return m.base + AuxOffset }
func (m RegisterMap) Result() uint32  { return m.base + ResultOffset }
func (m RegisterMap) Control() uint32 { return m.base + ControlOffset }

// Returns a human readable description of the register window
func (m RegisterMap) Documentation(leftpad int) string {
	pad := strings.Repeat(" ", leftpad)
	builder := strings.Builder{}

	builder.WriteString(fmt.Sprintf("%vPlugin registers at %v:\n\n", pad, hex32(m.Base())))

	for _, d := range AllRegisters() {
		builder.WriteString(fmt.Sprintf("%v - %-8v %v (+0x%X) %-2v %v\n", pad, d.Name, hex32(m.base+d.Offset), d.Offset, d.Access, d.Description))
	}

	builder.WriteString(fmt.Sprintf("\n%vCONTROL reads %v while busy and %v once RESULT is valid\n", pad, StatusBusy, StatusReady))
	return builder.String()
}

// Like Documentation(), but with zero leftpad
func (m RegisterMap) DocString() string {
	return m.Documentation(0)
}
