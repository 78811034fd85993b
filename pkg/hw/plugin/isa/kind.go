package isa

import (
	"fmt"
	"strings"

	"github.com/rs5lab/grayplug/pkg/utils"
)

// Identifies a custom instruction implemented by the plugin
type Kind uint

const (
	// Adds two registers through the plugin datapath (ADD_PLUGIN)
	Kind_PixelAccumulate Kind = iota
	// Computes the n-th term of the Fibonacci sequence (FIB_PLUGIN)
	Kind_SequenceGenerator

	// Total kinds implemented
	TOTAL_KINDS
)

// Fixed encoding and documentation of an operation kind
type KindDescriptor struct {
	Kind        Kind
	Mnemonic    string
	Opcode      uint32
	Funct3      uint32
	Funct7      uint32
	Description string
}

// The (opcode, funct3, funct7) triple identifying the kind
func (d *KindDescriptor) Selector() Selector {
	return Selector{Opcode: d.Opcode, Funct3: d.Funct3, Funct7: d.Funct7}
}

func (d *KindDescriptor) String() string {
	return fmt.Sprintf("%v (opcode: %v, funct3: %v, funct7: %v)",
		d.Mnemonic,
		utils.FormatUintHex(uint64(d.Opcode), 2),
		utils.FormatUintBinary(uint64(d.Funct3), Funct3Bits),
		utils.FormatUintBinary(uint64(d.Funct7), Funct7Bits))
}

// Returns the GNU assembler .insn directive encoding this kind with the given operands.
// Operands can be register names or inline assembly placeholders such as %0
func (d *KindDescriptor) Insn(rd, rs1, rs2 string) string {
	return fmt.Sprintf(".insn r %v, %v, %v, %v, %v, %v",
		utils.FormatUintHex(uint64(d.Opcode), 2),
		utils.FormatUintHex(uint64(d.Funct3), 1),
		utils.FormatUintHex(uint64(d.Funct7), 2),
		rd, rs1, rs2)
}

// Fixed function selector fields of an instruction word
type Selector struct {
	Opcode uint32
	Funct3 uint32
	Funct7 uint32
}

// Returns information about the implemented kinds
type KindsDescriptor struct {
	descriptors []*KindDescriptor
	bySelector  map[Selector]*KindDescriptor
	byMnemonic  map[string]*KindDescriptor
}

// Initializes a kinds descriptor. Panics if a kind is missing, if a selector field does not
// fit its bit width, or if two kinds share the same (opcode, funct3, funct7) triple
func NewKindsDescriptor(descriptors []*KindDescriptor) KindsDescriptor {
	if len(descriptors) != int(TOTAL_KINDS) {
		panic(fmt.Sprintf("expected %v kind descriptors, got %v. Make sure all kinds are listed in the NewKindsDescriptor() call", TOTAL_KINDS, len(descriptors)))
	}

	d := KindsDescriptor{
		descriptors: make([]*KindDescriptor, TOTAL_KINDS),
		bySelector:  make(map[Selector]*KindDescriptor, len(descriptors)),
		byMnemonic:  make(map[string]*KindDescriptor, len(descriptors)),
	}

	for _, descriptor := range descriptors {
		if descriptor.Kind >= TOTAL_KINDS || d.descriptors[descriptor.Kind] != nil {
			panic(fmt.Sprintf("invalid or duplicated kind %v (%v)", uint(descriptor.Kind), descriptor.Mnemonic))
		}

		if !utils.FitsInBits(descriptor.Opcode, OpcodeBits) || !utils.FitsInBits(descriptor.Funct3, Funct3Bits) || !utils.FitsInBits(descriptor.Funct7, Funct7Bits) {
			panic(fmt.Sprintf("selector of %v does not fit the R-type field widths", descriptor))
		}

		if other, collides := d.bySelector[descriptor.Selector()]; collides {
			panic(fmt.Sprintf("kinds %v and %v share the same encoding", other, descriptor))
		}

		d.descriptors[descriptor.Kind] = descriptor
		d.bySelector[descriptor.Selector()] = descriptor
		d.byMnemonic[strings.ToUpper(descriptor.Mnemonic)] = descriptor
	}

	return d
}

// Returns the descriptor of a kind, nil if the kind is not implemented
func (d *KindsDescriptor) Descriptor(kind Kind) *KindDescriptor {
	if kind >= TOTAL_KINDS {
		return nil
	}

	return d.descriptors[kind]
}

// Returns the descriptors of all implemented kinds, sorted by kind
func (d *KindsDescriptor) All() []*KindDescriptor {
	return append([]*KindDescriptor(nil), d.descriptors...)
}

// Returns the kind encoded by the given selector fields
func (d *KindsDescriptor) Lookup(selector Selector) (*KindDescriptor, error) {
	if descriptor, ok := d.bySelector[selector]; ok {
		return descriptor, nil
	}

	return nil, utils.MakeError(ErrUnknownEncoding, "opcode %v, funct3 %v, funct7 %v",
		utils.FormatUintHex(uint64(selector.Opcode), 2),
		utils.FormatUintBinary(uint64(selector.Funct3), Funct3Bits),
		utils.FormatUintBinary(uint64(selector.Funct7), Funct7Bits))
}

// Returns a human readable description of the custom instructions
func (d *KindsDescriptor) Documentation(leftpad int) string {
	pad := strings.Repeat(" ", leftpad)
	builder := strings.Builder{}

	builder.WriteString(pad)
	builder.WriteString("Custom R-type instructions (funct7 | rs2 | rs1 | funct3 | rd | opcode):\n\n")

	for _, descriptor := range d.descriptors {
		builder.WriteString(fmt.Sprintf("%v - %v\n", pad, descriptor))
		builder.WriteString(fmt.Sprintf("%v     %v\n", pad, descriptor.Description))
		builder.WriteString(fmt.Sprintf("%v     %v\n", pad, descriptor.Insn("rd", "rs1", "rs2")))
	}

	return builder.String()
}

// Like Documentation(), but with zero leftpad
func (d *KindsDescriptor) DocString() string {
	return d.Documentation(0)
}

// Returns the kind corresponding to the given mnemonic (case insensitive)
func (d *KindsDescriptor) ParseKind(mnemonic string) (Kind, error) {
	if descriptor, ok := d.byMnemonic[strings.ToUpper(strings.TrimSpace(mnemonic))]; ok {
		return descriptor.Kind, nil
	}

	return 0, utils.MakeError(ErrUnknownEncoding, "unknown mnemonic '%v'", mnemonic)
}

var Kinds KindsDescriptor = NewKindsDescriptor([]*KindDescriptor{
	{
		Kind:        Kind_PixelAccumulate,
		Mnemonic:    "ADD_PLUGIN",
		Opcode:      0x0B, // custom-0
		Funct3:      0b000,
		Funct7:      0b0000000,
		Description: "Adds rs1 and rs2 through the plugin datapath, writing the biased sum into rd",
	},
	{
		Kind:        Kind_SequenceGenerator,
		Mnemonic:    "FIB_PLUGIN",
		Opcode:      0x2B, // custom-1
		Funct3:      0b001,
		Funct7:      0b0000000,
		Description: "Writes the rs1-th Fibonacci number into rd. rs2 is ignored",
	},
})

// Returns the mnemonic of the kind
func (k Kind) String() string {
	if descriptor := Kinds.Descriptor(k); descriptor != nil {
		return descriptor.Mnemonic
	}

	return fmt.Sprintf("Kind(%d)", uint(k))
}

// Same as Kinds.ParseKind()
func ParseKind(mnemonic string) (Kind, error) {
	return Kinds.ParseKind(mnemonic)
}
