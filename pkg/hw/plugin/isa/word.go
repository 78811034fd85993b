// Package isa encodes and decodes the R-type custom instructions that invoke the
// plugin directly from the core instruction stream.
//
// Field layout, most significant first:
//
//	funct7[31:25] | rs2[24:20] | rs1[19:15] | funct3[14:12] | rd[11:7] | opcode[6:0]
package isa

import (
	"errors"
	"fmt"

	"github.com/rs5lab/grayplug/pkg/utils"
)

var (
	// A register index or field value does not fit its bit width
	ErrOutOfRange = errors.New("value out of range")
	// A selector triple does not correspond to any implemented kind
	ErrUnknownEncoding = errors.New("unknown instruction encoding")
)

// Position and width of every R-type field
const (
	OpcodePosition = 0
	OpcodeBits     = 7
	RdPosition     = 7
	RdBits         = 5
	Funct3Position = 12
	Funct3Bits     = 3
	Rs1Position    = 15
	Rs1Bits        = 5
	Rs2Position    = 20
	Rs2Bits        = 5
	Funct7Position = 25
	Funct7Bits     = 7

	InstructionBits = 32

	// Highest register index addressable by rd, rs1 and rs2
	MaxRegister = 1<<RdBits - 1
)

// A 32-bit encoded instruction
type Word uint32

func (w Word) String() string {
	return utils.FormatUintHex(uint64(w), 8)
}

// All the fields extracted from an instruction word
type Fields struct {
	Opcode uint32
	Rd     uint32
	Funct3 uint32
	Rs1    uint32
	Rs2    uint32
	Funct7 uint32
}

// The (opcode, funct3, funct7) triple of the fields
func (f Fields) Selector() Selector {
	return Selector{Opcode: f.Opcode, Funct3: f.Funct3, Funct7: f.Funct7}
}

// Generates an ASCII frame representation of the fields, showing the bits of each one
func (f Fields) PrettyPrint(leftpad int) string {
	field := func(name string, value uint32, position, bits int) utils.BitFrameField {
		return utils.BitFrameField{
			Name:  name,
			Value: utils.FormatUintBinary(uint64(value), bits),
			Begin: position,
			Width: bits,
		}
	}

	return utils.BitFrame([]utils.BitFrameField{
		field("funct7", f.Funct7, Funct7Position, Funct7Bits),
		field("rs2", f.Rs2, Rs2Position, Rs2Bits),
		field("rs1", f.Rs1, Rs1Position, Rs1Bits),
		field("funct3", f.Funct3, Funct3Position, Funct3Bits),
		field("rd", f.Rd, RdPosition, RdBits),
		field("opcode", f.Opcode, OpcodePosition, OpcodeBits),
	}, leftpad)
}

func checkRegister(name string, value uint32) error {
	if !utils.FitsInBits(value, RdBits) {
		return utils.MakeError(ErrOutOfRange, "%v register index %v exceeds %v", name, value, MaxRegister)
	}

	return nil
}

// Returns the binary representation of an instruction of the given kind.
// Register indices above MaxRegister are rejected, never truncated
func Encode(kind Kind, rd, rs1, rs2 uint32) (Word, error) {
	descriptor := Kinds.Descriptor(kind)
	if descriptor == nil {
		return 0, utils.MakeError(ErrUnknownEncoding, "%v", kind)
	}

	for _, register := range []struct {
		name  string
		value uint32
	}{{"rd", rd}, {"rs1", rs1}, {"rs2", rs2}} {
		if err := checkRegister(register.name, register.value); err != nil {
			return 0, err
		}
	}

	var word uint32 = 0
	view := utils.CreateBitView(&word)

	view.Write(descriptor.Opcode, OpcodePosition, OpcodeBits)
	view.Write(rd, RdPosition, RdBits)
	view.Write(descriptor.Funct3, Funct3Position, Funct3Bits)
	view.Write(rs1, Rs1Position, Rs1Bits)
	view.Write(rs2, Rs2Position, Rs2Bits)
	view.Write(descriptor.Funct7, Funct7Position, Funct7Bits)

	return Word(word), nil
}

// Extracts all fields of an instruction word. Never fails, use Classify to check whether
// the fields correspond to an implemented kind
func Decode(word Word) Fields {
	raw := uint32(word)
	view := utils.CreateBitView(&raw)

	return Fields{
		Opcode: view.Read(OpcodePosition, OpcodeBits),
		Rd:     view.Read(RdPosition, RdBits),
		Funct3: view.Read(Funct3Position, Funct3Bits),
		Rs1:    view.Read(Rs1Position, Rs1Bits),
		Rs2:    view.Read(Rs2Position, Rs2Bits),
		Funct7: view.Read(Funct7Position, Funct7Bits),
	}
}

// Returns the kind whose selector matches the fields, or ErrUnknownEncoding
func Classify(fields Fields) (Kind, error) {
	descriptor, err := Kinds.Lookup(fields.Selector())
	if err != nil {
		return 0, err
	}

	return descriptor.Kind, nil
}

// A fully decoded custom instruction
type Instruction struct {
	Kind Kind
	Rd   uint32
	Rs1  uint32
	Rs2  uint32
}

// Builds an instruction, validating its register operands
func NewInstruction(kind Kind, rd, rs1, rs2 uint32) (*Instruction, error) {
	if _, err := Encode(kind, rd, rs1, rs2); err != nil {
		return nil, err
	}

	return &Instruction{Kind: kind, Rd: rd, Rs1: rs1, Rs2: rs2}, nil
}

// Decodes and classifies an instruction word
func DecodeInstruction(word Word) (*Instruction, error) {
	fields := Decode(word)

	kind, err := Classify(fields)
	if err != nil {
		return nil, utils.MakeError(err, "decoding %v", word)
	}

	return &Instruction{Kind: kind, Rd: fields.Rd, Rs1: fields.Rs1, Rs2: fields.Rs2}, nil
}

// Returns the binary representation of the instruction
func (i *Instruction) Encode() (Word, error) {
	return Encode(i.Kind, i.Rd, i.Rs1, i.Rs2)
}

func (i *Instruction) String() string {
	return fmt.Sprintf("%v %v, %v, %v", i.Kind, RegisterName(i.Rd), RegisterName(i.Rs1), RegisterName(i.Rs2))
}

// Returns the GNU assembler directive emitting the instruction, suitable for inline assembly
func (i *Instruction) Assembly() (string, error) {
	descriptor := Kinds.Descriptor(i.Kind)
	if descriptor == nil {
		return "", utils.MakeError(ErrUnknownEncoding, "no assembly for %v", i.Kind)
	}

	return descriptor.Insn(RegisterName(i.Rd), RegisterName(i.Rs1), RegisterName(i.Rs2)), nil
}
