package isa

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_KnownWords(t *testing.T) {
	tests := []struct {
		kind          Kind
		rd, rs1, rs2  uint32
		expected      Word
		expectedAsStr string
	}{
		{Kind_PixelAccumulate, 3, 1, 2, 0x0020818B, "0x0020818B"},
		{Kind_PixelAccumulate, 7, 5, 6, 0x0062838B, "0x0062838B"},
		{Kind_SequenceGenerator, 3, 5, 0, 0x000291AB, "0x000291AB"},
	}

	for _, test := range tests {
		t.Run(test.expectedAsStr, func(t *testing.T) {
			word, err := Encode(test.kind, test.rd, test.rs1, test.rs2)
			require.NoError(t, err)
			assert.Equal(t, test.expected, word)
			assert.Equal(t, test.expectedAsStr, word.String())
		})
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, descriptor := range Kinds.All() {
		t.Run(descriptor.Mnemonic, func(t *testing.T) {
			for rd := uint32(0); rd <= MaxRegister; rd++ {
				for rs1 := uint32(0); rs1 <= MaxRegister; rs1++ {
					for rs2 := uint32(0); rs2 <= MaxRegister; rs2++ {
						word, err := Encode(descriptor.Kind, rd, rs1, rs2)
						require.NoError(t, err)

						fields := Decode(word)
						if fields.Rd != rd || fields.Rs1 != rs1 || fields.Rs2 != rs2 {
							t.Fatalf("%v: decoded %+v from (%v, %v, %v)", word, fields, rd, rs1, rs2)
						}

						kind, err := Classify(fields)
						require.NoError(t, err)
						require.Equal(t, descriptor.Kind, kind)
					}
				}
			}
		})
	}
}

func TestEncode_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name         string
		rd, rs1, rs2 uint32
	}{
		{"rd", 32, 0, 0},
		{"rs1", 0, 32, 0},
		{"rs2", 0, 0, 32},
		{"huge", 0xFFFFFFFF, 0, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for _, descriptor := range Kinds.All() {
				_, err := Encode(descriptor.Kind, test.rd, test.rs1, test.rs2)
				assert.ErrorIs(t, err, ErrOutOfRange)
			}
		})
	}
}

func TestEncode_UnknownKind(t *testing.T) {
	_, err := Encode(TOTAL_KINDS, 0, 0, 0)
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestKinds_Disjoint(t *testing.T) {
	seen := map[Selector]Kind{}

	for _, descriptor := range Kinds.All() {
		other, collides := seen[descriptor.Selector()]
		assert.False(t, collides, "%v collides with %v", descriptor.Kind, other)
		seen[descriptor.Selector()] = descriptor.Kind
	}

	assert.Len(t, seen, int(TOTAL_KINDS))
}

func TestNewKindsDescriptor_PanicsOnCollision(t *testing.T) {
	assert.Panics(t, func() {
		NewKindsDescriptor([]*KindDescriptor{
			{Kind: Kind_PixelAccumulate, Mnemonic: "A", Opcode: 0x0B},
			{Kind: Kind_SequenceGenerator, Mnemonic: "B", Opcode: 0x0B},
		})
	})

	assert.Panics(t, func() {
		NewKindsDescriptor([]*KindDescriptor{
			{Kind: Kind_PixelAccumulate, Mnemonic: "A", Opcode: 0x0B},
			{Kind: Kind_SequenceGenerator, Mnemonic: "B", Opcode: 0x2B, Funct3: 0b1000},
		})
	})
}

func TestDecode_Idempotent(t *testing.T) {
	for _, word := range []Word{0, 0xFFFFFFFF, 0x0020818B, 0xDEADBEEF} {
		assert.Equal(t, Decode(word), Decode(word))
	}
}

func TestDecode_AllOnes(t *testing.T) {
	assert.Equal(t, Fields{
		Opcode: 0x7F,
		Rd:     0x1F,
		Funct3: 0x7,
		Rs1:    0x1F,
		Rs2:    0x1F,
		Funct7: 0x7F,
	}, Decode(0xFFFFFFFF))
}

func TestClassify_Unknown(t *testing.T) {
	tests := []Word{
		0x00000033, // standard ADD
		0x0000100B, // custom-0, funct3 001
		0x0200000B, // custom-0, funct7 1
		0x0000002B, // custom-1, funct3 000
	}

	for _, word := range tests {
		t.Run(word.String(), func(t *testing.T) {
			_, err := Classify(Decode(word))
			assert.ErrorIs(t, err, ErrUnknownEncoding)

			_, err = DecodeInstruction(word)
			assert.ErrorIs(t, err, ErrUnknownEncoding)
		})
	}
}

func TestEncode_Rs2BitIsolation(t *testing.T) {
	const rs2Mask = uint32(0x1F) << Rs2Position

	for _, descriptor := range Kinds.All() {
		baseline, err := Encode(descriptor.Kind, 9, 17, 0)
		require.NoError(t, err)

		for rs2 := uint32(0); rs2 <= MaxRegister; rs2++ {
			word, err := Encode(descriptor.Kind, 9, 17, rs2)
			require.NoError(t, err)

			assert.Equal(t, uint32(baseline)&^rs2Mask, uint32(word)&^rs2Mask, "rs2=%v touched bits outside [24:20]", rs2)
			assert.Equal(t, rs2, (uint32(word)&rs2Mask)>>Rs2Position)
		}
	}
}

func TestInstruction(t *testing.T) {
	instr, err := NewInstruction(Kind_PixelAccumulate, 3, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, "ADD_PLUGIN x3, x1, x2", instr.String())
	assembly, err := instr.Assembly()
	require.NoError(t, err)
	assert.Equal(t, ".insn r 0x0B, 0x0, 0x00, x3, x1, x2", assembly)

	word, err := instr.Encode()
	require.NoError(t, err)

	decoded, err := DecodeInstruction(word)
	require.NoError(t, err)
	assert.Equal(t, instr, decoded)

	_, err = NewInstruction(Kind_SequenceGenerator, 0, 40, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestFields_PrettyPrint(t *testing.T) {
	word, err := Encode(Kind_PixelAccumulate, 3, 1, 2)
	require.NoError(t, err)

	frame := Decode(word).PrettyPrint(0)
	t.Logf("%v\n\n%v", word, frame)

	assert.Contains(t, frame, "0001011")
	assert.Contains(t, frame, "00011")
	assert.Contains(t, frame, "00010")
	assert.Contains(t, frame, "funct7")
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("add_plugin")
	require.NoError(t, err)
	assert.Equal(t, Kind_PixelAccumulate, kind)

	kind, err = ParseKind(" FIB_PLUGIN ")
	require.NoError(t, err)
	assert.Equal(t, Kind_SequenceGenerator, kind)

	_, err = ParseKind("MUL_PLUGIN")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestParseRegister(t *testing.T) {
	tests := []struct {
		name     string
		expected uint32
		err      error
	}{
		{"x0", 0, nil},
		{"zero", 0, nil},
		{"X31", 31, nil},
		{"t0", 5, nil},
		{"fp", 8, nil},
		{"s0", 8, nil},
		{"a7", 17, nil},
		{"t6", 31, nil},
		{"12", 12, nil},
		{"x32", 0, ErrOutOfRange},
		{"64", 0, ErrOutOfRange},
		{"q1", 0, ErrInvalidRegister},
		{"", 0, ErrInvalidRegister},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("%q", test.name), func(t *testing.T) {
			index, err := ParseRegister(test.name)

			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expected, index)
		})
	}

	for i := uint32(0); i <= MaxRegister; i++ {
		index, err := ParseRegister(ABIName(i))
		require.NoError(t, err)
		assert.Equal(t, i, index)
	}
}

func TestExecute(t *testing.T) {
	tests := []struct {
		kind     Kind
		rs1, rs2 uint32
		expected uint32
	}{
		{Kind_PixelAccumulate, 10, 20, 35},
		{Kind_PixelAccumulate, 0, 100, 105},
		{Kind_PixelAccumulate, 1000, 2000, 3005},
		{Kind_PixelAccumulate, 0xFFFFFFF6, 0xFFFFFFFB, 0xFFFFFFF6},
	}

	inputs := []uint32{0, 1, 2, 3, 4, 5, 6, 7, 8, 10, 12, 15}
	fibs := []uint32{0, 1, 1, 2, 3, 5, 8, 13, 21, 55, 144, 610}
	for i, n := range inputs {
		tests = append(tests, struct {
			kind     Kind
			rs1, rs2 uint32
			expected uint32
		}{Kind_SequenceGenerator, n, 0, fibs[i]})
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("%v(%v,%v)", test.kind, test.rs1, test.rs2), func(t *testing.T) {
			value, err := Execute(test.kind, test.rs1, test.rs2)
			require.NoError(t, err)
			assert.Equal(t, test.expected, value)
		})
	}
}

func TestUnknownKind_ReturnsErrors(t *testing.T) {
	for _, kind := range []Kind{TOTAL_KINDS, TOTAL_KINDS + 7} {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := Execute(kind, 1, 2)
			assert.ErrorIs(t, err, ErrUnknownEncoding)

			_, err = (&Instruction{Kind: kind, Rd: 1, Rs1: 2, Rs2: 3}).Assembly()
			assert.ErrorIs(t, err, ErrUnknownEncoding)

			_, err = Encode(kind, 1, 2, 3)
			assert.ErrorIs(t, err, ErrUnknownEncoding)
		})
	}
}

func TestKinds_DocString(t *testing.T) {
	doc := Kinds.DocString()

	for _, descriptor := range Kinds.All() {
		assert.Contains(t, doc, descriptor.Mnemonic)
		assert.Contains(t, doc, descriptor.Description)
	}

	assert.Contains(t, doc, ".insn r 0x0B, 0x0, 0x00, rd, rs1, rs2")
	assert.Contains(t, doc, ".insn r 0x2B, 0x1, 0x00, rd, rs1, rs2")
}
