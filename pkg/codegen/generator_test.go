package codegen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs5lab/grayplug/pkg/hw/plugin/isa"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/mmio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTarget(t *testing.T, pollLimit int) Target {
	t.Helper()

	registers, err := mmio.NewRegisterMap(0x20000000)
	require.NoError(t, err)

	return Target{
		Registers:   registers,
		UARTAddress: 0x80000000,
		SpinCycles:  10,
		PollLimit:   pollLimit,
	}
}

func TestGenerator_Image(t *testing.T) {
	generator, err := NewGenerator()
	require.NoError(t, err)

	buffer := bytes.Buffer{}
	require.NoError(t, generator.Image(&buffer, ImageParams{
		Target:        testTarget(t, 1000),
		Source:        "cat.png",
		Width:         201,
		Height:        251,
		ImageAddress:  0x1000,
		ResultAddress: 0x33000,
	}))

	program := buffer.String()

	for _, expected := range []string{
		"Generated for cat.png (201x251)",
		"#define TOTAL_PIXELS 50451",
		"#define IMAGE_DATA_ADDR  0x00001000U",
		"#define RESULT_DATA_ADDR 0x00033000U",
		"#define PLUGIN_INPUT_ADDR   0x20000000U",
		"#define PLUGIN_AUX_ADDR     0x20000004U",
		"#define PLUGIN_RESULT_ADDR  0x20000008U",
		"#define PLUGIN_CONTROL_ADDR 0x2000000CU",
		"#define STATUS_READY 1",
		"#define SPIN_CYCLES  10",
		"#define POLL_LIMIT   1000",
		"#define UART_ADDR 0x80000000U",
		"IMAGE_PROCESSING_COMPLETE",
	} {
		assert.Contains(t, program, expected)
	}

	assert.Equal(t, strings.Count(program, "{"), strings.Count(program, "}"))
	assert.NotContains(t, program, "<no value>")
}

func TestGenerator_ImageWithoutPollLimit(t *testing.T) {
	generator, err := NewGenerator()
	require.NoError(t, err)

	buffer := bytes.Buffer{}
	require.NoError(t, generator.Image(&buffer, ImageParams{
		Target:        testTarget(t, 0),
		Source:        "x.png",
		Width:         1,
		Height:        1,
		ImageAddress:  0x1000,
		ResultAddress: 0x2000,
	}))

	assert.NotContains(t, buffer.String(), "POLL_LIMIT")
	assert.Contains(t, buffer.String(), "while (!(READ_REG(PLUGIN_CONTROL_ADDR) & STATUS_READY));")
}

func TestGenerator_ImageInvalid(t *testing.T) {
	generator, err := NewGenerator()
	require.NoError(t, err)

	tests := []struct {
		name   string
		params ImageParams
	}{
		{"empty image", ImageParams{Target: testTarget(t, 0), Width: 0, Height: 10, ResultAddress: 0x2000}},
		{"overlapping buffers", ImageParams{Target: testTarget(t, 0), Width: 32, Height: 32, ImageAddress: 0x1000, ResultAddress: 0x1800}},
		{"negative spin", ImageParams{Target: Target{SpinCycles: -1}, Width: 1, Height: 1, ResultAddress: 0x2000}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := generator.Image(&bytes.Buffer{}, test.params)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestGenerator_Adder(t *testing.T) {
	generator, err := NewGenerator()
	require.NoError(t, err)

	buffer := bytes.Buffer{}
	require.NoError(t, generator.Adder(&buffer, AdderParams{
		Target: testTarget(t, 1000),
		Cases:  []AdderCase{{5, 7}, {0xFFFFFFFF, 1}},
	}))

	program := buffer.String()
	assert.Contains(t, program, "check_addition(0x00000005U, 0x00000007U, 0x0000000CU)")
	assert.Contains(t, program, "check_addition(0xFFFFFFFFU, 0x00000001U, 0x00000000U)")
	assert.Contains(t, program, "WRITE_REG(PLUGIN_AUX_ADDR, b);")

	assert.ErrorIs(t, generator.Adder(&bytes.Buffer{}, AdderParams{Target: testTarget(t, 0)}), ErrInvalidParams)
}

func TestGenerator_Instructions(t *testing.T) {
	generator, err := NewGenerator()
	require.NoError(t, err)

	buffer := bytes.Buffer{}
	require.NoError(t, generator.Instructions(&buffer, InstructionParams{
		Target: testTarget(t, 0),
		Cases: []InstructionCase{
			{Kind: isa.Kind_PixelAccumulate, Rs1: 10, Rs2: 20},
			{Kind: isa.Kind_SequenceGenerator, Rs1: 10},
		},
	}))

	program := buffer.String()
	assert.Contains(t, program, `asm volatile(".insn r 0x0B, 0x0, 0x00, %0, %1, %2"`)
	assert.Contains(t, program, `asm volatile(".insn r 0x2B, 0x1, 0x00, %0, %1, %2"`)
	assert.Contains(t, program, "case_0(0x0000000AU, 0x00000014U) != 0x00000023U")
	assert.Contains(t, program, "case_1(0x0000000AU, 0x00000000U) != 0x00000037U")

	err = generator.Instructions(&bytes.Buffer{}, InstructionParams{
		Target: testTarget(t, 0),
		Cases:  []InstructionCase{{Kind: isa.TOTAL_KINDS}},
	})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestInstructionCase_Expected(t *testing.T) {
	expected, err := InstructionCase{Kind: isa.Kind_SequenceGenerator, Rs1: 10}.Expected()
	require.NoError(t, err)
	assert.Equal(t, uint32(55), expected)

	_, err = InstructionCase{Kind: isa.TOTAL_KINDS}.Expected()
	assert.ErrorIs(t, err, isa.ErrUnknownEncoding)
}

func TestGenerator_UnknownProgram(t *testing.T) {
	generator, err := NewGenerator()
	require.NoError(t, err)

	assert.ErrorIs(t, generator.render(&bytes.Buffer{}, "sobel", nil), ErrUnknownProgram)
	assert.Equal(t, []string{"image", "adder", "instructions"}, generator.Programs())
}
