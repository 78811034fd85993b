// Package codegen renders the bare metal C programs that drive the plugin from the core.
package codegen

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/template"

	"github.com/rs5lab/grayplug/pkg/hw/plugin/isa"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/mmio"
	"github.com/rs5lab/grayplug/pkg/utils"
)

//go:embed templates
var Templates embed.FS

var (
	ErrUnknownProgram = errors.New("unknown program")
	ErrInvalidParams  = errors.New("invalid program parameters")
)

// Programs the generator can render
const (
	Program_Image        = "image"
	Program_Adder        = "adder"
	Program_Instructions = "instructions"
)

// Memory map shared by every generated program
type Target struct {
	Registers mmio.RegisterMap
	// Address the program writes its console output to
	UARTAddress uint32
	// Busy wait iterations after each trigger
	SpinCycles int
	// CONTROL reads before giving up. Zero polls forever
	PollLimit int
}

// CONTROL status bit polled by the programs
func (t Target) StatusReady() uint32 {
	return mmio.StatusReady
}

type ImageParams struct {
	Target
	Source        string
	Width         int
	Height        int
	ImageAddress  uint32
	ResultAddress uint32
}

func (p ImageParams) TotalPixels() int {
	return p.Width * p.Height
}

type AdderCase struct {
	A, B uint32
}

func (c AdderCase) Expected() uint32 {
	return mmio.Adder{}.Compute(c.A, c.B)
}

type AdderParams struct {
	Target
	Cases []AdderCase
}

// A custom instruction executed with fixed operand values
type InstructionCase struct {
	Kind isa.Kind
	Rs1  uint32
	Rs2  uint32
}

func (c InstructionCase) Descriptor() *isa.KindDescriptor {
	return isa.Kinds.Descriptor(c.Kind)
}

// Inline assembly template with %0 as rd and %1, %2 as rs1, rs2
func (c InstructionCase) Insn() string {
	return c.Descriptor().Insn("%0", "%1", "%2")
}

func (c InstructionCase) Expected() (uint32, error) {
	return isa.Execute(c.Kind, c.Rs1, c.Rs2)
}

type InstructionParams struct {
	Target
	Cases []InstructionCase
}

// Operands exercised by the adder self test when none are given
func DefaultAdderCases() []AdderCase {
	return []AdderCase{{5, 7}, {100, 200}, {0, 42}}
}

// Instructions exercised by the instruction self test when none are given
func DefaultInstructionCases() []InstructionCase {
	cases := []InstructionCase{
		{Kind: isa.Kind_PixelAccumulate, Rs1: 10, Rs2: 20},
		{Kind: isa.Kind_PixelAccumulate, Rs1: 0, Rs2: 100},
		{Kind: isa.Kind_PixelAccumulate, Rs1: 1000, Rs2: 2000},
		{Kind: isa.Kind_PixelAccumulate, Rs1: 0xFFFFFFF6, Rs2: 0xFFFFFFFB},
	}

	for n := uint32(0); n <= 10; n++ {
		cases = append(cases, InstructionCase{Kind: isa.Kind_SequenceGenerator, Rs1: n})
	}

	return cases
}

type Generator struct {
	template *template.Template
}

func NewGenerator() (*Generator, error) {
	funcs := template.FuncMap{
		"Hex": func(value uint32) string {
			return utils.FormatUintHex(uint64(value), 8) + "U"
		},
		"ToUpper": strings.ToUpper,
		"CString": func(text string) string {
			return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "*/", "* /").Replace(text)
		},
	}

	t, err := template.New("programs").Funcs(funcs).ParseFS(Templates, "templates/*.c.tmpl")
	if err != nil {
		return nil, err
	}

	return &Generator{
		template: t,
	}, nil
}

// Returns the names of the programs the generator can render
func (g *Generator) Programs() []string {
	return []string{Program_Image, Program_Adder, Program_Instructions}
}

func (g *Generator) render(w io.Writer, program string, params any) error {
	if !slices.Contains(g.Programs(), program) {
		return utils.MakeError(ErrUnknownProgram, "'%v'", program)
	}

	return g.template.ExecuteTemplate(w, program+".c.tmpl", params)
}

func validateTarget(target Target) error {
	if target.SpinCycles < 0 || target.PollLimit < 0 {
		return utils.MakeError(ErrInvalidParams, "spin cycles (%v) and poll limit (%v) must not be negative", target.SpinCycles, target.PollLimit)
	}

	if target.UARTAddress%4 != 0 {
		return utils.MakeError(ErrInvalidParams, "UART address %v is not word aligned", utils.FormatUintHex(uint64(target.UARTAddress), 8))
	}

	return nil
}

// Renders the program converting a whole image through the plugin register interface
func (g *Generator) Image(w io.Writer, params ImageParams) error {
	if err := validateTarget(params.Target); err != nil {
		return err
	}

	if params.Width <= 0 || params.Height <= 0 {
		return utils.MakeError(ErrInvalidParams, "image size %vx%v", params.Width, params.Height)
	}

	size := uint64(params.TotalPixels()) * 4
	if uint64(params.ImageAddress) < uint64(params.ResultAddress)+size && uint64(params.ResultAddress) < uint64(params.ImageAddress)+size {
		return utils.MakeError(ErrInvalidParams, "image and result buffers overlap")
	}

	return g.render(w, Program_Image, params)
}

// Renders the self checking program of a plugin configured with the adder function
func (g *Generator) Adder(w io.Writer, params AdderParams) error {
	if err := validateTarget(params.Target); err != nil {
		return err
	}

	if len(params.Cases) == 0 {
		return utils.MakeError(ErrInvalidParams, "no adder test cases")
	}

	return g.render(w, Program_Adder, params)
}

// Renders the self checking program executing the custom instructions inline
func (g *Generator) Instructions(w io.Writer, params InstructionParams) error {
	if err := validateTarget(params.Target); err != nil {
		return err
	}

	if len(params.Cases) == 0 {
		return utils.MakeError(ErrInvalidParams, "no instruction test cases")
	}

	for i, c := range params.Cases {
		if c.Kind >= isa.TOTAL_KINDS {
			return utils.MakeError(ErrInvalidParams, "case %v: %v", i, c.Kind)
		}
	}

	return g.render(w, Program_Instructions, params)
}

// Renders a program into a file
func (g *Generator) GenerateFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("generating %v: %w", path, err)
	}

	return f.Close()
}
