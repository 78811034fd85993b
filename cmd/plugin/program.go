package plugin

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/codegen"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/mmio"
	"github.com/rs5lab/grayplug/pkg/imaging"
	"github.com/rs5lab/grayplug/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	programOutput    string
	programManifest  string
	programHighlight bool
)

var programCmd = &cobra.Command{
	Use:   "program <image|adder|instructions>",
	Short: "Generate a bare metal C program driving the plugin",
	Long: `Renders one of the plugin driver programs for the configured memory map:

  image         converts the image described by --manifest through the register interface
  adder         self test of a plugin configured with the adder function
  instructions  self test of the ADD_PLUGIN and FIB_PLUGIN custom instructions

Example:
  grayplug plugin program image --manifest image.yaml -o program.c
  grayplug plugin program instructions --highlight`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{codegen.Program_Image, codegen.Program_Adder, codegen.Program_Instructions},
	Run:       runProgram,
}

func init() {
	PluginCmd.AddCommand(programCmd)
	programCmd.Flags().StringVarP(&programOutput, "output", "o", "", "Output file. If not specified, the program is dumped to stdout")
	programCmd.Flags().StringVarP(&programManifest, "manifest", "m", "", "Image manifest (required by the image program)")
	programCmd.Flags().BoolVar(&programHighlight, "highlight", false, "Highlight the C syntax even if stdout is not a terminal")
}

func runProgram(cmd *cobra.Command, args []string) {
	settings := shared.Settings()

	registers, err := mmio.NewRegisterMap(uint32(settings.Plugin.BaseAddress))
	if err != nil {
		shared.Fatal(1, "%v", err)
	}

	target := codegen.Target{
		Registers:   registers,
		UARTAddress: uint32(settings.Memory.UARTAddress),
		SpinCycles:  settings.Driver.SpinCycles,
		PollLimit:   settings.Driver.PollLimit,
	}

	generator, err := codegen.NewGenerator()
	if err != nil {
		shared.Fatal(1, "error initializing codegen.Generator: %v", err)
	}

	var render func(io.Writer) error

	switch args[0] {
	case codegen.Program_Image:
		render = imageProgram(generator, target)
	case codegen.Program_Adder:
		render = func(w io.Writer) error {
			return generator.Adder(w, codegen.AdderParams{Target: target, Cases: codegen.DefaultAdderCases()})
		}
	case codegen.Program_Instructions:
		render = func(w io.Writer) error {
			return generator.Instructions(w, codegen.InstructionParams{Target: target, Cases: codegen.DefaultInstructionCases()})
		}
	}

	if programOutput != "" {
		if err := generator.GenerateFile(programOutput, render); err != nil {
			shared.Fatal(2, "%v", err)
		}

		shared.Success("Wrote %v", programOutput)
		return
	}

	buffer := bytes.Buffer{}
	if err := render(&buffer); err != nil {
		shared.Fatal(2, "%v", err)
	}

	if programHighlight || term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print(utils.HighlightCCode(buffer.String()))
	} else {
		fmt.Print(buffer.String())
	}
}

func imageProgram(generator *codegen.Generator, target codegen.Target) func(io.Writer) error {
	if programManifest == "" {
		shared.Fatal(1, "the image program needs --manifest")
	}

	manifest, err := imaging.LoadManifest(programManifest)
	if err != nil {
		shared.Fatal(1, "%v", err)
	}

	resultAddress := uint32(shared.Settings().Memory.ResultAddress)
	if resultAddress == 0 {
		resultAddress = mmio.ResultAddressAfter(uint32(manifest.ImageAddress), manifest.TotalPixels)
	}

	params := codegen.ImageParams{
		Target:        target,
		Source:        filepath.Base(manifest.Source),
		Width:         manifest.Width,
		Height:        manifest.Height,
		ImageAddress:  uint32(manifest.ImageAddress),
		ResultAddress: resultAddress,
	}

	return func(w io.Writer) error {
		return generator.Image(w, params)
	}
}
