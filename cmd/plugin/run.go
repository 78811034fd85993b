package plugin

import (
	"fmt"
	"os"

	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/mmio"
	"github.com/spf13/cobra"
)

var (
	runOutput  string
	runHexCopy string
)

var runCmd = &cobra.Command{
	Use:   "run <pixels>",
	Short: "Process a pixel stream through the plugin model",
	Long: `Loads a pixel stream (.bin little endian or .hex text) into RAM at memory.image_address,
maps the plugin at plugin.base_address and runs the driver loop of the generated program
over every pixel: write INPUT, trigger CONTROL, wait for the ready status, read RESULT and
store it at memory.result_address.

Example:
  grayplug plugin run pixels.hex -o results.bin --strict`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	PluginCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "results.bin", "Output result stream (.bin or .hex)")
	runCmd.Flags().StringVar(&runHexCopy, "hex", "", "Also write the results as hex text to this file")
}

func runRun(cmd *cobra.Command, args []string) {
	words, err := shared.ReadWords(args[0])
	if err != nil {
		shared.Fatal(1, "reading %v: %v", args[0], err)
	}

	settings := shared.Settings()
	imageAddress := uint32(settings.Memory.ImageAddress)
	resultAddress := uint32(settings.Memory.ResultAddress)
	if resultAddress == 0 {
		resultAddress = mmio.ResultAddressAfter(imageAddress, len(words))
	}

	system := newSystem(mmio.RequiredRAM(imageAddress, resultAddress, len(words)))

	ctx, cancel := shared.Context()
	defer cancel()

	results, err := system.RunImage(ctx, words, imageAddress, resultAddress)
	if err != nil {
		shared.Fatal(2, "%v", err)
	}

	if err := shared.WriteWords(runOutput, results); err != nil {
		shared.Fatal(3, "writing %v: %v", runOutput, err)
	}

	if runHexCopy != "" {
		if err := shared.WriteWords(runHexCopy, results); err != nil {
			shared.Fatal(3, "writing %v: %v", runHexCopy, err)
		}
	}

	pluginStats, driverStats := system.Plugin.Stats(), system.Driver.Stats()

	shared.Success("Processed %v pixels into %v", len(results), runOutput)
	for _, window := range system.Bus.Windows() {
		fmt.Fprintf(os.Stderr, "  %v\n", window)
	}
	fmt.Fprintf(os.Stderr, "  triggers: %v, completed: %v, spins: %v, polls: %v\n",
		pluginStats.Triggers, pluginStats.Completed, driverStats.Spins, driverStats.Polls)

	if pluginStats.Violations > 0 {
		shared.ColorWarning.Fprintf(os.Stderr, "  %v RESULT reads before the plugin was ready\n", pluginStats.Violations)
	}
}
