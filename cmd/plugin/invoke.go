package plugin

import (
	"fmt"

	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/mmio"
	"github.com/rs5lab/grayplug/pkg/utils"
	"github.com/spf13/cobra"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <input> [aux]",
	Short: "Run a single plugin operation",
	Long: `Writes INPUT (and AUX when given), triggers the plugin and prints RESULT. Values accept
hex (0xFFFFFF00), binary or decimal notation.

Example:
  grayplug plugin invoke 0x808080FF
  grayplug plugin invoke 5 7 --function adder`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runInvoke,
}

func init() {
	PluginCmd.AddCommand(invokeCmd)
}

func runInvoke(cmd *cobra.Command, args []string) {
	values := make([]uint32, len(args))
	for i, arg := range args {
		value, err := utils.ParseUint(arg, 32)
		if err != nil {
			shared.Fatal(1, "'%v' is not a 32 bit value: %v", arg, err)
		}
		values[i] = uint32(value)
	}

	system := newSystem(int(mmio.WindowSize))

	var aux *uint32
	if len(values) > 1 {
		aux = &values[1]
	}

	result, err := system.Driver.Invoke(values[0], aux)
	if err != nil {
		shared.Fatal(2, "%v", err)
	}

	shared.ColorHex.Println(utils.FormatUintHex(uint64(result), 8))

	stats := system.Driver.Stats()
	fmt.Printf("function: %v, state: %v, spins: %v, polls: %v\n",
		system.Plugin.Config().Function.Name(), system.Plugin.State(), stats.Spins, stats.Polls)
}
