package tools

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/isa"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/mmio"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
)

var supportedModules = map[string]func() (string, error){
	"plugin.instructions": func() (string, error) { return isa.Kinds.DocString(), nil },
	"plugin.registers": func() (string, error) {
		registers, err := mmio.NewRegisterMap(uint32(shared.Settings().Plugin.BaseAddress))
		if err != nil {
			return "", err
		}
		return registers.DocString(), nil
	},
}

func moduleNames() []string {
	names := maps.Keys(supportedModules)
	slices.Sort(names)
	return names
}

var docsCmd = &cobra.Command{
	Use:   "docs module",
	Short: "Show grayplug documentation",
	Long: `Dumps the documentation of the specified grayplug module.
By default the tool dumps the documentation to stdout, but it can be redirected to a file using the --output flag.

Supported modules:
  ` + strings.Join(moduleNames(), "\n  "),
	Args:      cobra.MatchAll(cobra.OnlyValidArgs, cobra.ExactArgs(1)),
	ValidArgs: moduleNames(),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := supportedModules[args[0]]()
		if err != nil {
			shared.Fatal(1, "%v", err)
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile == "" {
			fmt.Println(doc)
			return
		}

		if err := os.WriteFile(outputFile, []byte(doc+"\n"), 0o644); err != nil {
			shared.Fatal(1, "error creating file: %v", err)
		}
	},
}

func init() {
	ToolsCmd.AddCommand(docsCmd)
	docsCmd.Flags().StringP("output", "o", "", "Output file. If not specified, the documentation is dumped to stdout.")
}
