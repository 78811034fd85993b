package config

import (
	"fmt"
	"os"

	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings as YAML",
	Long: `Prints the settings after merging the defaults, the config file, the GRAYPLUG_*
environment variables and the command line flags. The output is a valid config file.

Example:
  grayplug config show --strict --settle-cycles 20 > ~/.grayplug.yaml`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Printf("# %v\n", used)
		}

		settings := shared.Settings()
		if err := settings.Dump(os.Stdout); err != nil {
			shared.Fatal(1, "%v", err)
		}
	},
}

func init() {
	ConfigCmd.AddCommand(showCmd)
}
