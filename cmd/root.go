package cmd

import (
	"fmt"
	"os"

	configcmd "github.com/rs5lab/grayplug/cmd/config"
	"github.com/rs5lab/grayplug/cmd/image"
	"github.com/rs5lab/grayplug/cmd/isa"
	"github.com/rs5lab/grayplug/cmd/pipeline"
	"github.com/rs5lab/grayplug/cmd/plugin"
	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/cmd/tools"
	"github.com/rs5lab/grayplug/cmd/wizard"
	"github.com/rs5lab/grayplug/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "grayplug",
	Short: "Tooling for the RS5 grayscale plugin experiment",
	Long: `grayplug drives the grayscale conversion experiment of the RS5 custom plugin.

It encodes the custom R-type instructions, converts images into the pixel streams the
plugin consumes, generates the bare metal C programs that drive it, and models the
memory mapped plugin handshake so whole images can be processed without a simulator.`,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shared.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(isa.IsaCmd, image.ImageCmd, plugin.PluginCmd, pipeline.PipelineCmd, wizard.WizardCmd, configcmd.ConfigCmd, tools.ToolsCmd)
	cobra.OnInitialize(initConfig)

	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/"+config.FileName+".yaml)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-file", "", "file receiving a JSON copy of the log")
	flags.String("base-address", "", "plugin register window base address")
	flags.Int("settle-cycles", 0, "clock cycles the plugin takes to produce a result")
	flags.Bool("strict", false, "fail on RESULT reads before the plugin is ready instead of returning stale data")
	flags.String("function", "", "plugin function: grayscale or adder")
	flags.Int("spin-cycles", 0, "bus cycles the driver busy waits after each trigger")
	flags.Int("poll-limit", 0, "CONTROL reads before the driver gives up, 0 polls forever")

	for key, flag := range map[string]string{
		"log.level":            "log-level",
		"log.file":             "log-file",
		"plugin.base_address":  "base-address",
		"plugin.settle_cycles": "settle-cycles",
		"plugin.strict":        "strict",
		"plugin.function":      "function",
		"driver.spin_cycles":   "spin-cycles",
		"driver.poll_limit":    "poll-limit",
	} {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".grayplug" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(config.FileName)
	}

	config.BindEnv(viper.GetViper())

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		shared.Fatal(1, "reading config file %v: %v", cfgFile, err)
	}

	if err := shared.Init(viper.GetViper()); err != nil {
		shared.Fatal(1, "%v", err)
	}
}
