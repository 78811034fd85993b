package plugin

import (
	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/mmio"
	"github.com/spf13/cobra"
)

// PluginCmd represents the plugin command
var PluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Run the memory mapped plugin model and generate its driver programs",
}

// Builds a system with the configured plugin and ramSize bytes of RAM
func newSystem(ramSize int) *mmio.System {
	settings := shared.Settings()

	plugin, err := settings.PluginConfig()
	if err != nil {
		shared.Fatal(1, "%v", err)
	}

	system, err := mmio.NewSystem(mmio.SystemConfig{
		BaseAddress: uint32(settings.Plugin.BaseAddress),
		RAMSize:     ramSize,
		Plugin:      plugin,
		SpinCycles:  settings.Driver.SpinCycles,
		PollLimit:   settings.Driver.PollLimit,
		Logger:      shared.Logger(),
	})
	if err != nil {
		shared.Fatal(1, "building the system: %v", err)
	}

	return system
}
