package tools

import (
	"github.com/spf13/cobra"
)

// ToolsCmd groups the helpers that do not drive the plugin, such as dumping the
// documentation of the custom instructions and of the register window
var ToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "grayplug miscellaneous tools",
	Long: `Helpers around the plugin interface that do not run anything.

  docs  dumps the reference of the custom instructions or of the plugin register window`,
}
