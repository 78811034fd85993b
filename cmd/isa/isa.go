package isa

import (
	"github.com/spf13/cobra"
)

// IsaCmd represents the isa command
var IsaCmd = &cobra.Command{
	Use:   "isa",
	Short: "Encode and decode the plugin custom instructions",
}

func init() {
}
