package isa

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs5lab/grayplug/pkg/hw/plugin/isa"
	"github.com/rs5lab/grayplug/pkg/utils"
	"github.com/spf13/cobra"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "List the implemented custom instructions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

		fmt.Fprintln(w, "MNEMONIC\tOPCODE\tFUNCT3\tFUNCT7\tDESCRIPTION")
		for _, descriptor := range isa.Kinds.All() {
			fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n",
				descriptor.Mnemonic,
				utils.FormatUintHex(uint64(descriptor.Opcode), 2),
				utils.FormatUintBinary(uint64(descriptor.Funct3), isa.Funct3Bits),
				utils.FormatUintBinary(uint64(descriptor.Funct7), isa.Funct7Bits),
				descriptor.Description)
		}

		w.Flush()
	},
}

func init() {
	IsaCmd.AddCommand(tableCmd)
}
