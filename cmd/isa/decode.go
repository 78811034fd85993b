package isa

import (
	"fmt"

	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/isa"
	"github.com/rs5lab/grayplug/pkg/utils"
	"github.com/spf13/cobra"
)

var decodePretty bool

var decodeCmd = &cobra.Command{
	Use:   "decode <word>...",
	Short: "Decode instruction words",
	Long: `Decodes 32 bit instruction words given in hex (0x0020818B), binary (0b...) or decimal.
Words that do not encode a custom instruction are reported with their raw fields.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runDecode,
}

func init() {
	IsaCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolVarP(&decodePretty, "pretty", "p", false, "Print the bit fields of each word")
}

func runDecode(cmd *cobra.Command, args []string) {
	failures := 0

	for _, arg := range args {
		value, err := utils.ParseUint(arg, isa.InstructionBits)
		if err != nil {
			shared.Fatal(1, "'%v' is not a 32 bit word: %v", arg, err)
		}

		word := isa.Word(value)
		fields := isa.Decode(word)

		instruction, err := isa.DecodeInstruction(word)
		if err != nil {
			failures++
			shared.ColorHex.Print(word)
			fmt.Print(": ")
			shared.ColorWarning.Println(err)
		} else {
			shared.ColorHex.Print(word)
			fmt.Print(": ")
			shared.ColorName.Println(instruction)
		}

		if decodePretty {
			fmt.Print(fields.PrettyPrint(2))
		}
	}

	if failures > 0 {
		shared.Fatal(2, "%v of %v words do not encode a custom instruction", failures, len(args))
	}
}
