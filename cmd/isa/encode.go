package isa

import (
	"fmt"

	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/isa"
	"github.com/spf13/cobra"
)

var (
	encodePretty   bool
	encodeAssembly bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode <mnemonic> <rd> <rs1> <rs2>",
	Short: "Encode a custom instruction into its 32 bit word",
	Long: `Encodes an R-type custom instruction. Registers can be given by architectural name (x5),
ABI name (t0) or plain index (5).

Example:
  grayplug isa encode ADD_PLUGIN x3 x1 x2
  grayplug isa encode fib_plugin a0 t0 zero --pretty`,
	Args: cobra.ExactArgs(4),
	Run:  runEncode,
}

func init() {
	IsaCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().BoolVarP(&encodePretty, "pretty", "p", false, "Print the bit fields of the word")
	encodeCmd.Flags().BoolVarP(&encodeAssembly, "asm", "a", false, "Print the .insn directive emitting the instruction")
}

func runEncode(cmd *cobra.Command, args []string) {
	kind, err := isa.ParseKind(args[0])
	if err != nil {
		shared.Fatal(1, "%v", err)
	}

	var registers [3]uint32
	for i, name := range args[1:] {
		registers[i], err = isa.ParseRegister(name)
		if err != nil {
			shared.Fatal(1, "operand %v: %v", i+1, err)
		}
	}

	instruction, err := isa.NewInstruction(kind, registers[0], registers[1], registers[2])
	if err != nil {
		shared.Fatal(2, "%v", err)
	}

	word, err := instruction.Encode()
	if err != nil {
		shared.Fatal(2, "%v", err)
	}

	fmt.Println(word)

	if encodeAssembly {
		assembly, err := instruction.Assembly()
		if err != nil {
			shared.Fatal(2, "%v", err)
		}
		fmt.Println(assembly)
	}

	if encodePretty {
		fmt.Println()
		fmt.Print(isa.Decode(word).PrettyPrint(0))
	}
}
