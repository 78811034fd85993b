package image

import (
	"os"

	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/pixel"
	"github.com/spf13/cobra"
)

var hexReverse bool

var hexCmd = &cobra.Command{
	Use:   "hex <input> <output>",
	Short: "Transcode a little endian word stream into hex text lines",
	Long: `Writes one uppercase 8 digit hex word per line, the format loaded by the simulator
memory initialization. A trailing partial word is zero padded. With --reverse, hex text
is transcoded back into a little endian stream.`,
	Args: cobra.ExactArgs(2),
	Run:  runHex,
}

func init() {
	ImageCmd.AddCommand(hexCmd)
	hexCmd.Flags().BoolVarP(&hexReverse, "reverse", "r", false, "Transcode hex text into a little endian stream")
}

func runHex(cmd *cobra.Command, args []string) {
	in, err := os.Open(args[0])
	if err != nil {
		shared.Fatal(1, "%v", err)
	}
	defer in.Close()

	out, err := shared.Output(args[1])
	if err != nil {
		shared.Fatal(1, "%v", err)
	}

	transcode := pixel.BinToHex
	if hexReverse {
		transcode = pixel.HexToBin
	}

	count, err := transcode(in, out)
	if err != nil {
		out.Close()
		shared.Fatal(2, "transcoding %v: %v", args[0], err)
	}

	if err := out.Close(); err != nil {
		shared.Fatal(2, "%v", err)
	}

	shared.Success("Transcoded %v words", count)
}
