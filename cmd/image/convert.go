package image

import (
	"fmt"
	"os"

	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/pixel"
	"github.com/rs5lab/grayplug/pkg/imaging"
	"github.com/spf13/cobra"
)

var (
	convertOutput    string
	convertManifest  string
	convertMaxWidth  int
	convertMaxHeight int
)

var convertCmd = &cobra.Command{
	Use:   "convert <image>",
	Short: "Convert an image into a pixel stream",
	Long: `Decodes a PNG, JPEG, GIF, BMP or TIFF image and writes its pixels in row-major order as
0xRRGGBB00 words. The output is a little endian stream, or hex text when the output file
ends in .hex.

Example:
  grayplug image convert cat.png -o pixels.bin --manifest image.yaml --max-width 128`,
	Args: cobra.ExactArgs(1),
	Run:  runConvert,
}

func init() {
	ImageCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "pixels.bin", "Output pixel stream (.bin or .hex)")
	convertCmd.Flags().StringVarP(&convertManifest, "manifest", "m", "", "Write the image manifest to this YAML file")
	convertCmd.Flags().IntVar(&convertMaxWidth, "max-width", 0, "Scale the image down to this width (0 = no limit)")
	convertCmd.Flags().IntVar(&convertMaxHeight, "max-height", 0, "Scale the image down to this height (0 = no limit)")
}

func runConvert(cmd *cobra.Command, args []string) {
	source := args[0]

	img, format, err := imaging.Load(source)
	if err != nil {
		shared.Fatal(1, "%v", err)
	}

	img = imaging.Resize(img, convertMaxWidth, convertMaxHeight)
	bounds := img.Bounds()
	pixels := imaging.ToPixelWords(img)

	if err := shared.WriteWords(convertOutput, pixel.PixelsToWords(pixels)); err != nil {
		shared.Fatal(2, "writing %v: %v", convertOutput, err)
	}

	if convertManifest != "" {
		manifest := imaging.NewManifest(source, bounds.Dx(), bounds.Dy(), pixels, uint32(shared.Settings().Memory.ImageAddress))
		if err := manifest.Save(convertManifest); err != nil {
			shared.Fatal(3, "writing manifest: %v", err)
		}
	}

	shared.Logger().Debug("image converted", "source", source, "format", format, "pixels", len(pixels))
	shared.Success("Converted %v (%v, %vx%v) into %v pixels", source, format, bounds.Dx(), bounds.Dy(), len(pixels))
	fmt.Fprintf(os.Stderr, "  stream: %v (%v bytes)\n", convertOutput, len(pixels)*pixel.WordSize)
}
