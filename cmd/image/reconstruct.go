package image

import (
	"fmt"

	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/pixel"
	"github.com/rs5lab/grayplug/pkg/imaging"
	"github.com/spf13/cobra"
)

var (
	reconstructOutput   string
	reconstructManifest string
	reconstructWidth    int
	reconstructHeight   int
)

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct <results>",
	Short: "Rebuild a grayscale image from plugin result words",
	Long: `Reads 0xGGGGGG00 result words (.bin stream or .hex text) and writes them as a grayscale PNG.
The image dimensions come from the manifest written by convert, or from --width and --height.
Missing results are left black and extra ones are ignored. Prints the intensity statistics.`,
	Args: cobra.ExactArgs(1),
	Run:  runReconstruct,
}

func init() {
	ImageCmd.AddCommand(reconstructCmd)
	reconstructCmd.Flags().StringVarP(&reconstructOutput, "output", "o", "output.png", "Output PNG")
	reconstructCmd.Flags().StringVarP(&reconstructManifest, "manifest", "m", "", "Image manifest giving the dimensions")
	reconstructCmd.Flags().IntVar(&reconstructWidth, "width", 0, "Image width, overrides the manifest")
	reconstructCmd.Flags().IntVar(&reconstructHeight, "height", 0, "Image height, overrides the manifest")
}

func runReconstruct(cmd *cobra.Command, args []string) {
	width, height := reconstructWidth, reconstructHeight

	if reconstructManifest != "" {
		manifest, err := imaging.LoadManifest(reconstructManifest)
		if err != nil {
			shared.Fatal(1, "%v", err)
		}

		if width == 0 {
			width = manifest.Width
		}
		if height == 0 {
			height = manifest.Height
		}
	}

	words, err := shared.ReadWords(args[0])
	if err != nil {
		shared.Fatal(1, "reading %v: %v", args[0], err)
	}

	results := make([]pixel.Result, len(words))
	for i, word := range words {
		results[i] = pixel.Result(word)
	}

	if width*height != len(results) {
		shared.ColorWarning.Printf("%v holds %v results for a %vx%v image\n", args[0], len(results), width, height)
	}

	img, err := imaging.FromResultWords(results, width, height)
	if err != nil {
		shared.Fatal(2, "%v (give --manifest or --width and --height)", err)
	}

	if err := imaging.SavePNG(reconstructOutput, img); err != nil {
		shared.Fatal(3, "%v", err)
	}

	shared.Success("Wrote %v (%vx%v)", reconstructOutput, width, height)
	fmt.Println(imaging.ComputeStats(img))
}
