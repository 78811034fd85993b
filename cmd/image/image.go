package image

import (
	"github.com/spf13/cobra"
)

// ImageCmd represents the image command
var ImageCmd = &cobra.Command{
	Use:   "image",
	Short: "Convert images to and from plugin pixel streams",
}

func init() {
}
