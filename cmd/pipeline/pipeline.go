package pipeline

import (
	"log/slog"

	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/pipeline"
	"github.com/spf13/cobra"
)

// PipelineCmd represents the pipeline command
var PipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the image conversion experiment inside a workspace directory",
}

var (
	workspaceDir string
	inputDir     string
	sourceImage  string
	selection    int
	maxWidth     int
	maxHeight    int
)

func init() {
	flags := PipelineCmd.PersistentFlags()
	flags.StringVarP(&workspaceDir, "workspace", "w", "workspace", "Directory holding the experiment artifacts")
	flags.StringVarP(&inputDir, "input-dir", "i", "images", "Directory the select step picks images from")
	flags.StringVar(&sourceImage, "image", "", "Image to convert. Takes precedence over --input-dir")
	flags.IntVar(&selection, "select", 0, "1-based index of the image picked from --input-dir")
	flags.IntVar(&maxWidth, "max-width", 0, "Scale the image down to fit this width")
	flags.IntVar(&maxHeight, "max-height", 0, "Scale the image down to fit this height")
}

// Opens the workspace described by the pipeline flags, logging to logger
func OpenWorkspace(logger *slog.Logger) *pipeline.Workspace {
	w, err := pipeline.NewWorkspace(workspaceDir, pipeline.Options{
		InputDir:  inputDir,
		Source:    sourceImage,
		Selection: selection,
		MaxWidth:  maxWidth,
		MaxHeight: maxHeight,
		Settings:  shared.Settings(),
		Logger:    logger,
	})
	if err != nil {
		shared.Fatal(1, "opening workspace %v: %v", workspaceDir, err)
	}

	return w
}
