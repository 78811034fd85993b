package pipeline

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/pipeline"
	"github.com/spf13/cobra"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the experiment steps and whether the workspace holds their artifacts",
	Args:  cobra.NoArgs,
	Run:   listSteps,
}

func init() {
	PipelineCmd.AddCommand(stepsCmd)
}

func listSteps(cmd *cobra.Command, args []string) {
	w := OpenWorkspace(shared.Logger())

	out := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(out, "#\tSTEP\tDONE\tDESCRIPTION")

	for i, step := range pipeline.Steps() {
		done := "no"
		if w.Has(step.Output) {
			done = "yes"
		}

		fmt.Fprintf(out, "%v\t%v\t%v\t%v\n", i+1, step.Name, done, step.Description)
	}

	out.Flush()
}
