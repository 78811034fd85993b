package pipeline

import (
	"fmt"
	"os"

	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/pipeline"
	"github.com/spf13/cobra"
)

var runSteps []string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the experiment steps",
	Long: `Runs the experiment steps in order. By default every step runs; --step restricts the run
to the named steps, which then need the artifacts of the previous ones in the workspace.

Example:
  grayplug pipeline run --input-dir images --select 2 --max-width 64
  grayplug pipeline run --step run --step reconstruct --strict`,
	Args: cobra.NoArgs,
	Run:  runRun,
}

func init() {
	PipelineCmd.AddCommand(runCmd)
	runCmd.Flags().StringArrayVarP(&runSteps, "step", "s", nil, "Step to run. Can be given multiple times")
}

func runRun(cmd *cobra.Command, args []string) {
	steps := pipeline.Steps()

	if len(runSteps) > 0 {
		steps = nil
		for _, name := range runSteps {
			step, ok := pipeline.FindStep(name)
			if !ok {
				shared.Fatal(1, "unknown step '%v', see 'grayplug pipeline steps'", name)
			}
			steps = append(steps, step)
		}
	}

	w := OpenWorkspace(shared.Logger())

	ctx, cancel := shared.Context()
	defer cancel()

	if err := pipeline.RunAll(ctx, w, steps); err != nil {
		shared.Fatal(2, "%v", err)
	}

	shared.Success("Completed %v steps in %v", len(steps), w.Dir)

	if w.Has(pipeline.StatsFile) {
		stats, err := pipeline.LoadStats(w)
		if err != nil {
			shared.Fatal(3, "%v", err)
		}

		fmt.Fprintf(os.Stderr, "  %v\n", stats)
	}
}
