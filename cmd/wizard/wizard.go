package wizard

import (
	"context"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	pipelinecmd "github.com/rs5lab/grayplug/cmd/pipeline"
	"github.com/rs5lab/grayplug/cmd/shared"
	"github.com/rs5lab/grayplug/pkg/logging"
	"github.com/rs5lab/grayplug/pkg/pipeline"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// WizardCmd represents the wizard command
var WizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive step by step runner of the experiment",
	Long: `Opens a terminal UI listing the experiment steps. The workspace and image selection
flags are the ones of 'grayplug pipeline'.

Keys:
  enter   run the highlighted step
  a       run every step from the first one
  r       refresh the step status
  q, esc  quit`,
	Args: cobra.NoArgs,
	Run:  runWizard,
}

func init() {
	WizardCmd.Flags().AddFlagSet(pipelinecmd.PipelineCmd.PersistentFlags())
}

type wizard struct {
	app       *tview.Application
	steps     *tview.List
	log       *tview.TextView
	status    *tview.TextView
	workspace *pipeline.Workspace
	cancel    context.CancelFunc
	running   bool
}

func runWizard(cmd *cobra.Command, args []string) {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		shared.Fatal(1, "the wizard needs an interactive terminal, use 'grayplug pipeline run' instead")
	}

	w := &wizard{
		app:    tview.NewApplication(),
		steps:  tview.NewList(),
		log:    tview.NewTextView(),
		status: tview.NewTextView(),
	}

	w.log.SetScrollable(true).
		SetChangedFunc(func() {
			w.app.Draw()
		}).
		SetBorder(true).
		SetTitle(" log ")

	w.status.SetDynamicColors(true)

	settings := shared.Settings()
	logger, err := logging.New(logging.Options{
		Level:   settings.Log.Level,
		Format:  "text",
		Console: w.log,
	})
	if err != nil {
		shared.Fatal(1, "%v", err)
	}

	w.workspace = pipelinecmd.OpenWorkspace(logger)

	w.steps.SetBorder(true).SetTitle(" steps ")
	for i, step := range pipeline.Steps() {
		w.steps.AddItem(step.Name, step.Description, rune('1'+i), nil)
	}
	w.steps.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		w.run(pipeline.Steps()[index : index+1])
	})
	w.refresh()

	w.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEscape || event.Rune() == 'q':
			w.quit()
			return nil
		case event.Rune() == 'a':
			w.run(pipeline.Steps())
			return nil
		case event.Rune() == 'r':
			w.refresh()
			return nil
		}

		return event
	})

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(tview.NewFlex().
			AddItem(w.steps, 0, 1, true).
			AddItem(w.log, 0, 2, false), 0, 1, true).
		AddItem(w.status, 1, 0, false)

	if err := w.app.SetRoot(layout, true).Run(); err != nil {
		shared.Fatal(1, "%v", err)
	}
}

// Updates the step list with the artifacts found in the workspace. Must run on the UI goroutine
func (w *wizard) refresh() {
	done := 0
	for i, step := range pipeline.Steps() {
		mark := "[ ]"
		if w.workspace.Has(step.Output) {
			mark = "[x]"
			done++
		}

		w.steps.SetItemText(i, fmt.Sprintf("%v %v", mark, step.Name), step.Description)
	}

	if !w.running {
		w.setStatus("green", fmt.Sprintf("%v: %v/%v steps done", w.workspace.Dir, done, len(pipeline.Steps())))
	}
}

func (w *wizard) setStatus(color string, text string) {
	w.status.SetText(fmt.Sprintf("[%v]%v", color, tview.Escape(text)))
}

// Runs the steps in the background. Ignored while another run is in progress
func (w *wizard) run(steps []pipeline.Step) {
	if w.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.running = true
	w.cancel = cancel
	w.setStatus("yellow", fmt.Sprintf("running %v steps...", len(steps)))

	go func() {
		err := pipeline.RunAll(ctx, w.workspace, steps)

		w.app.QueueUpdateDraw(func() {
			w.running = false
			w.cancel = nil
			cancel()
			w.refresh()

			if err != nil {
				w.setStatus("red", err.Error())
			}
		})
	}()
}

func (w *wizard) quit() {
	if w.cancel != nil {
		w.cancel()
	}

	w.app.Stop()
}
