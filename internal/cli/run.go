package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaa/fpgaflow/internal/compiler"
	"github.com/jaa/fpgaflow/internal/config"
	"github.com/jaa/fpgaflow/internal/engine"
	"github.com/jaa/fpgaflow/internal/exitcode"
	"github.com/jaa/fpgaflow/internal/output"
	"github.com/jaa/fpgaflow/internal/task"
)

func newRunCommand(app *AppContext) *cobra.Command {
	var taskName string
	var listTasks bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline or a single task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listTasks {
				for _, id := range task.KnownIDs() {
					fmt.Fprintln(app.IO.Out, id.String())
				}
				return nil
			}

			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if err := config.Validate(cfg); err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if timeout > 0 {
				cfg.Defaults.CommandTimeoutSeconds = int(timeout.Seconds())
			}

			var singleTask task.ID
			runSingle := taskName != ""
			if runSingle {
				id, ok := task.ParseID(taskName)
				if !ok {
					return withExitCode(exitcode.InvalidUsage,
						fmt.Errorf("unknown task %q (see 'fpgaflow run --list-tasks')", taskName))
				}
				singleTask = id
			}

			emitter := newEmitter(app)
			var echo io.Writer = io.Discard
			if app.Opts.Verbose && !app.Opts.JSON {
				echo = app.IO.Out
			}
			runner := engine.NewSubprocessRunner(echo)

			c, err := compiler.New(&cfg, runner, emitter)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), interruptSignals()...)
			defer stop()

			tm := task.NewManager()
			c.BindTasks(ctx, tm, compiler.OpenFPGAToolchain{})

			if app.Opts.DryRun {
				return dryRunPlan(app, tm, runSingle, singleTask)
			}

			failed := false
			wireRunEvents(emitter, tm, &failed)

			if runSingle {
				t := tm.Task(singleTask)
				if t == nil || !t.Valid() || !t.Enabled() {
					return withExitCode(exitcode.InvalidUsage,
						fmt.Errorf("task %q has no runnable command", taskName))
				}
				tm.StartTask(singleTask)
			} else {
				tm.StartAll()
			}

			if errors.Is(ctx.Err(), context.Canceled) {
				return withExitCode(exitcode.Interrupted, errors.New("run interrupted"))
			}
			if failed {
				return withExitCode(exitcode.StageFailure, errors.New("run finished with failed tasks"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&taskName, "task", "t", "", "Run a single task by name")
	cmd.Flags().BoolVar(&listTasks, "list-tasks", false, "List task names and exit")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override per-stage command timeout (e.g. 30m, 2h)")
	return cmd
}

// wireRunEvents translates task manager notifications into the event
// stream.
func wireRunEvents(emitter output.EventEmitter, tm *task.Manager, failed *bool) {
	tm.OnRunStarted(func(runID string) {
		emitter.Emit(output.Event{
			Timestamp: time.Now(),
			Level:     output.LevelInfo,
			Event:     output.EventRunStarted,
			RunID:     runID,
			Message:   "run started",
		})
	})
	tm.OnTaskStatusChanged(func(id task.ID, status task.Status) {
		event := output.Event{
			Timestamp: time.Now(),
			Level:     output.LevelInfo,
			RunID:     tm.RunID(),
			Task:      id.String(),
		}
		switch status {
		case task.StatusInProgress:
			event.Event = output.EventTaskStarted
			event.Message = id.String() + " started"
		case task.StatusSuccess:
			event.Event = output.EventTaskFinished
			event.Message = id.String() + " finished"
		case task.StatusFail:
			*failed = true
			event.Event = output.EventTaskFailed
			event.Level = output.LevelError
			event.Message = id.String() + " failed"
		default:
			return
		}
		emitter.Emit(event)
	})
	tm.OnProgress(func(done, total int, message string) {
		emitter.Emit(output.Event{
			Timestamp: time.Now(),
			Level:     output.LevelInfo,
			Event:     output.EventTaskProgress,
			RunID:     tm.RunID(),
			Message:   fmt.Sprintf("[%d/%d] %s", done, total, message),
		})
	})
	tm.OnRunFinished(func(runID string) {
		emitter.Emit(output.Event{
			Timestamp: time.Now(),
			Level:     output.LevelInfo,
			Event:     output.EventRunFinished,
			RunID:     runID,
			Message:   "run finished",
		})
	})
}

func dryRunPlan(app *AppContext, tm *task.Manager, runSingle bool, singleTask task.ID) error {
	plan := task.StageOrder
	if runSingle {
		plan = []task.ID{singleTask}
	}
	fmt.Fprintln(app.IO.Out, "Planned tasks:")
	for _, id := range plan {
		t := tm.Task(id)
		if t == nil || !t.Enabled() {
			continue
		}
		state := "runnable"
		if !t.Valid() {
			state = "no command bound"
		}
		fmt.Fprintf(app.IO.Out, "  %-24s %s\n", id.String(), state)
	}
	return nil
}
