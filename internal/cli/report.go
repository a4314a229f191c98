package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaa/fpgaflow/internal/compiler"
	"github.com/jaa/fpgaflow/internal/config"
	"github.com/jaa/fpgaflow/internal/engine"
	"github.com/jaa/fpgaflow/internal/exitcode"
	"github.com/jaa/fpgaflow/internal/output"
	"github.com/jaa/fpgaflow/internal/report"
	"github.com/jaa/fpgaflow/internal/task"
)

func newReportCommand(app *AppContext) *cobra.Command {
	var reportID string
	var showMessages bool

	cmd := &cobra.Command{
		Use:   "report <task>",
		Short: "Show reports parsed from a stage log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := task.ParseID(args[0])
			if !ok {
				return withExitCode(exitcode.InvalidUsage, fmt.Errorf("unknown task %q", args[0]))
			}

			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if err := config.Validate(cfg); err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			c, err := compiler.New(&cfg, engine.NewSubprocessRunner(io.Discard), nil)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			tm := task.NewManager()
			c.RegisterReports(tm)

			rm := tm.ReportManager(id)
			if rm == nil {
				return withExitCode(exitcode.InvalidUsage, fmt.Errorf("task %q produces no reports", args[0]))
			}

			if showMessages {
				return printMessages(app, rm)
			}
			if reportID == "" {
				for _, available := range rm.AvailableReportIDs() {
					fmt.Fprintln(app.IO.Out, available)
				}
				return nil
			}
			rep, err := rm.CreateReport(reportID)
			if err != nil {
				return withExitCode(exitcode.InvalidUsage, err)
			}
			newEmitter(app).Emit(output.Event{
				Timestamp: time.Now(),
				Level:     output.LevelInfo,
				Event:     output.EventReportCreated,
				Task:      id.String(),
				Message:   "report created: " + rep.Name,
			})
			return printReport(app, rep)
		},
	}

	cmd.Flags().StringVar(&reportID, "id", "", "Report id to print (default: list available ids)")
	cmd.Flags().BoolVar(&showMessages, "messages", false, "Print warnings and errors from the stage log")
	return cmd
}

func printReport(app *AppContext, rep *report.Report) error {
	if app.Opts.JSON {
		encoder := json.NewEncoder(app.IO.Out)
		return encoder.Encode(rep)
	}

	fmt.Fprintln(app.IO.Out, rep.Name)
	for _, table := range rep.DataReports {
		if table.Name != "" {
			fmt.Fprintln(app.IO.Out, table.Name)
		}
		w := tabwriter.NewWriter(app.IO.Out, 0, 4, 2, ' ', 0)
		for i, col := range table.Columns {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, col.Name)
		}
		fmt.Fprintln(w)
		for _, row := range table.Rows {
			for i, cell := range row {
				if i > 0 {
					fmt.Fprint(w, "\t")
				}
				fmt.Fprint(w, cell)
			}
			fmt.Fprintln(w)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func printMessages(app *AppContext, rm report.Manager) error {
	msgs, err := rm.Messages()
	if err != nil {
		return withExitCode(exitcode.RuntimeFailure, err)
	}
	lines := make([]int, 0, len(msgs))
	for line := range msgs {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	if app.Opts.JSON {
		type jsonMessage struct {
			Line     int    `json:"line"`
			Severity string `json:"severity"`
			Text     string `json:"text"`
		}
		ordered := make([]jsonMessage, 0, len(lines))
		for _, line := range lines {
			msg := msgs[line]
			ordered = append(ordered, jsonMessage{Line: line, Severity: msg.Severity.String(), Text: msg.Text})
		}
		return json.NewEncoder(app.IO.Out).Encode(ordered)
	}

	for _, line := range lines {
		msg := msgs[line]
		fmt.Fprintf(app.IO.Out, "%d: [%s] %s\n", line, msg.Severity, msg.Text)
	}
	return nil
}
