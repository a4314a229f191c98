package compiler

import (
	"context"
	"os"
	"time"

	"github.com/jaa/fpgaflow/internal/output"
	"github.com/jaa/fpgaflow/internal/report"
	"github.com/jaa/fpgaflow/internal/task"
)

var cleanTaskOf = map[task.ID]task.ID{
	task.Analysis:        task.AnalysisClean,
	task.Synthesis:       task.SynthesisClean,
	task.Packing:         task.PackingClean,
	task.GlobalPlacement: task.GlobalPlacementClean,
	task.Placement:       task.PlacementClean,
	task.Routing:         task.RoutingClean,
	task.TimingSignOff:   task.TimingSignOffClean,
	task.Power:           task.PowerClean,
	task.Bitstream:       task.BitstreamClean,
}

// BindTasks wires every stage driver and its Clean sub-task into the task
// catalog and registers the per-stage report managers. The bound actions
// move the task through InProgress to a terminal status themselves.
func (c *Compiler) BindTasks(ctx context.Context, tm *task.Manager, tc Toolchain) {
	for _, d := range tc.Drivers() {
		d := d
		tm.BindTaskCommand(d.TaskID(), func(t *task.Task) {
			t.SetStatus(task.StatusInProgress)
			if err := c.RunStage(ctx, d); err != nil {
				c.errorEvent(d.Name(), err)
				t.SetStatus(task.StatusFail)
				return
			}
			t.SetStatus(task.StatusSuccess)
		})
		cleanID, ok := cleanTaskOf[d.TaskID()]
		if !ok {
			continue
		}
		tm.BindTaskCommand(cleanID, func(t *task.Task) {
			t.SetStatus(task.StatusInProgress)
			if err := c.CleanStage(d); err != nil {
				c.errorEvent(d.Name(), err)
				t.SetStatus(task.StatusFail)
				return
			}
			t.SetStatus(task.StatusSuccess)
		})
	}
	c.RegisterReports(tm)
}

// CleanStage removes everything a stage wrote: side files, the command
// record, the log, purged artifacts and the stage outputs. The design state
// rolls back to just before the stage.
func (c *Compiler) CleanStage(d StageDriver) error {
	inv, err := d.Build(c)
	if err != nil {
		return err
	}
	paths := append([]string{}, inv.Purge...)
	for _, sf := range inv.SideFiles {
		paths = append(paths, sf.Path)
	}
	paths = append(paths, inv.CmdFile, inv.LogFile)

	prefix := netlistFilePrefix(c)
	switch d.TaskID() {
	case task.Packing:
		paths = append(paths, c.RunPath(prefix+".net"))
	case task.Placement:
		paths = append(paths, c.RunPath(prefix+".place"))
	case task.Routing:
		paths = append(paths, c.RunPath(prefix+".route"))
	}

	for _, p := range paths {
		if p != "" {
			os.Remove(p)
		}
	}
	if inv.Advances && c.state >= inv.DoneState && inv.DoneState > StateNotStarted {
		c.state = inv.DoneState - 1
	}
	return nil
}

// RegisterReports attaches a report manager to every stage that produces a
// parseable log.
func (c *Compiler) RegisterReports(tm *task.Manager) {
	tm.RegisterReportManager(task.Synthesis, report.NewSynthesisManager(c.RunPath("synthesis.rpt")))
	tm.RegisterReportManager(task.Packing, report.NewVPRManager(c.RunPath("packing.rpt"), false))
	tm.RegisterReportManager(task.Placement, report.NewVPRManager(c.RunPath("placement.rpt"), true))
	tm.RegisterReportManager(task.Routing, report.NewVPRManager(c.RunPath("routing.rpt"), true))
	tm.RegisterReportManager(task.TimingSignOff, report.NewVPRManager(c.RunPath("timing_analysis.rpt"), true))
	tm.RegisterReportManager(task.Power, report.NewVPRManager(c.RunPath("power.rpt"), false))
}

func (c *Compiler) errorEvent(taskName string, err error) {
	if c.emitter == nil {
		return
	}
	c.emitter.Emit(output.Event{
		Timestamp: time.Now(),
		Level:     output.LevelError,
		Event:     output.EventTaskFailed,
		Task:      taskName,
		Message:   err.Error(),
	})
}
