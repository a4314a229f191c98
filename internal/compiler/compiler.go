// Package compiler drives the external FPGA toolchain through the design
// flow: it owns the design state machine, turns configuration into tool
// invocations, and decides when a stage may be skipped.
package compiler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/jaa/fpgaflow/internal/config"
	"github.com/jaa/fpgaflow/internal/engine"
	"github.com/jaa/fpgaflow/internal/fileops"
	"github.com/jaa/fpgaflow/internal/output"
	"github.com/jaa/fpgaflow/internal/task"
)

// SideFile is written into the run directory before a stage executes.
type SideFile struct {
	Path    string
	Content string
}

// Invocation is everything a stage run needs: the command, the files to
// write first, and the artifacts made stale by a rerun. An empty Bin marks
// a stage that completes without an external tool.
type Invocation struct {
	Bin  string
	Args []string
	// CmdFile records the literal command next to the artifacts so a run
	// can be repeated by hand.
	CmdFile   string
	SideFiles []SideFile
	Purge     []string
	LogFile   string
	// DoneState is applied on success when Advances is set.
	DoneState State
	Advances  bool
	// Message announces a stage that finished without running a tool.
	Message string
}

// Display renders the literal command line written to the CmdFile.
func (inv *Invocation) Display() string {
	cmd := inv.Bin
	for _, arg := range inv.Args {
		cmd += " " + arg
	}
	return cmd
}

// StageDriver is the capability a toolchain provides per pipeline stage.
type StageDriver interface {
	// TaskID is the stage's slot in the task catalog.
	TaskID() task.ID
	// Name is the stage name used in errors and messages.
	Name() string
	// Validate fails fast when the design or the current state does not
	// allow the stage. No process is spawned and no artifact is touched
	// on a validation failure.
	Validate(c *Compiler) error
	// Build assembles the invocation without writing anything.
	Build(c *Compiler) (*Invocation, error)
	// Changed reports whether the stage inputs changed since its last
	// successful run. Drivers without change detection return true.
	Changed(c *Compiler, inv *Invocation) (bool, error)
}

// Compiler carries the design context shared by every stage driver.
type Compiler struct {
	cfg     *config.Config
	runner  engine.ExecRunner
	emitter output.EventEmitter
	cons    *Constraints
	device  DeviceData
	state   State
}

// New builds a compiler for the loaded configuration. Constraint files are
// read up front; a configured device is resolved against the device table.
func New(cfg *config.Config, runner engine.ExecRunner, emitter output.EventEmitter) (*Compiler, error) {
	c := &Compiler{cfg: cfg, runner: runner, emitter: emitter}

	var consPaths []string
	for _, p := range cfg.Project.ConstraintFiles {
		consPaths = append(consPaths, c.Resolve(p))
	}
	cons, err := LoadConstraints(consPaths)
	if err != nil {
		return nil, err
	}
	c.cons = cons

	if cfg.Project.Device != "" {
		if cfg.Tools.DeviceTable == "" {
			return nil, fmt.Errorf("device %q set but tools.device_table is not", cfg.Project.Device)
		}
		device, err := LoadDeviceData(c.Resolve(cfg.Tools.DeviceTable), cfg.Project.Device)
		if err != nil {
			return nil, err
		}
		c.device = device
	}
	return c, nil
}

func (c *Compiler) Config() *config.Config    { return c.cfg }
func (c *Compiler) Constraints() *Constraints { return c.cons }
func (c *Compiler) State() State              { return c.state }
func (c *Compiler) SetState(s State)          { c.state = s }

// HasDesign reports whether any design is configured.
func (c *Compiler) HasDesign() bool {
	return c.cfg.Project.Name != ""
}

// CreateDefaultDesign fills in the fallback design used when IP generation
// or synthesis is started without a configured project.
func (c *Compiler) CreateDefaultDesign() {
	c.cfg.Project.Name = "noname"
	if c.cfg.Project.TopModule == "" {
		c.cfg.Project.TopModule = "noname"
	}
}

func (c *Compiler) ProjectName() string { return c.cfg.Project.Name }

// RunDir is the per-design working directory; every stage runs inside it
// and all artifacts land there.
func (c *Compiler) RunDir() string {
	return filepath.Join(c.cfg.Project.Dir, c.cfg.Project.Name)
}

// Resolve makes a configured path absolute relative to the project dir.
func (c *Compiler) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.cfg.Project.Dir, path)
}

// RunPath places a run artifact name inside the run directory.
func (c *Compiler) RunPath(name string) string {
	return filepath.Join(c.RunDir(), name)
}

// VprArchFile is the device architecture, from the device table when a
// device is selected, otherwise from the architecture section.
func (c *Compiler) VprArchFile() string {
	if c.device.VprArch != "" {
		return c.Resolve(c.device.VprArch)
	}
	return c.Resolve(c.cfg.Architecture.VprArch)
}

func (c *Compiler) OpenFPGAArchFile() string {
	if c.device.OpenFPGAArch != "" {
		return c.Resolve(c.device.OpenFPGAArch)
	}
	return c.Resolve(c.cfg.Architecture.OpenFPGAArch)
}

func (c *Compiler) BitstreamSettingFile() string {
	if c.device.BitstreamSettings != "" {
		return c.Resolve(c.device.BitstreamSettings)
	}
	return c.Resolve(c.cfg.Architecture.BitstreamSettings)
}

func (c *Compiler) SimSettingFile() string {
	if c.device.SimSettings != "" {
		return c.Resolve(c.device.SimSettings)
	}
	return c.Resolve(c.cfg.Architecture.SimSettings)
}

func (c *Compiler) RepackConstraintsFile() string {
	if c.device.RepackSettings != "" {
		return c.Resolve(c.device.RepackSettings)
	}
	return c.Resolve(c.cfg.Architecture.RepackSettings)
}

// DeviceSize is the fixed device layout, device table first, then the
// stage override.
func (c *Compiler) DeviceSize() string {
	if c.device.DeviceSize != "" {
		return c.device.DeviceSize
	}
	return c.cfg.Stages.DeviceSize
}

func (c *Compiler) commandTimeout() time.Duration {
	return time.Duration(c.cfg.Defaults.CommandTimeoutSeconds) * time.Second
}

func (c *Compiler) info(taskName, message string) {
	if c.emitter == nil {
		return
	}
	c.emitter.Emit(output.Event{
		Timestamp: time.Now(),
		Level:     output.LevelInfo,
		Event:     output.EventTaskProgress,
		Task:      taskName,
		Message:   message,
	})
}

// RunStage takes one stage through the full sequence: validate, build the
// invocation, change check, purge stale artifacts, write side files, run
// the tool. The design state only advances on success, so a failed stage
// can be retried as-is.
func (c *Compiler) RunStage(ctx context.Context, d StageDriver) error {
	if err := d.Validate(c); err != nil {
		return err
	}
	inv, err := d.Build(c)
	if err != nil {
		return &StageError{Stage: d.Name(), Err: err}
	}
	changed, err := d.Changed(c, inv)
	if err != nil {
		return &StageError{Stage: d.Name(), Err: err}
	}
	if !changed {
		c.info(d.Name(), fmt.Sprintf("Design didn't change: %s, skipping %s.", c.ProjectName(), d.Name()))
		return nil
	}

	if err := os.MkdirAll(c.RunDir(), 0o755); err != nil {
		return &StageError{Stage: d.Name(), Err: err}
	}
	for _, stale := range inv.Purge {
		os.Remove(stale)
	}
	for _, sf := range inv.SideFiles {
		if err := fileops.WriteFileSafely(sf.Path, []byte(sf.Content), 0o644); err != nil {
			return &StageError{Stage: d.Name(), Err: err}
		}
	}

	if inv.Bin == "" {
		if inv.Message != "" {
			c.info(d.Name(), inv.Message)
		}
		if inv.Advances {
			c.state = inv.DoneState
		}
		return nil
	}

	if _, err := exec.LookPath(inv.Bin); err != nil {
		return &MissingToolError{Tool: d.Name(), Path: inv.Bin}
	}
	if inv.CmdFile != "" {
		if err := fileops.WriteFileSafely(inv.CmdFile, []byte(inv.Display()+"\n"), 0o644); err != nil {
			return &StageError{Stage: d.Name(), Err: err}
		}
	}

	res := c.runner.Run(ctx, engine.ExecSpec{
		Bin:            inv.Bin,
		Args:           inv.Args,
		Dir:            c.RunDir(),
		LogPath:        inv.LogFile,
		Timeout:        c.commandTimeout(),
		DisplayCommand: inv.Display(),
	})
	if !res.Success() {
		err := res.Err
		if err == nil {
			err = fmt.Errorf("exit code %d", res.ExitCode)
		}
		return &StageError{Stage: d.Name(), Err: fmt.Errorf("design %s: %w", c.ProjectName(), err)}
	}
	if inv.Advances {
		c.state = inv.DoneState
	}
	c.info(d.Name(), fmt.Sprintf("Design %s: %s succeeded.", c.ProjectName(), d.Name()))
	return nil
}
