package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaa/fpgaflow/internal/exitcode"
)

func writeFlowConfig(t *testing.T, dir string) string {
	t.Helper()
	rtl := filepath.Join(dir, "rtl")
	if err := os.MkdirAll(rtl, 0o755); err != nil {
		t.Fatalf("mkdir rtl: %v", err)
	}
	if err := os.WriteFile(filepath.Join(rtl, "counter.v"), []byte("module counter; endmodule\n"), 0o644); err != nil {
		t.Fatalf("write design file: %v", err)
	}

	configPath := filepath.Join(dir, "fpgaflow.yaml")
	payload := `version: 1
project:
  name: "counter"
  dir: "` + dir + `"
  top_module: "counter"
  design_files:
    - path: "` + filepath.Join(rtl, "counter.v") + `"
      language: "verilog_2001"
architecture:
  vpr_arch: "` + filepath.Join(dir, "arch.xml") + `"
`
	if err := os.WriteFile(configPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func newTestApp() (*AppContext, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	app := &AppContext{
		Build: BuildInfo{Version: "test"},
		IO:    IOStreams{In: strings.NewReader(""), Out: stdout, ErrOut: stderr},
	}
	return app, stdout, stderr
}

func TestRunListTasks(t *testing.T) {
	app, stdout, _ := newTestApp()
	root := newRootCommand(app)
	root.SetArgs([]string{"run", "--list-tasks"})

	if err := root.Execute(); err != nil {
		t.Fatalf("run --list-tasks failed: %v", err)
	}
	for _, name := range []string{"synthesis", "packing", "routing", "bitstream"} {
		if !strings.Contains(stdout.String(), name) {
			t.Fatalf("expected %q in task list, got: %s", name, stdout.String())
		}
	}
}

func TestRunDryRunPlansPipeline(t *testing.T) {
	tmp := t.TempDir()
	configPath := writeFlowConfig(t, tmp)

	app, stdout, _ := newTestApp()
	root := newRootCommand(app)
	root.SetArgs([]string{"run", "--config", configPath, "--dry-run"})

	if err := root.Execute(); err != nil {
		t.Fatalf("run --dry-run failed: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "Planned tasks:") {
		t.Fatalf("expected plan header, got: %s", out)
	}
	if !strings.Contains(out, "synthesis") || !strings.Contains(out, "placement") {
		t.Fatalf("expected pipeline stages in plan, got: %s", out)
	}
}

func TestRunRejectsUnknownTask(t *testing.T) {
	tmp := t.TempDir()
	configPath := writeFlowConfig(t, tmp)

	app, _, _ := newTestApp()
	root := newRootCommand(app)
	root.SetArgs([]string{"run", "--config", configPath, "--task", "teleportation"})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected unknown task to fail")
	}
	if got := mapExitCode(err); got != exitcode.InvalidUsage {
		t.Fatalf("expected invalid usage exit code, got %d", got)
	}
}

func TestRunFailsOnMissingConfig(t *testing.T) {
	app, _, _ := newTestApp()
	root := newRootCommand(app)
	root.SetArgs([]string{"run", "--config", filepath.Join(t.TempDir(), "nope.yaml")})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected missing config to fail")
	}
	if got := mapExitCode(err); got != exitcode.InvalidConfig {
		t.Fatalf("expected invalid config exit code, got %d", got)
	}
}
