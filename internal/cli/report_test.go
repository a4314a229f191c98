package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaa/fpgaflow/internal/exitcode"
	"github.com/jaa/fpgaflow/internal/report"
)

func TestReportListsAvailableIDs(t *testing.T) {
	tmp := t.TempDir()
	configPath := writeFlowConfig(t, tmp)

	app, stdout, _ := newTestApp()
	root := newRootCommand(app)
	root.SetArgs([]string{"report", "synthesis", "--config", configPath})

	if err := root.Execute(); err != nil {
		t.Fatalf("report synthesis failed: %v", err)
	}
	if !strings.Contains(stdout.String(), report.ResourceReportID) {
		t.Fatalf("expected report id listing, got: %s", stdout.String())
	}
}

func TestReportPrintsMessagesFromLog(t *testing.T) {
	tmp := t.TempDir()
	configPath := writeFlowConfig(t, tmp)

	runDir := filepath.Join(tmp, "counter")
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		t.Fatalf("mkdir run dir: %v", err)
	}
	log := "Warning: Wire counter.q has no driver\n"
	if err := os.WriteFile(filepath.Join(runDir, "synthesis.rpt"), []byte(log), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	app, stdout, _ := newTestApp()
	root := newRootCommand(app)
	root.SetArgs([]string{"report", "synthesis", "--config", configPath, "--messages"})

	if err := root.Execute(); err != nil {
		t.Fatalf("report --messages failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "no driver") {
		t.Fatalf("expected warning from log, got: %s", stdout.String())
	}
}

func TestReportPrintsTableAndEmitsCreatedEvent(t *testing.T) {
	tmp := t.TempDir()
	configPath := writeFlowConfig(t, tmp)

	runDir := filepath.Join(tmp, "counter")
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		t.Fatalf("mkdir run dir: %v", err)
	}
	log := "2.49. Printing statistics.\n\n=== counter ===\n\n   Number of wires:                 14\n"
	if err := os.WriteFile(filepath.Join(runDir, "synthesis.rpt"), []byte(log), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	app, stdout, _ := newTestApp()
	root := newRootCommand(app)
	root.SetArgs([]string{"report", "synthesis", "--config", configPath, "--id", report.StatsReportID})

	if err := root.Execute(); err != nil {
		t.Fatalf("report --id failed: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "report created: "+report.StatsReportID) {
		t.Fatalf("expected report_created event, got: %s", out)
	}
	if !strings.Contains(out, "Number of wires") || !strings.Contains(out, "14") {
		t.Fatalf("expected statistics rows, got: %s", out)
	}
}

func TestReportRejectsTaskWithoutReports(t *testing.T) {
	tmp := t.TempDir()
	configPath := writeFlowConfig(t, tmp)

	app, _, _ := newTestApp()
	root := newRootCommand(app)
	root.SetArgs([]string{"report", "ip_generate", "--config", configPath})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected missing report manager to fail")
	}
	if got := mapExitCode(err); got != exitcode.InvalidUsage {
		t.Fatalf("expected invalid usage exit code, got %d", got)
	}
}
