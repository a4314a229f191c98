package doctor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jaa/fpgaflow/internal/config"
)

func testChecker() *Checker {
	return &Checker{
		LookPath:      func(bin string) (string, error) { return "/usr/bin/" + bin, nil },
		ReadVersion:   func(context.Context, string) (string, error) { return "Yosys 0.36 (git sha1)", nil },
		CheckWritable: func(string) error { return nil },
		CheckReadable: func(string) error { return nil },
	}
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Project.Name = "demo"
	cfg.Project.Dir = "/tmp/demo"
	cfg.Project.DesignFiles = []config.DesignFile{{Path: "top.v", Language: config.LangVerilog2001}}
	cfg.Architecture.VprArch = "arch.xml"
	return cfg
}

func findCheck(r Report, severity Severity, fragment string) bool {
	for _, check := range r.Checks {
		if check.Severity == severity && strings.Contains(check.Message, fragment) {
			return true
		}
	}
	return false
}

func TestCheckHealthyEnvironment(t *testing.T) {
	report := testChecker().Check(context.Background(), testConfig())

	if report.HasErrors() {
		t.Fatalf("unexpected errors: %+v", report.Checks)
	}
	if !findCheck(report, SeverityInfo, "yosys found at /usr/bin/yosys") {
		t.Errorf("missing yosys check: %+v", report.Checks)
	}
	if !findCheck(report, SeverityInfo, "project dir is writable") {
		t.Errorf("missing writable check: %+v", report.Checks)
	}
	if !findCheck(report, SeverityInfo, "vpr architecture file is readable") {
		t.Errorf("missing arch file check: %+v", report.Checks)
	}
}

func TestCheckMissingTool(t *testing.T) {
	c := testChecker()
	c.LookPath = func(bin string) (string, error) {
		if bin == "vpr" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + bin, nil
	}

	report := c.Check(context.Background(), testConfig())
	if !report.HasErrors() {
		t.Fatal("expected errors")
	}
	if !findCheck(report, SeverityError, "vpr not found") {
		t.Errorf("missing vpr error: %+v", report.Checks)
	}
}

func TestCheckVersionBelowMinimum(t *testing.T) {
	c := testChecker()
	c.ReadVersion = func(context.Context, string) (string, error) {
		return "Yosys 0.12 (git sha1)", nil
	}
	cfg := testConfig()
	cfg.Tools.Yosys.MinVersion = "0.30.0"

	report := c.Check(context.Background(), cfg)
	if !findCheck(report, SeverityError, "below minimum 0.30.0") {
		t.Errorf("missing version error: %+v", report.Checks)
	}
}

func TestCheckTwoComponentVersion(t *testing.T) {
	c := testChecker()
	c.ReadVersion = func(context.Context, string) (string, error) {
		return "VPR FPGA Placement and Routing. Version: 8.1", nil
	}
	cfg := testConfig()
	cfg.Tools.Vpr.MinVersion = "8.0.0"

	report := c.Check(context.Background(), cfg)
	if report.HasErrors() {
		t.Fatalf("unexpected errors: %+v", report.Checks)
	}
	if !findCheck(report, SeverityInfo, "satisfies minimum 8.0.0") {
		t.Errorf("missing version info: %+v", report.Checks)
	}
}

func TestCheckOpenFPGAOnlyWhenBitstreamEnabled(t *testing.T) {
	cfg := testConfig()
	report := testChecker().Check(context.Background(), cfg)
	if findCheck(report, SeverityInfo, "openfpga found") {
		t.Errorf("openfpga checked with bitstream disabled: %+v", report.Checks)
	}

	cfg.Stages.Bitstream.Enabled = true
	report = testChecker().Check(context.Background(), cfg)
	if !findCheck(report, SeverityInfo, "openfpga found") {
		t.Errorf("openfpga not checked with bitstream enabled: %+v", report.Checks)
	}
}

func TestCheckUnreadableArchFile(t *testing.T) {
	c := testChecker()
	c.CheckReadable = func(string) error { return errors.New("permission denied") }

	report := c.Check(context.Background(), testConfig())
	if !findCheck(report, SeverityError, "vpr architecture file is not readable") {
		t.Errorf("missing readable error: %+v", report.Checks)
	}
}

func TestReportErrorCount(t *testing.T) {
	r := Report{Checks: []Check{
		{Severity: SeverityError},
		{Severity: SeverityInfo},
		{Severity: SeverityError},
	}}
	if got := r.ErrorCount(); got != 2 {
		t.Errorf("ErrorCount = %d, want 2", got)
	}
}

func TestCheckStaOnlyWhenOpenstaEngine(t *testing.T) {
	cfg := testConfig()
	report := testChecker().Check(context.Background(), cfg)
	if findCheck(report, SeverityInfo, "sta found") {
		t.Errorf("sta checked with the built-in timing engine: %+v", report.Checks)
	}

	cfg.Stages.Timing.Engine = config.TimingEngineOpensta
	report = testChecker().Check(context.Background(), cfg)
	if !findCheck(report, SeverityInfo, "sta found at /usr/bin/sta") {
		t.Errorf("sta not checked with the opensta engine: %+v", report.Checks)
	}
}
