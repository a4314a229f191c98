package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Project = Project{
		Name:      "counter",
		Dir:       "/tmp/proj",
		TopModule: "counter",
		DesignFiles: []DesignFile{
			{Path: "rtl/counter.v", Language: LangVerilog2001},
		},
	}
	cfg.Architecture.VprArch = "arch/k6.xml"
	return cfg
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Project.Name = ""
	cfg.Stages.Routing.ChannelWidth = 0
	cfg.Stages.DeviceSize = "huge"

	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Problems) != 3 {
		t.Fatalf("expected 3 problems, got %d: %v", len(verr.Problems), verr.Problems)
	}
	if !strings.Contains(err.Error(), "project.name must be set") {
		t.Fatalf("missing project name problem: %v", err)
	}
	if !strings.Contains(err.Error(), "channel_width must be > 0") {
		t.Fatalf("missing channel width problem: %v", err)
	}
	if !strings.Contains(err.Error(), `device_size "huge" must match XxY`) {
		t.Fatalf("missing device size problem: %v", err)
	}
}

func TestValidateRejectsUnknownLanguage(t *testing.T) {
	cfg := validConfig()
	cfg.Project.DesignFiles = append(cfg.Project.DesignFiles, DesignFile{Path: "rtl/x.v", Language: "verilog_2077"})

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "unsupported language") {
		t.Fatalf("expected unsupported language problem, got: %v", err)
	}
}

func TestValidateRejectsDuplicateDesignFiles(t *testing.T) {
	cfg := validConfig()
	cfg.Project.DesignFiles = append(cfg.Project.DesignFiles, cfg.Project.DesignFiles[0])

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "duplicate design file") {
		t.Fatalf("expected duplicate design file problem, got: %v", err)
	}
}

func TestValidateBitstreamRequiresOpenFPGASetup(t *testing.T) {
	cfg := validConfig()
	cfg.Stages.Bitstream.Enabled = true
	cfg.Tools.OpenFPGA.Path = ""

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "tools.openfpga.path must be set") {
		t.Fatalf("expected openfpga path problem, got: %v", err)
	}
}

func TestValidateOpenstaRequiresStaPath(t *testing.T) {
	cfg := validConfig()
	cfg.Stages.Timing.Engine = TimingEngineOpensta
	cfg.Tools.Sta.Path = ""

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "tools.sta.path") {
		t.Fatalf("expected sta path problem, got: %v", err)
	}

	cfg.Tools.Sta.Path = "sta"
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}
}
