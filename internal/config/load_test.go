package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, dir, name, payload string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadExplicitConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "fpgaflow.yaml", `
version: 1
project:
  name: "counter"
  top_module: "counter_top"
  design_files:
    - path: "rtl/counter.v"
tools:
  yosys:
    path: "/opt/yosys/bin/yosys"
stages:
  routing:
    channel_width: 180
architecture:
  vpr_arch: "arch/k6.xml"
`)

	cfg, err := Load(LoadOptions{ExplicitPath: path, WorkingDir: dir, Env: map[string]string{}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Project.Name != "counter" {
		t.Fatalf("unexpected project name: %q", cfg.Project.Name)
	}
	if cfg.Project.TopModule != "counter_top" {
		t.Fatalf("unexpected top module: %q", cfg.Project.TopModule)
	}
	if cfg.Tools.Yosys.Path != "/opt/yosys/bin/yosys" {
		t.Fatalf("unexpected yosys path: %q", cfg.Tools.Yosys.Path)
	}
	if cfg.Stages.Routing.ChannelWidth != 180 {
		t.Fatalf("unexpected channel width: %d", cfg.Stages.Routing.ChannelWidth)
	}
	// Untouched sections keep their defaults.
	if cfg.Stages.Synthesis.LutSize != 6 {
		t.Fatalf("unexpected lut size: %d", cfg.Stages.Synthesis.LutSize)
	}
	if cfg.Stages.Packing.NetlistLang != NetlistBlif {
		t.Fatalf("unexpected netlist lang: %q", cfg.Stages.Packing.NetlistLang)
	}
}

func TestLoadExplicitConfigMissingFileFails(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(LoadOptions{
		ExplicitPath: filepath.Join(dir, "does-not-exist.yaml"),
		WorkingDir:   dir,
		Env:          map[string]string{},
	})
	if err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "fpgaflow.yaml", `
version: 1
project:
  name: "counter"
  design_files:
    - path: "rtl/counter.v"
architecture:
  vpr_arch: "arch/k6.xml"
`)

	cfg, err := Load(LoadOptions{
		ExplicitPath: path,
		WorkingDir:   dir,
		Env: map[string]string{
			"FPGAFLOW_VPR":           "/custom/vpr",
			"FPGAFLOW_CHANNEL_WIDTH": "64",
			"FPGAFLOW_DEVICE_SIZE":   "4x4",
		},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Tools.Vpr.Path != "/custom/vpr" {
		t.Fatalf("unexpected vpr path: %q", cfg.Tools.Vpr.Path)
	}
	if cfg.Stages.Routing.ChannelWidth != 64 {
		t.Fatalf("unexpected channel width: %d", cfg.Stages.Routing.ChannelWidth)
	}
	if cfg.Stages.DeviceSize != "4x4" {
		t.Fatalf("unexpected device size: %q", cfg.Stages.DeviceSize)
	}
}

func TestLoadRejectsInvalidEnvOverride(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(LoadOptions{
		WorkingDir: dir,
		Env:        map[string]string{"FPGAFLOW_CHANNEL_WIDTH": "wide"},
	})
	if err == nil {
		t.Fatalf("expected error for non-numeric channel width override")
	}
}

func TestNormalizeFillsTopModuleAndLanguage(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "fpgaflow.yaml", `
version: 1
project:
  name: "blinky"
  design_files:
    - path: "rtl/blinky.sv"
    - path: "rtl/pll.vhd"
    - path: "netlist/top.blif"
    - path: "rtl/old.v"
architecture:
  vpr_arch: "arch/k6.xml"
`)

	cfg, err := Load(LoadOptions{ExplicitPath: path, WorkingDir: dir, Env: map[string]string{}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Project.TopModule != "blinky" {
		t.Fatalf("top module should default to project name, got %q", cfg.Project.TopModule)
	}
	want := []Language{LangSV2017, LangVHDL2008, LangBlif, LangVerilog2001}
	for i, lang := range want {
		if cfg.Project.DesignFiles[i].Language != lang {
			t.Fatalf("file %d: expected language %q, got %q", i, lang, cfg.Project.DesignFiles[i].Language)
		}
	}
	if cfg.Project.Dir != dir {
		t.Fatalf("project dir should default to working dir, got %q", cfg.Project.Dir)
	}
}
