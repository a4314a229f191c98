package config

import (
	"fmt"
	"regexp"
	"strings"
)

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
var deviceSizePattern = regexp.MustCompile(`^[0-9]+x[0-9]+$`)

type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid config"
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(e.Problems, "; "))
}

func Validate(cfg Config) error {
	problems := []string{}

	if cfg.Version != 1 {
		problems = append(problems, "version must be 1")
	}

	if strings.TrimSpace(cfg.Project.Name) == "" {
		problems = append(problems, "project.name must be set")
	} else if !projectNamePattern.MatchString(cfg.Project.Name) {
		problems = append(problems, fmt.Sprintf("project %q has invalid name format", cfg.Project.Name))
	}

	if strings.TrimSpace(cfg.Project.TopModule) == "" {
		problems = append(problems, "project.top_module must be set")
	}

	seenFiles := map[string]struct{}{}
	for _, file := range cfg.Project.DesignFiles {
		if strings.TrimSpace(file.Path) == "" {
			problems = append(problems, "design file path must not be empty")
			continue
		}
		if _, exists := seenFiles[file.Path]; exists {
			problems = append(problems, fmt.Sprintf("duplicate design file %q", file.Path))
		}
		seenFiles[file.Path] = struct{}{}

		switch file.Language {
		case LangVHDL1987, LangVHDL1993, LangVHDL2000, LangVHDL2008,
			LangVerilog1995, LangVerilog2001,
			LangSV2005, LangSV2009, LangSV2012, LangSV2017,
			LangVerilogNetlist, LangBlif, LangEblif:
		default:
			problems = append(problems, fmt.Sprintf("design file %q has unsupported language %q", file.Path, file.Language))
		}
	}

	switch cfg.Stages.Synthesis.Optimization {
	case SynthOptNone, SynthOptArea, SynthOptDelay, SynthOptMixed:
	default:
		problems = append(problems, fmt.Sprintf("stages.synthesis.optimization %q is unsupported", cfg.Stages.Synthesis.Optimization))
	}
	if cfg.Stages.Synthesis.LutSize <= 0 {
		problems = append(problems, "stages.synthesis.lut_size must be > 0")
	}

	switch cfg.Stages.Packing.NetlistLang {
	case NetlistBlif, NetlistEdif, NetlistVHDL, NetlistVerilog:
	default:
		problems = append(problems, fmt.Sprintf("stages.packing.netlist_lang %q is unsupported", cfg.Stages.Packing.NetlistLang))
	}

	switch cfg.Stages.Placement.PinAssignMethod {
	case PinAssignRandom, PinAssignInDefineOrder, PinAssignFree:
	default:
		problems = append(problems, fmt.Sprintf("stages.placement.pin_assign_method %q is unsupported", cfg.Stages.Placement.PinAssignMethod))
	}

	if cfg.Stages.Routing.ChannelWidth <= 0 {
		problems = append(problems, "stages.routing.channel_width must be > 0")
	}

	switch cfg.Stages.Timing.Engine {
	case TimingEngineTatum, TimingEngineOpensta:
	default:
		problems = append(problems, fmt.Sprintf("stages.timing.engine %q is unsupported", cfg.Stages.Timing.Engine))
	}

	if size := strings.TrimSpace(cfg.Stages.DeviceSize); size != "" && !deviceSizePattern.MatchString(size) {
		problems = append(problems, fmt.Sprintf("stages.device_size %q must match XxY", size))
	}

	if strings.TrimSpace(cfg.Tools.Yosys.Path) == "" {
		problems = append(problems, "tools.yosys.path must be set")
	}
	if strings.TrimSpace(cfg.Tools.Vpr.Path) == "" {
		problems = append(problems, "tools.vpr.path must be set")
	}
	if cfg.Stages.Bitstream.Enabled && strings.TrimSpace(cfg.Tools.OpenFPGA.Path) == "" {
		problems = append(problems, "tools.openfpga.path must be set when bitstream generation is enabled")
	}
	if cfg.Stages.Timing.Engine == TimingEngineOpensta && strings.TrimSpace(cfg.Tools.Sta.Path) == "" {
		problems = append(problems, "tools.sta.path must be set when timing.engine is opensta")
	}

	if strings.TrimSpace(cfg.Architecture.VprArch) == "" && strings.TrimSpace(cfg.Project.Device) == "" {
		problems = append(problems, "either architecture.vpr_arch or project.device must be set")
	}
	if cfg.Stages.Bitstream.Enabled && strings.TrimSpace(cfg.Architecture.OpenFPGAArch) == "" && strings.TrimSpace(cfg.Project.Device) == "" {
		problems = append(problems, "bitstream generation requires architecture.openfpga_arch or project.device")
	}

	if cfg.Defaults.CommandTimeoutSeconds <= 0 {
		problems = append(problems, "defaults.command_timeout_seconds must be > 0")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
