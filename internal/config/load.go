package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type LoadOptions struct {
	ExplicitPath string
	WorkingDir   string
	Env          map[string]string
}

type fileConfig struct {
	Version      *int              `yaml:"version"`
	Project      *Project          `yaml:"project"`
	Tools        fileTools         `yaml:"tools"`
	Stages       fileStages        `yaml:"stages"`
	Architecture *Architecture     `yaml:"architecture"`
	Defaults     fileDefaults      `yaml:"defaults"`
}

type fileTools struct {
	Yosys       *Tool   `yaml:"yosys"`
	Vpr         *Tool   `yaml:"vpr"`
	OpenFPGA    *Tool   `yaml:"openfpga"`
	Sta         *Tool   `yaml:"sta"`
	DeviceTable *string `yaml:"device_table"`
}

type fileStages struct {
	Synthesis  *fileSynthesisStage `yaml:"synthesis"`
	Packing    *PackingStage       `yaml:"packing"`
	Placement  *PlacementStage     `yaml:"placement"`
	Routing    *RoutingStage       `yaml:"routing"`
	Timing     *TimingStage        `yaml:"timing"`
	Bitstream  *BitstreamStage     `yaml:"bitstream"`
	DeviceSize *string             `yaml:"device_size"`
	PnrOptions *string             `yaml:"pnr_options"`
}

type fileSynthesisStage struct {
	Optimization   *SynthesisOpt `yaml:"optimization"`
	LutSize        *int          `yaml:"lut_size"`
	KeepAllSignals *bool         `yaml:"keep_all_signals"`
	CustomScript   *string       `yaml:"custom_script"`
}

type fileDefaults struct {
	CommandTimeoutSeconds *int `yaml:"command_timeout_seconds"`
}

func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	cwd := opts.WorkingDir
	if strings.TrimSpace(cwd) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("resolve working directory: %w", err)
		}
		cwd = wd
	}

	env := opts.Env
	if env == nil {
		env = osEnvMap()
	}

	if explicit := strings.TrimSpace(opts.ExplicitPath); explicit != "" {
		if err := mergeFile(&cfg, explicit, true); err != nil {
			return Config{}, err
		}
	} else {
		userPath, err := UserConfigPath()
		if err != nil {
			return Config{}, err
		}
		if err := mergeFile(&cfg, userPath, false); err != nil {
			return Config{}, err
		}

		if err := mergeFile(&cfg, ProjectConfigPath(cwd), false); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg, env); err != nil {
		return Config{}, err
	}

	normalize(&cfg, cwd)
	return cfg, nil
}

func mergeFile(cfg *Config, path string, required bool) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file does not exist: %s", path)
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(payload, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Version != nil {
		cfg.Version = *fc.Version
	}
	if fc.Project != nil {
		cfg.Project = *fc.Project
		cfg.Project.Name = strings.TrimSpace(cfg.Project.Name)
		cfg.Project.Dir = strings.TrimSpace(cfg.Project.Dir)
		cfg.Project.TopModule = strings.TrimSpace(cfg.Project.TopModule)
		cfg.Project.Device = strings.TrimSpace(cfg.Project.Device)
	}
	if fc.Tools.Yosys != nil {
		cfg.Tools.Yosys = *fc.Tools.Yosys
	}
	if fc.Tools.Vpr != nil {
		cfg.Tools.Vpr = *fc.Tools.Vpr
	}
	if fc.Tools.OpenFPGA != nil {
		cfg.Tools.OpenFPGA = *fc.Tools.OpenFPGA
	}
	if fc.Tools.Sta != nil {
		cfg.Tools.Sta = *fc.Tools.Sta
	}
	if fc.Tools.DeviceTable != nil {
		cfg.Tools.DeviceTable = strings.TrimSpace(*fc.Tools.DeviceTable)
	}
	if fc.Stages.Synthesis != nil {
		if fc.Stages.Synthesis.Optimization != nil {
			cfg.Stages.Synthesis.Optimization = *fc.Stages.Synthesis.Optimization
		}
		if fc.Stages.Synthesis.LutSize != nil {
			cfg.Stages.Synthesis.LutSize = *fc.Stages.Synthesis.LutSize
		}
		if fc.Stages.Synthesis.KeepAllSignals != nil {
			cfg.Stages.Synthesis.KeepAllSignals = *fc.Stages.Synthesis.KeepAllSignals
		}
		if fc.Stages.Synthesis.CustomScript != nil {
			cfg.Stages.Synthesis.CustomScript = strings.TrimSpace(*fc.Stages.Synthesis.CustomScript)
		}
	}
	if fc.Stages.Packing != nil {
		cfg.Stages.Packing = *fc.Stages.Packing
	}
	if fc.Stages.Placement != nil {
		cfg.Stages.Placement = *fc.Stages.Placement
	}
	if fc.Stages.Routing != nil {
		cfg.Stages.Routing = *fc.Stages.Routing
	}
	if fc.Stages.Timing != nil {
		cfg.Stages.Timing = *fc.Stages.Timing
	}
	if fc.Stages.Bitstream != nil {
		cfg.Stages.Bitstream = *fc.Stages.Bitstream
	}
	if fc.Stages.DeviceSize != nil {
		cfg.Stages.DeviceSize = strings.TrimSpace(*fc.Stages.DeviceSize)
	}
	if fc.Stages.PnrOptions != nil {
		cfg.Stages.PnrOptions = strings.TrimSpace(*fc.Stages.PnrOptions)
	}
	if fc.Architecture != nil {
		cfg.Architecture = *fc.Architecture
	}
	if fc.Defaults.CommandTimeoutSeconds != nil {
		cfg.Defaults.CommandTimeoutSeconds = *fc.Defaults.CommandTimeoutSeconds
	}

	return nil
}

func applyEnvOverrides(cfg *Config, env map[string]string) error {
	if value := strings.TrimSpace(env["FPGAFLOW_YOSYS"]); value != "" {
		cfg.Tools.Yosys.Path = value
	}
	if value := strings.TrimSpace(env["FPGAFLOW_VPR"]); value != "" {
		cfg.Tools.Vpr.Path = value
	}
	if value := strings.TrimSpace(env["FPGAFLOW_OPENFPGA"]); value != "" {
		cfg.Tools.OpenFPGA.Path = value
	}
	if value := strings.TrimSpace(env["FPGAFLOW_CHANNEL_WIDTH"]); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid FPGAFLOW_CHANNEL_WIDTH value %q: %w", value, err)
		}
		cfg.Stages.Routing.ChannelWidth = parsed
	}
	if value := strings.TrimSpace(env["FPGAFLOW_DEVICE_SIZE"]); value != "" {
		cfg.Stages.DeviceSize = value
	}
	if value := strings.TrimSpace(env["FPGAFLOW_COMMAND_TIMEOUT_SECONDS"]); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid FPGAFLOW_COMMAND_TIMEOUT_SECONDS value %q: %w", value, err)
		}
		cfg.Defaults.CommandTimeoutSeconds = parsed
	}
	return nil
}

func normalize(cfg *Config, cwd string) {
	if strings.TrimSpace(cfg.Project.Dir) == "" {
		cfg.Project.Dir = cwd
	}
	if strings.TrimSpace(cfg.Project.TopModule) == "" && cfg.Project.Name != "" {
		cfg.Project.TopModule = cfg.Project.Name
	}
	for i := range cfg.Project.DesignFiles {
		file := &cfg.Project.DesignFiles[i]
		file.Path = strings.TrimSpace(file.Path)
		if file.Language == "" {
			file.Language = defaultLanguage(file.Path)
		}
	}
}

func defaultLanguage(path string) Language {
	switch {
	case strings.HasSuffix(path, ".vhd"), strings.HasSuffix(path, ".vhdl"):
		return LangVHDL2008
	case strings.HasSuffix(path, ".sv"):
		return LangSV2017
	case strings.HasSuffix(path, ".blif"):
		return LangBlif
	case strings.HasSuffix(path, ".eblif"):
		return LangEblif
	default:
		return LangVerilog2001
	}
}

func osEnvMap() map[string]string {
	result := map[string]string{}
	for _, pair := range os.Environ() {
		pieces := strings.SplitN(pair, "=", 2)
		if len(pieces) == 2 {
			result[pieces[0]] = pieces[1]
		}
	}
	return result
}
