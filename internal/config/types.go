package config

type Language string

const (
	LangVHDL1987       Language = "vhdl_1987"
	LangVHDL1993       Language = "vhdl_1993"
	LangVHDL2000       Language = "vhdl_2000"
	LangVHDL2008       Language = "vhdl_2008"
	LangVerilog1995    Language = "verilog_1995"
	LangVerilog2001    Language = "verilog_2001"
	LangSV2005         Language = "sv_2005"
	LangSV2009         Language = "sv_2009"
	LangSV2012         Language = "sv_2012"
	LangSV2017         Language = "sv_2017"
	LangVerilogNetlist Language = "verilog_netlist"
	LangBlif           Language = "blif"
	LangEblif          Language = "eblif"
)

// IsNetlist reports whether the language is a gate-level input that
// bypasses synthesis entirely.
func (l Language) IsNetlist() bool {
	switch l {
	case LangVerilogNetlist, LangBlif, LangEblif:
		return true
	default:
		return false
	}
}

type SynthesisOpt string

const (
	SynthOptNone  SynthesisOpt = "none"
	SynthOptArea  SynthesisOpt = "area"
	SynthOptDelay SynthesisOpt = "delay"
	SynthOptMixed SynthesisOpt = "mixed"
)

type NetlistLang string

const (
	NetlistBlif    NetlistLang = "blif"
	NetlistEdif    NetlistLang = "edif"
	NetlistVHDL    NetlistLang = "vhdl"
	NetlistVerilog NetlistLang = "verilog"
)

type PinAssignMethod string

const (
	PinAssignRandom        PinAssignMethod = "random"
	PinAssignInDefineOrder PinAssignMethod = "in_define_order"
	PinAssignFree          PinAssignMethod = "free"
)

type TimingEngine string

const (
	TimingEngineTatum   TimingEngine = "tatum"
	TimingEngineOpensta TimingEngine = "opensta"
)

type Config struct {
	Version      int          `yaml:"version"`
	Project      Project      `yaml:"project"`
	Tools        Tools        `yaml:"tools"`
	Stages       Stages       `yaml:"stages"`
	Architecture Architecture `yaml:"architecture"`
	Defaults     Defaults     `yaml:"defaults"`
}

type Project struct {
	Name            string       `yaml:"name"`
	Dir             string       `yaml:"dir"`
	TopModule       string       `yaml:"top_module"`
	Device          string       `yaml:"device,omitempty"`
	DesignFiles     []DesignFile `yaml:"design_files"`
	IncludePaths    []string     `yaml:"include_paths,omitempty"`
	LibraryPaths    []string     `yaml:"library_paths,omitempty"`
	Macros          []Macro      `yaml:"macros,omitempty"`
	ConstraintFiles []string     `yaml:"constraint_files,omitempty"`
}

type DesignFile struct {
	Path     string   `yaml:"path"`
	Language Language `yaml:"language"`
}

type Macro struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type Tools struct {
	Yosys       Tool   `yaml:"yosys"`
	Vpr         Tool   `yaml:"vpr"`
	OpenFPGA    Tool   `yaml:"openfpga"`
	Sta         Tool   `yaml:"sta,omitempty"`
	DeviceTable string `yaml:"device_table,omitempty"`
}

type Tool struct {
	Path       string `yaml:"path"`
	MinVersion string `yaml:"min_version,omitempty"`
}

type Stages struct {
	Synthesis  SynthesisStage `yaml:"synthesis"`
	Packing    PackingStage   `yaml:"packing"`
	Placement  PlacementStage `yaml:"placement"`
	Routing    RoutingStage   `yaml:"routing"`
	Timing     TimingStage    `yaml:"timing"`
	Bitstream  BitstreamStage `yaml:"bitstream"`
	DeviceSize string         `yaml:"device_size,omitempty"`
	PnrOptions string         `yaml:"pnr_options,omitempty"`
}

type SynthesisStage struct {
	Optimization   SynthesisOpt `yaml:"optimization"`
	LutSize        int          `yaml:"lut_size"`
	KeepAllSignals bool         `yaml:"keep_all_signals"`
	CustomScript   string       `yaml:"custom_script,omitempty"`
}

type PackingStage struct {
	NetlistLang NetlistLang `yaml:"netlist_lang"`
}

type PlacementStage struct {
	PinAssignMethod PinAssignMethod `yaml:"pin_assign_method"`
}

type RoutingStage struct {
	ChannelWidth int `yaml:"channel_width"`
}

type TimingStage struct {
	Engine TimingEngine `yaml:"engine"`
}

type BitstreamStage struct {
	Enabled      bool   `yaml:"enabled"`
	CustomScript string `yaml:"custom_script,omitempty"`
}

type Architecture struct {
	VprArch           string `yaml:"vpr_arch"`
	OpenFPGAArch      string `yaml:"openfpga_arch,omitempty"`
	BitstreamSettings string `yaml:"bitstream_settings,omitempty"`
	SimSettings       string `yaml:"sim_settings,omitempty"`
	RepackSettings    string `yaml:"repack_settings,omitempty"`
}

type Defaults struct {
	CommandTimeoutSeconds int `yaml:"command_timeout_seconds"`
}

func DefaultConfig() Config {
	return Config{
		Version: 1,
		Tools: Tools{
			Yosys:    Tool{Path: "yosys"},
			Vpr:      Tool{Path: "vpr"},
			OpenFPGA: Tool{Path: "openfpga.sh"},
			Sta:      Tool{Path: "sta"},
		},
		Stages: Stages{
			Synthesis: SynthesisStage{
				Optimization: SynthOptNone,
				LutSize:      6,
			},
			Packing:   PackingStage{NetlistLang: NetlistBlif},
			Placement: PlacementStage{PinAssignMethod: PinAssignInDefineOrder},
			Routing:   RoutingStage{ChannelWidth: 100},
			Timing:    TimingStage{Engine: TimingEngineTatum},
		},
		Defaults: Defaults{
			CommandTimeoutSeconds: 3600,
		},
	}
}
