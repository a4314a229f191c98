package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jaa/fpgaflow/internal/config"
	"github.com/jaa/fpgaflow/internal/task"
)

// Toolchain supplies one stage driver per pipeline stage. The drivers are
// selected once at configuration time; OpenFPGAToolchain is the yosys/vpr/
// openfpga flow.
type Toolchain interface {
	Drivers() []StageDriver
}

type OpenFPGAToolchain struct{}

func (OpenFPGAToolchain) Drivers() []StageDriver {
	return []StageDriver{
		ipGenerateStage{},
		analysisStage{},
		synthesizeStage{},
		packingStage{},
		globalPlacementStage{},
		placementStage{},
		routingStage{},
		timingAnalysisStage{},
		powerAnalysisStage{},
		bitstreamStage{},
	}
}

// https://github.com/lnis-uofu/OpenFPGA/blob/master/openfpga_flow/misc/ys_tmpl_yosys_vpr_flow.ys
const basicYosysScript = `# Yosys synthesis script for ${TOP_MODULE}
# Read source files
${READ_DESIGN_FILES}

# Technology mapping
hierarchy -top ${TOP_MODULE}
proc
${KEEP_NAMES}
techmap -D NO_LUT -map +/adff2dff.v

# Synthesis
flatten
opt_expr
opt_clean
check
opt -nodffe -nosdff
fsm
opt -nodffe -nosdff
wreduce
peepopt
opt_clean
opt -nodffe -nosdff
memory -nomap
opt_clean
opt -fast -full -nodffe -nosdff
memory_map
opt -full -nodffe -nosdff
techmap
opt -fast -nodffe -nosdff
clean
${OPTIMIZATION}
# LUT mapping
abc -lut ${LUT_SIZE}

# Check
synth -run check

# Clean and output blif
opt_clean -purge
write_blif ${OUTPUT_BLIF}
write_verilog -noexpr -nodec -defparam -norename ${OUTPUT_VERILOG}
`

const basicOpenFPGAScript = `vpr ${VPR_ARCH_FILE} ${VPR_TESTBENCH_BLIF} --clock_modeling ideal${OPENFPGA_VPR_DEVICE_LAYOUT} --net_file ${NET_FILE} --place_file ${PLACE_FILE} --route_file ${ROUTE_FILE} --route_chan_width ${OPENFPGA_VPR_ROUTE_CHAN_WIDTH} --sdc_file ${SDC_FILE} --absorb_buffer_luts off --write_rr_graph rr_graph.openfpga.xml --constant_net_method route --circuit_format ${OPENFPGA_VPR_CIRCUIT_FORMAT} --analysis

# Read OpenFPGA architecture definition
read_openfpga_arch -f ${OPENFPGA_ARCH_FILE}

# Read OpenFPGA simulation settings
read_openfpga_simulation_setting -f ${OPENFPGA_SIM_SETTING_FILE}

read_openfpga_bitstream_setting -f ${OPENFPGA_BITSTREAM_SETTING_FILE}

# Annotate the OpenFPGA architecture to VPR data base
link_openfpga_arch --sort_gsb_chan_node_in_edges

# Apply fix-up to clustering nets based on routing results
pb_pin_fixup --verbose

# Apply fix-up to Look-Up Table truth tables based on packing results
lut_truth_table_fixup

# Build the module graph
build_fabric --compress_routing --duplicate_grid_pin

# Repack the netlist to physical pbs
repack --design_constraints ${OPENFPGA_REPACK_CONSTRAINTS}

build_architecture_bitstream

build_fabric_bitstream
write_fabric_bitstream --format plain_text --file fabric_bitstream.bit
write_io_mapping -f PinMapping.xml

# Finish and exit OpenFPGA
exit
`

// gateLevelInput returns the netlist design file when the project is a
// gate-level design, empty otherwise.
func gateLevelInput(c *Compiler) string {
	for _, df := range c.cfg.Project.DesignFiles {
		if df.Language.IsNetlist() {
			return c.Resolve(df.Path)
		}
	}
	return ""
}

// vprNetlistFile is the netlist handed to the place-and-route tool: the
// synthesized netlist in the configured packing format, or the gate-level
// input when the design skipped synthesis.
func vprNetlistFile(c *Compiler) string {
	if netlist := gateLevelInput(c); netlist != "" {
		return netlist
	}
	prefix := c.ProjectName() + "_post_synth"
	switch c.cfg.Stages.Packing.NetlistLang {
	case config.NetlistVerilog:
		return prefix + ".v"
	case config.NetlistEdif:
		return prefix + ".edif"
	case config.NetlistVHDL:
		return prefix + ".vhd"
	default:
		return prefix + ".blif"
	}
}

// netlistFilePrefix names the pack/place/route artifacts, which the
// place-and-route tool derives from its input netlist.
func netlistFilePrefix(c *Compiler) string {
	if netlist := gateLevelInput(c); netlist != "" {
		base := filepath.Base(netlist)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return c.ProjectName() + "_post_synth"
}

// baseVprArgs is the shared place-and-route command line; each stage
// appends its own mode flag.
func baseVprArgs(c *Compiler) []string {
	args := []string{
		c.VprArchFile(),
		vprNetlistFile(c),
		"--sdc_file", c.ProjectName() + "_openfpga.sdc",
		"--route_chan_width", strconv.Itoa(c.cfg.Stages.Routing.ChannelWidth),
	}
	if size := c.DeviceSize(); size != "" {
		args = append(args, "--device", size)
	}
	args = append(args, strings.Fields(c.cfg.Stages.PnrOptions)...)
	return args
}

func requireDesign(c *Compiler) error {
	if !c.HasDesign() {
		return ErrNoDesign
	}
	return nil
}

type ipGenerateStage struct{}

func (ipGenerateStage) TaskID() task.ID { return task.IPGenerate }
func (ipGenerateStage) Name() string    { return "ip_generate" }

func (ipGenerateStage) Validate(c *Compiler) error {
	if !c.HasDesign() {
		c.CreateDefaultDesign()
	}
	return nil
}

func (ipGenerateStage) Build(c *Compiler) (*Invocation, error) {
	return &Invocation{
		Message:   fmt.Sprintf("Design %s IPs are generated.", c.ProjectName()),
		DoneState: StateIPGenerated,
		Advances:  true,
	}, nil
}

func (ipGenerateStage) Changed(*Compiler, *Invocation) (bool, error) { return true, nil }

type analysisStage struct{}

func (analysisStage) TaskID() task.ID { return task.Analysis }
func (analysisStage) Name() string    { return "analysis" }

func (analysisStage) Validate(c *Compiler) error { return requireDesign(c) }

func (analysisStage) Build(c *Compiler) (*Invocation, error) {
	return &Invocation{
		Message: fmt.Sprintf("Design %s is analyzed.", c.ProjectName()),
	}, nil
}

func (analysisStage) Changed(*Compiler, *Invocation) (bool, error) { return true, nil }

type synthesizeStage struct{}

func (synthesizeStage) TaskID() task.ID { return task.Synthesis }
func (synthesizeStage) Name() string    { return "synthesis" }

func (synthesizeStage) Validate(c *Compiler) error {
	if !c.HasDesign() {
		c.CreateDefaultDesign()
	}
	return nil
}

func (s synthesizeStage) Build(c *Compiler) (*Invocation, error) {
	if gateLevelInput(c) != "" {
		return &Invocation{
			Message: "Skipping synthesis, gate-level design.",
		}, nil
	}

	script, err := s.renderScript(c)
	if err != nil {
		return nil, err
	}

	proj := c.ProjectName()
	return &Invocation{
		Bin:  c.cfg.Tools.Yosys.Path,
		Args: []string{"-s", proj + ".ys"},
		SideFiles: []SideFile{
			{Path: c.RunPath(proj + ".ys"), Content: script},
		},
		Purge: []string{
			c.RunPath(proj + "_post_synth.blif"),
			c.RunPath(proj + "_post_synth.v"),
		},
		CmdFile:   c.RunPath(proj + "_synth.cmd"),
		LogFile:   c.RunPath("synthesis.rpt"),
		DoneState: StateSynthesized,
		Advances:  true,
	}, nil
}

// renderScript builds the synthesis script from the template. Every
// placeholder is resolved through one ordered table; an unresolved token is
// a hard error.
func (synthesizeStage) renderScript(c *Compiler) (string, error) {
	template := basicYosysScript
	if custom := c.cfg.Stages.Synthesis.CustomScript; custom != "" {
		data, err := os.ReadFile(c.Resolve(custom))
		if err != nil {
			return "", fmt.Errorf("custom synthesis script: %w", err)
		}
		template = string(data)
	}

	var macros strings.Builder
	macros.WriteString("verilog_defines ")
	for _, m := range c.cfg.Project.Macros {
		fmt.Fprintf(&macros, "-D%s=%s ", m.Name, m.Value)
	}
	macros.WriteString("\n")

	var includes strings.Builder
	for _, p := range c.cfg.Project.IncludePaths {
		fmt.Fprintf(&includes, "-I%s ", c.Resolve(p))
	}

	options := ""
	var files strings.Builder
	for _, df := range c.cfg.Project.DesignFiles {
		switch df.Language {
		case config.LangVHDL1987, config.LangVHDL1993, config.LangVHDL2000, config.LangVHDL2008:
			return "", fmt.Errorf("unsupported language %s for the default synthesis parser", df.Language)
		case config.LangSV2009, config.LangSV2012, config.LangSV2017:
			options = "-sv"
		}
		files.WriteString(c.Resolve(df.Path))
		files.WriteString(" ")
	}

	var keeps strings.Builder
	if c.cfg.Stages.Synthesis.KeepAllSignals {
		keeps.WriteString("setattr -set keep 1 w:\\*\n")
	}
	for _, keep := range c.cons.Keeps() {
		fmt.Fprintf(&keeps, "setattr -set keep 1 %s\n", keep)
	}

	proj := c.ProjectName()
	return expandScript(template, []Replacement{
		{"${READ_DESIGN_FILES}", macros.String() + "read_verilog ${READ_VERILOG_OPTIONS} ${INCLUDE_PATHS} ${VERILOG_FILES}"},
		{"${READ_VERILOG_OPTIONS}", options},
		{"${INCLUDE_PATHS}", strings.TrimSpace(includes.String())},
		{"${VERILOG_FILES}", strings.TrimSpace(files.String())},
		{"${TOP_MODULE}", c.cfg.Project.TopModule},
		{"${OUTPUT_BLIF}", proj + "_post_synth.blif"},
		{"${OUTPUT_VERILOG}", proj + "_post_synth.v"},
		{"${KEEP_NAMES}", keeps.String()},
		{"${OPTIMIZATION}", optimizationPass(c.cfg.Stages.Synthesis.Optimization)},
		{"${LUT_SIZE}", strconv.Itoa(c.cfg.Stages.Synthesis.LutSize)},
	})
}

func optimizationPass(opt config.SynthesisOpt) string {
	switch opt {
	case config.SynthOptArea:
		return "opt -full\n"
	case config.SynthOptDelay, config.SynthOptMixed:
		return "opt\n"
	default:
		return ""
	}
}

// Changed skips a rerun only when the synthesized netlist is newer than
// every input and the script on disk matches the fresh render.
func (synthesizeStage) Changed(c *Compiler, inv *Invocation) (bool, error) {
	if inv.Bin == "" {
		return true, nil
	}
	if designChanged(c) {
		return true, nil
	}
	for _, sf := range inv.SideFiles {
		if filepath.Ext(sf.Path) == ".ys" {
			return scriptChanged(sf.Path, sf.Content), nil
		}
	}
	return true, nil
}

type packingStage struct{}

func (packingStage) TaskID() task.ID { return task.Packing }
func (packingStage) Name() string    { return "packing" }

func (packingStage) Validate(c *Compiler) error { return requireDesign(c) }

func (packingStage) Build(c *Compiler) (*Invocation, error) {
	proj := c.ProjectName()
	return &Invocation{
		Bin:  c.cfg.Tools.Vpr.Path,
		Args: append(baseVprArgs(c), "--pack"),
		SideFiles: []SideFile{
			{Path: c.RunPath(proj + "_openfpga.sdc"), Content: c.cons.VprSDC()},
		},
		CmdFile:   c.RunPath(proj + "_pack.cmd"),
		LogFile:   c.RunPath("packing.rpt"),
		DoneState: StatePacked,
		Advances:  true,
	}, nil
}

func (packingStage) Changed(*Compiler, *Invocation) (bool, error) { return true, nil }

type globalPlacementStage struct{}

func (globalPlacementStage) TaskID() task.ID { return task.GlobalPlacement }
func (globalPlacementStage) Name() string    { return "global_placement" }

func (globalPlacementStage) Validate(c *Compiler) error {
	if err := requireDesign(c); err != nil {
		return err
	}
	switch c.State() {
	case StatePacked, StateGloballyPlaced, StatePlaced:
		return nil
	}
	return &StateError{Stage: "global_placement", Need: "packed", State: c.State()}
}

func (globalPlacementStage) Build(c *Compiler) (*Invocation, error) {
	return &Invocation{
		Message:   fmt.Sprintf("Design %s is globally placed.", c.ProjectName()),
		DoneState: StateGloballyPlaced,
		Advances:  true,
	}, nil
}

func (globalPlacementStage) Changed(*Compiler, *Invocation) (bool, error) { return true, nil }

type placementStage struct{}

func (placementStage) TaskID() task.ID { return task.Placement }
func (placementStage) Name() string    { return "placement" }

func (placementStage) Validate(c *Compiler) error {
	if err := requireDesign(c); err != nil {
		return err
	}
	switch c.State() {
	case StatePacked, StateGloballyPlaced, StatePlaced:
		return nil
	}
	return &StateError{Stage: "placement", Need: "packed or globally placed", State: c.State()}
}

func (placementStage) Build(c *Compiler) (*Invocation, error) {
	proj := c.ProjectName()
	args := append(baseVprArgs(c), "--place")
	// in_define_order leaves pin placement to the constraint file order,
	// the tool's default.
	switch c.cfg.Stages.Placement.PinAssignMethod {
	case config.PinAssignRandom:
		args = append(args, "--fix_pins", "random")
	case config.PinAssignFree:
		args = append(args, "--fix_pins", "free")
	}
	return &Invocation{
		Bin:       c.cfg.Tools.Vpr.Path,
		Args:      args,
		CmdFile:   c.RunPath(proj + "_place.cmd"),
		LogFile:   c.RunPath("placement.rpt"),
		DoneState: StatePlaced,
		Advances:  true,
	}, nil
}

func (placementStage) Changed(*Compiler, *Invocation) (bool, error) { return true, nil }

type routingStage struct{}

func (routingStage) TaskID() task.ID { return task.Routing }
func (routingStage) Name() string    { return "routing" }

func (routingStage) Validate(c *Compiler) error {
	if err := requireDesign(c); err != nil {
		return err
	}
	if c.State() != StatePlaced {
		return &StateError{Stage: "routing", Need: "placed", State: c.State()}
	}
	return nil
}

func (routingStage) Build(c *Compiler) (*Invocation, error) {
	proj := c.ProjectName()
	return &Invocation{
		Bin:       c.cfg.Tools.Vpr.Path,
		Args:      append(baseVprArgs(c), "--route"),
		CmdFile:   c.RunPath(proj + "_route.cmd"),
		LogFile:   c.RunPath("routing.rpt"),
		DoneState: StateRouted,
		Advances:  true,
	}, nil
}

func (routingStage) Changed(*Compiler, *Invocation) (bool, error) { return true, nil }

const basicStaScript = `read_verilog ${INPUT_NETLIST}
link_design ${TOP_MODULE}
read_sdc ${SDC_FILE}
report_checks -path_delay min_max
report_wns
report_tns
exit
`

type timingAnalysisStage struct{}

func (timingAnalysisStage) TaskID() task.ID { return task.TimingSignOff }
func (timingAnalysisStage) Name() string    { return "timing_analysis" }

func (timingAnalysisStage) Validate(c *Compiler) error { return requireDesign(c) }

func (timingAnalysisStage) Build(c *Compiler) (*Invocation, error) {
	proj := c.ProjectName()
	if c.cfg.Stages.Timing.Engine == config.TimingEngineOpensta {
		script, err := expandScript(basicStaScript, []Replacement{
			{"${INPUT_NETLIST}", proj + "_post_synth.v"},
			{"${TOP_MODULE}", c.cfg.Project.TopModule},
			{"${SDC_FILE}", proj + "_openfpga.sdc"},
		})
		if err != nil {
			return nil, err
		}
		return &Invocation{
			Bin:  c.cfg.Tools.Sta.Path,
			Args: []string{proj + "_sta.tcl"},
			SideFiles: []SideFile{
				{Path: c.RunPath(proj + "_sta.tcl"), Content: script},
			},
			CmdFile: c.RunPath(proj + "_sta.cmd"),
			LogFile: c.RunPath("timing_analysis.rpt"),
		}, nil
	}
	return &Invocation{
		Bin:     c.cfg.Tools.Vpr.Path,
		Args:    append(baseVprArgs(c), "--analysis"),
		CmdFile: c.RunPath(proj + "_sta.cmd"),
		LogFile: c.RunPath("timing_analysis.rpt"),
	}, nil
}

func (timingAnalysisStage) Changed(*Compiler, *Invocation) (bool, error) { return true, nil }

type powerAnalysisStage struct{}

func (powerAnalysisStage) TaskID() task.ID { return task.Power }
func (powerAnalysisStage) Name() string    { return "power" }

func (powerAnalysisStage) Validate(c *Compiler) error { return requireDesign(c) }

func (powerAnalysisStage) Build(c *Compiler) (*Invocation, error) {
	return &Invocation{
		Bin:     c.cfg.Tools.Vpr.Path,
		Args:    append(baseVprArgs(c), "--analysis"),
		LogFile: c.RunPath("power.rpt"),
	}, nil
}

func (powerAnalysisStage) Changed(*Compiler, *Invocation) (bool, error) { return true, nil }

type bitstreamStage struct{}

func (bitstreamStage) TaskID() task.ID { return task.Bitstream }
func (bitstreamStage) Name() string    { return "bitstream" }

func (bitstreamStage) Validate(c *Compiler) error {
	if err := requireDesign(c); err != nil {
		return err
	}
	if c.State() != StateRouted {
		return &StateError{Stage: "bitstream", Need: "routed", State: c.State()}
	}
	return nil
}

func (s bitstreamStage) Build(c *Compiler) (*Invocation, error) {
	if !c.cfg.Stages.Bitstream.Enabled {
		return &Invocation{
			Message:   fmt.Sprintf("Design %s bitstream is generated.", c.ProjectName()),
			DoneState: StateBitstreamGenerated,
			Advances:  true,
		}, nil
	}

	script, err := s.renderScript(c)
	if err != nil {
		return nil, err
	}

	proj := c.ProjectName()
	return &Invocation{
		Bin:  c.cfg.Tools.OpenFPGA.Path,
		Args: []string{"-f", proj + ".openfpga"},
		SideFiles: []SideFile{
			{Path: c.RunPath(proj + ".openfpga"), Content: script},
		},
		Purge: []string{
			c.RunPath("fabric_bitstream.bit"),
			c.RunPath("fabric_independent_bitstream.xml"),
		},
		CmdFile:   c.RunPath(proj + "_bitstream.cmd"),
		LogFile:   c.RunPath("bitstream.rpt"),
		DoneState: StateBitstreamGenerated,
		Advances:  true,
	}, nil
}

func (bitstreamStage) renderScript(c *Compiler) (string, error) {
	template := basicOpenFPGAScript
	if custom := c.cfg.Stages.Bitstream.CustomScript; custom != "" {
		data, err := os.ReadFile(c.Resolve(custom))
		if err != nil {
			return "", fmt.Errorf("custom bitstream script: %w", err)
		}
		template = string(data)
	}

	proj := c.ProjectName()
	netlistPrefix := netlistFilePrefix(c)

	deviceLayout := ""
	if size := c.DeviceSize(); size != "" {
		deviceLayout = " --device " + size
	}

	return expandScript(template, []Replacement{
		{"${VPR_ARCH_FILE}", c.VprArchFile()},
		{"${VPR_TESTBENCH_BLIF}", vprNetlistFile(c)},
		{"${NET_FILE}", netlistPrefix + ".net"},
		{"${PLACE_FILE}", netlistPrefix + ".place"},
		{"${ROUTE_FILE}", netlistPrefix + ".route"},
		{"${SDC_FILE}", proj + "_openfpga.sdc"},
		{"${OPENFPGA_VPR_DEVICE_LAYOUT}", deviceLayout},
		{"${OPENFPGA_VPR_ROUTE_CHAN_WIDTH}", strconv.Itoa(c.cfg.Stages.Routing.ChannelWidth)},
		{"${OPENFPGA_VPR_CIRCUIT_FORMAT}", "blif"},
		{"${OPENFPGA_ARCH_FILE}", c.OpenFPGAArchFile()},
		{"${OPENFPGA_SIM_SETTING_FILE}", c.SimSettingFile()},
		{"${OPENFPGA_BITSTREAM_SETTING_FILE}", c.BitstreamSettingFile()},
		{"${OPENFPGA_REPACK_CONSTRAINTS}", c.RepackConstraintsFile()},
	})
}

func (bitstreamStage) Changed(*Compiler, *Invocation) (bool, error) { return true, nil }
