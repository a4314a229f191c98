package config

import "fmt"

func DefaultTemplate() string {
	defaults := DefaultConfig()
	return fmt.Sprintf(`version: 1
project:
  name: "counter"
  top_module: "counter"
  design_files:
    - path: "rtl/counter.v"
      language: "verilog_2001"
  constraint_files: ["counter.sdc"]
tools:
  yosys:
    path: %q
  vpr:
    path: %q
  openfpga:
    path: %q
stages:
  synthesis:
    optimization: "none"
    lut_size: %d
  packing:
    netlist_lang: "blif"
  placement:
    pin_assign_method: "in_define_order"
  routing:
    channel_width: %d
  timing:
    engine: "tatum"
  bitstream:
    enabled: false
architecture:
  vpr_arch: "arch/k6_frac_N10_tileable_40nm.xml"
defaults:
  command_timeout_seconds: %d
`, defaults.Tools.Yosys.Path, defaults.Tools.Vpr.Path, defaults.Tools.OpenFPGA.Path,
		defaults.Stages.Synthesis.LutSize, defaults.Stages.Routing.ChannelWidth,
		defaults.Defaults.CommandTimeoutSeconds)
}
