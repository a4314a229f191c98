package task

// ID identifies a task in the catalog. Values are stable: they are used in
// persisted run records and on the command line (--task).
type ID uint

const (
	IPGenerate ID = iota
	Analysis
	AnalysisClean
	Synthesis
	SynthesisClean
	SynthesisSettings
	SynthesisWriteNetlist
	SynthesisTimingReport
	Packing
	PackingClean
	GlobalPlacement
	GlobalPlacementClean
	Placement
	PlacementClean
	PlacementSettings
	PlacementWriteNetlist
	PlacementTimingReport
	Routing
	RoutingClean
	RoutingSettings
	RoutingWriteNetlist
	TimingSignOff
	TimingSignOffClean
	Power
	PowerClean
	Bitstream
	BitstreamClean
	PlaceAndRouteView
)

// InvalidID is returned by lookups that find no task.
const InvalidID = ^ID(0)

// StageOrder is the fixed pipeline order used when running the whole flow.
var StageOrder = []ID{
	IPGenerate,
	Analysis,
	Synthesis,
	Packing,
	GlobalPlacement,
	Placement,
	Routing,
	TimingSignOff,
	Power,
	Bitstream,
}

var idNames = map[ID]string{
	IPGenerate:            "ip_generate",
	Analysis:              "analysis",
	AnalysisClean:         "analysis_clean",
	Synthesis:             "synthesis",
	SynthesisClean:        "synthesis_clean",
	SynthesisSettings:     "synthesis_settings",
	SynthesisWriteNetlist: "synthesis_write_netlist",
	SynthesisTimingReport: "synthesis_timing_report",
	Packing:               "packing",
	PackingClean:          "packing_clean",
	GlobalPlacement:       "global_placement",
	GlobalPlacementClean:  "global_placement_clean",
	Placement:             "placement",
	PlacementClean:        "placement_clean",
	PlacementSettings:     "placement_settings",
	PlacementWriteNetlist: "placement_write_netlist",
	PlacementTimingReport: "placement_timing_report",
	Routing:               "routing",
	RoutingClean:          "routing_clean",
	RoutingSettings:       "routing_settings",
	RoutingWriteNetlist:   "routing_write_netlist",
	TimingSignOff:         "timing_analysis",
	TimingSignOffClean:    "timing_analysis_clean",
	Power:                 "power",
	PowerClean:            "power_clean",
	Bitstream:             "bitstream",
	BitstreamClean:        "bitstream_clean",
	PlaceAndRouteView:     "place_and_route_view",
}

func (id ID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return "unknown"
}

// ParseID resolves a command-line task name to its ID.
func ParseID(name string) (ID, bool) {
	for id, n := range idNames {
		if n == name {
			return id, true
		}
	}
	return InvalidID, false
}

// KnownIDs returns all catalog ids in ascending order.
func KnownIDs() []ID {
	ids := make([]ID, 0, len(idNames))
	for id := IPGenerate; id <= PlaceAndRouteView; id++ {
		ids = append(ids, id)
	}
	return ids
}
