package compiler

// State tracks how far the design has progressed through the flow. Timing
// and power analysis inspect results without advancing it.
type State int

const (
	StateNotStarted State = iota
	StateIPGenerated
	StateSynthesized
	StatePacked
	StateGloballyPlaced
	StatePlaced
	StateRouted
	StateBitstreamGenerated
)

func (s State) String() string {
	switch s {
	case StateIPGenerated:
		return "ip_generated"
	case StateSynthesized:
		return "synthesized"
	case StatePacked:
		return "packed"
	case StateGloballyPlaced:
		return "globally_placed"
	case StatePlaced:
		return "placed"
	case StateRouted:
		return "routed"
	case StateBitstreamGenerated:
		return "bitstream_generated"
	default:
		return "not_started"
	}
}
