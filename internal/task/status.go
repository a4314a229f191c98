package task

// Status is the orchestration-layer state of a single task. At most one task
// in a registry is InProgress at any time.
type Status int

const (
	StatusNone Status = iota
	StatusInProgress
	StatusSuccess
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusSuccess:
		return "success"
	case StatusFail:
		return "fail"
	default:
		return "none"
	}
}

// Finished reports whether the status is terminal for the current run.
func (s Status) Finished() bool {
	return s == StatusSuccess || s == StatusFail
}

type Type int

const (
	TypeRegular Type = iota
	TypeClean
	TypeSettings
	TypeButton
)

func (t Type) String() string {
	switch t {
	case TypeClean:
		return "clean"
	case TypeSettings:
		return "settings"
	case TypeButton:
		return "button"
	default:
		return "regular"
	}
}
