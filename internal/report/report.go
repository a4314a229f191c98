// Package report turns external-tool log files into structured tables and
// per-line message indexes. Parsing is lazy: a manager scans its log on
// first use and caches the result until invalidated.
package report

import "fmt"

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Align hints how a presentation layer should lay out a column.
type Align string

const (
	AlignLeft   Align = ""
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Column heads one column of a report table.
type Column struct {
	Name  string `json:"name"`
	Align Align  `json:"align,omitempty"`
}

// DataReport is one table of a report: a histogram, a utilization table, a
// statistics block. Name is empty for a report's primary table.
type DataReport struct {
	Name    string     `json:"name,omitempty"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Report is a named collection of tables extracted from a log file. Most
// reports carry a single table; static timing adds one sub-table per slack
// histogram.
type Report struct {
	Name        string       `json:"name"`
	DataReports []DataReport `json:"data_reports"`
}

// Message is a notable log line, keyed by its one-based line number in the
// Messages map.
type Message struct {
	Severity Severity
	Text     string
}

// Manager produces the reports available for one pipeline stage.
type Manager interface {
	// AvailableReportIDs lists the report names this stage can produce.
	AvailableReportIDs() []string
	// CreateReport parses the stage log (cached) and returns the named
	// report. Unknown ids are an error; a missing or empty log yields a
	// report with no rows.
	CreateReport(id string) (*Report, error)
	// Messages returns warnings, errors and section markers found in the
	// log, keyed by line number.
	Messages() (map[int]Message, error)
	// Invalidate drops the cached parse so the next call rescans the log.
	Invalidate()
}

// ErrUnknownReport reports a CreateReport id the manager does not produce.
type ErrUnknownReport struct {
	ID string
}

func (e *ErrUnknownReport) Error() string {
	return fmt.Sprintf("unknown report %q", e.ID)
}
