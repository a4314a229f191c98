package report

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// Report ids shared across stage managers.
const (
	ResourceReportID = "Report Resource Utilization"
	StatsReportID    = "Circuit Statistics Report"
	TimingReportID   = "Report Static Timing"
)

var (
	synthStatsMarker = "Printing statistics."
	synthModuleRe    = regexp.MustCompile(`^===\s+(\S+)\s+===`)
	synthNumberRe    = regexp.MustCompile(`^\s+Number of ([\w ]+):\s+(\d+)`)
	synthCellRe      = regexp.MustCompile(`^\s{5}(\S+)\s+(\d+)\s*$`)
	synthWarningRe   = regexp.MustCompile(`^Warning: (.*)`)
	synthErrorRe     = regexp.MustCompile(`^ERROR: (.*)`)
)

// SynthesisManager parses the synthesis tool log: the statistics block
// becomes the circuit statistics report and the per-cell breakdown becomes
// the resource utilization report.
type SynthesisManager struct {
	logPath string

	parsed bool
	stats  [][]string
	cells  [][]string
	msgs   map[int]Message
}

func NewSynthesisManager(logPath string) *SynthesisManager {
	return &SynthesisManager{logPath: logPath}
}

func (m *SynthesisManager) AvailableReportIDs() []string {
	return []string{StatsReportID, ResourceReportID}
}

func (m *SynthesisManager) CreateReport(id string) (*Report, error) {
	if err := m.parse(); err != nil {
		return nil, err
	}
	switch id {
	case StatsReportID:
		return &Report{
			Name: StatsReportID,
			DataReports: []DataReport{{
				Columns: []Column{{Name: "Statistic"}, {Name: "Value", Align: AlignCenter}},
				Rows:    m.stats,
			}},
		}, nil
	case ResourceReportID:
		return &Report{
			Name: ResourceReportID,
			DataReports: []DataReport{{
				Columns: []Column{{Name: "Cell"}, {Name: "Count", Align: AlignCenter}},
				Rows:    m.cells,
			}},
		}, nil
	default:
		return nil, &ErrUnknownReport{ID: id}
	}
}

func (m *SynthesisManager) Messages() (map[int]Message, error) {
	if err := m.parse(); err != nil {
		return nil, err
	}
	return m.msgs, nil
}

func (m *SynthesisManager) Invalidate() {
	m.parsed = false
	m.stats = nil
	m.cells = nil
	m.msgs = nil
}

func (m *SynthesisManager) parse() error {
	if m.parsed {
		return nil
	}
	m.parsed = true
	m.msgs = make(map[int]Message)

	f, err := os.Open(m.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	inStats := false
	lineNo := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		if match := synthWarningRe.FindStringSubmatch(line); match != nil {
			m.msgs[lineNo] = Message{Severity: SeverityWarning, Text: match[1]}
			continue
		}
		if match := synthErrorRe.FindStringSubmatch(line); match != nil {
			m.msgs[lineNo] = Message{Severity: SeverityError, Text: match[1]}
			continue
		}

		if strings.Contains(line, synthStatsMarker) {
			inStats = true
			continue
		}
		if !inStats {
			continue
		}
		if match := synthModuleRe.FindStringSubmatch(line); match != nil {
			m.stats = append(m.stats, []string{"Module", match[1]})
			continue
		}
		if match := synthNumberRe.FindStringSubmatch(line); match != nil {
			m.stats = append(m.stats, []string{"Number of " + match[1], match[2]})
			continue
		}
		if match := synthCellRe.FindStringSubmatch(line); match != nil {
			m.cells = append(m.cells, []string{match[1], match[2]})
		}
	}
	return sc.Err()
}
