package report

import (
	"bufio"
	"os"
	"regexp"
)

var (
	vprSectionRe    = regexp.MustCompile(`^# ([A-Z][\w &]+)$`)
	vprWarningRe    = regexp.MustCompile(`^Warning(?: \d+)?: (.*)`)
	vprErrorRe      = regexp.MustCompile(`^Error(?: \d+)?: (.*)`)
	vprDeviceUtilRe = regexp.MustCompile(`Device Utilization:\s+([0-9.]+)`)
	vprBlockUtilRe  = regexp.MustCompile(`Block Utilization:\s+([0-9.]+)\s+Logical Block:\s+(\S+)`)
	vprCircuitStats = regexp.MustCompile(`^Circuit Statistics:`)
	vprStatRe       = regexp.MustCompile(`^\s+([\w.][\w .]*?)\s*:\s+([0-9.]+)\s*$`)
	vprCritPathRe   = regexp.MustCompile(`Final critical path delay \(least slack\): ([0-9.eE+-]+) ns(?:, Fmax: ([0-9.eE+-]+) MHz)?`)
	vprSlackRe      = regexp.MustCompile(`Final (setup|hold) (Worst|Total) Negative Slack \(\w+\): ([0-9.eE+-]+) ns`)
	vprPeriodRe     = regexp.MustCompile(`Final (fanout-weighted )?(?:geomean non-virtual )?intra-domain period: ([0-9.eE+-]+) ns`)
	vprHistogramRe  = regexp.MustCompile(`^Final .*histogram:`)
	vprHistBucketRe = regexp.MustCompile(`^\s*(\[[^)]*\))\s+(\d+)`)
)

// VPRManager parses one place-and-route stage log. All stages share the
// device utilization and circuit statistics blocks; stages that run timing
// analysis also surface the final slack summary and its histograms.
type VPRManager struct {
	logPath    string
	withTiming bool

	parsed     bool
	util       [][]string
	stats      [][]string
	timing     [][]string
	histograms []DataReport
	msgs       map[int]Message
}

// NewVPRManager builds a manager for the given stage log. withTiming adds
// the static timing report to the available set.
func NewVPRManager(logPath string, withTiming bool) *VPRManager {
	return &VPRManager{logPath: logPath, withTiming: withTiming}
}

func (m *VPRManager) AvailableReportIDs() []string {
	ids := []string{ResourceReportID, StatsReportID}
	if m.withTiming {
		ids = append(ids, TimingReportID)
	}
	return ids
}

func (m *VPRManager) CreateReport(id string) (*Report, error) {
	if err := m.parse(); err != nil {
		return nil, err
	}
	switch id {
	case ResourceReportID:
		return &Report{
			Name: ResourceReportID,
			DataReports: []DataReport{{
				Columns: []Column{{Name: "Resource"}, {Name: "Utilization", Align: AlignCenter}},
				Rows:    m.util,
			}},
		}, nil
	case StatsReportID:
		return &Report{
			Name: StatsReportID,
			DataReports: []DataReport{{
				Columns: []Column{{Name: "Statistic"}, {Name: "Value", Align: AlignCenter}},
				Rows:    m.stats,
			}},
		}, nil
	case TimingReportID:
		if !m.withTiming {
			return nil, &ErrUnknownReport{ID: id}
		}
		tables := []DataReport{{
			Columns: []Column{{Name: "Metric"}, {Name: "Value", Align: AlignCenter}},
			Rows:    m.timing,
		}}
		tables = append(tables, m.histograms...)
		return &Report{Name: TimingReportID, DataReports: tables}, nil
	default:
		return nil, &ErrUnknownReport{ID: id}
	}
}

func (m *VPRManager) Messages() (map[int]Message, error) {
	if err := m.parse(); err != nil {
		return nil, err
	}
	return m.msgs, nil
}

func (m *VPRManager) Invalidate() {
	m.parsed = false
	m.util = nil
	m.stats = nil
	m.timing = nil
	m.histograms = nil
	m.msgs = nil
}

func (m *VPRManager) parse() error {
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
	inHistogram := false
	lineNo := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		if inHistogram {
			if match := vprHistBucketRe.FindStringSubmatch(line); match != nil {
				last := len(m.histograms) - 1
				m.histograms[last].Rows = append(m.histograms[last].Rows, []string{match[1], match[2]})
				continue
			}
			inHistogram = false
		}

		if match := vprSectionRe.FindStringSubmatch(line); match != nil {
			m.msgs[lineNo] = Message{Severity: SeverityInfo, Text: match[1]}
			inStats = false
			continue
		}
		if match := vprWarningRe.FindStringSubmatch(line); match != nil {
			m.msgs[lineNo] = Message{Severity: SeverityWarning, Text: match[1]}
			continue
		}
		if match := vprErrorRe.FindStringSubmatch(line); match != nil {
			m.msgs[lineNo] = Message{Severity: SeverityError, Text: match[1]}
			continue
		}

		if match := vprDeviceUtilRe.FindStringSubmatch(line); match != nil {
			m.util = append(m.util, []string{"Device", match[1]})
			continue
		}
		if match := vprBlockUtilRe.FindStringSubmatch(line); match != nil {
			m.util = append(m.util, []string{match[2], match[1]})
			continue
		}

		if vprCircuitStats.MatchString(line) {
			inStats = true
			continue
		}
		if inStats {
			if match := vprStatRe.FindStringSubmatch(line); match != nil {
				m.stats = append(m.stats, []string{match[1], match[2]})
				continue
			}
			inStats = false
		}

		if !m.withTiming {
			continue
		}
		if match := vprCritPathRe.FindStringSubmatch(line); match != nil {
			m.timing = append(m.timing, []string{"Critical path delay (least slack)", match[1] + " ns"})
			if match[2] != "" {
				m.timing = append(m.timing, []string{"FMax", match[2] + " MHz"})
			}
			continue
		}
		if match := vprSlackRe.FindStringSubmatch(line); match != nil {
			m.timing = append(m.timing, []string{slackField(match[1], match[2]), match[3] + " ns"})
			continue
		}
		if match := vprPeriodRe.FindStringSubmatch(line); match != nil {
			field := "Intra-domain period"
			if match[1] != "" {
				field = "Fanout-weighted intra-domain period"
			}
			m.timing = append(m.timing, []string{field, match[2] + " ns"})
			continue
		}
		if vprHistogramRe.MatchString(line) {
			m.histograms = append(m.histograms, DataReport{
				Name:    line,
				Columns: []Column{{Name: "Range"}, {Name: "Count", Align: AlignCenter}},
			})
			inHistogram = true
		}
	}
	return sc.Err()
}

// slackField labels a slack summary row the way the timing report names
// its fields: Setup/Hold crossed with WNS/TNS.
func slackField(corner, kind string) string {
	name := "Setup"
	if corner == "hold" {
		name = "Hold"
	}
	if kind == "Total" {
		return name + " TNS"
	}
	return name + " WNS"
}
