package task

import (
	"github.com/google/uuid"

	"github.com/jaa/fpgaflow/internal/report"
)

// Manager owns the task catalog and drives runs through it. Runs are
// strictly sequential: the run stack holds the tasks still to execute, the
// head is triggered, and its terminal status decides whether the stack
// advances or drains.
type Manager struct {
	tasks map[ID]*Task

	// queue is the canonical pipeline ordering, stage tasks interleaved
	// with their Clean sub-tasks. Downstream invalidation walks it.
	queue []queueEntry

	runStack  []*Task
	taskCount int
	counter   int
	runID     string

	reports map[ID]report.Manager

	startedListeners  []func(runID string)
	doneListeners     []func(runID string)
	progressListeners []func(done, total int, message string)
	statusListeners   []func(id ID, status Status)
}

type queueEntry struct {
	id ID
	t  *Task
}

// NewManager builds the full task catalog with its sub-tasks and default
// log-file bindings. All tasks start invalid; commands are bound later.
func NewManager() *Manager {
	m := &Manager{
		tasks:   make(map[ID]*Task),
		reports: make(map[ID]report.Manager),
	}

	m.add(IPGenerate, New("IP Generate", TypeRegular))
	m.add(Analysis, New("Analysis", TypeRegular))
	m.add(AnalysisClean, New("Clean", TypeClean))
	m.add(Synthesis, New("Synthesis", TypeRegular))
	m.add(SynthesisClean, New("Clean", TypeClean))
	m.add(SynthesisSettings, New("Edit Settings", TypeSettings))
	m.add(SynthesisWriteNetlist, New("Write Netlist", TypeRegular))
	m.add(SynthesisTimingReport, New("Timing Report", TypeRegular))
	m.add(Packing, New("Packing", TypeRegular))
	m.add(PackingClean, New("Clean", TypeClean))
	m.add(GlobalPlacement, New("Global Placement", TypeRegular))
	m.add(GlobalPlacementClean, New("Clean", TypeClean))
	m.add(Placement, New("Placement", TypeRegular))
	m.add(PlacementClean, New("Clean", TypeClean))
	m.add(PlacementSettings, New("Edit Settings", TypeSettings))
	m.add(PlacementWriteNetlist, New("Write Netlist", TypeRegular))
	m.add(PlacementTimingReport, New("Timing Report", TypeRegular))
	m.add(Routing, New("Routing", TypeRegular))
	m.add(RoutingClean, New("Clean", TypeClean))
	m.add(RoutingSettings, New("Edit Settings", TypeSettings))
	m.add(RoutingWriteNetlist, New("Write Netlist", TypeRegular))
	m.add(TimingSignOff, New("Timing Analysis", TypeRegular))
	m.add(TimingSignOffClean, New("Clean", TypeClean))
	m.add(Power, New("Power", TypeRegular))
	m.add(PowerClean, New("Clean", TypeClean))
	m.add(Bitstream, New("Bitstream", TypeRegular))
	m.add(BitstreamClean, New("Clean", TypeClean))
	m.add(PlaceAndRouteView, New("P&R View", TypeButton))

	m.attachSubTask(Analysis, AnalysisClean)
	m.attachSubTask(Synthesis, SynthesisClean)
	m.attachSubTask(Synthesis, SynthesisSettings)
	m.attachSubTask(Synthesis, SynthesisWriteNetlist)
	m.attachSubTask(Synthesis, SynthesisTimingReport)
	m.attachSubTask(Packing, PackingClean)
	m.attachSubTask(GlobalPlacement, GlobalPlacementClean)
	m.attachSubTask(Placement, PlacementClean)
	m.attachSubTask(Placement, PlacementSettings)
	m.attachSubTask(Placement, PlacementWriteNetlist)
	m.attachSubTask(Placement, PlacementTimingReport)
	m.attachSubTask(Routing, RoutingClean)
	m.attachSubTask(Routing, RoutingSettings)
	m.attachSubTask(Routing, RoutingWriteNetlist)
	m.attachSubTask(TimingSignOff, TimingSignOffClean)
	m.attachSubTask(Power, PowerClean)
	m.attachSubTask(Bitstream, BitstreamClean)

	m.Task(IPGenerate).SetLogFile("ip_generate.rpt")
	m.Task(Analysis).SetLogFile("analysis.rpt")
	m.Task(Synthesis).SetLogFile("synthesis.rpt")
	m.Task(Packing).SetLogFile("packing.rpt")
	m.Task(GlobalPlacement).SetLogFile("global_placement.rpt")
	m.Task(Placement).SetLogFile("placement.rpt")
	m.Task(Routing).SetLogFile("routing.rpt")
	m.Task(TimingSignOff).SetLogFile("timing_analysis.rpt")
	m.Task(Power).SetLogFile("power.rpt")
	m.Task(Bitstream).SetLogFile("bitstream.rpt")

	for _, id := range StageOrder {
		m.queue = append(m.queue, queueEntry{id, m.tasks[id]})
		if clean, ok := cleanOf[id]; ok {
			m.queue = append(m.queue, queueEntry{clean, m.tasks[clean]})
		}
	}

	for id, t := range m.tasks {
		id, t := id, t
		t.OnStatusChanged(func(_ *Task, s Status) {
			m.invalidateReport(id)
			for _, fn := range m.statusListeners {
				fn(id, s)
			}
			m.runNext(t, s)
		})
	}
	return m
}

var cleanOf = map[ID]ID{
	Analysis:        AnalysisClean,
	Synthesis:       SynthesisClean,
	Packing:         PackingClean,
	GlobalPlacement: GlobalPlacementClean,
	Placement:       PlacementClean,
	Routing:         RoutingClean,
	TimingSignOff:   TimingSignOffClean,
	Power:           PowerClean,
	Bitstream:       BitstreamClean,
}

func (m *Manager) add(id ID, t *Task) {
	m.tasks[id] = t
}

func (m *Manager) attachSubTask(parent, child ID) {
	m.tasks[parent].AppendSubTask(m.tasks[child])
}

// Task returns the catalog entry for id, or nil.
func (m *Manager) Task(id ID) *Task {
	return m.tasks[id]
}

// TaskID finds the id of a catalog task, InvalidID if it is not registered.
func (m *Manager) TaskID(t *Task) ID {
	for id, cand := range m.tasks {
		if cand == t {
			return id
		}
	}
	return InvalidID
}

// BindTaskCommand attaches the command run when the task triggers and marks
// the task valid.
func (m *Manager) BindTaskCommand(id ID, action Action) {
	if t := m.tasks[id]; t != nil {
		t.Bind(action)
	}
}

// RunID is the identifier of the current (or most recent) run.
func (m *Manager) RunID() string { return m.runID }

// Status is InProgress while any task is running, None otherwise.
func (m *Manager) Status() Status {
	for _, t := range m.tasks {
		if t.Status() == StatusInProgress {
			return StatusInProgress
		}
	}
	return StatusNone
}

func (m *Manager) OnRunStarted(fn func(runID string))  { m.startedListeners = append(m.startedListeners, fn) }
func (m *Manager) OnRunFinished(fn func(runID string)) { m.doneListeners = append(m.doneListeners, fn) }
func (m *Manager) OnProgress(fn func(done, total int, message string)) {
	m.progressListeners = append(m.progressListeners, fn)
}
func (m *Manager) OnTaskStatusChanged(fn func(id ID, status Status)) {
	m.statusListeners = append(m.statusListeners, fn)
}

// StartAll runs every enabled pipeline stage in order. A second StartAll
// while a run is active is ignored.
func (m *Manager) StartAll() {
	if len(m.runStack) > 0 {
		return
	}
	m.reset()
	for _, id := range StageOrder {
		if t := m.tasks[id]; t.Enabled() {
			m.runStack = append(m.runStack, t)
		}
	}
	m.taskCount = len(m.runStack)
	m.counter = 0
	m.beginRun()
}

// StartTask runs a single task by id. Disabled or invalid tasks are ignored,
// as is any start while a run is active.
func (m *Manager) StartTask(id ID) {
	if len(m.runStack) > 0 {
		return
	}
	t := m.tasks[id]
	if t == nil || !t.Enabled() || !t.Valid() {
		return
	}
	m.runStack = append(m.runStack, t)
	m.taskCount = 1
	m.counter = 0
	m.beginRun()
}

// StopCurrentTask fails every in-progress task, which drains the run stack
// through the normal status path.
func (m *Manager) StopCurrentTask() {
	for _, t := range m.tasks {
		if t.Status() == StatusInProgress {
			t.SetStatus(StatusFail)
		}
	}
}

// beginRun drives the stack to completion. Each head task is triggered
// after its downstream statuses are reset; the status listener pops or
// drains the stack, so the loop terminates on the first failure or when
// every task has succeeded.
func (m *Manager) beginRun() {
	m.runID = uuid.NewString()
	for _, fn := range m.startedListeners {
		fn(m.runID)
	}
	for len(m.runStack) > 0 {
		t := m.runStack[0]
		m.cleanDownstreamStatus(t)
		t.Trigger()
		if !t.Status().Finished() {
			// The command never reached a terminal status, e.g. an
			// unbound task. Abandon the run instead of spinning.
			m.runStack = nil
		}
	}
	m.taskCount = 0
	for _, fn := range m.doneListeners {
		fn(m.runID)
	}
}

// runNext reacts to every task status change. Terminal statuses advance or
// drain the run stack; InProgress on the stack head announces the task.
func (m *Manager) runNext(t *Task, s Status) {
	if !s.Finished() {
		if s == StatusInProgress && m.taskCount != 0 && len(m.runStack) > 0 && m.runStack[0] == t {
			m.emitProgress(t.Title() + " running")
		}
		return
	}
	if len(m.runStack) == 0 {
		return
	}
	m.counter++
	if s == StatusSuccess {
		m.emitProgress(t.Title() + " complete")
		m.removeFromStack(t)
	} else {
		m.emitProgress(t.Title() + " failed")
		m.runStack = nil
	}
}

func (m *Manager) emitProgress(message string) {
	for _, fn := range m.progressListeners {
		fn(m.counter, m.taskCount, message)
	}
}

func (m *Manager) removeFromStack(t *Task) {
	out := m.runStack[:0]
	for _, cand := range m.runStack {
		if cand != t {
			out = append(out, cand)
		}
	}
	m.runStack = out
}

func (m *Manager) reset() {
	for _, t := range m.tasks {
		t.SetStatus(StatusNone)
	}
}

// cleanDownstreamStatus resets the task and everything after it in the
// canonical queue back to None. When the task is a Clean sub-task the reset
// starts one entry earlier so the owning stage is invalidated too.
func (m *Manager) cleanDownstreamStatus(t *Task) {
	for i, entry := range m.queue {
		if entry.t != t {
			continue
		}
		if t.Type() == TypeClean && i > 0 {
			i--
		}
		for _, down := range m.queue[i:] {
			down.t.SetStatus(StatusNone)
		}
		return
	}
}

// RegisterReportManager associates a report manager with a stage task.
func (m *Manager) RegisterReportManager(id ID, rm report.Manager) {
	m.reports[id] = rm
}

// ReportManager returns the report manager for a stage, nil if none.
func (m *Manager) ReportManager(id ID) report.Manager {
	return m.reports[id]
}

func (m *Manager) invalidateReport(id ID) {
	if rm := m.reports[id]; rm != nil {
		rm.Invalidate()
	}
}
