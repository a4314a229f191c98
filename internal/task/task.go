package task

// Action is the command bound to a task. It runs synchronously on the
// caller's goroutine; the task moves itself through InProgress and a terminal
// status via SetStatus calls made by the action.
type Action func(t *Task)

// Task is one node of the compilation pipeline: a pipeline stage, or one of
// its Clean/Settings/utility sub-tasks. A task with no bound action is
// invalid and triggering it is a no-op.
type Task struct {
	title    string
	kind     Type
	status   Status
	enabled  bool
	valid    bool
	logFile  string
	subTasks []*Task
	action   Action

	statusListeners []func(*Task, Status)
}

func New(title string, kind Type) *Task {
	return &Task{title: title, kind: kind, enabled: true}
}

func (t *Task) Title() string { return t.title }
func (t *Task) Type() Type    { return t.kind }

func (t *Task) Status() Status { return t.status }

// SetStatus stores the new status and notifies listeners unconditionally,
// even when the value did not change. Downstream invalidation relies on
// re-notification of an already-None task.
func (t *Task) SetStatus(s Status) {
	t.status = s
	for _, fn := range t.statusListeners {
		fn(t, s)
	}
}

func (t *Task) Enabled() bool        { return t.enabled }
func (t *Task) SetEnabled(on bool)   { t.enabled = on }
func (t *Task) Valid() bool          { return t.valid }
func (t *Task) LogFile() string      { return t.logFile }
func (t *Task) SetLogFile(p string)  { t.logFile = p }
func (t *Task) SubTasks() []*Task    { return t.subTasks }
func (t *Task) AppendSubTask(s *Task) {
	t.subTasks = append(t.subTasks, s)
}

// Bind attaches the command behind this task and marks it valid.
func (t *Task) Bind(a Action) {
	t.action = a
	t.valid = a != nil
}

// Trigger runs the bound action. Invalid tasks ignore the trigger so that a
// stray UI or queue event cannot start an unbound command.
func (t *Task) Trigger() {
	if !t.valid || t.action == nil {
		return
	}
	t.action(t)
}

// OnStatusChanged registers a synchronous listener invoked from SetStatus.
func (t *Task) OnStatusChanged(fn func(*Task, Status)) {
	t.statusListeners = append(t.statusListeners, fn)
}
