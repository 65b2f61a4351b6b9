package tracing

import (
	"sync"

	"github.com/sarchlab/streamsim/sim"
	"github.com/tebeka/atexit"
)

// TraceWriter can write tasks and delay events into some storage, for example
// a database.
type TraceWriter interface {
	Init()
	Write(task Task)
	WriteDelay(delay DelayEvent)
	Flush()
}

// DBTracer is a tracer that can store tasks into a database. DBTracers can
// connect with different backends so that the tasks can be stored in
// different types of databases.
type DBTracer struct {
	lock    sync.Mutex
	backend TraceWriter

	startTime, endTime sim.VTimeInCycle

	tracingTasks map[string]Task
}

// NewDBTracer creates a new DBTracer. The backend is flushed when the program
// exits through atexit.
func NewDBTracer(backend TraceWriter) *DBTracer {
	t := &DBTracer{
		backend:      backend,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange limits tracing to tasks that overlap the given cycle range. An
// endTime of 0 means no upper limit.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTimeInCycle) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.startingTaskMustBeValid(task)

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = task
}

func (t *DBTracer) startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Location == "" {
		panic("task location must be set")
	}
}

// StepTask appends the steps to the traced task.
func (t *DBTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	original.Steps = append(original.Steps, task.Steps...)
	t.tracingTasks[task.ID] = original
}

// DelayTask writes the delay event if it falls into the time range.
func (t *DBTracer) DelayTask(delay DelayEvent) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.inRange(delay.Time) {
		return
	}

	t.backend.WriteDelay(delay)
}

func (t *DBTracer) inRange(time sim.VTimeInCycle) bool {
	if t.startTime > 0 && time < t.startTime {
		return false
	}

	if t.endTime > 0 && time > t.endTime {
		return false
	}

	return true
}

// EndTask marks the end of a task and writes it to the backend.
func (t *DBTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	if t.startTime > 0 && task.EndTime < t.startTime {
		return
	}

	original.EndTime = task.EndTime
	t.backend.Write(original)
}

// Terminate writes the unfinished tasks, ending each at its last recorded
// step, and flushes the backend.
func (t *DBTracer) Terminate() {
	t.lock.Lock()
	defer t.lock.Unlock()

	for id, task := range t.tracingTasks {
		task.EndTime = task.StartTime
		for _, s := range task.Steps {
			if s.Time > task.EndTime {
				task.EndTime = s.Time
			}
		}

		t.backend.Write(task)
		delete(t.tracingTasks, id)
	}

	t.backend.Flush()
}
