package tracing

import (
	"sort"
	"sync"

	"github.com/sarchlab/streamsim/sim"
)

type taskInterval struct {
	start, end sim.VTimeInCycle
}

// BusyTimeTracer traces the cycles that a domain spends processing a kind of
// task. If tasks overlap, the overlapped cycles are only counted once.
type BusyTimeTracer struct {
	filter TaskFilter

	lock          sync.Mutex
	inflightTasks map[string]sim.VTimeInCycle
	finished      []taskInterval
}

// NewBusyTimeTracer creates a new BusyTimeTracer. A nil filter accepts every
// task.
func NewBusyTimeTracer(filter TaskFilter) *BusyTimeTracer {
	return &BusyTimeTracer{
		filter:        filter,
		inflightTasks: make(map[string]sim.VTimeInCycle),
	}
}

// BusyTime returns the number of cycles during which at least one traced task
// was in flight. Only completed tasks are counted.
func (t *BusyTimeTracer) BusyTime() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	intervals := make([]taskInterval, len(t.finished))
	copy(intervals, t.finished)

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	var busy uint64
	var cur taskInterval
	started := false

	for _, iv := range intervals {
		switch {
		case !started:
			cur = iv
			started = true
		case iv.start <= cur.end:
			if iv.end > cur.end {
				cur.end = iv.end
			}
		default:
			busy += uint64(cur.end - cur.start)
			cur = iv
		}
	}

	if started {
		busy += uint64(cur.end - cur.start)
	}

	return busy
}

// TerminateAllTasks marks all the in-flight tasks as completed at the given
// time.
func (t *BusyTimeTracer) TerminateAllTasks(now sim.VTimeInCycle) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for id, start := range t.inflightTasks {
		t.finished = append(t.finished, taskInterval{start: start, end: now})
		delete(t.inflightTasks, id)
	}
}

// StartTask records the task start time
func (t *BusyTimeTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflightTasks[task.ID] = task.StartTime
	t.lock.Unlock()
}

// StepTask does nothing
func (t *BusyTimeTracer) StepTask(_ Task) {}

// DelayTask does nothing
func (t *BusyTimeTracer) DelayTask(_ DelayEvent) {}

// EndTask records the end of the task
func (t *BusyTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	t.finished = append(t.finished,
		taskInterval{start: start, end: task.EndTime})
	delete(t.inflightTasks, task.ID)
}
