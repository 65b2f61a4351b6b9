package tracing

import (
	"sync"

	"github.com/sarchlab/streamsim/sim"
)

// AverageTimeTracer can collect the average number of cycles spent on a
// certain type of task. Overlapping tasks are averaged independently.
type AverageTimeTracer struct {
	filter        TaskFilter
	lock          sync.Mutex
	averageTime   float64
	inflightTasks map[string]sim.VTimeInCycle
	taskCount     uint64
}

// NewAverageTimeTracer creates a new AverageTimeTracer
func NewAverageTimeTracer(filter TaskFilter) *AverageTimeTracer {
	t := &AverageTimeTracer{
		filter:        filter,
		inflightTasks: make(map[string]sim.VTimeInCycle),
	}
	return t
}

// AverageTime returns the average number of cycles of the completed tasks.
func (t *AverageTimeTracer) AverageTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.averageTime
}

// TotalCount returns the total number of tasks.
func (t *AverageTimeTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.taskCount
}

// StartTask records the task start time
func (t *AverageTimeTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflightTasks[task.ID] = task.StartTime
	t.lock.Unlock()
}

// StepTask does nothing
func (t *AverageTimeTracer) StepTask(_ Task) {}

// DelayTask does nothing
func (t *AverageTimeTracer) DelayTask(_ DelayEvent) {}

// EndTask records the end of the task
func (t *AverageTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	taskTime := float64(task.EndTime - start)
	t.averageTime = (t.averageTime*float64(t.taskCount) + taskTime) /
		float64(t.taskCount+1)
	delete(t.inflightTasks, task.ID)
	t.taskCount++
}
