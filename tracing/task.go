package tracing

import "github.com/sarchlab/streamsim/sim"

// A TaskStep represents a milestone in the processing of task
type TaskStep struct {
	Time sim.VTimeInCycle `json:"time"`
	What string           `json:"what"`
}

// A Task is a piece of work done by a context, such as one invocation of a
// block.
type Task struct {
	ID        string           `json:"id"`
	ParentID  string           `json:"parent_id"`
	Kind      string           `json:"kind"`
	What      string           `json:"what"`
	Location  string           `json:"location"`
	StartTime sim.VTimeInCycle `json:"start_time"`
	EndTime   sim.VTimeInCycle `json:"end_time"`
	Steps     []TaskStep       `json:"steps"`
	Detail    interface{}      `json:"-"`
}

// A DelayEvent records that a context lost cycles waiting on something, such
// as a full output channel.
type DelayEvent struct {
	TaskID string           `json:"task_id"`
	Kind   string           `json:"kind"`
	What   string           `json:"what"`
	Source string           `json:"source"`
	Time   sim.VTimeInCycle `json:"time"`
	Cycles uint64           `json:"cycles"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// FilterByKind keeps the tasks of the given kind.
func FilterByKind(kind string) TaskFilter {
	return func(t Task) bool {
		return t.Kind == kind
	}
}
