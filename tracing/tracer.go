package tracing

// A Tracer can collect task traces. Tracers attached to several contexts are
// called from several goroutines and must be safe for concurrent use.
type Tracer interface {
	StartTask(task Task)
	StepTask(task Task)
	EndTask(task Task)
	DelayTask(delay DelayEvent)
}
