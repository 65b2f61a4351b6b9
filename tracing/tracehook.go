package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/streamsim/sim"
)

// CollectTrace forwards the invocation tasks and delay events that a block
// reports to the tracer. Attaching the same tracer to a block twice panics,
// since every task would be counted twice.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	if hasTracer(domain, tracer) {
		panic(fmt.Sprintf("domain %s already has tracer %s",
			domain.Name(), reflect.TypeOf(tracer)))
	}

	domain.AcceptHook(&traceHook{tracer: tracer})
}

func hasTracer(domain sim.Hookable, tracer Tracer) bool {
	for _, hook := range domain.Hooks() {
		if h, ok := hook.(*traceHook); ok && h.tracer == tracer {
			return true
		}
	}

	return false
}

// traceHook turns the task hook positions into Tracer calls. Hooks at other
// positions, such as the context start and end, are ignored.
type traceHook struct {
	tracer Tracer
}

func (h *traceHook) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case Task:
		h.task(ctx.Pos, item)
	case DelayEvent:
		if ctx.Pos == HookPosTaskDelay {
			h.tracer.DelayTask(item)
		}
	}
}

func (h *traceHook) task(pos *sim.HookPos, task Task) {
	switch pos {
	case HookPosTaskStart:
		h.tracer.StartTask(task)
	case HookPosTaskStep:
		h.tracer.StepTask(task)
	case HookPosTaskEnd:
		h.tracer.EndTask(task)
	}
}
