package channel

import (
	"log"

	"github.com/sarchlab/streamsim/sim"
)

// TrafficLogger is a hook that prints the elements moving through the
// channels it is attached to.
type TrafficLogger struct {
	sim.LogHookBase
}

// NewTrafficLogger creates a TrafficLogger writing to the logger.
func NewTrafficLogger(logger *log.Logger) *TrafficLogger {
	h := new(TrafficLogger)
	h.Logger = logger

	return h
}

// Func writes the traffic information into the logger.
func (h *TrafficLogger) Func(ctx sim.HookCtx) {
	domain, ok := ctx.Domain.(sim.Named)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosEnqueue:
		h.Printf("%s, enqueue %+v", domain.Name(), ctx.Item)
	case HookPosDequeue:
		h.Printf("%s, dequeue %+v", domain.Name(), ctx.Item)
	case HookPosSendStall:
		h.Printf("%s, sender stalled %v cycles", domain.Name(), ctx.Detail)
	case HookPosClose:
		h.Printf("%s, closed @ %v", domain.Name(), ctx.Item)
	}
}
