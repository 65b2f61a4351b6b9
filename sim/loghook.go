package sim

import (
	"log"
)

// HookPosContextStart marks that a context is about to enter its run loop.
var HookPosContextStart = &HookPos{Name: "Context Start"}

// HookPosContextEnd marks that a context's run loop returned. The hook Detail
// carries the error returned, if any.
var HookPosContextEnd = &HookPos{Name: "Context End"}

// A LogHook is a hook that is resonsible for recording information from the
// simulation
type LogHook interface {
	Hook
}

// LogHookBase proovides the common logic for all LogHooks
type LogHookBase struct {
	*log.Logger
}

// ContextLogger is a hook that prints when contexts start and finish.
type ContextLogger struct {
	LogHookBase
}

// NewContextLogger returns a new ContextLogger which will write in to the
// logger.
func NewContextLogger(logger *log.Logger) *ContextLogger {
	h := new(ContextLogger)
	h.Logger = logger

	return h
}

// Func writes the context information into the logger
func (h *ContextLogger) Func(ctx HookCtx) {
	c, ok := ctx.Item.(Context)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosContextStart:
		h.Printf("%d, %s started", c.CurrentTime(), c.Name())
	case HookPosContextEnd:
		if err, ok := ctx.Detail.(error); ok && err != nil {
			h.Printf("%d, %s failed: %v", c.CurrentTime(), c.Name(), err)
			return
		}

		h.Printf("%d, %s finished", c.CurrentTime(), c.Name())
	}
}
