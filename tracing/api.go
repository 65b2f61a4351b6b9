package tracing

import (
	"github.com/sarchlab/streamsim/sim"
)

// NamedHookable represent something both have a name and can be hooked. Tasks
// are time-stamped with the domain's own clock.
type NamedHookable interface {
	sim.Named
	sim.Hookable
	sim.TimeTeller
	InvokeHook(sim.HookCtx)
}

// A list of hook poses for the hooks to apply to
var (
	HookPosTaskStart = &sim.HookPos{Name: "HookPosTaskStart"}
	HookPosTaskStep  = &sim.HookPos{Name: "HookPosTaskStep"}
	HookPosTaskEnd   = &sim.HookPos{Name: "HookPosTaskEnd"}
	HookPosTaskDelay = &sim.HookPos{Name: "HookPosTaskDelay"}
)

// StartTask notifies the hooks that hook to the domain about the start of a
// task.
func StartTask(
	id string,
	parentID string,
	domain NamedHookable,
	kind string,
	what string,
	detail interface{},
) {
	if domain.NumHooks() == 0 {
		return
	}

	allRequiredFieldsMustBeNotEmpty(id, domain, kind, what)

	task := Task{
		ID:        id,
		ParentID:  parentID,
		Kind:      kind,
		What:      what,
		Location:  domain.Name(),
		StartTime: domain.CurrentTime(),
		Detail:    detail,
	}
	ctx := sim.HookCtx{
		Domain: domain,
		Item:   task,
		Pos:    HookPosTaskStart,
	}
	domain.InvokeHook(ctx)
}

func allRequiredFieldsMustBeNotEmpty(
	id string,
	domain NamedHookable,
	kind string,
	what string,
) {
	if id == "" {
		panic("id must not be empty")
	}

	if kind == "" {
		panic("kind must not be empty")
	}

	if what == "" {
		panic("what must not be empty")
	}

	if domain.Name() == "" {
		panic("domain must have a name")
	}
}

// AddTaskStep marks that a milestone has been reached when processing a task.
func AddTaskStep(
	id string,
	domain NamedHookable,
	what string,
) {
	if domain.NumHooks() == 0 {
		return
	}

	step := TaskStep{
		Time: domain.CurrentTime(),
		What: what,
	}
	task := Task{
		ID:       id,
		Location: domain.Name(),
		Steps:    []TaskStep{step},
	}
	ctx := sim.HookCtx{
		Domain: domain,
		Item:   task,
		Pos:    HookPosTaskStep,
	}
	domain.InvokeHook(ctx)
}

// EndTask notifies the hooks about the end of a task.
func EndTask(
	id string,
	domain NamedHookable,
) {
	if domain.NumHooks() == 0 {
		return
	}

	task := Task{
		ID:       id,
		Location: domain.Name(),
		EndTime:  domain.CurrentTime(),
	}
	ctx := sim.HookCtx{
		Domain: domain,
		Item:   task,
		Pos:    HookPosTaskEnd,
	}
	domain.InvokeHook(ctx)
}

// DelayTask notifies the hooks that the task lost the given number of cycles.
// The delay ends at the domain's current time.
func DelayTask(
	taskID string,
	domain NamedHookable,
	kind string,
	what string,
	cycles uint64,
) {
	if domain.NumHooks() == 0 || cycles == 0 {
		return
	}

	delay := DelayEvent{
		TaskID: taskID,
		Kind:   kind,
		What:   what,
		Source: domain.Name(),
		Time:   domain.CurrentTime(),
		Cycles: cycles,
	}
	ctx := sim.HookCtx{
		Domain: domain,
		Item:   delay,
		Pos:    HookPosTaskDelay,
	}
	domain.InvokeHook(ctx)
}
