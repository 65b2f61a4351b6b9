package sim

// A Context is an independently running piece of simulated hardware, such as
// a compute block, a data generator, or a checker. It owns exactly one logical
// clock and one run loop. Contexts talk to each other only through channels.
type Context interface {
	Named
	Hookable
	TimeTeller

	// Clock returns the logical clock owned by the context.
	Clock() *Time

	// Init is called once, on the context's goroutine, before Run.
	Init()

	// Run executes the context until its input is exhausted. A nil return is
	// a clean shutdown.
	Run() error
}

// ContextBase provides the name, hooks and clock that every context needs.
type ContextBase struct {
	*HookableBase

	name string
	time Time
}

// NewContextBase creates a ContextBase. The name must be valid.
func NewContextBase(name string) *ContextBase {
	NameMustBeValid(name)

	return &ContextBase{
		HookableBase: NewHookableBase(),
		name:         name,
	}
}

// Name returns the name of the context.
func (c *ContextBase) Name() string {
	return c.name
}

// Clock returns the logical clock of the context.
func (c *ContextBase) Clock() *Time {
	return &c.time
}

// CurrentTime returns the current cycle of the context.
func (c *ContextBase) CurrentTime() VTimeInCycle {
	return c.time.Tick()
}

// Init does nothing by default.
func (c *ContextBase) Init() {}
