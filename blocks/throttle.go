package blocks

import (
	"fmt"

	"github.com/sarchlab/streamsim/sim"
)

// ThrottlePolicy decides how the initiation interval separates invocations.
type ThrottlePolicy int

const (
	// ThrottleAfterFlush waits the initiation interval after the last output
	// of an invocation has been sent.
	ThrottleAfterFlush ThrottlePolicy = iota

	// ThrottleFromStart lets the next invocation start no earlier than the
	// initiation interval after the start of the current one.
	ThrottleFromStart
)

func (p ThrottlePolicy) String() string {
	switch p {
	case ThrottleAfterFlush:
		return "after-flush"
	case ThrottleFromStart:
		return "from-start"
	default:
		return fmt.Sprintf("ThrottlePolicy(%d)", int(p))
	}
}

// ParseThrottlePolicy converts "after-flush" or "from-start" to a policy.
func ParseThrottlePolicy(s string) (ThrottlePolicy, error) {
	switch s {
	case "after-flush", "":
		return ThrottleAfterFlush, nil
	case "from-start":
		return ThrottleFromStart, nil
	default:
		return 0, fmt.Errorf("unknown throttle policy %q", s)
	}
}

func (p ThrottlePolicy) apply(
	t *sim.Time,
	start sim.VTimeInCycle,
	ii uint64,
) {
	switch p {
	case ThrottleFromStart:
		t.AdvanceTo(start + sim.VTimeInCycle(ii))
	default:
		t.IncrCycles(ii)
	}
}
