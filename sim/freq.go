package sim

import (
	"log"
	"time"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive ticks, in seconds.
func (f Freq) Period() float64 {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return 1.0 / float64(f)
}

// Seconds converts a number of cycles to the amount of hardware time it takes
// at this frequency.
func (f Freq) Seconds(cycles VTimeInCycle) float64 {
	return float64(cycles) * f.Period()
}

// Duration is the same as Seconds but returns a time.Duration. Sub-nanosecond
// parts are truncated.
func (f Freq) Duration(cycles VTimeInCycle) time.Duration {
	return time.Duration(f.Seconds(cycles) * float64(time.Second))
}

// Cycles converts an amount of hardware time, in seconds, to the number of
// whole cycles completed in it.
func (f Freq) Cycles(seconds float64) VTimeInCycle {
	if seconds < 0 {
		log.Panic("time cannot be negative")
	}

	return VTimeInCycle(seconds * float64(f))
}
