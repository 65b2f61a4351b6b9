package sim

import (
	"sync"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Time", func() {
	var t *Time

	ginkgo.BeforeEach(func() {
		t = &Time{}
	})

	ginkgo.It("should start at cycle 0", func() {
		Expect(t.Tick()).To(Equal(VTimeInCycle(0)))
		Expect(t.CurrentTime()).To(Equal(VTimeInCycle(0)))
	})

	ginkgo.It("should increment cycles", func() {
		t.IncrCycles(3)
		t.IncrCycles(0)
		t.IncrCycles(2)

		Expect(t.Tick()).To(Equal(VTimeInCycle(5)))
	})

	ginkgo.It("should advance to a later cycle", func() {
		t.IncrCycles(4)

		moved := t.AdvanceTo(10)

		Expect(moved).To(Equal(uint64(6)))
		Expect(t.Tick()).To(Equal(VTimeInCycle(10)))
	})

	ginkgo.It("should never move backward", func() {
		t.IncrCycles(10)

		Expect(t.AdvanceTo(3)).To(Equal(uint64(0)))
		Expect(t.AdvanceTo(10)).To(Equal(uint64(0)))
		Expect(t.Tick()).To(Equal(VTimeInCycle(10)))
	})

	ginkgo.It("should be readable while being advanced", func() {
		var wg sync.WaitGroup
		wg.Add(1)

		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				t.IncrCycles(1)
			}
		}()

		last := VTimeInCycle(0)
		for i := 0; i < 1000; i++ {
			now := t.Tick()
			Expect(now).To(BeNumerically(">=", last))
			last = now
		}

		wg.Wait()
		Expect(t.Tick()).To(Equal(VTimeInCycle(1000)))
	})
})
