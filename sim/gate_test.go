package sim

import (
	"sync/atomic"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("PauseGate", func() {
	ginkgo.It("should let everyone pass when open", func() {
		g := NewPauseGate()

		Expect(g.IsPaused()).To(BeFalse())
		g.Pass()
	})

	ginkgo.It("should treat a nil gate as open", func() {
		var g *PauseGate
		g.Pass()
	})

	ginkgo.It("should block while paused", func() {
		g := NewPauseGate()
		g.Pause()
		Expect(g.IsPaused()).To(BeTrue())

		var passed atomic.Bool
		done := make(chan struct{})
		go func() {
			g.Pass()
			passed.Store(true)
			close(done)
		}()

		Consistently(passed.Load).Should(BeFalse())

		g.Continue()

		Eventually(done).Should(BeClosed())
		Expect(passed.Load()).To(BeTrue())
	})
})
