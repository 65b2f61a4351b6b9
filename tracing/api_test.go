package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/streamsim/sim"
	"go.uber.org/mock/gomock"
)

var _ = Describe("API", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
		domain.EXPECT().Name().Return("GEMV").AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should not invoke hooks if nothing is hooked", func() {
		domain.EXPECT().NumHooks().Return(0).Times(4)

		StartTask("1", "", domain, "invocation", "gemv", nil)
		AddTaskStep("1", domain, "computed")
		EndTask("1", domain)
		DelayTask("1", domain, "backpressure", "out", 3)
	})

	It("should stamp the task with the domain time", func() {
		domain.EXPECT().NumHooks().Return(1)
		domain.EXPECT().CurrentTime().Return(sim.VTimeInCycle(12))
		domain.EXPECT().InvokeHook(gomock.Any()).Do(func(ctx sim.HookCtx) {
			Expect(ctx.Pos).To(Equal(HookPosTaskStart))
			task := ctx.Item.(Task)
			Expect(task.ID).To(Equal("1"))
			Expect(task.Location).To(Equal("GEMV"))
			Expect(task.StartTime).To(Equal(sim.VTimeInCycle(12)))
		})

		StartTask("1", "", domain, "invocation", "gemv", nil)
	})

	It("should report steps", func() {
		domain.EXPECT().NumHooks().Return(1)
		domain.EXPECT().CurrentTime().Return(sim.VTimeInCycle(5))
		domain.EXPECT().InvokeHook(gomock.Any()).Do(func(ctx sim.HookCtx) {
			Expect(ctx.Pos).To(Equal(HookPosTaskStep))
			task := ctx.Item.(Task)
			Expect(task.Steps).To(Equal([]TaskStep{{Time: 5, What: "flushed"}}))
		})

		AddTaskStep("1", domain, "flushed")
	})

	It("should skip delays of zero cycles", func() {
		domain.EXPECT().NumHooks().Return(1)

		DelayTask("1", domain, "starvation", "in", 0)
	})

	It("should report delays", func() {
		domain.EXPECT().NumHooks().Return(1)
		domain.EXPECT().CurrentTime().Return(sim.VTimeInCycle(40))
		domain.EXPECT().InvokeHook(gomock.Any()).Do(func(ctx sim.HookCtx) {
			Expect(ctx.Pos).To(Equal(HookPosTaskDelay))
			Expect(ctx.Item).To(Equal(DelayEvent{
				TaskID: "1",
				Kind:   "backpressure",
				What:   "out",
				Source: "GEMV",
				Time:   40,
				Cycles: 7,
			}))
		})

		DelayTask("1", domain, "backpressure", "out", 7)
	})

	It("should panic if the task has no kind", func() {
		domain.EXPECT().NumHooks().Return(1)

		Expect(func() {
			StartTask("1", "", domain, "", "gemv", nil)
		}).To(Panic())
	})
})

var _ = Describe("CollectTrace", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		domain   *hookedDomain
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)
		domain = newHookedDomain("Act")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should forward tasks to the tracer", func() {
		CollectTrace(domain, tracer)

		tracer.EXPECT().StartTask(gomock.Any())
		tracer.EXPECT().StepTask(gomock.Any())
		tracer.EXPECT().DelayTask(gomock.Any())
		tracer.EXPECT().EndTask(gomock.Any())

		StartTask("1", "", domain, "invocation", "activation", nil)
		AddTaskStep("1", domain, "computed")
		DelayTask("1", domain, "backpressure", "out", 1)
		EndTask("1", domain)
	})

	It("should panic if the same tracer is attached twice", func() {
		CollectTrace(domain, tracer)

		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
	})

	It("should ignore other hook positions", func() {
		CollectTrace(domain, tracer)

		domain.InvokeHook(sim.HookCtx{
			Domain: domain,
			Pos:    sim.HookPosContextStart,
			Item:   domain,
		})
		domain.InvokeHook(sim.HookCtx{
			Domain: domain,
			Pos:    HookPosTaskStart,
			Item:   DelayEvent{TaskID: "1"},
		})
	})
})

type hookedDomain struct {
	*sim.HookableBase
	sim.Time
	name string
}

func newHookedDomain(name string) *hookedDomain {
	return &hookedDomain{
		HookableBase: sim.NewHookableBase(),
		name:         name,
	}
}

func (d *hookedDomain) Name() string {
	return d.name
}
