package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/sim"
)

type sampleContext struct {
	*sim.ContextBase
}

func (c *sampleContext) Run() error { return nil }

func newSampleContext(name string, now uint64) *sampleContext {
	c := &sampleContext{ContextBase: sim.NewContextBase(name)}
	c.Clock().IncrCycles(now)

	return c
}

type sampleChannel struct {
	name      string
	size, cap int
}

func (c sampleChannel) Name() string  { return c.name }
func (c sampleChannel) Capacity() int { return c.cap }
func (c sampleChannel) Size() int     { return c.size }

type sampleController struct {
	paused bool
}

func (c *sampleController) Pause()         { c.paused = true }
func (c *sampleController) Continue()      { c.paused = false }
func (c *sampleController) IsPaused() bool { return c.paused }

var _ = Describe("Monitor", func() {
	var (
		m          *Monitor
		controller *sampleController
		router     http.Handler
	)

	get := func(url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

		return rec
	}

	BeforeEach(func() {
		controller = &sampleController{}
		m = NewMonitor()
		m.controller = controller
		m.RegisterContext(newSampleContext("MLP.Gen", 3))
		m.RegisterContext(newSampleContext("MLP.GEMV", 7))
		m.RegisterChannel(sampleChannel{name: "MLP.Chan[0]", size: 2, cap: 4})
		m.RegisterChannel(sampleChannel{name: "MLP.Chan[1]", size: 3, cap: 10})
		m.RegisterChannel(sampleChannel{name: "MLP.Chan[2]", size: 1, cap: 1})
		router = m.Router()
	})

	It("should fall back to a random port for reserved port numbers", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should pause and continue the program", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(controller.paused).To(BeTrue())

		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
		Expect(controller.paused).To(BeFalse())
	})

	It("should report the latest context time", func() {
		controller.paused = true
		rsp := nowRsp{}

		rec := get("/api/now")
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())

		Expect(rsp.Now).To(Equal(sim.VTimeInCycle(7)))
		Expect(rsp.Paused).To(BeTrue())
	})

	It("should list contexts", func() {
		var names []string

		rec := get("/api/list_contexts")
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())

		Expect(names).To(Equal([]string{"MLP.Gen", "MLP.GEMV"}))
	})

	It("should return 404 for unknown contexts", func() {
		Expect(get("/api/context/Nope").Code).To(Equal(http.StatusNotFound))
	})

	It("should reject bad field requests", func() {
		Expect(get("/api/field/notjson").Code).To(Equal(http.StatusBadRequest))
	})

	DescribeTable("hang detector channel listing",
		func(query string, expected []string) {
			var rsp []channelRsp

			rec := get("/api/hangdetector/channels" + query)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())

			names := make([]string, 0, len(rsp))
			for _, r := range rsp {
				names = append(names, r.Channel)
			}

			Expect(names).To(Equal(expected))
		},
		Entry("by percent", "",
			[]string{"MLP.Chan[2]", "MLP.Chan[0]", "MLP.Chan[1]"}),
		Entry("by level", "?sort=level",
			[]string{"MLP.Chan[1]", "MLP.Chan[0]", "MLP.Chan[2]"}),
		Entry("with limit", "?sort=level&limit=1",
			[]string{"MLP.Chan[1]"}),
		Entry("with offset", "?offset=1&limit=5",
			[]string{"MLP.Chan[0]", "MLP.Chan[1]"}),
		Entry("with offset past the end", "?offset=10",
			[]string{}),
	)

	It("should reject unknown sort methods", func() {
		rec := get("/api/hangdetector/channels?sort=name")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should reject negative offsets", func() {
		rec := get("/api/hangdetector/channels?offset=-1")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should list and complete progress bars", func() {
		bar := m.CreateProgressBar("Outputs", 10)
		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)

		var bars []progressBarRsp
		rec := get("/api/progress")
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())

		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Outputs"))
		Expect(bars[0].Total).To(Equal(uint64(10)))
		Expect(bars[0].Finished).To(Equal(uint64(2)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})

	It("should serve the web page", func() {
		rec := get("/")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("<html"))
	})
})

var _ = Describe("ChannelProgress", func() {
	It("should follow the elements through a channel", func() {
		s := sim.NewSimulation()
		tx, rx := channel.Bounded[int](s, "Chan", 4)

		bar := &ProgressBar{Total: 2}
		tx.Channel().AcceptHook(NewChannelProgress(bar))

		t := &sim.Time{}
		Expect(tx.Enqueue(t, channel.Element[int]{Time: 0, Data: 1})).To(Succeed())
		Expect(tx.Enqueue(t, channel.Element[int]{Time: 1, Data: 2})).To(Succeed())
		Expect(bar.InProgress).To(Equal(uint64(2)))

		_, err := rx.Dequeue(t)
		Expect(err).NotTo(HaveOccurred())

		Expect(bar.InProgress).To(Equal(uint64(1)))
		Expect(bar.Finished).To(Equal(uint64(1)))
	})
})
