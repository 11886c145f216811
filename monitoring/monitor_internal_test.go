package monitoring

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/orbitlab/cdrasim/cdra"
	"github.com/orbitlab/cdrasim/sim"
	"github.com/orbitlab/cdrasim/telemetry"
)

func mustNominalState() cdra.State {
	assembly, err := cdra.NewAssembly(cdra.DefaultConfig())
	if err != nil {
		panic(err)
	}

	state, err := assembly.Step()
	if err != nil {
		panic(err)
	}

	return state
}

type fakeEngine struct {
	sim.HookableBase

	now    sim.VTimeInSec
	paused bool
}

func (e *fakeEngine) CurrentTime() sim.VTimeInSec { return e.now }
func (e *fakeEngine) Schedule(_ sim.Event)        {}
func (e *fakeEngine) Run(_ context.Context) error { return nil }
func (e *fakeEngine) Pause()                      { e.paused = true }
func (e *fakeEngine) Continue()                   { e.paused = false }
func (e *fakeEngine) Finished()                   {}

func (e *fakeEngine) RegisterSimulationEndHandler(
	_ sim.SimulationEndHandler,
) {
}

type fakeComponent struct {
	name string
}

func (c *fakeComponent) Name() string { return c.name }

type fakeSampleSource struct {
	sample telemetry.Sample
}

func (s *fakeSampleSource) LatestSample() telemetry.Sample {
	return s.sample
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		engine *fakeEngine
	)

	BeforeEach(func() {
		m = NewMonitor()
		engine = &fakeEngine{now: 2.5}
		m.RegisterEngine(engine)
	})

	It("should register components", func() {
		m.RegisterComponent(&fakeComponent{name: "Driver"})

		Expect(m.components).To(HaveLen(1))
	})

	It("should report the current time", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/now", nil)

		m.now(rec, req)

		Expect(rec.Body.String()).To(HavePrefix(`{"now":2.50`))
	})

	It("should pause and continue the engine", func() {
		m.pauseEngine(
			httptest.NewRecorder(),
			httptest.NewRequest("GET", "/api/pause", nil))
		Expect(engine.paused).To(BeTrue())

		m.continueEngine(
			httptest.NewRecorder(),
			httptest.NewRequest("GET", "/api/continue", nil))
		Expect(engine.paused).To(BeFalse())
	})

	It("should list registered components", func() {
		m.RegisterComponent(&fakeComponent{name: "Driver"})
		m.RegisterComponent(&fakeComponent{name: "Assembly"})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/list_components", nil)

		m.listComponents(rec, req)

		Expect(rec.Body.String()).To(Equal(`["Driver","Assembly"]`))
	})

	It("should serve the latest sample", func() {
		source := &fakeSampleSource{}
		source.sample = telemetry.NewAssembler().Assemble(
			mustNominalState(), true,
			time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC))
		m.RegisterSampleSource(source)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/sample", nil)

		m.latestSample(rec, req)

		var feed map[string]json.RawMessage
		Expect(json.Unmarshal(rec.Body.Bytes(), &feed)).To(Succeed())
		Expect(feed).To(HaveKey("habitatStatus"))
	})

	It("should 404 on a sample request without a source", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/sample", nil)

		m.latestSample(rec, req)

		Expect(rec.Code).To(Equal(404))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("ticks", 100)
		bar.IncrementFinished(40)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/progress", nil)

		m.listProgressBars(rec, req)

		var bars []struct {
			Name     string `json:"name"`
			Total    uint64 `json:"total"`
			Finished uint64 `json:"finished"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("ticks"))
		Expect(bars[0].Finished).To(Equal(uint64(40)))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})
})
