package cdra_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/orbitlab/cdrasim/cdra"
)

func mustStepTo(a *cdra.Assembly, tick uint64) cdra.State {
	var s cdra.State
	var err error

	for a.State().Tick < tick {
		s, err = a.Step()
		Expect(err).ToNot(HaveOccurred())
	}

	return s
}

var _ = Describe("Assembly", func() {
	var cfg cdra.Config

	BeforeEach(func() {
		cfg = cdra.DefaultConfig()
	})

	It("should advance the tick by exactly one per step", func() {
		a, _ := cdra.NewAssembly(cfg)

		for i := uint64(1); i <= 100; i++ {
			s, err := a.Step()
			Expect(err).ToNot(HaveOccurred())
			Expect(s.Tick).To(Equal(i))
		}
	})

	It("should keep saturation and CO2 within bounds", func() {
		cfg.Failures = cdra.FailureConfig{
			FilterSaturation: &cdra.Window{Start: 300, End: 700},
			FanDegraded:      &cdra.Window{Start: 500, End: 900},
			DegradedFlowKgS:  0.38,
			HeaterFailures: []cdra.HeaterFailure{
				{Heaters: []string{cdra.Sorbent4}},
			},
		}
		a, err := cdra.NewAssembly(cfg)
		Expect(err).ToNot(HaveOccurred())

		for i := 0; i < 2000; i++ {
			s, err := a.Step()
			Expect(err).ToNot(HaveOccurred())

			Expect(s.CO2MassFraction).To(BeNumerically(">=", 0))
			Expect(s.FanFlowKgS).To(BeNumerically(">=", 0))
			for _, bed := range cdra.BedNames {
				Expect(s.BedSaturation[bed]).To(BeNumerically(">=", 0))
				Expect(s.BedSaturation[bed]).To(BeNumerically("<=", 1))
			}
		}
	})

	It("should switch paths through a one-tick transition", func() {
		a, _ := cdra.NewAssembly(cfg)

		s := mustStepTo(a, cfg.HalfCycleTicks)
		Expect(s.Phase).To(Equal(cdra.Transition))
		Expect(s.Valve).To(Equal(cdra.PathA))
		for _, bed := range cdra.BedNames {
			Expect(s.Heaters[bed]).To(Equal(cdra.HeaterOff))
		}

		s, err := a.Step()
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Valve).To(Equal(cdra.PathB))
		Expect(s.Phase).To(Equal(cdra.AdsorbBDesorbA))

		// Path-A beds regenerate once path B adsorbs.
		Expect(s.Heaters[cdra.Desiccant1]).To(Equal(cdra.HeaterOn))
		Expect(s.Heaters[cdra.Sorbent2]).To(Equal(cdra.HeaterOn))
		Expect(s.Heaters[cdra.Desiccant3]).To(Equal(cdra.HeaterOff))
		Expect(s.Heaters[cdra.Sorbent4]).To(Equal(cdra.HeaterOff))
	})

	It("should pin the valve while the stuck window is active", func() {
		cfg.Failures.ValveStuck = &cdra.Window{Start: 100, End: 500}
		a, _ := cdra.NewAssembly(cfg)

		atOpen := mustStepTo(a, 100)

		for tick := uint64(101); tick < 500; tick++ {
			s, err := a.Step()
			Expect(err).ToNot(HaveOccurred())
			Expect(s.Valve).To(Equal(atOpen.Valve))
		}

		s, err := a.Step()
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Tick).To(Equal(uint64(500)))
		Expect(s.Valve).To(Equal(atOpen.Valve))

		// Normal switching resumes at the next half-cycle boundary.
		s = mustStepTo(a, 600)
		Expect(s.Phase).To(Equal(cdra.Transition))
		s, _ = a.Step()
		Expect(s.Valve).ToNot(Equal(atOpen.Valve))
	})

	It("should never turn a failed heater on", func() {
		cfg.Failures.HeaterFailures = []cdra.HeaterFailure{
			{Heaters: []string{cdra.Desiccant1}},
		}
		a, _ := cdra.NewAssembly(cfg)

		for i := 0; i < 1000; i++ {
			s, err := a.Step()
			Expect(err).ToNot(HaveOccurred())
			Expect(s.Heaters[cdra.Desiccant1]).ToNot(Equal(cdra.HeaterOn))
			Expect(s.Heaters[cdra.Desiccant1]).To(Equal(cdra.HeaterFailed))
		}
	})

	It("should substitute the degraded flow rate exactly", func() {
		cfg.Failures.FanDegraded = &cdra.Window{Start: 100, End: 200}
		cfg.Failures.DegradedFlowKgS = 0.38
		a, _ := cdra.NewAssembly(cfg)

		s := mustStepTo(a, 99)
		Expect(s.FanFlowKgS).To(Equal(cfg.NominalFlowKgS))

		for tick := uint64(100); tick < 200; tick++ {
			s, err := a.Step()
			Expect(err).ToNot(HaveOccurred())
			Expect(s.FanFlowKgS).To(Equal(0.38))
			Expect(s.ActiveFailures).To(
				ContainElement(cdra.FailureFanDegraded))
		}

		s, _ = a.Step()
		Expect(s.FanFlowKgS).To(Equal(cfg.NominalFlowKgS))
		Expect(s.ActiveFailures).To(BeEmpty())
	})

	It("should remove CO2 over a nominal run", func() {
		a, _ := cdra.NewAssembly(cfg)
		initial := a.State().CO2MassFraction

		s := mustStepTo(a, 1000)

		Expect(s.CO2MassFraction).To(BeNumerically("<", initial))
	})

	It("should floor the adsorbing beds under filter saturation", func() {
		cfg.Failures.FilterSaturation = &cdra.Window{Start: 10, End: 50}
		a, _ := cdra.NewAssembly(cfg)

		s := mustStepTo(a, 10)
		Expect(s.BedSaturation[cdra.Desiccant1]).To(Equal(1.0))
		Expect(s.BedSaturation[cdra.Sorbent2]).To(Equal(1.0))
	})

	It("should return snapshots that do not alias internal state", func() {
		a, _ := cdra.NewAssembly(cfg)

		s, _ := a.Step()
		s.BedSaturation[cdra.Desiccant1] = 0.9
		s.Heaters[cdra.Desiccant1] = cdra.HeaterFailed

		fresh := a.State()
		Expect(fresh.BedSaturation[cdra.Desiccant1]).ToNot(Equal(0.9))
		Expect(fresh.Heaters[cdra.Desiccant1]).ToNot(Equal(cdra.HeaterFailed))
	})
})
