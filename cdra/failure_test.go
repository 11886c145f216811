package cdra_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/orbitlab/cdrasim/cdra"
)

var _ = Describe("EvaluateFailures", func() {
	It("should report nothing when no failure is configured", func() {
		ov := cdra.EvaluateFailures(100, cdra.FailureConfig{})

		Expect(ov.Active).To(BeEmpty())
		Expect(ov.FlowOverride).To(BeNil())
		Expect(ov.ValveStuck).To(BeFalse())
		Expect(ov.SaturationFloor).To(BeFalse())
		Expect(ov.HeatersForcedOff).To(BeEmpty())
	})

	It("should use half-open windows", func() {
		cfg := cdra.FailureConfig{
			FanDegraded:     &cdra.Window{Start: 10, End: 20},
			DegradedFlowKgS: 0.38,
		}

		Expect(cdra.EvaluateFailures(9, cfg).FlowOverride).To(BeNil())
		Expect(*cdra.EvaluateFailures(10, cfg).FlowOverride).To(Equal(0.38))
		Expect(*cdra.EvaluateFailures(19, cfg).FlowOverride).To(Equal(0.38))
		Expect(cdra.EvaluateFailures(20, cfg).FlowOverride).To(BeNil())
	})

	It("should treat a windowless heater failure as always active", func() {
		cfg := cdra.FailureConfig{
			HeaterFailures: []cdra.HeaterFailure{
				{Heaters: []string{cdra.Desiccant1}},
			},
		}

		for _, tick := range []uint64{0, 1, 1000, 99999} {
			ov := cdra.EvaluateFailures(tick, cfg)
			Expect(ov.HeatersForcedOff).To(HaveKey(cdra.Desiccant1))
			Expect(ov.Active).To(ContainElement(cdra.FailureHeater))
		}
	})

	It("should be deterministic for a fixed configuration", func() {
		cfg := cdra.FailureConfig{
			FilterSaturation: &cdra.Window{Start: 5, End: 50},
			ValveStuck:       &cdra.Window{Start: 0, End: 100},
		}

		a := cdra.EvaluateFailures(25, cfg)
		b := cdra.EvaluateFailures(25, cfg)

		Expect(a).To(Equal(b))
	})
})
