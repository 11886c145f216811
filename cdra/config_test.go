package cdra_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/orbitlab/cdrasim/cdra"
)

var _ = Describe("Config validation", func() {
	It("should accept the default configuration", func() {
		_, err := cdra.NewAssembly(cdra.DefaultConfig())
		Expect(err).ToNot(HaveOccurred())
	})

	It("should reject an unknown heater identifier", func() {
		cfg := cdra.DefaultConfig()
		cfg.Failures.HeaterFailures = []cdra.HeaterFailure{
			{Heaters: []string{"desiccant_9"}},
		}

		_, err := cdra.NewAssembly(cfg)

		var confErr *cdra.ConfigurationError
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(confErr))
	})

	It("should reject a negative degraded flow rate", func() {
		cfg := cdra.DefaultConfig()
		cfg.Failures.FanDegraded = &cdra.Window{Start: 0, End: 100}
		cfg.Failures.DegradedFlowKgS = -0.1

		_, err := cdra.NewAssembly(cfg)
		Expect(err).To(HaveOccurred())
	})

	It("should reject a window that ends before it starts", func() {
		cfg := cdra.DefaultConfig()
		cfg.Failures.ValveStuck = &cdra.Window{Start: 100, End: 100}

		_, err := cdra.NewAssembly(cfg)
		Expect(err).To(HaveOccurred())
	})
})
