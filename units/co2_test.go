package units_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/orbitlab/cdrasim/units"
)

var _ = Describe("CO2 conversion", func() {
	It("should convert a nominal cabin reading", func() {
		// 3 mmHg is the reference initial cabin ppCO2.
		frac := units.MmHgToMassFraction(3)

		Expect(frac).To(BeNumerically("~", 0.005996, 1e-5))
	})

	It("should round trip over the plausible sensor range", func() {
		for x := 0.0; x <= 100.0; x += 0.25 {
			got := units.MassFractionToMmHg(units.MmHgToMassFraction(x))

			if x == 0 {
				Expect(got).To(BeZero())
				continue
			}

			relErr := math.Abs(got-x) / x
			Expect(relErr).To(BeNumerically("<=", 1e-9))
		}
	})

	It("should round trip in the other direction", func() {
		for _, frac := range []float64{0.002, 0.004, 0.006, 0.01} {
			got := units.MmHgToMassFraction(units.MassFractionToMmHg(frac))
			Expect(got).To(BeNumerically("~", frac, frac*1e-9))
		}
	})
})
