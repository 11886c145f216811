package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		var f = 1 * KHz
		Expect(f.Period()).To(BeNumerically("==", 1e-3))
	})

	It("should get this tick", func() {
		var f = 1 * Hz
		Expect(f.ThisTick(1)).To(BeNumerically("~", 1, 1e-12))
	})

	It("should get the next tick", func() {
		var f = 50 * Hz
		Expect(f.NextTick(1.02)).To(BeNumerically("~", 1.04, 1e-12))
	})

	It("should get the next tick, if current time is not on a tick", func() {
		var f = 50 * Hz
		Expect(f.NextTick(1.03)).To(BeNumerically("~", 1.04, 1e-12))
	})

	It("should count cycles", func() {
		var f = 50 * Hz
		Expect(f.Cycle(2.0)).To(Equal(uint64(100)))
	})

	It("should get the n cycles later", func() {
		var f = 10 * Hz
		Expect(f.NCyclesLater(12, 10.1)).To(
			BeNumerically("~", 11.3, 1e-12))
	})
})
