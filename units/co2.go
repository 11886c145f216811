// Package units converts CO2 quantities between the partial pressure
// reported by cabin sensors (mmHg) and the mass fraction (kg CO2 per kg dry
// air) that the removal assembly works in.
package units

// Physical constants shared by both conversion directions.
const (
	PaPerMmHg            = 133.322
	StandardPressureMmHg = 760.0
	MolarMassCO2         = 44.01 // g/mol
	MolarMassAir         = 28.97 // g/mol
)

// MmHgToMassFraction converts a CO2 partial pressure in mmHg to kg CO2 per
// kg dry air. Inputs are not range checked.
func MmHgToMassFraction(co2MmHg float64) float64 {
	co2Pa := co2MmHg * PaPerMmHg
	molPerMolAir := co2Pa / (StandardPressureMmHg * PaPerMmHg)
	return molPerMolAir * (MolarMassCO2 / MolarMassAir)
}

// MassFractionToMmHg converts kg CO2 per kg dry air to a partial pressure in
// mmHg. It is the exact algebraic inverse of MmHgToMassFraction.
func MassFractionToMmHg(massFraction float64) float64 {
	molPerMolAir := massFraction * (MolarMassAir / MolarMassCO2)
	co2Pa := molPerMolAir * (StandardPressureMmHg * PaPerMmHg)
	return co2Pa / PaPerMmHg
}
