package cdra

import "fmt"

// A Window is a half-open tick interval [Start, End) during which a failure
// mode is in effect.
type Window struct {
	Start uint64
	End   uint64
}

// Contains reports whether the window covers the given tick.
func (w Window) Contains(tick uint64) bool {
	return w.Start <= tick && tick < w.End
}

// A HeaterFailure marks a set of heaters as failed. A nil window means the
// failure is in effect for the whole run.
type HeaterFailure struct {
	Heaters []string
	Window  *Window
}

// FailureConfig selects which failure modes are injected into a run. A nil
// window disables the corresponding mode.
type FailureConfig struct {
	FilterSaturation *Window
	ValveStuck       *Window

	FanDegraded     *Window
	DegradedFlowKgS float64

	HeaterFailures []HeaterFailure
}

// Config carries all parameters of the removal assembly. It is immutable
// once handed to NewAssembly; no component reads ambient state.
type Config struct {
	// TickSeconds is the fixed duration of one simulation tick.
	TickSeconds float64

	// HalfCycleTicks is the number of ticks one bed adsorbs while the other
	// regenerates, after which the valve switches paths.
	HalfCycleTicks uint64

	NominalFlowKgS   float64
	CabinAirMassKg   float64
	CO2ProductionKgS float64
	InitialCO2MmHg   float64

	// RemovalEfficiency is the fraction of inlet CO2 a fresh sorbent bed
	// removes. Efficiency falls linearly to zero as the bed saturates.
	RemovalEfficiency float64

	// BedCapacityKg is the CO2 mass that fully saturates one bed.
	BedCapacityKg float64

	// RegenerationRate scales heater-driven desorption relative to
	// SaturationTimeConstant.
	RegenerationRate       float64
	SaturationTimeConstant float64

	Failures FailureConfig
}

// DefaultConfig returns the reference operating point of the assembly.
func DefaultConfig() Config {
	return Config{
		TickSeconds:            1.0,
		HalfCycleTicks:         200,
		NominalFlowKgS:         0.7,
		CabinAirMassKg:         100.0,
		CO2ProductionKgS:       0.0003,
		InitialCO2MmHg:         3.0,
		RemovalEfficiency:      0.20,
		BedCapacityKg:          0.35,
		RegenerationRate:       2.0,
		SaturationTimeConstant: 600.0,
	}
}

// Validate checks the structural invariants of the configuration. Value
// range sanity beyond these checks is the caller's responsibility.
func (c Config) Validate() error {
	if c.TickSeconds <= 0 {
		return &ConfigurationError{Reason: "tick duration must be positive"}
	}

	if c.HalfCycleTicks == 0 {
		return &ConfigurationError{Reason: "half cycle must be at least one tick"}
	}

	if c.NominalFlowKgS < 0 {
		return &ConfigurationError{Reason: "negative nominal flow rate"}
	}

	return c.Failures.validate()
}

func (f FailureConfig) validate() error {
	for _, w := range []struct {
		name   string
		window *Window
	}{
		{"filter_saturation", f.FilterSaturation},
		{"valve_stuck", f.ValveStuck},
		{"fan_degraded", f.FanDegraded},
	} {
		if err := validateWindow(w.name, w.window); err != nil {
			return err
		}
	}

	if f.FanDegraded != nil && f.DegradedFlowKgS < 0 {
		return &ConfigurationError{Reason: "negative degraded flow rate"}
	}

	for _, hf := range f.HeaterFailures {
		if err := validateWindow("heater_failure", hf.Window); err != nil {
			return err
		}

		for _, h := range hf.Heaters {
			if !isKnownHeater(h) {
				return &ConfigurationError{
					Reason: fmt.Sprintf("unknown heater identifier %q", h),
				}
			}
		}
	}

	return nil
}

func validateWindow(name string, w *Window) error {
	if w == nil {
		return nil
	}

	if w.End <= w.Start {
		return &ConfigurationError{
			Reason: fmt.Sprintf("%s window end %d is not after start %d",
				name, w.End, w.Start),
		}
	}

	return nil
}
