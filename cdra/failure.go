package cdra

// FailureKind tags one injectable failure mode.
type FailureKind string

// The failure modes the assembly models.
const (
	FailureFilterSaturation FailureKind = "filter_saturation"
	FailureValveStuck       FailureKind = "valve_stuck"
	FailureHeater           FailureKind = "heater_failure"
	FailureFanDegraded      FailureKind = "fan_degraded"
)

// Overrides is the bundle of parameter overrides the active failure modes
// impose on one tick. It is recomputed every tick and never persisted.
type Overrides struct {
	// FlowOverride, when set, replaces the fan flow with an absolute value.
	FlowOverride *float64

	// ValveStuck holds the valve and cycle phase at their previous values.
	ValveStuck bool

	// HeatersForcedOff lists heaters that must report FAILED this tick.
	HeatersForcedOff map[string]bool

	// SaturationFloor pins the adsorbing beds at full saturation.
	SaturationFloor bool

	// Active tags every failure mode in effect this tick.
	Active []FailureKind
}

// EvaluateFailures computes the override bundle for one tick. It is a pure
// function of (tick, config): the same tick always yields the same
// overrides, which regression tests rely on.
func EvaluateFailures(tick uint64, cfg FailureConfig) Overrides {
	ov := Overrides{
		HeatersForcedOff: map[string]bool{},
	}

	if cfg.FilterSaturation != nil && cfg.FilterSaturation.Contains(tick) {
		ov.SaturationFloor = true
		ov.Active = append(ov.Active, FailureFilterSaturation)
	}

	if cfg.ValveStuck != nil && cfg.ValveStuck.Contains(tick) {
		ov.ValveStuck = true
		ov.Active = append(ov.Active, FailureValveStuck)
	}

	heaterFailed := false
	for _, hf := range cfg.HeaterFailures {
		if hf.Window != nil && !hf.Window.Contains(tick) {
			continue
		}

		for _, h := range hf.Heaters {
			ov.HeatersForcedOff[h] = true
			heaterFailed = true
		}
	}
	if heaterFailed {
		ov.Active = append(ov.Active, FailureHeater)
	}

	if cfg.FanDegraded != nil && cfg.FanDegraded.Contains(tick) {
		flow := cfg.DegradedFlowKgS
		ov.FlowOverride = &flow
		ov.Active = append(ov.Active, FailureFanDegraded)
	}

	return ov
}
