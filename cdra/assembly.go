// Package cdra models a four-bed carbon-dioxide removal assembly: two
// redundant air paths, each with a desiccant and a sorbent bed, switched by
// a valve every half cycle so that one pair adsorbs while the other is
// heated and regenerates.
package cdra

import (
	"math"

	"github.com/orbitlab/cdrasim/units"
)

// An Assembly owns the evolving state of the removal assembly and advances
// it one tick at a time. It is not safe for concurrent use; the scheduler
// drives it from a single goroutine.
type Assembly struct {
	cfg   Config
	state State
}

// NewAssembly validates the configuration and builds an assembly in its
// initial state. Structural configuration problems (unknown heater
// identifier, negative degraded flow, malformed window) are reported here
// and never at tick time.
func NewAssembly(cfg Config) (*Assembly, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Assembly{cfg: cfg}

	a.state = State{
		Tick:            0,
		CO2MassFraction: units.MmHgToMassFraction(cfg.InitialCO2MmHg),
		Phase:           AdsorbADesorbB,
		Valve:           PathA,
		Heaters:         map[string]HeaterState{},
		FanFlowKgS:      cfg.NominalFlowKgS,
		BedSaturation:   map[string]float64{},
	}

	for _, bed := range BedNames {
		a.state.Heaters[bed] = HeaterOff
		a.state.BedSaturation[bed] = 0.0
	}

	return a, nil
}

// Config returns the configuration the assembly was built with.
func (a *Assembly) Config() Config {
	return a.cfg
}

// State returns a snapshot of the current state.
func (a *Assembly) State() State {
	return a.state.clone()
}

// Step advances the assembly by one tick and returns the new snapshot. The
// tick counter advances by exactly 1 per successful call and is never
// rolled back: on error the previous state is kept untouched.
func (a *Assembly) Step() (State, error) {
	tick := a.state.Tick + 1
	ov := EvaluateFailures(tick, a.cfg.Failures)

	flow := a.cfg.NominalFlowKgS
	if ov.FlowOverride != nil {
		flow = *ov.FlowOverride
	}

	valve, phase := a.nextValveAndPhase(tick, ov)
	heaters := heaterSchedule(valve, phase, ov)

	next := State{
		Tick:            tick,
		CO2MassFraction: a.state.CO2MassFraction,
		Phase:           phase,
		Valve:           valve,
		Heaters:         heaters,
		FanFlowKgS:      flow,
		BedSaturation:   map[string]float64{},
		ActiveFailures:  ov.Active,
	}
	for bed, sat := range a.state.BedSaturation {
		next.BedSaturation[bed] = sat
	}

	a.updateBeds(&next, ov)
	a.updateCabinCO2(&next)

	if err := stateMustBeFinite(&next); err != nil {
		return a.state.clone(), err
	}

	a.state = next

	return a.state.clone(), nil
}

// nextValveAndPhase advances the half-cycle clock. The valve never switches
// instantaneously: a half-cycle boundary first enters a one-tick Transition,
// and the switch completes on the following tick. While the valve-stuck
// failure is active both valve and phase hold their previous values
// regardless of the nominal schedule.
func (a *Assembly) nextValveAndPhase(
	tick uint64,
	ov Overrides,
) (ValvePosition, CyclePhase) {
	valve := a.state.Valve
	phase := a.state.Phase

	if ov.ValveStuck {
		return valve, phase
	}

	if phase == Transition {
		valve = valve.opposite()
		return valve, adsorbPhaseFor(valve)
	}

	if tick%a.cfg.HalfCycleTicks == 0 {
		return valve, Transition
	}

	return valve, phase
}

// heaterSchedule turns on the heaters of the regenerating pair and turns
// every other heater off. Heaters under an active failure window report
// FAILED regardless of phase and never recover to ON within the window.
func heaterSchedule(
	valve ValvePosition,
	phase CyclePhase,
	ov Overrides,
) map[string]HeaterState {
	heaters := map[string]HeaterState{}
	for _, bed := range BedNames {
		heaters[bed] = HeaterOff
	}

	if phase != Transition {
		regenDesiccant, regenSorbent := pathBeds(valve.opposite())
		heaters[regenDesiccant] = HeaterOn
		heaters[regenSorbent] = HeaterOn
	}

	for bed := range ov.HeatersForcedOff {
		heaters[bed] = HeaterFailed
	}

	return heaters
}

// updateBeds advances bed saturations. The adsorbing pair loads
// proportionally to flow, inlet CO2 and removal efficiency; the
// regenerating pair unloads at the heater-driven rate, or not at all if its
// heater has failed. During Transition no bed changes.
func (a *Assembly) updateBeds(s *State, ov Overrides) {
	if s.Phase == Transition {
		return
	}

	dt := a.cfg.TickSeconds
	adsDesiccant, adsSorbent := pathBeds(s.Valve)

	if ov.SaturationFloor {
		// A saturated filter cannot desorb: the adsorbing beds are held at
		// full capacity, which drives removal efficiency to zero.
		s.BedSaturation[adsDesiccant] = 1.0
		s.BedSaturation[adsSorbent] = 1.0
	} else {
		for _, bed := range []string{adsDesiccant, adsSorbent} {
			eff := a.removalEfficiency(s.BedSaturation[bed])
			loaded := s.FanFlowKgS * s.CO2MassFraction * eff * dt

			sat := s.BedSaturation[bed] + loaded/a.cfg.BedCapacityKg
			s.BedSaturation[bed] = clamp01(sat)
		}
	}

	regenRate := a.cfg.RegenerationRate * dt / a.cfg.SaturationTimeConstant
	regenDesiccant, regenSorbent := pathBeds(s.Valve.opposite())
	for _, bed := range []string{regenDesiccant, regenSorbent} {
		if s.Heaters[bed] != HeaterOn {
			continue
		}

		s.BedSaturation[bed] = clamp01(s.BedSaturation[bed] - regenRate)
	}
}

// updateCabinCO2 integrates the cabin mass balance one explicit Euler step:
// crew production in, sorbent removal out.
func (a *Assembly) updateCabinCO2(s *State) {
	removal := 0.0
	if s.Phase != Transition {
		_, adsSorbent := pathBeds(s.Valve)
		eff := a.removalEfficiency(s.BedSaturation[adsSorbent])
		removal = s.FanFlowKgS * s.CO2MassFraction * eff
	}

	dC := (a.cfg.CO2ProductionKgS - removal) *
		a.cfg.TickSeconds / a.cfg.CabinAirMassKg

	s.CO2MassFraction = math.Max(0, s.CO2MassFraction+dC)
}

// removalEfficiency falls linearly from the configured fresh-bed efficiency
// to zero at full saturation.
func (a *Assembly) removalEfficiency(saturation float64) float64 {
	return a.cfg.RemovalEfficiency * (1.0 - saturation)
}

func stateMustBeFinite(s *State) error {
	values := []float64{s.CO2MassFraction, s.FanFlowKgS}
	for _, bed := range BedNames {
		values = append(values, s.BedSaturation[bed])
	}

	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &StepError{Tick: s.Tick, Reason: "non-finite state value"}
		}
	}

	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
