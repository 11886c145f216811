// Package telemetry assembles habitat telemetry samples from removal
// assembly state snapshots and delivers them to external sinks.
package telemetry

import (
	"fmt"
	"time"

	"github.com/orbitlab/cdrasim/cdra"
	"github.com/orbitlab/cdrasim/units"
)

// Limits are the caution/warning thresholds of one monitored parameter.
type Limits struct {
	Nominal      float64 `json:"NominalValue"`
	UpperCaution float64 `json:"UpperCautionLimit"`
	UpperWarning float64 `json:"UpperWarningLimit"`
	LowerCaution float64 `json:"LowerCautionLimit"`
	LowerWarning float64 `json:"LowerWarningLimit"`
}

// Status is the threshold evaluation of one parameter value.
type Status struct {
	LowerWarning bool `json:"LowerWarning"`
	LowerCaution bool `json:"LowerCaution"`
	Nominal      bool `json:"Nominal"`
	UpperCaution bool `json:"UpperCaution"`
	UpperWarning bool `json:"UpperWarning"`
	UnderLimit   bool `json:"UnderLimit"`
	OverLimit    bool `json:"OverLimit"`
	Caution      bool `json:"Caution"`
	Warning      bool `json:"Warning"`
}

// Evaluate computes the status flags for a value against the limits.
func (l Limits) Evaluate(value float64) Status {
	return Status{
		LowerWarning: value < l.LowerWarning,
		LowerCaution: value < l.LowerCaution,
		Nominal:      l.LowerCaution <= value && value <= l.UpperCaution,
		UpperCaution: value > l.UpperCaution,
		UpperWarning: value > l.UpperWarning,
		UnderLimit:   value < l.LowerWarning,
		OverLimit:    value > l.UpperWarning,
		Caution:      value < l.LowerCaution || value > l.UpperCaution,
		Warning:      value < l.LowerWarning || value > l.UpperWarning,
	}
}

// A Parameter is one monitored value inside a sample.
type Parameter struct {
	Simulated      bool    `json:"SimulatedParameter"`
	DisplayName    string  `json:"DisplayName"`
	DisplayValue   string  `json:"DisplayValue"`
	ID             int     `json:"Id"`
	Name           string  `json:"Name"`
	ParameterGroup string  `json:"ParameterGroup"`
	Unit           string  `json:"Unit"`
	Value          float64 `json:"SimValue"`
	Limits
	Status Status `json:"Status"`
}

// MasterStatus aggregates the caution/warning flags of all parameters.
type MasterStatus struct {
	Caution bool `json:"Caution"`
	Warning bool `json:"Warning"`
}

// A Sample is one telemetry emission. It is created fresh per emission from
// a state snapshot, handed to the sink, and never mutated afterwards.
type Sample struct {
	Tick         uint64       `json:"Tick"`
	Parameters   []Parameter  `json:"Parameters"`
	MasterStatus MasterStatus `json:"MasterStatus"`

	// SimulationValid is false when the sample carries held-over values
	// because the simulation step failed.
	SimulationValid bool   `json:"SimulationValid"`
	Timestamp       string `json:"Timestamp"`
}

// PpCO2 returns the cabin ppCO2 the sample reports, in mmHg.
func (s Sample) PpCO2() float64 {
	for _, p := range s.Parameters {
		if p.Name == "ppCO2" {
			return p.Value
		}
	}
	return 0
}

// parameterSpec statically describes one monitored parameter of the feed.
type parameterSpec struct {
	displayName string
	id          int
	name        string
	group       string
	unit        string
	limits      Limits
}

// The parameter set of the habitat feed: cabin ppO2, ppCO2 and humidity for
// the two monitored zones. ppO2 and humidity are carried through from cabin
// baselines; only ppCO2 is modeled.
var parameterSpecs = []parameterSpec{
	{"Cabin_ppO2", 43, "ppO2", "L1", "mmHg",
		Limits{163.81, 175.0, 185.0, 155.0, 145.0}},
	{"Cabin_ppCO2", 44, "ppCO2", "L1", "mmHg",
		Limits{0.4, 4.5, 6.0, -1.0, -2.0}},
	{"Humidity", 45, "Humidity", "L1", "L",
		Limits{52, 61, 70, 50, 40}},
	{"Cabin_ppO2", 46, "ppO2", "L2", "mmHg",
		Limits{163.81, 175.0, 185.0, 155.0, 145.0}},
	{"Cabin_ppCO2", 47, "ppCO2", "L2", "mmHg",
		Limits{0.4, 4.5, 6.0, -1.0, -2.0}},
	{"Humidity", 48, "Humidity", "L2", "L",
		Limits{52, 61, 70, 50, 40}},
}

// An Assembler maps assembly state snapshots into samples. The cabin
// baselines fill the parameters this simulation does not model.
type Assembler struct {
	BaselinePpO2     float64
	BaselineHumidity float64
}

// NewAssembler creates an assembler with the reference cabin baselines.
func NewAssembler() *Assembler {
	return &Assembler{
		BaselinePpO2:     165.0,
		BaselineHumidity: 52.0,
	}
}

// Assemble builds one sample from a state snapshot. The valid flag marks
// whether the snapshot is live or held over from the last good step.
func (a *Assembler) Assemble(
	state cdra.State,
	valid bool,
	now time.Time,
) Sample {
	ppCO2 := units.MassFractionToMmHg(state.CO2MassFraction)

	sample := Sample{
		Tick:            state.Tick,
		SimulationValid: valid,
		Timestamp:       missionDayTimestamp(now),
	}

	for _, spec := range parameterSpecs {
		value := 0.0
		switch spec.name {
		case "ppCO2":
			value = ppCO2
		case "ppO2":
			value = a.BaselinePpO2
		case "Humidity":
			value = a.BaselineHumidity
		}

		status := spec.limits.Evaluate(value)
		sample.Parameters = append(sample.Parameters, Parameter{
			Simulated:      true,
			DisplayName:    spec.displayName,
			DisplayValue:   fmt.Sprintf("%g %s", value, spec.unit),
			ID:             spec.id,
			Name:           spec.name,
			ParameterGroup: spec.group,
			Unit:           spec.unit,
			Value:          value,
			Limits:         spec.limits,
			Status:         status,
		})

		sample.MasterStatus.Caution =
			sample.MasterStatus.Caution || status.Caution
		sample.MasterStatus.Warning =
			sample.MasterStatus.Warning || status.Warning
	}

	return sample
}

// Feed is the wire envelope the habitat monitoring endpoint accepts.
type Feed struct {
	HabitatStatus habitatStatus `json:"habitatStatus"`
}

type habitatStatus struct {
	Parameters      []Parameter  `json:"Parameters"`
	MasterStatus    MasterStatus `json:"MasterStatus"`
	HardwareList    []string     `json:"HardwareList"`
	SimulationList  []string     `json:"SimulationList"`
	SimulationValid bool         `json:"SimulationValid"`
	Timestamp       string       `json:"Timestamp"`
}

// Envelope wraps the sample in the feed structure expected on the wire.
func (s Sample) Envelope() Feed {
	return Feed{
		HabitatStatus: habitatStatus{
			Parameters:      s.Parameters,
			MasterStatus:    s.MasterStatus,
			HardwareList:    []string{},
			SimulationList:  []string{},
			SimulationValid: s.SimulationValid,
			Timestamp:       s.Timestamp,
		},
	}
}

// missionDayTimestamp formats a wall time as the mission-day clock the
// habitat feed expects.
func missionDayTimestamp(t time.Time) string {
	return fmt.Sprintf("MD %03d %s", t.YearDay(), t.Format("15:04:05"))
}
