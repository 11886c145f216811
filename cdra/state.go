package cdra

// ValvePosition selects which air path flows through the adsorbing beds.
type ValvePosition int

// The two redundant air paths of the assembly.
const (
	PathA ValvePosition = iota
	PathB
)

func (v ValvePosition) String() string {
	if v == PathA {
		return "PATH_A"
	}
	return "PATH_B"
}

func (v ValvePosition) opposite() ValvePosition {
	if v == PathA {
		return PathB
	}
	return PathA
}

// CyclePhase tracks which bed pair is adsorbing and which is regenerating.
type CyclePhase int

const (
	// AdsorbADesorbB: the path-A beds adsorb while the path-B beds are
	// heated and regenerate.
	AdsorbADesorbB CyclePhase = iota

	// AdsorbBDesorbA is the mirror phase.
	AdsorbBDesorbA

	// Transition is the single tick during which the valve is mid-switch.
	// No bed adsorbs or desorbs in this phase.
	Transition
)

func (p CyclePhase) String() string {
	switch p {
	case AdsorbADesorbB:
		return "ADSORB_A_DESORB_B"
	case AdsorbBDesorbA:
		return "ADSORB_B_DESORB_A"
	default:
		return "TRANSITION"
	}
}

// HeaterState is the reported condition of one bed heater.
type HeaterState int

const (
	HeaterOff HeaterState = iota
	HeaterOn
	HeaterFailed
)

func (h HeaterState) String() string {
	switch h {
	case HeaterOn:
		return "ON"
	case HeaterFailed:
		return "FAILED"
	default:
		return "OFF"
	}
}

// Bed and heater identifiers of the four-bed assembly. Desiccant 1 and
// sorbent 2 sit on path A, desiccant 3 and sorbent 4 on path B.
const (
	Desiccant1 = "desiccant_1"
	Sorbent2   = "sorbent_2"
	Desiccant3 = "desiccant_3"
	Sorbent4   = "sorbent_4"
)

// BedNames lists all beds in a fixed order.
var BedNames = []string{Desiccant1, Sorbent2, Desiccant3, Sorbent4}

func isKnownHeater(name string) bool {
	for _, n := range BedNames {
		if n == name {
			return true
		}
	}
	return false
}

// pathBeds returns the adsorbing desiccant/sorbent pair for a valve
// position.
func pathBeds(v ValvePosition) (desiccant, sorbent string) {
	if v == PathA {
		return Desiccant1, Sorbent2
	}
	return Desiccant3, Sorbent4
}

func adsorbPhaseFor(v ValvePosition) CyclePhase {
	if v == PathA {
		return AdsorbADesorbB
	}
	return AdsorbBDesorbA
}

// State is one tick-consistent snapshot of the removal assembly. Snapshots
// are deep copies; mutating one never affects the assembly or another
// snapshot.
type State struct {
	Tick            uint64
	CO2MassFraction float64
	Phase           CyclePhase
	Valve           ValvePosition
	Heaters         map[string]HeaterState
	FanFlowKgS      float64
	BedSaturation   map[string]float64
	ActiveFailures  []FailureKind
}

func (s State) clone() State {
	c := s

	c.Heaters = make(map[string]HeaterState, len(s.Heaters))
	for k, v := range s.Heaters {
		c.Heaters[k] = v
	}

	c.BedSaturation = make(map[string]float64, len(s.BedSaturation))
	for k, v := range s.BedSaturation {
		c.BedSaturation[k] = v
	}

	c.ActiveFailures = append([]FailureKind(nil), s.ActiveFailures...)

	return c
}
