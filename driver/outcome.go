package driver

import "github.com/orbitlab/cdrasim/cdra"

// An Outcome is the result of the most recent step. When a step fails the
// state is the last successfully computed one and Degraded is set, so
// downstream consumers can label the data instead of losing it.
type Outcome struct {
	State    cdra.State
	Degraded bool
}
