package cdra

import "fmt"

// A ConfigurationError reports an invalid assembly configuration. It is only
// raised at construction; a run never starts with a bad configuration.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "cdra: invalid configuration: " + e.Reason
}

// A StepError reports that a single tick evaluation produced an unusable
// state. It is recoverable: the scheduler degrades the affected telemetry
// and keeps the run going.
type StepError struct {
	Tick   uint64
	Reason string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("cdra: step failed at tick %d: %s", e.Tick, e.Reason)
}
