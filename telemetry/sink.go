package telemetry

import "context"

// A Sink receives telemetry samples. Delivery is best effort, at most once
// per emission: the scheduler logs a failed Post and moves on, it never
// retries.
type Sink interface {
	Post(ctx context.Context, sample Sample) error
}

// A SinkError reports a failed delivery to an external sink. It never stops
// a run.
type SinkError struct {
	Target string
	Err    error
}

func (e *SinkError) Error() string {
	return "telemetry: delivery to " + e.Target + " failed: " + e.Err.Error()
}

func (e *SinkError) Unwrap() error {
	return e.Err
}
