package sim

import (
	"log"
	"time"
)

// A Pacer decides how long the engine waits before triggering an event. It
// is the only suspension point of a run.
type Pacer interface {
	// WaitUntil blocks until the wall-clock deadline for the given virtual
	// time has been reached.
	WaitUntil(t VTimeInSec)
}

// UnthrottledPacer never waits. The engine triggers events as fast as it
// can.
type UnthrottledPacer struct{}

// NewUnthrottledPacer creates a pacer that never blocks.
func NewUnthrottledPacer() *UnthrottledPacer {
	return &UnthrottledPacer{}
}

// WaitUntil returns immediately.
func (p *UnthrottledPacer) WaitUntil(_ VTimeInSec) {}

// RealTimePacer ties virtual time to the wall clock. A speed of 1 runs one
// virtual second per wall second; a speed of 50 runs fifty.
type RealTimePacer struct {
	speed     float64
	tolerance time.Duration

	origin      time.Time
	driftLogged bool
}

// NewRealTimePacer creates a pacer that runs speed virtual seconds per wall
// second, tolerating the given scheduling drift before reporting.
func NewRealTimePacer(speed float64, tolerance time.Duration) *RealTimePacer {
	if speed <= 0 {
		log.Panic("real-time speed must be positive")
	}

	return &RealTimePacer{
		speed:     speed,
		tolerance: tolerance,
	}
}

// WaitUntil sleeps until the wall-clock deadline for virtual time t. If the
// run has fallen behind the deadline, it returns immediately so that the
// engine catches up by skipping delays, never by skipping events.
func (p *RealTimePacer) WaitUntil(t VTimeInSec) {
	if p.origin.IsZero() {
		p.origin = time.Now()
	}

	deadline := p.origin.Add(
		time.Duration(float64(t) / p.speed * float64(time.Second)))
	d := time.Until(deadline)

	if d > 0 {
		p.driftLogged = false
		time.Sleep(d)
		return
	}

	if -d > p.tolerance && !p.driftLogged {
		log.Printf("pacer: %v behind wall clock at t=%.3f, skipping delays",
			-d, t)
		p.driftLogged = true
	}
}
