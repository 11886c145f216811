// Package driver schedules the removal assembly across a run: it advances
// the simulation at the step cadence, emits telemetry at an independently
// configured cadence, and degrades gracefully when a step fails mid-run.
package driver

import (
	"context"
	"log"
	"time"

	"github.com/orbitlab/cdrasim/cdra"
	"github.com/orbitlab/cdrasim/sim"
	"github.com/orbitlab/cdrasim/telemetry"
)

// A Stepper advances the simulated assembly one tick at a time.
type Stepper interface {
	Step() (cdra.State, error)
	State() cdra.State
}

// A Recorder persists emitted samples. datarecording.DataRecorder satisfies
// it.
type Recorder interface {
	InsertData(tableName string, entry any)
}

// A Progress receives completion updates for the run.
type Progress interface {
	IncrementFinished(amount uint64)
}

// StepEvent advances the assembly by one tick.
type StepEvent struct {
	*sim.EventBase
}

// EmitEvent assembles and delivers one telemetry sample. It is secondary so
// that it always observes the state after the same-time step.
type EmitEvent struct {
	*sim.EventBase
}

// TelemetryRecord is the flattened per-emission row kept by the recorder.
type TelemetryRecord struct {
	Tick      uint64
	PpCO2     float64
	Caution   bool
	Warning   bool
	Valid     bool
	Timestamp string
}

// A Driver runs the multi-rate schedule on the event engine. It is the only
// writer of the assembly state and runs on the engine's single event
// goroutine.
type Driver struct {
	name string

	engine    sim.Engine
	stepper   Stepper
	assembler *telemetry.Assembler
	sink      telemetry.Sink
	recorder  Recorder
	progress  Progress
	logger    *log.Logger

	stepFreq    sim.Freq
	totalTicks  uint64
	emitEvery   uint64
	sinkTimeout time.Duration

	tickCount uint64
	outcome   Outcome

	emitted      uint64
	invalidCount uint64
}

// Name returns the driver's component name.
func (d *Driver) Name() string {
	return d.name
}

// Outcome returns the latest step outcome.
func (d *Driver) Outcome() Outcome {
	return d.outcome
}

// TicksCompleted returns how many step events have been handled, including
// degraded ones.
func (d *Driver) TicksCompleted() uint64 {
	return d.tickCount
}

// SamplesEmitted returns how many samples have been handed to the sink and
// how many of them were marked invalid.
func (d *Driver) SamplesEmitted() (total, invalid uint64) {
	return d.emitted, d.invalidCount
}

// LatestSample assembles a sample from the latest outcome without emitting
// it. The monitor uses it to answer ad hoc queries.
func (d *Driver) LatestSample() telemetry.Sample {
	return d.assembler.Assemble(
		d.outcome.State, !d.outcome.Degraded, time.Now())
}

// StartRun schedules the first step event. The run terminates once the
// configured number of ticks has been handled and the event queue drains.
func (d *Driver) StartRun() {
	if d.totalTicks == 0 {
		return
	}

	d.outcome = Outcome{State: d.stepper.State()}

	evt := StepEvent{
		EventBase: sim.NewEventBase(
			d.stepFreq.NextTick(d.engine.CurrentTime()), d),
	}
	d.engine.Schedule(evt)
}

// Handle dispatches step and emit events.
func (d *Driver) Handle(e sim.Event) error {
	switch e.(type) {
	case StepEvent:
		d.handleStep(e.Time())
	case EmitEvent:
		d.handleEmit()
	default:
		log.Panicf("driver cannot handle event of type %T", e)
	}

	return nil
}

func (d *Driver) handleStep(now sim.VTimeInSec) {
	state, err := d.stepper.Step()
	d.tickCount++

	if err != nil {
		// Keep the last known-good state and degrade the next emission
		// instead of aborting: the feed favors availability over
		// correctness-or-abort.
		d.outcome.Degraded = true
		d.logger.Printf(
			"step failed at tick %d, continuing with held-over state: %v",
			d.tickCount, err)
	} else {
		d.outcome = Outcome{State: state}
	}

	if d.progress != nil {
		d.progress.IncrementFinished(1)
	}

	emitDue := d.tickCount%d.emitEvery == 0
	if emitDue || err != nil {
		d.engine.Schedule(EmitEvent{
			EventBase: sim.NewSecondaryEventBase(now, d),
		})
	}

	if d.tickCount < d.totalTicks {
		d.engine.Schedule(StepEvent{
			EventBase: sim.NewEventBase(d.stepFreq.NextTick(now), d),
		})
	}
}

func (d *Driver) handleEmit() {
	sample := d.assembler.Assemble(
		d.outcome.State, !d.outcome.Degraded, time.Now())

	d.emitted++
	if !sample.SimulationValid {
		d.invalidCount++
	}

	if d.recorder != nil {
		d.recorder.InsertData("telemetry", TelemetryRecord{
			Tick:      sample.Tick,
			PpCO2:     sample.PpCO2(),
			Caution:   sample.MasterStatus.Caution,
			Warning:   sample.MasterStatus.Warning,
			Valid:     sample.SimulationValid,
			Timestamp: sample.Timestamp,
		})
	}

	// Delivery is fire and forget with its own deadline: a slow or failing
	// sink must not block the next tick.
	ctx, cancel := context.WithTimeout(context.Background(), d.sinkTimeout)
	defer cancel()

	if err := d.sink.Post(ctx, sample); err != nil {
		d.logger.Printf("telemetry delivery failed: %v", err)
	}
}
