package driver

import (
	"log"
	"os"
	"time"

	"github.com/orbitlab/cdrasim/sim"
	"github.com/orbitlab/cdrasim/telemetry"
)

// Builder builds drivers.
type Builder struct {
	engine        sim.Engine
	stepper       Stepper
	assembler     *telemetry.Assembler
	sink          telemetry.Sink
	recorder      Recorder
	progress      Progress
	logger        *log.Logger
	stepFreq      sim.Freq
	telemetryFreq sim.Freq
	totalTicks    uint64
	sinkTimeout   time.Duration
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		stepFreq:      50 * sim.Hz,
		telemetryFreq: 1 * sim.Hz,
		totalTicks:    1000,
		sinkTimeout:   2 * time.Second,
	}
}

// WithEngine sets the event engine that drives the run.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithStepper sets the assembly to advance on each step event.
func (b Builder) WithStepper(s Stepper) Builder {
	b.stepper = s
	return b
}

// WithAssembler sets the telemetry assembler.
func (b Builder) WithAssembler(a *telemetry.Assembler) Builder {
	b.assembler = a
	return b
}

// WithSink sets the destination of emitted samples.
func (b Builder) WithSink(s telemetry.Sink) Builder {
	b.sink = s
	return b
}

// WithRecorder sets an optional recorder for the flattened emission rows.
func (b Builder) WithRecorder(r Recorder) Builder {
	b.recorder = r
	return b
}

// WithProgress sets an optional progress receiver.
func (b Builder) WithProgress(p Progress) Builder {
	b.progress = p
	return b
}

// WithLogger overrides the default logger.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// WithStepFreq sets the rate at which the assembly is stepped.
func (b Builder) WithStepFreq(f sim.Freq) Builder {
	b.stepFreq = f
	return b
}

// WithTelemetryFreq sets the rate at which samples are emitted. The emission
// cadence is derived from the ratio of step rate to telemetry rate, with a
// floor of one emission per step.
func (b Builder) WithTelemetryFreq(f sim.Freq) Builder {
	b.telemetryFreq = f
	return b
}

// WithTotalTicks sets the number of steps in the run.
func (b Builder) WithTotalTicks(n uint64) Builder {
	b.totalTicks = n
	return b
}

// WithSinkTimeout sets the per-delivery deadline.
func (b Builder) WithSinkTimeout(d time.Duration) Builder {
	b.sinkTimeout = d
	return b
}

// Build creates the driver.
func (b Builder) Build(name string) *Driver {
	d := &Driver{
		name:        name,
		engine:      b.engine,
		stepper:     b.stepper,
		assembler:   b.assembler,
		sink:        b.sink,
		recorder:    b.recorder,
		progress:    b.progress,
		logger:      b.logger,
		stepFreq:    b.stepFreq,
		totalTicks:  b.totalTicks,
		sinkTimeout: b.sinkTimeout,
	}

	if d.engine == nil {
		log.Panic("driver requires an engine")
	}

	if d.stepper == nil {
		log.Panic("driver requires a stepper")
	}

	if d.sink == nil {
		log.Panic("driver requires a sink")
	}

	if d.assembler == nil {
		d.assembler = telemetry.NewAssembler()
	}

	if d.logger == nil {
		d.logger = log.New(os.Stderr, "driver | ", log.LstdFlags)
	}

	d.emitEvery = uint64(b.stepFreq / b.telemetryFreq)
	if d.emitEvery < 1 {
		d.emitEvery = 1
	}

	return d
}
