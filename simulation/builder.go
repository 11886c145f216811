package simulation

import (
	"time"

	"github.com/rs/xid"

	"github.com/orbitlab/cdrasim/cdra"
	"github.com/orbitlab/cdrasim/datarecording"
	"github.com/orbitlab/cdrasim/driver"
	"github.com/orbitlab/cdrasim/monitoring"
	"github.com/orbitlab/cdrasim/sim"
	"github.com/orbitlab/cdrasim/telemetry"
)

// RecorderBackend selects where run data is persisted.
type RecorderBackend int

const (
	// RecorderNone disables data recording.
	RecorderNone RecorderBackend = iota

	// RecorderSQLite records into a local SQLite file.
	RecorderSQLite

	// RecorderClickHouse records into a ClickHouse database.
	RecorderClickHouse
)

// Builder can be used to build a simulation.
type Builder struct {
	cdraConfig    cdra.Config
	totalTicks    uint64
	stepFreq      sim.Freq
	telemetryFreq sim.Freq

	realTime      bool
	realTimeSpeed float64

	sink telemetry.Sink

	recorderBackend RecorderBackend
	outputFileName  string
	clickHouse      datarecording.ClickHouseConfig

	monitorOn     bool
	monitorPort   int
	launchBrowser bool
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		cdraConfig:      cdra.DefaultConfig(),
		totalTicks:      1000,
		stepFreq:        50 * sim.Hz,
		telemetryFreq:   1 * sim.Hz,
		realTimeSpeed:   50,
		recorderBackend: RecorderSQLite,
		monitorOn:       true,
	}
}

// WithConfig sets the assembly configuration.
func (b Builder) WithConfig(cfg cdra.Config) Builder {
	b.cdraConfig = cfg
	return b
}

// WithTotalTicks sets the number of steps in the run.
func (b Builder) WithTotalTicks(n uint64) Builder {
	b.totalTicks = n
	return b
}

// WithStepFreq sets the step rate.
func (b Builder) WithStepFreq(f sim.Freq) Builder {
	b.stepFreq = f
	return b
}

// WithTelemetryFreq sets the telemetry emission rate.
func (b Builder) WithTelemetryFreq(f sim.Freq) Builder {
	b.telemetryFreq = f
	return b
}

// WithRealTimePacing throttles the run so that speed simulated seconds pass
// per wall-clock second.
func (b Builder) WithRealTimePacing(speed float64) Builder {
	b.realTime = true
	b.realTimeSpeed = speed
	return b
}

// WithSink sets the telemetry destination.
func (b Builder) WithSink(s telemetry.Sink) Builder {
	b.sink = s
	return b
}

// WithoutRecording disables the data recorder.
func (b Builder) WithoutRecording() Builder {
	b.recorderBackend = RecorderNone
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithClickHouseRecording records run data into ClickHouse instead of
// SQLite.
func (b Builder) WithClickHouseRecording(
	cfg datarecording.ClickHouseConfig,
) Builder {
	b.recorderBackend = RecorderClickHouse
	b.clickHouse = cfg
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowserLaunch opens the monitor page in the default browser once the
// server is up.
func (b Builder) WithBrowserLaunch() Builder {
	b.launchBrowser = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if b.sink == nil {
		panic("simulation requires a telemetry sink")
	}
}

// Build builds the simulation. It returns an error when the assembly
// configuration is invalid.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	s := &Simulation{}
	s.id = xid.New().String()

	assembly, err := cdra.NewAssembly(b.cdraConfig)
	if err != nil {
		return nil, err
	}
	s.assembly = assembly

	engine := sim.NewSerialEngine()
	if b.realTime {
		engine.WithPacer(
			sim.NewRealTimePacer(b.realTimeSpeed, 500*time.Millisecond))
	}
	s.engine = engine

	s.buildRecorder(b)

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		if b.launchBrowser {
			s.monitor.WithBrowserLaunch()
		}
		s.monitor.RegisterEngine(s.engine)
	}

	driverBuilder := driver.MakeBuilder().
		WithEngine(s.engine).
		WithStepper(assembly).
		WithAssembler(telemetry.NewAssembler()).
		WithSink(b.sink).
		WithStepFreq(b.stepFreq).
		WithTelemetryFreq(b.telemetryFreq).
		WithTotalTicks(b.totalTicks)

	if s.dataRecorder != nil {
		s.dataRecorder.CreateTable("telemetry", driver.TelemetryRecord{})
		driverBuilder = driverBuilder.WithRecorder(s.dataRecorder)
	}

	if s.monitor != nil {
		s.progressBar = s.monitor.CreateProgressBar("ticks", b.totalTicks)
		driverBuilder = driverBuilder.WithProgress(s.progressBar)
	}

	s.driver = driverBuilder.Build("Driver")

	if s.monitor != nil {
		s.monitor.RegisterComponent(s.driver)
		s.monitor.RegisterSampleSource(s.driver)
		s.monitor.StartServer()
	}

	return s, nil
}

func (s *Simulation) buildRecorder(b Builder) {
	switch b.recorderBackend {
	case RecorderNone:
	case RecorderSQLite:
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "cdrasim_" + s.id
		}
		s.dataRecorder = datarecording.New(outputPath)
	case RecorderClickHouse:
		s.dataRecorder = datarecording.NewClickHouseRecorder(b.clickHouse)
	}
}
