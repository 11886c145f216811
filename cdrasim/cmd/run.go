package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/orbitlab/cdrasim/cdra"
	"github.com/orbitlab/cdrasim/sim"
	"github.com/orbitlab/cdrasim/simulation"
	"github.com/orbitlab/cdrasim/telemetry"
)

var runFlags = struct {
	ticks         uint64
	stepRate      float64
	telemetryRate float64
	realTime      bool
	speed         float64

	sinkURL  string
	sinkFile string

	output      string
	noRecording bool
	clickHouse  string

	noMonitor   bool
	monitorPort int
	browser     bool
	verbose     bool

	filterSaturation string
	valveStuck       string
	fanDegraded      string
	degradedFlow     float64
	heaterFailures   []string
}{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation.",
	Long: `run executes one simulation with the configured duration, rates, ` +
		`and failure windows, and streams telemetry to the configured sink.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runSimulation()
	},
}

func init() {
	f := runCmd.Flags()

	f.Uint64Var(&runFlags.ticks, "ticks", 1000,
		"number of simulation ticks to run")
	f.Float64Var(&runFlags.stepRate, "step-rate", 50,
		"simulation steps per simulated second")
	f.Float64Var(&runFlags.telemetryRate, "telemetry-rate", 1,
		"telemetry emissions per simulated second")
	f.BoolVar(&runFlags.realTime, "real-time", false,
		"pace the run against the wall clock")
	f.Float64Var(&runFlags.speed, "speed", 50,
		"simulated seconds per wall-clock second in real-time mode")

	f.StringVar(&runFlags.sinkURL, "sink-url",
		os.Getenv("CDRASIM_TELEMETRY_URL"),
		"HTTP endpoint receiving telemetry")
	f.StringVar(&runFlags.sinkFile, "sink-file", "",
		"file receiving the latest telemetry sample")

	f.StringVar(&runFlags.output, "output", "",
		"base name of the recording database file")
	f.BoolVar(&runFlags.noRecording, "no-recording", false,
		"disable data recording")
	f.StringVar(&runFlags.clickHouse, "clickhouse", "",
		"record into ClickHouse, formatted as host:port/database")

	f.BoolVar(&runFlags.noMonitor, "no-monitor", false,
		"disable the monitoring server")
	f.IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"port of the monitoring server, random when 0")
	f.BoolVar(&runFlags.browser, "browser", false,
		"open the monitor page in the default browser")
	f.BoolVar(&runFlags.verbose, "verbose", false,
		"log every event the engine triggers")

	f.StringVar(&runFlags.filterSaturation, "filter-saturation", "",
		"filter saturation window, formatted as start:end")
	f.StringVar(&runFlags.valveStuck, "valve-stuck", "",
		"stuck valve window, formatted as start:end")
	f.StringVar(&runFlags.fanDegraded, "fan-degraded", "",
		"degraded fan window, formatted as start:end")
	f.Float64Var(&runFlags.degradedFlow, "degraded-flow", 0.38,
		"fan flow in kg/s while the fan is degraded")
	f.StringSliceVar(&runFlags.heaterFailures, "heater-failure", nil,
		"failed heaters, formatted as sorbent_2,sorbent_4[@start:end]")

	rootCmd.AddCommand(runCmd)
}

func runSimulation() {
	cfg, err := assembleConfig()
	if err != nil {
		log.Fatal(err)
	}

	builder := simulation.MakeBuilder().
		WithConfig(cfg).
		WithTotalTicks(runFlags.ticks).
		WithStepFreq(sim.Freq(runFlags.stepRate) * sim.Hz).
		WithTelemetryFreq(sim.Freq(runFlags.telemetryRate) * sim.Hz).
		WithSink(buildSink())

	if runFlags.realTime {
		builder = builder.WithRealTimePacing(runFlags.speed)
	}

	builder = configureRecording(builder)

	if runFlags.noMonitor {
		builder = builder.WithoutMonitoring()
	} else {
		if runFlags.monitorPort > 0 {
			builder = builder.WithMonitorPort(runFlags.monitorPort)
		}
		if runFlags.browser {
			builder = builder.WithBrowserLaunch()
		}
	}

	s, err := builder.Build()
	if err != nil {
		log.Fatal(err)
	}
	defer s.Terminate()

	if runFlags.verbose {
		s.Engine().AcceptHook(sim.NewEventLogger(log.Default()))
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil {
		log.Fatal(err)
	}

	total, invalid := s.Driver().SamplesEmitted()
	log.Printf("run %s finished: %d ticks, %d samples emitted, %d degraded",
		s.ID(), s.Driver().TicksCompleted(), total, invalid)
}

func buildSink() telemetry.Sink {
	if runFlags.sinkFile != "" {
		sink, err := telemetry.NewFileSink(runFlags.sinkFile)
		if err != nil {
			log.Fatal(err)
		}
		return sink
	}

	if runFlags.sinkURL != "" {
		return telemetry.NewHTTPSink(runFlags.sinkURL, 2*time.Second)
	}

	log.Fatal("a telemetry sink is required, " +
		"set --sink-url, --sink-file, or CDRASIM_TELEMETRY_URL")
	return nil
}

func configureRecording(b simulation.Builder) simulation.Builder {
	if runFlags.noRecording {
		return b.WithoutRecording()
	}

	if runFlags.clickHouse != "" {
		cfg, err := parseClickHouse(runFlags.clickHouse)
		if err != nil {
			log.Fatal(err)
		}

		cfg.Username = os.Getenv("CDRASIM_CLICKHOUSE_USER")
		cfg.Password = os.Getenv("CDRASIM_CLICKHOUSE_PASSWORD")

		return b.WithClickHouseRecording(cfg)
	}

	if runFlags.output != "" {
		return b.WithOutputFileName(runFlags.output)
	}

	return b
}

func assembleConfig() (cdra.Config, error) {
	cfg := cdra.DefaultConfig()

	var err error

	cfg.Failures.FilterSaturation, err =
		parseOptionalWindow(runFlags.filterSaturation)
	if err != nil {
		return cfg, err
	}

	cfg.Failures.ValveStuck, err = parseOptionalWindow(runFlags.valveStuck)
	if err != nil {
		return cfg, err
	}

	cfg.Failures.FanDegraded, err = parseOptionalWindow(runFlags.fanDegraded)
	if err != nil {
		return cfg, err
	}
	cfg.Failures.DegradedFlowKgS = runFlags.degradedFlow

	for _, spec := range runFlags.heaterFailures {
		hf, err := parseHeaterFailure(spec)
		if err != nil {
			return cfg, err
		}

		cfg.Failures.HeaterFailures = append(cfg.Failures.HeaterFailures, hf)
	}

	return cfg, nil
}
