// Package simulation assembles the engine, the assembly, the driver, and the
// supporting services into a runnable whole.
package simulation

import (
	"context"

	"github.com/orbitlab/cdrasim/cdra"
	"github.com/orbitlab/cdrasim/datarecording"
	"github.com/orbitlab/cdrasim/driver"
	"github.com/orbitlab/cdrasim/monitoring"
	"github.com/orbitlab/cdrasim/sim"
)

// A Simulation provides the services required to run one configured run.
type Simulation struct {
	id string

	engine   sim.Engine
	assembly *cdra.Assembly
	driver   *driver.Driver

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	progressBar  *monitoring.ProgressBar
}

// ID returns the unique identifier of the run.
func (s *Simulation) ID() string {
	return s.id
}

// Engine returns the engine used in the simulation.
func (s *Simulation) Engine() sim.Engine {
	return s.engine
}

// Driver returns the driver of the run.
func (s *Simulation) Driver() *driver.Driver {
	return s.driver
}

// Assembly returns the simulated removal assembly.
func (s *Simulation) Assembly() *cdra.Assembly {
	return s.assembly
}

// DataRecorder returns the data recorder used in the simulation. It is nil
// when recording is disabled.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Run executes the configured run to completion or until the context is
// cancelled.
func (s *Simulation) Run(ctx context.Context) error {
	s.driver.StartRun()

	err := s.engine.Run(ctx)
	if err != nil {
		return err
	}

	s.engine.Finished()

	if s.monitor != nil && s.progressBar != nil {
		s.monitor.CompleteProgressBar(s.progressBar)
	}

	return nil
}

// Terminate releases the simulation's resources and flushes recorded data.
func (s *Simulation) Terminate() {
	if s.dataRecorder != nil {
		s.dataRecorder.Close()
	}
}
