package main

import (
	"sync"

	"github.com/daniacca/orrery/internal/orrery"
)

// orreryLoggerAdapter adapts the server's Logger to the orrery.Logger interface
type orreryLoggerAdapter struct {
	logger *Logger
}

func (a *orreryLoggerAdapter) Debugf(format string, v ...any) {
	a.logger.Debugf(format, v...)
}

func (a *orreryLoggerAdapter) Infof(format string, v ...any) {
	a.logger.Infof(format, v...)
}

func (a *orreryLoggerAdapter) Warnf(format string, v ...any) {
	a.logger.Warnf(format, v...)
}

func (a *orreryLoggerAdapter) Errorf(format string, v ...any) {
	a.logger.Errorf(format, v...)
}

// tickFanout forwards committed ticks to several recorders. Recorder errors
// are independent: one failing sink does not starve the others.
type tickFanout struct {
	sinks  []orrery.TickRecorder
	logger *Logger
}

func (f *tickFanout) RecordTick(tick uint64, elapsed float64, bodies []orrery.Body) error {
	for _, sink := range f.sinks {
		if err := sink.RecordTick(tick, elapsed, bodies); err != nil {
			f.logger.Errorf("Tick sink failed: tick=%d error=%v", tick, err)
		}
	}
	return nil
}

// Server exposes a running simulation over HTTP. It also owns the camera
// state, which belongs to the viewing surface rather than the physics core
// but has to survive scenario save/load round trips.
type Server struct {
	sim          *orrery.Simulation
	stream       *StateStream
	logger       *Logger
	tickInterval int // milliseconds, default for /start

	cameraMu sync.RWMutex
	camera   orrery.CameraState
}

// NewServer wires a server around the given simulation.
func NewServer(sim *orrery.Simulation, logger *Logger) *Server {
	sim.SetLogger(&orreryLoggerAdapter{logger: logger})
	return &Server{
		sim:          sim,
		stream:       NewStateStream(),
		logger:       logger,
		tickInterval: 16,
	}
}

// SetTickInterval sets the default interval (in milliseconds) used by /start
// when no interval query parameter is given.
func (s *Server) SetTickInterval(ms int) {
	if ms > 0 {
		s.tickInterval = ms
	}
}

// Camera returns the current camera state.
func (s *Server) Camera() orrery.CameraState {
	s.cameraMu.RLock()
	defer s.cameraMu.RUnlock()
	return s.camera
}

// SetCamera replaces the camera state.
func (s *Server) SetCamera(c orrery.CameraState) {
	s.cameraMu.Lock()
	defer s.cameraMu.Unlock()
	s.camera = c
}
