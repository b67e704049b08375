package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/daniacca/orrery/internal/orrery"
)

// loadScenarioFromFile reads and applies a scenario file, picking the codec
// from the file extension.
func loadScenarioFromFile(sim *orrery.Simulation, path string) (orrery.CameraState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return orrery.CameraState{}, err
	}

	var scenario orrery.Scenario
	if strings.HasSuffix(path, ".toml") {
		scenario, err = orrery.DecodeScenarioTOML(data)
	} else {
		scenario, err = orrery.DecodeScenarioJSON(data)
	}
	if err != nil {
		return orrery.CameraState{}, err
	}

	if err := scenario.Apply(sim); err != nil {
		return orrery.CameraState{}, err
	}
	return scenario.Camera, nil
}

func main() {
	cfg := loadServerConfig()
	logger := NewLogger(cfg.LogLevel)

	clock, err := orrery.NewClock(86400, 60)
	if err != nil {
		logger.Fatalf("Cannot build clock: error=%v", err)
	}
	sim := orrery.NewSimulation(orrery.SeedRegistry(), clock, orrery.NewContext())

	srv := NewServer(sim, logger)
	srv.SetTickInterval(cfg.TickIntervalMS)

	if cfg.ScenarioFile != "" {
		camera, err := loadScenarioFromFile(sim, cfg.ScenarioFile)
		if err != nil {
			logger.Fatalf("Cannot load scenario file: path=%s error=%v", cfg.ScenarioFile, err)
		}
		srv.SetCamera(camera)
		logger.Infof("Scenario loaded from file: path=%s", cfg.ScenarioFile)
	}

	// Every committed tick goes to the websocket stream, and to the sqlite
	// recorder when one is configured
	fanout := &tickFanout{sinks: []orrery.TickRecorder{srv.stream}, logger: logger}
	if cfg.RecordDB != "" {
		recorder, err := orrery.NewRecorder(cfg.RecordDB)
		if err != nil {
			logger.Fatalf("Cannot open recording database: path=%s error=%v", cfg.RecordDB, err)
		}
		defer recorder.Close()
		fanout.sinks = append(fanout.sinks, recorder)
		logger.Infof("Trajectory recording enabled: path=%s", cfg.RecordDB)
	}
	sim.SetRecorder(fanout)

	mux := http.NewServeMux()
	srv.routes(mux)

	logger.Infof("orrery-server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Fatalf("Server stopped: error=%v", err)
	}
}
