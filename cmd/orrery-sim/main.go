package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/daniacca/orrery/internal/orrery"
)

func main() {
	var (
		scenarioFile = flag.String("scenario", "", "path to a scenario file (.json or .toml); defaults to the built-in solar system")
		ticks        = flag.Int("ticks", 365, "number of ticks to run")
		dt           = flag.Float64("dt", 1, "wall-clock seconds per tick")
		timeScale    = flag.Float64("time-scale", 86400, "simulated seconds per wall-clock second")
		subSteps     = flag.Int("sub-steps", 60, "integration sub-steps per tick")
		recordDB     = flag.String("record-db", "", "optional sqlite database path for trajectory recording")
		saveFile     = flag.String("save", "", "optional path to write the final state as a scenario (.json or .toml)")
	)
	flag.Parse()

	clock, err := orrery.NewClock(*timeScale, *subSteps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	sim := orrery.NewSimulation(orrery.SeedRegistry(), clock, orrery.NewContext())

	// Camera state has no viewer here, but must survive a load/save cycle
	var camera orrery.CameraState
	if *scenarioFile != "" {
		camera, err = loadScenario(sim, *scenarioFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading scenario: %v\n", err)
			os.Exit(1)
		}
	}

	if *recordDB != "" {
		recorder, err := orrery.NewRecorder(*recordDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening recording database: %v\n", err)
			os.Exit(1)
		}
		defer recorder.Close()
		sim.SetRecorder(recorder)
	}

	// Run simulation
	for i := 0; i < *ticks; i++ {
		sim.Tick(*dt)
	}

	if *saveFile != "" {
		if err := saveScenario(sim, camera, *saveFile); err != nil {
			fmt.Fprintf(os.Stderr, "error saving scenario: %v\n", err)
			os.Exit(1)
		}
	}

	printSummary(sim, *ticks)
}

func loadScenario(sim *orrery.Simulation, path string) (orrery.CameraState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return orrery.CameraState{}, fmt.Errorf("reading scenario file: %w", err)
	}

	var scenario orrery.Scenario
	if strings.HasSuffix(path, ".toml") {
		scenario, err = orrery.DecodeScenarioTOML(data)
	} else {
		scenario, err = orrery.DecodeScenarioJSON(data)
	}
	if err != nil {
		return orrery.CameraState{}, fmt.Errorf("parsing scenario: %w", err)
	}

	if err := scenario.Apply(sim); err != nil {
		return orrery.CameraState{}, fmt.Errorf("applying scenario: %w", err)
	}
	return scenario.Camera, nil
}

func saveScenario(sim *orrery.Simulation, camera orrery.CameraState, path string) error {
	scenario := orrery.CaptureScenario(sim, camera)

	var data []byte
	var err error
	if strings.HasSuffix(path, ".toml") {
		data, err = scenario.EncodeTOML()
	} else {
		data, err = scenario.EncodeJSON()
	}
	if err != nil {
		return fmt.Errorf("encoding scenario: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

func printSummary(sim *orrery.Simulation, ticks int) {
	days := sim.Elapsed() / 86400
	fmt.Printf("Simulation finished (ticks=%d, simulated=%.1f days)\n", ticks, days)
	fmt.Println("Final body state:")

	for _, b := range sim.Snapshot() {
		fmt.Printf("  %-10s pos=(%+.4e, %+.4e, %+.4e) m  |v|=%.1f m/s\n",
			b.Name, b.Position.X(), b.Position.Y(), b.Position.Z(), b.Velocity.Len())
	}
}
