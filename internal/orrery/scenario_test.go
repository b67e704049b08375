package orrery

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testSimulation(t *testing.T) *Simulation {
	t.Helper()
	clock, err := NewClock(86400, 60)
	if err != nil {
		t.Fatalf("NewClock failed: %v", err)
	}
	return NewSimulation(SeedRegistry(), clock, NewContext())
}

func validScenario() Scenario {
	return Scenario{
		Time: TimeState{
			DateTime:  "2022-10-15T15:05:28Z",
			TimeScale: 86400,
		},
		Constants: ConstantState{GravitationalConstant: BigG},
		Camera: CameraState{
			Position: [3]float32{0, 10, -40},
			Speed:    2.5,
		},
		Planets: []PlanetState{
			{
				ID:       "earth",
				Name:     "Earth",
				Position: [3]float64{149.596e9, 1.5, -2.25},
				Velocity: [3]float64{0, 29.78e3, 0.125},
				Mass:     5.9724e24,
				Colour:   [4]float32{0, 1, 0, 1},
			},
			{
				ID:       "mars",
				Name:     "Mars",
				Position: [3]float64{227.923e9, 0, 0},
				Velocity: [3]float64{0, 24.07e3, 0},
				Mass:     0.64171e24,
				Colour:   [4]float32{1, 0, 0, 1},
			},
		},
	}
}

func TestScenarioRoundTripJSON(t *testing.T) {
	want := validScenario()

	data, err := want.EncodeJSON()
	if err != nil {
		t.Fatalf("EncodeJSON failed: %v", err)
	}
	got, err := DecodeScenarioJSON(data)
	if err != nil {
		t.Fatalf("DecodeScenarioJSON failed: %v", err)
	}

	assertScenarioEqual(t, got, want)
}

func TestScenarioRoundTripTOML(t *testing.T) {
	want := validScenario()

	data, err := want.EncodeTOML()
	if err != nil {
		t.Fatalf("EncodeTOML failed: %v", err)
	}
	got, err := DecodeScenarioTOML(data)
	if err != nil {
		t.Fatalf("DecodeScenarioTOML failed: %v", err)
	}

	assertScenarioEqual(t, got, want)
}

// Every numeric field must survive the round trip bit-for-bit; the schema
// introduces no lossy re-encoding.
func assertScenarioEqual(t *testing.T, got, want Scenario) {
	t.Helper()
	if got.Time != want.Time {
		t.Errorf("Time = %+v, want %+v", got.Time, want.Time)
	}
	if got.Constants != want.Constants {
		t.Errorf("Constants = %+v, want %+v", got.Constants, want.Constants)
	}
	if got.Camera != want.Camera {
		t.Errorf("Camera = %+v, want %+v", got.Camera, want.Camera)
	}
	if len(got.Planets) != len(want.Planets) {
		t.Fatalf("Planet count = %d, want %d", len(got.Planets), len(want.Planets))
	}
	for i := range want.Planets {
		if got.Planets[i] != want.Planets[i] {
			t.Errorf("Planet %d = %+v, want %+v", i, got.Planets[i], want.Planets[i])
		}
	}
}

func TestDecodeScenarioMalformed(t *testing.T) {
	var formatErr *FormatError

	if _, err := DecodeScenarioJSON([]byte(`{"time": `)); !errors.As(err, &formatErr) {
		t.Errorf("Expected *FormatError for truncated JSON, got %v", err)
	}
	if _, err := DecodeScenarioJSON([]byte(`{"time": {"time_scale": "fast"}}`)); !errors.As(err, &formatErr) {
		t.Errorf("Expected *FormatError for wrong field type, got %v", err)
	}
	if _, err := DecodeScenarioTOML([]byte("[time\ntime_scale = 1")); !errors.As(err, &formatErr) {
		t.Errorf("Expected *FormatError for broken TOML, got %v", err)
	}
}

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Scenario)
		wantMsg string
	}{
		{
			name:    "valid",
			mutate:  func(s *Scenario) {},
			wantMsg: "",
		},
		{
			name:    "bad timestamp",
			mutate:  func(s *Scenario) { s.Time.DateTime = "yesterday" },
			wantMsg: "date_time",
		},
		{
			name:    "zero time scale",
			mutate:  func(s *Scenario) { s.Time.TimeScale = 0 },
			wantMsg: "time_scale",
		},
		{
			name:    "negative mass",
			mutate:  func(s *Scenario) { s.Planets[0].Mass = -1 },
			wantMsg: "mass",
		},
		{
			name:    "empty planet id",
			mutate:  func(s *Scenario) { s.Planets[0].ID = "" },
			wantMsg: "id is required",
		},
		{
			name:    "duplicate planet id",
			mutate:  func(s *Scenario) { s.Planets[1].ID = "earth" },
			wantMsg: "duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScenario()
			tt.mutate(&s)
			err := s.Validate()

			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestScenarioValidateCollectsAllIssues(t *testing.T) {
	s := validScenario()
	s.Time.DateTime = "nope"
	s.Planets[0].Mass = -1
	s.Planets[1].ID = ""

	var verr *ValidationError
	if err := s.Validate(); !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	} else if len(verr.Issues) != 3 {
		t.Errorf("Expected 3 issues, got %d: %v", len(verr.Issues), verr.Issues)
	}
}

func TestScenarioApply(t *testing.T) {
	sim := testSimulation(t)
	s := validScenario()
	s.Time.TimeScale = 3600
	s.Constants.GravitationalConstant = 2 * BigG

	if err := s.Apply(sim); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	bodies := sim.Snapshot()
	if len(bodies) != 3 { // anchor + 2 loaded planets
		t.Errorf("Expected 3 bodies after load, got %d", len(bodies))
	}
	if bodies[0].ID != "sun" {
		t.Errorf("Anchor lost: first body is %s", bodies[0].ID)
	}
	if sim.TimeScale() != 3600 {
		t.Errorf("TimeScale = %v, want 3600", sim.TimeScale())
	}
	if sim.GravitationalConstant() != 2*BigG {
		t.Errorf("G = %v, want %v", sim.GravitationalConstant(), 2*BigG)
	}
}

// A planet entry reusing the anchor id is dropped, never reconstructed:
// the anchor is always the built-in body.
func TestScenarioApplySkipsAnchorEntry(t *testing.T) {
	sim := testSimulation(t)
	s := validScenario()
	s.Planets = append(s.Planets, PlanetState{
		ID: "sun", Name: "Impostor Sun",
		Position: [3]float64{1, 1, 1},
		Mass:     1,
	})

	if err := s.Apply(sim); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	bodies := sim.Snapshot()
	if len(bodies) != 3 {
		t.Errorf("Expected 3 bodies, got %d", len(bodies))
	}
	if bodies[0].Name != "Sun" || bodies[0].Position != Sun.Position {
		t.Errorf("Anchor was overwritten from the save file: %+v", bodies[0])
	}
}

// A failed load leaves the running simulation completely intact.
func TestScenarioApplyFailureLeavesStateIntact(t *testing.T) {
	sim := testSimulation(t)
	before := sim.Snapshot()
	beforeG := sim.GravitationalConstant()

	s := validScenario()
	s.Planets[0].Mass = -1

	err := s.Apply(sim)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	}

	after := sim.Snapshot()
	if len(after) != len(before) {
		t.Fatalf("Body count changed from %d to %d after failed load", len(before), len(after))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("Body %d changed after failed load", i)
		}
	}
	if sim.GravitationalConstant() != beforeG {
		t.Error("G changed after failed load")
	}
}

func TestCaptureScenario(t *testing.T) {
	sim := testSimulation(t)
	camera := CameraState{Position: [3]float32{1, 2, 3}, Speed: 4}

	s := CaptureScenario(sim, camera)

	if len(s.Planets) != 8 {
		t.Errorf("Expected 8 planets (anchor excluded), got %d", len(s.Planets))
	}
	for _, p := range s.Planets {
		if p.ID == "sun" {
			t.Error("Anchor must not appear in the planet list")
		}
	}
	if s.Camera != camera {
		t.Errorf("Camera = %+v, want %+v", s.Camera, camera)
	}
	if s.Time.TimeScale != 86400 {
		t.Errorf("TimeScale = %v, want 86400", s.Time.TimeScale)
	}
	if _, err := time.Parse(time.RFC3339, s.Time.DateTime); err != nil {
		t.Errorf("Captured date_time %q is not RFC 3339: %v", s.Time.DateTime, err)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Captured scenario fails its own validation: %v", err)
	}
}

// Capture then apply reconstructs an equivalent registry.
func TestScenarioCaptureApplyRoundTrip(t *testing.T) {
	sim := testSimulation(t)
	want := sim.Snapshot()

	s := CaptureScenario(sim, CameraState{})
	fresh := testSimulation(t)
	if err := s.Apply(fresh); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	got := fresh.Snapshot()
	if len(got) != len(want) {
		t.Fatalf("Body count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID ||
			got[i].Position != want[i].Position ||
			got[i].Velocity != want[i].Velocity ||
			got[i].Mass != want[i].Mass {
			t.Errorf("Body %d differs: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
