package orrery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl64"
)

// TimeState records when a scenario was saved and at what time scale it
// was running.
type TimeState struct {
	DateTime  string  `json:"date_time" toml:"date_time"`
	TimeScale float64 `json:"time_scale" toml:"time_scale"`
}

// ConstantState holds the tunable physical constants.
type ConstantState struct {
	GravitationalConstant float64 `json:"gravitational_constant" toml:"gravitational_constant"`
}

// CameraState belongs to the rendering surface; the core round-trips it
// untouched so a saved viewpoint survives load.
type CameraState struct {
	Position [3]float32 `json:"position" toml:"position"`
	Speed    float32    `json:"speed" toml:"speed"`
}

// PlanetState is one serialized orbiter. The anchor body never appears in
// the planet list; it is built in, not deserialized.
type PlanetState struct {
	ID       string     `json:"id" toml:"id"`
	Name     string     `json:"name" toml:"name"`
	Position [3]float64 `json:"position" toml:"position"`
	Velocity [3]float64 `json:"velocity" toml:"velocity"`
	Mass     float64    `json:"mass" toml:"mass"`
	Colour   [4]float32 `json:"colour" toml:"colour"`
}

// Scenario is the serialized save-file schema, identical in JSON and TOML.
type Scenario struct {
	Time      TimeState     `json:"time" toml:"time"`
	Constants ConstantState `json:"constants" toml:"constants"`
	Camera    CameraState   `json:"camera" toml:"camera"`
	Planets   []PlanetState `json:"planet" toml:"planet"`
}

// CaptureScenario snapshots the running simulation into a scenario
// document. The anchor body is excluded from the planet list. Camera state
// is supplied by the rendering surface; pass the zero value when there is
// none.
func CaptureScenario(sim *Simulation, camera CameraState) Scenario {
	bodies := sim.Snapshot()
	anchorID := sim.AnchorID()

	planets := make([]PlanetState, 0, len(bodies))
	for _, b := range bodies {
		if b.ID == anchorID {
			continue
		}
		planets = append(planets, PlanetState{
			ID:       b.ID,
			Name:     b.Name,
			Position: [3]float64{b.Position.X(), b.Position.Y(), b.Position.Z()},
			Velocity: [3]float64{b.Velocity.X(), b.Velocity.Y(), b.Velocity.Z()},
			Mass:     b.Mass,
			Colour:   [4]float32(b.Colour),
		})
	}

	return Scenario{
		Time: TimeState{
			DateTime:  time.Now().UTC().Format(time.RFC3339),
			TimeScale: sim.TimeScale(),
		},
		Constants: ConstantState{GravitationalConstant: sim.GravitationalConstant()},
		Camera:    camera,
		Planets:   planets,
	}
}

// EncodeJSON serializes the scenario as indented JSON.
func (s Scenario) EncodeJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode scenario: %w", err)
	}
	return data, nil
}

// DecodeScenarioJSON parses a JSON scenario document. Syntax and shape
// failures come back as *FormatError.
func DecodeScenarioJSON(data []byte) (Scenario, error) {
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return Scenario{}, &FormatError{Format: "json", Err: err}
	}
	return s, nil
}

// EncodeTOML serializes the scenario as TOML.
func (s Scenario) EncodeTOML() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode scenario: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeScenarioTOML parses a TOML scenario document. Syntax and shape
// failures come back as *FormatError.
func DecodeScenarioTOML(data []byte) (Scenario, error) {
	var s Scenario
	if err := toml.Unmarshal(data, &s); err != nil {
		return Scenario{}, &FormatError{Format: "toml", Err: err}
	}
	return s, nil
}

func finiteVec(v [3]float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Validate checks the decoded scenario for semantic problems and reports
// all of them in one *ValidationError.
func (s Scenario) Validate() error {
	err := &ValidationError{}

	if _, perr := time.Parse(time.RFC3339, s.Time.DateTime); perr != nil {
		err.Add("time.date_time is not a valid RFC 3339 timestamp: " + s.Time.DateTime)
	}
	if s.Time.TimeScale <= 0 || math.IsNaN(s.Time.TimeScale) || math.IsInf(s.Time.TimeScale, 0) {
		err.Add(fmt.Sprintf("time.time_scale must be positive and finite, got %v", s.Time.TimeScale))
	}
	g := s.Constants.GravitationalConstant
	if math.IsNaN(g) || math.IsInf(g, 0) {
		err.Add(fmt.Sprintf("constants.gravitational_constant must be finite, got %v", g))
	}

	seen := make(map[string]struct{})
	for i, p := range s.Planets {
		prefix := fmt.Sprintf("planet at index %d", i)
		if p.ID != "" {
			prefix = "planet '" + p.ID + "'"
		}

		if p.ID == "" {
			err.Add(prefix + ": id is required")
		} else if _, dup := seen[p.ID]; dup {
			err.Add("duplicate planet id: " + p.ID)
		} else {
			seen[p.ID] = struct{}{}
		}

		if p.Mass <= 0 || math.IsNaN(p.Mass) || math.IsInf(p.Mass, 0) {
			err.Add(fmt.Sprintf("%s: mass must be positive and finite, got %v", prefix, p.Mass))
		}
		if !finiteVec(p.Position) {
			err.Add(prefix + ": position must be finite")
		}
		if !finiteVec(p.Velocity) {
			err.Add(prefix + ": velocity must be finite")
		}
	}

	if err.HasIssues() {
		return err
	}
	return nil
}

// Apply validates the scenario and, only if it is fully valid, swaps it
// into the running simulation at a tick boundary. A planet entry carrying
// the anchor's id is dropped: the anchor is always the built-in body and is
// never reconstructed from saved state. On any error the previous
// simulation state is left completely intact.
func (s Scenario) Apply(sim *Simulation) error {
	if err := s.Validate(); err != nil {
		return err
	}

	anchorID := sim.AnchorID()
	orbiters := make([]Body, 0, len(s.Planets))
	for _, p := range s.Planets {
		if p.ID == anchorID {
			continue
		}
		orbiters = append(orbiters, Body{
			ID:       p.ID,
			Name:     p.Name,
			Position: mgl64.Vec3(p.Position),
			Velocity: mgl64.Vec3(p.Velocity),
			Mass:     p.Mass,
			Colour:   Colour(p.Colour),
			Category: CategoryPlanet,
			Flags:    FlagAll,
		})
	}

	return sim.replaceState(s.Constants.GravitationalConstant, s.Time.TimeScale, orbiters)
}
