package main

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/daniacca/orrery/internal/orrery"
)

// bodyState is the JSON shape of one body in state responses and websocket
// frames.
type bodyState struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
	Mass     float64    `json:"mass"`
	Colour   [4]float32 `json:"colour"`
}

func toBodyStates(bodies []orrery.Body) []bodyState {
	out := make([]bodyState, len(bodies))
	for i, b := range bodies {
		out[i] = bodyState{
			ID:       b.ID,
			Name:     b.Name,
			Category: b.Category.String(),
			Position: [3]float64{b.Position.X(), b.Position.Y(), b.Position.Z()},
			Velocity: [3]float64{b.Velocity.X(), b.Velocity.Y(), b.Velocity.Z()},
			Mass:     b.Mass,
			Colour:   [4]float32(b.Colour),
		}
	}
	return out
}

// stateResponse is the JSON shape of GET /state.
type stateResponse struct {
	Tick                  uint64      `json:"tick"`
	Elapsed               float64     `json:"elapsed"`
	TimeScale             float64     `json:"time_scale"`
	SubSteps              int         `json:"sub_steps"`
	GravitationalConstant float64     `json:"gravitational_constant"`
	Bodies                []bodyState `json:"bodies"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GET /state
// Full snapshot of the simulation at a committed tick boundary
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse{
		Tick:                  s.sim.TickCount(),
		Elapsed:               s.sim.Elapsed(),
		TimeScale:             s.sim.TimeScale(),
		SubSteps:              s.sim.SubSteps(),
		GravitationalConstant: s.sim.GravitationalConstant(),
		Bodies:                toBodyStates(s.sim.Snapshot()),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /tick
// Manually trigger a single tick (useful for testing/debugging when auto-running is disabled)
// Query param: dt (wall-clock seconds for the tick, default: 1)
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	dt := 1.0
	if dtStr := r.URL.Query().Get("dt"); dtStr != "" {
		v, err := strconv.ParseFloat(dtStr, 64)
		if err != nil || v <= 0 || math.IsInf(v, 0) {
			http.Error(w, "invalid dt: must be a positive number of seconds", http.StatusBadRequest)
			return
		}
		dt = v
	}

	s.sim.Tick(dt)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ticked"))
}

// POST /start
// Start the simulation auto-running with the specified interval (in milliseconds)
// Query param: interval (default: server's configured tick interval)
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	interval := time.Duration(s.tickInterval) * time.Millisecond
	if intervalStr := r.URL.Query().Get("interval"); intervalStr != "" {
		if ms, err := strconv.Atoi(intervalStr); err == nil && ms > 0 {
			interval = time.Duration(ms) * time.Millisecond
		} else {
			http.Error(w, "invalid interval: must be a positive integer (milliseconds)", http.StatusBadRequest)
			return
		}
	}

	s.sim.Run(interval)
	s.logger.Infof("Simulation started: interval=%v", interval)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("simulation started"))
}

// POST /stop
// Stop the simulation auto-running
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.sim.Stop()
	s.logger.Infof("Simulation stopped")

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("simulation stopped"))
}

// GET /scenario
// Capture the current simulation as a scenario document
// Query param: format (json or toml, default: json)
func (s *Server) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	scenario := orrery.CaptureScenario(s.sim, s.Camera())

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	var data []byte
	var err error
	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		data, err = scenario.EncodeJSON()
	case "toml":
		w.Header().Set("Content-Type", "application/toml")
		data, err = scenario.EncodeTOML()
	default:
		http.Error(w, "unknown format: "+format+" (expected json or toml)", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "cannot encode scenario: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// POST /scenario
// Load a scenario document, replacing the current simulation state
// The format is taken from the Content-Type header (application/toml for
// TOML, JSON otherwise) or forced with the format query param
func (s *Server) handleLoadScenario(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "cannot read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		if r.Header.Get("Content-Type") == "application/toml" {
			format = "toml"
		} else {
			format = "json"
		}
	}

	var scenario orrery.Scenario
	switch format {
	case "json":
		scenario, err = orrery.DecodeScenarioJSON(data)
	case "toml":
		scenario, err = orrery.DecodeScenarioTOML(data)
	default:
		http.Error(w, "unknown format: "+format+" (expected json or toml)", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "invalid scenario: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := scenario.Apply(s.sim); err != nil {
		var verr *orrery.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, "invalid scenario: "+err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Errorf("Failed to apply scenario: error=%v", err)
		http.Error(w, "cannot apply scenario: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.SetCamera(scenario.Camera)
	s.logger.Infof("Scenario loaded: format=%s planets=%d", format, len(scenario.Planets))

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("scenario loaded"))
}

// POST /constants
// Body: { "gravitational_constant": ... }
// The change lands at the next tick boundary
type setConstantsRequest struct {
	GravitationalConstant float64 `json:"gravitational_constant"`
}

func (s *Server) handleSetConstants(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req setConstantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if math.IsNaN(req.GravitationalConstant) || math.IsInf(req.GravitationalConstant, 0) {
		http.Error(w, "gravitational_constant must be finite", http.StatusBadRequest)
		return
	}

	s.sim.QueueGravitationalConstant(req.GravitationalConstant)
	s.logger.Debugf("Gravitational constant queued: g=%v", req.GravitationalConstant)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("constants queued"))
}

// POST /clock
// Body: { "time_scale": ..., "sub_steps": ... }, both fields optional
// Changes land at the next tick boundary
type setClockRequest struct {
	TimeScale *float64 `json:"time_scale"`
	SubSteps  *int     `json:"sub_steps"`
}

func (s *Server) handleSetClock(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req setClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.TimeScale != nil {
		ts := *req.TimeScale
		if ts <= 0 || math.IsNaN(ts) || math.IsInf(ts, 0) {
			http.Error(w, "time_scale must be positive and finite", http.StatusBadRequest)
			return
		}
		s.sim.QueueTimeScale(ts)
	}
	if req.SubSteps != nil {
		if err := s.sim.QueueSubSteps(*req.SubSteps); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("clock queued"))
}

// POST /mass
// Body: { "id": "...", "mass": ... }
// Applies immediately, between ticks
type setMassRequest struct {
	ID   string  `json:"id"`
	Mass float64 `json:"mass"`
}

func (s *Server) handleSetMass(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req setMassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.sim.SetMass(req.ID, req.Mass); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Debugf("Mass updated: id=%s mass=%v", req.ID, req.Mass)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("mass updated"))
}

// GET /camera and PUT /camera
// The camera is viewing state owned by the server, not the physics core
func (s *Server) handleCamera(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.Camera()); err != nil {
			http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		}
	case http.MethodPut:
		defer r.Body.Close()
		var camera orrery.CameraState
		if err := json.NewDecoder(r.Body).Decode(&camera); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
		s.SetCamera(camera)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("camera updated"))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /ws
// Upgrade to a WebSocket that receives a state frame after every tick
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.stream.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade failed: error=%v", err)
		return
	}

	s.stream.RegisterClient(conn)
	s.logger.Debugf("WebSocket client connected: remote=%s", conn.RemoteAddr())

	// Drain the read side so control frames are processed; unregister when
	// the client goes away
	go func() {
		defer s.stream.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// requireMethod wraps a handler so only the given method reaches it
func requireMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// handleScenario dispatches /scenario by method
func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleSaveScenario(w, r)
	case http.MethodPost:
		s.handleLoadScenario(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// routes registers all handlers on the given mux
func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/state", requireMethod(http.MethodGet, s.handleState))
	mux.HandleFunc("/tick", requireMethod(http.MethodPost, s.handleTick))
	mux.HandleFunc("/start", requireMethod(http.MethodPost, s.handleStart))
	mux.HandleFunc("/stop", requireMethod(http.MethodPost, s.handleStop))
	mux.HandleFunc("/scenario", s.handleScenario)
	mux.HandleFunc("/constants", requireMethod(http.MethodPost, s.handleSetConstants))
	mux.HandleFunc("/clock", requireMethod(http.MethodPost, s.handleSetClock))
	mux.HandleFunc("/mass", requireMethod(http.MethodPost, s.handleSetMass))
	mux.HandleFunc("/camera", s.handleCamera)
	mux.HandleFunc("/ws", s.handleWebSocket)
}
