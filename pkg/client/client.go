package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/daniacca/orrery/internal/orrery"
	"github.com/gorilla/websocket"
)

// BodyState is the wire shape of one body in state responses and stream
// frames.
type BodyState struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
	Mass     float64    `json:"mass"`
	Colour   [4]float32 `json:"colour"`
}

// State is a full simulation snapshot as returned by the server.
type State struct {
	Tick                  uint64      `json:"tick"`
	Elapsed               float64     `json:"elapsed"`
	TimeScale             float64     `json:"time_scale"`
	SubSteps              int         `json:"sub_steps"`
	GravitationalConstant float64     `json:"gravitational_constant"`
	Bodies                []BodyState `json:"bodies"`
}

// StateFrame is one message from the streaming endpoint, pushed after every
// committed tick.
type StateFrame struct {
	Tick    uint64      `json:"tick"`
	Elapsed float64     `json:"elapsed"`
	Bodies  []BodyState `json:"bodies"`
}

// ClockUpdate carries clock parameter changes. Nil fields are left
// unchanged on the server.
type ClockUpdate struct {
	TimeScale *float64 `json:"time_scale,omitempty"`
	SubSteps  *int     `json:"sub_steps,omitempty"`
}

// Client talks to an orrery server over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL
// (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithHTTPClient creates a client using a caller-supplied http.Client,
// for custom timeouts or transports.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, path, bytes.NewReader(data), "application/json")
	return err
}

// State fetches the current simulation snapshot.
func (c *Client) State(ctx context.Context) (State, error) {
	data, err := c.do(ctx, http.MethodGet, "/state", nil, "")
	if err != nil {
		return State{}, err
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("failed to decode state: %w", err)
	}
	return s, nil
}

// Tick advances the simulation by a single tick of dt wall-clock seconds.
func (c *Client) Tick(ctx context.Context, dt float64) error {
	path := "/tick"
	if dt > 0 {
		path += "?dt=" + strconv.FormatFloat(dt, 'g', -1, 64)
	}
	_, err := c.do(ctx, http.MethodPost, path, nil, "")
	return err
}

// Start begins auto-ticking at the given interval. A non-positive interval
// uses the server's default.
func (c *Client) Start(ctx context.Context, interval time.Duration) error {
	path := "/start"
	if interval > 0 {
		path += "?interval=" + strconv.Itoa(int(interval.Milliseconds()))
	}
	_, err := c.do(ctx, http.MethodPost, path, nil, "")
	return err
}

// Stop halts auto-ticking.
func (c *Client) Stop(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/stop", nil, "")
	return err
}

// SaveScenario captures the server's current state as a scenario document.
func (c *Client) SaveScenario(ctx context.Context) (orrery.Scenario, error) {
	data, err := c.do(ctx, http.MethodGet, "/scenario?format=json", nil, "")
	if err != nil {
		return orrery.Scenario{}, err
	}
	return orrery.DecodeScenarioJSON(data)
}

// LoadScenario replaces the server's simulation state with the given
// scenario. Validation failures come back as server errors naming the bad
// fields.
func (c *Client) LoadScenario(ctx context.Context, scenario orrery.Scenario) error {
	data, err := scenario.EncodeJSON()
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPost, "/scenario", bytes.NewReader(data), "application/json")
	return err
}

// SetGravitationalConstant queues a change of G for the next tick boundary.
func (c *Client) SetGravitationalConstant(ctx context.Context, g float64) error {
	return c.postJSON(ctx, "/constants", map[string]float64{"gravitational_constant": g})
}

// SetClock queues clock parameter changes for the next tick boundary.
func (c *Client) SetClock(ctx context.Context, update ClockUpdate) error {
	return c.postJSON(ctx, "/clock", update)
}

// SetMass updates one body's mass immediately, between ticks.
func (c *Client) SetMass(ctx context.Context, id string, mass float64) error {
	return c.postJSON(ctx, "/mass", map[string]any{"id": id, "mass": mass})
}

// Camera fetches the server's camera state.
func (c *Client) Camera(ctx context.Context) (orrery.CameraState, error) {
	data, err := c.do(ctx, http.MethodGet, "/camera", nil, "")
	if err != nil {
		return orrery.CameraState{}, err
	}
	var camera orrery.CameraState
	if err := json.Unmarshal(data, &camera); err != nil {
		return orrery.CameraState{}, fmt.Errorf("failed to decode camera: %w", err)
	}
	return camera, nil
}

// SetCamera replaces the server's camera state.
func (c *Client) SetCamera(ctx context.Context, camera orrery.CameraState) error {
	data, err := json.Marshal(camera)
	if err != nil {
		return fmt.Errorf("failed to marshal camera: %w", err)
	}
	_, err = c.do(ctx, http.MethodPut, "/camera", bytes.NewReader(data), "application/json")
	return err
}

// Subscribe opens a WebSocket to the server's stream endpoint and delivers
// one StateFrame per committed tick. The channel closes when the connection
// drops or ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context) (<-chan StateFrame, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	frames := make(chan StateFrame, 16)
	go func() {
		defer close(frames)
		defer conn.Close()

		// Close the connection when the context ends so the read loop
		// unblocks
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-done:
			}
		}()

		for {
			var frame StateFrame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frames, nil
}
