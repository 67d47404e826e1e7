package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultBridgeTimeout bounds a single bridge request.
const DefaultBridgeTimeout = 2 * time.Second

type bridgeLogger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// VariableResponse is the bridge's answer to a variable read.
// Value is nil when the simulator has no value.
type VariableResponse struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

// EventResponse is the bridge's answer to an event trigger.
type EventResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is returned by the bridge for failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Bridge is a Client for the simulator bridge HTTP API
// (GET /api/v1/vars/{name}, POST /api/v1/events/{name}).
type Bridge struct {
	BaseURL string
	HTTP    *http.Client
	Timeout time.Duration
	Logger  bridgeLogger

	down atomic.Bool
}

func NewBridge(baseURL string, timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = DefaultBridgeTimeout
	}
	return &Bridge{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Timeout: timeout,
	}
}

// Get reads one variable. Transport or decoding failures are reported as an
// unknown value: missing telemetry never fails a render. An outage is logged
// once when it starts and once when the bridge answers again.
func (b *Bridge) Get(name string) (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout())
	defer cancel()

	value, ok, err := b.GetContext(ctx, name)
	if err != nil {
		if b.down.CompareAndSwap(false, true) && b.Logger != nil {
			b.Logger.Errorf("bridge", "unreachable (read %s): %v", name, err)
		}
		return 0, false
	}
	if b.down.CompareAndSwap(true, false) && b.Logger != nil {
		b.Logger.Infof("bridge", "reachable again at %s", b.BaseURL)
	}
	return value, ok
}

// Down reports whether the last variable read failed.
func (b *Bridge) Down() bool { return b.down.Load() }

func (b *Bridge) GetContext(ctx context.Context, name string) (float64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+"/api/v1/vars/"+url.PathEscape(name), nil)
	if err != nil {
		return 0, false, err
	}
	resp, err := b.client().Do(req)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return 0, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return 0, false, decodeBridgeError(resp)
	}

	var out VariableResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, false, fmt.Errorf("decode variable %s: %w", name, err)
	}
	if out.Value == nil {
		return 0, false, nil
	}
	return *out.Value, true, nil
}

// Find returns a trigger for event. The event is not validated until it
// fires; an unknown name surfaces as ErrUnknownEvent then.
func (b *Bridge) Find(event string) (Event, error) {
	if strings.TrimSpace(event) == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownEvent)
	}
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout())
		defer cancel()
		return b.TriggerContext(ctx, event)
	}, nil
}

func (b *Bridge) TriggerContext(ctx context.Context, event string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+"/api/v1/events/"+url.PathEscape(event), nil)
	if err != nil {
		return err
	}
	resp, err := b.client().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	default:
		return decodeBridgeError(resp)
	}
}

func (b *Bridge) client() *http.Client {
	if b.HTTP != nil {
		return b.HTTP
	}
	return http.DefaultClient
}

func (b *Bridge) timeout() time.Duration {
	if b.Timeout > 0 {
		return b.Timeout
	}
	return DefaultBridgeTimeout
}

func decodeBridgeError(resp *http.Response) error {
	var apiErr ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
		return fmt.Errorf("bridge returned %s", resp.Status)
	}
	return fmt.Errorf("bridge returned %s: %s: %s", resp.Status, apiErr.Error, apiErr.Message)
}
