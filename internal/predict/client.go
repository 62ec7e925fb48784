package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kartoza/material-forecast/internal/forecast"
	"github.com/kartoza/material-forecast/internal/metrics"
)

// ErrPredictionFailed is returned for any failed call to the prediction service.
// Its text is what users see.
var ErrPredictionFailed = errors.New("Failed to fetch prediction")

// EndpointPredict is the latency tracker key for /predict calls
const EndpointPredict = "predict"

const maxResponseBytes = 1 << 20

// Client talks to the external prediction service
type Client struct {
	HTTP    *http.Client
	Latency *metrics.LatencyTracker

	mu      sync.RWMutex
	baseURL string
}

// New creates a client for the service at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the current service address
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL points subsequent calls at a different service address
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// errorBody is the shape of the service's error responses
type errorBody struct {
	Error string `json:"error"`
}

// predictBody mirrors forecast.Result with pointers so absent or null
// fields can be told apart from zero
type predictBody struct {
	ACSRConductorM         *float64 `json:"ACSR_Conductor_m"`
	TowersSteelCount       *float64 `json:"Towers_Steel_Count"`
	InsulatorsCount        *float64 `json:"Insulators_Count"`
	PowerTransformersCount *float64 `json:"Power_Transformers_Count"`
	CircuitBreakersCount   *float64 `json:"Circuit_Breakers_Count"`
	ConcreteM3             *float64 `json:"Concrete_m3"`
}

func (b predictBody) result() (*forecast.Result, []string) {
	var missing []string
	get := func(name string, v *float64) float64 {
		if v == nil {
			missing = append(missing, name)
			return 0
		}
		return *v
	}
	res := &forecast.Result{
		ACSRConductorM:         get("ACSR_Conductor_m", b.ACSRConductorM),
		TowersSteelCount:       get("Towers_Steel_Count", b.TowersSteelCount),
		InsulatorsCount:        get("Insulators_Count", b.InsulatorsCount),
		PowerTransformersCount: get("Power_Transformers_Count", b.PowerTransformersCount),
		CircuitBreakersCount:   get("Circuit_Breakers_Count", b.CircuitBreakersCount),
		ConcreteM3:             get("Concrete_m3", b.ConcreteM3),
	}
	return res, missing
}

// Predict sends one forecast request and decodes the six-field result
func (c *Client) Predict(ctx context.Context, req forecast.Request) (*forecast.Result, error) {
	start := time.Now()
	res, err := c.predict(ctx, req)
	if c.Latency != nil {
		c.Latency.Observe(EndpointPredict, time.Since(start), err)
	}
	return res, err
}

func (c *Client) predict(ctx context.Context, req forecast.Request) (*forecast.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrPredictionFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrPredictionFailed, err)
	}

	if res.StatusCode/100 != 2 {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			return nil, fmt.Errorf("%w: status=%d: %s", ErrPredictionFailed, res.StatusCode, eb.Error)
		}
		return nil, fmt.Errorf("%w: status=%d", ErrPredictionFailed, res.StatusCode)
	}

	var pb predictBody
	if err := json.Unmarshal(data, &pb); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrPredictionFailed, err)
	}
	out, missing := pb.result()
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing fields %s", ErrPredictionFailed, strings.Join(missing, ", "))
	}
	return out, nil
}

// Ping checks that the service answers on its root path
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/", nil)
	if err != nil {
		return err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("ping status=%d", res.StatusCode)
	}
	return nil
}
