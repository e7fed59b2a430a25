package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Dhruhi111/Tivaan-Vision/internal/domain/vision"
)

// SensorClient asks the sensor-simulation endpoint for an advisory given
// a clearance distance. Same failure classification as the detection
// client, but callers treat these failures as non-fatal.
type SensorClient struct {
	endpoint string
	hc       *http.Client
	log      zerolog.Logger
}

func NewSensorClient(endpoint string, log zerolog.Logger) *SensorClient {
	return &SensorClient{
		endpoint: endpoint,
		hc:       &http.Client{},
		log:      log,
	}
}

type sensorRequest struct {
	Distance float64 `json:"distance"`
}

func (c *SensorClient) Simulate(ctx context.Context, distanceCm float64) (vision.SensorResult, error) {
	payload, err := json.Marshal(sensorRequest{Distance: distanceCm})
	if err != nil {
		return vision.SensorResult{}, fmt.Errorf("marshal sensor request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return vision.SensorResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return vision.SensorResult{}, fmt.Errorf("%w: %s", vision.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return vision.SensorResult{}, &vision.ServerError{Status: resp.StatusCode}
	}

	var res vision.SensorResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return vision.SensorResult{}, fmt.Errorf("%w: %s", vision.ErrProtocol, err)
	}

	c.log.Debug().
		Float64("distance_cm", res.DistanceCm).
		Str("alert", res.Alert).
		Msg("sensor response normalized")
	return res, nil
}
