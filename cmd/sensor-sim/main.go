// sensor-sim posts simulated ultrasonic readings to the sensor endpoint
// at a fixed interval, the way the field units do.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

type reading struct {
	Sensor     string  `json:"sensor"`
	DistanceCm float64 `json:"distance_cm"`
	Alert      bool    `json:"alert"`
	GPS        string  `json:"gps"`
}

const alertThresholdCm = 30

func main() {
	endpoint := flag.String("endpoint", "http://127.0.0.1:8501/api/iot", "sensor endpoint URL")
	interval := flag.Duration("interval", 6*time.Second, "time between readings")
	flag.Parse()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("endpoint", *endpoint).Dur("interval", *interval).Msg("sensor simulator started")

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		send(ctx, log, *endpoint)
		select {
		case <-ctx.Done():
			log.Info().Msg("sensor simulator stopped")
			return
		case <-ticker.C:
		}
	}
}

func send(ctx context.Context, log zerolog.Logger, endpoint string) {
	dist := math.Round((5+rand.Float64()*145)*100) / 100
	payload := reading{
		Sensor:     "ultrasonic",
		DistanceCm: dist,
		Alert:      dist < alertThresholdCm,
		GPS:        "22.3011,73.1925",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("marshal reading")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("send reading")
		return
	}
	resp.Body.Close()

	log.Info().
		Float64("distance_cm", dist).
		Bool("alert", payload.Alert).
		Int("status", resp.StatusCode).
		Msg("reading sent")
}
