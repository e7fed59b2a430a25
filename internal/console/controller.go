package console

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/Dhruhi111/Tivaan-Vision/internal/client"
	"github.com/Dhruhi111/Tivaan-Vision/internal/domain/vision"
	"github.com/Dhruhi111/Tivaan-Vision/internal/page"
)

var (
	ErrUnknownControl = errors.New("unknown control")
	ErrControlBusy    = errors.New("control busy")
)

// User-visible status lines, one per failure kind plus the two happy ones.
const (
	msgProcessing      = "Processing image..."
	msgNoFile          = "Please choose an image file first."
	msgNetworkError    = "Network error: could not reach the detection service."
	msgInvalidResponse = "Invalid response from the detection service."
	msgDetectionDone   = "Detection complete."
)

// Console binds page controls to the detection and sensor clients and
// drives the per-run state machine. The registry maps the trigger node
// itself to its binding, which is what makes attachment idempotent.
type Console struct {
	doc    *page.Document
	detect *client.DetectionClient
	sensor *client.SensorClient
	log    zerolog.Logger

	mu       sync.Mutex
	bindings map[*html.Node]*page.Binding
	byKey    map[string]*page.Binding
	seq      int
}

func New(doc *page.Document, detect *client.DetectionClient, sensor *client.SensorClient, log zerolog.Logger) *Console {
	return &Console{
		doc:      doc,
		detect:   detect,
		sensor:   sensor,
		log:      log,
		bindings: make(map[*html.Node]*page.Binding),
		byKey:    make(map[string]*page.Binding),
	}
}

func (c *Console) Doc() *page.Document {
	return c.doc
}

// Attach scans the page for trigger controls and binds every one not yet
// in the registry. Safe to call repeatedly; controls injected after the
// initial scan are picked up on the next call. Returns how many new
// bindings were made.
func (c *Console) Attach() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	bound := 0
	c.doc.Update(func(root *goquery.Document) {
		page.Triggers(root).Each(func(_ int, trigger *goquery.Selection) {
			node := trigger.Get(0)
			if _, exists := c.bindings[node]; exists {
				return
			}
			b, err := page.Locate(root, trigger)
			if err != nil {
				c.log.Warn().Err(err).Msg("skipping unusable control")
				return
			}
			b.Key = c.controlKey(trigger)
			c.bindings[node] = b
			c.byKey[b.Key] = b
			bound++
			c.log.Info().Str("control", b.Key).Msg("control bound")
		})
	})
	return bound
}

// controlKey derives a stable addressable key for a trigger: its id, else
// an existing data-control attribute, else a generated one written back
// to the element so later requests can name it. Caller holds the
// document lock.
func (c *Console) controlKey(trigger *goquery.Selection) string {
	key := trigger.AttrOr("id", "")
	if key == "" {
		key = trigger.AttrOr("data-control", "")
	}
	if key == "" || c.byKey[key] != nil {
		c.seq++
		key = fmt.Sprintf("control-%d", c.seq)
		trigger.SetAttr("data-control", key)
	}
	return key
}

// ControlKeys lists the bound controls in stable order.
func (c *Console) ControlKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.byKey))
	for k := range c.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RunOutcome is what an activation reports back to the API caller. It
// mirrors what the page now shows.
type RunOutcome struct {
	RunID        string                  `json:"run_id"`
	Control      string                  `json:"control"`
	State        string                  `json:"state"`
	Status       string                  `json:"status"`
	Detection    *vision.DetectionResult `json:"detection,omitempty"`
	Sensor       *vision.SensorResult    `json:"sensor,omitempty"`
	SensorFailed bool                    `json:"sensor_failed,omitempty"`
}

// Activate runs the full pipeline for one control: validate the upload,
// preview it, call detection, present, derive the clearance distance,
// call the sensor simulation, present again. The trigger is disabled for
// the whole run and re-enabled on every exit path.
func (c *Console) Activate(ctx context.Context, key, filename string, content []byte) (*RunOutcome, error) {
	c.mu.Lock()
	b, ok := c.byKey[key]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownControl, key)
	}
	if !b.TryAcquire() {
		return nil, fmt.Errorf("%w: %q", ErrControlBusy, key)
	}
	defer func() {
		c.doc.Update(func(*goquery.Document) {
			page.SetTriggerEnabled(b, true)
		})
		b.Release()
	}()

	runID := uuid.NewString()
	log := c.log.With().Str("run_id", runID).Str("control", key).Logger()
	outcome := &RunOutcome{RunID: runID, Control: key}
	state := StateIdle

	c.to(log, &state, StateValidating)
	c.doc.Update(func(*goquery.Document) {
		page.SetTriggerEnabled(b, false)
		page.RenderStatus(b, page.StatusBusy, msgProcessing)
	})

	if len(content) == 0 {
		c.to(log, &state, StateErrorTerminal)
		c.doc.Update(func(*goquery.Document) {
			page.RenderStatus(b, page.StatusWarn, msgNoFile)
		})
		outcome.State, outcome.Status = state.String(), msgNoFile
		log.Warn().Msg("activation without a selected file")
		return outcome, vision.ErrNoFile
	}

	c.preview(log, b, content)

	c.to(log, &state, StateAwaitingDetection)
	det, err := c.detect.Detect(ctx, filename, content)
	if err != nil {
		msg := detectionFailureMessage(err)
		c.to(log, &state, StateErrorTerminal)
		c.doc.Update(func(*goquery.Document) {
			page.RenderStatus(b, page.StatusError, msg)
		})
		outcome.State, outcome.Status = state.String(), msg
		log.Error().Err(err).Msg("detection call failed")
		return outcome, err
	}

	c.to(log, &state, StatePresenting)
	c.doc.Update(func(*goquery.Document) {
		page.RenderStatus(b, page.StatusOK, msgDetectionDone)
		page.RenderDetection(b, det)
	})
	outcome.Detection = &det
	outcome.Status = msgDetectionDone

	if det.HasCount() && b.SensorOut != nil {
		c.to(log, &state, StateAwaitingSensor)
		distance := vision.DeriveSensorDistance(*det.VehicleCount)
		sens, err := c.sensor.Simulate(ctx, distance)
		if err != nil {
			// Contained failure: only the sensor slot degrades, the
			// detection results stay presented.
			outcome.SensorFailed = true
			c.doc.Update(func(*goquery.Document) {
				page.RenderSensorFailure(b)
			})
			log.Warn().Err(err).Float64("distance_cm", distance).Msg("sensor step failed")
		} else {
			outcome.Sensor = &sens
			c.doc.Update(func(*goquery.Document) {
				page.RenderSensor(b, sens)
			})
		}
	}

	c.to(log, &state, StateDone)
	refreshed := c.doc.RefreshThumbnails(time.Now())
	log.Info().
		Int("thumbnails_refreshed", refreshed).
		Bool("sensor_failed", outcome.SensorFailed).
		Msg("run complete")
	outcome.State = state.String()
	return outcome, nil
}

// preview renders a data-URI preview of the upload if the control has a
// preview slot. Best effort: anything that is not an image is logged and
// skipped, never fatal.
func (c *Console) preview(log zerolog.Logger, b *page.Binding, content []byte) {
	if b.Preview == nil {
		return
	}
	mime := http.DetectContentType(content)
	if !strings.HasPrefix(mime, "image/") {
		log.Debug().Str("mime", mime).Msg("upload is not an image, skipping preview")
		return
	}
	uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(content)
	c.doc.Update(func(*goquery.Document) {
		page.RenderPreview(b, uri)
	})
}

// to advances the run state, logging the move. An illegal transition is
// a programming error; it is logged loudly but the run continues.
func (c *Console) to(log zerolog.Logger, state *RunState, next RunState) {
	if !canTransition(*state, next) {
		log.Error().
			Str("from", state.String()).
			Str("to", next.String()).
			Msg("illegal state transition")
	} else {
		log.Debug().
			Str("from", state.String()).
			Str("to", next.String()).
			Msg("state transition")
	}
	*state = next
}

func detectionFailureMessage(err error) string {
	var srv *vision.ServerError
	switch {
	case errors.Is(err, vision.ErrTransport):
		return msgNetworkError
	case errors.As(err, &srv):
		return fmt.Sprintf("Detection service error (HTTP %d)", srv.Status)
	case errors.Is(err, vision.ErrProtocol):
		return msgInvalidResponse
	default:
		return "Detection failed."
	}
}
