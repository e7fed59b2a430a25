package page

import (
	"fmt"

	"github.com/Dhruhi111/Tivaan-Vision/internal/domain/vision"
)

// Pure rendering onto a binding: no network, no errors. Absent targets
// are skipped. Every function here expects the document lock to be held.

// StatusState drives the css state class on the status element.
type StatusState string

const (
	StatusBusy  StatusState = "is-busy"
	StatusOK    StatusState = "is-ok"
	StatusWarn  StatusState = "is-warn"
	StatusError StatusState = "is-error"
)

var statusStates = []string{
	string(StatusBusy), string(StatusOK), string(StatusWarn), string(StatusError),
}

func RenderStatus(b *Binding, state StatusState, msg string) {
	if b.Status == nil {
		return
	}
	b.Status.RemoveClass(statusStates...)
	b.Status.AddClass(string(state))
	b.Status.SetText(msg)
}

func RenderPreview(b *Binding, dataURI string) {
	if b.Preview == nil {
		return
	}
	b.Preview.SetAttr("src", dataURI)
	b.Preview.RemoveAttr("hidden")
}

// RenderDetection fills the metadata and annotated-output slots. Absent
// result fields degrade to "N/A"; a missing image ref hides the annotated
// element instead of leaving a stale one visible.
func RenderDetection(b *Binding, res vision.DetectionResult) {
	if b.Metadata != nil {
		count, risk := "N/A", "N/A"
		if res.VehicleCount != nil {
			count = fmt.Sprintf("%d", *res.VehicleCount)
		}
		if res.RiskLevel != nil {
			risk = *res.RiskLevel
		}
		b.Metadata.SetText(fmt.Sprintf("Vehicles: %s | Risk: %s", count, risk))
	}
	if b.Annotated != nil {
		if res.AnnotatedImageRef != nil {
			b.Annotated.SetAttr("src", *res.AnnotatedImageRef)
			b.Annotated.RemoveAttr("hidden")
		} else {
			b.Annotated.RemoveAttr("src")
			b.Annotated.SetAttr("hidden", "hidden")
		}
	}
}

func RenderSensor(b *Binding, res vision.SensorResult) {
	if b.SensorOut == nil {
		return
	}
	b.SensorOut.SetText(fmt.Sprintf("Distance: %.0f cm | Alert: %s | Action: %s",
		res.DistanceCm, res.Alert, res.RecommendedAction))
}

// RenderSensorFailure marks only the sensor slot as failed. Detection
// results already presented stay untouched.
func RenderSensorFailure(b *Binding) {
	if b.SensorOut == nil {
		return
	}
	b.SensorOut.SetText("Sensor simulation unavailable")
}

func SetTriggerEnabled(b *Binding, enabled bool) {
	if b.Trigger == nil {
		return
	}
	if enabled {
		b.Trigger.RemoveAttr("disabled")
	} else {
		b.Trigger.SetAttr("disabled", "disabled")
	}
}
