package vision

// DetectionResult is the normalized view of a detection response. Every
// field is optional: the upstream service omits whatever it could not
// produce, and absence must degrade to "N/A" rendering rather than abort.
type DetectionResult struct {
	AnnotatedImageRef *string `json:"annotated_image,omitempty"`
	VehicleCount      *int    `json:"vehicle_count,omitempty"`
	RiskLevel         *string `json:"risk_level,omitempty"`
}

// HasCount reports whether the result carries a usable vehicle count,
// which is the precondition for the sensor simulation step.
func (r DetectionResult) HasCount() bool {
	return r.VehicleCount != nil
}

type SensorResult struct {
	DistanceCm        float64 `json:"distance"`
	Alert             string  `json:"alert"`
	RecommendedAction string  `json:"recommended_action"`
}
