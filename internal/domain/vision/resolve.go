package vision

import (
	"math"
	"strconv"
	"strings"
)

// Field-name aliases accepted in detection responses, in priority order.
// The deployed backends have shipped several shapes over time; the first
// alias that carries a usable value wins.
var (
	imageAliases = []string{"output_image", "annotated", "image"}
	countAliases = []string{"vehicle_count", "count", "vehicles"}
	riskAliases  = []string{"risk_level", "risk"}
)

// ResolveDetection maps a decoded response object onto a DetectionResult.
// It is a pure function over the decoded body so alias precedence can be
// tested without any network involved.
func ResolveDetection(body map[string]any) DetectionResult {
	var res DetectionResult
	if s, ok := firstString(body, imageAliases); ok {
		res.AnnotatedImageRef = &s
	}
	if n, ok := firstCount(body, countAliases); ok {
		res.VehicleCount = &n
	}
	if s, ok := firstString(body, riskAliases); ok {
		res.RiskLevel = &s
	}
	return res
}

func firstString(body map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		v, present := body[key]
		if !present {
			continue
		}
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		return s, true
	}
	return "", false
}

// firstCount accepts JSON numbers and numeric strings. Negative values
// are treated as absent: a count below zero is never meaningful.
func firstCount(body map[string]any, keys []string) (int, bool) {
	for _, key := range keys {
		v, present := body[key]
		if !present {
			continue
		}
		switch n := v.(type) {
		case float64:
			if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
				continue
			}
			return int(n), true
		case string:
			parsed, err := strconv.Atoi(strings.TrimSpace(n))
			if err != nil || parsed < 0 {
				continue
			}
			return parsed, true
		}
	}
	return 0, false
}

// minSimDistanceCm is the floor for the simulated clearance distance.
const minSimDistanceCm = 5

// DeriveSensorDistance maps vehicle density to a simulated clearance in
// centimeters: denser traffic means less clearance, floored at the
// minimum safe simulation distance.
func DeriveSensorDistance(vehicleCount int) float64 {
	d := math.Round(140 - float64(vehicleCount)*2.0)
	if d < minSimDistanceCm {
		return minSimDistanceCm
	}
	return d
}
