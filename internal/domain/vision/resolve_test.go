package vision

import "testing"

func TestResolveDetectionAliasPrecedence(t *testing.T) {
	body := map[string]any{
		"vehicle_count": float64(12),
		"count":         float64(99),
		"risk_level":    "low",
		"risk":          "high",
		"output_image":  "/static/results/a.jpg",
		"image":         "/static/results/b.jpg",
	}

	res := ResolveDetection(body)

	if res.VehicleCount == nil || *res.VehicleCount != 12 {
		t.Errorf("expected vehicle_count to win with 12, got %v", res.VehicleCount)
	}
	if res.RiskLevel == nil || *res.RiskLevel != "low" {
		t.Errorf("expected risk_level to win with low, got %v", res.RiskLevel)
	}
	if res.AnnotatedImageRef == nil || *res.AnnotatedImageRef != "/static/results/a.jpg" {
		t.Errorf("expected output_image to win, got %v", res.AnnotatedImageRef)
	}
}

func TestResolveDetectionFallbackAliases(t *testing.T) {
	res := ResolveDetection(map[string]any{
		"vehicles":  float64(3),
		"risk":      "medium",
		"annotated": "x.jpg",
	})

	if res.VehicleCount == nil || *res.VehicleCount != 3 {
		t.Errorf("vehicles alias not resolved, got %v", res.VehicleCount)
	}
	if res.RiskLevel == nil || *res.RiskLevel != "medium" {
		t.Errorf("risk alias not resolved, got %v", res.RiskLevel)
	}
	if res.AnnotatedImageRef == nil || *res.AnnotatedImageRef != "x.jpg" {
		t.Errorf("annotated alias not resolved, got %v", res.AnnotatedImageRef)
	}
}

func TestResolveDetectionAbsentFields(t *testing.T) {
	res := ResolveDetection(map[string]any{"something_else": true})

	if res.VehicleCount != nil || res.RiskLevel != nil || res.AnnotatedImageRef != nil {
		t.Errorf("expected all fields absent, got %+v", res)
	}
	if res.HasCount() {
		t.Error("HasCount should be false with no count")
	}
}

func TestResolveDetectionCountForms(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]any
		want  int
		found bool
	}{
		{"zero is valid", map[string]any{"vehicle_count": float64(0)}, 0, true},
		{"float truncated", map[string]any{"vehicle_count": 7.9}, 7, true},
		{"numeric string", map[string]any{"vehicle_count": " 4 "}, 4, true},
		{"negative skipped to next alias", map[string]any{"vehicle_count": float64(-1), "count": float64(6)}, 6, true},
		{"non-numeric string", map[string]any{"vehicle_count": "lots"}, 0, false},
		{"bool ignored", map[string]any{"vehicle_count": true}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResolveDetection(tt.body)
			if tt.found != res.HasCount() {
				t.Fatalf("found = %v, want %v", res.HasCount(), tt.found)
			}
			if tt.found && *res.VehicleCount != tt.want {
				t.Errorf("count = %d, want %d", *res.VehicleCount, tt.want)
			}
		})
	}
}

func TestResolveDetectionEmptyStringFallsThrough(t *testing.T) {
	// An empty string is not a usable value: resolution moves on to the
	// next alias, and with no usable alias the field stays absent.
	res := ResolveDetection(map[string]any{
		"output_image": "",
		"annotated":    "x.jpg",
		"risk_level":   "",
	})

	if res.AnnotatedImageRef == nil || *res.AnnotatedImageRef != "x.jpg" {
		t.Errorf("empty output_image should yield to annotated, got %v", res.AnnotatedImageRef)
	}
	if res.RiskLevel != nil {
		t.Errorf("empty risk_level with no fallback should be absent, got %q", *res.RiskLevel)
	}
}

func TestDeriveSensorDistance(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, 140},
		{12, 116},
		{67, 6},
		{68, 5},
		{100, 5},
	}

	for _, tt := range tests {
		if got := DeriveSensorDistance(tt.count); got != tt.want {
			t.Errorf("DeriveSensorDistance(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}
