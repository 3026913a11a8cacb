// ABOUTME: Tests for distortion curve and waveshaper
// ABOUTME: Verifies curve shape properties and oversampled processing
package effects

import (
	"math"
	"testing"
)

func TestMakeCurveSize(t *testing.T) {
	curve := MakeCurve(200)
	if len(curve) != CurveSize {
		t.Fatalf("expected %d entries, got %d", CurveSize, len(curve))
	}
	if curve[CurveSize/2] != 0 {
		t.Errorf("expected zero at the curve midpoint, got %g", curve[CurveSize/2])
	}
}

func TestMakeCurveZeroAmountIsLinear(t *testing.T) {
	curve := MakeCurve(0)
	slope := 3 * curveAngle / math.Pi

	for _, i := range []int{0, 1000, 11025, 30000, 33075, CurveSize - 1} {
		x := float64(i)*2/CurveSize - 1
		if math.Abs(curve[i]-slope*x) > 1e-12 {
			t.Errorf("index %d: expected %g, got %g", i, slope*x, curve[i])
		}
	}
}

func TestMakeCurveIsOddSymmetric(t *testing.T) {
	curve := MakeCurve(400)
	for _, i := range []int{1, 100, 5000, 22049} {
		if math.Abs(curve[i]+curve[CurveSize-i]) > 1e-15 {
			t.Errorf("index %d: curve[i]=%g curve[N-i]=%g", i, curve[i], curve[CurveSize-i])
		}
	}
}

func TestMakeCurveMonotonic(t *testing.T) {
	for _, k := range []float64{0, 200, 400} {
		curve := MakeCurve(k)
		for i := 1; i < len(curve); i++ {
			if curve[i] < curve[i-1] {
				t.Fatalf("k=%g: curve decreases at index %d", k, i)
			}
		}
	}
}

func TestMakeCurveHigherAmountClipsHarder(t *testing.T) {
	// Gain at the edge relative to gain at x=0.5; 1 means linear.
	flatness := func(k float64) float64 {
		curve := MakeCurve(k)
		edge := curve[CurveSize-1] / (float64(CurveSize-1)*2/CurveSize - 1)
		mid := curve[33075] / 0.5
		return edge / mid
	}

	prev := flatness(0)
	if math.Abs(prev-1) > 1e-9 {
		t.Fatalf("expected k=0 flatness of 1, got %g", prev)
	}

	for _, k := range []float64{10, 50, 200, 400, 1000} {
		f := flatness(k)
		if f >= prev {
			t.Errorf("k=%g: expected flatness below %g, got %g", k, prev, f)
		}
		prev = f
	}
}

func TestNewWaveShaperValidation(t *testing.T) {
	if _, err := NewWaveShaper([]float64{0}, 4); err == nil {
		t.Error("expected error for a one-entry curve")
	}
	if _, err := NewWaveShaper(MakeCurve(0), 3); err == nil {
		t.Error("expected error for oversampling factor 3")
	}
	ws, err := NewWaveShaper(MakeCurve(0), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ws.Oversampling() != 4 {
		t.Errorf("expected oversampling 4, got %d", ws.Oversampling())
	}
}

func TestWaveShaperShape(t *testing.T) {
	ws, err := NewWaveShaper([]float64{-1, 0, 1}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		input    float64
		expected float64
	}{
		{-1, -1},
		{-0.5, -0.5},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{2, 1},
		{-3, -1},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		if got := ws.Shape(tt.input); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Shape(%g) = %g, expected %g", tt.input, got, tt.expected)
		}
	}
}

func TestWaveShaperProcessWithoutOversampling(t *testing.T) {
	ws, _ := NewWaveShaper(MakeCurve(200), 1)
	input := []float64{-1, -0.5, 0, 0.5, 1}

	out, err := ws.Process(input)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	for i, x := range input {
		if out[i] != ws.Shape(x) {
			t.Errorf("sample %d: expected %g, got %g", i, ws.Shape(x), out[i])
		}
	}
}

func TestWaveShaperProcessOversampled(t *testing.T) {
	ws, _ := NewWaveShaper(MakeCurve(200), DefaultOversampling)

	input := make([]float64, 2048)
	for i := range input {
		input[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 44100)
	}

	out, err := ws.Process(input)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(out) != len(input) {
		t.Fatalf("expected %d samples, got %d", len(input), len(out))
	}

	var peak float64
	for _, s := range out {
		peak = math.Max(peak, math.Abs(s))
	}
	if peak == 0 {
		t.Error("expected a non-silent shaped signal")
	}
	if limit := math.Abs(MakeCurve(200)[CurveSize-1]) * 1.5; peak > limit {
		t.Errorf("peak %g exceeds curve range %g", peak, limit)
	}
}

func TestWaveShaperSilenceStaysQuiet(t *testing.T) {
	ws, _ := NewWaveShaper(MakeCurve(400), DefaultOversampling)

	out, err := ws.Process(make([]float64, 512))
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	for i, s := range out {
		// Even-sized tables put x=0 between two entries, leaving a tiny offset.
		if math.Abs(s) > 1e-3 {
			t.Fatalf("sample %d: expected near silence, got %g", i, s)
		}
	}
}

func TestWaveShaperOversampledIsAligned(t *testing.T) {
	// A two-entry table is the identity, so only the filters act
	ws, _ := NewWaveShaper([]float64{-1, 1}, DefaultOversampling)

	input := make([]float64, 2000)
	for i := range input {
		input[i] = 0.5 * math.Sin(2*math.Pi*0.01*float64(i))
	}

	out, err := ws.Process(input)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	for i := 100; i < len(input)-100; i++ {
		if d := math.Abs(out[i] - input[i]); d > 0.05 {
			t.Fatalf("sample %d: output %g drifts from input %g", i, out[i], input[i])
		}
	}
}
