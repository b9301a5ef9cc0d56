package mathx

import (
	"math"
	"testing"
)

func TestEasing(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) float64
		in   float64
		want float64
	}{
		{"linear", EaseLinear, 0.25, 0.25},
		{"cubic in", EaseCubicIn, 0.5, 0.125},
		{"cubic out start", EaseCubicOut, 0, 0},
		{"cubic out mid", EaseCubicOut, 0.5, 0.875},
		{"cubic out end", EaseCubicOut, 1, 1},
		{"cubic in-out low", EaseCubicInOut, 0.25, 0.0625},
		{"cubic in-out mid", EaseCubicInOut, 0.5, 0.5},
		{"cubic in-out high", EaseCubicInOut, 0.75, 0.9375},
		{"cubic in-out end", EaseCubicInOut, 1, 1},
	}

	for _, tt := range tests {
		if got := tt.fn(tt.in); !FuzzyEqual(got, tt.want) {
			t.Errorf("%s(%v) = %v, want %v", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestScalarHelpers(t *testing.T) {
	if got := Lerp(2, 4, 0.5); got != 3 {
		t.Errorf("Lerp = %v", got)
	}
	if got := Clamp(5, 0, 1); got != 1 {
		t.Errorf("Clamp high = %v", got)
	}
	if got := Clamp01(-3); got != 0 {
		t.Errorf("Clamp01 low = %v", got)
	}
	if got := Hermite(0, 1, 2, 3, 0.5); !FuzzyEqual(got, 1.5) {
		t.Errorf("Hermite on a line = %v, want 1.5", got)
	}
	if got := NormalizeDeg(-90); got != 270 {
		t.Errorf("NormalizeDeg(-90) = %v", got)
	}
	if got := NormalizeRad(-math.Pi / 2); !FuzzyEqual(got, 1.5*math.Pi) {
		t.Errorf("NormalizeRad(-π/2) = %v", got)
	}
	if got := AnglesLerp(0.1, TwoPi-0.1, 0.5); !FuzzyZero(got) && !FuzzyEqual(got, TwoPi) {
		t.Errorf("AnglesLerp took the long way: %v", got)
	}
}

func TestFuzzyEqual(t *testing.T) {
	if !FuzzyEqual(1, 1+1e-9) {
		t.Errorf("values within tolerance compared unequal")
	}
	if FuzzyEqual(1, 1.001) {
		t.Errorf("values outside tolerance compared equal")
	}
	if !FuzzyEqual(0, 1e-9) {
		t.Errorf("near-zero values compared unequal")
	}
}

func TestVec2(t *testing.T) {
	a := Vec2{3, 4}
	if a.Length() != 5 {
		t.Errorf("Length = %v", a.Length())
	}
	if got := a.Normalized(); !got.ApproxEqual(Vec2{0.6, 0.8}) {
		t.Errorf("Normalized = %+v", got)
	}
	if got := (Vec2{}).Normalized(); got != (Vec2{}) {
		t.Errorf("Normalized zero = %+v", got)
	}
	if got := a.Perp(); got != (Vec2{-4, 3}) {
		t.Errorf("Perp = %+v", got)
	}
	if got := a.Dot(Vec2{1, 1}); got != 7 {
		t.Errorf("Dot = %v", got)
	}
	if got := a.Cross(Vec2{1, 0}); got != -4 {
		t.Errorf("Cross = %v", got)
	}
	if got := (Vec2{1, 0}).Rotate(math.Pi / 2); !got.ApproxEqual(Vec2{0, 1}) {
		t.Errorf("Rotate = %+v", got)
	}
	if got := a.Div(0); !math.IsInf(got.X, 1) || !math.IsInf(got.Y, 1) {
		t.Errorf("Div(0) = %+v, want +Inf components", got)
	}
}

func TestRandIsDeterministic(t *testing.T) {
	a, b := NewRand(), NewRand()
	for i := 0; i < 100; i++ {
		if a.Uint32() != b.Uint32() {
			t.Fatalf("generators diverged at %d", i)
		}
	}

	r := NewRand()
	for i := 0; i < 1000; i++ {
		f := r.Float01()
		if f < 0 || f > 1 {
			t.Fatalf("Float01 out of range: %v", f)
		}
		if v := r.Between(10, 5); v < 5 || v > 10 {
			t.Fatalf("Between(10, 5) out of range: %v", v)
		}
	}
}

func TestBetweenSwapsReversedBounds(t *testing.T) {
	forward, reversed := NewRand(), NewRand()
	for i := 0; i < 100; i++ {
		want := forward.Between(0, 10)
		if got := reversed.Between(10, 0); got != want {
			t.Fatalf("draw %d: Between(10, 0) = %v, want %v", i, got, want)
		}
	}
}
