// Package mathx holds the small scalar and 2D vector helpers scripts use for
// animation: interpolation, easing, clamping and angle arithmetic.
package mathx

import (
	"math"
)

// Epsilon is single precision machine epsilon. Tolerances stay at float32
// scale so values that went through the wire format still compare equal.
const Epsilon = 1.1920929e-07

const (
	DegToRad = math.Pi / 180
	RadToDeg = 180 / math.Pi
	TwoPi    = 2 * math.Pi
)

// FuzzyEqual compares with a relative tolerance, falling back to an
// absolute one near zero.
func FuzzyEqual(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	if a == 0 || b == 0 || diff < Epsilon {
		return diff < Epsilon
	}
	return diff/(math.Abs(a)+math.Abs(b)) < Epsilon
}

func FuzzyZero(a float64) bool {
	return math.Abs(a) < Epsilon
}

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Clamp01(x float64) float64 {
	return Clamp(x, 0, 1)
}

func Lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func EaseLinear(t float64) float64 {
	return t
}

func EaseCubicIn(t float64) float64 {
	return t * t * t
}

func EaseCubicOut(t float64) float64 {
	t--
	return 1 + t*t*t
}

func EaseCubicInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return (t-1)*(2*t-2)*(2*t-2) + 1
}

// Hermite interpolates between y1 and y2 with zero tension and bias.
func Hermite(y0, y1, y2, y3, mu float64) float64 {
	d0 := (y1 - y0) * 0.5
	d1 := (y2 - y1) * 0.5
	d2 := (y3 - y2) * 0.5
	mu2 := mu * mu
	mu3 := mu2 * mu
	m0 := d0 + d1
	m1 := d1 + d2
	a0 := 2*mu3 - 3*mu2 + 1
	a1 := mu3 - 2*mu2 + mu
	a2 := mu3 - mu2
	a3 := -2*mu3 + 3*mu2
	return a0*y1 + a1*m0 + a2*m1 + a3*y2
}

// NormalizeRad maps x into [0, 2π).
func NormalizeRad(x float64) float64 {
	return math.Abs(x - TwoPi*math.Floor(x/TwoPi))
}

// NormalizeDeg maps x into [0, 360).
func NormalizeDeg(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	return x
}

// AnglesDiff is the signed shortest rotation from a to b.
func AnglesDiff(a, b float64) float64 {
	return math.Atan2(math.Sin(b-a), math.Cos(b-a))
}

// AnglesLerp interpolates along the shorter arc.
func AnglesLerp(a, b, t float64) float64 {
	a = NormalizeRad(a)
	b = NormalizeRad(b)
	delta := b - a
	if math.Abs(delta) > math.Pi {
		if delta > 0 {
			a += TwoPi
		} else {
			b += TwoPi
		}
	}
	return NormalizeRad(Lerp(a, b, t))
}

// Sign treats zero as positive.
func Sign(a float64) float64 {
	if a < 0 {
		return -1
	}
	return 1
}
