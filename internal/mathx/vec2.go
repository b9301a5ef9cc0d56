package mathx

import (
	"math"
)

// Vec2 is the native record behind script vec2 values.
type Vec2 struct {
	X, Y float64
}

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }

// Scale and Div do plain float arithmetic; dividing by zero yields
// infinities or NaN.
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) Div(s float64) Vec2   { return Vec2{a.X / s, a.Y / s} }

func (a Vec2) Neg() Vec2 { return Vec2{-a.X, -a.Y} }

func (a Vec2) Length2() float64 { return a.X*a.X + a.Y*a.Y }
func (a Vec2) Length() float64  { return math.Sqrt(a.Length2()) }

func (a Vec2) Dot(b Vec2) float64   { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Cross(b Vec2) float64 { return a.X*b.Y - a.Y*b.X }

// Perp rotates a quarter turn counterclockwise.
func (a Vec2) Perp() Vec2 { return Vec2{-a.Y, a.X} }

// Normalized returns the zero vector for vectors too short to normalize.
func (a Vec2) Normalized() Vec2 {
	l := a.Length()
	if FuzzyZero(l) {
		return Vec2{}
	}
	return a.Div(l)
}

func (a Vec2) Distance(b Vec2) float64 { return a.Sub(b).Length() }

func (a Vec2) Lerp(b Vec2, t float64) Vec2 {
	return Vec2{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t)}
}

func (a Vec2) Rotate(angle float64) Vec2 {
	s, c := math.Sincos(angle)
	return Vec2{a.X*c - a.Y*s, a.Y*c + a.X*s}
}

// ApproxEqual compares componentwise with FuzzyEqual.
func (a Vec2) ApproxEqual(b Vec2) bool {
	return FuzzyEqual(a.X, b.X) && FuzzyEqual(a.Y, b.Y)
}
