package qsim

import (
	"math"
	"testing"
)

func TestProbabilityAndMagnitude(t *testing.T) {
	tests := []struct {
		c    Complex
		prob float64
	}{
		{0, 0},
		{1, 1},
		{1i, 1},
		{complex(3, 4), 25},
		{complex(1/math.Sqrt2, 1/math.Sqrt2), 1},
	}
	for _, tt := range tests {
		if got := Probability(tt.c); math.Abs(got-tt.prob) > Epsilon {
			t.Errorf("Probability(%v) = %g, want %g", tt.c, got, tt.prob)
		}
		if got := Magnitude(tt.c); math.Abs(got-math.Sqrt(tt.prob)) > Epsilon {
			t.Errorf("Magnitude(%v) = %g, want %g", tt.c, got, math.Sqrt(tt.prob))
		}
	}
}

func TestFromPolar(t *testing.T) {
	tests := []struct {
		r, theta float64
		want     Complex
	}{
		{1, 0, 1},
		{1, math.Pi / 2, 1i},
		{1, math.Pi, -1},
		{2, math.Pi / 4, complex(math.Sqrt2, math.Sqrt2)},
	}
	for _, tt := range tests {
		got := FromPolar(tt.r, tt.theta)
		if !ApproxEqual(got, tt.want) {
			t.Errorf("FromPolar(%g, %g) = %v, want %v", tt.r, tt.theta, got, tt.want)
		}
	}
}

func TestApproxEqual(t *testing.T) {
	if !ApproxEqual(1, 1+1e-12) {
		t.Error("values within epsilon should compare equal")
	}
	if ApproxEqual(1, 1+1e-9) {
		t.Error("values beyond epsilon should compare unequal")
	}
	if ApproxEqual(1, 1+1e-9i) {
		t.Error("imaginary drift beyond epsilon should compare unequal")
	}
}
