package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const eps = 1e-9

func vecClose(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) < tol
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"below", -2, -1, 1, -1},
		{"above", 2, -1, 1, 1},
		{"inside", 0.5, -1, 1, 0.5},
		{"at low edge", -1, -1, 1, -1},
		{"at high edge", 1, -1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestMoveTowards(t *testing.T) {
	tests := []struct {
		name                      string
		current, target, maxDelta float64
		want                      float64
	}{
		{"reaches target", 0, 0.1, 0.5, 0.1},
		{"limited up", 0, 1, 0.25, 0.25},
		{"limited down", 0, -1, 0.25, -0.25},
		{"already there", 0.5, 0.5, 0.1, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoveTowards(tt.current, tt.target, tt.maxDelta)
			if math.Abs(got-tt.want) > eps {
				t.Errorf("MoveTowards(%v, %v, %v) = %v, want %v", tt.current, tt.target, tt.maxDelta, got, tt.want)
			}
		})
	}
}

func TestWrapPitch(t *testing.T) {
	if got := WrapPitch(350); math.Abs(got-(-10)) > eps {
		t.Errorf("WrapPitch(350) = %v, want -10", got)
	}
	if got := WrapPitch(45); got != 45 {
		t.Errorf("WrapPitch(45) = %v, want 45", got)
	}
	if got := WrapPitch(-45); got != -45 {
		t.Errorf("WrapPitch(-45) = %v, want -45", got)
	}
}

func TestForward(t *testing.T) {
	tests := []struct {
		name       string
		pitch, yaw float64
		want       r3.Vec
	}{
		{"identity looks along z", 0, 0, r3.Vec{Z: 1}},
		{"yaw 90 looks along x", 0, 90, r3.Vec{X: 1}},
		{"yaw 180 looks along -z", 0, 180, r3.Vec{Z: -1}},
		{"pitch 90 looks down", 90, 0, r3.Vec{Y: -1}},
		{"pitch -90 looks up", -90, 0, r3.Vec{Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Forward(tt.pitch, tt.yaw)
			if !vecClose(got, tt.want, 1e-9) {
				t.Errorf("Forward(%v, %v) = %+v, want %+v", tt.pitch, tt.yaw, got, tt.want)
			}
		})
	}
}

func TestForwardIsUnit(t *testing.T) {
	for pitch := -80.0; pitch <= 80; pitch += 20 {
		for yaw := -180.0; yaw <= 180; yaw += 45 {
			if n := r3.Norm(Forward(pitch, yaw)); math.Abs(n-1) > 1e-9 {
				t.Fatalf("Forward(%v, %v) has norm %v", pitch, yaw, n)
			}
		}
	}
}

func TestLookPitchYawRoundTrip(t *testing.T) {
	// LookPitchYaw must invert Forward over the reachable pitch range.
	for pitch := -75.0; pitch <= 75; pitch += 15 {
		for yaw := -170.0; yaw <= 170; yaw += 35 {
			dir := Forward(pitch, yaw)
			gotPitch, gotYaw := LookPitchYaw(dir)
			if math.Abs(gotPitch-pitch) > 1e-6 || math.Abs(gotYaw-yaw) > 1e-6 {
				t.Fatalf("LookPitchYaw(Forward(%v, %v)) = (%v, %v)", pitch, yaw, gotPitch, gotYaw)
			}
		}
	}
}

func TestRotateComposition(t *testing.T) {
	// Rotating by the composed quaternion must equal rotating in sequence.
	q := RotFromPitchYaw(30, 45)
	v := r3.Vec{X: 0.2, Y: -0.7, Z: 1.3}

	step1 := Rotate(AxisAngle(r3.Vec{X: 1}, 30), v)
	want := Rotate(AxisAngle(r3.Vec{Y: 1}, 45), step1)
	got := Rotate(q, v)
	if !vecClose(got, want, 1e-9) {
		t.Errorf("composed rotation = %+v, want %+v", got, want)
	}
}

func TestRotFromPitchYawUnit(t *testing.T) {
	q := RotFromPitchYaw(37, -112)
	n := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if math.Abs(n-1) > 1e-9 {
		t.Errorf("rotation quaternion norm = %v, want 1", n)
	}
}
