package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/nectar/components"
)

// fakeBody records applied forces without integrating anything.
type fakeBody struct {
	pos   r3.Vec
	force r3.Vec
}

func (b *fakeBody) Position() r3.Vec     { return b.pos }
func (b *fakeBody) SetPosition(p r3.Vec) { b.pos = p }
func (b *fakeBody) Velocity() r3.Vec     { return r3.Vec{} }
func (b *fakeBody) ApplyForce(f r3.Vec)  { b.force = r3.Add(b.force, f) }
func (b *fakeBody) ZeroMotion()          { b.force = r3.Vec{} }

func testActuator() Actuator {
	return Actuator{
		MoveForce:     2.0,
		PitchSpeed:    100,
		YawSpeed:      100,
		MaxPitch:      80,
		SmoothingRate: 2.0,
	}
}

func TestApplyMoveForce(t *testing.T) {
	ac := testActuator()
	body := &fakeBody{}
	var pose components.AgentPose
	var steer components.Steering

	ac.Apply(&pose, &steer, Action{0.5, -1, 0.25, 0, 0}, body, 0.02)

	want := r3.Vec{X: 1, Y: -2, Z: 0.5}
	if !vecClose(body.force, want, 1e-12) {
		t.Errorf("force = %+v, want %+v", body.force, want)
	}
}

func TestApplySmoothingSlewLimit(t *testing.T) {
	ac := testActuator()
	body := &fakeBody{}
	var pose components.AgentPose
	var steer components.Steering
	dt := 0.02

	// A full-rate command cannot be reached in one sub-step: the smoothed
	// rate moves by at most SmoothingRate*dt.
	ac.Apply(&pose, &steer, Action{0, 0, 0, 1, -1}, body, dt)

	maxDelta := ac.SmoothingRate * dt
	if math.Abs(steer.SmoothPitch-maxDelta) > 1e-12 {
		t.Errorf("smoothed pitch rate = %v, want %v", steer.SmoothPitch, maxDelta)
	}
	if math.Abs(steer.SmoothYaw-(-maxDelta)) > 1e-12 {
		t.Errorf("smoothed yaw rate = %v, want %v", steer.SmoothYaw, -maxDelta)
	}

	// Rotation integrates the smoothed rate, not the raw command.
	wantPitch := maxDelta * dt * ac.PitchSpeed
	if math.Abs(pose.Pitch-wantPitch) > 1e-12 {
		t.Errorf("pitch = %v, want %v", pose.Pitch, wantPitch)
	}
}

func TestApplySmoothingConverges(t *testing.T) {
	ac := testActuator()
	body := &fakeBody{}
	var pose components.AgentPose
	var steer components.Steering
	dt := 0.02

	// After one second of a held command the smoothed rate has reached it.
	for i := 0; i < 50; i++ {
		ac.Apply(&pose, &steer, Action{0, 0, 0, 0.7, 0}, body, dt)
	}
	if math.Abs(steer.SmoothPitch-0.7) > 1e-9 {
		t.Errorf("smoothed pitch rate = %v, want 0.7", steer.SmoothPitch)
	}
}

func TestApplyPitchClamp(t *testing.T) {
	ac := testActuator()
	body := &fakeBody{}
	var pose components.AgentPose
	var steer components.Steering
	dt := 0.02

	// Hold full pitch-down long past the clamp.
	for i := 0; i < 500; i++ {
		ac.Apply(&pose, &steer, Action{0, 0, 0, 1, 0}, body, dt)
	}
	if math.Abs(pose.Pitch-ac.MaxPitch) > 1e-9 {
		t.Errorf("pitch = %v, want clamp at %v", pose.Pitch, ac.MaxPitch)
	}

	for i := 0; i < 1000; i++ {
		ac.Apply(&pose, &steer, Action{0, 0, 0, -1, 0}, body, dt)
	}
	if math.Abs(pose.Pitch-(-ac.MaxPitch)) > 1e-9 {
		t.Errorf("pitch = %v, want clamp at %v", pose.Pitch, -ac.MaxPitch)
	}
}

func TestApplyPitchClampUnderRandomActions(t *testing.T) {
	ac := testActuator()
	body := &fakeBody{}
	var pose components.AgentPose
	var steer components.Steering
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 10000; i++ {
		var act Action
		for j := range act {
			act[j] = rng.Float64()*2 - 1
		}
		ac.Apply(&pose, &steer, act, body, 0.02)
		if pose.Pitch < -ac.MaxPitch-1e-9 || pose.Pitch > ac.MaxPitch+1e-9 {
			t.Fatalf("pitch %v escaped clamp at step %d", pose.Pitch, i)
		}
	}
}

func TestApplyYawUnbounded(t *testing.T) {
	ac := testActuator()
	body := &fakeBody{}
	var pose components.AgentPose
	var steer components.Steering
	dt := 0.02

	// Several seconds of full yaw accumulate past 360 degrees without
	// wrapping.
	for i := 0; i < 300; i++ {
		ac.Apply(&pose, &steer, Action{0, 0, 0, 0, 1}, body, dt)
	}
	if pose.Yaw <= 360 {
		t.Errorf("yaw = %v, expected accumulation past 360", pose.Yaw)
	}
}

func TestActionMove(t *testing.T) {
	act := Action{0.1, 0.2, 0.3, 0.9, -0.9}
	got := act.Move()
	want := r3.Vec{X: 0.1, Y: 0.2, Z: 0.3}
	if !vecClose(got, want, 1e-12) {
		t.Errorf("Move() = %+v, want %+v", got, want)
	}
}
