package physics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func testWorld() *World {
	return NewWorld(r3.Vec{X: -10, Y: 0, Z: -10}, r3.Vec{X: 10, Y: 10, Z: 10}, 0)
}

func TestStepIntegratesForce(t *testing.T) {
	w := testWorld()
	body := w.NewBody(0.1, 1.0, 0)
	body.SetPosition(r3.Vec{Y: 5})

	body.ApplyForce(r3.Vec{X: 1})
	w.Step(0.02)

	// v = a*dt, x = v*dt with no drag.
	wantVel := 0.02
	if math.Abs(body.Velocity().X-wantVel) > 1e-12 {
		t.Errorf("vel.X = %v, want %v", body.Velocity().X, wantVel)
	}
	wantPos := wantVel * 0.02
	if math.Abs(body.Position().X-wantPos) > 1e-12 {
		t.Errorf("pos.X = %v, want %v", body.Position().X, wantPos)
	}

	// Forces do not persist across steps.
	w.Step(0.02)
	if math.Abs(body.Velocity().X-wantVel) > 1e-12 {
		t.Errorf("vel.X after second step = %v, want unchanged %v", body.Velocity().X, wantVel)
	}
}

func TestStepAppliesDrag(t *testing.T) {
	w := testWorld()
	body := w.NewBody(0.1, 1.0, 1.0)
	body.SetPosition(r3.Vec{Y: 5})
	body.ApplyForce(r3.Vec{Z: 50})
	w.Step(0.02)
	v1 := body.Velocity().Z

	w.Step(0.02)
	v2 := body.Velocity().Z
	if v2 >= v1 {
		t.Errorf("drag did not slow the body: %v -> %v", v1, v2)
	}
}

func TestStepAppliesGravity(t *testing.T) {
	w := NewWorld(r3.Vec{X: -10, Y: 0, Z: -10}, r3.Vec{X: 10, Y: 10, Z: 10}, 9.8)
	body := w.NewBody(0.1, 1.0, 0)
	body.SetPosition(r3.Vec{Y: 5})

	w.Step(0.02)
	if body.Velocity().Y >= 0 {
		t.Errorf("vel.Y = %v, want falling", body.Velocity().Y)
	}
}

func TestBoundaryContact(t *testing.T) {
	w := testWorld()
	body := w.NewBody(0.1, 1.0, 0)
	body.SetPosition(r3.Vec{X: 9.95, Y: 5})
	body.ApplyForce(r3.Vec{X: 500})

	contacts := w.Step(0.02)

	found := false
	for _, c := range contacts {
		if c.Tag == TagBoundary {
			found = true
		}
	}
	if !found {
		t.Fatal("no boundary contact emitted")
	}
	if got := body.Position().X; math.Abs(got-9.9) > 1e-9 {
		t.Errorf("pos.X = %v, want clamped to 9.9", got)
	}
}

func TestNoContactInsideBounds(t *testing.T) {
	w := testWorld()
	body := w.NewBody(0.1, 1.0, 0)
	body.SetPosition(r3.Vec{Y: 5})

	if contacts := w.Step(0.02); len(contacts) != 0 {
		t.Errorf("got %d contacts in open space, want 0", len(contacts))
	}
}

func TestTriggerContact(t *testing.T) {
	w := testWorld()
	body := w.NewBody(0.1, 1.0, 0)
	id := w.AddTrigger(r3.Vec{X: 2, Y: 2}, 0.04)

	body.SetPosition(r3.Vec{X: 2, Y: 2.05})
	contacts := w.Step(0.02)

	if len(contacts) != 1 {
		t.Fatalf("got %d contacts, want 1", len(contacts))
	}
	c := contacts[0]
	if c.Tag != TagNectar {
		t.Errorf("tag = %v, want TagNectar", c.Tag)
	}
	if c.Trigger != id {
		t.Errorf("trigger = %v, want %v", c.Trigger, id)
	}
	if c.Radius != 0.04 {
		t.Errorf("radius = %v, want 0.04", c.Radius)
	}
	// The contact point lies on the trigger sphere.
	if got := r3.Norm(r3.Sub(c.Point, c.Center)); math.Abs(got-0.04) > 1e-9 {
		t.Errorf("contact point at distance %v from center, want 0.04", got)
	}
}

func TestTriggerDoesNotBlock(t *testing.T) {
	w := testWorld()
	body := w.NewBody(0.1, 1.0, 0)
	w.AddTrigger(r3.Vec{X: 2, Y: 2}, 0.04)

	if w.Overlaps(r3.Vec{X: 2, Y: 2}, 0.05) {
		t.Error("trigger volume counted as colliding geometry")
	}

	// The body passes through: no push-out, position is wherever
	// integration left it.
	body.SetPosition(r3.Vec{X: 2, Y: 2})
	w.Step(0.02)
	if got := body.Position(); r3.Norm(r3.Sub(got, r3.Vec{X: 2, Y: 2})) > 1e-12 {
		t.Errorf("trigger displaced the body to %+v", got)
	}
}

func TestMoveTrigger(t *testing.T) {
	w := testWorld()
	body := w.NewBody(0.1, 1.0, 0)
	id := w.AddTrigger(r3.Vec{X: 2, Y: 2}, 0.04)
	w.MoveTrigger(id, r3.Vec{X: -2, Y: 2})

	body.SetPosition(r3.Vec{X: 2, Y: 2})
	if contacts := w.Step(0.02); len(contacts) != 0 {
		t.Errorf("contact at the old trigger position")
	}

	body.SetPosition(r3.Vec{X: -2, Y: 2})
	if contacts := w.Step(0.02); len(contacts) != 1 {
		t.Errorf("no contact at the new trigger position")
	}
}

func TestMoveUnknownTriggerPanics(t *testing.T) {
	w := testWorld()
	defer func() {
		if recover() == nil {
			t.Error("expected panic on unknown trigger")
		}
	}()
	w.MoveTrigger(99, r3.Vec{})
}

func TestObstaclePushOut(t *testing.T) {
	w := testWorld()
	body := w.NewBody(0.1, 1.0, 0)
	w.AddObstacle(r3.Vec{X: 2, Y: 2}, 0.25)

	body.SetPosition(r3.Vec{X: 2.2, Y: 2})
	contacts := w.Step(0.02)

	found := false
	for _, c := range contacts {
		if c.Tag == TagObstacle {
			found = true
		}
	}
	if !found {
		t.Fatal("no obstacle contact emitted")
	}
	dist := r3.Norm(r3.Sub(body.Position(), r3.Vec{X: 2, Y: 2}))
	if dist < 0.35-1e-9 {
		t.Errorf("body at distance %v from obstacle, want pushed to 0.35", dist)
	}
}

func TestOverlaps(t *testing.T) {
	w := testWorld()
	w.AddObstacle(r3.Vec{X: 2, Y: 2}, 0.25)

	tests := []struct {
		name   string
		center r3.Vec
		radius float64
		want   bool
	}{
		{"open space", r3.Vec{Y: 5}, 0.05, false},
		{"inside obstacle", r3.Vec{X: 2, Y: 2}, 0.05, true},
		{"near obstacle", r3.Vec{X: 2.29, Y: 2}, 0.05, true},
		{"clear of obstacle", r3.Vec{X: 2.5, Y: 2}, 0.05, false},
		{"past boundary", r3.Vec{X: 9.99, Y: 5}, 0.05, true},
		{"below floor", r3.Vec{Y: 0.01}, 0.05, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Overlaps(tt.center, tt.radius); got != tt.want {
				t.Errorf("Overlaps(%+v, %v) = %v, want %v", tt.center, tt.radius, got, tt.want)
			}
		})
	}
}

func TestClosestOnSphere(t *testing.T) {
	center := r3.Vec{X: 1, Y: 1}

	// Outside point projects onto the surface.
	got := ClosestOnSphere(center, 0.5, r3.Vec{X: 3, Y: 1})
	want := r3.Vec{X: 1.5, Y: 1}
	if r3.Norm(r3.Sub(got, want)) > 1e-12 {
		t.Errorf("outside point -> %+v, want %+v", got, want)
	}

	// Inside point maps to itself.
	inside := r3.Vec{X: 1.1, Y: 1}
	if got := ClosestOnSphere(center, 0.5, inside); got != inside {
		t.Errorf("inside point -> %+v, want itself", got)
	}
}
