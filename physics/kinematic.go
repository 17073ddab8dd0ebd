package physics

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/nectar/components"
)

// World is a minimal kinematic physics world: one dynamic body, static
// sphere obstacles, sphere nectar triggers and an axis-aligned boundary box.
// Integration runs at a fixed sub-step; each step returns the contacts it
// produced, in a buffer reused across steps.
type World struct {
	bmin, bmax r3.Vec
	gravity    float64

	body      *rigidBody
	obstacles []sphereCollider
	triggers  []sphereCollider
	byTrigger map[components.TriggerID]int
	nextID    components.TriggerID

	contacts []Contact
}

type sphereCollider struct {
	id     components.TriggerID
	center r3.Vec
	radius float64
}

// NewWorld creates a world bounded by the box [bmin, bmax].
func NewWorld(bmin, bmax r3.Vec, gravity float64) *World {
	return &World{
		bmin:      bmin,
		bmax:      bmax,
		gravity:   gravity,
		byTrigger: make(map[components.TriggerID]int),
	}
}

// NewBody creates the dynamic body. The world simulates a single agent.
func (w *World) NewBody(radius, mass, drag float64) Body {
	w.body = &rigidBody{radius: radius, mass: mass, drag: drag}
	return w.body
}

// AddObstacle registers a static sphere collider.
func (w *World) AddObstacle(center r3.Vec, radius float64) {
	w.obstacles = append(w.obstacles, sphereCollider{center: center, radius: radius})
}

// AddTrigger registers a nectar trigger sphere and returns its identifier.
func (w *World) AddTrigger(center r3.Vec, radius float64) components.TriggerID {
	w.nextID++
	id := w.nextID
	w.byTrigger[id] = len(w.triggers)
	w.triggers = append(w.triggers, sphereCollider{id: id, center: center, radius: radius})
	return id
}

// MoveTrigger relocates a trigger sphere, e.g. after an area reset.
func (w *World) MoveTrigger(id components.TriggerID, center r3.Vec) {
	i, ok := w.byTrigger[id]
	if !ok {
		panic(fmt.Sprintf("physics: move of unknown trigger %d", id))
	}
	w.triggers[i].center = center
}

// Overlaps reports whether a sphere intersects any obstacle or extends
// beyond the boundary box. Trigger volumes do not count as colliding
// geometry.
func (w *World) Overlaps(center r3.Vec, radius float64) bool {
	for _, o := range w.obstacles {
		if r3.Norm(r3.Sub(center, o.center)) < radius+o.radius {
			return true
		}
	}
	if center.X-radius < w.bmin.X || center.X+radius > w.bmax.X ||
		center.Y-radius < w.bmin.Y || center.Y+radius > w.bmax.Y ||
		center.Z-radius < w.bmin.Z || center.Z+radius > w.bmax.Z {
		return true
	}
	return false
}

// Step integrates the body by dt and returns the contacts produced. The
// returned slice is valid until the next Step call.
func (w *World) Step(dt float64) []Contact {
	b := w.body
	w.contacts = w.contacts[:0]
	if b == nil {
		return w.contacts
	}

	acc := r3.Scale(1/b.mass, b.force)
	acc.Y -= w.gravity
	b.vel = r3.Add(b.vel, r3.Scale(dt, acc))
	damp := 1 - b.drag*dt
	if damp < 0 {
		damp = 0
	}
	b.vel = r3.Scale(damp, b.vel)
	b.pos = r3.Add(b.pos, r3.Scale(dt, b.vel))
	b.force = r3.Vec{}

	w.resolveBounds(b)
	w.resolveObstacles(b)
	w.testTriggers(b)

	return w.contacts
}

// resolveBounds clamps the body inside the boundary box and emits one
// boundary contact per step while touching a wall.
func (w *World) resolveBounds(b *rigidBody) {
	hit := false
	p := b.pos
	p.X, hit = clampAxis(p.X, w.bmin.X+b.radius, w.bmax.X-b.radius, hit)
	p.Y, hit = clampAxis(p.Y, w.bmin.Y+b.radius, w.bmax.Y-b.radius, hit)
	p.Z, hit = clampAxis(p.Z, w.bmin.Z+b.radius, w.bmax.Z-b.radius, hit)
	if hit {
		b.pos = p
		w.contacts = append(w.contacts, Contact{Tag: TagBoundary, Point: p})
	}
}

func clampAxis(v, lo, hi float64, hit bool) (float64, bool) {
	if v < lo {
		return lo, true
	}
	if v > hi {
		return hi, true
	}
	return v, hit
}

// resolveObstacles pushes the body out of penetrating obstacles.
func (w *World) resolveObstacles(b *rigidBody) {
	for _, o := range w.obstacles {
		d := r3.Sub(b.pos, o.center)
		dist := r3.Norm(d)
		minDist := b.radius + o.radius
		if dist >= minDist {
			continue
		}
		normal := r3.Vec{Y: 1}
		if dist > 0 {
			normal = r3.Scale(1/dist, d)
		}
		b.pos = r3.Add(o.center, r3.Scale(minDist, normal))
		w.contacts = append(w.contacts, Contact{
			Tag:   TagObstacle,
			Point: r3.Add(o.center, r3.Scale(o.radius, normal)),
		})
	}
}

// testTriggers emits an overlap contact for every trigger the body touches.
func (w *World) testTriggers(b *rigidBody) {
	for _, t := range w.triggers {
		if r3.Norm(r3.Sub(b.pos, t.center)) >= b.radius+t.radius {
			continue
		}
		w.contacts = append(w.contacts, Contact{
			Tag:     TagNectar,
			Trigger: t.id,
			Point:   ClosestOnSphere(t.center, t.radius, b.pos),
			Center:  t.center,
			Radius:  t.radius,
		})
	}
}

// rigidBody is the single dynamic body.
type rigidBody struct {
	pos    r3.Vec
	vel    r3.Vec
	force  r3.Vec
	radius float64
	mass   float64
	drag   float64
}

func (b *rigidBody) Position() r3.Vec     { return b.pos }
func (b *rigidBody) SetPosition(p r3.Vec) { b.pos = p }
func (b *rigidBody) Velocity() r3.Vec     { return b.vel }

func (b *rigidBody) ApplyForce(f r3.Vec) {
	b.force = r3.Add(b.force, f)
}

func (b *rigidBody) ZeroMotion() {
	b.vel = r3.Vec{}
	b.force = r3.Vec{}
}
