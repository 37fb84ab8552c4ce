package physics

import (
	"time"

	"github.com/whalefx/fountain/internal/config"
	"github.com/whalefx/fountain/internal/core/ecs"
	"github.com/whalefx/fountain/internal/geom"
	"github.com/whalefx/fountain/internal/world"
)

// Integrator is the built-in backend: semi-implicit Euler with a single
// ground plane. Velocity integrates before position. Ground contact is one
// discrete bounce per tick — no sub-stepping, no continuous collision
// detection, so an extremely fast particle can tunnel through the plane.
// That is a known limitation of the scheme, not something to paper over
// here.
type Integrator struct {
	cfg   config.PhysicsConfig
	state *world.State
}

func NewIntegrator(cfg config.PhysicsConfig, state *world.State) *Integrator {
	return &Integrator{cfg: cfg, state: state}
}

// Track is a no-op; the integrator works directly off the component stores.
func (b *Integrator) Track(_ ecs.Handle, _, _ geom.Vec3, _ float64) {}

// Untrack is a no-op for the same reason.
func (b *Integrator) Untrack(_ ecs.Handle) {}

func (b *Integrator) Step(dt time.Duration) {
	sec := dt.Seconds()
	if sec <= 0 {
		return
	}
	ground := b.cfg.GroundHeight

	ecs.Each2(b.state.Transforms, b.state.Velocities, func(_ ecs.Handle, t *world.Transform, v *world.Velocity) {
		v.Lin.Y -= b.cfg.Gravity * sec

		nextY := t.Pos.Y + v.Lin.Y*sec
		if nextY < ground {
			// Contact: clamp to the plane, advance horizontally with the
			// pre-damping velocity, then damp. The use-then-damp ordering
			// matches the observed behavior of the reference fountain and
			// is kept deliberately.
			t.Pos.Y = ground
			t.Pos.X += v.Lin.X * sec
			t.Pos.Z += v.Lin.Z * sec
			v.Lin.X *= b.cfg.HorizontalDamping
			v.Lin.Z *= b.cfg.HorizontalDamping
			v.Lin.Y = -v.Lin.Y * b.cfg.Restitution
			return
		}
		t.Pos = t.Pos.Add(v.Lin.Scale(sec))
	})
}
