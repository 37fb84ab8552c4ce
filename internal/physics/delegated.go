package physics

import (
	"time"

	"go.uber.org/zap"

	"github.com/whalefx/fountain/internal/core/ecs"
	"github.com/whalefx/fountain/internal/geom"
	"github.com/whalefx/fountain/internal/world"
)

// Delegated hands integration and collision response to an external
// rigid-body engine. The engine is authoritative: position and velocity are
// copied back verbatim after its step, a body it stops reporting is treated
// as removed, and a body it reports that we never tracked is ignored.
type Delegated struct {
	engine RigidBodyEngine
	state  *world.State
	log    *zap.Logger
}

func NewDelegated(engine RigidBodyEngine, state *world.State, log *zap.Logger) *Delegated {
	return &Delegated{engine: engine, state: state, log: log}
}

func (b *Delegated) Track(h ecs.Handle, pos, vel geom.Vec3, radius float64) {
	b.engine.AddBody(h, pos, vel, radius)
}

func (b *Delegated) Untrack(h ecs.Handle) {
	b.engine.RemoveBody(h)
}

func (b *Delegated) Step(dt time.Duration) {
	b.engine.Step(dt)

	bodies := b.engine.Bodies()
	ecs.Each2(b.state.Transforms, b.state.Velocities, func(h ecs.Handle, t *world.Transform, v *world.Velocity) {
		bs, ok := bodies[h]
		if !ok {
			// Engine dropped the body (consumed by a collision rule, fell
			// out of its broadphase, ...). Implicit removal.
			b.state.World.MarkForDestruction(h)
			b.log.Debug("外部引擎未回報剛體，隱式移除", zap.Uint64("handle", uint64(h)))
			return
		}
		t.Pos = bs.Pos
		v.Lin = bs.Vel
	})
}
