package physics

import (
	"time"

	"github.com/whalefx/fountain/internal/core/ecs"
	"github.com/whalefx/fountain/internal/geom"
)

// Backend advances particle kinematics by one tick. Two implementations
// exist: the built-in integrator and an adapter delegating to an external
// rigid-body engine. The choice is made once at construction time.
type Backend interface {
	// Track registers a newly spawned particle with the backend.
	Track(h ecs.Handle, pos, vel geom.Vec3, radius float64)
	// Step advances every tracked particle by dt. dt is passed explicitly;
	// backends never read a hidden clock.
	Step(dt time.Duration)
	// Untrack tells the backend a particle has been removed.
	Untrack(h ecs.Handle)
}

// BodyState is the per-body readback from an external engine.
type BodyState struct {
	Pos geom.Vec3
	Vel geom.Vec3
}

// RigidBodyEngine is the port to an external physics engine. The engine
// owns collision detection and response against static geometry and between
// bodies; this module only feeds it initial conditions and reads results
// back. RemoveBody on an unknown handle must be a no-op.
type RigidBodyEngine interface {
	AddBody(h ecs.Handle, pos, vel geom.Vec3, radius float64)
	Step(dt time.Duration)
	// Bodies returns the engine's view of every body it still tracks.
	Bodies() map[ecs.Handle]BodyState
	RemoveBody(h ecs.Handle)
}
