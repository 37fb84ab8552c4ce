package world

import (
	"time"

	"github.com/whalefx/fountain/internal/core/ecs"
	"github.com/whalefx/fountain/internal/geom"
)

// State owns the live particle population. It holds the handle arena and
// one component store per particle field; behavior lives in the systems.
// Accessed only from the simulation tick — no locks needed.
type State struct {
	World      *ecs.World
	Transforms *ecs.Store[Transform]
	Velocities *ecs.Store[Velocity]
	Expiries   *ecs.Store[Expiry]

	shape Shape
}

func NewState(radius float64) *State {
	s := &State{
		World:      ecs.NewWorld(),
		Transforms: ecs.NewStore[Transform](),
		Velocities: ecs.NewStore[Velocity](),
		Expiries:   ecs.NewStore[Expiry](),
		shape:      Shape{Radius: radius},
	}
	s.World.Registry().Register(s.Transforms)
	s.World.Registry().Register(s.Velocities)
	s.World.Registry().Register(s.Expiries)
	return s
}

// Shape returns the sphere shared by all particles.
func (s *State) Shape() Shape { return s.shape }

// Live returns the current particle population.
func (s *State) Live() int { return s.World.Live() }

// Insert creates a particle with the given initial state and returns its
// handle. Only the spawn system creates particles.
func (s *State) Insert(pos, vel geom.Vec3, spawnedAt, expiresAt time.Time) ecs.Handle {
	h := s.World.Create()
	s.Transforms.Set(h, &Transform{Pos: pos})
	s.Velocities.Set(h, &Velocity{Lin: vel})
	s.Expiries.Set(h, &Expiry{SpawnedAt: spawnedAt, ExpiresAt: expiresAt})
	return h
}

// EachParticle iterates every live particle read-only, handing the renderer
// what it needs to build geometry: position and the shared radius. The
// engine does not depend on anything a renderer produces.
func (s *State) EachParticle(fn func(h ecs.Handle, pos geom.Vec3, radius float64)) {
	s.Transforms.Each(func(h ecs.Handle, t *Transform) {
		fn(h, t.Pos, s.shape.Radius)
	})
}
