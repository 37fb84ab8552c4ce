package system

import (
	"time"

	coresys "github.com/whalefx/fountain/internal/core/system"
	"github.com/whalefx/fountain/internal/physics"
)

// PhysicsSystem advances every live particle by one tick through the
// configured backend. Phase 1 (Physics).
type PhysicsSystem struct {
	backend physics.Backend
}

func NewPhysicsSystem(backend physics.Backend) *PhysicsSystem {
	return &PhysicsSystem{backend: backend}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

func (s *PhysicsSystem) Update(_ time.Time, dt time.Duration) {
	s.backend.Step(dt)
}
