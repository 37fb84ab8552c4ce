package world

import (
	"time"

	"github.com/whalefx/fountain/internal/geom"
)

// Transform holds a particle's position in world space.
type Transform struct {
	Pos geom.Vec3
}

// Velocity holds a particle's linear velocity.
type Velocity struct {
	Lin geom.Vec3
}

// Expiry fixes a particle's lifetime at creation. ExpiresAt is always
// SpawnedAt + lifetime and is never mutated afterwards.
type Expiry struct {
	SpawnedAt time.Time
	ExpiresAt time.Time
}

// Shape is the collision/visual sphere shared by every particle. One value
// per world, referenced, never copied per instance.
type Shape struct {
	Radius float64
}
