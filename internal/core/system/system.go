package system

import "time"

// Phase defines execution ordering within a single simulation tick.
// A particle spawned this tick must be visible to the physics and reap
// phases of the same tick, and removal happens strictly last.
type Phase int

const (
	PhaseSpawn   Phase = iota // 0: admit new particle batches
	PhasePhysics              // 1: advance kinematic state
	PhaseReap                 // 2: mark expired particles
	PhaseCleanup              // 3: flush the destroy queue
)

// System is the interface every simulation system implements. The host loop
// supplies now and dt explicitly; systems never read a hidden clock, so a
// test can drive a tick at any synthetic time.
type System interface {
	Phase() Phase
	Update(now time.Time, dt time.Duration)
}
