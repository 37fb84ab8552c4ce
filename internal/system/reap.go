package system

import (
	"time"

	"github.com/whalefx/fountain/internal/core/ecs"
	coresys "github.com/whalefx/fountain/internal/core/system"
	"github.com/whalefx/fountain/internal/physics"
	"github.com/whalefx/fountain/internal/world"
)

// ReapSystem 掃描所有存活粒子，將壽命已到者標記銷毀。Phase 2 (Reap)。
// 移除是無條件且無聲的：不發事件、不回呼。剛於本 tick 生成的粒子其
// expire_time 必然在未來，永遠不會被同一 tick 回收。
type ReapSystem struct {
	state   *world.State
	backend physics.Backend
}

func NewReapSystem(state *world.State, backend physics.Backend) *ReapSystem {
	return &ReapSystem{state: state, backend: backend}
}

func (s *ReapSystem) Phase() coresys.Phase { return coresys.PhaseReap }

func (s *ReapSystem) Update(now time.Time, _ time.Duration) {
	s.Reap(now)
}

// Reap marks every particle whose expiry has passed (expire_time <= now).
// Visiting the expiry store once covers every live particle exactly once.
// Calling Reap again at the same instant re-marks the same handles, which
// the generation-guarded flush collapses into a single destruction.
func (s *ReapSystem) Reap(now time.Time) {
	s.state.Expiries.Each(func(h ecs.Handle, e *world.Expiry) {
		if e.ExpiresAt.After(now) {
			return
		}
		s.backend.Untrack(h)
		s.state.World.MarkForDestruction(h)
	})
}
