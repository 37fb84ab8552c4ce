package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/whalefx/fountain/internal/core/system"
	"github.com/whalefx/fountain/internal/metrics"
	"github.com/whalefx/fountain/internal/world"
)

// CleanupSystem flushes the deferred destruction queue at tick end and
// publishes population metrics. Phase 3 (Cleanup).
type CleanupSystem struct {
	state *world.State
	mets  *metrics.Collector
	log   *zap.Logger
}

func NewCleanupSystem(state *world.State, mets *metrics.Collector, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{state: state, mets: mets, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Time, _ time.Duration) {
	removed := s.state.World.FlushDestroyQueue()
	if removed > 0 {
		s.mets.RecordRemoved(removed)
		s.log.Debug("回收粒子", zap.Int("count", removed), zap.Int("live", s.state.Live()))
	}
	s.mets.SetLive(s.state.Live())
}
