package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/whalefx/fountain/internal/config"
	coresys "github.com/whalefx/fountain/internal/core/system"
	"github.com/whalefx/fountain/internal/geom"
	"github.com/whalefx/fountain/internal/metrics"
	"github.com/whalefx/fountain/internal/physics"
	"github.com/whalefx/fountain/internal/world"
)

// SchedulerState is the spawn scheduler's only mutable state, persisted
// across ticks. It lives in an explicit struct (not a package global) so
// tests can preload a deadline and inspect it afterwards. The deadline is
// non-decreasing: every admitted batch advances it to now + interval.
type SchedulerState struct {
	NextSpawnDeadline time.Time
}

// SpawnSystem 負責批次生成粒子：每當生成期限到期，投入一整批新粒子並
// 重設期限。Phase 0 (Spawn) — 同一 tick 生成的粒子對後續階段立即可見。
type SpawnSystem struct {
	cfg     config.SpawnConfig
	radius  float64
	state   *world.State
	sched   *SchedulerState
	rng     *geom.Rand
	backend physics.Backend
	mets    *metrics.Collector
	log     *zap.Logger
}

func NewSpawnSystem(
	cfg config.SpawnConfig,
	radius float64,
	state *world.State,
	sched *SchedulerState,
	rng *geom.Rand,
	backend physics.Backend,
	mets *metrics.Collector,
	log *zap.Logger,
) *SpawnSystem {
	return &SpawnSystem{
		cfg:     cfg,
		radius:  radius,
		state:   state,
		sched:   sched,
		rng:     rng,
		backend: backend,
		mets:    mets,
		log:     log,
	}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseSpawn }

func (s *SpawnSystem) Update(now time.Time, _ time.Duration) {
	s.MaybeSpawn(now)
}

// MaybeSpawn admits one batch when the deadline has passed; at or before
// the deadline it is a strict no-op (no state change, no side effects).
func (s *SpawnSystem) MaybeSpawn(now time.Time) {
	if !now.After(s.sched.NextSpawnDeadline) {
		return
	}

	region := s.cfg.Region.Box()
	expiresAt := now.Add(s.cfg.Lifetime)

	for i := 0; i < s.cfg.BatchSize; i++ {
		// Launch direction: uniform horizontal jitter in [-1,1), fixed
		// vertical 1, normalized, scaled to the launch speed.
		dir := geom.Vec3{X: s.rng.Signed(), Y: 1, Z: s.rng.Signed()}.Normalize()
		vel := dir.Scale(s.cfg.InitialSpeed)
		pos := s.rng.InBox(region)

		h := s.state.Insert(pos, vel, now, expiresAt)
		s.backend.Track(h, pos, vel, s.radius)
	}

	// Assignment, not +=: after a stall the deadline restarts from now, so
	// the scheduler never burst-spawns to catch up on missed intervals.
	s.sched.NextSpawnDeadline = now.Add(s.cfg.Interval)

	s.mets.RecordSpawned(s.cfg.BatchSize)
	s.log.Debug("生成粒子批次",
		zap.Int("count", s.cfg.BatchSize),
		zap.Int("live", s.state.Live()),
	)
}
