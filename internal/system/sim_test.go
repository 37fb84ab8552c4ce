package system

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/whalefx/fountain/internal/config"
	"github.com/whalefx/fountain/internal/core/ecs"
	coresys "github.com/whalefx/fountain/internal/core/system"
	"github.com/whalefx/fountain/internal/geom"
	"github.com/whalefx/fountain/internal/physics"
	"github.com/whalefx/fountain/internal/world"
)

type sim struct {
	state  *world.State
	sched  *SchedulerState
	runner *coresys.Runner
	spawn  *SpawnSystem
	reap   *ReapSystem
}

func newSim(t *testing.T, spawnCfg config.SpawnConfig, physCfg config.PhysicsConfig) *sim {
	t.Helper()
	state := world.NewState(physCfg.ParticleRadius)
	backend := physics.NewIntegrator(physCfg, state)
	sched := &SchedulerState{}
	log := zap.NewNop()

	spawn := NewSpawnSystem(spawnCfg, physCfg.ParticleRadius, state, sched, geom.NewRand(1), backend, nil, log)
	reap := NewReapSystem(state, backend)

	runner := coresys.NewRunner()
	// Registered out of phase order on purpose; the runner must sort.
	runner.Register(NewCleanupSystem(state, nil, log))
	runner.Register(reap)
	runner.Register(NewPhysicsSystem(backend))
	runner.Register(spawn)

	return &sim{state: state, sched: sched, runner: runner, spawn: spawn, reap: reap}
}

func defaultCfgs() (config.SpawnConfig, config.PhysicsConfig) {
	cfg := config.Defaults()
	return cfg.Spawn, cfg.Physics
}

// Spawn cadence: t=0 spawns a batch and arms the deadline, t=50ms is inside
// the window and must be a strict no-op, t=101ms spawns again.
func TestSpawn_Cadence(t *testing.T) {
	spawnCfg, physCfg := defaultCfgs()
	spawnCfg.Interval = 100 * time.Millisecond
	spawnCfg.BatchSize = 30
	s := newSim(t, spawnCfg, physCfg)

	t0 := time.Unix(1000, 0)

	s.spawn.MaybeSpawn(t0)
	if s.state.Live() != 30 {
		t.Fatalf("after t=0: live = %d, want 30", s.state.Live())
	}
	if got, want := s.sched.NextSpawnDeadline, t0.Add(100*time.Millisecond); !got.Equal(want) {
		t.Fatalf("deadline = %v, want %v", got, want)
	}

	s.spawn.MaybeSpawn(t0.Add(50 * time.Millisecond))
	if s.state.Live() != 30 {
		t.Fatalf("after t=50ms: live = %d, want unchanged 30", s.state.Live())
	}
	if got, want := s.sched.NextSpawnDeadline, t0.Add(100*time.Millisecond); !got.Equal(want) {
		t.Fatalf("no-op call must not touch the deadline: %v, want %v", got, want)
	}

	s.spawn.MaybeSpawn(t0.Add(101 * time.Millisecond))
	if s.state.Live() != 60 {
		t.Fatalf("after t=101ms: live = %d, want 60", s.state.Live())
	}
	if got, want := s.sched.NextSpawnDeadline, t0.Add(201*time.Millisecond); !got.Equal(want) {
		t.Fatalf("deadline = %v, want %v", got, want)
	}
}

// A call exactly at the deadline is still inside the window.
func TestSpawn_AtDeadlineIsNoop(t *testing.T) {
	spawnCfg, physCfg := defaultCfgs()
	s := newSim(t, spawnCfg, physCfg)

	t0 := time.Unix(1000, 0)
	s.spawn.MaybeSpawn(t0)
	deadline := s.sched.NextSpawnDeadline

	s.spawn.MaybeSpawn(deadline)
	if s.state.Live() != spawnCfg.BatchSize {
		t.Fatalf("live = %d, want %d (call at deadline must not spawn)", s.state.Live(), spawnCfg.BatchSize)
	}
}

// After a long stall the deadline restarts from now instead of accumulating
// missed intervals, so there is no burst of catch-up batches.
func TestSpawn_NoCatchUpAfterStall(t *testing.T) {
	spawnCfg, physCfg := defaultCfgs()
	spawnCfg.Interval = 100 * time.Millisecond
	s := newSim(t, spawnCfg, physCfg)

	t0 := time.Unix(1000, 0)
	s.spawn.MaybeSpawn(t0)

	stalled := t0.Add(10 * time.Second)
	s.spawn.MaybeSpawn(stalled)
	if s.state.Live() != 2*spawnCfg.BatchSize {
		t.Fatalf("live = %d, want exactly two batches", s.state.Live())
	}
	if got, want := s.sched.NextSpawnDeadline, stalled.Add(100*time.Millisecond); !got.Equal(want) {
		t.Fatalf("deadline = %v, want restart from stall time %v", got, want)
	}
}

func TestSpawn_DeadlineNonDecreasing(t *testing.T) {
	spawnCfg, physCfg := defaultCfgs()
	s := newSim(t, spawnCfg, physCfg)

	t0 := time.Unix(1000, 0)
	times := []time.Duration{0, 30 * time.Millisecond, 150 * time.Millisecond, 160 * time.Millisecond, time.Second}
	var prev time.Time
	for _, d := range times {
		s.spawn.MaybeSpawn(t0.Add(d))
		if s.sched.NextSpawnDeadline.Before(prev) {
			t.Fatalf("deadline decreased: %v after %v", s.sched.NextSpawnDeadline, prev)
		}
		prev = s.sched.NextSpawnDeadline
	}
}

// Lifetime boundary: present just before expiry, gone at exactly the expiry
// instant (expire_time <= now removes).
func TestReap_LifetimeBoundary(t *testing.T) {
	spawnCfg, physCfg := defaultCfgs()
	spawnCfg.Lifetime = 10 * time.Second
	s := newSim(t, spawnCfg, physCfg)

	t0 := time.Unix(1000, 0)
	s.spawn.MaybeSpawn(t0)

	s.reap.Reap(t0.Add(9999 * time.Millisecond))
	s.state.World.FlushDestroyQueue()
	if s.state.Live() != spawnCfg.BatchSize {
		t.Fatalf("live = %d at 9.999s, want %d still present", s.state.Live(), spawnCfg.BatchSize)
	}

	s.reap.Reap(t0.Add(10 * time.Second))
	s.state.World.FlushDestroyQueue()
	if s.state.Live() != 0 {
		t.Fatalf("live = %d at 10.0s, want 0", s.state.Live())
	}
}

func TestReap_IdempotentAtSameInstant(t *testing.T) {
	spawnCfg, physCfg := defaultCfgs()
	s := newSim(t, spawnCfg, physCfg)

	t0 := time.Unix(1000, 0)
	s.spawn.MaybeSpawn(t0)
	expired := t0.Add(spawnCfg.Lifetime)

	s.reap.Reap(expired)
	first := s.state.World.FlushDestroyQueue()
	if first != spawnCfg.BatchSize {
		t.Fatalf("first reap removed %d, want %d", first, spawnCfg.BatchSize)
	}

	s.reap.Reap(expired)
	if second := s.state.World.FlushDestroyQueue(); second != 0 {
		t.Fatalf("second reap at same instant removed %d, want 0", second)
	}
}

// A particle spawned this tick can never be reaped in the same tick: its
// expiry lies strictly in the future.
func TestReap_NeverSameTickAsSpawn(t *testing.T) {
	spawnCfg, physCfg := defaultCfgs()
	s := newSim(t, spawnCfg, physCfg)

	t0 := time.Unix(1000, 0)
	s.runner.Tick(t0, 16*time.Millisecond)
	if s.state.Live() != spawnCfg.BatchSize {
		t.Fatalf("live = %d after spawn tick, want %d", s.state.Live(), spawnCfg.BatchSize)
	}
}

// Expiry is fixed at creation: advancing physics must never touch it.
func TestExpiry_FixedAtCreation(t *testing.T) {
	spawnCfg, physCfg := defaultCfgs()
	s := newSim(t, spawnCfg, physCfg)

	t0 := time.Unix(1000, 0)
	s.runner.Tick(t0, 16*time.Millisecond)

	want := t0.Add(spawnCfg.Lifetime)
	s.state.Expiries.Each(func(_ ecs.Handle, e *world.Expiry) {
		if !e.ExpiresAt.Equal(want) {
			t.Fatalf("expiry = %v, want %v", e.ExpiresAt, want)
		}
	})

	for i := 1; i <= 10; i++ {
		s.runner.Tick(t0.Add(time.Duration(i)*16*time.Millisecond), 16*time.Millisecond)
	}
	s.state.Expiries.Each(func(_ ecs.Handle, e *world.Expiry) {
		if !e.ExpiresAt.Equal(want) {
			t.Fatalf("expiry mutated to %v after ticks, want %v", e.ExpiresAt, want)
		}
	})
}

// Per-tick population accounting: after = before + spawned - expired.
func TestTick_PopulationInvariant(t *testing.T) {
	spawnCfg, physCfg := defaultCfgs()
	spawnCfg.Interval = 100 * time.Millisecond
	spawnCfg.BatchSize = 10
	spawnCfg.Lifetime = 300 * time.Millisecond
	s := newSim(t, spawnCfg, physCfg)

	t0 := time.Unix(1000, 0)
	dt := 50 * time.Millisecond

	for i := 0; i < 40; i++ {
		now := t0.Add(time.Duration(i) * dt)

		before := s.state.Live()
		spawnsExpected := 0
		if now.After(s.sched.NextSpawnDeadline) {
			spawnsExpected = spawnCfg.BatchSize
		}
		expiredExpected := 0
		s.state.Expiries.Each(func(_ ecs.Handle, e *world.Expiry) {
			if !e.ExpiresAt.After(now) {
				expiredExpected++
			}
		})

		s.runner.Tick(now, dt)

		want := before + spawnsExpected - expiredExpected
		if got := s.state.Live(); got != want {
			t.Fatalf("tick %d: live = %d, want %d + %d - %d = %d", i, got, before, spawnsExpected, expiredExpected, want)
		}
	}
}

// The spawn phase completes before physics: a batch spawned this tick has
// gravity applied to it within the same tick.
func TestTick_SpawnVisibleToPhysicsSameTick(t *testing.T) {
	spawnCfg, physCfg := defaultCfgs()
	physCfg.Gravity = 100
	s := newSim(t, spawnCfg, physCfg)

	t0 := time.Unix(1000, 0)
	dt := 100 * time.Millisecond
	s.runner.Tick(t0, dt)

	// Launch velocity always points upward; gravity 100 over a 100ms tick
	// subtracts 10, far more than any launch vy, so a negative vy proves
	// physics ran after the spawn inserted the batch.
	s.state.Velocities.Each(func(_ ecs.Handle, v *world.Velocity) {
		if v.Lin.Y >= 0 {
			t.Fatalf("vy = %g, want gravity applied within the spawn tick", v.Lin.Y)
		}
	})
}

// Spawned particles start inside the configured region with speed equal to
// the configured launch speed, heading upward.
func TestSpawn_InitialConditions(t *testing.T) {
	spawnCfg, physCfg := defaultCfgs()
	s := newSim(t, spawnCfg, physCfg)

	t0 := time.Unix(1000, 0)
	s.spawn.MaybeSpawn(t0)

	region := spawnCfg.Region.Box()
	s.state.Transforms.Each(func(h ecs.Handle, tr *world.Transform) {
		if !region.Contains(tr.Pos) {
			t.Fatalf("spawn position %#v outside region %#v", tr.Pos, region)
		}
	})
	s.state.Velocities.Each(func(_ ecs.Handle, v *world.Velocity) {
		speed := v.Lin.Len()
		if diff := speed - spawnCfg.InitialSpeed; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("launch speed = %g, want %g", speed, spawnCfg.InitialSpeed)
		}
		if v.Lin.Y <= 0 {
			t.Fatalf("launch vy = %g, want upward", v.Lin.Y)
		}
	})
}

// Two simulations with the same seed and the same tick schedule produce
// identical particle state.
func TestSim_DeterministicUnderSeed(t *testing.T) {
	spawnCfg, physCfg := defaultCfgs()
	a := newSim(t, spawnCfg, physCfg)
	b := newSim(t, spawnCfg, physCfg)

	t0 := time.Unix(1000, 0)
	dt := 16 * time.Millisecond
	for i := 0; i < 50; i++ {
		now := t0.Add(time.Duration(i) * dt)
		a.runner.Tick(now, dt)
		b.runner.Tick(now, dt)
	}

	if a.state.Live() != b.state.Live() {
		t.Fatalf("population diverged: %d vs %d", a.state.Live(), b.state.Live())
	}
	a.state.Transforms.Each(func(h ecs.Handle, tr *world.Transform) {
		other, ok := b.state.Transforms.Get(h)
		if !ok {
			t.Fatalf("handle %v missing from twin simulation", h)
		}
		if tr.Pos != other.Pos {
			t.Fatalf("handle %v diverged: %#v vs %#v", h, tr.Pos, other.Pos)
		}
	})
}
