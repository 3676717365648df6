package governor

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/nova/internal/config"
	"github.com/danielpatrickdp/nova/internal/stability"
)

func testGovernor() *Governor {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewWithClock(config.Default().Governor, func() time.Time { return t0 })
}

func snap(margin, hopf float64) stability.Snapshot {
	return stability.Snapshot{Margin: margin, HopfDistance: hopf}
}

func TestStartsConservative(t *testing.T) {
	g := testGovernor()
	st := g.State()
	if st.Mode != ModeStabilizing {
		t.Fatalf("expected initial mode stabilizing, got %s", st.Mode)
	}
	if st.Eta != g.cfg.EtaMin {
		t.Fatalf("expected initial eta %v, got %v", g.cfg.EtaMin, st.Eta)
	}
	if st.Frozen {
		t.Fatal("should not start frozen")
	}
}

func TestCriticalMarginFreezesImmediately(t *testing.T) {
	g := testGovernor()

	// Ramp eta up in exploring first.
	for i := 0; i < 10; i++ {
		g.Step(snap(0.05, 1.0), 0.8)
	}
	if g.State().Eta <= g.cfg.EtaMin {
		t.Fatal("eta should have ramped above min in exploring")
	}

	res := g.Step(snap(0.005, 1.0), 0.8)
	if res.State.Mode != ModeCritical {
		t.Fatalf("margin 0.005 should force critical, got %s", res.State.Mode)
	}
	if !res.State.Frozen {
		t.Fatal("critical must freeze")
	}
	if res.State.Eta != g.cfg.EtaMin {
		t.Fatalf("critical must snap eta to %v in the same cycle, got %v", g.cfg.EtaMin, res.State.Eta)
	}
	if !res.Transitioned {
		t.Fatal("expected a transition into critical")
	}
}

func TestHopfProximityForcesCritical(t *testing.T) {
	g := testGovernor()

	// Margin is healthy; the oscillatory onset alone must pre-empt.
	res := g.Step(snap(0.08, 0.01), 0.9)
	if res.State.Mode != ModeCritical {
		t.Fatalf("hopf distance 0.01 should force critical, got %s", res.State.Mode)
	}
	if !res.State.Frozen {
		t.Fatal("critical must freeze")
	}
}

func TestCriticalReentryIdempotent(t *testing.T) {
	g := testGovernor()

	first := g.Step(snap(0.005, 1.0), 0.5)
	if !first.Transitioned {
		t.Fatal("expected transition into critical")
	}
	second := g.Step(snap(0.004, 1.0), 0.5)
	if second.Transitioned {
		t.Fatal("staying critical is not a transition")
	}
	if second.State.Mode != ModeCritical || !second.State.Frozen {
		t.Fatalf("expected critical/frozen, got %s/%v", second.State.Mode, second.State.Frozen)
	}
	if second.State.Eta != first.State.Eta {
		t.Fatalf("eta should stay pinned at min: %v != %v", second.State.Eta, first.State.Eta)
	}
}

func TestModeLadder(t *testing.T) {
	cases := []struct {
		name   string
		margin float64
		hopf   float64
		gStar  float64
		want   Mode
	}{
		{"below critical", 0.005, 1.0, 0.9, ModeCritical},
		{"stabilizing band", 0.015, 1.0, 0.9, ModeStabilizing},
		{"exploring band high g", 0.05, 1.0, 0.65, ModeExploring},
		{"exploring band low g", 0.05, 1.0, 0.4, ModeStabilizing},
		{"wide margin optimal g", 0.2, 1.0, 0.75, ModeOptimal},
		{"wide margin exploring g", 0.2, 1.0, 0.65, ModeExploring},
		{"wide margin low g", 0.2, 1.0, 0.3, ModeStabilizing},
	}
	for _, tc := range cases {
		g := testGovernor()
		res := g.Step(snap(tc.margin, tc.hopf), tc.gStar)
		if res.State.Mode != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, res.State.Mode)
		}
	}
}

func TestEtaRampRateLimited(t *testing.T) {
	g := testGovernor()

	// STABILIZING start at eta_min; optimal conditions pull toward cruise.
	res := g.Step(snap(0.2, 1.0), 0.9)
	expected := g.cfg.EtaMin + g.cfg.EtaMaxStep
	if res.State.Eta != expected {
		t.Fatalf("eta should move by at most %v per cycle: expected %v, got %v",
			g.cfg.EtaMaxStep, expected, res.State.Eta)
	}

	// Keep stepping; eta settles exactly at cruise, never beyond.
	for i := 0; i < 10; i++ {
		res = g.Step(snap(0.2, 1.0), 0.9)
	}
	if res.State.Eta != g.cfg.EtaCruise {
		t.Fatalf("eta should settle at cruise %v, got %v", g.cfg.EtaCruise, res.State.Eta)
	}
}

func TestEtaClampedToMax(t *testing.T) {
	cfg := config.Default().Governor
	cfg.EtaMaxStep = 1.0 // effectively unlimited step
	g := NewWithClock(cfg, time.Now)

	res := g.Step(snap(0.05, 1.0), 0.9) // exploring, target eta_max
	if res.State.Eta > cfg.EtaMax {
		t.Fatalf("eta must clamp to max %v, got %v", cfg.EtaMax, res.State.Eta)
	}
}

func TestFrozenOnlyInCritical(t *testing.T) {
	g := testGovernor()

	if res := g.Step(snap(0.005, 1.0), 0.5); !res.State.Frozen {
		t.Fatal("critical must freeze")
	}
	if res := g.Step(snap(0.05, 1.0), 0.9); res.State.Frozen {
		t.Fatalf("%s must not stay frozen", res.State.Mode)
	}
}

func TestTransitionTimestampUpdates(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := t0
	g := NewWithClock(config.Default().Governor, func() time.Time { return clock })

	clock = t0.Add(15 * time.Second)
	res := g.Step(snap(0.05, 1.0), 0.9) // stabilizing -> exploring
	if !res.Transitioned {
		t.Fatal("expected transition")
	}
	if !res.State.LastTransitionAt.Equal(clock) {
		t.Fatalf("transition time: expected %v, got %v", clock, res.State.LastTransitionAt)
	}

	clock = t0.Add(30 * time.Second)
	res = g.Step(snap(0.05, 1.0), 0.9) // stays exploring
	if res.Transitioned {
		t.Fatal("no transition expected")
	}
	if !res.State.LastTransitionAt.Equal(t0.Add(15 * time.Second)) {
		t.Fatalf("transition time must not move without a transition, got %v", res.State.LastTransitionAt)
	}
}
