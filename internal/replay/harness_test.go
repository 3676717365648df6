package replay

import (
	"fmt"
	"testing"
	"time"

	"github.com/danielpatrickdp/nova/internal/governor"
	"github.com/danielpatrickdp/nova/internal/stability"
)

var replayStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// stableRun builds interactions over a strongly damped residual stream
// excited by deterministic pseudo-noise: a process the analyzer scores well
// clear of both the critical margin and the Hopf threshold.
func stableRun(n int) []Interaction {
	interactions := make([]Interaction, 0, n)
	at := replayStart
	seed := int64(1)
	x1 := 0.0
	for i := 0; i < n; i++ {
		residuals := make([]float64, 16)
		for j := range residuals {
			seed = (1103515245*seed + 12345) % 2147483648
			noise := float64(seed)/2147483648 - 0.5
			x1 = 0.3*x1 + noise
			residuals[j] = x1
		}
		interactions = append(interactions, Interaction{
			CycleID:       cycleID(i),
			At:            at,
			Residuals:     residuals,
			ProgressTotal: float64(i) * 10,
		})
		at = at.Add(15 * time.Second)
	}
	return interactions
}

func cycleID(i int) string {
	return fmt.Sprintf("cycle-%03d", i)
}

func TestReplayIsDeterministic(t *testing.T) {
	interactions := stableRun(6)
	cfg := DefaultReplayConfig()

	first := Replay(interactions, cfg, replayStart)
	second := Replay(interactions, cfg, replayStart)

	if len(first) != len(second) || len(first) != len(interactions) {
		t.Fatalf("result lengths diverge: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Mode != b.Mode || a.Frozen != b.Frozen || a.Eta != b.Eta {
			t.Fatalf("cycle %d diverges: %+v vs %+v", i, a, b)
		}
		if a.Snapshot.Margin != b.Snapshot.Margin || a.Gen.GStar != b.Gen.GStar {
			t.Fatalf("cycle %d signals diverge: %+v vs %+v", i, a, b)
		}
	}
}

func TestReplayNeverFreezesOnStableStream(t *testing.T) {
	results := Replay(stableRun(6), DefaultReplayConfig(), replayStart)
	for i, r := range results {
		if r.Mode == governor.ModeCritical || r.Frozen {
			t.Fatalf("cycle %d froze on a stable stream: %+v", i, r)
		}
	}
}

func TestStepWithSnapshotForcesCritical(t *testing.T) {
	h := NewHarness(DefaultReplayConfig(), replayStart)

	healthy := stability.Snapshot{Margin: 0.5, HopfDistance: 1.0, ComputedAt: replayStart}
	res := h.StepWithSnapshot(Interaction{CycleID: "c-0", At: replayStart}, healthy)
	if res.Mode == governor.ModeCritical {
		t.Fatalf("healthy snapshot should not be critical: %+v", res)
	}

	at := replayStart.Add(15 * time.Second)
	bad := stability.Snapshot{Margin: 0.002, HopfDistance: 1.0, Degraded: true, ComputedAt: at}
	res = h.StepWithSnapshot(Interaction{CycleID: "c-1", At: at}, bad)
	if res.Mode != governor.ModeCritical || !res.Frozen {
		t.Fatalf("margin below critical should freeze: %+v", res)
	}
	if !res.Transitioned {
		t.Fatal("entering critical should be a transition")
	}
	if res.Eta != DefaultReplayConfig().Governor.EtaMin {
		t.Fatalf("critical should snap eta to eta_min, got %v", res.Eta)
	}
}

func TestHarnessClockFollowsInteractions(t *testing.T) {
	h := NewHarness(DefaultReplayConfig(), replayStart)
	at := replayStart.Add(time.Minute)
	res := h.StepWithSnapshot(Interaction{CycleID: "c-0", At: at},
		stability.Snapshot{Margin: 0.5, HopfDistance: 1.0, ComputedAt: at})
	if !h.clock.Equal(at) {
		t.Fatalf("clock %v, want %v", h.clock, at)
	}
	if res.CycleID != "c-0" {
		t.Fatalf("cycle id %q", res.CycleID)
	}
}

func TestSummarizeCounts(t *testing.T) {
	h := NewHarness(DefaultReplayConfig(), replayStart)
	snaps := []stability.Snapshot{
		{Margin: 0.5, HopfDistance: 1.0},
		{Margin: 0.002, HopfDistance: 1.0, Degraded: true},
		{Margin: 0.005, HopfDistance: 1.0, Degraded: true},
		{Margin: 0.5, HopfDistance: 1.0},
	}
	results := make([]ReplayResult, 0, len(snaps))
	at := replayStart
	for i, snap := range snaps {
		snap.ComputedAt = at
		results = append(results, h.StepWithSnapshot(Interaction{CycleID: cycleID(i), At: at}, snap))
		at = at.Add(15 * time.Second)
	}

	s := Summarize(results, h.State())
	if s.TotalCycles != 4 {
		t.Fatalf("total %d", s.TotalCycles)
	}
	if s.CriticalCycles != 2 || s.FrozenCycles != 2 || s.DegradedCycles != 2 {
		t.Fatalf("counts: %+v", s)
	}
	// stabilizing -> critical -> (stay) -> stabilizing
	if s.Transitions != 2 {
		t.Fatalf("transitions %d, want 2", s.Transitions)
	}
	if s.FinalState.Mode != governor.ModeStabilizing {
		t.Fatalf("final mode %s", s.FinalState.Mode)
	}
}
