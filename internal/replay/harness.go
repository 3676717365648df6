// Package replay re-runs recorded governor cycles through the live decision
// pipeline, entirely in memory. Given the same inputs it produces the same
// mode trajectory, which makes a production freeze reproducible offline.
package replay

import (
	"time"

	"github.com/danielpatrickdp/nova/internal/config"
	"github.com/danielpatrickdp/nova/internal/generativity"
	"github.com/danielpatrickdp/nova/internal/governor"
	"github.com/danielpatrickdp/nova/internal/stability"
)

// #region types

// PeerObservation is a trusted peer's score as seen during one cycle.
type PeerObservation struct {
	PeerID string
	GStar  float64
	Trust  float64
}

// Interaction represents a single recorded governor cycle for replay.
type Interaction struct {
	CycleID       string
	At            time.Time
	Residuals     []float64 // appended to the rolling window before analysis
	ProgressTotal float64
	PeerCount     int
	Peers         []PeerObservation
}

// ReplayConfig bundles the analyzer, governor, and generativity configs for a
// replay run.
type ReplayConfig struct {
	Stability    config.StabilityConfig
	Governor     config.GovernorConfig
	Generativity config.GenerativityConfig
}

// DefaultReplayConfig returns the production defaults for all three stages.
func DefaultReplayConfig() ReplayConfig {
	def := config.Default()
	return ReplayConfig{
		Stability:    def.Stability,
		Governor:     def.Governor,
		Generativity: def.Generativity,
	}
}

// ReplayResult captures the outcome of replaying one cycle through the full
// pipeline.
type ReplayResult struct {
	CycleID string
	Mode    governor.Mode
	Reason  string

	// Analyzer stage
	Snapshot stability.Snapshot

	// Generativity stage
	Gen generativity.State

	// Governor stage
	Eta          float64
	Frozen       bool
	Transitioned bool
	PrevMode     governor.Mode
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalCycles    int
	Transitions    int
	CriticalCycles int
	FrozenCycles   int
	DegradedCycles int
	FinalState     governor.State
}

// #endregion types

// #region harness

// Harness holds the pipeline stages over a shared deterministic clock.
type Harness struct {
	analyzer *stability.Analyzer
	gov      *governor.Governor
	engine   *generativity.Engine

	clock     time.Time
	residuals []float64
	window    int
}

// NewHarness builds the pipeline. startAt seeds the deterministic clock;
// every subsequent cycle advances it to the interaction's timestamp.
func NewHarness(cfg ReplayConfig, startAt time.Time) *Harness {
	h := &Harness{clock: startAt, window: cfg.Stability.ResidualWindow}
	now := func() time.Time { return h.clock }
	h.analyzer = stability.NewAnalyzerWithClock(cfg.Stability, cfg.Governor.CriticalMargin, now)
	h.gov = governor.NewWithClock(cfg.Governor, now)
	h.engine = generativity.NewEngineWithClock(cfg.Generativity, now)
	return h
}

// Step replays one cycle: analyze -> score -> step, exactly as the live
// governor loop does.
func (h *Harness) Step(inter Interaction) ReplayResult {
	if !inter.At.IsZero() {
		h.clock = inter.At
	}

	h.residuals = append(h.residuals, inter.Residuals...)
	if len(h.residuals) > h.window {
		h.residuals = h.residuals[len(h.residuals)-h.window:]
	}
	return h.step(inter, h.analyzer.Analyze(h.residuals))
}

// StepWithSnapshot replays one cycle from a recorded analyzer snapshot,
// bypassing the residual window. Used when replaying persisted cycles, which
// store margins rather than raw residuals.
func (h *Harness) StepWithSnapshot(inter Interaction, snap stability.Snapshot) ReplayResult {
	if !inter.At.IsZero() {
		h.clock = inter.At
	}
	return h.step(inter, snap)
}

func (h *Harness) step(inter Interaction, snap stability.Snapshot) ReplayResult {
	peers := make([]generativity.PeerReport, 0, len(inter.Peers))
	for _, p := range inter.Peers {
		peers = append(peers, generativity.PeerReport{PeerID: p.PeerID, GStar: p.GStar, Trust: p.Trust})
	}
	gen := h.engine.Compute(generativity.Input{
		ProgressTotal:  inter.ProgressTotal,
		DecisionSignal: snap.Margin,
		PeerCount:      inter.PeerCount,
		Peers:          peers,
	})

	res := h.gov.Step(snap, gen.GStar)
	return ReplayResult{
		CycleID:      inter.CycleID,
		Mode:         res.State.Mode,
		Reason:       res.Reason,
		Snapshot:     snap,
		Gen:          gen,
		Eta:          res.State.Eta,
		Frozen:       res.State.Frozen,
		Transitioned: res.Transitioned,
		PrevMode:     res.PrevMode,
	}
}

// State returns the governor state after the last replayed cycle.
func (h *Harness) State() governor.State {
	return h.gov.State()
}

// Replay runs every interaction through a fresh harness in order.
func Replay(interactions []Interaction, cfg ReplayConfig, startAt time.Time) []ReplayResult {
	h := NewHarness(cfg, startAt)
	results := make([]ReplayResult, 0, len(interactions))
	for _, inter := range interactions {
		results = append(results, h.Step(inter))
	}
	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult, final governor.State) ReplaySummary {
	s := ReplaySummary{
		TotalCycles: len(results),
		FinalState:  final,
	}
	for _, r := range results {
		if r.Transitioned {
			s.Transitions++
		}
		if r.Mode == governor.ModeCritical {
			s.CriticalCycles++
		}
		if r.Frozen {
			s.FrozenCycles++
		}
		if r.Snapshot.Degraded {
			s.DegradedCycles++
		}
	}
	return s
}

// #endregion harness
