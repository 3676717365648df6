package generativity

// #region imports
import (
	"log"
	"math"
	"time"

	"github.com/danielpatrickdp/nova/internal/config"
)

// #endregion imports

// #region constants

// noveltyScale normalizes score dispersion: scores live in [0,1], so a
// standard deviation of 0.25 already saturates novelty at 1.
const noveltyScale = 0.25

// baselineAlpha is the EWMA weight for the consistency baseline.
const baselineAlpha = 0.1

// #endregion constants

// #region engine

// Engine computes the composite generativity score and owns the
// SOLO/FEDERATED context switch. One Compute per governor cycle.
type Engine struct {
	cfg config.GenerativityConfig
	now func() time.Time

	state State

	// Progress rate tracking.
	lastTotal    float64
	lastComputed time.Time
	hasProgress  bool

	// Consistency baseline.
	baseline    float64
	hasBaseline bool

	// Continuous zero-peer observation start; zero while peers are present.
	zeroPeersSince time.Time
}

// NewEngine creates an engine starting in SOLO.
func NewEngine(cfg config.GenerativityConfig) *Engine {
	return NewEngineWithClock(cfg, time.Now)
}

// NewEngineWithClock is NewEngine with an injected clock, for deterministic
// replay.
func NewEngineWithClock(cfg config.GenerativityConfig, now func() time.Time) *Engine {
	e := &Engine{cfg: cfg, now: now}
	e.state = State{
		Context:      ContextSolo,
		ContextSince: e.now(),
	}
	return e
}

// State returns a copy of the last computed state.
func (e *Engine) State() State {
	return e.state
}

// #endregion engine

// #region compute

// Compute runs one scoring cycle: context switch first (novelty is zero in
// SOLO by construction), then P, N, C, then the capped weighted sum.
func (e *Engine) Compute(in Input) State {
	now := e.now()
	ctx, since := e.switchContext(in.PeerCount, now)

	p := e.progressScore(in.ProgressTotal, now)
	c := e.consistencyScore(in.DecisionSignal)
	var n float64
	if ctx == ContextFederated {
		n = e.noveltyScore(in.Peers)
	}

	gCap := e.cfg.CapSolo
	if ctx == ContextFederated {
		gCap = e.cfg.CapFederated
	}
	g := e.cfg.WeightProgress*p + e.cfg.WeightNovelty*n + e.cfg.WeightConsistency*c
	g = math.Min(math.Max(g, 0), gCap)

	e.state = State{
		Progress:     p,
		Novelty:      n,
		Consistency:  c,
		GStar:        g,
		Context:      ctx,
		ContextSince: since,
	}
	return e.state
}

// #endregion compute

// #region context-switch

// switchContext applies the asymmetric hysteresis: federate immediately on
// the first peer, return to solo only after a continuous zero-peer interval
// of at least the hysteresis delay. Any reappearing peer resets the timer.
func (e *Engine) switchContext(peerCount int, now time.Time) (Context, time.Time) {
	ctx, since := e.state.Context, e.state.ContextSince

	if peerCount >= e.cfg.MinPeers {
		e.zeroPeersSince = time.Time{}
		if ctx == ContextSolo {
			ctx = ContextFederated
			since = now
			log.Printf("[GEN] context solo -> federated (peers=%d)", peerCount)
		}
		return ctx, since
	}

	if ctx == ContextFederated {
		if e.zeroPeersSince.IsZero() {
			e.zeroPeersSince = now
		}
		if now.Sub(e.zeroPeersSince) >= e.cfg.HysteresisDelay.Std() {
			ctx = ContextSolo
			since = now
			e.zeroPeersSince = time.Time{}
			log.Printf("[GEN] context federated -> solo (no peers for %v)", e.cfg.HysteresisDelay.Std())
		}
	}
	return ctx, since
}

// #endregion context-switch

// #region progress

// progressScore turns the monotonic counter into a saturating [0,1] rate.
func (e *Engine) progressScore(total float64, now time.Time) float64 {
	defer func() {
		e.lastTotal = total
		e.lastComputed = now
		e.hasProgress = true
	}()
	if !e.hasProgress {
		return 0
	}
	elapsed := now.Sub(e.lastComputed).Seconds()
	if elapsed <= 0 {
		return e.state.Progress
	}
	rate := (total - e.lastTotal) / elapsed
	if rate < 0 {
		// Counter reset; treat as a cold start rather than negative progress.
		return 0
	}
	return math.Tanh(rate / e.cfg.ProgressScale)
}

// #endregion progress

// #region consistency

// consistencyScore measures agreement of the decision signal with its EWMA
// baseline: no deviation scores 1, large deviation decays toward 0.
func (e *Engine) consistencyScore(signal float64) float64 {
	if !e.hasBaseline {
		e.baseline = signal
		e.hasBaseline = true
		return 1
	}
	dev := math.Abs(signal-e.baseline) / (1 + math.Abs(e.baseline))
	e.baseline = (1-baselineAlpha)*e.baseline + baselineAlpha*signal
	c := 1 - dev
	return math.Min(math.Max(c, 0), 1)
}

// #endregion consistency

// #region novelty

// noveltyScore is the trust-weighted dispersion of reported scores over the
// node's own last score plus its trusted peers. Including our own score means
// a single diverging peer still yields nonzero dispersion; low-trust peers
// contribute proportionally less.
func (e *Engine) noveltyScore(peers []PeerReport) float64 {
	if len(peers) == 0 {
		return 0
	}

	values := make([]float64, 0, len(peers)+1)
	weights := make([]float64, 0, len(peers)+1)
	values = append(values, e.state.GStar)
	weights = append(weights, 1)
	for _, p := range peers {
		if p.Trust <= 0 {
			continue
		}
		values = append(values, p.GStar)
		weights = append(weights, p.Trust)
	}
	if len(values) < 2 {
		return 0
	}

	var wSum, mean float64
	for i, v := range values {
		wSum += weights[i]
		mean += weights[i] * v
	}
	mean /= wSum

	var variance float64
	for i, v := range values {
		variance += weights[i] * (v - mean) * (v - mean)
	}
	variance /= wSum

	n := math.Sqrt(variance) / noveltyScale
	return math.Min(math.Max(n, 0), 1)
}

// #endregion novelty
