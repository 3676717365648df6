package governor

// #region imports
import (
	"fmt"
	"log"
	"time"

	"github.com/danielpatrickdp/nova/internal/config"
	"github.com/danielpatrickdp/nova/internal/stability"
)

// #endregion imports

// #region governor

// Governor owns the mode state machine and the adaptive learning rate.
// One Step per poll cycle; CRITICAL conditions pre-empt every other check.
type Governor struct {
	cfg   config.GovernorConfig
	state State
	now   func() time.Time
}

// New creates a governor starting in STABILIZING at eta_min: conservative
// until the first real snapshot arrives.
func New(cfg config.GovernorConfig) *Governor {
	return NewWithClock(cfg, time.Now)
}

// NewWithClock is New with an injected clock, for deterministic replay.
func NewWithClock(cfg config.GovernorConfig, now func() time.Time) *Governor {
	g := &Governor{
		cfg: cfg,
		now: now,
	}
	g.state = State{
		Mode:             ModeStabilizing,
		Eta:              cfg.EtaMin,
		Frozen:           false,
		LastTransitionAt: g.now(),
	}
	return g
}

// State returns a copy of the current governor state.
func (g *Governor) State() State {
	return g.state
}

// #endregion governor

// #region decide

// decide is the pure transition function over (margin, hopf distance,
// generativity, previous mode). The CRITICAL check short-circuits.
func (g *Governor) decide(snap stability.Snapshot, gStar float64) (Mode, string) {
	c := g.cfg
	switch {
	case snap.Margin < c.CriticalMargin:
		return ModeCritical, fmt.Sprintf("margin %.4f below critical %.4f", snap.Margin, c.CriticalMargin)
	case snap.HopfDistance < c.HopfThreshold:
		return ModeCritical, fmt.Sprintf("hopf distance %.4f below threshold %.4f", snap.HopfDistance, c.HopfThreshold)
	case snap.Margin < c.StabilizingMargin:
		return ModeStabilizing, fmt.Sprintf("margin %.4f in stabilizing band", snap.Margin)
	case snap.Margin < c.ExploringMargin:
		if gStar >= c.ExploringGMin {
			return ModeExploring, fmt.Sprintf("margin %.4f, g_star %.3f supports exploration", snap.Margin, gStar)
		}
		return ModeStabilizing, fmt.Sprintf("margin %.4f healthy but g_star %.3f below %.2f", snap.Margin, gStar, c.ExploringGMin)
	default:
		if gStar >= c.OptimalGMin {
			return ModeOptimal, fmt.Sprintf("margin %.4f, g_star %.3f", snap.Margin, gStar)
		}
		if gStar >= c.ExploringGMin {
			return ModeExploring, fmt.Sprintf("margin %.4f wide but g_star %.3f below optimal %.2f", snap.Margin, gStar, c.OptimalGMin)
		}
		return ModeStabilizing, fmt.Sprintf("margin %.4f wide but g_star %.3f below %.2f", snap.Margin, gStar, c.ExploringGMin)
	}
}

// #endregion decide

// #region step

// Step advances the state machine by one poll cycle. Entering CRITICAL snaps
// eta to eta_min in the same cycle; every other mode ramps eta toward its
// target by at most eta_max_step.
func (g *Governor) Step(snap stability.Snapshot, gStar float64) StepResult {
	prev := g.state
	mode, reason := g.decide(snap, gStar)

	next := State{
		Mode:             mode,
		LastTransitionAt: prev.LastTransitionAt,
	}

	switch mode {
	case ModeCritical:
		next.Eta = g.cfg.EtaMin
		next.Frozen = true
	case ModeStabilizing:
		next.Eta = g.rampEta(prev.Eta, g.cfg.EtaMin)
		next.Frozen = false
	case ModeExploring:
		next.Eta = g.rampEta(prev.Eta, g.cfg.EtaMax)
		next.Frozen = false
	case ModeOptimal:
		next.Eta = g.rampEta(prev.Eta, g.cfg.EtaCruise)
		next.Frozen = false
	}

	transitioned := mode != prev.Mode
	if transitioned {
		next.LastTransitionAt = g.now()
		log.Printf("[GOV] %s -> %s (%s) eta=%.4f frozen=%v margin=%.4f hopf=%.4f g_star=%.3f",
			prev.Mode, mode, reason, next.Eta, next.Frozen, snap.Margin, snap.HopfDistance, gStar)
	}

	g.state = next
	return StepResult{
		State:        next,
		Transitioned: transitioned,
		PrevMode:     prev.Mode,
		Reason:       reason,
	}
}

// rampEta moves eta toward target by at most eta_max_step, then clamps to
// [eta_min, eta_max].
func (g *Governor) rampEta(eta, target float64) float64 {
	delta := target - eta
	if delta > g.cfg.EtaMaxStep {
		delta = g.cfg.EtaMaxStep
	} else if delta < -g.cfg.EtaMaxStep {
		delta = -g.cfg.EtaMaxStep
	}
	next := eta + delta
	if next < g.cfg.EtaMin {
		next = g.cfg.EtaMin
	}
	if next > g.cfg.EtaMax {
		next = g.cfg.EtaMax
	}
	return next
}

// #endregion step
