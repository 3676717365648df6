package federation

// #region imports
import (
	"log"
	"time"

	"github.com/danielpatrickdp/nova/internal/config"
)

// #endregion imports

// #region state

// RemediationState is the remediator's published state.
type RemediationState struct {
	ConsecutiveErrors int           `json:"consecutive_errors"`
	CurrentBackoff    time.Duration `json:"current_backoff"`
	LastActionAt      time.Time     `json:"last_action_at"`
	CooldownUntil     time.Time     `json:"cooldown_until"`
	Actions           int           `json:"actions"`
}

// #endregion state

// #region remediator

// Remediator watches sync cycle outcomes and readiness, applies exponential
// backoff to the sync cadence on repeated failures, and triggers at most one
// bounded auto-remediation action per cooldown window.
type Remediator struct {
	cfg     config.FederationConfig
	state   RemediationState
	ready   int // consecutive readiness failures
	restart func()
	now     func() time.Time
}

// NewRemediator creates a remediator. restart is the bounded remediation
// action (the node passes its sync-loop restart).
func NewRemediator(cfg config.FederationConfig, restart func()) *Remediator {
	return &Remediator{
		cfg:     cfg,
		restart: restart,
		state: RemediationState{
			CurrentBackoff: cfg.BackoffBase.Std(),
		},
		now: time.Now,
	}
}

// State returns a copy of the remediation state.
func (r *Remediator) State() RemediationState {
	return r.state
}

// #endregion remediator

// #region observe

// Observe records one cycle outcome and returns the delay to apply before
// the next sync cycle. Backoff grows by the multiplier on failure, capped at
// the max, and resets to base on the first success.
func (r *Remediator) Observe(outcome CycleOutcome) time.Duration {
	if outcome.Failure(r.cfg.FailRatio) {
		r.state.ConsecutiveErrors++
		next := time.Duration(float64(r.state.CurrentBackoff) * r.cfg.BackoffMultiplier)
		if next > r.cfg.BackoffMax.Std() {
			next = r.cfg.BackoffMax.Std()
		}
		r.state.CurrentBackoff = next
		log.Printf("[REMED] sync cycle failed (%d/%d peers, streak=%d), backoff=%v",
			outcome.Failed, outcome.Polled, r.state.ConsecutiveErrors, next)
	} else {
		r.state.ConsecutiveErrors = 0
		r.state.CurrentBackoff = r.cfg.BackoffBase.Std()
	}
	return r.state.CurrentBackoff
}

// #endregion observe

// #region readiness

// ObserveReadiness records the node's overall readiness check. Crossing the
// failure bound triggers the remediation action, gated so it cannot repeat
// more than once per cooldown window no matter how many failures accumulate.
func (r *Remediator) ObserveReadiness(ready bool) {
	if ready {
		r.ready = 0
		return
	}
	r.ready++
	if r.ready <= r.cfg.ReadyFailLimit {
		return
	}
	now := r.now()
	if now.Before(r.state.CooldownUntil) {
		return
	}
	r.state.LastActionAt = now
	r.state.CooldownUntil = now.Add(r.cfg.Cooldown.Std())
	r.state.Actions++
	log.Printf("[REMED] readiness failed %d consecutive cycles, restarting sync (cooldown until %s)",
		r.ready, r.state.CooldownUntil.Format(time.RFC3339))
	if r.restart != nil {
		r.restart()
	}
}

// #endregion readiness
