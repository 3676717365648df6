package node

// #region imports
import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/danielpatrickdp/nova/internal/federation"
	"github.com/danielpatrickdp/nova/internal/generativity"
	"github.com/danielpatrickdp/nova/internal/governor"
	"github.com/danielpatrickdp/nova/internal/logging"
	"github.com/danielpatrickdp/nova/internal/stability"
	"github.com/danielpatrickdp/nova/internal/store"
)

// #endregion imports

// #region governor-loop

func (n *Node) runGovernorLoop(ctx context.Context) {
	defer n.wg.Done()
	ticker := time.NewTicker(n.cfg.Governor.Interval.Std())
	defer ticker.Stop()

	n.governorCycle()
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.done:
			return
		case <-ticker.C:
			n.governorCycle()
		}
	}
}

// governorCycle runs one analyze -> score -> step -> publish pass. It must
// never halt the loop: a panic anywhere inside is caught and converted into
// a CRITICAL-forcing snapshot.
func (n *Node) governorCycle() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[NODE] governor cycle panic: %v; forcing critical", r)
			snap := stability.Snapshot{
				Margin:       n.cfg.Governor.CriticalMargin - 1e-6,
				HopfDistance: 0,
				Degraded:     true,
				ComputedAt:   time.Now().UTC(),
			}
			res := n.gov.Step(snap, 0)
			n.publish(snap, res, n.engine.State(), 0)
		}
	}()

	snap := n.analyzer.Analyze(n.residualWindow())
	peerSnap := n.sync.Snapshot()

	reports := make([]generativity.PeerReport, 0, len(peerSnap.Reports))
	for _, r := range peerSnap.Reports {
		reports = append(reports, generativity.PeerReport{
			PeerID: r.PeerID,
			GStar:  r.GStar,
			Trust:  r.Trust,
		})
	}

	gen := n.engine.Compute(generativity.Input{
		ProgressTotal:  n.progressTotal(),
		DecisionSignal: snap.Margin,
		PeerCount:      peerSnap.PeerCount,
		Peers:          reports,
	})

	res := n.gov.Step(snap, gen.GStar)
	n.publish(snap, res, gen, peerSnap.PeerCount)
	n.persistCycle(snap, res, gen, peerSnap.PeerCount)
}

// publish stores the new immutable status and summary snapshots.
func (n *Node) publish(snap stability.Snapshot, res governor.StepResult, gen generativity.State, peerCount int) {
	now := time.Now().UTC()
	last := n.sync.Snapshot().LastSync

	n.status.Store(&Status{
		NodeID:    n.id.NodeID,
		Mode:      res.State.Mode,
		Eta:       res.State.Eta,
		Frozen:    res.State.Frozen,
		Margin:    snap.Margin,
		Hopf:      snap.HopfDistance,
		GStar:     gen.GStar,
		Context:   gen.Context,
		UpdatedAt: now,
		PeerSync: PeerSyncStatus{
			Enabled:   len(n.cfg.Peers) > 0,
			PeerCount: peerCount,
			Context:   gen.Context,
			LastSync:  last,
			Novelty:   gen.Novelty,
		},
	})
	n.summary.Store(&federation.Summary{
		NodeID:     n.id.NodeID,
		GStar:      gen.GStar,
		Context:    string(gen.Context),
		ReportedAt: now,
	})

	if n.metrics != nil {
		n.metrics.ObserveCycle(
			snap.Margin, snap.HopfDistance,
			res.State.Eta, res.State.Frozen,
			gen.GStar, gen.Novelty,
			gen.Context == generativity.ContextFederated, peerCount,
		)
		if res.Transitioned {
			n.metrics.ObserveTransition(string(res.State.Mode))
		}
	}
}

// persistCycle writes the cycle, any transition, and the provenance entry.
// Persistence failures are logged and absorbed; the loop stays alive.
func (n *Node) persistCycle(snap stability.Snapshot, res governor.StepResult, gen generativity.State, peerCount int) {
	if n.store == nil {
		return
	}
	now := time.Now().UTC()
	versionID := store.NewVersionID()

	rec := store.CycleRecord{
		VersionID: versionID,
		Snapshot:  snap,
		Governor:  res.State,
		Gen:       gen,
		PeerCount: peerCount,
		CreatedAt: now,
	}
	if err := n.store.SaveCycle(rec); err != nil {
		log.Printf("[NODE] persist cycle: %v", err)
		return
	}
	if res.Transitioned {
		if err := n.store.SaveTransition(store.TransitionRecord{
			VersionID:    versionID,
			FromMode:     res.PrevMode,
			ToMode:       res.State.Mode,
			Reason:       res.Reason,
			Margin:       snap.Margin,
			HopfDistance: snap.HopfDistance,
			Eta:          res.State.Eta,
			CreatedAt:    now,
		}); err != nil {
			log.Printf("[NODE] persist transition: %v", err)
		}
	}

	signals, _ := json.Marshal(logging.CycleSignals{
		Margin:         snap.Margin,
		HopfDistance:   snap.HopfDistance,
		SpectralRadius: snap.SpectralRadius,
		Degraded:       snap.Degraded,
		GStar:          gen.GStar,
		Progress:       gen.Progress,
		Novelty:        gen.Novelty,
		Consistency:    gen.Consistency,
		Context:        string(gen.Context),
		PeerCount:      peerCount,
		Eta:            res.State.Eta,
		Frozen:         res.State.Frozen,
	})
	trigger := "governor_cycle"
	if res.Transitioned {
		trigger = "mode_transition"
	}
	if err := logging.LogDecision(n.store.DB(), logging.ProvenanceEntry{
		VersionID:   versionID,
		TriggerType: trigger,
		SignalsJSON: string(signals),
		Decision:    string(res.State.Mode),
		Reason:      res.Reason,
		CreatedAt:   now,
	}); err != nil {
		log.Printf("[NODE] provenance: %v", err)
	}
}

// #endregion governor-loop

// #region sync-loop

func (n *Node) runSyncLoop(ctx context.Context) {
	defer n.wg.Done()
	defer n.sync.Close()

	delay := n.cfg.Federation.SyncInterval.Std()
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-n.done:
			return
		case <-n.restartCh:
			n.sync.Reset()
			n.logRemediation()
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(n.cfg.Federation.BackoffBase.Std())
		case <-timer.C:
			outcome := n.sync.SyncCycle(ctx)
			delay = n.remed.Observe(outcome)
			if n.metrics != nil {
				n.metrics.ObserveSync(delay, outcome.Failure(n.cfg.Federation.FailRatio))
				for _, ep := range outcome.FailedPeers {
					n.metrics.ObservePeerFailure(ep)
				}
			}
			n.persistPeers()
			n.remed.ObserveReadiness(n.Ready())
			timer.Reset(delay)
		}
	}
}

// persistPeers upserts the peer trust table after a completed cycle.
func (n *Node) persistPeers() {
	if n.store == nil {
		return
	}
	now := time.Now().UTC()
	for _, rec := range n.sync.Peers() {
		if err := n.store.UpsertPeer(rec, now); err != nil {
			log.Printf("[NODE] persist peer: %v", err)
		}
	}
}

// logRemediation records the remediation action in the provenance log.
func (n *Node) logRemediation() {
	if n.store == nil {
		return
	}
	st := n.remed.State()
	if err := logging.LogDecision(n.store.DB(), logging.ProvenanceEntry{
		VersionID:   store.NewVersionID(),
		TriggerType: "remediation",
		Decision:    "sync_restart",
		Reason:      "readiness failures exceeded limit",
		CreatedAt:   st.LastActionAt,
	}); err != nil {
		log.Printf("[NODE] provenance: %v", err)
	}
}

// #endregion sync-loop
