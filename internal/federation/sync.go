package federation

// #region imports
import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/danielpatrickdp/nova/internal/config"
	"golang.org/x/sync/errgroup"
)

// #endregion imports

// #region trust-constants

const (
	// initialTrust is assigned to a configured endpoint before any exchange.
	initialTrust = 0.5
	// trustGain moves trust toward 1 on success: t += gain * (1 - t).
	trustGain = 0.1
	// trustDecay multiplies trust on failure.
	trustDecay = 0.5
)

// #endregion trust-constants

// #region synchronizer

// Synchronizer owns the peer table. All mutation happens on the sync loop;
// readers get the atomically published PeerSnapshot from the last completed
// cycle.
type Synchronizer struct {
	cfg    config.FederationConfig
	own    SummarySource
	dialer PeerDialer

	// Keyed by endpoint; PeerID is learned from the first successful poll.
	peers map[string]*PeerRecord
	conns map[string]PeerPoller

	published atomic.Pointer[PeerSnapshot]
	now       func() time.Time
}

// NewSynchronizer creates a synchronizer over the statically configured
// endpoints.
func NewSynchronizer(cfg config.FederationConfig, endpoints []string, own SummarySource, dialer PeerDialer) *Synchronizer {
	s := &Synchronizer{
		cfg:    cfg,
		own:    own,
		dialer: dialer,
		peers:  make(map[string]*PeerRecord, len(endpoints)),
		conns:  make(map[string]PeerPoller, len(endpoints)),
		now:    time.Now,
	}
	for _, ep := range endpoints {
		s.peers[ep] = &PeerRecord{
			Endpoint:   ep,
			TrustScore: initialTrust,
		}
	}
	s.published.Store(&PeerSnapshot{})
	return s
}

// Snapshot returns the last published peer view. Never nil.
func (s *Synchronizer) Snapshot() *PeerSnapshot {
	return s.published.Load()
}

// Peers returns a copy of every peer record, evicted ones included.
func (s *Synchronizer) Peers() []PeerRecord {
	out := make([]PeerRecord, 0, len(s.peers))
	for _, rec := range s.peers {
		out = append(out, *rec)
	}
	return out
}

// #endregion synchronizer

// #region sync-cycle

type pollOutcome struct {
	endpoint string
	result   PollResult
	err      error
}

type pollTask struct {
	endpoint string
	conn     PeerPoller
}

// SyncCycle polls every known peer concurrently with a per-peer timeout,
// then applies all outcomes to the table and publishes the new snapshot.
// Nothing is visible to readers until the whole cycle has been applied.
// Connection state lives entirely in the serial phases; the goroutines only
// touch their own task.
//
// Evicted peers are still probed so they can earn re-admission, but their
// failures do not count toward the cycle outcome: one dead endpoint must not
// hold the remediator's failure ratio over the line forever.
func (s *Synchronizer) SyncCycle(ctx context.Context) CycleOutcome {
	own := s.own.Summary()

	outcomes := make([]pollOutcome, 0, len(s.peers))
	tasks := make([]pollTask, 0, len(s.peers))
	for ep := range s.peers {
		conn, ok := s.conns[ep]
		if !ok {
			var err error
			conn, err = s.dialer.Dial(ep)
			if err != nil {
				outcomes = append(outcomes, pollOutcome{endpoint: ep, err: err})
				continue
			}
			s.conns[ep] = conn
		}
		tasks = append(tasks, pollTask{endpoint: ep, conn: conn})
	}

	polled := make([]pollOutcome, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, s.cfg.PeerTimeout.Std())
			defer cancel()
			res, err := task.conn.Poll(pctx, own)
			polled[i] = pollOutcome{endpoint: task.endpoint, result: res, err: err}
			return nil
		})
	}
	// Poll errors are recorded per peer, never returned; Wait only gathers.
	_ = g.Wait()
	outcomes = append(outcomes, polled...)

	now := s.now()
	active := 0
	var failedPeers []string
	for _, o := range outcomes {
		// Eviction status before this cycle's bookkeeping decides whether
		// the peer counts as active.
		wasEvicted := s.peers[o.endpoint].Evicted
		if o.err != nil {
			// Drop the connection so the next cycle redials.
			if conn, ok := s.conns[o.endpoint]; ok {
				_ = conn.Close()
				delete(s.conns, o.endpoint)
			}
			s.recordFailure(o.endpoint)
			if !wasEvicted {
				failedPeers = append(failedPeers, o.endpoint)
			}
		} else {
			s.recordSuccess(o.endpoint, o.result, now)
		}
		if !wasEvicted {
			active++
		}
	}

	s.publish(now)
	return CycleOutcome{
		Polled:      active,
		Failed:      len(failedPeers),
		FailedPeers: failedPeers,
		At:          now,
	}
}

// #endregion sync-cycle

// #region trust

func (s *Synchronizer) recordSuccess(endpoint string, res PollResult, now time.Time) {
	rec := s.peers[endpoint]
	rec.PeerID = res.NodeID
	rec.LastSeen = now
	rec.ReportedGStar = res.GStar
	rec.ConsecutiveFailures = 0
	if rec.Evicted {
		// Re-admission keeps trust history but halves it; a flapping peer
		// does not come back at full standing.
		rec.Evicted = false
		if rec.TrustScore < initialTrust/2 {
			rec.TrustScore = initialTrust / 2
		}
		log.Printf("[SYNC] peer %s re-admitted (trust=%.2f)", endpoint, rec.TrustScore)
	}
	rec.TrustScore += trustGain * (1 - rec.TrustScore)
	if rec.TrustScore > 1 {
		rec.TrustScore = 1
	}
}

func (s *Synchronizer) recordFailure(endpoint string) {
	rec := s.peers[endpoint]
	rec.ConsecutiveFailures++
	rec.TrustScore *= trustDecay
	if !rec.Evicted && rec.ConsecutiveFailures > s.cfg.PeerFailLimit {
		rec.Evicted = true
		log.Printf("[SYNC] peer %s evicted after %d consecutive failures (trust=%.2f retained)",
			endpoint, rec.ConsecutiveFailures, rec.TrustScore)
	}
}

// #endregion trust

// #region publish

// publish assembles the snapshot of trusted, recently seen peers.
func (s *Synchronizer) publish(now time.Time) {
	snap := &PeerSnapshot{LastSync: now}
	for _, rec := range s.peers {
		if rec.Evicted || rec.TrustScore < s.cfg.TrustThreshold {
			continue
		}
		if rec.LastSeen.IsZero() || now.Sub(rec.LastSeen) > s.cfg.StaleAfter.Std() {
			continue
		}
		snap.Reports = append(snap.Reports, PeerReport{
			PeerID: rec.PeerID,
			GStar:  rec.ReportedGStar,
			Trust:  rec.TrustScore,
		})
	}
	snap.PeerCount = len(snap.Reports)
	s.published.Store(snap)
}

// #endregion publish

// #region reset

// Reset drops all peer connections and clears failure streaks, keeping trust
// history. The remediator invokes this through the node's restart action.
func (s *Synchronizer) Reset() {
	for ep, conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, ep)
	}
	for _, rec := range s.peers {
		rec.ConsecutiveFailures = 0
	}
	log.Printf("[SYNC] synchronizer reset")
}

// Close releases all peer connections.
func (s *Synchronizer) Close() {
	for ep, conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, ep)
	}
}

// #endregion reset
