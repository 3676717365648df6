package federation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/danielpatrickdp/nova/internal/config"
)

// #region fakes

type fakeSummary struct{}

func (fakeSummary) Summary() Summary {
	return Summary{NodeID: "self", GStar: 0.5, Context: "federated"}
}

// fakePoller answers polls from a script: nil error returns the result.
type fakePoller struct {
	result PollResult
	err    error
	closed int
	polls  int
}

func (p *fakePoller) Poll(ctx context.Context, own Summary) (PollResult, error) {
	p.polls++
	if p.err != nil {
		return PollResult{}, p.err
	}
	return p.result, nil
}

func (p *fakePoller) Close() error {
	p.closed++
	return nil
}

type fakeDialer struct {
	pollers map[string]*fakePoller
	dials   int
	dialErr error
}

func (d *fakeDialer) Dial(endpoint string) (PeerPoller, error) {
	d.dials++
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.pollers[endpoint], nil
}

// #endregion fakes

func testSync(endpoints []string, dialer PeerDialer) *Synchronizer {
	return NewSynchronizer(config.Default().Federation, endpoints, fakeSummary{}, dialer)
}

func TestSyncCycleTrustRisesOnSuccess(t *testing.T) {
	d := &fakeDialer{pollers: map[string]*fakePoller{
		"peer-a:7420": {result: PollResult{NodeID: "node-a", GStar: 0.6}},
	}}
	s := testSync([]string{"peer-a:7420"}, d)

	out := s.SyncCycle(context.Background())
	if out.Polled != 1 || out.Failed != 0 {
		t.Fatalf("expected 1 polled 0 failed, got %+v", out)
	}

	recs := s.Peers()
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.PeerID != "node-a" {
		t.Fatalf("peer id should be learned from the poll, got %q", rec.PeerID)
	}
	if rec.TrustScore <= 0.5 {
		t.Fatalf("trust should rise above initial on success, got %v", rec.TrustScore)
	}
	if rec.ConsecutiveFailures != 0 {
		t.Fatalf("failure streak should be clear, got %d", rec.ConsecutiveFailures)
	}

	snap := s.Snapshot()
	if snap.PeerCount != 1 || snap.Reports[0].GStar != 0.6 {
		t.Fatalf("published snapshot should carry the report, got %+v", snap)
	}
}

func TestSyncCycleTrustDecaysAndEvicts(t *testing.T) {
	d := &fakeDialer{pollers: map[string]*fakePoller{
		"peer-a:7420": {err: errors.New("connection refused")},
	}}
	s := testSync([]string{"peer-a:7420"}, d)

	limit := s.cfg.PeerFailLimit
	for i := 0; i <= limit; i++ {
		out := s.SyncCycle(context.Background())
		if out.Failed != 1 {
			t.Fatalf("cycle %d: expected 1 failure, got %d", i, out.Failed)
		}
	}

	rec := s.Peers()[0]
	if !rec.Evicted {
		t.Fatalf("peer should be evicted after %d consecutive failures", rec.ConsecutiveFailures)
	}
	if rec.TrustScore >= 0.5 {
		t.Fatalf("trust should have decayed, got %v", rec.TrustScore)
	}
	if s.Snapshot().PeerCount != 0 {
		t.Fatal("evicted peer must not appear in the published snapshot")
	}
}

func TestEvictedPeerReadmission(t *testing.T) {
	p := &fakePoller{err: errors.New("down")}
	d := &fakeDialer{pollers: map[string]*fakePoller{"peer-a:7420": p}}
	s := testSync([]string{"peer-a:7420"}, d)

	for i := 0; i <= s.cfg.PeerFailLimit; i++ {
		s.SyncCycle(context.Background())
	}
	if !s.Peers()[0].Evicted {
		t.Fatal("setup: peer should be evicted")
	}

	// Peer recovers.
	p.err = nil
	p.result = PollResult{NodeID: "node-a", GStar: 0.4}
	s.SyncCycle(context.Background())

	rec := s.Peers()[0]
	if rec.Evicted {
		t.Fatal("successful poll should re-admit the peer")
	}
	if rec.TrustScore < initialTrust/2 {
		t.Fatalf("re-admission floors trust at %v, got %v", initialTrust/2, rec.TrustScore)
	}
	if rec.TrustScore > initialTrust {
		t.Fatalf("re-admitted peer must not return at full standing, got %v", rec.TrustScore)
	}
}

func TestFailedPollDropsConnection(t *testing.T) {
	p := &fakePoller{result: PollResult{NodeID: "node-a", GStar: 0.4}}
	d := &fakeDialer{pollers: map[string]*fakePoller{"peer-a:7420": p}}
	s := testSync([]string{"peer-a:7420"}, d)

	s.SyncCycle(context.Background())
	if d.dials != 1 {
		t.Fatalf("expected 1 dial, got %d", d.dials)
	}
	s.SyncCycle(context.Background())
	if d.dials != 1 {
		t.Fatalf("healthy connection should be reused, got %d dials", d.dials)
	}

	p.err = errors.New("reset")
	s.SyncCycle(context.Background())
	if p.closed != 1 {
		t.Fatalf("failed poll should close the connection, got %d closes", p.closed)
	}

	p.err = nil
	s.SyncCycle(context.Background())
	if d.dials != 2 {
		t.Fatalf("next cycle should redial, got %d dials", d.dials)
	}
}

func TestSnapshotExcludesLowTrustAndStale(t *testing.T) {
	pa := &fakePoller{result: PollResult{NodeID: "node-a", GStar: 0.4}}
	pb := &fakePoller{result: PollResult{NodeID: "node-b", GStar: 0.7}}
	d := &fakeDialer{pollers: map[string]*fakePoller{"a:7420": pa, "b:7420": pb}}
	s := testSync([]string{"a:7420", "b:7420"}, d)

	// All LastSeen stamps and the staleness check share one clock.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.SyncCycle(context.Background())
	if s.Snapshot().PeerCount != 2 {
		t.Fatalf("expected both peers published, got %d", s.Snapshot().PeerCount)
	}

	// Drive b's trust below the threshold without reaching eviction.
	pb.err = errors.New("flaky")
	s.SyncCycle(context.Background())
	s.SyncCycle(context.Background())

	snap := s.Snapshot()
	if snap.PeerCount != 1 || snap.Reports[0].PeerID != "node-a" {
		t.Fatalf("low-trust peer should be filtered, got %+v", snap)
	}

	// Freeze the table and move the clock past staleness.
	pa.err = errors.New("down")
	now = now.Add(s.cfg.StaleAfter.Std() + time.Minute)
	s.SyncCycle(context.Background())

	if s.Snapshot().PeerCount != 0 {
		t.Fatalf("stale peers should be filtered, got %d", s.Snapshot().PeerCount)
	}
}

func TestSyncCycleManyPeersConcurrent(t *testing.T) {
	pollers := make(map[string]*fakePoller, 64)
	endpoints := make([]string, 0, 64)
	for i := 0; i < 64; i++ {
		ep := fmt.Sprintf("peer-%02d:7420", i)
		pollers[ep] = &fakePoller{result: PollResult{NodeID: ep, GStar: 0.5}}
		endpoints = append(endpoints, ep)
	}
	d := &fakeDialer{pollers: pollers}
	s := testSync(endpoints, d)

	out := s.SyncCycle(context.Background())
	if out.Polled != 64 || out.Failed != 0 {
		t.Fatalf("expected 64 polled 0 failed, got %+v", out)
	}
	if d.dials != 64 {
		t.Fatalf("expected one dial per peer, got %d", d.dials)
	}
	if s.Snapshot().PeerCount != 64 {
		t.Fatalf("expected all peers published, got %d", s.Snapshot().PeerCount)
	}
	for ep, p := range pollers {
		if p.polls != 1 {
			t.Fatalf("peer %s polled %d times, want 1", ep, p.polls)
		}
	}
}

func TestEvictedPeerExcludedFromFailureRatio(t *testing.T) {
	pa := &fakePoller{result: PollResult{NodeID: "node-a", GStar: 0.5}}
	pb := &fakePoller{err: errors.New("no route to host")}
	d := &fakeDialer{pollers: map[string]*fakePoller{"a:7420": pa, "b:7420": pb}}
	s := testSync([]string{"a:7420", "b:7420"}, d)

	// Until eviction the dead peer is half the active set and every cycle
	// crosses the failure ratio.
	for i := 0; i <= s.cfg.PeerFailLimit; i++ {
		out := s.SyncCycle(context.Background())
		if !out.Failure(s.cfg.FailRatio) {
			t.Fatalf("cycle %d: dead active peer should fail the ratio, got %+v", i, out)
		}
	}

	probes := pb.polls
	out := s.SyncCycle(context.Background())
	if out.Polled != 1 || out.Failed != 0 {
		t.Fatalf("evicted peer must leave the active set, got %+v", out)
	}
	if out.Failure(s.cfg.FailRatio) {
		t.Fatalf("one healthy active peer should make a healthy cycle, got %+v", out)
	}
	if pb.polls != probes+1 {
		t.Fatalf("evicted peer should still be probed, polls %d -> %d", probes, pb.polls)
	}

	// The probe pays off: the peer recovers and rejoins the active set.
	pb.err = nil
	pb.result = PollResult{NodeID: "node-b", GStar: 0.5}
	s.SyncCycle(context.Background())
	out = s.SyncCycle(context.Background())
	if out.Polled != 2 {
		t.Fatalf("re-admitted peer should count as active again, got %+v", out)
	}
}

func TestSyncCycleNoPeersNotFailure(t *testing.T) {
	s := testSync(nil, &fakeDialer{})
	out := s.SyncCycle(context.Background())
	if out.Failure(0.5) {
		t.Fatal("a cycle with no peers is not a failure")
	}
}

func TestResetClearsStreaksKeepsTrust(t *testing.T) {
	p := &fakePoller{result: PollResult{NodeID: "node-a", GStar: 0.4}}
	d := &fakeDialer{pollers: map[string]*fakePoller{"peer-a:7420": p}}
	s := testSync([]string{"peer-a:7420"}, d)

	s.SyncCycle(context.Background())
	trust := s.Peers()[0].TrustScore

	p.err = errors.New("down")
	s.SyncCycle(context.Background())
	s.SyncCycle(context.Background())
	if s.Peers()[0].ConsecutiveFailures != 2 {
		t.Fatalf("setup: expected streak 2, got %d", s.Peers()[0].ConsecutiveFailures)
	}

	s.Reset()
	rec := s.Peers()[0]
	if rec.ConsecutiveFailures != 0 {
		t.Fatalf("reset should clear streaks, got %d", rec.ConsecutiveFailures)
	}
	if rec.TrustScore >= trust {
		t.Fatalf("reset must keep decayed trust history, got %v >= %v", rec.TrustScore, trust)
	}
	if p.closed == 0 {
		t.Fatal("reset should drop connections")
	}
}
