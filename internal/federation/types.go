package federation

import "time"

// #region peer-record

// PeerRecord tracks one known peer. Created on first configuration or
// discovery; the record survives eviction so trust history is retained for
// re-admission.
type PeerRecord struct {
	PeerID              string    `json:"peer_id"`
	Endpoint            string    `json:"endpoint"`
	LastSeen            time.Time `json:"last_seen"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	ReportedGStar       float64   `json:"reported_g_star"`
	TrustScore          float64   `json:"trust_score"`
	Evicted             bool      `json:"evicted"`
}

// #endregion peer-record

// #region summary

// Summary is the node's own generativity summary: what we answer polls with
// and what we attach to outgoing polls.
type Summary struct {
	NodeID     string
	GStar      float64
	Context    string
	ReportedAt time.Time
}

// #endregion summary

// #region poll-result

// PollResult is one successful peer exchange.
type PollResult struct {
	NodeID     string
	GStar      float64
	Context    string
	ReportedAt time.Time
}

// #endregion poll-result

// #region cycle-outcome

// CycleOutcome reports one completed sync cycle to the remediator. Counts
// cover the active set only; evicted peers are probed for re-admission but
// do not move the failure ratio.
type CycleOutcome struct {
	Polled      int
	Failed      int
	FailedPeers []string
	At          time.Time
}

// Failure applies the remediator's failure rule: a cycle with no peers is
// not a failure, a cycle losing at least ratio of its peers is.
func (o CycleOutcome) Failure(ratio float64) bool {
	if o.Polled == 0 {
		return false
	}
	return float64(o.Failed)/float64(o.Polled) >= ratio
}

// #endregion cycle-outcome

// #region peer-snapshot

// PeerSnapshot is the atomically published view of the peer table after a
// full sync cycle. Partial cycle results are never visible.
type PeerSnapshot struct {
	PeerCount int
	Reports   []PeerReport
	LastSync  time.Time
}

// PeerReport is a trusted peer's latest reported score.
type PeerReport struct {
	PeerID string
	GStar  float64
	Trust  float64
}

// #endregion peer-snapshot
