package node

// #region imports
import (
	"time"

	"github.com/danielpatrickdp/nova/internal/generativity"
	"github.com/danielpatrickdp/nova/internal/governor"
)

// #endregion imports

// #region status-types

// PeerSyncStatus is the federation portion of a status report.
type PeerSyncStatus struct {
	Enabled   bool                 `json:"enabled"`
	PeerCount int                  `json:"peer_count"`
	Context   generativity.Context `json:"context"`
	LastSync  time.Time            `json:"last_sync"`
	Novelty   float64              `json:"novelty"`
}

// Status is the point-in-time health report published after every governor
// cycle. Readers get an immutable snapshot; fields never mutate in place.
type Status struct {
	NodeID    string               `json:"node_id"`
	Mode      governor.Mode        `json:"mode"`
	Eta       float64              `json:"eta"`
	Frozen    bool                 `json:"frozen"`
	Margin    float64              `json:"stability_margin"`
	Hopf      float64              `json:"hopf_distance"`
	GStar     float64              `json:"generativity_score"`
	Context   generativity.Context `json:"context"`
	UpdatedAt time.Time            `json:"updated_at"`
	PeerSync  PeerSyncStatus       `json:"peer_sync"`
}

// #endregion status-types

// #region accessors

// Status returns the latest published snapshot, or nil before the first
// governor cycle completes.
func (n *Node) Status() *Status {
	return n.status.Load()
}

// JobCap maps the current mode to the number of concurrent jobs the external
// scheduler may run. A missing status or a frozen node is treated as
// critical.
func (n *Node) JobCap() int {
	st := n.status.Load()
	if st == nil || st.Frozen || st.Mode == governor.ModeCritical {
		return n.cfg.Federation.CapCritical
	}
	if st.Mode == governor.ModeStabilizing {
		return n.cfg.Federation.CapReduced
	}
	return n.cfg.Federation.CapNormal
}

// Ready reports whether the governor loop is alive: a status has been
// published and it is no older than two governor intervals.
func (n *Node) Ready() bool {
	st := n.status.Load()
	if st == nil {
		return false
	}
	return time.Since(st.UpdatedAt) <= 2*n.cfg.Governor.Interval.Std()
}

// #endregion accessors
