package logging

import "time"

// #region provenance-entry
// ProvenanceEntry is a single row in the provenance_log table.
type ProvenanceEntry struct {
	VersionID   string
	TriggerType string // "governor_cycle" | "mode_transition" | "remediation"
	SignalsJSON string
	Decision    string
	Reason      string
	CreatedAt   time.Time
}

// #endregion provenance-entry

// #region cycle-signals
// CycleSignals captures the exact values that drove one governor decision.
// Serialized as JSON into provenance_log.signals_json so a freeze or
// throttle can be reconstructed after the fact.
type CycleSignals struct {
	Margin         float64 `json:"margin"`
	HopfDistance   float64 `json:"hopf_distance"`
	SpectralRadius float64 `json:"spectral_radius"`
	Degraded       bool    `json:"degraded,omitempty"`
	GStar          float64 `json:"g_star"`
	Progress       float64 `json:"progress"`
	Novelty        float64 `json:"novelty"`
	Consistency    float64 `json:"consistency"`
	Context        string  `json:"context"`
	PeerCount      int     `json:"peer_count"`
	Eta            float64 `json:"eta"`
	Frozen         bool    `json:"frozen"`
}

// #endregion cycle-signals
