package generativity

import "time"

// #region context

// Context is the operating context: SOLO until peers are seen, FEDERATED
// while peers are present (with exit hysteresis).
type Context string

const (
	ContextSolo      Context = "solo"
	ContextFederated Context = "federated"
)

// #endregion context

// #region state

// State is one published generativity computation. Owned by the governor
// loop; readers get copies.
type State struct {
	Progress     float64   `json:"progress"`
	Novelty      float64   `json:"novelty"`
	Consistency  float64   `json:"consistency"`
	GStar        float64   `json:"g_star"`
	Context      Context   `json:"context"`
	ContextSince time.Time `json:"context_since"`
}

// #endregion state

// #region inputs

// PeerReport is a trusted peer's last reported score, as published by the
// synchronizer at the end of a sync cycle.
type PeerReport struct {
	PeerID string
	GStar  float64
	Trust  float64
}

// Input carries one cycle's raw inputs into Compute.
type Input struct {
	// ProgressTotal is a monotonic local work counter; the engine derives a
	// saturating rate from consecutive values.
	ProgressTotal float64

	// DecisionSignal is the scalar the consistency score tracks against its
	// historical baseline (the node feeds the stability margin).
	DecisionSignal float64

	// PeerCount is the synchronizer's count of trusted, recently seen peers.
	PeerCount int

	// Peers are the trusted peers' reports backing the novelty dispersion.
	Peers []PeerReport
}

// #endregion inputs
