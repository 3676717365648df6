package stability

import "time"

// #region snapshot

// Snapshot is one immutable stability estimate. A new snapshot supersedes the
// previous one; nothing mutates a snapshot after Analyze returns it.
type Snapshot struct {
	// Margin is the negative real part of the dominant eigenvalue of the
	// derived system matrix. Margin < 0 means the local dynamics are
	// actually unstable.
	Margin float64 `json:"margin"`

	// HopfDistance is the distance, in continuous-rate terms, of the nearest
	// oscillatory eigenvalue pair to the imaginary axis. Small values mean
	// the node is close to the onset of self-sustained oscillation.
	HopfDistance float64 `json:"hopf_distance"`

	// SpectralRadius is the largest eigenvalue magnitude of the discrete
	// system matrix (>= 0; > 1 is divergent).
	SpectralRadius float64 `json:"spectral_radius"`

	// Degraded marks snapshots substituted for a failed or degenerate
	// computation; their Margin is the conservative fallback, not an estimate.
	Degraded bool `json:"degraded,omitempty"`

	ComputedAt time.Time `json:"computed_at"`
}

// #endregion snapshot
