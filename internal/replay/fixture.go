package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/nova/internal/config"
	"github.com/danielpatrickdp/nova/internal/stability"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	StartAt         time.Time               `json:"start_at"`
	Config          FixtureConfig           `json:"config"`
	Interactions    []FixtureInteraction    `json:"interactions"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixturePeer mirrors replay.PeerObservation with JSON tags.
type FixturePeer struct {
	PeerID string  `json:"peer_id"`
	GStar  float64 `json:"g_star"`
	Trust  float64 `json:"trust"`
}

// FixtureInteraction mirrors replay.Interaction with JSON tags. A cycle
// carries either raw residuals or a recorded analyzer snapshot; when both are
// present the snapshot wins.
type FixtureInteraction struct {
	CycleID       string           `json:"cycle_id"`
	At            time.Time        `json:"at"`
	Residuals     []float64        `json:"residuals,omitempty"`
	Snapshot      *FixtureSnapshot `json:"snapshot,omitempty"`
	ProgressTotal float64          `json:"progress_total"`
	PeerCount     int              `json:"peer_count"`
	Peers         []FixturePeer    `json:"peers,omitempty"`
}

// FixtureSnapshot mirrors stability.Snapshot with JSON tags.
type FixtureSnapshot struct {
	Margin         float64 `json:"margin"`
	HopfDistance   float64 `json:"hopf_distance"`
	SpectralRadius float64 `json:"spectral_radius"`
	Degraded       bool    `json:"degraded,omitempty"`
}

// ToSnapshot converts a FixtureSnapshot to a domain Snapshot.
func (fs *FixtureSnapshot) ToSnapshot(at time.Time) stability.Snapshot {
	return stability.Snapshot{
		Margin:         fs.Margin,
		HopfDistance:   fs.HopfDistance,
		SpectralRadius: fs.SpectralRadius,
		Degraded:       fs.Degraded,
		ComputedAt:     at,
	}
}

// FixtureExpectedResult captures the expected mode per cycle.
type FixtureExpectedResult struct {
	CycleID string `json:"cycle_id"`
	Mode    string `json:"mode"`
	Frozen  bool   `json:"frozen"`
}

// FixtureConfig bundles the sub-configs for a replay run. Durations are
// expressed in seconds so fixtures stay plain JSON numbers.
type FixtureConfig struct {
	Stability    FixtureStabilityConfig    `json:"stability"`
	Governor     FixtureGovernorConfig     `json:"governor"`
	Generativity FixtureGenerativityConfig `json:"generativity"`
}

// FixtureStabilityConfig mirrors config.StabilityConfig with JSON tags.
type FixtureStabilityConfig struct {
	MinSamples     int     `json:"min_samples"`
	ResidualWindow int     `json:"residual_window"`
	AROrder        int     `json:"ar_order"`
	SampleInterval float64 `json:"sample_interval"`
	NeutralMargin  float64 `json:"neutral_margin"`
	NeutralHopf    float64 `json:"neutral_hopf"`
}

// FixtureGovernorConfig mirrors config.GovernorConfig with JSON tags.
type FixtureGovernorConfig struct {
	CriticalMargin    float64 `json:"critical_margin"`
	StabilizingMargin float64 `json:"stabilizing_margin"`
	ExploringMargin   float64 `json:"exploring_margin"`
	HopfThreshold     float64 `json:"hopf_threshold"`
	ExploringGMin     float64 `json:"exploring_g_threshold"`
	OptimalGMin       float64 `json:"optimal_g_threshold"`
	EtaMin            float64 `json:"eta_min"`
	EtaMax            float64 `json:"eta_max"`
	EtaCruise         float64 `json:"eta_cruise"`
	EtaMaxStep        float64 `json:"eta_max_step"`
}

// FixtureGenerativityConfig mirrors config.GenerativityConfig with JSON tags.
type FixtureGenerativityConfig struct {
	WeightProgress      float64 `json:"weight_progress"`
	WeightNovelty       float64 `json:"weight_novelty"`
	WeightConsistency   float64 `json:"weight_consistency"`
	CapSolo             float64 `json:"g_cap_solo"`
	CapFederated        float64 `json:"g_cap_federated"`
	MinPeers            int     `json:"min_peers"`
	HysteresisDelaySecs float64 `json:"hysteresis_delay_secs"`
	ProgressScale       float64 `json:"progress_scale"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToInteraction converts a FixtureInteraction to a domain Interaction.
func (fi *FixtureInteraction) ToInteraction() Interaction {
	peers := make([]PeerObservation, 0, len(fi.Peers))
	for _, p := range fi.Peers {
		peers = append(peers, PeerObservation{PeerID: p.PeerID, GStar: p.GStar, Trust: p.Trust})
	}
	return Interaction{
		CycleID:       fi.CycleID,
		At:            fi.At,
		Residuals:     fi.Residuals,
		ProgressTotal: fi.ProgressTotal,
		PeerCount:     fi.PeerCount,
		Peers:         peers,
	}
}

// ToReplayConfig converts a FixtureConfig to a domain ReplayConfig. Zero
// fields fall back to production defaults so fixtures only need to name what
// they override.
func (fc *FixtureConfig) ToReplayConfig() ReplayConfig {
	cfg := DefaultReplayConfig()

	s := fc.Stability
	if s.MinSamples > 0 {
		cfg.Stability.MinSamples = s.MinSamples
	}
	if s.ResidualWindow > 0 {
		cfg.Stability.ResidualWindow = s.ResidualWindow
	}
	if s.AROrder > 0 {
		cfg.Stability.AROrder = s.AROrder
	}
	if s.SampleInterval > 0 {
		cfg.Stability.SampleInterval = s.SampleInterval
	}
	if s.NeutralMargin != 0 {
		cfg.Stability.NeutralMargin = s.NeutralMargin
	}
	if s.NeutralHopf != 0 {
		cfg.Stability.NeutralHopf = s.NeutralHopf
	}

	g := fc.Governor
	if g.CriticalMargin != 0 {
		cfg.Governor.CriticalMargin = g.CriticalMargin
	}
	if g.StabilizingMargin != 0 {
		cfg.Governor.StabilizingMargin = g.StabilizingMargin
	}
	if g.ExploringMargin != 0 {
		cfg.Governor.ExploringMargin = g.ExploringMargin
	}
	if g.HopfThreshold != 0 {
		cfg.Governor.HopfThreshold = g.HopfThreshold
	}
	if g.ExploringGMin != 0 {
		cfg.Governor.ExploringGMin = g.ExploringGMin
	}
	if g.OptimalGMin != 0 {
		cfg.Governor.OptimalGMin = g.OptimalGMin
	}
	if g.EtaMin != 0 {
		cfg.Governor.EtaMin = g.EtaMin
	}
	if g.EtaMax != 0 {
		cfg.Governor.EtaMax = g.EtaMax
	}
	if g.EtaCruise != 0 {
		cfg.Governor.EtaCruise = g.EtaCruise
	}
	if g.EtaMaxStep != 0 {
		cfg.Governor.EtaMaxStep = g.EtaMaxStep
	}

	gen := fc.Generativity
	if gen.WeightProgress != 0 {
		cfg.Generativity.WeightProgress = gen.WeightProgress
	}
	if gen.WeightNovelty != 0 {
		cfg.Generativity.WeightNovelty = gen.WeightNovelty
	}
	if gen.WeightConsistency != 0 {
		cfg.Generativity.WeightConsistency = gen.WeightConsistency
	}
	if gen.CapSolo != 0 {
		cfg.Generativity.CapSolo = gen.CapSolo
	}
	if gen.CapFederated != 0 {
		cfg.Generativity.CapFederated = gen.CapFederated
	}
	if gen.MinPeers > 0 {
		cfg.Generativity.MinPeers = gen.MinPeers
	}
	if gen.HysteresisDelaySecs > 0 {
		cfg.Generativity.HysteresisDelay = config.Duration(time.Duration(gen.HysteresisDelaySecs * float64(time.Second)))
	}
	if gen.ProgressScale != 0 {
		cfg.Generativity.ProgressScale = gen.ProgressScale
	}

	return cfg
}

// #endregion fixture-loader
