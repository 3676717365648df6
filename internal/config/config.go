package config

// #region imports
import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// #endregion imports

// #region duration

// Duration wraps time.Duration so YAML files can use Go duration strings
// ("10s", "5m"); yaml.v3 has no native duration decoding.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	td, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("duration %q: %w", value.Value, err)
	}
	*d = Duration(td)
	return nil
}

// MarshalYAML renders the duration as a Go duration string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// #endregion duration

// #region config-struct

// Config holds every tunable for the node. Loaded once at startup and
// treated as immutable for the process lifetime; safety thresholds with no
// valid value are a fatal startup error, never a runtime default.
type Config struct {
	// Identity / transport
	NodeName   string `yaml:"node_name"`
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`
	IDPath     string `yaml:"id_path"`

	// Static peer endpoints (host:port).
	Peers []string `yaml:"peers"`

	Stability    StabilityConfig    `yaml:"stability"`
	Governor     GovernorConfig     `yaml:"governor"`
	Generativity GenerativityConfig `yaml:"generativity"`
	Federation   FederationConfig   `yaml:"federation"`
}

// StabilityConfig tunes the residual analyzer.
type StabilityConfig struct {
	MinSamples     int     `yaml:"min_samples"`
	ResidualWindow int     `yaml:"residual_window"`
	AROrder        int     `yaml:"ar_order"` // companion matrix size, max 4
	SampleInterval float64 `yaml:"sample_interval"`
	NeutralMargin  float64 `yaml:"neutral_margin"`
	NeutralHopf    float64 `yaml:"neutral_hopf"`
}

// GovernorConfig tunes the mode state machine and learning rate.
type GovernorConfig struct {
	Interval          Duration `yaml:"interval"`
	CriticalMargin    float64  `yaml:"critical_margin"`
	StabilizingMargin float64  `yaml:"stabilizing_margin"`
	ExploringMargin   float64  `yaml:"exploring_margin"`
	HopfThreshold     float64  `yaml:"hopf_threshold"`
	ExploringGMin     float64  `yaml:"exploring_g_threshold"`
	OptimalGMin       float64  `yaml:"optimal_g_threshold"`
	EtaMin            float64  `yaml:"eta_min"`
	EtaMax            float64  `yaml:"eta_max"`
	EtaCruise         float64  `yaml:"eta_cruise"`
	EtaMaxStep        float64  `yaml:"eta_max_step"`
}

// GenerativityConfig tunes the composite score and context hysteresis.
type GenerativityConfig struct {
	WeightProgress    float64  `yaml:"weight_progress"`
	WeightNovelty     float64  `yaml:"weight_novelty"`
	WeightConsistency float64  `yaml:"weight_consistency"`
	CapSolo           float64  `yaml:"g_cap_solo"`
	CapFederated      float64  `yaml:"g_cap_federated"`
	MinPeers          int      `yaml:"min_peers"`
	HysteresisDelay   Duration `yaml:"hysteresis_delay"`
	ProgressScale     float64  `yaml:"progress_scale"`
}

// FederationConfig tunes peer sync and remediation.
type FederationConfig struct {
	SyncInterval      Duration `yaml:"sync_interval"`
	PeerTimeout       Duration `yaml:"peer_timeout"`
	PeerFailLimit     int      `yaml:"peer_fail_limit"`
	TrustThreshold    float64  `yaml:"trust_threshold"`
	StaleAfter        Duration `yaml:"stale_after"`
	FailRatio         float64  `yaml:"fail_ratio"`
	BackoffBase       Duration `yaml:"backoff_base"`
	BackoffMultiplier float64  `yaml:"backoff_multiplier"`
	BackoffMax        Duration `yaml:"backoff_max"`
	Cooldown          Duration `yaml:"cooldown"`
	ReadyFailLimit    int      `yaml:"ready_fail_limit"`

	// Backpressure caps read by the external job scheduler.
	CapCritical int `yaml:"cap_critical"`
	CapReduced  int `yaml:"cap_reduced"`
	CapNormal   int `yaml:"cap_normal"`
}

// #endregion config-struct

// #region defaults

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		NodeName:   "nova",
		ListenAddr: "localhost:7420",
		DBPath:     "nova.db",
		IDPath:     ".nova_id",
		Stability: StabilityConfig{
			MinSamples:     8,
			ResidualWindow: 64,
			AROrder:        2,
			SampleInterval: 1.0,
			NeutralMargin:  0.5,
			NeutralHopf:    1.0,
		},
		Governor: GovernorConfig{
			Interval:          Duration(15 * time.Second),
			CriticalMargin:    0.01,
			StabilizingMargin: 0.02,
			ExploringMargin:   0.10,
			HopfThreshold:     0.02,
			ExploringGMin:     0.60,
			OptimalGMin:       0.70,
			EtaMin:            0.001,
			EtaMax:            0.10,
			EtaCruise:         0.05,
			EtaMaxStep:        0.02,
		},
		Generativity: GenerativityConfig{
			WeightProgress:    0.30,
			WeightNovelty:     0.30,
			WeightConsistency: 0.40,
			CapSolo:           0.60,
			CapFederated:      1.00,
			MinPeers:          1,
			HysteresisDelay:   Duration(120 * time.Second),
			ProgressScale:     1.0,
		},
		Federation: FederationConfig{
			SyncInterval:      Duration(10 * time.Second),
			PeerTimeout:       Duration(3 * time.Second),
			PeerFailLimit:     5,
			TrustThreshold:    0.20,
			StaleAfter:        Duration(60 * time.Second),
			FailRatio:         0.5,
			BackoffBase:       Duration(10 * time.Second),
			BackoffMultiplier: 2.0,
			BackoffMax:        Duration(80 * time.Second),
			Cooldown:          Duration(300 * time.Second),
			ReadyFailLimit:    3,
			CapCritical:       2,
			CapReduced:        6,
			CapNormal:         16,
		},
	}
}

// #endregion defaults

// #region load

// Load builds the effective config: defaults, then the optional YAML file at
// path (empty path skips the file), then NOVA_* env overrides, then Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// #endregion load

// #region env

// applyEnv overrides individual values from NOVA_* environment variables.
func (c *Config) applyEnv() error {
	var err error
	setStr(&c.NodeName, "NOVA_NODE_NAME")
	setStr(&c.ListenAddr, "NOVA_LISTEN_ADDR")
	setStr(&c.DBPath, "NOVA_DB")
	setStr(&c.IDPath, "NOVA_ID_FILE")
	if v := os.Getenv("NOVA_PEERS"); v != "" {
		c.Peers = splitPeers(v)
	}

	setF := func(dst *float64, key string) {
		if err != nil {
			return
		}
		if v := os.Getenv(key); v != "" {
			f, perr := strconv.ParseFloat(v, 64)
			if perr != nil {
				err = fmt.Errorf("env %s: %w", key, perr)
				return
			}
			*dst = f
		}
	}
	setD := func(dst *Duration, key string) {
		if err != nil {
			return
		}
		if v := os.Getenv(key); v != "" {
			d, perr := time.ParseDuration(v)
			if perr != nil {
				err = fmt.Errorf("env %s: %w", key, perr)
				return
			}
			*dst = Duration(d)
		}
	}

	setF(&c.Governor.CriticalMargin, "NOVA_CRITICAL_MARGIN")
	setF(&c.Governor.StabilizingMargin, "NOVA_STABILIZING_MARGIN")
	setF(&c.Governor.ExploringMargin, "NOVA_EXPLORING_MARGIN")
	setF(&c.Governor.HopfThreshold, "NOVA_HOPF_THRESHOLD")
	setF(&c.Governor.EtaMin, "NOVA_ETA_MIN")
	setF(&c.Governor.EtaMax, "NOVA_ETA_MAX")
	setD(&c.Governor.Interval, "NOVA_GOVERNOR_INTERVAL")
	setD(&c.Generativity.HysteresisDelay, "NOVA_HYSTERESIS_DELAY")
	setD(&c.Federation.SyncInterval, "NOVA_SYNC_INTERVAL")
	setD(&c.Federation.PeerTimeout, "NOVA_PEER_TIMEOUT")
	setD(&c.Federation.BackoffBase, "NOVA_BACKOFF_BASE")
	setF(&c.Federation.BackoffMultiplier, "NOVA_BACKOFF_MULTIPLIER")
	setD(&c.Federation.BackoffMax, "NOVA_BACKOFF_MAX")
	setD(&c.Federation.Cooldown, "NOVA_COOLDOWN")
	return err
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitPeers(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// #endregion env

// #region validate

// Validate rejects configs that would run with undefined safety behavior.
func (c *Config) Validate() error {
	g := c.Governor
	switch {
	case g.CriticalMargin <= 0:
		return fmt.Errorf("config: critical_margin must be > 0, got %v", g.CriticalMargin)
	case g.StabilizingMargin <= g.CriticalMargin:
		return fmt.Errorf("config: stabilizing_margin (%v) must exceed critical_margin (%v)", g.StabilizingMargin, g.CriticalMargin)
	case g.ExploringMargin <= g.StabilizingMargin:
		return fmt.Errorf("config: exploring_margin (%v) must exceed stabilizing_margin (%v)", g.ExploringMargin, g.StabilizingMargin)
	case g.HopfThreshold <= 0:
		return fmt.Errorf("config: hopf_threshold must be > 0, got %v", g.HopfThreshold)
	case g.EtaMin <= 0 || g.EtaMax <= g.EtaMin:
		return fmt.Errorf("config: require 0 < eta_min < eta_max, got [%v, %v]", g.EtaMin, g.EtaMax)
	case g.EtaCruise < g.EtaMin || g.EtaCruise > g.EtaMax:
		return fmt.Errorf("config: eta_cruise %v outside [eta_min, eta_max]", g.EtaCruise)
	case g.EtaMaxStep <= 0:
		return fmt.Errorf("config: eta_max_step must be > 0, got %v", g.EtaMaxStep)
	case g.Interval <= 0:
		return fmt.Errorf("config: governor interval must be > 0, got %v", g.Interval.Std())
	}

	gen := c.Generativity
	wSum := gen.WeightProgress + gen.WeightNovelty + gen.WeightConsistency
	if wSum < 0.999 || wSum > 1.001 {
		return fmt.Errorf("config: generativity weights must sum to 1, got %v", wSum)
	}
	if gen.CapSolo <= 0 || gen.CapFederated <= gen.CapSolo {
		return fmt.Errorf("config: require 0 < g_cap_solo < g_cap_federated, got [%v, %v]", gen.CapSolo, gen.CapFederated)
	}
	if gen.MinPeers < 1 {
		return fmt.Errorf("config: min_peers must be >= 1, got %d", gen.MinPeers)
	}
	if gen.HysteresisDelay <= 0 {
		return fmt.Errorf("config: hysteresis_delay must be > 0, got %v", gen.HysteresisDelay.Std())
	}

	f := c.Federation
	switch {
	case f.SyncInterval <= 0:
		return fmt.Errorf("config: sync_interval must be > 0, got %v", f.SyncInterval.Std())
	case f.PeerTimeout <= 0 || f.PeerTimeout >= f.SyncInterval:
		return fmt.Errorf("config: require 0 < peer_timeout < sync_interval, got %v / %v", f.PeerTimeout.Std(), f.SyncInterval.Std())
	case f.BackoffBase <= 0 || f.BackoffMultiplier < 1 || f.BackoffMax < f.BackoffBase:
		return fmt.Errorf("config: invalid backoff base=%v multiplier=%v max=%v", f.BackoffBase.Std(), f.BackoffMultiplier, f.BackoffMax.Std())
	case f.Cooldown <= 0:
		return fmt.Errorf("config: cooldown must be > 0, got %v", f.Cooldown.Std())
	case f.FailRatio <= 0 || f.FailRatio > 1:
		return fmt.Errorf("config: fail_ratio must be in (0, 1], got %v", f.FailRatio)
	case f.PeerFailLimit < 1 || f.ReadyFailLimit < 1:
		return fmt.Errorf("config: fail limits must be >= 1, got peer=%d ready=%d", f.PeerFailLimit, f.ReadyFailLimit)
	}

	s := c.Stability
	if s.AROrder < 1 || s.AROrder > 4 {
		return fmt.Errorf("config: ar_order must be in [1, 4], got %d", s.AROrder)
	}
	if s.MinSamples <= s.AROrder {
		return fmt.Errorf("config: min_samples (%d) must exceed ar_order (%d)", s.MinSamples, s.AROrder)
	}
	if s.ResidualWindow < s.MinSamples {
		return fmt.Errorf("config: residual_window (%d) must be >= min_samples (%d)", s.ResidualWindow, s.MinSamples)
	}
	if s.SampleInterval <= 0 {
		return fmt.Errorf("config: sample_interval must be > 0, got %v", s.SampleInterval)
	}
	return nil
}

// #endregion validate
