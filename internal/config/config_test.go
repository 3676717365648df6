package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Governor.CriticalMargin != 0.01 {
		t.Fatalf("expected default critical margin 0.01, got %v", cfg.Governor.CriticalMargin)
	}
	if cfg.Federation.SyncInterval.Std() != 10*time.Second {
		t.Fatalf("expected default sync interval 10s, got %v", cfg.Federation.SyncInterval.Std())
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nova.yaml")
	yaml := `
node_name: edge-3
peers:
  - "10.0.0.2:7420"
  - "10.0.0.3:7420"
governor:
  critical_margin: 0.02
  stabilizing_margin: 0.04
  interval: 30s
generativity:
  hysteresis_delay: 3m
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NodeName != "edge-3" {
		t.Fatalf("expected node name edge-3, got %q", cfg.NodeName)
	}
	if len(cfg.Peers) != 2 {
		t.Fatalf("expected 2 peers, got %d", len(cfg.Peers))
	}
	if cfg.Governor.CriticalMargin != 0.02 {
		t.Fatalf("expected critical margin 0.02, got %v", cfg.Governor.CriticalMargin)
	}
	if cfg.Governor.Interval.Std() != 30*time.Second {
		t.Fatalf("expected interval 30s, got %v", cfg.Governor.Interval.Std())
	}
	if cfg.Generativity.HysteresisDelay.Std() != 3*time.Minute {
		t.Fatalf("expected hysteresis 3m, got %v", cfg.Generativity.HysteresisDelay.Std())
	}
	// Untouched values keep their defaults.
	if cfg.Governor.EtaMax != 0.10 {
		t.Fatalf("expected default eta_max, got %v", cfg.Governor.EtaMax)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NOVA_CRITICAL_MARGIN", "0.015")
	t.Setenv("NOVA_STABILIZING_MARGIN", "0.03")
	t.Setenv("NOVA_SYNC_INTERVAL", "20s")
	t.Setenv("NOVA_PEERS", "a:7420, b:7420 ,")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Governor.CriticalMargin != 0.015 {
		t.Fatalf("expected env critical margin 0.015, got %v", cfg.Governor.CriticalMargin)
	}
	if cfg.Federation.SyncInterval.Std() != 20*time.Second {
		t.Fatalf("expected env sync interval 20s, got %v", cfg.Federation.SyncInterval.Std())
	}
	if len(cfg.Peers) != 2 || cfg.Peers[1] != "b:7420" {
		t.Fatalf("peer list should be trimmed and filtered, got %v", cfg.Peers)
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("NOVA_CRITICAL_MARGIN", "not-a-number")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for malformed env value")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nova.yaml")
	if err := os.WriteFile(path, []byte("governor:\n  interval: fast\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	cfg := Default()
	cfg.Governor.StabilizingMargin = 0.005 // below critical
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for stabilizing <= critical")
	}

	cfg = Default()
	cfg.Governor.EtaCruise = 0.5 // above eta_max
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for eta_cruise outside bounds")
	}

	cfg = Default()
	cfg.Generativity.WeightNovelty = 0.9 // weights no longer sum to 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for weight sum")
	}

	cfg = Default()
	cfg.Stability.AROrder = 6
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for ar_order above 4")
	}

	cfg = Default()
	cfg.Federation.PeerTimeout = cfg.Federation.SyncInterval
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for peer_timeout >= sync_interval")
	}
}

func TestValidateRejectsMissingCriticalMargin(t *testing.T) {
	cfg := Default()
	cfg.Governor.CriticalMargin = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("a zero critical margin must be a startup error, not a runtime default")
	}
}
