package logging_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/nova/internal/logging"
	"github.com/danielpatrickdp/nova/internal/store"
)

func TestLogDecisionRoundTrip(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "nova.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := logging.ProvenanceEntry{
		VersionID:   "v-1",
		TriggerType: "mode_transition",
		SignalsJSON: `{"margin":0.005}`,
		Decision:    "critical",
		Reason:      "margin 0.0050 below critical 0.0100",
		CreatedAt:   at,
	}
	if err := logging.LogDecision(s.DB(), entry); err != nil {
		t.Fatalf("log: %v", err)
	}

	var trigger, decision, reason, signals, created string
	row := s.DB().QueryRow(
		`SELECT trigger_type, decision, reason, signals_json, created_at
		 FROM provenance_log WHERE version_id = ?`, "v-1")
	if err := row.Scan(&trigger, &decision, &reason, &signals, &created); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if trigger != entry.TriggerType || decision != entry.Decision || reason != entry.Reason {
		t.Fatalf("row mismatch: %s / %s / %s", trigger, decision, reason)
	}
	if signals != entry.SignalsJSON {
		t.Fatalf("signals: %q != %q", signals, entry.SignalsJSON)
	}
	got, err := time.Parse(time.RFC3339Nano, created)
	if err != nil || !got.Equal(at) {
		t.Fatalf("created at: %v (%v)", created, err)
	}
}

func TestLogDecisionDefaultsTimestamp(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "nova.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	if err := logging.LogDecision(s.DB(), logging.ProvenanceEntry{
		VersionID:   "v-2",
		TriggerType: "governor_cycle",
		Decision:    "exploring",
	}); err != nil {
		t.Fatalf("log: %v", err)
	}

	var created string
	row := s.DB().QueryRow(`SELECT created_at FROM provenance_log WHERE version_id = ?`, "v-2")
	if err := row.Scan(&created); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, err := time.Parse(time.RFC3339Nano, created); err != nil {
		t.Fatalf("zero CreatedAt should default to now: %q (%v)", created, err)
	}
}
