package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/nova/internal/replay"
	"github.com/danielpatrickdp/nova/internal/store"

	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to nova.db")
	last := flag.Int("last", 20, "number of most recent cycles to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	desc := flag.String("desc", "", "fixture description")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/nova.db --out path/to/fixture.json [--last N] [--desc text]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *outPath, *desc); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath string, last int, outPath, desc string) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	cycles, err := st.RecentCycles(last)
	if err != nil {
		return fmt.Errorf("query cycles: %w", err)
	}
	if len(cycles) == 0 {
		return fmt.Errorf("no cycles found in %s", dbPath)
	}

	// Store returns DESC, reverse for chronological
	for i, j := 0, len(cycles)-1; i < j; i, j = i+1, j-1 {
		cycles[i], cycles[j] = cycles[j], cycles[i]
	}

	if desc == "" {
		desc = fmt.Sprintf("exported from %s (%d cycles)", dbPath, len(cycles))
	}

	f := replay.Fixture{
		Description: desc,
		StartAt:     cycles[0].CreatedAt,
	}
	progress := 0.0
	for _, c := range cycles {
		progress += c.Gen.Progress
		f.Interactions = append(f.Interactions, replay.FixtureInteraction{
			CycleID: c.VersionID,
			At:      c.CreatedAt,
			Snapshot: &replay.FixtureSnapshot{
				Margin:         c.Snapshot.Margin,
				HopfDistance:   c.Snapshot.HopfDistance,
				SpectralRadius: c.Snapshot.SpectralRadius,
				Degraded:       c.Snapshot.Degraded,
			},
			ProgressTotal: progress,
			PeerCount:     c.PeerCount,
		})
		f.ExpectedResults = append(f.ExpectedResults, replay.FixtureExpectedResult{
			CycleID: c.VersionID,
			Mode:    string(c.Governor.Mode),
			Frozen:  c.Governor.Frozen,
		})
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}

	fmt.Printf("exported %d cycles to %s\n", len(f.Interactions), outPath)
	return nil
}

// #endregion export
