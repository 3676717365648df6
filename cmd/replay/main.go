package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/nova/internal/replay"
	"github.com/danielpatrickdp/nova/internal/store"

	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to nova.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	last := flag.Int("last", 50, "number of most recent cycles to replay (DB mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/nova.db [--last N]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *last)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	cfg := f.Config.ToReplayConfig()
	startAt := f.StartAt
	if startAt.IsZero() && len(f.Interactions) > 0 {
		startAt = f.Interactions[0].At
	}

	h := replay.NewHarness(cfg, startAt)
	results := make([]replay.ReplayResult, 0, len(f.Interactions))
	for i := range f.Interactions {
		fi := &f.Interactions[i]
		inter := fi.ToInteraction()
		if fi.Snapshot != nil {
			results = append(results, h.StepWithSnapshot(inter, fi.Snapshot.ToSnapshot(fi.At)))
		} else {
			results = append(results, h.Step(inter))
		}
	}

	expected := make([]expectation, len(f.ExpectedResults))
	for i, e := range f.ExpectedResults {
		expected[i] = expectation{CycleID: e.CycleID, Mode: e.Mode, Frozen: e.Frozen}
	}
	return printComparison(results, expected)
}

// #endregion fixture-mode

// #region db-mode

// runDBMode re-runs persisted cycle snapshots through the decision pipeline
// and compares the recorded mode against the replayed one. A divergence means
// either the config changed since recording or the pipeline did.
func runDBMode(dbPath string, last int) int {
	st, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	cycles, err := st.RecentCycles(last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query cycles: %v\n", err)
		return 2
	}
	if len(cycles) == 0 {
		fmt.Fprintln(os.Stderr, "no cycles found")
		return 2
	}

	// Store returns DESC, reverse for chronological
	for i, j := 0, len(cycles)-1; i < j; i, j = i+1, j-1 {
		cycles[i], cycles[j] = cycles[j], cycles[i]
	}

	cfg := replay.DefaultReplayConfig()
	startAt := cycles[0].CreatedAt
	h := replay.NewHarness(cfg, startAt)

	results := make([]replay.ReplayResult, 0, len(cycles))
	expected := make([]expectation, 0, len(cycles))
	progress := 0.0
	for _, c := range cycles {
		// The raw progress counter is not persisted; accumulate the recorded
		// progress scores as a stand-in. The comparison is over modes, which
		// the margin and Hopf distance dominate.
		progress += c.Gen.Progress

		inter := replay.Interaction{
			CycleID:       c.VersionID,
			At:            c.CreatedAt,
			ProgressTotal: progress,
			PeerCount:     c.PeerCount,
		}
		results = append(results, h.StepWithSnapshot(inter, c.Snapshot))
		expected = append(expected, expectation{
			CycleID: c.VersionID,
			Mode:    string(c.Governor.Mode),
			Frozen:  c.Governor.Frozen,
		})
	}
	return printComparison(results, expected)
}

// #endregion db-mode

// #region output

type expectation struct {
	CycleID string
	Mode    string
	Frozen  bool
}

// printComparison outputs a comparison table and returns the exit code.
func printComparison(results []replay.ReplayResult, expected []expectation) int {
	fmt.Printf("%-12s| %-13s| %-13s| %s\n", "Cycle", "Recorded", "Replayed", "Match")
	fmt.Printf("%-12s+%-14s+%-14s+%s\n",
		"------------", "--------------", "--------------", "------")

	matches := 0
	total := len(results)
	if len(expected) < total {
		total = len(expected)
	}

	for i := 0; i < total; i++ {
		exp := expected[i]
		got := results[i]

		match := "DIFF"
		if exp.Mode == string(got.Mode) && exp.Frozen == got.Frozen {
			match = "OK"
			matches++
		}
		fmt.Printf("%-12s| %-13s| %-13s| %s\n", shortID(got.CycleID), exp.Mode, got.Mode, match)
	}

	diverge := total - matches
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", total, matches, diverge)

	if diverge > 0 {
		return 1
	}
	return 0
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
