package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/nova/internal/store"

	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to nova.db")
	last := flag.Int("last", 20, "show N most recent cycles")
	version := flag.String("version", "", "show single cycle detail")
	peers := flag.Bool("peers", false, "show peer trust table")
	transitions := flag.Bool("transitions", false, "show recent mode transitions")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/nova.db [--last N] [--version id] [--peers] [--transitions] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case *version != "":
		err = runDetailMode(st, *version, *jsonOut)
	case *peers:
		err = runPeerMode(st, *jsonOut)
	case *transitions:
		err = runTransitionMode(st, *last, *jsonOut)
	default:
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

func runListMode(st *store.Store, last int, jsonOut bool) error {
	cycles, err := st.RecentCycles(last)
	if err != nil {
		return err
	}
	if len(cycles) == 0 {
		fmt.Fprintln(os.Stderr, "no cycles found")
		return nil
	}

	// Store returns DESC, reverse for chronological
	for i, j := 0, len(cycles)-1; i < j; i, j = i+1, j-1 {
		cycles[i], cycles[j] = cycles[j], cycles[i]
	}

	if jsonOut {
		return printJSON(cycles)
	}

	fmt.Printf("%-10s  %-12s  %9s  %8s  %7s  %6s  %5s  %s\n",
		"Version", "Mode", "Margin", "Hopf", "Eta", "G*", "Peers", "Time")
	fmt.Printf("%-10s  %-12s  %9s  %8s  %7s  %6s  %5s  %s\n",
		"----------", "------------", "---------", "--------", "-------", "------", "-----", "--------------------")
	for _, c := range cycles {
		frozen := " "
		if c.Governor.Frozen {
			frozen = "*"
		}
		fmt.Printf("%-10s  %-12s  %9.4f  %8.4f  %7.4f  %6.3f  %5d  %s%s\n",
			shortID(c.VersionID), c.Governor.Mode,
			c.Snapshot.Margin, c.Snapshot.HopfDistance,
			c.Governor.Eta, c.Gen.GStar, c.PeerCount,
			c.CreatedAt.Format("2006-01-02T15:04:05Z"), frozen)
	}
	fmt.Println("\n(* = frozen)")
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(st *store.Store, versionID string, jsonOut bool) error {
	c, err := st.GetCycle(versionID)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(c)
	}

	fmt.Printf("Version:     %s\n", c.VersionID)
	fmt.Printf("Created:     %s\n", c.CreatedAt.Format("2006-01-02T15:04:05Z"))
	fmt.Printf("Mode:        %s\n", c.Governor.Mode)
	fmt.Printf("Eta:         %.4f\n", c.Governor.Eta)
	fmt.Printf("Frozen:      %v\n", c.Governor.Frozen)
	fmt.Printf("Margin:      %.4f\n", c.Snapshot.Margin)
	fmt.Printf("Hopf:        %.4f\n", c.Snapshot.HopfDistance)
	fmt.Printf("Spectral:    %.4f\n", c.Snapshot.SpectralRadius)
	fmt.Printf("Degraded:    %v\n", c.Snapshot.Degraded)
	fmt.Printf("G*:          %.3f\n", c.Gen.GStar)
	fmt.Printf("  Progress:    %.3f\n", c.Gen.Progress)
	fmt.Printf("  Novelty:     %.3f\n", c.Gen.Novelty)
	fmt.Printf("  Consistency: %.3f\n", c.Gen.Consistency)
	fmt.Printf("Context:     %s\n", c.Gen.Context)
	fmt.Printf("Peers:       %d\n", c.PeerCount)
	return nil
}

// #endregion detail-mode

// #region peer-mode

func runPeerMode(st *store.Store, jsonOut bool) error {
	peers, err := st.Peers()
	if err != nil {
		return err
	}
	if len(peers) == 0 {
		fmt.Fprintln(os.Stderr, "no peers found")
		return nil
	}

	if jsonOut {
		return printJSON(peers)
	}

	fmt.Printf("%-28s  %-10s  %6s  %6s  %5s  %-8s  %s\n",
		"Endpoint", "Peer", "Trust", "G*", "Fails", "Evicted", "Last Seen")
	for _, p := range peers {
		fmt.Printf("%-28s  %-10s  %6.3f  %6.3f  %5d  %-8v  %s\n",
			p.Endpoint, shortID(p.PeerID), p.TrustScore, p.ReportedGStar,
			p.ConsecutiveFailures, p.Evicted,
			p.LastSeen.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion peer-mode

// #region transition-mode

func runTransitionMode(st *store.Store, last int, jsonOut bool) error {
	trans, err := st.RecentTransitions(last)
	if err != nil {
		return err
	}
	if len(trans) == 0 {
		fmt.Fprintln(os.Stderr, "no transitions found")
		return nil
	}

	if jsonOut {
		return printJSON(trans)
	}

	fmt.Printf("%-10s  %-12s  %-12s  %9s  %8s  %-20s  %s\n",
		"Version", "From", "To", "Margin", "Hopf", "Time", "Reason")
	for _, t := range trans {
		fmt.Printf("%-10s  %-12s  %-12s  %9.4f  %8.4f  %-20s  %s\n",
			shortID(t.VersionID), t.FromMode, t.ToMode,
			t.Margin, t.HopfDistance,
			t.CreatedAt.Format("2006-01-02T15:04:05Z"), t.Reason)
	}
	return nil
}

// #endregion transition-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
