package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"junksweep/internal/exitcodes"
	"junksweep/internal/history"
)

func main() {
	dbPath := flag.String("db", "", "Path to history database")
	recent := flag.Int("recent", 0, "Show N most recent outcomes")
	stats := flag.Bool("stats", false, "Show outcome counts and bytes freed")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "ERROR: --db is required")
		flag.Usage()
		os.Exit(exitcodes.InvalidConfig)
	}

	db, err := history.Open(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: failed to open database %s: %v", *dbPath, err)
	}
	defer db.Close()

	switch {
	case *stats:
		showStats(db)
	case *recent > 0:
		showRecent(db, *recent)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  junksweep-history --db sweep.db --recent 20   # 20 most recent outcomes")
		fmt.Println("  junksweep-history --db sweep.db --stats       # totals per action")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *history.DB) {
	counts, err := db.ActionCounts()
	if err != nil {
		log.Fatalf("ERROR: failed to read statistics: %v", err)
	}
	freed, err := db.BytesFreed()
	if err != nil {
		log.Fatalf("ERROR: failed to read bytes freed: %v", err)
	}

	for _, action := range []string{history.ActionDelete, history.ActionDryRun, history.ActionSkip, history.ActionError} {
		fmt.Printf("%-8s %d\n", action, counts[action])
	}
	fmt.Printf("bytes freed: %d\n", freed)
}

func showRecent(db *history.DB, n int) {
	entries, err := db.Recent(n)
	if err != nil {
		log.Fatalf("ERROR: failed to read history: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tSIZE\tPATH\tREASON")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Size, e.Path, e.Reason)
	}
	w.Flush()
}
