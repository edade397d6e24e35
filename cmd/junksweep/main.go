package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"junksweep/internal/config"
	"junksweep/internal/exitcodes"
	"junksweep/internal/history"
	"junksweep/internal/limiter"
	"junksweep/internal/logging"
	"junksweep/internal/metrics"
	"junksweep/internal/purge"
	"junksweep/internal/safety"
	"junksweep/internal/scan"
	"junksweep/internal/volumes"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	rootsFlag := flag.String("roots", "", "Comma-separated scan roots (overrides config; empty = all mounted volumes)")
	deleteCat := flag.String("delete", "", "Delete found files in this category ('all' for every category)")
	yes := flag.Bool("yes", false, "Confirm deletion without prompting")
	dryRun := flag.Bool("dry-run", false, "Report what would be deleted without deleting")
	verbose := flag.Bool("verbose", false, "Print each directory as it is scanned")
	serveMetrics := flag.Bool("metrics", false, "Expose Prometheus metrics while running")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: failed to load config: %v\n", err)
			os.Exit(exitcodes.InvalidConfig)
		}
		cfg = loaded
	}

	logger := logging.NewWithDir(cfg.Logging.Dir, cfg.Logging.RotationDays)
	logger.Println("junksweep starting")
	if *dryRun {
		logger.Println("DRY RUN MODE: no files will be deleted")
	}

	metrics.Init()
	if *serveMetrics {
		metrics.StartServer(cfg.MetricsAddress(), logger)
	}

	var db *history.DB
	if cfg.History.DatabasePath != "" {
		var err error
		db, err = history.Open(cfg.History.DatabasePath)
		if err != nil {
			logger.Printf("ERROR: failed to open history database: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		defer db.Close()
	}

	roots, err := resolveRoots(*rootsFlag, cfg)
	if err != nil {
		logger.Printf("ERROR: %v", err)
		os.Exit(exitcodes.RuntimeError)
	}
	for _, root := range roots {
		if free, err := volumes.FreeBytes(root); err == nil {
			metrics.RootFreeBytes.WithLabelValues(root).Set(float64(free))
		}
	}

	checker := safety.NewChecker(cfg.ProtectedDirectories)
	scanner := scan.NewScanner(checker, cfg.RuleTable(), logger)
	scanner.SetMaxDepth(cfg.MaxDepth)
	if cfg.ResourceLimits.MaxCPUPercent > 0 {
		scanner.SetPacer(limiter.NewPacer(cfg.ResourceLimits.MaxCPUPercent))
	}

	start := time.Now()
	result, err := runScan(scanner, roots, *verbose)
	if err != nil {
		logger.Printf("ERROR: scan failed: %v", err)
		os.Exit(exitcodes.RuntimeError)
	}
	metrics.ScanDuration.Observe(time.Since(start).Seconds())

	metrics.FilesFoundTotal.Add(float64(len(result.Records)))
	metrics.BytesFoundTotal.Add(float64(result.TotalBytes))
	metrics.RecordSkips(result.Skipped.NotFound, result.Skipped.AccessDenied, result.Skipped.OtherIO)

	printSummary(result)

	if *deleteCat == "" {
		os.Exit(exitcodes.Success)
	}

	paths, categories := selectPaths(result, *deleteCat)
	if len(paths) == 0 {
		fmt.Printf("no files found in category %q\n", *deleteCat)
		os.Exit(exitcodes.Success)
	}
	if !*yes && !*dryRun {
		fmt.Fprintf(os.Stderr, "refusing to delete %d files without --yes (deletion is permanent)\n", len(paths))
		os.Exit(exitcodes.InvalidConfig)
	}

	executor := purge.NewExecutor(checker, logger, db, *dryRun)
	executor.SetCategories(categories)
	outcomes := executor.Delete(paths)

	failed := 0
	for _, ok := range outcomes {
		if !ok {
			failed++
		}
	}
	fmt.Printf("deleted %d of %d files\n", len(outcomes)-failed, len(outcomes))
	if failed > 0 {
		os.Exit(exitcodes.PartialDelete)
	}
	os.Exit(exitcodes.Success)
}

// runScan drives a background scan, relaying progress when verbose.
func runScan(scanner *scan.Scanner, roots []string, verbose bool) (*scan.Result, error) {
	for ev := range scanner.ScanAsync(roots) {
		switch {
		case ev.Err != nil:
			return nil, ev.Err
		case ev.Result != nil:
			return ev.Result, nil
		default:
			if verbose {
				fmt.Printf("scanning %s\n", ev.Dir)
			}
		}
	}
	return nil, fmt.Errorf("scan ended without a result")
}

func resolveRoots(flagValue string, cfg *config.Config) ([]string, error) {
	if flagValue != "" {
		var roots []string
		for _, r := range strings.Split(flagValue, ",") {
			if r = strings.TrimSpace(r); r != "" {
				roots = append(roots, r)
			}
		}
		return roots, nil
	}
	if len(cfg.Roots) > 0 {
		return cfg.Roots, nil
	}
	roots, err := volumes.Roots()
	if err != nil {
		return nil, fmt.Errorf("enumerate volumes: %w", err)
	}
	return roots, nil
}

func printSummary(result *scan.Result) {
	totals := result.CategoryBytes()
	grouped := result.ByCategory()

	categories := make([]string, 0, len(grouped))
	for cat := range grouped {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		fmt.Printf("%-15s %6d files  %12d bytes\n", cat, len(grouped[cat]), totals[cat])
	}
	fmt.Printf("%-15s %6d files  %12d bytes (skipped %d entries)\n",
		"total", len(result.Records), result.TotalBytes, result.Skipped.Total())
}

func selectPaths(result *scan.Result, category string) ([]string, map[string]string) {
	var paths []string
	categories := make(map[string]string)
	for _, rec := range result.Records {
		if category == "all" || rec.Category == category {
			paths = append(paths, rec.Path)
			categories[rec.Path] = rec.Category
		}
	}
	return paths, categories
}
