package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"spotmerge.hitchmap.org/internal/appconf"
	"spotmerge.hitchmap.org/internal/clock"
	"spotmerge.hitchmap.org/internal/detection"
	"spotmerge.hitchmap.org/internal/identity"
	"spotmerge.hitchmap.org/internal/models"
	"spotmerge.hitchmap.org/internal/notify"
	"spotmerge.hitchmap.org/internal/workflow"
	"spotmerge.hitchmap.org/proposaldb"
)

const version = "0.1.0"

// Config holds the CLI configuration
type Config struct {
	// Path to the SQLite database holding spots and proposals
	DataPath string

	// Detection parameters
	RadiusMeters  float64
	MinConfidence int

	// When set, file a pending merge proposal for each detected pair
	Propose  bool
	Proposer string

	// Show version
	ShowVersion bool

	Verbose bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("spot-scan version %s\n", version)
		os.Exit(0)
	}

	if err := validateConfig(config); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	if err := run(config); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.DataPath, "data-path", "./spotmerge.db",
		"Path to the SQLite database holding spots and proposals")
	flag.Float64Var(&config.RadiusMeters, "radius", detection.DefaultRadiusMeters,
		"Search radius in meters for candidate spots")
	flag.IntVar(&config.MinConfidence, "min-confidence", detection.DefaultMinConfidence,
		"Minimum confidence (1-100) for a pair to be reported")
	flag.BoolVar(&config.Propose, "propose", false,
		"File a pending merge proposal for each detected pair")
	flag.StringVar(&config.Proposer, "proposer", "batch-scan",
		"Identity recorded as the proposer when -propose is set")
	flag.BoolVar(&config.Verbose, "verbose", false,
		"Log every detected pair, not just the summary")
	flag.BoolVar(&config.ShowVersion, "version", false,
		"Show version information")

	flag.Usage = printUsage

	flag.Parse()

	return config
}

func validateConfig(config *Config) error {
	if config.ShowVersion {
		return nil
	}

	if config.RadiusMeters <= 0 {
		return fmt.Errorf("radius must be positive, got %g", config.RadiusMeters)
	}

	if config.MinConfidence <= 0 || config.MinConfidence > 100 {
		return fmt.Errorf("min-confidence must be in (0, 100], got %d", config.MinConfidence)
	}

	if config.Propose && config.Proposer == "" {
		return fmt.Errorf("proposer is required when -propose is set")
	}

	if _, err := os.Stat(config.DataPath); os.IsNotExist(err) {
		return fmt.Errorf("database does not exist: %s", config.DataPath)
	}

	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `spot-scan - Sweep a spot database for likely duplicate pairs

Usage:
  spot-scan [options]

Options:
  --data-path=<path>
        Path to the SQLite database (default: ./spotmerge.db)

  --radius=<meters>
        Search radius in meters for candidate spots (default: %g)

  --min-confidence=<n>
        Minimum confidence (1-100) for a pair to be reported (default: %d)

  --propose
        File a pending merge proposal for each detected pair

  --proposer=<identity>
        Identity recorded as the proposer when --propose is set

  --verbose
        Log every detected pair, not just the summary

  --version
        Show version information

Examples:
  # Report likely duplicates without changing anything
  spot-scan --data-path=spots.db

  # Tighter sweep that files proposals for moderators to review
  spot-scan --data-path=spots.db --min-confidence=85 --propose --proposer=nightly-sweep

Notes:
  - The sweep is read-only unless --propose is set
  - With --propose, pairs that already have a pending proposal are skipped
  - Pairs whose spots are merged or removed mid-run are skipped, not fatal
  - Each spot appears in at most one pair per sweep
`, detection.DefaultRadiusMeters, detection.DefaultMinConfidence)
}

func run(config *Config) error {
	level := slog.LevelInfo
	if config.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	db, err := proposaldb.NewClient(proposaldb.NewConfig(config.DataPath, appconf.Production, config.Verbose))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	spotRepo := proposaldb.NewSpotRepository(db)

	pool, err := spotRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading spots: %w", err)
	}

	fmt.Printf("Scanning %d spots...\n", len(pool))
	fmt.Printf("  Radius: %gm\n", config.RadiusMeters)
	fmt.Printf("  Minimum confidence: %d\n", config.MinConfidence)

	scanner := detection.NewScanner(detection.NewDetector())

	started := time.Now()
	pairs, err := scanner.ScanAll(pool, config.RadiusMeters, config.MinConfidence)
	if err != nil {
		return fmt.Errorf("scanning spots: %w", err)
	}

	for _, pair := range pairs {
		logger.Debug("duplicate pair",
			"primary", pair.Primary.ID,
			"duplicate", pair.Duplicate.ID,
			"distanceMeters", pair.DistanceMeters,
			"nameSimilarity", pair.NameSimilarity,
			"confidence", pair.Confidence)
	}

	fmt.Printf("\nScan complete!\n")
	fmt.Printf("  Spots scanned: %d\n", len(pool))
	fmt.Printf("  Duplicate pairs: %d\n", len(pairs))
	fmt.Printf("  Elapsed: %s\n", time.Since(started).Round(time.Millisecond))

	if !config.Propose {
		return nil
	}

	wf := workflow.New(db, spotRepo, identity.NewStaticAuthorizer(nil), notify.NewLogNotifier(logger), clock.SystemClock{}, logger)
	proposer := identity.Identity(config.Proposer)

	filed, pending, stale, err := fileProposals(ctx, wf, pairs, proposer, started, logger)
	if err != nil {
		return err
	}

	fmt.Printf("\nProposals filed: %d\n", filed)
	if pending > 0 {
		fmt.Printf("Already pending: %d\n", pending)
	}
	if stale > 0 {
		fmt.Printf("No longer mergeable: %d\n", stale)
	}

	return nil
}

// fileProposals files one pending proposal per detected pair. Pairs whose
// spots were merged away or removed since the sweep started are logged and
// skipped; only unexpected errors abort the run.
func fileProposals(ctx context.Context, wf *workflow.Workflow, pairs []models.DuplicatePair, proposer identity.Identity, started time.Time, logger *slog.Logger) (int, int, int, error) {
	filed, pending, stale := 0, 0, 0

	for _, pair := range pairs {
		proposal, err := wf.Propose(ctx, pair.Primary.ID, pair.Duplicate.ID, proposer, "batch scan")
		if errors.Is(err, models.ErrSpotNotFound) || errors.Is(err, models.ErrSelfMergeRejected) {
			logger.Warn("skipping pair",
				"primary", pair.Primary.ID,
				"duplicate", pair.Duplicate.ID,
				"reason", err)
			stale++
			continue
		}
		if err != nil {
			return filed, pending, stale, fmt.Errorf("proposing merge of %s and %s: %w", pair.Primary.ID, pair.Duplicate.ID, err)
		}
		if proposal.Proposer == proposer && proposal.CreatedAt.After(started) {
			filed++
		} else {
			pending++
		}
	}
	return filed, pending, stale, nil
}
