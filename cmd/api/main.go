package main

import (
	"flag"
	"log/slog"
	"os"

	"spotmerge.hitchmap.org/internal/appconf"
)

func main() {
	var cfg appconf.Config
	var apiKeysFlag string
	var moderatorsFlag string
	var envFlag string
	var dbPath string

	// Parse command-line flags
	flag.IntVar(&cfg.Port, "port", 4000, "API server port")
	flag.StringVar(&envFlag, "env", "development", "Environment (development|test|production)")
	flag.StringVar(&apiKeysFlag, "api-keys", "test", "Comma Separated API Keys (test, etc)")
	flag.StringVar(&moderatorsFlag, "moderators", "", "Comma separated identities with moderator capability")
	flag.IntVar(&cfg.RateLimit, "rate-limit", 100, "Requests per second per API key for rate limiting")
	flag.StringVar(&dbPath, "data-path", "./spotmerge.db", "Path to the SQLite database holding spots and proposals")
	flag.Parse()

	cfg.Verbose = true
	cfg.ApiKeys = ParseKeyList(apiKeysFlag)
	cfg.ModeratorKeys = ParseKeyList(moderatorsFlag)
	cfg.Env = appconf.EnvFlagToEnvironment(envFlag)

	coreApp, db, err := BuildApplication(cfg, dbPath)
	if err != nil {
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := CreateServer(coreApp, cfg)

	if err := Run(srv, coreApp.Logger); err != nil {
		coreApp.Logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
