package proposaldb

import "spotmerge.hitchmap.org/internal/appconf"

// Config holds configuration options for the Client
type Config struct {
	// DBPath is the path to the SQLite database file. ":memory:" works for
	// tests and throwaway runs.
	DBPath  string
	Env     appconf.Environment
	verbose bool
}

func NewConfig(dbPath string, env appconf.Environment, verbose bool) Config {
	return Config{
		DBPath:  dbPath,
		Env:     env,
		verbose: verbose,
	}
}
