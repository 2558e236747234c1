package appconf

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// Config holds the application-level configuration supplied via flags.
type Config struct {
	Port          int
	Env           Environment
	Verbose       bool
	ApiKeys       []string
	ModeratorKeys []string
	RateLimit     int
}

// EnvFlagToEnvironment converts an environment flag value to an Environment.
// Unknown values default to Development.
func EnvFlagToEnvironment(envFlag string) Environment {
	switch envFlag {
	case "test":
		return Test
	case "production":
		return Production
	default:
		return Development
	}
}
