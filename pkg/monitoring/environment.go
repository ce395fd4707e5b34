package monitoring

import "fmt"

// Environment names a deployment environment.
type Environment string

const (
	Staging    Environment = "staging"
	Production Environment = "production"
)

// SupportedEnvironments lists every environment this system deploys to.
// Threshold policies must carry an entry for each of these.
func SupportedEnvironments() []Environment {
	return []Environment{Staging, Production}
}

// ParseEnvironment validates an environment name.
func ParseEnvironment(name string) (Environment, error) {
	switch Environment(name) {
	case Staging:
		return Staging, nil
	case Production:
		return Production, nil
	default:
		return "", fmt.Errorf("monitoring: unknown environment %q", name)
	}
}

func (e Environment) String() string {
	return string(e)
}
