package params

import "sort"

// AllowedEnvironments is the fixed set of deployment environment
// labels a run may target.
var AllowedEnvironments = []string{"development", "staging", "production", "demo"}

// Profile bundles the per-environment deployment defaults selected by
// a stack name: instance sizing, instance count, and feature flags.
type Profile struct {
	Environment      string
	InstanceType     string
	InstanceCount    int
	EnableMonitoring bool
}

// DefaultStack names the profile used when a stack has no dedicated
// entry.
const DefaultStack = "dev"

var profiles = map[string]Profile{
	"dev": {
		Environment:      "development",
		InstanceType:     "t2.micro",
		InstanceCount:    1,
		EnableMonitoring: false,
	},
	"staging": {
		Environment:      "staging",
		InstanceType:     "t3.small",
		InstanceCount:    2,
		EnableMonitoring: true,
	},
	"prod": {
		Environment:      "production",
		InstanceType:     "t3.medium",
		InstanceCount:    3,
		EnableMonitoring: true,
	},
}

// ProfileFor returns the deployment profile for a stack name. Unknown
// stacks deterministically fall back to the dev profile.
func ProfileFor(stack string) Profile {
	if p, ok := profiles[stack]; ok {
		return p
	}
	return profiles[DefaultStack]
}

// Stacks returns the stack names that have a dedicated profile, sorted
// for stable output.
func Stacks() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
