// Package naming derives resource display names and tag sets from the
// run's project label. Names are a pure function of their inputs so
// repeated runs with the same parameters declare identically named
// resources.
package naming

import "fmt"

// ManagedByTag marks every resource this code declares as managed by
// the provisioning engine rather than created by hand.
const ManagedByTag = "pulumi"

// Name returns the display name for a singleton resource role, e.g.
// Name("demo-dev", "vpc") == "demo-dev-vpc".
func Name(project, role string) string {
	return fmt.Sprintf("%s-%s", project, role)
}

// Indexed returns the display name for the i-th resource of a role,
// 1-based to match operator-facing counting.
func Indexed(project, role string, i int) string {
	return fmt.Sprintf("%s-%s-%d", project, role, i+1)
}

// Tags builds the baseline tag set for a resource: role label, owning
// environment, and the management-origin marker. Extra tags merge in
// without overriding the baseline keys.
func Tags(name, role, environment string, extra map[string]string) map[string]string {
	tags := make(map[string]string, len(extra)+4)
	for k, v := range extra {
		tags[k] = v
	}
	tags["Name"] = name
	tags["Role"] = role
	tags["Environment"] = environment
	tags["ManagedBy"] = ManagedByTag
	return tags
}
