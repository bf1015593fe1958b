// Package params resolves named demo parameters from the stack
// configuration store, process environment variables, and hard-coded
// defaults. Resolution is pure: the only side effect a caller can
// observe is the error that aborts a run before anything is declared.
package params

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// Env looks up a process environment variable.
type Env func(key string) (string, bool)

// Resolver resolves parameters in a fixed precedence order: explicit
// override, then the configuration store, then an environment variable
// where one is mapped, then the hard-coded default.
type Resolver struct {
	store     Store
	env       Env
	overrides map[string]string
}

// New builds a Resolver over the stack configuration of a live Pulumi
// context and the process environment.
func New(ctx *pulumi.Context) *Resolver {
	return NewWith(stackConfig{cfg: config.New(ctx, "")}, os.LookupEnv)
}

// NewWith builds a Resolver over explicit sources; tests use it with a
// MapStore and a fake environment.
func NewWith(store Store, env Env) *Resolver {
	return &Resolver{store: store, env: env}
}

// Override pins a parameter to a fixed value, taking precedence over
// every other source.
func (r *Resolver) Override(key, value string) {
	if r.overrides == nil {
		r.overrides = make(map[string]string)
	}
	r.overrides[key] = value
}

func (r *Resolver) lookup(key, envVar string) (string, bool) {
	if v, ok := r.overrides[key]; ok {
		return v, true
	}
	if v, ok := r.store.Get(key); ok {
		return v, true
	}
	if envVar != "" {
		if v, ok := r.env(envVar); ok {
			return v, true
		}
	}
	return "", false
}

// String resolves an optional string parameter. envVar may be empty if
// the parameter has no environment-variable fallback.
func (r *Resolver) String(key, envVar, def string) string {
	if v, ok := r.lookup(key, envVar); ok {
		return v
	}
	return def
}

// Require resolves a required string parameter from the override and
// configuration-store sources only; required keys carry no
// environment-variable fallback, matching the store's require
// semantics. A key absent from both sources is a fatal error naming
// the key.
func (r *Resolver) Require(key string) (string, error) {
	if v, ok := r.lookup(key, ""); ok {
		return v, nil
	}
	return "", fmt.Errorf("missing required configuration key %q", key)
}

// Int resolves an optional integer parameter.
func (r *Resolver) Int(key string, def int) (int, error) {
	v, ok := r.lookup(key, "")
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("configuration key %q: %q is not an integer", key, v)
	}
	return n, nil
}

// IntInRange resolves an integer parameter and validates it against
// the closed range [lo, hi].
func (r *Resolver) IntInRange(key string, def, lo, hi int) (int, error) {
	n, err := r.Int(key, def)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("configuration key %q: %d is out of range [%d, %d]", key, n, lo, hi)
	}
	return n, nil
}

// Bool resolves an optional boolean parameter.
func (r *Resolver) Bool(key string, def bool) (bool, error) {
	v, ok := r.lookup(key, "")
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("configuration key %q: %q is not a boolean", key, v)
	}
	return b, nil
}

// Enum resolves a parameter that must belong to a fixed allowed set.
func (r *Resolver) Enum(key, envVar, def string, allowed ...string) (string, error) {
	v := r.String(key, envVar, def)
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", fmt.Errorf("configuration key %q: %q is not one of [%s]",
		key, v, strings.Join(allowed, ", "))
}

// CSV resolves a comma-separated list parameter, trimming whitespace
// around each element and dropping empty ones.
func (r *Resolver) CSV(key, def string) []string {
	raw := r.String(key, "", def)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Version resolves a decimal version string such as "2.0", returning
// both the raw string and its numeric value for threshold checks.
func (r *Resolver) Version(key, def string) (string, float64, error) {
	v := r.String(key, "", def)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return "", 0, fmt.Errorf("configuration key %q: %q is not a version number", key, v)
	}
	return v, f, nil
}

// RequireSecret resolves a required secret-marked parameter. The value
// stays wrapped in a secret output.
func (r *Resolver) RequireSecret(key string) (pulumi.StringOutput, error) {
	if v, ok := r.store.Secret(key); ok {
		return v, nil
	}
	var zero pulumi.StringOutput
	return zero, fmt.Errorf("missing required secret configuration key %q", key)
}

// Secret resolves an optional secret-marked parameter, wrapping the
// default as a secret so downstream handling is uniform.
func (r *Resolver) Secret(key, def string) pulumi.StringOutput {
	if v, ok := r.store.Secret(key); ok {
		return v
	}
	return pulumi.ToSecret(pulumi.String(def)).(pulumi.StringOutput)
}
