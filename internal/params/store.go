package params

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// Store abstracts the engine's key-value configuration store. Plain
// values come back as strings; secret-marked values stay wrapped in a
// secret output so they never surface in plaintext.
type Store interface {
	Get(key string) (string, bool)
	Secret(key string) (pulumi.StringOutput, bool)
}

// stackConfig adapts the stack configuration of a live Pulumi context.
type stackConfig struct {
	cfg *config.Config
}

func (s stackConfig) Get(key string) (string, bool) {
	v, err := s.cfg.Try(key)
	if err != nil {
		return "", false
	}
	return v, true
}

func (s stackConfig) Secret(key string) (pulumi.StringOutput, bool) {
	v, err := s.cfg.TrySecret(key)
	if err != nil {
		var zero pulumi.StringOutput
		return zero, false
	}
	return v, true
}

// MapStore is an in-memory Store for tests.
type MapStore map[string]string

func (m MapStore) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MapStore) Secret(key string) (pulumi.StringOutput, bool) {
	v, ok := m[key]
	if !ok {
		var zero pulumi.StringOutput
		return zero, false
	}
	return pulumi.ToSecret(pulumi.String(v)).(pulumi.StringOutput), true
}
