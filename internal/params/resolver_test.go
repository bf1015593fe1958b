package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string) Env {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestResolver_PrecedenceOrder(t *testing.T) {
	r := NewWith(
		MapStore{"instance_type": "from-store"},
		fakeEnv(map[string]string{"INSTANCE_TYPE": "from-env"}),
	)

	// Store beats env beats default.
	assert.Equal(t, "from-store", r.String("instance_type", "INSTANCE_TYPE", "t2.micro"))

	// An explicit override beats everything.
	r.Override("instance_type", "pinned")
	assert.Equal(t, "pinned", r.String("instance_type", "INSTANCE_TYPE", "t2.micro"))
}

func TestResolver_EnvFallback(t *testing.T) {
	r := NewWith(MapStore{}, fakeEnv(map[string]string{"DEPLOY_ENV": "staging"}))
	assert.Equal(t, "staging", r.String("environment", "DEPLOY_ENV", "development"))
}

func TestResolver_DefaultWhenAllSourcesEmpty(t *testing.T) {
	r := NewWith(MapStore{}, fakeEnv(nil))
	assert.Equal(t, "t2.micro", r.String("instance_type", "INSTANCE_TYPE", "t2.micro"))
}

func TestResolver_RequireMissingKeyNamesIt(t *testing.T) {
	r := NewWith(MapStore{}, fakeEnv(nil))
	_, err := r.Require("app_name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"app_name"`)
}

func TestResolver_RequireIgnoresEnvironment(t *testing.T) {
	r := NewWith(MapStore{}, fakeEnv(map[string]string{"APP_NAME": "orders"}))
	_, err := r.Require("app_name")
	require.Error(t, err, "required keys resolve from the config store only")
}

func TestResolver_RequirePresent(t *testing.T) {
	r := NewWith(MapStore{"app_name": "orders"}, fakeEnv(nil))
	v, err := r.Require("app_name")
	require.NoError(t, err)
	assert.Equal(t, "orders", v)
}

func TestResolver_IntInRange(t *testing.T) {
	r := NewWith(MapStore{"instance_count": "4"}, fakeEnv(nil))
	n, err := r.IntInRange("instance_count", 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestResolver_IntInRange_OutOfRangeEchoesValue(t *testing.T) {
	r := NewWith(MapStore{"instance_count": "42"}, fakeEnv(nil))
	_, err := r.IntInRange("instance_count", 1, 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "42")
	assert.Contains(t, err.Error(), "[1, 10]")
}

func TestResolver_IntInRange_NotAnInteger(t *testing.T) {
	r := NewWith(MapStore{"instance_count": "many"}, fakeEnv(nil))
	_, err := r.IntInRange("instance_count", 1, 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"many"`)
}

func TestResolver_IntInRange_DefaultApplies(t *testing.T) {
	r := NewWith(MapStore{}, fakeEnv(nil))
	n, err := r.IntInRange("instance_count", 3, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestResolver_Enum(t *testing.T) {
	r := NewWith(MapStore{"environment": "staging"}, fakeEnv(nil))
	v, err := r.Enum("environment", "", "development", AllowedEnvironments...)
	require.NoError(t, err)
	assert.Equal(t, "staging", v)
}

func TestResolver_Enum_RejectsUnknownListingAllowed(t *testing.T) {
	r := NewWith(MapStore{"environment": "qa"}, fakeEnv(nil))
	_, err := r.Enum("environment", "", "development", AllowedEnvironments...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"qa"`)
	assert.Contains(t, err.Error(), "development, staging, production, demo")
}

func TestResolver_Bool(t *testing.T) {
	r := NewWith(MapStore{"enable_https": "true"}, fakeEnv(nil))
	b, err := r.Bool("enable_https", false)
	require.NoError(t, err)
	assert.True(t, b)

	b, err = r.Bool("enable_monitoring", false)
	require.NoError(t, err)
	assert.False(t, b)
}

func TestResolver_Bool_Invalid(t *testing.T) {
	r := NewWith(MapStore{"enable_https": "yep"}, fakeEnv(nil))
	_, err := r.Bool("enable_https", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"yep"`)
}

func TestResolver_CSV_TrimsAndDropsEmpties(t *testing.T) {
	r := NewWith(MapStore{"admin_cidrs": " 10.0.0.0/8 , ,192.168.0.0/16"}, fakeEnv(nil))
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.0.0/16"}, r.CSV("admin_cidrs", ""))
}

func TestResolver_CSV_Default(t *testing.T) {
	r := NewWith(MapStore{}, fakeEnv(nil))
	assert.Equal(t, []string{"0.0.0.0/0"}, r.CSV("admin_cidrs", "0.0.0.0/0"))
}

func TestResolver_Version(t *testing.T) {
	r := NewWith(MapStore{"deployment_version": "2.0"}, fakeEnv(nil))
	raw, num, err := r.Version("deployment_version", "1.0")
	require.NoError(t, err)
	assert.Equal(t, "2.0", raw)
	assert.Equal(t, 2.0, num)
}

func TestResolver_Version_Invalid(t *testing.T) {
	r := NewWith(MapStore{"deployment_version": "two"}, fakeEnv(nil))
	_, _, err := r.Version("deployment_version", "1.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"two"`)
}

func TestResolver_RequireSecret_Missing(t *testing.T) {
	r := NewWith(MapStore{}, fakeEnv(nil))
	_, err := r.RequireSecret("db_password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"db_password"`)
}
