package exports

import (
	"sync"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mocks struct{}

func (mocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	return args.Name + "_id", args.Inputs, nil
}

func (mocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	return args.Args, nil
}

func runWithMocks(t *testing.T, body func(ctx *pulumi.Context) error) {
	t.Helper()
	err := pulumi.RunErr(body, pulumi.WithMocks("project", "stack", mocks{}))
	require.NoError(t, err)
}

func TestSecretMarkers_OnlyBooleans(t *testing.T) {
	markers := SecretMarkers("db_password", "api_key")
	require.Len(t, markers, 2)
	assert.Equal(t, pulumi.Bool(true), markers["db_password_configured"])
	assert.Equal(t, pulumi.Bool(true), markers["api_key_configured"])
	for _, v := range markers {
		_, isBool := v.(pulumi.Bool)
		assert.True(t, isBool, "markers must never carry the secret value")
	}
}

func TestPublish_AllowsOneLevelOfNesting(t *testing.T) {
	runWithMocks(t, func(ctx *pulumi.Context) error {
		m := Map{}
		m.Set("app_name", pulumi.String("orders"))
		m.Set("secrets", SecretMarkers("db_password"))
		assert.NoError(t, m.Publish(ctx))
		return nil
	})
}

func TestPublish_RejectsDeepNesting(t *testing.T) {
	runWithMocks(t, func(ctx *pulumi.Context) error {
		m := Map{}
		m.Set("outer", pulumi.Map{
			"inner": pulumi.Map{"too_deep": pulumi.Bool(true)},
		})
		err := m.Publish(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds one level of nesting")
		return nil
	})
}

func TestURL_PrependsScheme(t *testing.T) {
	runWithMocks(t, func(ctx *pulumi.Context) error {
		ip := pulumi.String("203.0.113.10").ToStringOutput()

		var wg sync.WaitGroup
		wg.Add(2)
		URL(ip).ApplyT(func(u string) error {
			defer wg.Done()
			assert.Equal(t, "http://203.0.113.10", u)
			return nil
		})
		SSHCommand(ip, "demo.pem").ApplyT(func(cmd string) error {
			defer wg.Done()
			assert.Equal(t, "ssh -i demo.pem ec2-user@203.0.113.10", cmd)
			return nil
		})
		wg.Wait()
		return nil
	})
}

func TestURLs_OnePerAddress(t *testing.T) {
	runWithMocks(t, func(ctx *pulumi.Context) error {
		urls := URLs(
			pulumi.String("203.0.113.10").ToStringOutput(),
			pulumi.String("203.0.113.11").ToStringOutput(),
		)
		require.Len(t, urls, 2)

		var wg sync.WaitGroup
		wg.Add(1)
		pulumi.All(urls[0], urls[1]).ApplyT(func(vals []interface{}) error {
			defer wg.Done()
			assert.Equal(t, "http://203.0.113.10", vals[0].(string))
			assert.Equal(t, "http://203.0.113.11", vals[1].(string))
			return nil
		})
		wg.Wait()
		return nil
	})
}
