package compute

import (
	"fmt"
	"sync"
	"testing"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
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

func declareSubnets(t *testing.T, ctx *pulumi.Context, n int) []*ec2.Subnet {
	t.Helper()
	subnets := make([]*ec2.Subnet, 0, n)
	for i := 0; i < n; i++ {
		sn, err := ec2.NewSubnet(ctx, fmt.Sprintf("subnet-%d", i+1), &ec2.SubnetArgs{
			VpcId:     pulumi.String("vpc-123456"),
			CidrBlock: pulumi.String(fmt.Sprintf("10.0.%d.0/24", i+1)),
		})
		require.NoError(t, err)
		subnets = append(subnets, sn)
	}
	return subnets
}

func TestNewFleet_DeclaresExactlyCountInstances(t *testing.T) {
	runWithMocks(t, func(ctx *pulumi.Context) error {
		subnets := declareSubnets(t, ctx, 2)
		fleet, err := NewFleet(ctx, FleetArgs{
			Project:      "demo-staging",
			Count:        3,
			InstanceType: "t3.small",
			Ami:          "ami-123456",
			Subnets:      subnets,
			Environment:  "staging",
		})
		require.NoError(t, err)
		assert.Len(t, fleet, 3)
		return nil
	})
}

func TestNewFleet_RoundRobinsSubnets(t *testing.T) {
	runWithMocks(t, func(ctx *pulumi.Context) error {
		subnets := declareSubnets(t, ctx, 2)
		fleet, err := NewFleet(ctx, FleetArgs{
			Project:      "demo-staging",
			Count:        3,
			InstanceType: "t3.small",
			Ami:          "ami-123456",
			Subnets:      subnets,
			Environment:  "staging",
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(1)
		pulumi.All(
			subnets[0].ID(), subnets[1].ID(),
			fleet[0].SubnetId, fleet[1].SubnetId, fleet[2].SubnetId,
		).ApplyT(func(vals []interface{}) error {
			defer wg.Done()
			first := string(vals[0].(pulumi.ID))
			second := string(vals[1].(pulumi.ID))
			assert.Equal(t, first, vals[2].(string))
			assert.Equal(t, second, vals[3].(string))
			assert.Equal(t, first, vals[4].(string))
			return nil
		})
		wg.Wait()
		return nil
	})
}

func TestNewFleet_TagsCarryInstanceNumber(t *testing.T) {
	runWithMocks(t, func(ctx *pulumi.Context) error {
		subnets := declareSubnets(t, ctx, 1)
		fleet, err := NewFleet(ctx, FleetArgs{
			Project:      "demo-dev",
			Count:        2,
			InstanceType: "t2.micro",
			Ami:          "ami-123456",
			Subnets:      subnets,
			Environment:  "development",
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(1)
		fleet[1].Tags.ApplyT(func(tags map[string]string) error {
			defer wg.Done()
			assert.Equal(t, "demo-dev-instance-2", tags["Name"])
			assert.Equal(t, "2", tags["InstanceNumber"])
			assert.Equal(t, "development", tags["Environment"])
			assert.Equal(t, "pulumi", tags["ManagedBy"])
			return nil
		})
		wg.Wait()
		return nil
	})
}

func TestNewFleet_RejectsZeroCount(t *testing.T) {
	runWithMocks(t, func(ctx *pulumi.Context) error {
		_, err := NewFleet(ctx, FleetArgs{Project: "demo-dev", Count: 0})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be at least 1")
		return nil
	})
}

func TestNewFleet_RequiresSubnets(t *testing.T) {
	runWithMocks(t, func(ctx *pulumi.Context) error {
		_, err := NewFleet(ctx, FleetArgs{Project: "demo-dev", Count: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one subnet")
		return nil
	})
}
