package lb

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

func declareWebTier(t *testing.T, ctx *pulumi.Context, subnets, instances int) ([]*ec2.Subnet, []*ec2.Instance) {
	t.Helper()
	sns := make([]*ec2.Subnet, 0, subnets)
	for i := 0; i < subnets; i++ {
		sn, err := ec2.NewSubnet(ctx, fmt.Sprintf("subnet-%d", i+1), &ec2.SubnetArgs{
			VpcId:     pulumi.String("vpc-123456"),
			CidrBlock: pulumi.String(fmt.Sprintf("10.0.%d.0/24", i+1)),
		})
		require.NoError(t, err)
		sns = append(sns, sn)
	}
	insts := make([]*ec2.Instance, 0, instances)
	for i := 0; i < instances; i++ {
		inst, err := ec2.NewInstance(ctx, fmt.Sprintf("instance-%d", i+1), &ec2.InstanceArgs{
			Ami:          pulumi.String("ami-123456"),
			InstanceType: pulumi.String("t3.small"),
		})
		require.NoError(t, err)
		insts = append(insts, inst)
	}
	return sns, insts
}

func TestNewTier_OneAttachmentPerInstance(t *testing.T) {
	runWithMocks(t, func(ctx *pulumi.Context) error {
		sns, insts := declareWebTier(t, ctx, 2, 3)
		tier, err := NewTier(ctx, TierArgs{
			Project:     "demo-staging",
			Environment: "staging",
			VpcID:       pulumi.String("vpc-123456"),
			Subnets:     sns,
			Instances:   insts,
		})
		require.NoError(t, err)

		require.NotNil(t, tier.LoadBalancer)
		require.NotNil(t, tier.TargetGroup)
		require.NotNil(t, tier.Listener)
		assert.Len(t, tier.Attachments, 3)

		var wg sync.WaitGroup
		wg.Add(2)
		tier.LoadBalancer.Tags.ApplyT(func(tags map[string]string) error {
			defer wg.Done()
			assert.Equal(t, "demo-staging-alb", tags["Name"])
			assert.Equal(t, "staging", tags["Environment"])
			assert.Equal(t, "pulumi", tags["ManagedBy"])
			return nil
		})
		tier.Attachments[0].Port.ApplyT(func(port *int) error {
			defer wg.Done()
			require.NotNil(t, port)
			assert.Equal(t, 80, *port)
			return nil
		})
		wg.Wait()
		return nil
	})
}

func TestNewTier_RequiresTwoSubnets(t *testing.T) {
	runWithMocks(t, func(ctx *pulumi.Context) error {
		sns, insts := declareWebTier(t, ctx, 1, 1)
		_, err := NewTier(ctx, TierArgs{Project: "demo-dev", Subnets: sns, Instances: insts})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "need at least 2 subnets")
		return nil
	})
}

func TestNewTier_RequiresInstances(t *testing.T) {
	runWithMocks(t, func(ctx *pulumi.Context) error {
		sns, _ := declareWebTier(t, ctx, 2, 0)
		_, err := NewTier(ctx, TierArgs{Project: "demo-dev", Subnets: sns})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one instance")
		return nil
	})
}
