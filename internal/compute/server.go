package compute

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/iac-labs/pulumi-aws-demos/internal/naming"
)

// ServerArgs configures one compute-unit declaration.
type ServerArgs struct {
	Name             string
	InstanceType     string
	Ami              string
	SubnetID         pulumi.StringPtrInput
	SecurityGroupIDs pulumi.StringArrayInput
	UserData         pulumi.StringInput
	PublicIP         bool
	KeyName          string
	Environment      string
	Tags             map[string]string
}

// NewServer declares one instance attached to one subnet and one
// security-group set, referencing both by identifier.
func NewServer(ctx *pulumi.Context, args ServerArgs) (*ec2.Instance, error) {
	ia := &ec2.InstanceArgs{
		Ami:                 pulumi.String(args.Ami),
		InstanceType:        pulumi.String(args.InstanceType),
		SubnetId:            args.SubnetID,
		VpcSecurityGroupIds: args.SecurityGroupIDs,
		Tags:                pulumi.ToStringMap(naming.Tags(args.Name, "instance", args.Environment, args.Tags)),
	}
	if args.UserData != nil {
		ia.UserData = args.UserData
	}
	if args.PublicIP {
		ia.AssociatePublicIpAddress = pulumi.Bool(true)
	}
	if args.KeyName != "" {
		ia.KeyName = pulumi.String(args.KeyName)
	}
	inst, err := ec2.NewInstance(ctx, args.Name, ia)
	if err != nil {
		return nil, fmt.Errorf("failed to declare instance %s: %w", args.Name, err)
	}
	return inst, nil
}

// FleetArgs configures a group of identically shaped instances.
type FleetArgs struct {
	Project          string
	Count            int
	InstanceType     string
	Ami              string
	Subnets          []*ec2.Subnet
	SecurityGroupIDs pulumi.StringArrayInput
	// UserData renders the bootstrap payload for the i-th instance
	// (0-based); nil declares instances without a payload.
	UserData    func(i int) (pulumi.StringInput, error)
	PublicIP    bool
	KeyName     string
	Environment string
	Tags        map[string]string
}

// NewFleet declares Count instances, spread round-robin across the
// given subnets. Exactly one subnet and one security-group set is
// referenced per instance.
func NewFleet(ctx *pulumi.Context, args FleetArgs) ([]*ec2.Instance, error) {
	if args.Count < 1 {
		return nil, fmt.Errorf("fleet %s: instance count %d must be at least 1", args.Project, args.Count)
	}
	if len(args.Subnets) == 0 {
		return nil, fmt.Errorf("fleet %s: at least one subnet is required", args.Project)
	}

	instances := make([]*ec2.Instance, 0, args.Count)
	for i := 0; i < args.Count; i++ {
		var userData pulumi.StringInput
		if args.UserData != nil {
			var err error
			userData, err = args.UserData(i)
			if err != nil {
				return nil, fmt.Errorf("fleet %s: %w", args.Project, err)
			}
		}

		extra := map[string]string{"InstanceNumber": fmt.Sprintf("%d", i+1)}
		for k, v := range args.Tags {
			extra[k] = v
		}
		inst, err := NewServer(ctx, ServerArgs{
			Name:             naming.Indexed(args.Project, "instance", i),
			InstanceType:     args.InstanceType,
			Ami:              args.Ami,
			SubnetID:         args.Subnets[i%len(args.Subnets)].ID(),
			SecurityGroupIDs: args.SecurityGroupIDs,
			UserData:         userData,
			PublicIP:         args.PublicIP,
			KeyName:          args.KeyName,
			Environment:      args.Environment,
			Tags:             extra,
		})
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, nil
}
