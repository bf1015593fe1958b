// Package network declares the fixed demo network topology: one VPC,
// an internet gateway attached to it, one subnet per availability
// zone, and a route table with a default route through the gateway.
// Children reference their parent's identifier, never a copy of its
// configuration, so the engine's dependency resolution sees real
// edges.
package network

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/iac-labs/pulumi-aws-demos/internal/naming"
	"github.com/iac-labs/pulumi-aws-demos/internal/netplan"
)

// TopologyArgs configures a topology declaration.
type TopologyArgs struct {
	// Project prefixes every resource name.
	Project string
	// Environment is the owning environment label for tagging.
	Environment string
	VpcCIDR     string
	// SubnetCIDRs and AvailabilityZones pair up index-wise; every
	// subnet block must be a strict sub-range of VpcCIDR.
	SubnetCIDRs       []string
	AvailabilityZones []string
	// PublicIP makes the subnets map public addresses on launch.
	PublicIP bool
	// Tags merge into every resource's baseline tag set.
	Tags map[string]string
}

// Topology groups the network resources one run declares.
type Topology struct {
	Vpc          *ec2.Vpc
	Gateway      *ec2.InternetGateway
	Subnets      []*ec2.Subnet
	RouteTable   *ec2.RouteTable
	Associations []*ec2.RouteTableAssociation
}

// NewTopology validates the block layout and declares the topology.
// Any failure aborts before the remaining resources are declared.
func NewTopology(ctx *pulumi.Context, args TopologyArgs) (*Topology, error) {
	if len(args.SubnetCIDRs) == 0 {
		return nil, fmt.Errorf("topology %s: at least one subnet block is required", args.Project)
	}
	if len(args.AvailabilityZones) != len(args.SubnetCIDRs) {
		return nil, fmt.Errorf("topology %s: %d subnet blocks but %d availability zones",
			args.Project, len(args.SubnetCIDRs), len(args.AvailabilityZones))
	}
	if err := netplan.ValidateSubnets(args.VpcCIDR, args.SubnetCIDRs); err != nil {
		return nil, fmt.Errorf("topology %s: %w", args.Project, err)
	}

	name := naming.Name(args.Project, "vpc")
	vpc, err := ec2.NewVpc(ctx, name, &ec2.VpcArgs{
		CidrBlock:          pulumi.String(args.VpcCIDR),
		EnableDnsSupport:   pulumi.Bool(true),
		EnableDnsHostnames: pulumi.Bool(true),
		Tags:               pulumi.ToStringMap(naming.Tags(name, "vpc", args.Environment, args.Tags)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare VPC %s: %w", name, err)
	}

	name = naming.Name(args.Project, "igw")
	igw, err := ec2.NewInternetGateway(ctx, name, &ec2.InternetGatewayArgs{
		VpcId: vpc.ID(),
		Tags:  pulumi.ToStringMap(naming.Tags(name, "igw", args.Environment, args.Tags)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare internet gateway %s: %w", name, err)
	}

	subnets := make([]*ec2.Subnet, 0, len(args.SubnetCIDRs))
	for i, cidr := range args.SubnetCIDRs {
		az := args.AvailabilityZones[i]
		snName := naming.Indexed(args.Project, "subnet", i)
		extra := map[string]string{"AZ": az}
		for k, v := range args.Tags {
			extra[k] = v
		}
		subnet, err := ec2.NewSubnet(ctx, snName, &ec2.SubnetArgs{
			VpcId:               vpc.ID(),
			CidrBlock:           pulumi.String(cidr),
			AvailabilityZone:    pulumi.String(az),
			MapPublicIpOnLaunch: pulumi.Bool(args.PublicIP),
			Tags:                pulumi.ToStringMap(naming.Tags(snName, "subnet", args.Environment, extra)),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to declare subnet %s: %w", snName, err)
		}
		subnets = append(subnets, subnet)
	}

	name = naming.Name(args.Project, "rt")
	rt, err := ec2.NewRouteTable(ctx, name, &ec2.RouteTableArgs{
		VpcId: vpc.ID(),
		Routes: ec2.RouteTableRouteArray{
			ec2.RouteTableRouteArgs{
				CidrBlock: pulumi.String("0.0.0.0/0"),
				GatewayId: igw.ID(),
			},
		},
		Tags: pulumi.ToStringMap(naming.Tags(name, "rt", args.Environment, args.Tags)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare route table %s: %w", name, err)
	}

	assocs := make([]*ec2.RouteTableAssociation, 0, len(subnets))
	for i, subnet := range subnets {
		aName := naming.Indexed(args.Project, "rt-assoc", i)
		assoc, err := ec2.NewRouteTableAssociation(ctx, aName, &ec2.RouteTableAssociationArgs{
			SubnetId:     subnet.ID(),
			RouteTableId: rt.ID(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to declare route table association %s: %w", aName, err)
		}
		assocs = append(assocs, assoc)
	}

	return &Topology{
		Vpc:          vpc,
		Gateway:      igw,
		Subnets:      subnets,
		RouteTable:   rt,
		Associations: assocs,
	}, nil
}
