// Demonstrates composing the shared builders into a two-tier layout:
// a public web tier sized by the stack's environment profile and a
// private database tier reachable only from the web security group.
package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/iac-labs/pulumi-aws-demos/internal/compute"
	"github.com/iac-labs/pulumi-aws-demos/internal/exports"
	"github.com/iac-labs/pulumi-aws-demos/internal/lb"
	"github.com/iac-labs/pulumi-aws-demos/internal/logging"
	"github.com/iac-labs/pulumi-aws-demos/internal/lookup"
	"github.com/iac-labs/pulumi-aws-demos/internal/naming"
	"github.com/iac-labs/pulumi-aws-demos/internal/netplan"
	"github.com/iac-labs/pulumi-aws-demos/internal/network"
	"github.com/iac-labs/pulumi-aws-demos/internal/params"
	"github.com/iac-labs/pulumi-aws-demos/internal/security"
)

const (
	vpcCIDR     = "10.5.0.0/16"
	privateCIDR = "10.5.101.0/24"

	dbBootstrap = `#!/bin/bash
yum update -y
yum install -y mariadb-server
systemctl start mariadb
systemctl enable mariadb
`
)

func main() {
	pulumi.Run(run)
}

func run(ctx *pulumi.Context) error {
	logging.Init()
	project := ctx.Project() + "-" + ctx.Stack()

	profile := params.ProfileFor(ctx.Stack())
	r := params.New(ctx)
	webType := r.String("instance_type", "", profile.InstanceType)
	dbType := r.String("db_instance_type", "", profile.InstanceType)
	count, err := r.IntInRange("instance_count", profile.InstanceCount, 1, 10)
	if err != nil {
		return err
	}
	// Fleets of more than one instance get a balancer unless the flag
	// says otherwise.
	enableLB, err := r.Bool("enable_load_balancer", count > 1)
	if err != nil {
		return err
	}
	logging.Phase("resolved environment profile",
		"stack", ctx.Stack(), "environment", profile.Environment, "web_count", count)

	zones, err := lookup.AvailabilityZones(ctx)
	if err != nil {
		return err
	}
	if len(zones) < 2 {
		return fmt.Errorf("need at least 2 availability zones, region has %d", len(zones))
	}
	ami, err := lookup.AmazonLinuxAmi(ctx)
	if err != nil {
		return err
	}

	publicCIDRs, err := netplan.Carve(vpcCIDR, 24, 1, 2)
	if err != nil {
		return err
	}
	if err := netplan.ValidateSubnets(vpcCIDR, []string{privateCIDR}); err != nil {
		return err
	}

	logging.Phase("declaring network topology")
	topo, err := network.NewTopology(ctx, network.TopologyArgs{
		Project:           project,
		Environment:       profile.Environment,
		VpcCIDR:           vpcCIDR,
		SubnetCIDRs:       publicCIDRs,
		AvailabilityZones: zones[:2],
		PublicIP:          true,
		Tags:              map[string]string{"Tier": "public"},
	})
	if err != nil {
		return err
	}

	// The private subnet hangs off the same VPC but is not associated
	// with the internet-facing route table.
	privName := naming.Name(project, "private-subnet")
	private, err := ec2.NewSubnet(ctx, privName, &ec2.SubnetArgs{
		VpcId:            topo.Vpc.ID(),
		CidrBlock:        pulumi.String(privateCIDR),
		AvailabilityZone: pulumi.String(zones[0]),
		Tags: pulumi.ToStringMap(naming.Tags(privName, "subnet", profile.Environment,
			map[string]string{"Tier": "private"})),
	})
	if err != nil {
		return fmt.Errorf("failed to declare private subnet %s: %w", privName, err)
	}

	webRules := security.NewRuleSet(security.HTTP()).ApplyProfile(profile)
	webSgName := naming.Name(project, "web-sg")
	webSg, err := security.NewGroup(ctx, security.GroupArgs{
		Name:        webSgName,
		Description: "web tier access",
		VpcID:       topo.Vpc.ID(),
		Rules:       webRules,
		Tags:        naming.Tags(webSgName, "sg", profile.Environment, map[string]string{"Tier": "public"}),
	})
	if err != nil {
		return err
	}

	// The database group admits MySQL traffic from the web group only,
	// referenced by group identifier rather than by address range.
	dbSgName := naming.Name(project, "db-sg")
	dbSg, err := ec2.NewSecurityGroup(ctx, dbSgName, &ec2.SecurityGroupArgs{
		Name:        pulumi.String(dbSgName),
		Description: pulumi.String("database tier access"),
		VpcId:       topo.Vpc.ID(),
		Ingress: ec2.SecurityGroupIngressArray{
			ec2.SecurityGroupIngressArgs{
				Description:    pulumi.String("MySQL from web tier"),
				FromPort:       pulumi.Int(3306),
				ToPort:         pulumi.Int(3306),
				Protocol:       pulumi.String("tcp"),
				SecurityGroups: pulumi.StringArray{webSg.ID()},
			},
		},
		Egress: security.EgressAll(),
		Tags: pulumi.ToStringMap(naming.Tags(dbSgName, "sg", profile.Environment,
			map[string]string{"Tier": "private"})),
	})
	if err != nil {
		return fmt.Errorf("failed to declare security group %s: %w", dbSgName, err)
	}

	logging.Phase("declaring web fleet", "count", count, "type", webType)
	fleet, err := compute.NewFleet(ctx, compute.FleetArgs{
		Project:          project,
		Count:            count,
		InstanceType:     webType,
		Ami:              ami,
		Subnets:          topo.Subnets,
		SecurityGroupIDs: pulumi.StringArray{webSg.ID()},
		UserData: func(i int) (pulumi.StringInput, error) {
			page, err := compute.WebPage(compute.PageData{
				Title:         fmt.Sprintf("Modularity Demo (%s)", profile.Environment),
				AppName:       ctx.Project(),
				Environment:   profile.Environment,
				Stack:         ctx.Stack(),
				InstanceIndex: i + 1,
				InstanceCount: count,
				InstanceType:  webType,
				Notes:         []string{"Two-tier layout: public web, private database"},
			})
			if err != nil {
				return nil, err
			}
			return pulumi.String(page), nil
		},
		PublicIP:    true,
		Environment: profile.Environment,
		Tags:        map[string]string{"Tier": "public"},
	})
	if err != nil {
		return err
	}

	logging.Phase("declaring database server", "type", dbType)
	db, err := compute.NewServer(ctx, compute.ServerArgs{
		Name:             naming.Name(project, "db"),
		InstanceType:     dbType,
		Ami:              ami,
		SubnetID:         private.ID(),
		SecurityGroupIDs: pulumi.StringArray{dbSg.ID()},
		UserData:         pulumi.String(dbBootstrap),
		Environment:      profile.Environment,
		Tags:             map[string]string{"Tier": "private"},
	})
	if err != nil {
		return err
	}

	ips := make([]pulumi.StringOutput, 0, len(fleet))
	for _, inst := range fleet {
		ips = append(ips, inst.PublicIp)
	}
	publicIDs := make(pulumi.StringArray, 0, len(topo.Subnets))
	for _, sn := range topo.Subnets {
		publicIDs = append(publicIDs, sn.ID())
	}

	ex := exports.Map{}
	ex.Set("environment", pulumi.String(profile.Environment))
	ex.Set("vpc_id", topo.Vpc.ID())
	ex.Set("public_subnet_ids", publicIDs)
	ex.Set("private_subnet_id", private.ID())
	ex.Set("web_instance_count", pulumi.Int(count))
	ex.Set("website_urls", exports.URLs(ips...))
	ex.Set("db_private_ip", db.PrivateIp)
	ex.Set("load_balancer_enabled", pulumi.Bool(enableLB))

	// The load-balancer tier is strictly additive: enabling the flag
	// fronts the existing fleet without touching it.
	if enableLB {
		logging.Phase("declaring load balancer tier")
		tier, err := lb.NewTier(ctx, lb.TierArgs{
			Project:          project,
			Environment:      profile.Environment,
			VpcID:            topo.Vpc.ID(),
			Subnets:          topo.Subnets,
			SecurityGroupIDs: pulumi.StringArray{webSg.ID()},
			Instances:        fleet,
			Tags:             map[string]string{"Tier": "public"},
		})
		if err != nil {
			return err
		}
		ex.Set("lb_dns_name", tier.LoadBalancer.DnsName)
		ex.Set("lb_url", exports.URL(tier.LoadBalancer.DnsName))
	}
	return ex.Publish(ctx)
}
