// Demonstrates stacks: the same program deployed as dev, staging, or
// prod picks up a different environment profile from its stack name
// and declares a differently sized fleet.
package main

import (
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/iac-labs/pulumi-aws-demos/internal/compute"
	"github.com/iac-labs/pulumi-aws-demos/internal/exports"
	"github.com/iac-labs/pulumi-aws-demos/internal/logging"
	"github.com/iac-labs/pulumi-aws-demos/internal/lookup"
	"github.com/iac-labs/pulumi-aws-demos/internal/naming"
	"github.com/iac-labs/pulumi-aws-demos/internal/netplan"
	"github.com/iac-labs/pulumi-aws-demos/internal/network"
	"github.com/iac-labs/pulumi-aws-demos/internal/params"
	"github.com/iac-labs/pulumi-aws-demos/internal/security"
)

const vpcCIDR = "10.0.0.0/16"

func main() {
	pulumi.Run(run)
}

func run(ctx *pulumi.Context) error {
	logging.Init()
	project := ctx.Project() + "-" + ctx.Stack()

	profile := params.ProfileFor(ctx.Stack())
	logging.Phase("resolved environment profile",
		"stack", ctx.Stack(),
		"environment", profile.Environment,
		"instance_type", profile.InstanceType,
		"instance_count", profile.InstanceCount,
		"monitoring", profile.EnableMonitoring)

	r := params.New(ctx)
	instanceType := r.String("instance_type", "", profile.InstanceType)
	count, err := r.IntInRange("instance_count", profile.InstanceCount, 1, 10)
	if err != nil {
		return err
	}

	zones, err := lookup.AvailabilityZones(ctx)
	if err != nil {
		return err
	}
	if len(zones) == 0 {
		return fmt.Errorf("no availability zones in the configured region")
	}
	ami, err := lookup.AmazonLinuxAmi(ctx)
	if err != nil {
		return err
	}

	// One subnet for single-instance stacks, two for everything larger.
	subnetCount := 1
	if count > 1 && len(zones) > 1 {
		subnetCount = 2
	}
	subnetCIDRs, err := netplan.Carve(vpcCIDR, 24, 1, subnetCount)
	if err != nil {
		return err
	}

	logging.Phase("declaring network topology", "subnets", subnetCount)
	topo, err := network.NewTopology(ctx, network.TopologyArgs{
		Project:           project,
		Environment:       profile.Environment,
		VpcCIDR:           vpcCIDR,
		SubnetCIDRs:       subnetCIDRs,
		AvailabilityZones: zones[:subnetCount],
		PublicIP:          true,
	})
	if err != nil {
		return err
	}

	rules := security.NewRuleSet(security.HTTP()).ApplyProfile(profile)
	sgName := naming.Name(project, "sg")
	sg, err := security.NewGroup(ctx, security.GroupArgs{
		Name:        sgName,
		Description: fmt.Sprintf("%s web tier access", profile.Environment),
		VpcID:       topo.Vpc.ID(),
		Rules:       rules,
		Tags:        naming.Tags(sgName, "sg", profile.Environment, nil),
	})
	if err != nil {
		return err
	}

	logging.Phase("declaring fleet", "count", count, "type", instanceType)
	fleet, err := compute.NewFleet(ctx, compute.FleetArgs{
		Project:          project,
		Count:            count,
		InstanceType:     instanceType,
		Ami:              ami,
		Subnets:          topo.Subnets,
		SecurityGroupIDs: pulumi.StringArray{sg.ID()},
		UserData: func(i int) (pulumi.StringInput, error) {
			page, err := compute.WebPage(compute.PageData{
				Title:         fmt.Sprintf("Stacks Demo (%s)", profile.Environment),
				AppName:       ctx.Project(),
				Environment:   profile.Environment,
				Stack:         ctx.Stack(),
				InstanceIndex: i + 1,
				InstanceCount: count,
				InstanceType:  instanceType,
			})
			if err != nil {
				return nil, err
			}
			return pulumi.String(page), nil
		},
		PublicIP:    true,
		Environment: profile.Environment,
	})
	if err != nil {
		return err
	}

	ids := make(pulumi.StringArray, 0, len(fleet))
	ips := make([]pulumi.StringOutput, 0, len(fleet))
	for _, inst := range fleet {
		ids = append(ids, inst.ID())
		ips = append(ips, inst.PublicIp)
	}

	ex := exports.Map{}
	ex.Set("environment", pulumi.String(profile.Environment))
	ex.Set("instance_type", pulumi.String(instanceType))
	ex.Set("instance_count", pulumi.Int(count))
	ex.Set("monitoring_enabled", pulumi.Bool(profile.EnableMonitoring))
	ex.Set("vpc_id", topo.Vpc.ID())
	ex.Set("instance_ids", ids)
	ex.Set("website_urls", exports.URLs(ips...))
	ex.Set("known_stacks", pulumi.ToStringArray(params.Stacks()))

	// Side-by-side view of what each stack would deploy, so operators
	// can compare environments from any one of them.
	comparison := pulumi.Map{}
	for _, stack := range params.Stacks() {
		p := params.ProfileFor(stack)
		comparison[stack] = pulumi.String(fmt.Sprintf("%s x%d, monitoring %t",
			p.InstanceType, p.InstanceCount, p.EnableMonitoring))
	}
	ex.Set("profile_comparison", comparison)
	return ex.Publish(ctx)
}
