// Demonstrates resource kinds: data-source lookups (AMI, zones, caller
// identity), a multi-zone network, an object-storage bucket, and the
// implicit dependency edges between them.
package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/s3"
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

const vpcCIDR = "10.1.0.0/16"

func main() {
	pulumi.Run(run)
}

func run(ctx *pulumi.Context) error {
	logging.Init()
	project := ctx.Project() + "-" + ctx.Stack()

	r := params.New(ctx)
	instanceType := r.String("instance_type", "", "t2.micro")

	logging.Phase("looking up data sources")
	accountID, region, err := lookup.Account(ctx)
	if err != nil {
		return err
	}
	ami, err := lookup.AmazonLinuxAmi(ctx)
	if err != nil {
		return err
	}
	zones, err := lookup.AvailabilityZones(ctx)
	if err != nil {
		return err
	}
	if len(zones) < 2 {
		return fmt.Errorf("region %s has %d availability zones, need at least 2", region, len(zones))
	}
	logging.Debug("caller identity", "account", accountID, "region", region, "ami", ami)

	subnetCIDRs, err := netplan.Carve(vpcCIDR, 24, 1, 2)
	if err != nil {
		return err
	}

	logging.Phase("declaring network topology", "zones", 2)
	topo, err := network.NewTopology(ctx, network.TopologyArgs{
		Project:           project,
		Environment:       "demo",
		VpcCIDR:           vpcCIDR,
		SubnetCIDRs:       subnetCIDRs,
		AvailabilityZones: zones[:2],
		PublicIP:          true,
	})
	if err != nil {
		return err
	}

	bucketName := naming.Name(project, "assets")
	bucket, err := s3.NewBucketV2(ctx, bucketName, &s3.BucketV2Args{
		Tags: pulumi.ToStringMap(naming.Tags(bucketName, "bucket", "demo", nil)),
	})
	if err != nil {
		return fmt.Errorf("failed to declare bucket %s: %w", bucketName, err)
	}

	rules := security.NewRuleSet(security.HTTP())
	sgName := naming.Name(project, "sg")
	sg, err := security.NewGroup(ctx, security.GroupArgs{
		Name:        sgName,
		Description: "resource demo web access",
		VpcID:       topo.Vpc.ID(),
		Rules:       rules,
		Tags:        naming.Tags(sgName, "sg", "demo", nil),
	})
	if err != nil {
		return err
	}

	page, err := compute.WebPage(compute.PageData{
		Title:         "Resources Demo",
		AppName:       ctx.Project(),
		Environment:   "demo",
		Stack:         ctx.Stack(),
		InstanceIndex: 1,
		InstanceCount: 1,
		InstanceType:  instanceType,
		Notes: []string{
			fmt.Sprintf("Account: %s", accountID),
			fmt.Sprintf("Region: %s", region),
			fmt.Sprintf("AMI: %s", ami),
		},
	})
	if err != nil {
		return err
	}

	srv, err := compute.NewServer(ctx, compute.ServerArgs{
		Name:             naming.Name(project, "web"),
		InstanceType:     instanceType,
		Ami:              ami,
		SubnetID:         topo.Subnets[0].ID(),
		SecurityGroupIDs: pulumi.StringArray{sg.ID()},
		UserData:         pulumi.String(page),
		PublicIP:         true,
		Environment:      "demo",
	})
	if err != nil {
		return err
	}

	subnetIDs := make(pulumi.StringArray, 0, len(topo.Subnets))
	for _, sn := range topo.Subnets {
		subnetIDs = append(subnetIDs, sn.ID())
	}

	ex := exports.Map{}
	ex.Set("account_id", pulumi.String(accountID))
	ex.Set("region", pulumi.String(region))
	ex.Set("ami_id", pulumi.String(ami))
	ex.Set("availability_zones", pulumi.ToStringArray(zones[:2]))
	ex.Set("vpc_id", topo.Vpc.ID())
	ex.Set("subnet_ids", subnetIDs)
	ex.Set("bucket_name", bucket.Bucket)
	ex.Set("bucket_arn", bucket.Arn)
	ex.Set("instance_id", srv.ID())
	ex.Set("website_url", exports.URL(srv.PublicIp))
	return ex.Publish(ctx)
}
