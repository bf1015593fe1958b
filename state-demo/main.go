// Demonstrates state: a bucket whose versioning flag and an instance
// whose sizing live entirely in stack configuration, so flipping a
// value and re-running shows the engine diffing desired against
// recorded state.
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
	"github.com/iac-labs/pulumi-aws-demos/internal/network"
	"github.com/iac-labs/pulumi-aws-demos/internal/params"
	"github.com/iac-labs/pulumi-aws-demos/internal/security"
)

func main() {
	pulumi.Run(run)
}

func run(ctx *pulumi.Context) error {
	logging.Init()
	project := ctx.Project() + "-" + ctx.Stack()

	r := params.New(ctx)
	instanceType := r.String("instance_type", "", "t2.micro")
	versioning, err := r.Bool("enable_versioning", true)
	if err != nil {
		return err
	}

	bucketName := naming.Name(project, "data")
	bucket, err := s3.NewBucketV2(ctx, bucketName, &s3.BucketV2Args{
		Tags: pulumi.ToStringMap(naming.Tags(bucketName, "bucket", "demo", nil)),
	})
	if err != nil {
		return fmt.Errorf("failed to declare bucket %s: %w", bucketName, err)
	}

	status := "Suspended"
	if versioning {
		status = "Enabled"
	}
	_, err = s3.NewBucketVersioningV2(ctx, naming.Name(project, "data-versioning"), &s3.BucketVersioningV2Args{
		Bucket: bucket.ID(),
		VersioningConfiguration: &s3.BucketVersioningV2VersioningConfigurationArgs{
			Status: pulumi.String(status),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to declare bucket versioning: %w", err)
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

	logging.Phase("declaring network topology")
	topo, err := network.NewTopology(ctx, network.TopologyArgs{
		Project:           project,
		Environment:       "demo",
		VpcCIDR:           "10.3.0.0/16",
		SubnetCIDRs:       []string{"10.3.1.0/24"},
		AvailabilityZones: zones[:1],
		PublicIP:          true,
	})
	if err != nil {
		return err
	}

	sgName := naming.Name(project, "sg")
	sg, err := security.NewGroup(ctx, security.GroupArgs{
		Name:        sgName,
		Description: "state demo web access",
		VpcID:       topo.Vpc.ID(),
		Rules:       security.NewRuleSet(security.HTTP()),
		Tags:        naming.Tags(sgName, "sg", "demo", nil),
	})
	if err != nil {
		return err
	}

	page, err := compute.WebPage(compute.PageData{
		Title:         "State Demo",
		AppName:       ctx.Project(),
		Environment:   "demo",
		Stack:         ctx.Stack(),
		InstanceIndex: 1,
		InstanceCount: 1,
		InstanceType:  instanceType,
		Notes:         []string{fmt.Sprintf("Bucket versioning: %s", status)},
	})
	if err != nil {
		return err
	}

	logging.Phase("declaring instance", "type", instanceType)
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

	ex := exports.Map{}
	ex.Set("bucket_name", bucket.Bucket)
	ex.Set("bucket_arn", bucket.Arn)
	ex.Set("versioning_status", pulumi.String(status))
	ex.Set("instance_id", srv.ID())
	ex.Set("instance_type", pulumi.String(instanceType))
	ex.Set("website_url", exports.URL(srv.PublicIp))
	return ex.Publish(ctx)
}
