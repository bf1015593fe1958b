// Demonstrates the preview/update workflow: raising deployment_version
// or flipping enable_monitoring only ever adds rules and attachments,
// so each preview shows a strict superset of the previous run.
package main

import (
	"encoding/json"
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
	version, vnum, err := r.Version("deployment_version", "1.0")
	if err != nil {
		return err
	}
	monitoring, err := r.Bool("enable_monitoring", false)
	if err != nil {
		return err
	}
	instanceType := r.String("instance_type", "", "t2.micro")

	rules := security.NewRuleSet(security.HTTP()).ApplyVersionGates(vnum)
	if monitoring {
		rules.Add(security.Monitoring()...)
	}
	logging.Phase("resolved access policy",
		"version", version, "monitoring", monitoring, "rules", rules.Len())

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
		VpcCIDR:           "10.4.0.0/16",
		SubnetCIDRs:       []string{"10.4.1.0/24"},
		AvailabilityZones: zones[:1],
		PublicIP:          true,
		Tags:              map[string]string{"Version": version},
	})
	if err != nil {
		return err
	}

	sgName := naming.Name(project, "sg")
	sg, err := security.NewGroup(ctx, security.GroupArgs{
		Name:        sgName,
		Description: fmt.Sprintf("access policy at version %s", version),
		VpcID:       topo.Vpc.ID(),
		Rules:       rules,
		Tags:        naming.Tags(sgName, "sg", "demo", map[string]string{"Version": version}),
	})
	if err != nil {
		return err
	}

	notes := []string{fmt.Sprintf("Deployment version: %s", version)}
	for _, rule := range rules.Rules() {
		notes = append(notes, fmt.Sprintf("Allows %s (port %d)", rule.Description, rule.FromPort))
	}
	page, err := compute.WebPage(compute.PageData{
		Title:         "Preview & Update Demo",
		AppName:       ctx.Project(),
		Environment:   "demo",
		Stack:         ctx.Stack(),
		InstanceIndex: 1,
		InstanceCount: 1,
		InstanceType:  instanceType,
		Notes:         notes,
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
		Tags:             map[string]string{"Version": version},
	})
	if err != nil {
		return err
	}

	ex := exports.Map{}
	ex.Set("deployment_version", pulumi.String(version))
	ex.Set("monitoring_enabled", pulumi.Bool(monitoring))
	ex.Set("open_ports", pulumi.ToIntArray(rules.Ports()))
	ex.Set("instance_id", srv.ID())
	ex.Set("website_url", exports.URL(srv.PublicIp))

	// The monitoring flag also attaches an audit-log bucket with a
	// delivery policy; turning the flag off later leaves prior rule
	// history visible in the preview diff.
	if monitoring {
		logs, err := declareLogBucket(ctx, project)
		if err != nil {
			return err
		}
		ex.Set("log_bucket", logs.Bucket)
	}
	return ex.Publish(ctx)
}

func declareLogBucket(ctx *pulumi.Context, project string) (*s3.BucketV2, error) {
	name := naming.Name(project, "logs")
	logs, err := s3.NewBucketV2(ctx, name, &s3.BucketV2Args{
		Tags: pulumi.ToStringMap(naming.Tags(name, "bucket", "demo", nil)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare log bucket %s: %w", name, err)
	}

	policy := logs.Arn.ApplyT(func(arn string) (string, error) {
		doc := map[string]interface{}{
			"Version": "2012-10-17",
			"Statement": []interface{}{
				map[string]interface{}{
					"Sid":       "AWSCloudTrailAclCheck",
					"Effect":    "Allow",
					"Principal": map[string]interface{}{"Service": "cloudtrail.amazonaws.com"},
					"Action":    "s3:GetBucketAcl",
					"Resource":  arn,
				},
				map[string]interface{}{
					"Sid":       "AWSCloudTrailWrite",
					"Effect":    "Allow",
					"Principal": map[string]interface{}{"Service": "cloudtrail.amazonaws.com"},
					"Action":    "s3:PutObject",
					"Resource":  arn + "/*",
				},
			},
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("failed to render log bucket policy: %w", err)
		}
		return string(b), nil
	}).(pulumi.StringOutput)

	_, err = s3.NewBucketPolicy(ctx, naming.Name(project, "logs-policy"), &s3.BucketPolicyArgs{
		Bucket: logs.ID(),
		Policy: policy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare log bucket policy: %w", err)
	}
	return logs, nil
}
