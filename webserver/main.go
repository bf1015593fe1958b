// The smallest demo: one network, one security group, one instance
// serving a static page.
package main

import (
	"fmt"

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

	logging.Phase("resolving parameters", "project", project)
	r := params.New(ctx)
	instanceType := r.String("instance_type", "", "t2.micro")
	keyName := r.String("key_name", "", "")

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
		VpcCIDR:           "10.0.0.0/16",
		SubnetCIDRs:       []string{"10.0.1.0/24"},
		AvailabilityZones: zones[:1],
		PublicIP:          true,
	})
	if err != nil {
		return err
	}

	rules := security.NewRuleSet(security.HTTP())
	if keyName != "" {
		rules.Add(security.SSH())
	}
	sgName := naming.Name(project, "sg")
	sg, err := security.NewGroup(ctx, security.GroupArgs{
		Name:        sgName,
		Description: "web server access",
		VpcID:       topo.Vpc.ID(),
		Rules:       rules,
		Tags:        naming.Tags(sgName, "sg", "demo", nil),
	})
	if err != nil {
		return err
	}

	page, err := compute.WebPage(compute.PageData{
		Title:         "Pulumi Web Server",
		AppName:       ctx.Project(),
		Environment:   "demo",
		Stack:         ctx.Stack(),
		InstanceIndex: 1,
		InstanceCount: 1,
		InstanceType:  instanceType,
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
		KeyName:          keyName,
		Environment:      "demo",
	})
	if err != nil {
		return err
	}

	ex := exports.Map{}
	ex.Set("vpc_id", topo.Vpc.ID())
	ex.Set("instance_id", srv.ID())
	ex.Set("public_ip", srv.PublicIp)
	ex.Set("website_url", exports.URL(srv.PublicIp))
	if keyName != "" {
		ex.Set("ssh_command", exports.SSHCommand(srv.PublicIp, keyName+".pem"))
	}
	return ex.Publish(ctx)
}
