// Demonstrates configuration: required keys, typed and validated
// optionals, environment-variable fallbacks, and secrets that never
// surface in plaintext.
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

	// Every parameter resolves before the first resource is declared;
	// a validation failure aborts with nothing submitted.
	logging.Phase("resolving parameters")
	r := params.New(ctx)
	appName, err := r.Require("app_name")
	if err != nil {
		return err
	}
	environment, err := r.Enum("environment", "DEPLOY_ENV", "development", params.AllowedEnvironments...)
	if err != nil {
		return err
	}
	count, err := r.IntInRange("instance_count", 1, 1, 10)
	if err != nil {
		return err
	}
	instanceType := r.String("instance_type", "", "t2.micro")
	enableHTTPS, err := r.Bool("enable_https", false)
	if err != nil {
		return err
	}
	adminCIDRs := r.CSV("admin_cidrs", "0.0.0.0/0")
	dbPassword, err := r.RequireSecret("db_password")
	if err != nil {
		return err
	}
	apiKey := r.Secret("api_key", "demo-api-key")

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

	logging.Phase("declaring network topology", "app", appName, "environment", environment)
	topo, err := network.NewTopology(ctx, network.TopologyArgs{
		Project:           project,
		Environment:       environment,
		VpcCIDR:           "10.2.0.0/16",
		SubnetCIDRs:       []string{"10.2.1.0/24"},
		AvailabilityZones: zones[:1],
		PublicIP:          true,
		Tags:              map[string]string{"Application": appName},
	})
	if err != nil {
		return err
	}

	rules := security.NewRuleSet(security.HTTP(), security.SSH(adminCIDRs...))
	if enableHTTPS {
		rules.Add(security.HTTPS())
	}
	sgName := naming.Name(project, "sg")
	sg, err := security.NewGroup(ctx, security.GroupArgs{
		Name:        sgName,
		Description: fmt.Sprintf("%s access policy", appName),
		VpcID:       topo.Vpc.ID(),
		Rules:       rules,
		Tags:        naming.Tags(sgName, "sg", environment, map[string]string{"Application": appName}),
	})
	if err != nil {
		return err
	}

	logging.Phase("declaring fleet", "count", count)
	fleet, err := compute.NewFleet(ctx, compute.FleetArgs{
		Project:          project,
		Count:            count,
		InstanceType:     instanceType,
		Ami:              ami,
		Subnets:          topo.Subnets,
		SecurityGroupIDs: pulumi.StringArray{sg.ID()},
		UserData: func(i int) (pulumi.StringInput, error) {
			page, err := compute.WebPage(compute.PageData{
				Title:         appName,
				AppName:       appName,
				Environment:   environment,
				Stack:         ctx.Stack(),
				InstanceIndex: i + 1,
				InstanceCount: count,
				InstanceType:  instanceType,
			})
			if err != nil {
				return nil, err
			}
			// Secrets ride along in the payload but stay secret-tainted.
			return compute.WithSecrets(page, dbPassword, apiKey), nil
		},
		PublicIP:    true,
		Environment: environment,
		Tags:        map[string]string{"Application": appName},
	})
	if err != nil {
		return err
	}

	ips := make([]pulumi.StringOutput, 0, len(fleet))
	for _, inst := range fleet {
		ips = append(ips, inst.PublicIp)
	}

	ex := exports.Map{}
	ex.Set("app_name", pulumi.String(appName))
	ex.Set("environment", pulumi.String(environment))
	ex.Set("instance_count", pulumi.Int(count))
	ex.Set("https_enabled", pulumi.Bool(enableHTTPS))
	ex.Set("website_urls", exports.URLs(ips...))
	ex.Set("secrets", exports.SecretMarkers("db_password", "api_key"))
	return ex.Publish(ctx)
}
