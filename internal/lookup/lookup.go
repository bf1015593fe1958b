// Package lookup wraps the read-only data-source invokes the demos
// perform at the program boundary before declaring resources.
package lookup

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// AmazonLinuxAmi returns the id of the most recent Amazon Linux 2 AMI
// instead of hardcoding one per region.
func AmazonLinuxAmi(ctx *pulumi.Context) (string, error) {
	ami, err := ec2.LookupAmi(ctx, &ec2.LookupAmiArgs{
		MostRecent: pulumi.BoolRef(true),
		Owners:     []string{"amazon"},
		Filters: []ec2.GetAmiFilter{
			{Name: "name", Values: []string{"amzn2-ami-hvm-*"}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up Amazon Linux AMI: %w", err)
	}
	return ami.Id, nil
}

// AvailabilityZones returns the names of the zones currently available
// in the configured region.
func AvailabilityZones(ctx *pulumi.Context) ([]string, error) {
	azs, err := aws.GetAvailabilityZones(ctx, &aws.GetAvailabilityZonesArgs{
		State: pulumi.StringRef("available"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up availability zones: %w", err)
	}
	return azs.Names, nil
}

// Account returns the calling account id and region name.
func Account(ctx *pulumi.Context) (accountID, region string, err error) {
	ident, err := aws.GetCallerIdentity(ctx, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to look up caller identity: %w", err)
	}
	reg, err := aws.GetRegion(ctx, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to look up region: %w", err)
	}
	return ident.AccountId, reg.Name, nil
}
