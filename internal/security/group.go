package security

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// GroupArgs configures a security-group declaration.
type GroupArgs struct {
	Name        string
	Description string
	VpcID       pulumi.StringPtrInput
	Rules       *RuleSet
	Tags        map[string]string
}

// NewGroup declares a security group carrying the rule set's ingress
// rules and an allow-all egress. The group references the owning
// network by identifier only.
func NewGroup(ctx *pulumi.Context, args GroupArgs) (*ec2.SecurityGroup, error) {
	sg, err := ec2.NewSecurityGroup(ctx, args.Name, &ec2.SecurityGroupArgs{
		Name:        pulumi.String(args.Name),
		Description: pulumi.String(args.Description),
		VpcId:       args.VpcID,
		Ingress:     args.Rules.IngressArgs(),
		Egress:      EgressAll(),
		Tags:        pulumi.ToStringMap(args.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare security group %s: %w", args.Name, err)
	}
	return sg, nil
}

// IngressArgs converts the rule set into SDK ingress arguments.
func (s *RuleSet) IngressArgs() ec2.SecurityGroupIngressArray {
	out := make(ec2.SecurityGroupIngressArray, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, ec2.SecurityGroupIngressArgs{
			Description: pulumi.String(r.Description),
			FromPort:    pulumi.Int(r.FromPort),
			ToPort:      pulumi.Int(r.ToPort),
			Protocol:    pulumi.String(r.Protocol),
			CidrBlocks:  pulumi.ToStringArray(r.CidrBlocks),
		})
	}
	return out
}

// EgressAll is the allow-all egress every demo group uses.
func EgressAll() ec2.SecurityGroupEgressArray {
	return ec2.SecurityGroupEgressArray{
		ec2.SecurityGroupEgressArgs{
			FromPort:   pulumi.Int(0),
			ToPort:     pulumi.Int(0),
			Protocol:   pulumi.String("-1"),
			CidrBlocks: pulumi.ToStringArray(Anywhere),
		},
	}
}
