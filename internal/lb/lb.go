// Package lb declares the optional load-balancer tier a feature flag
// attaches in front of a web fleet: one application load balancer, one
// target group with an attachment per instance, and one HTTP listener.
package lb

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	awslb "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lb"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/iac-labs/pulumi-aws-demos/internal/naming"
)

// TierArgs configures a load-balancer tier declaration.
type TierArgs struct {
	Project     string
	Environment string
	VpcID       pulumi.StringPtrInput
	// Subnets carry the balancer; application load balancers span at
	// least two subnets in distinct zones.
	Subnets          []*ec2.Subnet
	SecurityGroupIDs pulumi.StringArrayInput
	// Instances register as targets, one attachment each.
	Instances []*ec2.Instance
	// Port is the listener and target port; 80 when zero.
	Port int
	Tags map[string]string
}

// Tier groups the load-balancer resources one run declares.
type Tier struct {
	LoadBalancer *awslb.LoadBalancer
	TargetGroup  *awslb.TargetGroup
	Attachments  []*awslb.TargetGroupAttachment
	Listener     *awslb.Listener
}

// NewTier validates the layout and declares the tier. Any failure
// aborts before the remaining resources are declared.
func NewTier(ctx *pulumi.Context, args TierArgs) (*Tier, error) {
	if len(args.Subnets) < 2 {
		return nil, fmt.Errorf("load balancer %s: need at least 2 subnets, have %d",
			args.Project, len(args.Subnets))
	}
	if len(args.Instances) == 0 {
		return nil, fmt.Errorf("load balancer %s: at least one instance is required", args.Project)
	}
	port := args.Port
	if port == 0 {
		port = 80
	}

	subnetIDs := make(pulumi.StringArray, 0, len(args.Subnets))
	for _, sn := range args.Subnets {
		subnetIDs = append(subnetIDs, sn.ID())
	}

	name := naming.Name(args.Project, "alb")
	balancer, err := awslb.NewLoadBalancer(ctx, name, &awslb.LoadBalancerArgs{
		Name:             pulumi.String(name),
		Internal:         pulumi.Bool(false),
		LoadBalancerType: pulumi.String("application"),
		SecurityGroups:   args.SecurityGroupIDs,
		Subnets:          subnetIDs,
		Tags:             pulumi.ToStringMap(naming.Tags(name, "alb", args.Environment, args.Tags)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare load balancer %s: %w", name, err)
	}

	name = naming.Name(args.Project, "tg")
	tg, err := awslb.NewTargetGroup(ctx, name, &awslb.TargetGroupArgs{
		Name:     pulumi.String(name),
		Port:     pulumi.Int(port),
		Protocol: pulumi.String("HTTP"),
		VpcId:    args.VpcID,
		HealthCheck: &awslb.TargetGroupHealthCheckArgs{
			Path:               pulumi.String("/"),
			Interval:           pulumi.Int(30),
			HealthyThreshold:   pulumi.Int(2),
			UnhealthyThreshold: pulumi.Int(3),
		},
		Tags: pulumi.ToStringMap(naming.Tags(name, "tg", args.Environment, args.Tags)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare target group %s: %w", name, err)
	}

	attachments := make([]*awslb.TargetGroupAttachment, 0, len(args.Instances))
	for i, inst := range args.Instances {
		aName := naming.Indexed(args.Project, "tg-attach", i)
		att, err := awslb.NewTargetGroupAttachment(ctx, aName, &awslb.TargetGroupAttachmentArgs{
			TargetGroupArn: tg.Arn,
			TargetId:       inst.ID(),
			Port:           pulumi.Int(port),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to declare target attachment %s: %w", aName, err)
		}
		attachments = append(attachments, att)
	}

	name = naming.Name(args.Project, "listener")
	listener, err := awslb.NewListener(ctx, name, &awslb.ListenerArgs{
		LoadBalancerArn: balancer.Arn,
		Port:            pulumi.Int(port),
		Protocol:        pulumi.String("HTTP"),
		DefaultActions: awslb.ListenerDefaultActionArray{
			awslb.ListenerDefaultActionArgs{
				Type:           pulumi.String("forward"),
				TargetGroupArn: tg.Arn,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare listener %s: %w", name, err)
	}

	return &Tier{
		LoadBalancer: balancer,
		TargetGroup:  tg,
		Attachments:  attachments,
		Listener:     listener,
	}, nil
}
