// Demonstrates adopting a hand-created bucket: the declaration below
// matches the existing object byte for byte, so `pulumi import
// aws:s3/bucketV2:BucketV2 imported-bucket <name>` brings it under
// management without replacement, after which versioning and
// encryption layer on top.
package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/s3"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/iac-labs/pulumi-aws-demos/internal/exports"
	"github.com/iac-labs/pulumi-aws-demos/internal/logging"
	"github.com/iac-labs/pulumi-aws-demos/internal/lookup"
	"github.com/iac-labs/pulumi-aws-demos/internal/naming"
	"github.com/iac-labs/pulumi-aws-demos/internal/params"
)

func main() {
	pulumi.Run(run)
}

func run(ctx *pulumi.Context) error {
	logging.Init()
	project := ctx.Project() + "-" + ctx.Stack()

	r := params.New(ctx)
	bucketName, err := r.Require("bucket_name")
	if err != nil {
		return err
	}

	_, region, err := lookup.Account(ctx)
	if err != nil {
		return err
	}
	logging.Phase("adopting bucket", "bucket", bucketName, "region", region)

	bucket, err := s3.NewBucketV2(ctx, "imported-bucket", &s3.BucketV2Args{
		Bucket: pulumi.String(bucketName),
		Tags: pulumi.ToStringMap(naming.Tags(naming.Name(project, "imported"),
			"bucket", "demo", nil)),
	})
	if err != nil {
		return fmt.Errorf("failed to declare bucket %s: %w", bucketName, err)
	}

	_, err = s3.NewBucketVersioningV2(ctx, "imported-bucket-versioning", &s3.BucketVersioningV2Args{
		Bucket: bucket.ID(),
		VersioningConfiguration: &s3.BucketVersioningV2VersioningConfigurationArgs{
			Status: pulumi.String("Enabled"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to declare bucket versioning: %w", err)
	}

	_, err = s3.NewBucketServerSideEncryptionConfigurationV2(ctx, "imported-bucket-sse", &s3.BucketServerSideEncryptionConfigurationV2Args{
		Bucket: bucket.ID(),
		Rules: s3.BucketServerSideEncryptionConfigurationV2RuleArray{
			s3.BucketServerSideEncryptionConfigurationV2RuleArgs{
				ApplyServerSideEncryptionByDefault: s3.BucketServerSideEncryptionConfigurationV2RuleApplyServerSideEncryptionByDefaultArgs{
					SseAlgorithm: pulumi.String("AES256"),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to declare bucket encryption: %w", err)
	}

	ex := exports.Map{}
	ex.Set("bucket_name", bucket.Bucket)
	ex.Set("bucket_arn", bucket.Arn)
	ex.Set("region", pulumi.String(region))
	ex.Set("versioning_status", pulumi.String("Enabled"))
	ex.Set("encryption", pulumi.String("AES256"))
	return ex.Publish(ctx)
}
