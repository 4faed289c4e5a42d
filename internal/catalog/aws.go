package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog"
)

// AWSSource fetches the EC2 instance-type catalog for a region. Only
// current-generation, x86_64, non-metal types are included: those are the
// shapes the selector is allowed to recommend.
//
// DescribeInstanceTypes answers for the region the client points at, so the
// source holds a factory instead of one client.
type AWSSource struct {
	clientFor func(region string) ec2.DescribeInstanceTypesAPIClient
	logger    zerolog.Logger
}

// NewAWSSource creates an AWSSource backed by per-region EC2 clients.
func NewAWSSource(clientFor func(region string) ec2.DescribeInstanceTypesAPIClient, logger zerolog.Logger) *AWSSource {
	return &AWSSource{clientFor: clientFor, logger: logger}
}

// Fetch lists current-generation instance types and normalizes them into a
// Catalog. Memory is converted from MiB to GiB. Errors from the EC2 API are
// fatal: without a catalog nothing in the run can be sized.
func (s *AWSSource) Fetch(ctx context.Context, region string) (Catalog, error) {
	start := time.Now()

	input := &ec2.DescribeInstanceTypesInput{
		Filters: []ec2types.Filter{{
			Name:   aws.String("current-generation"),
			Values: []string{"true"},
		}},
	}

	cat := Catalog{}
	paginator := ec2.NewDescribeInstanceTypesPaginator(s.clientFor(region), input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe instance types in %s: %w", region, err)
		}
		for _, it := range page.InstanceTypes {
			name := string(it.InstanceType)
			if strings.HasSuffix(name, ".metal") {
				continue
			}
			if !supportsX86(it.ProcessorInfo) {
				continue
			}
			if it.VCpuInfo == nil || it.MemoryInfo == nil {
				continue
			}
			vcpu := int(aws.ToInt32(it.VCpuInfo.DefaultVCpus))
			memMiB := aws.ToInt64(it.MemoryInfo.SizeInMiB)
			if vcpu <= 0 || memMiB <= 0 {
				continue
			}
			cat[name] = Shape{
				Name:      name,
				VCPU:      vcpu,
				MemoryGiB: float64(memMiB) / 1024.0,
			}
		}
	}

	s.logger.Debug().
		Str("cloud", "aws").
		Str("region", region).
		Int("shapes", len(cat)).
		Dur("elapsed", time.Since(start)).
		Msg("instance catalog fetched")

	return cat, nil
}

func supportsX86(info *ec2types.ProcessorInfo) bool {
	if info == nil {
		return false
	}
	for _, arch := range info.SupportedArchitectures {
		if arch == ec2types.ArchitectureTypeX8664 {
			return true
		}
	}
	return false
}
