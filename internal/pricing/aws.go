package pricing

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awspricing "github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingtypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// PricingEndpointRegion is where the AWS Price List API lives; it serves
// prices for every region regardless of where the client points.
const PricingEndpointRegion = "us-east-1"

// regionToLocation maps region codes to the human-readable "location" values
// the Price List API filters on.
var regionToLocation = map[string]string{
	"us-east-1":      "US East (N. Virginia)",
	"us-east-2":      "US East (Ohio)",
	"us-west-1":      "US West (N. California)",
	"us-west-2":      "US West (Oregon)",
	"ca-central-1":   "Canada (Central)",
	"eu-central-1":   "EU (Frankfurt)",
	"eu-central-2":   "EU (Zurich)",
	"eu-west-1":      "EU (Ireland)",
	"eu-west-2":      "EU (London)",
	"eu-west-3":      "EU (Paris)",
	"eu-north-1":     "EU (Stockholm)",
	"eu-south-1":     "EU (Milan)",
	"eu-south-2":     "EU (Spain)",
	"ap-south-1":     "Asia Pacific (Mumbai)",
	"ap-south-2":     "Asia Pacific (Hyderabad)",
	"ap-northeast-1": "Asia Pacific (Tokyo)",
	"ap-northeast-2": "Asia Pacific (Seoul)",
	"ap-northeast-3": "Asia Pacific (Osaka)",
	"ap-southeast-1": "Asia Pacific (Singapore)",
	"ap-southeast-2": "Asia Pacific (Sydney)",
	"ap-southeast-3": "Asia Pacific (Jakarta)",
	"ap-southeast-4": "Asia Pacific (Melbourne)",
	"ap-east-1":      "Asia Pacific (Hong Kong)",
	"sa-east-1":      "South America (Sao Paulo)",
	"me-south-1":     "Middle East (Bahrain)",
	"me-central-1":   "Middle East (UAE)",
	"af-south-1":     "Africa (Cape Town)",
	"us-gov-west-1":  "AWS GovCloud (US-West)",
	"us-gov-east-1":  "AWS GovCloud (US-East)",
}

// GetProductsAPIClient is the slice of the Price List client the adapter
// needs; satisfied by *pricing.Client and easy to fake in tests.
type GetProductsAPIClient interface {
	GetProducts(ctx context.Context, params *awspricing.GetProductsInput, optFns ...func(*awspricing.Options)) (*awspricing.GetProductsOutput, error)
}

// AWSPricer resolves EC2 and RDS on-demand prices through the AWS Price List
// API.
type AWSPricer struct {
	client GetProductsAPIClient
	logger zerolog.Logger
}

func NewAWSPricer(client GetProductsAPIClient, logger zerolog.Logger) *AWSPricer {
	return &AWSPricer{client: client, logger: logger}
}

// priceList mirrors the slice of a Price List API product entry we read: the
// first OnDemand price dimension carrying a USD hourly (or quantity) rate.
type priceList struct {
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				Unit         string            `json:"unit"`
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// firstUSD extracts the first USD rate from one serialized product. Zero is a
// legitimate published rate (free-tier dimensions) and is returned as-is.
func firstUSD(raw string) (float64, bool) {
	var pl priceList
	if err := json.Unmarshal([]byte(raw), &pl); err != nil {
		return 0, false
	}
	for _, term := range pl.Terms.OnDemand {
		for _, dim := range term.PriceDimensions {
			usd, ok := dim.PricePerUnit["USD"]
			if !ok || usd == "" {
				continue
			}
			if dim.Unit != "Hrs" && dim.Unit != "Quantity" {
				continue
			}
			rate, err := strconv.ParseFloat(usd, 64)
			if err != nil {
				continue
			}
			return rate, true
		}
	}
	return 0, false
}

func termMatch(field, value string) pricingtypes.Filter {
	return pricingtypes.Filter{
		Type:  pricingtypes.FilterTypeTermMatch,
		Field: aws.String(field),
		Value: aws.String(value),
	}
}

// getFirstPrice runs GetProducts with the given filters and returns the
// first product's USD rate. Not-found and API failures both come back as
// ok=false; the failure is logged, since the caller treats them the same.
func (p *AWSPricer) getFirstPrice(ctx context.Context, serviceCode string, filters []pricingtypes.Filter) (float64, bool) {
	start := time.Now()
	out, err := p.client.GetProducts(ctx, &awspricing.GetProductsInput{
		ServiceCode: aws.String(serviceCode),
		Filters:     filters,
		MaxResults:  aws.Int32(100),
	})
	if err != nil {
		p.logger.Warn().Err(err).Str("service", serviceCode).Msg("price list query failed")
		return 0, false
	}
	for _, raw := range out.PriceList {
		if rate, ok := firstUSD(raw); ok {
			p.logger.Debug().
				Str("service", serviceCode).
				Float64("usd_hourly", rate).
				Dur("elapsed", time.Since(start)).
				Msg("resolved on-demand price")
			return rate, true
		}
	}
	return 0, false
}

// VMHourly returns the on-demand hourly rate for an EC2 instance type, shared
// tenancy, no pre-installed software.
func (p *AWSPricer) VMHourly(ctx context.Context, region, instanceType, osName string) (float64, bool) {
	location, ok := regionToLocation[region]
	if !ok {
		p.logger.Warn().Str("region", region).Msg("no price list location for region")
		return 0, false
	}
	return p.getFirstPrice(ctx, "AmazonEC2", []pricingtypes.Filter{
		termMatch("instanceType", instanceType),
		termMatch("location", location),
		termMatch("operatingSystem", osName),
		termMatch("tenancy", "Shared"),
		termMatch("preInstalledSw", "NA"),
		termMatch("capacitystatus", "Used"),
	})
}

// DBHourly returns the on-demand hourly rate for an RDS instance class.
// licenseModel "byol" maps to the Bring-your-own-license offer; anything else
// prices as License included.
func (p *AWSPricer) DBHourly(ctx context.Context, region, engine, instanceClass, licenseModel string, multiAZ bool) (float64, bool) {
	location, ok := regionToLocation[region]
	if !ok {
		p.logger.Warn().Str("region", region).Msg("no price list location for region")
		return 0, false
	}
	lm := "License included"
	if licenseModel == "byol" {
		lm = "Bring your own license"
	}
	dep := "Single-AZ"
	if multiAZ {
		dep = "Multi-AZ"
	}
	return p.getFirstPrice(ctx, "AmazonRDS", []pricingtypes.Filter{
		termMatch("location", location),
		termMatch("databaseEngine", engine),
		termMatch("instanceType", instanceClass),
		termMatch("deploymentOption", dep),
		termMatch("licenseModel", lm),
	})
}
