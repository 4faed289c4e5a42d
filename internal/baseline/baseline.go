// Package baseline estimates the fixed monthly platform cost of a landing
// zone: Transit Gateway attachments and data, interface endpoints per AZ, CI
// runner instances with their OS disks, and the Terraform state bucket.
// These exist before the first workload row is deployed, so they are
// itemized separately from per-row pricing.
package baseline

import (
	"context"
	"fmt"
	"os"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cloudsizer/internal/pricing"
	"cloudsizer/internal/rates"
)

// DefaultOverridesPath is the optional per-region rate override file.
const DefaultOverridesPath = "prices/aws_vpc_baseline.json"

// Inputs describes one landing zone to estimate.
type Inputs struct {
	Region         string
	TGWAttachments int
	TGWDataGB      float64
	VPCEBasePerAZ  int
	VPCEExtraPerAZ int
	VPCEAZs        int
	VPCEDataGB     float64
	HoursPerMonth  float64

	RunnerInstanceType string
	RunnerCount        int
	RunnerOSGB         float64
	TFBackendS3GB      float64
}

// Rates are the $/unit constants the estimate runs on.
type Rates struct {
	TGWAttachmentHourly float64 `json:"tgw_attachment_hourly"`
	TGWDataGB           float64 `json:"tgw_data_gb"`
	VPCEIfHourly        float64 `json:"vpce_if_hourly"`
	VPCEDataGB          float64 `json:"vpce_data_gb"`
	EBSGp3GBMonth       float64 `json:"ebs_gp3_gb_month"`
	S3StdGBMonth        float64 `json:"s3_std_gb_month"`
}

// DefaultRates returns built-in conservative rates, storage reusing the main
// cost model, with environment overrides applied.
func DefaultRates(logger zerolog.Logger, cm rates.Rates) Rates {
	r := Rates{
		TGWAttachmentHourly: 0.06,
		TGWDataGB:           0.02,
		VPCEIfHourly:        0.01,
		VPCEDataGB:          0.01,
		EBSGp3GBMonth:       cm.EBSGp3GBMonth,
		S3StdGBMonth:        cm.S3StdGBMonth,
	}
	envFloat(logger, "TGW_ATTACHMENT_HOURLY", &r.TGWAttachmentHourly)
	envFloat(logger, "TGW_DATA_GB", &r.TGWDataGB)
	envFloat(logger, "VPCE_IF_HOURLY", &r.VPCEIfHourly)
	envFloat(logger, "VPCE_DATA_GB", &r.VPCEDataGB)
	return r
}

func envFloat(logger zerolog.Logger, name string, dst *float64) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil || parsed < 0 {
		logger.Warn().Str("value", v).Msgf("invalid %s, using default", name)
		return
	}
	*dst = parsed
}

// ResolveRates merges the per-region JSON override file over the defaults.
// A missing file is normal.
func ResolveRates(logger zerolog.Logger, cm rates.Rates, region, path string) Rates {
	base := DefaultRates(logger, cm)
	if path == "" {
		path = DefaultOverridesPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", path).Msg("cannot read baseline overrides")
		}
		return base
	}
	var byRegion map[string]map[string]float64
	if err := json.Unmarshal(data, &byRegion); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("cannot parse baseline overrides")
		return base
	}
	ov, ok := byRegion[region]
	if !ok {
		return base
	}
	apply := func(dst *float64, key string) {
		if v, found := ov[key]; found {
			*dst = v
		}
	}
	apply(&base.TGWAttachmentHourly, "tgw_attachment_hourly")
	apply(&base.TGWDataGB, "tgw_data_gb")
	apply(&base.VPCEIfHourly, "vpce_if_hourly")
	apply(&base.VPCEDataGB, "vpce_data_gb")
	apply(&base.EBSGp3GBMonth, "ebs_gp3_gb_month")
	apply(&base.S3StdGBMonth, "s3_std_gb_month")
	return base
}

// Item is one estimate line. TOTAL is appended as the final Item with only
// Component and MonthlyUSD set.
type Item struct {
	Component  string
	Detail     string
	Qty        string
	Unit       string
	Rate       string
	MonthlyUSD string
	Region     string
	Notes      string
}

// Estimate itemizes the landing-zone cost. The runner's hourly rate comes
// from the GITRUNNER_HOURLY environment variable when set, otherwise from
// the compute price source; with neither, the compute line prices at zero
// rather than failing the estimate.
func Estimate(ctx context.Context, logger zerolog.Logger, in Inputs, r Rates, compute pricing.ComputeSource) ([]Item, decimal.Decimal) {
	hours := in.HoursPerMonth
	hoursNote := fmt.Sprintf("%g hours assumed", hours)

	tgwAttach := float64(maxInt(0, in.TGWAttachments)) * r.TGWAttachmentHourly * hours
	tgwData := maxZero(in.TGWDataGB) * r.TGWDataGB

	azs := maxInt(1, in.VPCEAZs)
	endpoints := (maxInt(0, in.VPCEBasePerAZ) + maxInt(0, in.VPCEExtraPerAZ)) * azs
	vpceAttach := float64(endpoints) * r.VPCEIfHourly * hours
	vpceData := maxZero(in.VPCEDataGB) * r.VPCEDataGB

	items := []Item{
		{
			Component: "TGW Attachment", Detail: "attachments",
			Qty: strconv.Itoa(in.TGWAttachments), Unit: "attachment-hour",
			Rate: rate5(r.TGWAttachmentHourly), MonthlyUSD: usd2(tgwAttach),
			Region: in.Region, Notes: hoursNote,
		},
		{
			Component: "TGW Data", Detail: "data processed",
			Qty: qty(in.TGWDataGB), Unit: "GB",
			Rate: rate5(r.TGWDataGB), MonthlyUSD: usd2(tgwData),
			Region: in.Region,
		},
		{
			Component: "Interface Endpoint", Detail: "endpoints x AZs",
			Qty: strconv.Itoa(endpoints), Unit: "endpoint-hour",
			Rate: rate5(r.VPCEIfHourly), MonthlyUSD: usd2(vpceAttach),
			Region: in.Region, Notes: hoursNote,
		},
		{
			Component: "Interface Endpoint Data", Detail: "data processed",
			Qty: qty(in.VPCEDataGB), Unit: "GB",
			Rate: rate5(r.VPCEDataGB), MonthlyUSD: usd2(vpceData),
			Region: in.Region,
		},
	}
	total := tgwAttach + tgwData + vpceAttach + vpceData

	if in.RunnerCount > 0 {
		hourly := runnerHourly(ctx, logger, in, compute)
		computeMonthly := float64(in.RunnerCount) * hourly * hours
		items = append(items, Item{
			Component: "GitRunner EC2",
			Detail:    fmt.Sprintf("%s x %d", in.RunnerInstanceType, in.RunnerCount),
			Qty:       strconv.Itoa(in.RunnerCount), Unit: "instance-hour",
			Rate: rate5(hourly), MonthlyUSD: usd2(computeMonthly),
			Region: in.Region, Notes: hoursNote,
		})
		ebsMonthly := float64(in.RunnerCount) * maxZero(in.RunnerOSGB) * r.EBSGp3GBMonth
		items = append(items, Item{
			Component: "GitRunner EBS (OS)",
			Detail:    fmt.Sprintf("gp3 %g GB x %d", in.RunnerOSGB, in.RunnerCount),
			Qty:       qty(in.RunnerOSGB), Unit: "GB-month",
			Rate: rate5(r.EBSGp3GBMonth), MonthlyUSD: usd2(ebsMonthly),
			Region: in.Region,
		})
		total += computeMonthly + ebsMonthly
	}

	if in.TFBackendS3GB > 0 {
		s3Monthly := in.TFBackendS3GB * r.S3StdGBMonth
		items = append(items, Item{
			Component: "Terraform Backend S3", Detail: "Standard storage",
			Qty: qty(in.TFBackendS3GB), Unit: "GB-month",
			Rate: rate5(r.S3StdGBMonth), MonthlyUSD: usd2(s3Monthly),
			Region: in.Region,
		})
		total += s3Monthly
	}

	totalDec := decimal.NewFromFloat(total).Round(2)
	items = append(items, Item{
		Component:  "TOTAL",
		MonthlyUSD: totalDec.StringFixed(2),
		Region:     in.Region,
	})
	return items, totalDec
}

func runnerHourly(ctx context.Context, logger zerolog.Logger, in Inputs, compute pricing.ComputeSource) float64 {
	if env := os.Getenv("GITRUNNER_HOURLY"); env != "" {
		if v, err := strconv.ParseFloat(env, 64); err == nil {
			return v
		}
		logger.Warn().Str("value", env).Msg("invalid GITRUNNER_HOURLY, falling back to price lookup")
	}
	if compute == nil {
		return 0
	}
	if p, ok := compute.VMHourly(ctx, in.Region, in.RunnerInstanceType, "Linux"); ok {
		return p
	}
	logger.Warn().
		Str("instance_type", in.RunnerInstanceType).
		Str("region", in.Region).
		Msg("no price found for runner instance, compute line priced at zero")
	return 0
}

func rate5(v float64) string { return strconv.FormatFloat(v, 'f', 5, 64) }

func usd2(v float64) string { return decimal.NewFromFloat(v).Round(2).StringFixed(2) }

func qty(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
