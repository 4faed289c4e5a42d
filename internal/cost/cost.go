// Package cost turns resolved prices and a workload's ancillary parameters
// into monthly line items. It is pure arithmetic: every provider lookup
// happens one layer above, so these functions need no network and no
// context.
package cost

import (
	"strings"

	"github.com/shopspring/decimal"

	"cloudsizer/internal/rates"
)

// Inputs carries already-resolved prices plus the row parameters the monthly
// math needs. ComputeHourly nil means no compute price was found; the
// compute line is zero and the caller records why. DatabaseHourly covers
// hourly-metered managed databases; DatabaseMonthly covers models that are
// already a monthly figure. At most one of the two should be set.
type Inputs struct {
	ComputeHourly *float64
	Hours         float64

	BlockGB   float64
	BlockType string

	ObjectGB float64

	NetworkProfile string

	DatabaseHourly  *float64
	DatabaseMonthly *float64

	Rates rates.Rates
}

// LineItems is the monthly cost breakdown for one row. Each component is
// independently rounded to cents; Total is the exact sum of the rounded
// components, so the breakdown always re-adds to the total.
type LineItems struct {
	HourlyCompute *float64

	Compute       decimal.Decimal
	StorageBlock  decimal.Decimal
	StorageObject decimal.Decimal
	Network       decimal.Decimal
	Database      decimal.Decimal
	Total         decimal.Decimal
}

func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Price computes the monthly breakdown.
func Price(in Inputs) LineItems {
	li := LineItems{HourlyCompute: in.ComputeHourly}

	hourly := 0.0
	if in.ComputeHourly != nil {
		hourly = *in.ComputeHourly
	}
	li.Compute = cents(hourly * in.Hours)

	li.StorageBlock = cents(maxZero(in.BlockGB) * blockRate(in.Rates, in.BlockType))
	li.StorageObject = cents(maxZero(in.ObjectGB) * in.Rates.S3StdGBMonth)
	li.Network = cents(networkMonthly(in.Rates, in.NetworkProfile))

	switch {
	case in.DatabaseMonthly != nil:
		li.Database = cents(*in.DatabaseMonthly)
	case in.DatabaseHourly != nil:
		li.Database = cents(*in.DatabaseHourly * in.Hours)
	default:
		li.Database = cents(0)
	}

	li.Total = li.Compute.Add(li.StorageBlock).Add(li.StorageObject).Add(li.Network).Add(li.Database)
	return li
}

// blockRate selects the $/GB-month tier for a block storage type. Anything
// that is not the provisioned-IOPS tier prices at the baseline tier.
func blockRate(r rates.Rates, blockType string) float64 {
	if strings.ToLower(strings.TrimSpace(blockType)) == "io1" {
		return r.EBSIo1GBMonth
	}
	return r.EBSGp3GBMonth
}

// networkMonthly maps an egress profile to assumed monthly GB times the
// egress rate. Absent or unrecognized profiles cost zero.
func networkMonthly(r rates.Rates, profile string) float64 {
	p := strings.ToLower(strings.TrimSpace(profile))
	if p == "" {
		return 0
	}
	gb, ok := r.NetworkProfileGB[p]
	if !ok {
		return 0
	}
	return gb * r.EgressGBPrice
}

func maxZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Annual is twelve months of the rounded monthly total.
func (li LineItems) Annual() decimal.Decimal {
	return li.Total.Mul(decimal.NewFromInt(12))
}
