package run

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"cloudsizer/internal/cost"
	"cloudsizer/internal/pricing"
	"cloudsizer/internal/workload"
)

// priceColumns are appended to the recommendation columns, in order.
var priceColumns = []string{
	"provider", "price_per_hour_usd", "monthly_compute_usd", "monthly_ebs_usd",
	"monthly_s3_usd", "monthly_network_usd", "monthly_db_usd",
	"monthly_total_usd", "pricing_note",
}

// PriceParams configures one price run.
type PriceParams struct {
	Cloud         workload.Cloud
	DefaultRegion string
	DefaultOS     string // compute OS when the row has none; defaults to Linux
	Hours         float64
	NoMonthly     bool // emit only the hourly rate, leave the breakdown blank
	RefreshAzure  bool // drop cached Azure retail sheets before pricing
}

// Price prices an already-sized table. The file must be single-cloud and
// match the run's cloud; a mismatch is an operator error, not a row error.
func (r *Runner) Price(ctx context.Context, in *Table, p PriceParams) (*Table, error) {
	if len(in.Rows) == 0 {
		return nil, ErrNoUsableRows
	}
	if err := checkSingleCloud(in, p.Cloud); err != nil {
		return nil, err
	}
	if p.DefaultOS == "" {
		p.DefaultOS = "Linux"
	}

	logger := r.Logger.With().Str("run_id", newRunID()).Logger()
	out := &Table{Header: append([]string(nil), in.Header...)}
	out.EnsureColumns(priceColumns...)

	refreshed := make(map[string]bool)
	for _, inRow := range in.Rows {
		row := cloneRow(inRow)
		r.priceRow(ctx, logger, row, p, refreshed)
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// checkSingleCloud rejects a table whose non-empty cloud values disagree
// with the expected cloud. Tokens naming neither provider are a mismatch,
// never a default: a file tagged for a cloud this system does not price
// must fail the run, not silently price as AWS.
func checkSingleCloud(in *Table, expected workload.Cloud) error {
	seen := make(map[string]struct{})
	for _, row := range in.Rows {
		c := strings.ToLower(strings.TrimSpace(row["cloud"]))
		if c != "" {
			seen[c] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for c := range seen {
		names = append(names, c)
	}
	sort.Strings(names)
	if len(names) == 1 {
		if c, ok := cloudToken(names[0]); ok && c == expected {
			return nil
		}
	}
	return fmt.Errorf("%w: run is for %s, file contains cloud=%s",
		ErrMixedClouds, expected, strings.Join(names, ", "))
}

// cloudToken maps a normalized cloud cell onto a provider, with no fallback.
func cloudToken(s string) (workload.Cloud, bool) {
	switch s {
	case "aws":
		return workload.AWS, true
	case "azure", "az":
		return workload.Azure, true
	}
	return "", false
}

func (r *Runner) priceRow(ctx context.Context, logger zerolog.Logger, row map[string]string, p PriceParams, refreshed map[string]bool) {
	req := workload.FromRecord(row)
	row["cloud"] = string(p.Cloud)
	row["provider"] = string(p.Cloud)

	itype := workload.Norm(row["recommended_instance_type"])
	if itype == "" {
		itype = workload.Norm(row["instance_type"])
	}
	region := workload.Norm(req.Region)
	if region == "" {
		region = p.DefaultRegion
	}
	if region == "" && p.Cloud == workload.Azure {
		region = "eastus"
	}

	osName := workload.Norm(req.OS)
	if osName == "" {
		osName = p.DefaultOS
	}
	license := effectiveLicense(req, p.Cloud)

	// BYOL compute is priced at the unlicensed base rate.
	osForCompute := osName
	if strings.EqualFold(license, "byol") {
		osForCompute = "Linux"
	}

	var note []string
	var computeHourly *float64
	switch {
	case itype == "" || region == "":
		note = append(note, "Missing instance_type or region")
	case p.Cloud == workload.Azure:
		if p.RefreshAzure && !refreshed[region] {
			r.AzurePrices.Refresh(region)
			refreshed[region] = true
		}
		if price, ok := r.AzurePrices.VMHourly(ctx, region, itype, osForCompute); ok {
			computeHourly = &price
		} else {
			note = append(note, "No VM price found (check size/region/OS)")
		}
	default:
		if price, ok := r.AWSPrices.VMHourly(ctx, region, itype, osForCompute); ok {
			computeHourly = &price
		} else {
			note = append(note, "No EC2 price found (check filters/region/OS)")
		}
	}

	if p.NoMonthly {
		row["price_per_hour_usd"] = hourlyString(computeHourly)
		for _, col := range []string{
			"monthly_compute_usd", "monthly_ebs_usd", "monthly_s3_usd",
			"monthly_network_usd", "monthly_db_usd", "monthly_total_usd",
		} {
			row[col] = ""
		}
		row["pricing_note"] = strings.Join(note, " | ")
		return
	}

	regionRates := r.Rates.ForRegion(region, r.RateOverrides)

	var dbHourly, dbMonthly *float64
	switch p.Cloud {
	case workload.AWS:
		dbHourly = r.awsDatabase(ctx, req, region, &note)
	case workload.Azure:
		dbMonthly = r.azureDatabase(req, region, license, p.Hours, &note)
	}

	li := cost.Price(cost.Inputs{
		ComputeHourly:   computeHourly,
		Hours:           p.Hours,
		BlockGB:         workload.Float(req.EBSGB, 0),
		BlockType:       workload.Norm(req.EBSType),
		ObjectGB:        workload.Float(req.S3GB, 0),
		NetworkProfile:  workload.Norm(req.NetworkProfile),
		DatabaseHourly:  dbHourly,
		DatabaseMonthly: dbMonthly,
		Rates:           regionRates,
	})

	row["price_per_hour_usd"] = hourlyString(computeHourly)
	row["monthly_compute_usd"] = li.Compute.StringFixed(2)
	row["monthly_ebs_usd"] = li.StorageBlock.StringFixed(2)
	row["monthly_s3_usd"] = li.StorageObject.StringFixed(2)
	row["monthly_network_usd"] = li.Network.StringFixed(2)
	row["monthly_db_usd"] = li.Database.StringFixed(2)
	row["monthly_total_usd"] = li.Total.StringFixed(2)
	row["pricing_note"] = strings.Join(note, " | ")

	logger.Debug().
		Str("id", req.ID).
		Str("instance_type", itype).
		Str("region", region).
		Str("monthly_total_usd", row["monthly_total_usd"]).
		Msg("priced row")
}

// awsDatabase resolves the RDS hourly rate for a row, or nil when the row
// has no database or no price was found.
func (r *Runner) awsDatabase(ctx context.Context, req workload.Request, region string, note *[]string) *float64 {
	engine := workload.Norm(req.DBEngine)
	class := workload.Norm(req.DBInstanceClass)
	if engine == "" || class == "" || region == "" {
		return nil
	}
	canon := pricing.NormalizeEngine(engine)
	license, licNote := pricing.ResolveRDSLicense(canon, workload.Norm(req.LicenseModel))
	if licNote != "" {
		*note = append(*note, licNote)
	}
	multiAZ := workload.Bool(req.MultiAZ, false)
	price, ok := r.AWSPrices.DBHourly(ctx, region, canon, class, license, multiAZ)
	if !ok {
		zero := 0.0
		return &zero
	}
	return &price
}

// azureDatabase estimates the Azure SQL monthly cost for SQL Server rows.
// Other engines are not priced on Azure.
func (r *Runner) azureDatabase(req workload.Request, region, license string, hours float64, note *[]string) *float64 {
	engine := strings.ToLower(workload.Norm(req.DBEngine))
	if engine != "sqlserver" && engine != "sql server" {
		return nil
	}
	deployment := strings.ToLower(workload.Norm(req.DBDeployment))
	if deployment != "single" && deployment != "mi" {
		deployment = "single"
	}
	tier := workload.Norm(req.DBTier)
	if tier == "" {
		tier = "GeneralPurpose"
	}
	vcores := workload.Float(req.DBVCores, 8)
	storageGB := workload.Float(req.DBStorageGB, 128)

	effective := "LicenseIncluded"
	if pricing.IsAHUB(license) {
		effective = "AHUB"
	}
	params := pricing.SQLParams{
		Deployment: deployment,
		Tier:       tier,
		Family:     workload.Norm(req.DBFamily),
		VCores:     vcores,
		StorageGB:  storageGB,
		License:    effective,
		Hours:      hours,
	}
	regionRates := r.Rates.ForRegion(region, r.RateOverrides)
	monthly, overridden := pricing.PriceAzureSQL(regionRates, r.SQLOverrides, region, params)

	// Side-by-side heuristic on default rates and no overrides, so the note
	// is comparable across regions.
	base := params
	base.License = "LicenseIncluded"
	li := pricing.MonthlyAzureSQL(r.Rates, base)
	base.License = "AHUB"
	ahub := pricing.MonthlyAzureSQL(r.Rates, base)
	*note = append(*note, fmt.Sprintf("Azure SQL %s %s %g vC, %g GB, effective_license=%s li=$%.2f ahub=$%.2f",
		deployment, tier, vcores, storageGB, effective, li, ahub))
	if overridden {
		*note = append(*note, "Azure SQL exact rate override applied")
	}

	return &monthly
}

func effectiveLicense(req workload.Request, cloud workload.Cloud) string {
	if lm := workload.Norm(req.LicenseModel); lm != "" {
		return lm
	}
	switch cloud {
	case workload.Azure:
		if workload.Bool(req.AHUB, false) {
			return "AHUB"
		}
		return "BYOL"
	default:
		if workload.Bool(req.BYOL, false) {
			return "BYOL"
		}
		return "AWS"
	}
}

func hourlyString(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 6, 64)
}
