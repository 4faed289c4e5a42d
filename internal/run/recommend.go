package run

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cloudsizer/internal/catalog"
	"cloudsizer/internal/sizing"
	"cloudsizer/internal/validate"
	"cloudsizer/internal/workload"
)

// recommendColumns are appended to the input columns, in order.
var recommendColumns = []string{
	"id", "cloud", "requested_vcpu", "requested_memory_gib", "profile", "region",
	"recommended_instance_type", "rec_vcpu", "rec_memory_gib",
	"overprov_vcpu", "overprov_mem_gib", "fit_reason", "note",
}

const (
	noteInvalidCapacity = "Invalid vcpu/memory_gib"
	noteNoAzureSize     = "No matching size found in region."
	noteNoAWSSize       = "No matching current-gen x86_64 found; consider GPU/ARM or older-gen."
)

// RecommendParams configures one recommend run.
type RecommendParams struct {
	Cloud  workload.Cloud
	Region string // overrides every row's region when set
	Strict bool
}

// RecommendOutput carries the sized rows plus the full validator report.
// On ErrStrict the report is still populated so the caller can write it.
type RecommendOutput struct {
	RunID  string
	Table  *Table
	Report validate.Report
}

// Recommend validates the batch and sizes every row that passed the gate.
// Rows with validation errors are excluded from the output table; rows
// flagged rec_only are sized but will carry incomplete pricing inputs
// downstream. Catalogs are fetched once per (cloud, region) for the whole
// batch.
func (r *Runner) Recommend(ctx context.Context, in *Table, p RecommendParams) (*RecommendOutput, error) {
	out := &RecommendOutput{RunID: newRunID()}
	logger := r.Logger.With().Str("run_id", out.RunID).Logger()

	// The run's cloud and any region override are stamped onto every row
	// before validation, matching what will be sized.
	for _, row := range in.Rows {
		row["cloud"] = string(p.Cloud)
		if p.Region != "" {
			row["region"] = p.Region
		}
	}

	reqs := make([]workload.Request, 0, len(in.Rows))
	for _, row := range in.Rows {
		reqs = append(reqs, workload.FromRecord(row))
	}
	out.Report = validate.Batch(reqs)
	logger.Info().
		Int("rows", len(reqs)).
		Int("ok", len(out.Report.OK)).
		Int("rec_only", len(out.Report.RecOnly)).
		Int("error", len(out.Report.Errored)).
		Msg("validation finished")

	if p.Strict && (len(out.Report.Errored) > 0 || len(out.Report.RecOnly) > 0) {
		return out, ErrStrict
	}

	catalogs := make(map[string]catalog.Catalog)
	fetch := func(cl workload.Cloud, region string) (catalog.Catalog, error) {
		key := string(cl) + "/" + region
		if cat, ok := catalogs[key]; ok {
			return cat, nil
		}
		src := r.AWSCatalog
		if cl == workload.Azure {
			src = r.AzureCatalog
		}
		if src == nil {
			return nil, fmt.Errorf("no %s catalog source configured", cl)
		}
		cat, err := src.Fetch(ctx, region)
		if err != nil {
			return nil, fmt.Errorf("fetching %s catalog for %s: %w", cl, region, err)
		}
		logger.Debug().Str("cloud", string(cl)).Str("region", region).Int("shapes", len(cat)).Msg("catalog loaded")
		catalogs[key] = cat
		return cat, nil
	}

	outTable := &Table{Header: append([]string(nil), in.Header...)}
	outTable.EnsureColumns(recommendColumns...)

	// OK rows first, then rec_only, as downstream pricing expects.
	for _, i := range append(append([]int(nil), out.Report.OK...), out.Report.RecOnly...) {
		row := cloneRow(in.Rows[i])
		if err := r.recommendRow(row, reqs[i], out.Report.Results[i], p, fetch); err != nil {
			return out, err
		}
		outTable.Rows = append(outTable.Rows, row)
	}
	if len(outTable.Rows) == 0 {
		return out, ErrNoUsableRows
	}
	out.Table = outTable
	return out, nil
}

// recommendRow sizes one row in place. Returns an error only for conditions
// that invalidate the whole run (unusable catalog session, missing region).
func (r *Runner) recommendRow(row map[string]string, req workload.Request, vres validate.Result,
	p RecommendParams, fetch func(workload.Cloud, string) (catalog.Catalog, error)) error {

	row["id"] = req.ID
	row["cloud"] = string(p.Cloud)

	vcpu, vErr := strconv.Atoi(strings.TrimSpace(req.VCPU))
	mem, mErr := strconv.ParseFloat(strings.TrimSpace(req.MemoryGiB), 64)
	if vErr != nil || mErr != nil {
		for _, col := range []string{
			"recommended_instance_type", "rec_vcpu", "rec_memory_gib",
			"overprov_vcpu", "overprov_mem_gib", "fit_reason",
		} {
			row[col] = ""
		}
		row["note"] = noteInvalidCapacity
		return nil
	}

	prof, known := sizing.ParseProfile(req.Profile)
	if !known {
		prof = sizing.InferProfile(vcpu, mem)
	}
	row["requested_vcpu"] = strconv.Itoa(vcpu)
	row["requested_memory_gib"] = formatFloat(mem)
	row["profile"] = string(prof)

	var outcome sizing.Outcome
	switch p.Cloud {
	case workload.Azure:
		region := vres.NormalizedRegion
		if region == "" {
			region = "eastus"
		}
		cat, err := fetch(workload.Azure, region)
		if err != nil {
			return err
		}
		outcome = sizing.SelectSmallest(cat, vcpu, mem)
		row["region"] = region
	default:
		region := vres.NormalizedRegion
		if region == "" {
			region = p.Region
		}
		if region == "" {
			return ErrRegionRequired
		}
		cat, err := fetch(workload.AWS, region)
		if err != nil {
			return err
		}
		outcome = sizing.Select(cat, prof, vcpu, mem)
		row["region"] = region
	}

	if outcome.Chosen == nil {
		row["recommended_instance_type"] = ""
		row["rec_vcpu"] = ""
		row["rec_memory_gib"] = ""
		row["overprov_vcpu"] = ""
		row["overprov_mem_gib"] = ""
		row["fit_reason"] = ""
		if p.Cloud == workload.Azure {
			row["note"] = noteNoAzureSize
		} else {
			row["note"] = noteNoAWSSize
		}
		return nil
	}

	row["recommended_instance_type"] = outcome.Chosen.Name
	row["rec_vcpu"] = strconv.Itoa(outcome.Chosen.VCPU)
	row["rec_memory_gib"] = strconv.FormatFloat(outcome.Chosen.MemoryGiB, 'f', 2, 64)
	row["overprov_vcpu"] = strconv.Itoa(outcome.OverprovVCPU)
	row["overprov_mem_gib"] = formatFloat(outcome.OverprovMemGiB)
	row["fit_reason"] = string(outcome.Fit)
	row["note"] = ""
	return nil
}

func cloneRow(row map[string]string) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
