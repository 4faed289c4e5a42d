// Package validate gates workload rows before sizing and pricing. Checks run
// in two tiers: structural problems (unknown cloud, bad region, no capacity
// signal) block recommendation outright, while missing pricing inputs demote
// a row to recommendation-only instead of failing it.
package validate

import (
	"fmt"
	"strings"

	"cloudsizer/internal/workload"
)

type Level string

const (
	LevelError Level = "error"
	LevelWarn  Level = "warn"
)

// Issue is a single finding against one field of a row.
type Issue struct {
	Level   Level
	Field   string
	Reason  string
	FixHint string
}

type Status string

const (
	StatusOK      Status = "ok"
	StatusRecOnly Status = "rec_only"
	StatusError   Status = "error"
)

// Blocking names the furthest pipeline stage a row may reach.
type Blocking string

const (
	BlockingNone           Blocking = ""
	BlockingPricing        Blocking = "pricing"
	BlockingRecommendation Blocking = "recommendation"
)

// Result carries the gate decision for one row. NormalizedRegion is set
// whenever the region resolved to a canonical code, including when the raw
// value only needed alias or case normalization.
type Result struct {
	Status           Status
	Blocking         Blocking
	NormalizedRegion string
	Issues           []Issue
}

func (r *Result) add(level Level, field, reason, hint string) {
	r.Issues = append(r.Issues, Issue{Level: level, Field: field, Reason: reason, FixHint: hint})
}

func (r *Result) hasError() bool {
	for _, is := range r.Issues {
		if is.Level == LevelError {
			return true
		}
	}
	return false
}

var validOS = map[string]struct{}{
	"linux": {}, "windows": {}, "rhel": {}, "suse": {},
}

var validPurchase = map[string]struct{}{
	"on_demand": {}, "on-demand": {}, "ondemand": {}, "spot": {},
	"reserved": {}, "reserved_1yr": {}, "reserved_3yr": {},
}

var validArch = map[string]struct{}{
	"x86_64": {}, "amd64": {}, "arm64": {}, "aarch64": {},
}

// Row validates a single workload request. Region errors short-circuit: once
// the region cannot be resolved the remaining structural checks are skipped,
// since everything downstream is region-scoped anyway.
func Row(req workload.Request) Result {
	res := Result{Status: StatusOK, Blocking: BlockingNone}

	cloudRaw := workload.Norm(req.Cloud)
	if workload.IsMissing(req.Cloud) {
		res.add(LevelError, "cloud", "cloud is missing", "set cloud to aws or azure")
	} else if cloudRaw != "aws" && cloudRaw != "azure" && cloudRaw != "az" {
		res.add(LevelError, "cloud", fmt.Sprintf("unknown cloud %q", cloudRaw), "set cloud to aws or azure")
	}
	cloud := workload.ParseCloud(req.Cloud)

	if workload.IsMissing(req.Region) {
		res.add(LevelError, "region", "region is missing", "set region to a canonical region code")
	} else if stop := checkRegion(&res, cloud, req.Region); stop {
		res.Status = StatusError
		res.Blocking = BlockingRecommendation
		return res
	}

	vcpuOK := false
	if v, ok := workload.PositiveFloat(req.VCPU); ok && v > 0 {
		vcpuOK = true
	}
	memOK := false
	if m, ok := workload.PositiveFloat(req.MemoryGiB); ok && m > 0 {
		memOK = true
	}
	if !vcpuOK && !memOK {
		res.add(LevelError, "vcpu", "no usable capacity signal: vcpu and memory_gib are both missing or non-positive",
			"provide a positive vcpu or memory_gib")
	}

	if res.hasError() {
		res.Status = StatusError
		res.Blocking = BlockingRecommendation
		return res
	}

	// Tier B: advisory enums first, then the pricing-required set.
	if !workload.IsMissing(req.OS) {
		if _, ok := validOS[workload.Norm(req.OS)]; !ok {
			res.add(LevelWarn, "os", fmt.Sprintf("unrecognized os %q", workload.Norm(req.OS)),
				"expected one of linux, windows, rhel, suse")
		}
	}
	if !workload.IsMissing(req.PurchaseOption) {
		if _, ok := validPurchase[workload.Norm(req.PurchaseOption)]; !ok {
			res.add(LevelWarn, "purchase_option", fmt.Sprintf("unrecognized purchase_option %q", workload.Norm(req.PurchaseOption)),
				"expected on_demand, spot, reserved, reserved_1yr or reserved_3yr")
		}
	}
	if !workload.IsMissing(req.Profile) {
		switch workload.Norm(req.Profile) {
		case "balanced", "compute", "memory", "general", "general_purpose", "cpu", "compute_optimized", "ram", "memory_optimized":
		default:
			res.add(LevelWarn, "profile", fmt.Sprintf("unrecognized profile %q", workload.Norm(req.Profile)),
				"expected balanced, compute or memory; it will be inferred from the vcpu:memory ratio")
		}
	}
	if !workload.IsMissing(req.Arch) {
		if _, ok := validArch[workload.Norm(req.Arch)]; !ok {
			res.add(LevelWarn, "arch", fmt.Sprintf("unrecognized arch %q", workload.Norm(req.Arch)), "expected x86_64 or arm64")
		}
	}

	missingPricing := false
	for _, f := range []struct {
		name string
		val  string
	}{
		{"os", req.OS},
		{"purchase_option", req.PurchaseOption},
		{"root_gb", req.RootGB},
		{"root_type", req.RootType},
	} {
		if workload.IsMissing(f.val) {
			missingPricing = true
			res.add(LevelWarn, f.name, f.name+" is missing", "required for pricing; row is priced as recommendation-only without it")
		}
	}

	switch cloud {
	case workload.AWS:
		if !workload.IsMissing(req.BYOL) && !workload.IsBoolLike(req.BYOL) {
			res.add(LevelWarn, "byol", fmt.Sprintf("byol value %q is not boolean", workload.Norm(req.BYOL)), "use true or false")
		}
	case workload.Azure:
		if !workload.IsMissing(req.AHUB) && !workload.IsBoolLike(req.AHUB) {
			res.add(LevelWarn, "ahub", fmt.Sprintf("ahub value %q is not boolean", workload.Norm(req.AHUB)), "use true or false")
		}
	}

	if missingPricing {
		res.Status = StatusRecOnly
		res.Blocking = BlockingPricing
	}
	return res
}

// checkRegion resolves and validates the region for the given cloud. It
// records normalization warnings, and on failure records an error with the
// closest candidates plus a cross-cloud hint when the value looks like it
// belongs to the other provider. Returns true when validation must stop.
func checkRegion(res *Result, cloud workload.Cloud, raw string) (stop bool) {
	token := strings.ToLower(strings.TrimSpace(raw))
	switch cloud {
	case workload.Azure:
		norm := NormalizeAzureRegion(raw)
		if isAzureRegion(norm) {
			res.NormalizedRegion = norm
			if norm != token {
				res.add(LevelWarn, "region", fmt.Sprintf("region %q normalized to %q", raw, norm), "use the canonical slug directly")
			}
			return false
		}
		hint := "closest matches: " + strings.Join(closestRegions(norm, AzureRegions()), ", ")
		if isAWSRegion(NormalizeAWSRegion(raw)) {
			hint += "; value looks like an AWS region but cloud is azure"
		}
		res.add(LevelError, "region", fmt.Sprintf("unknown azure region %q", raw), hint)
		return true
	default:
		norm := NormalizeAWSRegion(raw)
		if isAWSRegion(norm) {
			res.NormalizedRegion = norm
			if norm != token {
				res.add(LevelWarn, "region", fmt.Sprintf("region %q normalized to %q", raw, norm), "use the canonical region code directly")
			}
			return false
		}
		hint := "closest matches: " + strings.Join(closestRegions(norm, AWSRegions()), ", ")
		if isAzureRegion(NormalizeAzureRegion(raw)) {
			hint += "; value looks like an Azure region but cloud is aws"
		}
		res.add(LevelError, "region", fmt.Sprintf("unknown aws region %q", raw), hint)
		return true
	}
}

// ReportRow is one line of the batch validator report artifact.
type ReportRow struct {
	RowIndex int
	RowID    string
	Status   Status
	Blocking Blocking
	Reasons  string
	FixHints string
}

// Report summarizes a full batch: indexes partitioned by gate outcome plus
// flattened per-row report lines.
type Report struct {
	OK      []int
	RecOnly []int
	Errored []int
	Results []Result
	Rows    []ReportRow
}

// Batch validates every request and assembles the report. Row indexes are
// zero-based positions in the input slice.
func Batch(reqs []workload.Request) Report {
	rep := Report{Results: make([]Result, 0, len(reqs))}
	for i, req := range reqs {
		res := Row(req)
		rep.Results = append(rep.Results, res)
		switch res.Status {
		case StatusOK:
			rep.OK = append(rep.OK, i)
		case StatusRecOnly:
			rep.RecOnly = append(rep.RecOnly, i)
		default:
			rep.Errored = append(rep.Errored, i)
		}
		reasons := make([]string, 0, len(res.Issues))
		hints := make([]string, 0, len(res.Issues))
		for _, is := range res.Issues {
			reasons = append(reasons, string(is.Level)+": "+is.Field+": "+is.Reason)
			if is.FixHint != "" {
				hints = append(hints, is.FixHint)
			}
		}
		rep.Rows = append(rep.Rows, ReportRow{
			RowIndex: i,
			RowID:    req.ID,
			Status:   res.Status,
			Blocking: res.Blocking,
			Reasons:  strings.Join(reasons, "; "),
			FixHints: strings.Join(hints, "; "),
		})
	}
	return rep
}
