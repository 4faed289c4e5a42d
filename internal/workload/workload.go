// Package workload models a single input row of the sizing/pricing batch.
//
// Rows arrive from spreadsheet-shaped sources, so every field is kept as the
// raw cell text. Spreadsheet exports routinely materialize absent cells as
// sentinel strings ("nan", "#N/A", ...), and those must behave exactly like a
// genuinely empty cell; the accessor helpers here are the single place that
// rule lives.
package workload

import (
	"strconv"
	"strings"
)

// Cloud identifies the target provider of a row or run.
type Cloud string

const (
	AWS   Cloud = "aws"
	Azure Cloud = "azure"
)

// ParseCloud normalizes a free-text cloud token. "az" is accepted as an
// Azure shorthand; anything unrecognized resolves to AWS, matching the
// permissive CLI behavior ("" means the run default applies).
func ParseCloud(s string) Cloud {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "azure", "az":
		return Azure
	default:
		return AWS
	}
}

// nullish are cell values treated as "missing" regardless of case.
var nullish = map[string]struct{}{
	"":     {},
	"nan":  {},
	"null": {},
	"none": {},
	"n/a":  {},
	"#n/a": {},
}

// IsMissing reports whether a raw cell value represents an absent field.
func IsMissing(v string) bool {
	_, ok := nullish[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// Norm returns the trimmed cell value, or "" when the cell is missing.
func Norm(v string) string {
	if IsMissing(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// PositiveFloat parses a strictly positive number from a raw cell.
// Missing, malformed, zero, and negative values all report false.
func PositiveFloat(v string) (float64, bool) {
	if IsMissing(v) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return f, true
}

// Float parses a number from a raw cell, falling back to def when the cell
// is missing or malformed.
func Float(v string, def float64) float64 {
	if IsMissing(v) {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// Bool parses a boolean-ish cell ("y"/"yes"/"true"/"1" and their negations),
// falling back to def for anything else.
func Bool(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "true", "1":
		return true
	case "n", "no", "false", "0":
		return false
	default:
		return def
	}
}

// IsBoolLike reports whether a cell holds a recognizable boolean token.
func IsBoolLike(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "false", "0", "1", "yes", "no":
		return true
	default:
		return false
	}
}

// Request is one workload row. Fields hold raw cell text; use the workload
// helpers (Norm, PositiveFloat, ...) to interpret them. Extra preserves any
// column the schema does not know about, verbatim, for round-tripping to the
// output file.
type Request struct {
	ID     string
	Cloud  string
	Region string

	VCPU      string
	MemoryGiB string
	Profile   string
	Arch      string

	OS             string
	PurchaseOption string
	LicenseModel   string
	BYOL           string
	AHUB           string

	RootGB   string
	RootType string
	EBSGB    string
	EBSType  string
	S3GB     string

	NetworkProfile string

	DBEngine        string
	DBInstanceClass string
	MultiAZ         string
	DBDeployment    string
	DBTier          string
	DBFamily        string
	DBVCores        string
	DBStorageGB     string

	Environment string

	Extra map[string]string
}

// fieldColumns maps canonical column names onto Request fields.
var fieldColumns = map[string]func(*Request, string){
	"id":                func(r *Request, v string) { r.ID = v },
	"cloud":             func(r *Request, v string) { r.Cloud = v },
	"region":            func(r *Request, v string) { r.Region = v },
	"vcpu":              func(r *Request, v string) { r.VCPU = v },
	"memory_gib":        func(r *Request, v string) { r.MemoryGiB = v },
	"profile":           func(r *Request, v string) { r.Profile = v },
	"arch":              func(r *Request, v string) { r.Arch = v },
	"os":                func(r *Request, v string) { r.OS = v },
	"purchase_option":   func(r *Request, v string) { r.PurchaseOption = v },
	"license_model":     func(r *Request, v string) { r.LicenseModel = v },
	"byol":              func(r *Request, v string) { r.BYOL = v },
	"ahub":              func(r *Request, v string) { r.AHUB = v },
	"root_gb":           func(r *Request, v string) { r.RootGB = v },
	"root_type":         func(r *Request, v string) { r.RootType = v },
	"ebs_gb":            func(r *Request, v string) { r.EBSGB = v },
	"ebs_type":          func(r *Request, v string) { r.EBSType = v },
	"s3_gb":             func(r *Request, v string) { r.S3GB = v },
	"network_profile":   func(r *Request, v string) { r.NetworkProfile = v },
	"db_engine":         func(r *Request, v string) { r.DBEngine = v },
	"db_instance_class": func(r *Request, v string) { r.DBInstanceClass = v },
	"multi_az":          func(r *Request, v string) { r.MultiAZ = v },
	"db_deployment":     func(r *Request, v string) { r.DBDeployment = v },
	"db_tier":           func(r *Request, v string) { r.DBTier = v },
	"db_family":         func(r *Request, v string) { r.DBFamily = v },
	"db_vcores":         func(r *Request, v string) { r.DBVCores = v },
	"db_storage_gb":     func(r *Request, v string) { r.DBStorageGB = v },
	"environment":       func(r *Request, v string) { r.Environment = v },
	"env":               func(r *Request, v string) { r.Environment = v },
}

// FromRecord builds a Request from a column-name -> cell map. Unknown
// columns land in Extra untouched.
func FromRecord(rec map[string]string) Request {
	req := Request{Extra: map[string]string{}}
	for col, v := range rec {
		key := strings.ToLower(strings.TrimSpace(col))
		if set, ok := fieldColumns[key]; ok {
			set(&req, v)
			continue
		}
		req.Extra[col] = v
	}
	return req
}
