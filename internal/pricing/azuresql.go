package pricing

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"cloudsizer/internal/rates"
)

// SQLParams describes one Azure SQL deployment to price under the vCore
// model.
type SQLParams struct {
	Deployment string // "single" or "mi"; anything else falls back to single
	Tier       string // service tier, e.g. GeneralPurpose
	Family     string // hardware family, informational only
	VCores     float64
	StorageGB  float64
	License    string // "AHUB" or "LicenseIncluded"
	Hours      float64
}

// IsAHUB reports whether a row's license token requests the Azure Hybrid
// Benefit.
func IsAHUB(license string) bool {
	switch strings.ToLower(strings.TrimSpace(license)) {
	case "byol", "ahub", "azure hybrid benefit", "hybrid":
		return true
	}
	return false
}

// DefaultSQLOverridesPath is the optional exact-configuration price file.
const DefaultSQLOverridesPath = "prices/azure_sql_overrides.yaml"

// SQLOverrideEntry pins a monthly price onto one exact Azure SQL
// configuration. String fields match case- and separator-insensitively.
type SQLOverrideEntry struct {
	Deployment string  `yaml:"deployment"`
	Region     string  `yaml:"region"`
	Tier       string  `yaml:"tier"`
	Family     string  `yaml:"family"`
	VCores     float64 `yaml:"vcores"`
	License    string  `yaml:"license"`
	MonthlyUSD float64 `yaml:"monthly_usd"`
}

// SQLOverrides resolves exact-configuration monthly prices. A hit takes
// precedence over the vCore model; anything short of a full key match falls
// through to the formula.
type SQLOverrides map[string]float64

// NewSQLOverrides indexes entries by their full configuration key.
func NewSQLOverrides(entries []SQLOverrideEntry) SQLOverrides {
	out := make(SQLOverrides, len(entries))
	for _, e := range entries {
		out[sqlOverrideKey(e.Deployment, e.Region, e.Tier, e.Family, e.VCores, e.License)] = e.MonthlyUSD
	}
	return out
}

// LoadSQLOverrides reads the YAML override list. An empty path falls back to
// the default location; a missing file is not an error.
func LoadSQLOverrides(path string, logger zerolog.Logger) (SQLOverrides, error) {
	if path == "" {
		path = DefaultSQLOverridesPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", path).Msg("no azure sql overrides file, using the vCore model")
			return nil, nil
		}
		return nil, fmt.Errorf("reading azure sql overrides %s: %w", path, err)
	}
	var entries []SQLOverrideEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing azure sql overrides %s: %w", path, err)
	}
	logger.Debug().Str("path", path).Int("entries", len(entries)).Msg("loaded azure sql overrides")
	return NewSQLOverrides(entries), nil
}

// Monthly returns the override for an exact configuration match.
func (o SQLOverrides) Monthly(region string, p SQLParams) (float64, bool) {
	v, ok := o[sqlOverrideKey(p.Deployment, region, p.Tier, p.Family, p.VCores, p.License)]
	return v, ok
}

func sqlOverrideKey(deployment, region, tier, family string, vcores float64, license string) string {
	parts := []string{
		normSQLToken(deployment),
		normSQLToken(region),
		normSQLToken(tier),
		normSQLToken(family),
		strconv.FormatFloat(vcores, 'f', -1, 64),
		normSQLToken(license),
	}
	return strings.Join(parts, "|")
}

// normSQLToken lowercases and drops separators so "General Purpose",
// "general_purpose" and "GeneralPurpose" key identically.
func normSQLToken(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		case c == ' ' || c == '_' || c == '-':
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// PriceAzureSQL prices one configuration: the exact-key override wins when
// present, otherwise the vCore model runs.
func PriceAzureSQL(r rates.Rates, ov SQLOverrides, region string, p SQLParams) (monthly float64, overridden bool) {
	if v, ok := ov.Monthly(region, p); ok {
		return v, true
	}
	return MonthlyAzureSQL(r, p), false
}

// MonthlyAzureSQL estimates a monthly Azure SQL cost from the vCore model:
// compute is vCores times the per-vCore hourly rate scaled by the service
// tier, storage is a flat $/GB-month. The Hybrid Benefit discount applies to
// the compute portion only. Managed Instance prices with the same base
// model; its networking extras are out of scope here.
func MonthlyAzureSQL(r rates.Rates, p SQLParams) float64 {
	vcores := p.VCores
	if vcores <= 0 {
		vcores = 0
	}
	storage := p.StorageGB
	if storage < 0 {
		storage = 0
	}
	compute := vcores * r.SQLVCoreHour * r.TierMultiplier(p.Tier) * p.Hours
	if strings.EqualFold(strings.TrimSpace(p.License), "AHUB") {
		compute *= 1 - r.AHUBDiscount
	}
	return compute + storage*r.SQLStorageGBMonth
}
