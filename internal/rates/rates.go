// Package rates holds the cost-model constants used for everything that is
// not priced live against a provider API: storage $/GB-month, network egress,
// and the Azure SQL vCore model. Defaults can be adjusted per-process via
// environment variables and per-region via an optional YAML overrides file.
package rates

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Rates is the immutable cost model for one run in one region.
type Rates struct {
	S3StdGBMonth  float64
	EBSGp3GBMonth float64
	EBSIo1GBMonth float64
	EgressGBPrice float64

	// NetworkProfileGB maps an egress profile name to assumed GB/month.
	NetworkProfileGB map[string]float64

	HoursPerMonth float64

	// Azure SQL vCore model.
	SQLVCoreHour      float64
	SQLStorageGBMonth float64
	SQLTierMultiplier map[string]float64
	AHUBDiscount      float64
}

// Defaults returns the built-in cost model.
func Defaults() Rates {
	return Rates{
		S3StdGBMonth:  0.023,
		EBSGp3GBMonth: 0.08,
		EBSIo1GBMonth: 0.125,
		EgressGBPrice: 0.09,
		NetworkProfileGB: map[string]float64{
			"low":    50,
			"medium": 500,
			"high":   5000,
		},
		HoursPerMonth:     730,
		SQLVCoreHour:      0.5046,
		SQLStorageGBMonth: 0.115,
		SQLTierMultiplier: map[string]float64{
			"generalpurpose":   1.0,
			"businesscritical": 1.75,
			"hyperscale":       1.25,
		},
		AHUBDiscount: 0.25,
	}
}

// FromEnv applies environment overrides on top of the defaults. Unset
// variables leave the default in place; unparsable values are logged and
// ignored.
func FromEnv(logger zerolog.Logger) Rates {
	r := Defaults()
	envFloat(logger, "S3_STD_GB_MONTH", &r.S3StdGBMonth)
	envFloat(logger, "EBS_GP3_GB_MONTH", &r.EBSGp3GBMonth)
	envFloat(logger, "EBS_IO1_GB_MONTH", &r.EBSIo1GBMonth)
	envFloat(logger, "DTO_GB_PRICE", &r.EgressGBPrice)
	envFloat(logger, "HOURS_PER_MONTH", &r.HoursPerMonth)
	envFloat(logger, "AZURE_SQL_VCORE_HOUR", &r.SQLVCoreHour)
	envFloat(logger, "AZURE_SQL_STORAGE_GB_MONTH", &r.SQLStorageGBMonth)

	low, med, high := r.NetworkProfileGB["low"], r.NetworkProfileGB["medium"], r.NetworkProfileGB["high"]
	envFloat(logger, "NETWORK_EGRESS_GB_LOW", &low)
	envFloat(logger, "NETWORK_EGRESS_GB_MED", &med)
	envFloat(logger, "NETWORK_EGRESS_GB_HIGH", &high)
	r.NetworkProfileGB = map[string]float64{"low": low, "medium": med, "high": high}
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

// Override is one region's partial rate override from the YAML file. Nil
// pointers mean "keep the merged base value".
type Override struct {
	S3StdGBMonth      *float64 `yaml:"s3_std_gb_month"`
	EBSGp3GBMonth     *float64 `yaml:"ebs_gp3_gb_month"`
	EBSIo1GBMonth     *float64 `yaml:"ebs_io1_gb_month"`
	EgressGBPrice     *float64 `yaml:"dto_gb_price"`
	SQLVCoreHour      *float64 `yaml:"sql_vcore_hour"`
	SQLStorageGBMonth *float64 `yaml:"sql_storage_gb_month"`
}

// Overrides maps a region code to its partial override.
type Overrides map[string]Override

// LoadOverrides reads the region-keyed YAML overrides file. A missing file is
// not an error: the cost model simply runs on defaults.
func LoadOverrides(path string, logger zerolog.Logger) (Overrides, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", path).Msg("no rate overrides file, using defaults")
			return nil, nil
		}
		return nil, fmt.Errorf("reading rate overrides %s: %w", path, err)
	}
	var out Overrides
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing rate overrides %s: %w", path, err)
	}
	logger.Debug().Str("path", path).Int("regions", len(out)).Msg("loaded rate overrides")
	return out, nil
}

// ForRegion returns the rate table for one region: the receiver with any
// override fields applied. The receiver is not modified.
func (r Rates) ForRegion(region string, ov Overrides) Rates {
	o, ok := ov[region]
	if !ok {
		return r
	}
	apply := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&r.S3StdGBMonth, o.S3StdGBMonth)
	apply(&r.EBSGp3GBMonth, o.EBSGp3GBMonth)
	apply(&r.EBSIo1GBMonth, o.EBSIo1GBMonth)
	apply(&r.EgressGBPrice, o.EgressGBPrice)
	apply(&r.SQLVCoreHour, o.SQLVCoreHour)
	apply(&r.SQLStorageGBMonth, o.SQLStorageGBMonth)
	return r
}

// TierMultiplier looks up the Azure SQL service-tier multiplier, case and
// space insensitive, defaulting to General Purpose.
func (r Rates) TierMultiplier(tier string) float64 {
	if m, ok := r.SQLTierMultiplier[normTier(tier)]; ok {
		return m
	}
	return r.SQLTierMultiplier["generalpurpose"]
}

func normTier(s string) string {
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
