package rates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	r := Defaults()
	assert.InDelta(t, 0.023, r.S3StdGBMonth, 1e-9)
	assert.InDelta(t, 0.08, r.EBSGp3GBMonth, 1e-9)
	assert.InDelta(t, 0.125, r.EBSIo1GBMonth, 1e-9)
	assert.InDelta(t, 0.09, r.EgressGBPrice, 1e-9)
	assert.InDelta(t, 730, r.HoursPerMonth, 1e-9)
	assert.InDelta(t, 500, r.NetworkProfileGB["medium"], 1e-9)
	assert.InDelta(t, 0.5046, r.SQLVCoreHour, 1e-9)
	assert.InDelta(t, 0.25, r.AHUBDiscount, 1e-9)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("S3_STD_GB_MONTH", "0.021")
	t.Setenv("DTO_GB_PRICE", "0.05")
	t.Setenv("NETWORK_EGRESS_GB_HIGH", "9000")
	t.Setenv("HOURS_PER_MONTH", "not-a-number")
	t.Setenv("EBS_GP3_GB_MONTH", "-1")

	r := FromEnv(zerolog.Nop())
	assert.InDelta(t, 0.021, r.S3StdGBMonth, 1e-9)
	assert.InDelta(t, 0.05, r.EgressGBPrice, 1e-9)
	assert.InDelta(t, 9000, r.NetworkProfileGB["high"], 1e-9)
	// Untouched and invalid values keep their defaults.
	assert.InDelta(t, 50, r.NetworkProfileGB["low"], 1e-9)
	assert.InDelta(t, 730, r.HoursPerMonth, 1e-9)
	assert.InDelta(t, 0.08, r.EBSGp3GBMonth, 1e-9)
}

func TestLoadOverridesMissingFile(t *testing.T) {
	ov, err := LoadOverrides(filepath.Join(t.TempDir(), "nope.yaml"), zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, ov)

	ov, err = LoadOverrides("", zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, ov)
}

func TestLoadOverridesAndForRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	doc := `us-gov-west-1:
  ebs_gp3_gb_month: 0.096
  dto_gb_price: 0.155
eastus:
  sql_vcore_hour: 0.6
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	ov, err := LoadOverrides(path, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, ov, 2)

	base := Defaults()
	gov := base.ForRegion("us-gov-west-1", ov)
	assert.InDelta(t, 0.096, gov.EBSGp3GBMonth, 1e-9)
	assert.InDelta(t, 0.155, gov.EgressGBPrice, 1e-9)
	// Fields absent from the override keep the base value.
	assert.InDelta(t, 0.023, gov.S3StdGBMonth, 1e-9)

	// The receiver must be untouched.
	assert.InDelta(t, 0.08, base.EBSGp3GBMonth, 1e-9)

	// Unknown regions pass the base through unchanged.
	same := base.ForRegion("us-east-1", ov)
	assert.Equal(t, base.EBSGp3GBMonth, same.EBSGp3GBMonth)
}

func TestTierMultiplier(t *testing.T) {
	r := Defaults()
	tests := []struct {
		tier string
		want float64
	}{
		{"GeneralPurpose", 1.0},
		{"General Purpose", 1.0},
		{"general_purpose", 1.0},
		{"BusinessCritical", 1.75},
		{"business-critical", 1.75},
		{"Hyperscale", 1.25},
		{"", 1.0},
		{"mystery", 1.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, r.TierMultiplier(tt.tier), 1e-9, "tier %q", tt.tier)
	}
}
