package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIsMissing verifies that every spreadsheet null sentinel behaves exactly
// like an empty cell, regardless of case or surrounding whitespace.
func TestIsMissing(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"nan", "nan", true},
		{"NaN mixed case", "NaN", true},
		{"null", "NULL", true},
		{"none", "None", true},
		{"n/a", "n/a", true},
		{"excel n/a", "#N/A", true},
		{"padded sentinel", "  nan  ", true},
		{"real value", "8", false},
		{"word containing sentinel", "banana", false},
		{"zero", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMissing(tt.in))
		})
	}
}

// TestSentinelUniformity checks that the interpreting helpers treat every
// sentinel identically to the empty string.
func TestSentinelUniformity(t *testing.T) {
	sentinels := []string{"", "nan", "NULL", "None", "N/A", "#n/a"}
	for _, s := range sentinels {
		assert.Equal(t, "", Norm(s), "Norm(%q)", s)
		_, ok := PositiveFloat(s)
		assert.False(t, ok, "PositiveFloat(%q)", s)
		assert.Equal(t, 7.5, Float(s, 7.5), "Float(%q)", s)
	}
}

func TestPositiveFloat(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   float64
		wantOK bool
	}{
		{"integer", "8", 8, true},
		{"decimal", "15.25", 15.25, true},
		{"padded", " 4 ", 4, true},
		{"zero", "0", 0, false},
		{"negative", "-2", 0, false},
		{"garbage", "eight", 0, false},
		{"missing", "nan", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PositiveFloat(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCloud(t *testing.T) {
	assert.Equal(t, Azure, ParseCloud("azure"))
	assert.Equal(t, Azure, ParseCloud("AZ"))
	assert.Equal(t, Azure, ParseCloud(" Azure "))
	assert.Equal(t, AWS, ParseCloud("aws"))
	assert.Equal(t, AWS, ParseCloud(""))
	assert.Equal(t, AWS, ParseCloud("gcp"))
}

func TestBool(t *testing.T) {
	assert.True(t, Bool("yes", false))
	assert.True(t, Bool("Y", false))
	assert.True(t, Bool("TRUE", false))
	assert.True(t, Bool("1", false))
	assert.False(t, Bool("no", true))
	assert.False(t, Bool("0", true))
	assert.True(t, Bool("maybe", true))
	assert.False(t, Bool("", false))
}

// TestFromRecord verifies known columns land on fields and unknown columns
// survive untouched in Extra.
func TestFromRecord(t *testing.T) {
	req := FromRecord(map[string]string{
		"id":         "web-01",
		"Cloud":      "aws",
		"REGION":     "us-east-1",
		"vcpu":       "4",
		"memory_gib": "16",
		"owner_team": "platform",
		"cost_code":  "CC-123",
	})

	assert.Equal(t, "web-01", req.ID)
	assert.Equal(t, "aws", req.Cloud)
	assert.Equal(t, "us-east-1", req.Region)
	assert.Equal(t, "4", req.VCPU)
	assert.Equal(t, "16", req.MemoryGiB)
	assert.Equal(t, map[string]string{
		"owner_team": "platform",
		"cost_code":  "CC-123",
	}, req.Extra)
}
