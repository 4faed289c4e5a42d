package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cloudsizer/internal/rates"
)

func TestResolveHours(t *testing.T) {
	r := rates.Defaults()
	r.HoursPerMonth = 500 // as if HOURS_PER_MONTH were set

	tests := []struct {
		name        string
		flagChanged bool
		flagVal     float64
		rates       rates.Rates
		want        float64
	}{
		{"flag wins when set", true, 400, r, 400},
		{"env value used when flag untouched", false, 730, r, 500},
		{"flag default survives without env", false, 730, rates.Defaults(), 730},
		{"zero env value ignored", false, 730, rates.Rates{}, 730},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveHours(tt.flagChanged, tt.flagVal, tt.rates))
		})
	}
}
