package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudsizer/internal/catalog"
)

// testCatalog mirrors a slice of the current-generation x86_64 catalog,
// enough to exercise family preference and both fit classifications.
func testCatalog() catalog.Catalog {
	shapes := []catalog.Shape{
		{Name: "m6i.large", VCPU: 2, MemoryGiB: 8},
		{Name: "m6i.xlarge", VCPU: 4, MemoryGiB: 16},
		{Name: "m6i.2xlarge", VCPU: 8, MemoryGiB: 32},
		{Name: "m7i.xlarge", VCPU: 4, MemoryGiB: 16},
		{Name: "c6i.xlarge", VCPU: 4, MemoryGiB: 8},
		{Name: "c6i.2xlarge", VCPU: 8, MemoryGiB: 16},
		{Name: "r6i.xlarge", VCPU: 4, MemoryGiB: 32},
		{Name: "t3.medium", VCPU: 2, MemoryGiB: 4},
	}
	cat := catalog.Catalog{}
	for _, s := range shapes {
		cat[s.Name] = s
	}
	return cat
}

func TestInferProfile(t *testing.T) {
	tests := []struct {
		name   string
		vcpu   int
		memGiB float64
		want   Profile
	}{
		{"ratio below compute threshold", 4, 8, Compute},
		{"ratio exactly 3", 4, 12, Compute},
		{"balanced middle", 4, 16, Balanced},
		{"ratio exactly 6", 4, 24, Memory},
		{"ratio above memory threshold", 2, 16, Memory},
		{"zero vcpu", 0, 16, Balanced},
		{"zero memory", 4, 0, Balanced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferProfile(tt.vcpu, tt.memGiB))
		})
	}
}

func TestParseProfile(t *testing.T) {
	p, ok := ParseProfile(" Memory ")
	assert.True(t, ok)
	assert.Equal(t, Memory, p)

	p, ok = ParseProfile("general")
	assert.False(t, ok)
	assert.Equal(t, Balanced, p)
}

func TestSelect(t *testing.T) {
	cat := testCatalog()

	tests := []struct {
		name     string
		profile  Profile
		vcpu     int
		memGiB   float64
		wantName string
		wantFit  FitReason
	}{
		{
			// m7i outranks m6i for balanced, both fit 4/16 exactly.
			name: "exact fit prefers top family", profile: Balanced,
			vcpu: 4, memGiB: 16, wantName: "m7i.xlarge", wantFit: FitExact,
		},
		{
			name: "memory pushes to larger size", profile: Balanced,
			vcpu: 4, memGiB: 32, wantName: "m6i.2xlarge", wantFit: FitMemoryBound,
		},
		{
			name: "cpu bound", profile: Compute,
			vcpu: 8, memGiB: 8, wantName: "c6i.2xlarge", wantFit: FitCPUBound,
		},
		{
			name: "memory profile prefers r family", profile: Memory,
			vcpu: 4, memGiB: 32, wantName: "r6i.xlarge", wantFit: FitExact,
		},
		{
			// t3.medium is both the cpu-only and mem-only floor; the tie
			// classifies as memory-bound.
			name: "unlisted families rank last", profile: Compute,
			vcpu: 2, memGiB: 4, wantName: "c6i.xlarge", wantFit: FitMemoryBound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Select(cat, tt.profile, tt.vcpu, tt.memGiB)
			require.NotNil(t, out.Chosen)
			assert.Equal(t, tt.wantName, out.Chosen.Name)
			assert.Equal(t, tt.wantFit, out.Fit)
		})
	}
}

func TestSelectOverprovision(t *testing.T) {
	out := Select(testCatalog(), Balanced, 4, 32)
	require.NotNil(t, out.Chosen)
	assert.Equal(t, "m6i.2xlarge", out.Chosen.Name)
	assert.Equal(t, 4, out.OverprovVCPU)
	assert.Equal(t, 0.0, out.OverprovMemGiB)
}

func TestSelectNoFit(t *testing.T) {
	out := Select(testCatalog(), Balanced, 128, 1024)
	assert.Nil(t, out.Chosen)
	assert.Equal(t, FitNoFitFallback, out.Fit)
}

// TestSelectDeterministic runs the same selection repeatedly; map iteration
// order must never leak into the result.
func TestSelectDeterministic(t *testing.T) {
	cat := testCatalog()
	first := Select(cat, Balanced, 4, 16)
	require.NotNil(t, first.Chosen)
	for i := 0; i < 50; i++ {
		again := Select(cat, Balanced, 4, 16)
		require.NotNil(t, again.Chosen)
		assert.Equal(t, first.Chosen.Name, again.Chosen.Name)
	}
}

func TestSelectUnknownProfileFallsBackToBalanced(t *testing.T) {
	out := Select(testCatalog(), Profile("weird"), 4, 16)
	require.NotNil(t, out.Chosen)
	assert.Equal(t, "m7i.xlarge", out.Chosen.Name)
}

func TestSelectSmallest(t *testing.T) {
	cat := catalog.Catalog{
		"Standard_D2s_v5": {Name: "Standard_D2s_v5", VCPU: 2, MemoryGiB: 8},
		"Standard_D4s_v5": {Name: "Standard_D4s_v5", VCPU: 4, MemoryGiB: 16},
		"Standard_E4s_v5": {Name: "Standard_E4s_v5", VCPU: 4, MemoryGiB: 32},
		"Standard_F4s_v2": {Name: "Standard_F4s_v2", VCPU: 4, MemoryGiB: 8},
	}

	out := SelectSmallest(cat, 4, 16)
	require.NotNil(t, out.Chosen)
	assert.Equal(t, "Standard_D4s_v5", out.Chosen.Name)
	assert.Equal(t, FitExact, out.Fit)

	out = SelectSmallest(cat, 3, 10)
	require.NotNil(t, out.Chosen)
	assert.Equal(t, "Standard_D4s_v5", out.Chosen.Name)
	assert.Equal(t, FitReason(""), out.Fit)
	assert.Equal(t, 1, out.OverprovVCPU)
	assert.Equal(t, 6.0, out.OverprovMemGiB)

	out = SelectSmallest(cat, 64, 16)
	assert.Nil(t, out.Chosen)
	assert.Equal(t, FitNoFitFallback, out.Fit)
}
