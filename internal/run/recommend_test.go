package run

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudsizer/internal/catalog"
	"cloudsizer/internal/workload"
)

func awsTestCatalog() catalog.Static {
	return catalog.Static{
		"m6i.large":   {Name: "m6i.large", VCPU: 2, MemoryGiB: 8},
		"m6i.xlarge":  {Name: "m6i.xlarge", VCPU: 4, MemoryGiB: 16},
		"m6i.2xlarge": {Name: "m6i.2xlarge", VCPU: 8, MemoryGiB: 32},
		"r6i.xlarge":  {Name: "r6i.xlarge", VCPU: 4, MemoryGiB: 32},
	}
}

func inputTable(rows ...map[string]string) *Table {
	return &Table{
		Header: []string{"id", "region", "vcpu", "memory_gib", "os", "purchase_option", "root_gb", "root_type"},
		Rows:   rows,
	}
}

func awsRow(id string, overrides map[string]string) map[string]string {
	row := map[string]string{
		"id": id, "region": "us-east-1", "vcpu": "4", "memory_gib": "16",
		"os": "linux", "purchase_option": "on_demand", "root_gb": "100", "root_type": "gp3",
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

func testRunner() *Runner {
	return &Runner{Logger: zerolog.Nop(), AWSCatalog: awsTestCatalog()}
}

func TestRecommend(t *testing.T) {
	in := inputTable(
		awsRow("web-01", nil),
		awsRow("app-01", map[string]string{"vcpu": "2", "memory_gib": "8", "os": ""}),
		awsRow("bad-01", map[string]string{"region": "atlantis"}),
	)

	out, err := testRunner().Recommend(context.Background(), in, RecommendParams{Cloud: workload.AWS})
	require.NoError(t, err)
	require.NotNil(t, out.Table)
	assert.NotEmpty(t, out.RunID)

	// Error rows are dropped; ok rows come before rec_only rows.
	require.Len(t, out.Table.Rows, 2)
	assert.Equal(t, "web-01", out.Table.Rows[0]["id"])
	assert.Equal(t, "app-01", out.Table.Rows[1]["id"])

	first := out.Table.Rows[0]
	assert.Equal(t, "m6i.xlarge", first["recommended_instance_type"])
	assert.Equal(t, "4", first["rec_vcpu"])
	assert.Equal(t, "16.00", first["rec_memory_gib"])
	assert.Equal(t, "0", first["overprov_vcpu"])
	assert.Equal(t, "exact", first["fit_reason"])
	assert.Equal(t, "", first["note"])
	assert.Equal(t, "aws", first["cloud"])

	second := out.Table.Rows[1]
	assert.Equal(t, "m6i.large", second["recommended_instance_type"])

	require.Len(t, out.Report.Errored, 1)
	assert.Equal(t, "bad-01", out.Report.Rows[out.Report.Errored[0]].RowID)
}

func TestRecommendMemoryBound(t *testing.T) {
	in := inputTable(awsRow("db-01", map[string]string{"vcpu": "2", "memory_gib": "24"}))

	out, err := testRunner().Recommend(context.Background(), in, RecommendParams{Cloud: workload.AWS})
	require.NoError(t, err)
	row := out.Table.Rows[0]
	// ratio 12 infers a memory profile; r6i.xlarge is the smallest fit.
	assert.Equal(t, "memory", row["profile"])
	assert.Equal(t, "r6i.xlarge", row["recommended_instance_type"])
	assert.Equal(t, "2", row["overprov_vcpu"])
	assert.Equal(t, "8", row["overprov_mem_gib"])
}

func TestRecommendStrict(t *testing.T) {
	in := inputTable(
		awsRow("web-01", nil),
		awsRow("app-01", map[string]string{"os": ""}),
	)
	out, err := testRunner().Recommend(context.Background(), in, RecommendParams{Cloud: workload.AWS, Strict: true})
	require.ErrorIs(t, err, ErrStrict)
	// The report is still populated so the caller can write it.
	assert.Len(t, out.Report.Rows, 2)
	assert.Nil(t, out.Table)
}

func TestRecommendRegionOverride(t *testing.T) {
	in := inputTable(awsRow("web-01", map[string]string{"region": ""}))
	out, err := testRunner().Recommend(context.Background(), in, RecommendParams{Cloud: workload.AWS, Region: "us-west-2"})
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", out.Table.Rows[0]["region"])
}

func TestRecommendNoUsableRows(t *testing.T) {
	in := inputTable(awsRow("bad-01", map[string]string{"region": "atlantis"}))
	out, err := testRunner().Recommend(context.Background(), in, RecommendParams{Cloud: workload.AWS})
	require.ErrorIs(t, err, ErrNoUsableRows)
	assert.Len(t, out.Report.Errored, 1)
}

// TestRecommendPartialCapacity covers a row the validator passes on memory
// alone: sizing needs both dimensions, so the row stays in the output with an
// explanatory note instead of a recommendation.
func TestRecommendPartialCapacity(t *testing.T) {
	in := inputTable(awsRow("half-01", map[string]string{"vcpu": ""}))
	out, err := testRunner().Recommend(context.Background(), in, RecommendParams{Cloud: workload.AWS})
	require.NoError(t, err)
	row := out.Table.Rows[0]
	assert.Equal(t, "", row["recommended_instance_type"])
	assert.Equal(t, noteInvalidCapacity, row["note"])
}

func TestRecommendNoFit(t *testing.T) {
	in := inputTable(awsRow("huge-01", map[string]string{"vcpu": "128", "memory_gib": "1024"}))
	out, err := testRunner().Recommend(context.Background(), in, RecommendParams{Cloud: workload.AWS})
	require.NoError(t, err)
	row := out.Table.Rows[0]
	assert.Equal(t, "", row["recommended_instance_type"])
	assert.Equal(t, noteNoAWSSize, row["note"])
}

func TestRecommendAzure(t *testing.T) {
	r := &Runner{
		Logger: zerolog.Nop(),
		AzureCatalog: catalog.Static{
			"Standard_D4s_v5": {Name: "Standard_D4s_v5", VCPU: 4, MemoryGiB: 16},
			"Standard_E8s_v5": {Name: "Standard_E8s_v5", VCPU: 8, MemoryGiB: 64},
		},
	}
	in := inputTable(awsRow("az-01", map[string]string{"region": "eastus"}))
	out, err := r.Recommend(context.Background(), in, RecommendParams{Cloud: workload.Azure})
	require.NoError(t, err)
	row := out.Table.Rows[0]
	assert.Equal(t, "azure", row["cloud"])
	assert.Equal(t, "Standard_D4s_v5", row["recommended_instance_type"])
	assert.Equal(t, "eastus", row["region"])
}
