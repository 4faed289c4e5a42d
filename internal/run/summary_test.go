package run

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryMetrics(t *testing.T, runDir string) map[string]string {
	t.Helper()
	tbl, err := ReadTable(filepath.Join(runDir, SummaryCSVFile))
	require.NoError(t, err)
	out := make(map[string]string, len(tbl.Rows))
	for _, row := range tbl.Rows {
		out[row["metric"]] = row["value"]
	}
	return out
}

func TestWriteRunSummary(t *testing.T) {
	runDir := t.TempDir()

	require.NoError(t, WriteTable(filepath.Join(runDir, ValidatorReportFile), &Table{
		Header: []string{"row_index", "id", "status"},
		Rows: []map[string]string{
			{"row_index": "0", "id": "a", "status": "ok"},
			{"row_index": "1", "id": "b", "status": "ok"},
			{"row_index": "2", "id": "c", "status": "rec_only"},
		},
	}))
	require.NoError(t, WriteTable(filepath.Join(runDir, RecommendFile), &Table{
		Header: []string{"id", "requested_vcpu", "requested_memory_gib", "fit_reason"},
		Rows: []map[string]string{
			{"id": "a", "requested_vcpu": "4", "requested_memory_gib": "16", "fit_reason": "exact"},
			{"id": "b", "requested_vcpu": "8", "requested_memory_gib": "64", "fit_reason": "memory-bound"},
		},
	}))
	require.NoError(t, WriteTable(filepath.Join(runDir, PriceFile), &Table{
		Header: []string{"id", "region", "recommended_instance_type", "price_per_hour_usd", "monthly_total_usd", "monthly_compute_usd", "monthly_ebs_usd", "monthly_s3_usd", "monthly_network_usd", "monthly_db_usd"},
		Rows: []map[string]string{
			{"id": "a", "region": "us-east-1", "recommended_instance_type": "m6i.xlarge",
				"price_per_hour_usd": "0.192000", "monthly_total_usd": "150.00", "monthly_compute_usd": "140.16"},
			{"id": "b", "region": "us-east-1", "recommended_instance_type": "r6i.2xlarge",
				"price_per_hour_usd": "0.504000", "monthly_total_usd": "400.00", "monthly_compute_usd": "367.92"},
		},
	}))
	require.NoError(t, WriteTable(filepath.Join(runDir, BaselineFile), &Table{
		Header: []string{"component", "monthly_usd"},
		Rows: []map[string]string{
			{"component": "TGW Attachment", "monthly_usd": "43.80"},
			{"component": "TOTAL", "monthly_usd": "214.47"},
		},
	}))

	WriteRunSummary(zerolog.Nop(), runDir)

	m := summaryMetrics(t, runDir)
	assert.Equal(t, "3", m["validator_rows"])
	assert.Equal(t, "2", m["rows_ok"])
	assert.Equal(t, "1", m["rows_rec_only"])
	assert.Equal(t, "2", m["recommend_rows"])
	assert.Equal(t, "6", m["avg_requested_vcpu"])
	assert.Equal(t, "40", m["avg_requested_memory_gib"])
	assert.Equal(t, "1", m["fit_exact"])
	assert.Equal(t, "1", m["fit_memory-bound"])
	assert.Equal(t, "2", m["priced_rows"])
	assert.Equal(t, "550.00", m["sum_monthly_total_usd"])
	assert.Equal(t, "508.08", m["sum_monthly_compute_usd"])
	assert.Equal(t, "0.3480", m["avg_price_per_hour_usd"])
	assert.Equal(t, "275.00", m["avg_monthly_total_usd"])
	// Baseline uses the TOTAL row, not a re-sum.
	assert.Equal(t, "214.47", m["monthly_baseline_total"])
	assert.Equal(t, "764.47", m["monthly_grand_total_including_baseline"])

	// summary.json mirrors the csv.
	data, err := os.ReadFile(filepath.Join(runDir, SummaryJSONFile))
	require.NoError(t, err)
	var obj map[string]string
	require.NoError(t, json.Unmarshal(data, &obj))
	assert.Equal(t, m, obj)

	// Top spenders, costliest first.
	top, err := ReadTable(filepath.Join(runDir, SummaryTop5File))
	require.NoError(t, err)
	require.Len(t, top.Rows, 2)
	assert.Equal(t, "b", top.Rows[0]["id"])
	assert.Equal(t, "a", top.Rows[1]["id"])
}

func TestWriteRunSummaryEmptyDir(t *testing.T) {
	runDir := t.TempDir()
	WriteRunSummary(zerolog.Nop(), runDir)
	_, err := os.Stat(filepath.Join(runDir, SummaryCSVFile))
	assert.True(t, os.IsNotExist(err), "no artifacts means no summary")
}
