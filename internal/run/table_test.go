package run

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudsizer/internal/validate"
	"cloudsizer/internal/workload"
)

func TestTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "rows.csv")
	in := &Table{
		Header: []string{"id", "vcpu", "note"},
		Rows: []map[string]string{
			{"id": "a", "vcpu": "4", "note": "has, comma"},
			{"id": "b", "vcpu": "8", "note": ""},
		},
	}
	require.NoError(t, WriteTable(path, in))

	out, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, in.Header, out.Header)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "has, comma", out.Rows[0]["note"])
	assert.Equal(t, "8", out.Rows[1]["vcpu"])
}

func TestReadTableRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,vcpu,note\na,4\n"), 0o644))

	out, err := ReadTable(path)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "4", out.Rows[0]["vcpu"])
	assert.Equal(t, "", out.Rows[0]["note"])
}

func TestEnsureColumns(t *testing.T) {
	tbl := &Table{Header: []string{"id", "vcpu"}}
	tbl.EnsureColumns("vcpu", "note", "note", "fit_reason")
	assert.Equal(t, []string{"id", "vcpu", "note", "fit_reason"}, tbl.Header)
}

func TestNewRunDirAndDerive(t *testing.T) {
	base := t.TempDir()
	now := time.Date(2026, 8, 29, 14, 5, 9, 0, time.UTC)

	dir, err := NewRunDir(base, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "2026-08-29", "140509"), dir)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.Equal(t, dir, DeriveRunDir(filepath.Join(dir, RecommendFile)))
	assert.Equal(t, "", DeriveRunDir(filepath.Join(base, "elsewhere", RecommendFile)))
}

func TestFindLatestRecommend(t *testing.T) {
	base := t.TempDir()
	older, err := NewRunDir(base, time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	newer, err := NewRunDir(base, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	oldPath := filepath.Join(older, RecommendFile)
	newPath := filepath.Join(newer, RecommendFile)
	require.NoError(t, os.WriteFile(oldPath, []byte("id\n"), 0o644))
	require.NoError(t, os.WriteFile(newPath, []byte("id\n"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	assert.Equal(t, newPath, FindLatestRecommend(base))
	assert.Equal(t, "", FindLatestRecommend(t.TempDir()))
}

func TestReportTable(t *testing.T) {
	rep := validate.Batch([]workload.Request{
		{ID: "web-01", Cloud: "aws", Region: "us-east-1", VCPU: "4", MemoryGiB: "16",
			OS: "linux", PurchaseOption: "on_demand", RootGB: "100", RootType: "gp3"},
		{ID: "bad-01", Cloud: "aws", Region: "atlantis", VCPU: "4", MemoryGiB: "16"},
	})
	tbl := ReportTable(rep)
	assert.Equal(t, []string{"row_index", "id", "status", "blocking_for", "reasons", "fix_hints"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "0", tbl.Rows[0]["row_index"])
	assert.Equal(t, "ok", tbl.Rows[0]["status"])
	assert.Equal(t, "bad-01", tbl.Rows[1]["id"])
	assert.Equal(t, "error", tbl.Rows[1]["status"])
	assert.Equal(t, "recommendation", tbl.Rows[1]["blocking_for"])
	assert.NotEmpty(t, tbl.Rows[1]["fix_hints"])
}
