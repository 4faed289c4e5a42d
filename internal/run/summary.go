package run

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// metric is one summary key/value, kept in a slice so summary.csv has a
// stable order.
type metric struct {
	Key   string
	Value string
}

// WriteRunSummary rolls up whatever artifacts exist in runDir into
// summary.csv, summary.json and summary_top5.csv. It is best-effort: a run
// never fails because its summary could not be produced, so problems are
// logged and swallowed.
func WriteRunSummary(logger zerolog.Logger, runDir string) {
	var metrics []metric

	if t := readIfPresent(filepath.Join(runDir, ValidatorReportFile)); t != nil {
		metrics = append(metrics, summarizeValidator(t)...)
	}
	if t := readIfPresent(filepath.Join(runDir, RecommendFile)); t != nil {
		metrics = append(metrics, summarizeRecommend(t)...)
	}
	var top *Table
	if t := readIfPresent(filepath.Join(runDir, PriceFile)); t != nil {
		var priced []metric
		priced, top = summarizePrice(t)
		metrics = append(metrics, priced...)
	}
	if baseline := baselineTotal(filepath.Join(runDir, BaselineFile)); baseline > 0 {
		metrics = append(metrics, metric{"monthly_baseline_total", usd(baseline)})
		for _, m := range metrics {
			if m.Key == "sum_monthly_total_usd" {
				sum, _ := strconv.ParseFloat(m.Value, 64)
				metrics = append(metrics, metric{"monthly_grand_total_including_baseline", usd(sum + baseline)})
				break
			}
		}
	}
	if len(metrics) == 0 {
		return
	}

	kv := &Table{Header: []string{"metric", "value"}}
	obj := make(map[string]string, len(metrics))
	for _, m := range metrics {
		kv.Rows = append(kv.Rows, map[string]string{"metric": m.Key, "value": m.Value})
		obj[m.Key] = m.Value
	}
	if err := WriteTable(filepath.Join(runDir, SummaryCSVFile), kv); err != nil {
		logger.Warn().Err(err).Msg("summary.csv not written")
	}
	if data, err := json.MarshalIndent(obj, "", "  "); err == nil {
		if err := os.WriteFile(filepath.Join(runDir, SummaryJSONFile), data, 0o644); err != nil {
			logger.Warn().Err(err).Msg("summary.json not written")
		}
	}
	if top != nil && len(top.Rows) > 0 {
		if err := WriteTable(filepath.Join(runDir, SummaryTop5File), top); err != nil {
			logger.Warn().Err(err).Msg("summary_top5.csv not written")
		}
	}
}

func readIfPresent(path string) *Table {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	t, err := ReadTable(path)
	if err != nil || len(t.Rows) == 0 {
		return nil
	}
	return t
}

func summarizeValidator(t *Table) []metric {
	counts := map[string]int{}
	for _, row := range t.Rows {
		s := strings.ToLower(strings.TrimSpace(row["status"]))
		if s != "" {
			counts[s]++
		}
	}
	out := []metric{{"validator_rows", strconv.Itoa(len(t.Rows))}}
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		out = append(out, metric{"rows_" + s, strconv.Itoa(counts[s])})
	}
	return out
}

func summarizeRecommend(t *Table) []metric {
	out := []metric{{"recommend_rows", strconv.Itoa(len(t.Rows))}}
	if avg, ok := columnMean(t, "requested_vcpu", "vcpu"); ok {
		out = append(out, metric{"avg_requested_vcpu", round2s(avg)})
	}
	if avg, ok := columnMean(t, "requested_memory_gib", "memory_gib"); ok {
		out = append(out, metric{"avg_requested_memory_gib", round2s(avg)})
	}
	counts := map[string]int{}
	for _, row := range t.Rows {
		if fit := strings.ToLower(strings.TrimSpace(row["fit_reason"])); fit != "" {
			counts[fit]++
		}
	}
	fits := make([]string, 0, len(counts))
	for f := range counts {
		fits = append(fits, f)
	}
	sort.Strings(fits)
	for _, f := range fits {
		out = append(out, metric{"fit_" + f, strconv.Itoa(counts[f])})
	}
	return out
}

var monthlyColumns = []string{
	"monthly_compute_usd", "monthly_ebs_usd", "monthly_s3_usd",
	"monthly_network_usd", "monthly_db_usd", "monthly_total_usd",
}

func summarizePrice(t *Table) ([]metric, *Table) {
	out := []metric{{"priced_rows", strconv.Itoa(len(t.Rows))}}
	for _, col := range monthlyColumns {
		sum := 0.0
		for _, row := range t.Rows {
			sum += number(row[col])
		}
		out = append(out, metric{"sum_" + col, usd(sum)})
	}
	if avg, ok := nonZeroMean(t, "price_per_hour_usd"); ok {
		out = append(out, metric{"avg_price_per_hour_usd", strconv.FormatFloat(avg, 'f', 4, 64)})
	}
	if avg, ok := nonZeroMean(t, "monthly_total_usd"); ok {
		out = append(out, metric{"avg_monthly_total_usd", usd(avg)})
	}

	ranked := append([]map[string]string(nil), t.Rows...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return number(ranked[i]["monthly_total_usd"]) > number(ranked[j]["monthly_total_usd"])
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	top := &Table{Header: []string{"id", "region", "recommended_instance_type", "price_per_hour_usd", "monthly_total_usd"}}
	for _, row := range ranked {
		view := make(map[string]string, len(top.Header))
		for _, col := range top.Header {
			view[col] = row[col]
		}
		top.Rows = append(top.Rows, view)
	}
	return out, top
}

// baselineTotal reads the baseline artifact, preferring its explicit TOTAL
// row over a re-sum.
func baselineTotal(path string) float64 {
	t := readIfPresent(path)
	if t == nil {
		return 0
	}
	sum := 0.0
	for _, row := range t.Rows {
		if strings.EqualFold(strings.TrimSpace(row["component"]), "TOTAL") {
			return number(row["monthly_usd"])
		}
		sum += number(row["monthly_usd"])
	}
	return sum
}

func number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func columnMean(t *Table, cols ...string) (float64, bool) {
	for _, col := range cols {
		if !hasColumn(t, col) {
			continue
		}
		sum := 0.0
		for _, row := range t.Rows {
			sum += number(row[col])
		}
		return sum / float64(len(t.Rows)), true
	}
	return 0, false
}

func nonZeroMean(t *Table, col string) (float64, bool) {
	sum, n := 0.0, 0
	for _, row := range t.Rows {
		if v := number(row[col]); v != 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func hasColumn(t *Table, col string) bool {
	for _, c := range t.Header {
		if c == col {
			return true
		}
	}
	return false
}

func usd(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

func round2s(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}
