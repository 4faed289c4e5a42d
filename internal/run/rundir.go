package run

import (
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// Artifact file names inside a run folder.
const (
	RecommendFile       = "recommend.csv"
	ValidatorReportFile = "validator_report.csv"
	PriceFile           = "price.csv"
	BaselineFile        = "baseline.csv"
	SummaryCSVFile      = "summary.csv"
	SummaryJSONFile     = "summary.json"
	SummaryTop5File     = "summary_top5.csv"
)

// DefaultOutputDir is the root under which run folders are created.
const DefaultOutputDir = "output"

var (
	dateDirPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeDirPattern = regexp.MustCompile(`^\d{6}$`)
)

// NewRunDir creates and returns base/YYYY-MM-DD/HHMMSS for now.
func NewRunDir(base string, now time.Time) (string, error) {
	dir := filepath.Join(base, now.Format("2006-01-02"), now.Format("150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// DeriveRunDir returns the run folder a recommendation file lives in, when
// its path matches the base/YYYY-MM-DD/HHMMSS layout, otherwise "".
func DeriveRunDir(recommendPath string) string {
	parent := filepath.Dir(recommendPath)
	if timeDirPattern.MatchString(filepath.Base(parent)) &&
		dateDirPattern.MatchString(filepath.Base(filepath.Dir(parent))) {
		return parent
	}
	return ""
}

// FindLatestRecommend walks the output tree for the most recently modified
// recommend.csv. Returns "" when none exists.
func FindLatestRecommend(base string) string {
	var newest string
	var newestMod time.Time
	_ = filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if filepath.Base(path) != RecommendFile {
			return nil
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = path
			newestMod = info.ModTime()
		}
		return nil
	})
	return newest
}
