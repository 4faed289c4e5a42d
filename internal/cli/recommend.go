package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cloudsizer/internal/catalog"
	"cloudsizer/internal/run"
	"cloudsizer/internal/workload"
)

func (a *app) recommendCmd() *cobra.Command {
	var (
		inPath     string
		cloudName  string
		region     string
		strict     bool
		reportPath string
		outputPath string
		ratesPath  string
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Validate rows and recommend instance sizes (no pricing)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cloud := workload.ParseCloud(cloudName)

			if cloud == workload.Azure {
				if err := catalog.Preflight(cmd.Context()); err != nil {
					return fmt.Errorf("azure preflight failed: %w", err)
				}
			}

			table, err := run.ReadTable(inPath)
			if err != nil {
				return err
			}

			recOut, repOut, err := recommendPaths(outputPath, reportPath)
			if err != nil {
				return err
			}

			runner, err := a.newRunner(cmd, cloud == workload.AWS, ratesPath)
			if err != nil {
				return err
			}

			res, runErr := runner.Recommend(cmd.Context(), table, run.RecommendParams{
				Cloud:  cloud,
				Region: region,
				Strict: strict,
			})
			// The report is written even when the run fails, so the operator
			// can see which rows sank it.
			if res != nil && len(res.Report.Rows) > 0 {
				if err := run.WriteTable(repOut, run.ReportTable(res.Report)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Validation: rows=%d | ok=%d | rec_only=%d | error=%d\n",
					len(res.Report.Rows), len(res.Report.OK), len(res.Report.RecOnly), len(res.Report.Errored))
			}
			if runErr != nil {
				if errors.Is(runErr, run.ErrStrict) || errors.Is(runErr, run.ErrNoUsableRows) {
					return fmt.Errorf("%w; see %s", runErr, repOut)
				}
				return runErr
			}

			if err := run.WriteTable(recOut, res.Table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote recommendations -> %s\n", recOut)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote validator report -> %s\n", repOut)

			run.WriteRunSummary(a.logger, filepath.Dir(recOut))
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input CSV file")
	cmd.Flags().StringVar(&cloudName, "cloud", "", "cloud to size for: aws or azure")
	cmd.Flags().StringVar(&region, "region", "", "region override applied to every row")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail if any row is rec_only or error")
	cmd.Flags().StringVar(&reportPath, "validator-report", "", "validator report path (default: run folder)")
	cmd.Flags().StringVar(&outputPath, "output", "", "recommendations path (default: run folder)")
	cmd.Flags().StringVar(&ratesPath, "rates", "", "region-keyed YAML rate overrides file")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("cloud")
	return cmd
}

// recommendPaths decides where recommend.csv and validator_report.csv land.
// Explicit paths are honored, a missing sibling is placed next to the given
// one, and with neither a fresh run folder is created.
func recommendPaths(outputPath, reportPath string) (string, string, error) {
	if outputPath == "" && reportPath == "" {
		dir, err := run.NewRunDir(run.DefaultOutputDir, time.Now())
		if err != nil {
			return "", "", err
		}
		return filepath.Join(dir, run.RecommendFile), filepath.Join(dir, run.ValidatorReportFile), nil
	}
	if outputPath == "" {
		outputPath = filepath.Join(filepath.Dir(reportPath), run.RecommendFile)
	}
	if reportPath == "" {
		reportPath = filepath.Join(filepath.Dir(outputPath), run.ValidatorReportFile)
	}
	return outputPath, reportPath, nil
}
