package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cloudsizer/internal/pricing"
	"cloudsizer/internal/run"
	"cloudsizer/internal/workload"
)

func (a *app) priceCmd() *cobra.Command {
	var (
		inPath       string
		cloudName    string
		latest       bool
		region       string
		osName       string
		hours        float64
		noMonthly    bool
		refreshAzure bool
		outputPath   string
		ratesPath    string
		sqlRatesPath string
	)
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a recommendation file into monthly line items",
		RunE: func(cmd *cobra.Command, args []string) error {
			cloud := workload.ParseCloud(cloudName)

			if inPath == "" {
				if !latest {
					return errors.New("provide --in <file> or use --latest")
				}
				inPath = run.FindLatestRecommend(run.DefaultOutputDir)
				if inPath == "" {
					return fmt.Errorf("--latest set but no recommendation files found under ./%s", run.DefaultOutputDir)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Using latest recommendation file: %s\n", inPath)
			}

			table, err := run.ReadTable(inPath)
			if err != nil {
				return err
			}

			outPath, err := priceOutputPath(inPath, outputPath)
			if err != nil {
				return err
			}

			runner, err := a.newRunner(cmd, cloud == workload.AWS, ratesPath)
			if err != nil {
				return err
			}
			runner.SQLOverrides, err = pricing.LoadSQLOverrides(sqlRatesPath, a.logger)
			if err != nil {
				return err
			}

			priced, err := runner.Price(cmd.Context(), table, run.PriceParams{
				Cloud:         cloud,
				DefaultRegion: region,
				DefaultOS:     osName,
				Hours:         resolveHours(cmd.Flags().Changed("hours-per-month"), hours, runner.Rates),
				NoMonthly:     noMonthly,
				RefreshAzure:  refreshAzure,
			})
			if err != nil {
				return err
			}

			if err := run.WriteTable(outPath, priced); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Input:  %s\n", inPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote priced recommendations -> %s\n", outPath)

			run.WriteRunSummary(a.logger, filepath.Dir(outPath))
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "recommendation CSV to price; use --latest to pick the newest")
	cmd.Flags().StringVar(&cloudName, "cloud", "", "cloud of the recommendation file: aws or azure")
	cmd.Flags().BoolVar(&latest, "latest", false, "use the most recent recommend file under ./output")
	cmd.Flags().StringVar(&region, "region", "", "default region for rows missing one")
	cmd.Flags().StringVar(&osName, "os", "Linux", "default OS for compute pricing: Linux, Windows, RHEL or SUSE")
	cmd.Flags().Float64Var(&hours, "hours-per-month", 730, "assumed powered-on hours per month")
	cmd.Flags().BoolVar(&noMonthly, "no-monthly", false, "write only price_per_hour, skip the monthly breakdown")
	cmd.Flags().BoolVar(&refreshAzure, "refresh-azure-prices", false, "refresh the Azure retail price cache before pricing")
	cmd.Flags().StringVar(&outputPath, "output", "", "output path (default: same run folder as the input)")
	cmd.Flags().StringVar(&ratesPath, "rates", "", "region-keyed YAML rate overrides file")
	cmd.Flags().StringVar(&sqlRatesPath, "azure-sql-rates", "", "exact-key Azure SQL rate overrides file (default "+pricing.DefaultSQLOverridesPath+")")
	_ = cmd.MarkFlagRequired("cloud")
	return cmd
}

// priceOutputPath reuses the input's run folder when it has one, otherwise
// creates a fresh run folder.
func priceOutputPath(inPath, outputPath string) (string, error) {
	if outputPath != "" {
		return outputPath, nil
	}
	if dir := run.DeriveRunDir(inPath); dir != "" {
		return filepath.Join(dir, run.PriceFile), nil
	}
	dir, err := run.NewRunDir(run.DefaultOutputDir, time.Now())
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, run.PriceFile), nil
}
