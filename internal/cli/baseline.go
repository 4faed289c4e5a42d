package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cloudsizer/internal/baseline"
	"cloudsizer/internal/run"
)

func (a *app) baselineCmd() *cobra.Command {
	var (
		in            baseline.Inputs
		environments  int
		basePerAZ     int
		overridesPath string
		outputPath    string
	)
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Estimate the fixed monthly landing-zone cost for a region",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Base endpoints scale with environment count unless set
			// explicitly: 8 core service endpoints per AZ per environment.
			if !cmd.Flags().Changed("vpce-base-per-az") {
				envs := environments
				if envs < 1 {
					envs = 1
				}
				basePerAZ = 8 * envs
			}
			in.VPCEBasePerAZ = basePerAZ
			if !cmd.Flags().Changed("vpce-data-gb") {
				in.VPCEDataGB = in.TGWDataGB
			}

			runner, err := a.newRunner(cmd, true, "")
			if err != nil {
				return err
			}
			in.HoursPerMonth = resolveHours(cmd.Flags().Changed("hours-per-month"), in.HoursPerMonth, runner.Rates)

			r := baseline.ResolveRates(a.logger, runner.Rates, in.Region, overridesPath)
			items, total := baseline.Estimate(cmd.Context(), a.logger, in, r, runner.AWSPrices)

			outPath := outputPath
			if outPath == "" {
				dir, err := run.NewRunDir(run.DefaultOutputDir, time.Now())
				if err != nil {
					return err
				}
				outPath = filepath.Join(dir, run.BaselineFile)
			}
			if err := run.WriteTable(outPath, baselineTable(items)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote baseline -> %s\n", outPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Monthly baseline total: $%s\n", total.StringFixed(2))

			run.WriteRunSummary(a.logger, filepath.Dir(outPath))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Region, "region", "", "AWS region, e.g. us-east-1")
	cmd.Flags().IntVar(&in.TGWAttachments, "tgw-attachments", 1, "number of Transit Gateway attachments")
	cmd.Flags().Float64Var(&in.TGWDataGB, "tgw-data-gb", 100, "TGW data processed per month (GB)")
	cmd.Flags().IntVar(&environments, "environments", 1, "number of environments sharing the landing zone")
	cmd.Flags().IntVar(&basePerAZ, "vpce-base-per-az", 8, "base interface endpoints per AZ (default: 8 per environment)")
	cmd.Flags().IntVar(&in.VPCEExtraPerAZ, "vpce-extra-per-az", 0, "extra interface endpoints per AZ")
	cmd.Flags().IntVar(&in.VPCEAZs, "vpce-azs", 2, "number of AZs")
	cmd.Flags().Float64Var(&in.VPCEDataGB, "vpce-data-gb", 100, "interface endpoint data per month (GB, default: same as TGW)")
	cmd.Flags().Float64Var(&in.HoursPerMonth, "hours-per-month", 730, "assumed hours per month")
	cmd.Flags().StringVar(&in.RunnerInstanceType, "gitrunner-instance-type", "t3.medium", "CI runner EC2 instance type")
	cmd.Flags().IntVar(&in.RunnerCount, "gitrunner-count", 1, "number of CI runner instances")
	cmd.Flags().Float64Var(&in.RunnerOSGB, "gitrunner-os-gb", 256, "CI runner OS disk size (GB)")
	cmd.Flags().Float64Var(&in.TFBackendS3GB, "tf-backend-s3-gb", 1, "Terraform backend bucket size (GB)")
	cmd.Flags().StringVar(&overridesPath, "baseline-rates", "", "per-region baseline rate overrides JSON")
	cmd.Flags().StringVar(&outputPath, "output", "", "baseline CSV path (default: run folder)")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}

func baselineTable(items []baseline.Item) *run.Table {
	t := &run.Table{Header: []string{"component", "detail", "qty", "unit", "rate", "monthly_usd", "region", "notes"}}
	for _, it := range items {
		t.Rows = append(t.Rows, map[string]string{
			"component":   it.Component,
			"detail":      it.Detail,
			"qty":         it.Qty,
			"unit":        it.Unit,
			"rate":        it.Rate,
			"monthly_usd": it.MonthlyUSD,
			"region":      it.Region,
			"notes":       it.Notes,
		})
	}
	return t
}
