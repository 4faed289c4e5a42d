// Package cli wires the command surface: recommend, price, baseline, the
// region listers and version. Commands build a run.Runner from live provider
// adapters and write artifacts into timestamped run folders.
package cli

import (
	"fmt"
	"net/http"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	awspricing "github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cloudsizer/internal/catalog"
	"cloudsizer/internal/pricing"
	"cloudsizer/internal/rates"
	"cloudsizer/internal/run"
)

// Version is stamped by the release build.
var Version = "dev"

type app struct {
	logger  zerolog.Logger
	verbose bool
}

// NewRootCmd assembles the CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "cloudsizer",
		Short:         "Size and price cloud workloads from a spreadsheet",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is a convenience for rate overrides and credentials;
			// absence is the normal case.
			_ = godotenv.Load()
			a.logger = newLogger(a.verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.recommendCmd(),
		a.priceCmd(),
		a.baselineCmd(),
		listAWSRegionsCmd(),
		listAzureRegionsCmd(),
		versionCmd(),
	)
	return root
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	} else if env := os.Getenv("LOG_LEVEL"); env != "" {
		if parsed, err := zerolog.ParseLevel(env); err == nil {
			level = parsed
		}
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// newRunner builds a Runner with live adapters for the requested cloud. AWS
// sessions are created only for AWS runs so Azure-only operators need no AWS
// credentials.
func (a *app) newRunner(cmd *cobra.Command, needAWS bool, ratesPath string) (*run.Runner, error) {
	cm := rates.FromEnv(a.logger)
	overrides, err := rates.LoadOverrides(ratesPath, a.logger)
	if err != nil {
		return nil, err
	}

	r := &run.Runner{
		Logger:        a.logger,
		Rates:         cm,
		RateOverrides: overrides,
		AzureCatalog:  catalog.NewAzureSource(a.logger),
		AzurePrices:   pricing.NewAzureRetail(&http.Client{Timeout: 60 * time.Second}, a.logger),
	}
	if needAWS {
		cfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
		if err != nil {
			return nil, fmt.Errorf("loading AWS configuration: %w", err)
		}
		r.AWSCatalog = catalog.NewAWSSource(func(region string) ec2.DescribeInstanceTypesAPIClient {
			return ec2.NewFromConfig(cfg, func(o *ec2.Options) { o.Region = region })
		}, a.logger)

		pricingCfg := cfg.Copy()
		pricingCfg.Region = pricing.PricingEndpointRegion
		r.AWSPrices = pricing.NewAWSPricer(awspricing.NewFromConfig(pricingCfg), a.logger)
	}
	return r, nil
}

// resolveHours picks the powered-on hours for a run: an explicit
// --hours-per-month flag wins, otherwise the HOURS_PER_MONTH environment
// value captured in the rate card, falling back to the flag default.
func resolveHours(flagChanged bool, flagVal float64, r rates.Rates) float64 {
	if !flagChanged && r.HoursPerMonth > 0 {
		return r.HoursPerMonth
	}
	return flagVal
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
