// Package run orchestrates the batch pipeline: validate rows, size them
// against a provider catalog, price the results, and write the per-run
// artifacts. A run is single-cloud; rows naming another provider fail the
// run instead of being silently skipped.
package run

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cloudsizer/internal/catalog"
	"cloudsizer/internal/pricing"
	"cloudsizer/internal/rates"
)

var (
	// ErrMixedClouds means the input names a provider other than the run's.
	ErrMixedClouds = errors.New("input contains rows for a different cloud")
	// ErrNoUsableRows means validation left nothing to size.
	ErrNoUsableRows = errors.New("no valid rows to output")
	// ErrStrict means strict mode rejected a batch with rec_only or error rows.
	ErrStrict = errors.New("strict mode: rows block recommendation or pricing")
	// ErrRegionRequired means an AWS run had neither a per-row region nor a default.
	ErrRegionRequired = errors.New("aws region required: use --region or provide per-row")
)

// AWSPriceSource resolves both EC2 and RDS prices; satisfied by
// *pricing.AWSPricer.
type AWSPriceSource interface {
	pricing.ComputeSource
	pricing.DatabaseSource
}

// AzurePriceSource resolves VM prices with a refreshable per-region cache;
// satisfied by *pricing.AzureRetail.
type AzurePriceSource interface {
	pricing.ComputeSource
	Refresh(region string)
}

// Runner holds the provider adapters and cost model for one process. All
// fields for the clouds a run does not touch may be nil.
type Runner struct {
	Logger zerolog.Logger

	Rates         rates.Rates
	RateOverrides rates.Overrides
	SQLOverrides  pricing.SQLOverrides

	AWSCatalog   catalog.Source
	AzureCatalog catalog.Source

	AWSPrices   AWSPriceSource
	AzurePrices AzurePriceSource
}

// newRunID tags one invocation in logs and artifacts.
func newRunID() string {
	return uuid.NewString()
}
