// Package pricing resolves hourly compute and database prices from provider
// pricing services. Lookups follow a found-or-not contract: a missing price
// is a normal outcome reported as ok=false, never an error. Errors are
// reserved for sessions that cannot work at all.
package pricing

import "context"

// ComputeSource resolves an on-demand hourly price for one instance size.
type ComputeSource interface {
	VMHourly(ctx context.Context, region, instanceType, osName string) (float64, bool)
}

// DatabaseSource resolves an on-demand hourly price for a managed database
// instance class.
type DatabaseSource interface {
	DBHourly(ctx context.Context, region, engine, instanceClass, licenseModel string, multiAZ bool) (float64, bool)
}

// StaticCompute is a fixed price table keyed by instanceType, for tests and
// offline runs.
type StaticCompute map[string]float64

func (s StaticCompute) VMHourly(_ context.Context, _, instanceType, _ string) (float64, bool) {
	p, ok := s[instanceType]
	return p, ok
}
