// Package catalog provides the per-region capability catalogs: what compute
// shapes (EC2 instance types, Azure VM sizes) exist and how much vCPU and
// memory each one carries. Fetching is provider-specific; the in-memory
// shape of the data is not.
package catalog

import "context"

// Shape is one provider compute size: an instance type or VM size with
// fixed vCPU and memory.
type Shape struct {
	Name      string
	VCPU      int
	MemoryGiB float64
}

// Catalog maps shape name to its capabilities for one (cloud, region) pair.
// A Catalog is a read-only snapshot for the duration of a run.
type Catalog map[string]Shape

// Source fetches the capability catalog for a region. An error indicates an
// unusable provider session (credentials, connectivity) and is fatal for the
// run; an empty catalog is a legitimate result.
type Source interface {
	Fetch(ctx context.Context, region string) (Catalog, error)
}

// Static adapts a fixed Catalog into a Source. Used by tests and by callers
// that already hold a snapshot.
type Static Catalog

// Fetch returns the wrapped catalog unchanged.
func (s Static) Fetch(_ context.Context, _ string) (Catalog, error) {
	return Catalog(s), nil
}
