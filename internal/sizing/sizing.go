// Package sizing selects the best-fit compute shape for a workload's vCPU
// and memory requirement using family-preference ranked bin packing.
package sizing

import (
	"math"
	"sort"
	"strings"

	"cloudsizer/internal/catalog"
)

// Profile is a sizing preference category. It ranks shape families so that,
// for example, a compute-heavy workload lands on c-family types before
// general purpose ones.
type Profile string

const (
	Balanced Profile = "balanced"
	Compute  Profile = "compute"
	Memory   Profile = "memory"
)

// familyPrefs ranks preferred instance families per profile, best first.
// Families not listed rank after every listed one.
var familyPrefs = map[Profile][]string{
	Balanced: {"m7i", "m6i", "m5"},
	Compute:  {"c7i", "c6i", "c5"},
	Memory:   {"r7i", "r6i", "r5"},
}

// ParseProfile returns the profile named by s, and whether s named one.
func ParseProfile(s string) (Profile, bool) {
	switch Profile(strings.ToLower(strings.TrimSpace(s))) {
	case Balanced:
		return Balanced, true
	case Compute:
		return Compute, true
	case Memory:
		return Memory, true
	default:
		return Balanced, false
	}
}

// InferProfile derives a profile from the memory-per-vCPU ratio when the row
// did not carry a usable one. Non-positive inputs default to balanced.
func InferProfile(vcpu int, memGiB float64) Profile {
	if vcpu <= 0 || memGiB <= 0 {
		return Balanced
	}
	perVCPU := memGiB / float64(vcpu)
	switch {
	case perVCPU <= 3.0:
		return Compute
	case perVCPU >= 6.0:
		return Memory
	default:
		return Balanced
	}
}

// FitReason classifies which dimension drove the selection away from an
// exact match. Diagnostic only; it never changes which shape is chosen.
type FitReason string

const (
	FitExact         FitReason = "exact"
	FitCPUBound      FitReason = "cpu-bound"
	FitMemoryBound   FitReason = "memory-bound"
	FitNoFitFallback FitReason = "no-fit-fallback"
)

// Outcome is the result of selecting a shape for one workload.
// Chosen is nil when no shape in the catalog satisfies both minimums.
type Outcome struct {
	Chosen         *catalog.Shape
	OverprovVCPU   int
	OverprovMemGiB float64
	Fit            FitReason
}

// familyRank returns the preference rank of a shape's family, with an
// overflow rank for families outside the profile's list.
func familyRank(families []string, shapeName string) int {
	fam := shapeName
	if i := strings.IndexByte(shapeName, '.'); i >= 0 {
		fam = shapeName[:i]
	}
	for i, f := range families {
		if f == fam {
			return i
		}
	}
	return len(families) + 1
}

// Select picks the smallest shape satisfying both minimums, preferring the
// profile's families. Candidates are ordered by family rank, then vCPU, then
// memory, then name, so identical inputs always pick the identical shape.
//
// The fit classification compares the smallest shape meeting only the vCPU
// requirement against the smallest meeting only the memory requirement.
// That comparison is evaluated independently of the combined match and can,
// in edge cases, reference a different candidate than the one chosen.
func Select(cat catalog.Catalog, profile Profile, minVCPU int, minMemGiB float64) Outcome {
	families, ok := familyPrefs[profile]
	if !ok {
		families = familyPrefs[Balanced]
	}

	var candidates []catalog.Shape
	for _, shape := range cat {
		if shape.VCPU >= minVCPU && shape.MemoryGiB >= minMemGiB {
			candidates = append(candidates, shape)
		}
	}
	if len(candidates) == 0 {
		return Outcome{Fit: FitNoFitFallback}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		ra, rb := familyRank(families, a.Name), familyRank(families, b.Name)
		if ra != rb {
			return ra < rb
		}
		if a.VCPU != b.VCPU {
			return a.VCPU < b.VCPU
		}
		if a.MemoryGiB != b.MemoryGiB {
			return a.MemoryGiB < b.MemoryGiB
		}
		return a.Name < b.Name
	})

	chosen := candidates[0]
	out := Outcome{
		Chosen:         &chosen,
		OverprovVCPU:   chosen.VCPU - minVCPU,
		OverprovMemGiB: round2(chosen.MemoryGiB - minMemGiB),
	}
	out.Fit = classifyFit(cat, chosen, minVCPU, minMemGiB)
	return out
}

// SelectSmallest picks the smallest shape satisfying both minimums with no
// family preference, ordered by vCPU, then memory, then name. Used for
// catalogs whose size names carry no profile-rankable family, such as Azure
// VM sizes. Fit is exact or empty; the bound classification only applies to
// family-ranked selection.
func SelectSmallest(cat catalog.Catalog, minVCPU int, minMemGiB float64) Outcome {
	var best *catalog.Shape
	for _, shape := range cat {
		if shape.VCPU < minVCPU || shape.MemoryGiB < minMemGiB {
			continue
		}
		shape := shape
		if best == nil ||
			shape.VCPU < best.VCPU ||
			(shape.VCPU == best.VCPU && shape.MemoryGiB < best.MemoryGiB) ||
			(shape.VCPU == best.VCPU && shape.MemoryGiB == best.MemoryGiB && shape.Name < best.Name) {
			best = &shape
		}
	}
	if best == nil {
		return Outcome{Fit: FitNoFitFallback}
	}
	out := Outcome{
		Chosen:         best,
		OverprovVCPU:   best.VCPU - minVCPU,
		OverprovMemGiB: round2(best.MemoryGiB - minMemGiB),
	}
	if best.VCPU == minVCPU && round2(best.MemoryGiB) == round2(minMemGiB) {
		out.Fit = FitExact
	}
	return out
}

func classifyFit(cat catalog.Catalog, chosen catalog.Shape, minVCPU int, minMemGiB float64) FitReason {
	if chosen.VCPU == minVCPU && round2(chosen.MemoryGiB) == round2(minMemGiB) {
		return FitExact
	}

	cpuOnly := smallestMeetingCPU(cat, minVCPU)
	memOnly := smallestMeetingMem(cat, minMemGiB)
	if cpuOnly == nil && memOnly == nil {
		return FitNoFitFallback
	}
	if rankGE(memOnly, cpuOnly) {
		return FitMemoryBound
	}
	return FitCPUBound
}

// rankGE compares shapes by (vCPU, memory), treating nil as infinitely large.
func rankGE(a, b *catalog.Shape) bool {
	av, am := shapeRank(a)
	bv, bm := shapeRank(b)
	if av != bv {
		return av > bv
	}
	return am >= bm
}

func shapeRank(s *catalog.Shape) (float64, float64) {
	if s == nil {
		return math.Inf(1), math.Inf(1)
	}
	return float64(s.VCPU), s.MemoryGiB
}

// smallestMeetingCPU finds the smallest shape satisfying only the vCPU
// minimum, ignoring memory.
func smallestMeetingCPU(cat catalog.Catalog, minVCPU int) *catalog.Shape {
	var best *catalog.Shape
	for _, shape := range cat {
		if shape.VCPU < minVCPU {
			continue
		}
		shape := shape
		if best == nil ||
			shape.VCPU < best.VCPU ||
			(shape.VCPU == best.VCPU && shape.MemoryGiB < best.MemoryGiB) ||
			(shape.VCPU == best.VCPU && shape.MemoryGiB == best.MemoryGiB && shape.Name < best.Name) {
			best = &shape
		}
	}
	return best
}

// smallestMeetingMem finds the smallest shape satisfying only the memory
// minimum, ignoring vCPU.
func smallestMeetingMem(cat catalog.Catalog, minMemGiB float64) *catalog.Shape {
	var best *catalog.Shape
	for _, shape := range cat {
		if shape.MemoryGiB < minMemGiB {
			continue
		}
		shape := shape
		if best == nil ||
			shape.MemoryGiB < best.MemoryGiB ||
			(shape.MemoryGiB == best.MemoryGiB && shape.VCPU < best.VCPU) ||
			(shape.MemoryGiB == best.MemoryGiB && shape.VCPU == best.VCPU && shape.Name < best.Name) {
			best = &shape
		}
	}
	return best
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
