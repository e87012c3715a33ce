// Package similarity provides the external item-similarity lookups consumed
// by the similarity accumulators: content-metadata Jaccard, point-of-
// interest Jaccard and price distance. Providers are loaded once at
// construction; a missing table is a deployment error.
package similarity

// Provider exposes the two operations the accumulators combine with their
// locally tracked item sets, plus the attribute-set size used by the
// POI-count feature.
type Provider interface {
	// Pairwise returns the similarity of two items.
	Pairwise(a, b int) float64

	// Aggregate returns the mean similarity of item to each member of
	// items, or the provider's neutral default for an empty list.
	Aggregate(items []int, item int) float64

	// SetSize returns the size of the item's attribute set.
	SetSize(item int) int
}
