// Package catalog turns the raw snapshot dataset into the view the operator
// works with: latest-only deduplication, filtering, sorting.
package catalog

import (
	"sort"

	"github.com/samber/lo"

	"buybox_console/internal/domain/entity"
)

// LatestPerSKU collapses a snapshot time-series into one record per SKU, the
// one with the newest CapturedAt. Idempotent: running it over an already
// collapsed set changes nothing. Ties on CapturedAt are not broken further;
// the stable sort lets input order decide.
func LatestPerSKU(snapshots []entity.Listing) []entity.Listing {
	sorted := make([]entity.Listing, len(snapshots))
	copy(sorted, snapshots)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CapturedAt.After(sorted[j].CapturedAt)
	})

	return lo.UniqBy(sorted, func(l entity.Listing) string {
		return l.SKU
	})
}

// SnapshotCounts reports how many raw snapshots each SKU has; the dashboard
// shows this next to latest-only rows without re-running deduplication.
func SnapshotCounts(snapshots []entity.Listing) map[string]int {
	return lo.CountValuesBy(snapshots, func(l entity.Listing) string {
		return l.SKU
	})
}
