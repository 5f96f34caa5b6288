package catalog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"buybox_console/internal/domain/entity"
	"buybox_console/internal/domain/service/catalog"
)

func snapshot(id, sku string, capturedAt time.Time) entity.Listing {
	return entity.Listing{
		ID:               id,
		SKU:              sku,
		YourCurrentPrice: 12.00,
		BaseCost:         8.00,
		CapturedAt:       capturedAt,
	}
}

func TestLatestPerSKU(t *testing.T) {
	rq := require.New(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	raw := []entity.Listing{
		snapshot("a-0", "A", base),
		snapshot("b-0", "B", base.Add(time.Hour)),
		snapshot("a-1", "A", base.Add(time.Hour)),
		snapshot("a-2", "A", base.Add(2*time.Hour)),
	}

	deduped := catalog.LatestPerSKU(raw)

	rq.Len(deduped, 2)

	bySKU := map[string]entity.Listing{}
	for _, l := range deduped {
		bySKU[l.SKU] = l
	}

	rq.Equal("a-2", bySKU["A"].ID)
	rq.Equal("b-0", bySKU["B"].ID)

	// The raw set is untouched, so historical counts stay available.
	rq.Len(raw, 4)
}

func TestLatestPerSKUIdempotent(t *testing.T) {
	rq := require.New(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	raw := []entity.Listing{
		snapshot("a-0", "A", base),
		snapshot("a-1", "A", base.Add(time.Hour)),
		snapshot("b-0", "B", base),
		snapshot("c-0", "C", base.Add(2*time.Hour)),
	}

	once := catalog.LatestPerSKU(raw)
	twice := catalog.LatestPerSKU(once)

	rq.Equal(once, twice)
}

func TestLatestPerSKUTieKeepsFirstEncountered(t *testing.T) {
	rq := require.New(t)

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	deduped := catalog.LatestPerSKU([]entity.Listing{
		snapshot("a-0", "A", at),
		snapshot("a-1", "A", at),
	})

	rq.Len(deduped, 1)
	rq.Equal("a-0", deduped[0].ID)
}

func TestSnapshotCounts(t *testing.T) {
	rq := require.New(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	counts := catalog.SnapshotCounts([]entity.Listing{
		snapshot("a-0", "A", base),
		snapshot("a-1", "A", base.Add(time.Hour)),
		snapshot("b-0", "B", base),
	})

	rq.Equal(map[string]int{"A": 2, "B": 1}, counts)
}
