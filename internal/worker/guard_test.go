package worker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"buybox_console/internal/config"
	"buybox_console/internal/domain"
	"buybox_console/internal/domain/entity"
	"buybox_console/internal/domain/service/pricing"
	"buybox_console/internal/worker"
	"buybox_console/pkg/errcodes"
)

func guardThresholds() config.Thresholds {
	return config.Thresholds{
		LowFeeRate:       0.08,
		StandardFeeRate:  0.15,
		FeeTierBoundary:  10.0,
		MinMarginPercent: 10,
	}
}

func TestGuardCheck(t *testing.T) {
	rq := require.New(t)

	cfg := guardThresholds()
	guard := worker.NewGuard(pricing.NewCalculator(cfg), cfg)

	l := entity.Listing{ID: "r-1", SKU: "BOX-1", YourCurrentPrice: 12, BaseCost: 8}

	t.Run("margin above minimum passes", func(*testing.T) {
		// 12.00 at 15% fee on 8.00: margin 18.3%.
		rq.NoError(guard.Check(l, 12.00, false))
	})

	t.Run("margin exactly at minimum passes", func(*testing.T) {
		// 7.50 cost at 10.00 with the 15% fee projects exactly 10%.
		exact := entity.Listing{ID: "r-3", SKU: "BOX-3", YourCurrentPrice: 12, BaseCost: 7.5}
		rq.NoError(guard.Check(exact, 10.00, false))
	})

	t.Run("margin just below minimum blocks", func(*testing.T) {
		// 10.66 projects 9.95%.
		err := guard.Check(l, 10.66, false)
		rq.Error(err)
		rq.True(domain.HasCode(err, errcodes.MarginTooLow))
	})

	t.Run("confirmation overrides the gate", func(*testing.T) {
		rq.NoError(guard.Check(l, 10.66, true))
	})

	t.Run("non-positive price rejected", func(*testing.T) {
		err := guard.Check(l, 0, false)
		rq.Error(err)
		rq.True(domain.HasCode(err, errcodes.InvalidTargetPrice))
	})

	t.Run("incomplete costs rejected", func(*testing.T) {
		noCost := entity.Listing{ID: "r-2", SKU: "BOX-2", YourCurrentPrice: 12}
		err := guard.Check(noCost, 12.00, false)
		rq.Error(err)
		rq.True(domain.HasCode(err, errcodes.InvalidTargetPrice))
	})

	t.Run("confirmation does not bypass invalid prices", func(*testing.T) {
		err := guard.Check(l, -1, true)
		rq.Error(err)
		rq.True(domain.HasCode(err, errcodes.InvalidTargetPrice))
	})
}
