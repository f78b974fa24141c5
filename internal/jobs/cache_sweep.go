package jobs

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// sweepVolatileRegions сбрасывает быстро устаревающие регионы кеша:
// всё, что связано со сдачами, посещаемостью и заданиями.
func (d *Deps) sweepVolatileRegions(ctx context.Context) error {
	cleared := 0
	for _, region := range d.Cache.Regions() {
		name := string(region)
		if strings.Contains(name, "submission") ||
			strings.Contains(name, "attendance") ||
			strings.Contains(name, "assignment") {
			d.Cache.ClearRegion(region)
			cleared++
		}
	}
	d.Log.Info("сброшены волатильные регионы кеша", zap.Int("regions", cleared))
	return nil
}
