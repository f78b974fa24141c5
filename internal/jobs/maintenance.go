package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/events"
)

// weeklyMaintenance полностью сбрасывает кеш и уведомляет администратора.
func (d *Deps) weeklyMaintenance(ctx context.Context) error {
	regions := len(d.Cache.Regions())
	d.Cache.ClearAll()

	details := fmt.Sprintf("Кеш полностью сброшен (%d регионов), %s.",
		regions, d.Clock.Now().In(d.Loc).Format("02.01.2006 15:04"))
	d.Events.Publish(events.TopicNotificationEvents, "MAINTENANCE_DONE", details)
	d.Notify.Maintenance(d.AdminEmail, details)
	d.Log.Info("еженедельное обслуживание выполнено", zap.Int("regions", regions))
	return nil
}
