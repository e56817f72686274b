package tasks

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"pharmaplus_echo/internal/models"
	"pharmaplus_echo/internal/services"
)

// RecomputePharmacyStatsTaskName refreshes the cached aggregate snapshot of
// every pharmacy (or one, when pharmacy_id is given).
const RecomputePharmacyStatsTaskName = "recompute_pharmacy_stats"

// RecomputePharmacyStatsHandler recomputes pharmacy aggregates. A single
// failed pharmacy is logged and skipped so the rest still refresh.
func RecomputePharmacyStatsHandler(ctx context.Context, db *gorm.DB, args map[string]interface{}) (map[string]interface{}, error) {
	if id, err := uintArg(args, "pharmacy_id"); err == nil {
		stats, err := services.CalculatePharmacyStats(ctx, db, id)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"status":      "success",
			"pharmacy_id": id,
			"totalOrders": stats.TotalOrders,
		}, nil
	}

	var pharmacies []models.Pharmacy
	if err := db.Find(&pharmacies).Error; err != nil {
		return nil, err
	}

	refreshed := 0
	for _, p := range pharmacies {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if _, err := services.CalculatePharmacyStats(ctx, db, p.ID); err != nil {
			log.Printf("[Task: %s] failed for pharmacy %d: %v", RecomputePharmacyStatsTaskName, p.ID, err)
			continue
		}
		refreshed++
	}

	return map[string]interface{}{
		"status":    "success",
		"refreshed": refreshed,
		"total":     len(pharmacies),
	}, nil
}

// EnsureRecurringStatsTask installs the hourly stats refresh task if no
// active one exists yet. Safe to call on every worker start.
func EnsureRecurringStatsTask(db *gorm.DB) error {
	var existing models.ScheduledTask
	err := db.Where("task_name = ? AND status = ?",
		RecomputePharmacyStatsTaskName, models.ScheduledTaskStatusActive).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	interval := "FREQ=HOURLY;INTERVAL=1"
	task, err := BuildScheduledTask(
		RecomputePharmacyStatsTaskName,
		map[string]interface{}{},
		time.Now().Add(time.Hour),
		&interval,
		models.ScheduledTaskTypeRecurring,
		1,
	)
	if err != nil {
		return err
	}
	return db.Create(task).Error
}
