package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/drivethru-app/models"
	"github.com/yeremiapane/drivethru-app/utils"
)

// Journal is an append-only audit log of order events. The in-memory store
// stays the source of truth; the journal only keeps history across restarts.
type Journal struct {
	DB *gorm.DB
}

func NewJournal(db *gorm.DB) *Journal {
	return &Journal{DB: db}
}

// Notify appends the event. Failures are logged, never returned to callers.
func (j *Journal) Notify(ctx context.Context, event models.OrderEvent) {
	if err := j.Record(ctx, event); err != nil {
		utils.ErrorLogger.WithField("order_id", event.OrderID).Errorf("Error recording order event: %v", err)
	}
}

func (j *Journal) Record(ctx context.Context, event models.OrderEvent) error {
	if err := j.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("record %s event for order %d: %w", event.Action, event.OrderID, err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]models.OrderEvent, error) {
	var events []models.OrderEvent
	if err := j.DB.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	return events, nil
}

// ForOrder returns the lifecycle of a single order in the order it happened.
func (j *Journal) ForOrder(ctx context.Context, orderID int) ([]models.OrderEvent, error) {
	var events []models.OrderEvent
	if err := j.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list journal for order %d: %w", orderID, err)
	}
	return events, nil
}
