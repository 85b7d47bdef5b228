package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"telecast/internal/models"
)

// QueueItemRepository handles database operations for queue items
type QueueItemRepository struct {
	db *DB
}

// NewQueueItemRepository creates a new queue item repository
func NewQueueItemRepository(db *DB) *QueueItemRepository {
	return &QueueItemRepository{db: db}
}

// Create inserts a new queue item into the database
func (r *QueueItemRepository) Create(ctx context.Context, item *models.QueueItem) error {
	result := r.db.WithContext(ctx).Create(item)
	if result.Error != nil {
		return fmt.Errorf("failed to create queue item: %w", MapGormError(result.Error))
	}
	return nil
}

// Head retrieves the queue item with the minimum position, the current slot
func (r *QueueItemRepository) Head(ctx context.Context) (*models.QueueItem, error) {
	var item models.QueueItem
	result := r.db.WithContext(ctx).Order("position ASC").First(&item)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &item, nil
}

// ListOrdered retrieves all queue items in ascending position order, head first
func (r *QueueItemRepository) ListOrdered(ctx context.Context) ([]*models.QueueItem, error) {
	var items []*models.QueueItem
	result := r.db.WithContext(ctx).Order("position ASC").Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list queue items: %w", MapGormError(result.Error))
	}
	return items, nil
}

// Count returns the number of pending queue items
func (r *QueueItemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.QueueItem{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count queue items: %w", MapGormError(result.Error))
	}
	return count, nil
}

// MaxPosition returns the largest position currently in the queue,
// or -1 if the queue is empty
func (r *QueueItemRepository) MaxPosition(ctx context.Context) (int64, error) {
	var max int64
	result := r.db.WithContext(ctx).
		Model(&models.QueueItem{}).
		Select("COALESCE(MAX(position), -1)").
		Scan(&max)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get max queue position: %w", MapGormError(result.Error))
	}
	return max, nil
}

// Delete deletes a queue item by its UUID
func (r *QueueItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.QueueItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete queue item: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PopHead removes the head queue item and credits a play to its video in a
// single transaction: the row is deleted before the stream count increment
// becomes visible, so no observer sees an item both enqueued and credited.
// Returns ErrNotFound when the queue is empty.
func (r *QueueItemRepository) PopHead(ctx context.Context, now time.Time) (*models.QueueItem, error) {
	var head models.QueueItem
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if result := tx.Order("position ASC").First(&head); result.Error != nil {
			return MapGormError(result.Error)
		}

		result := tx.Where("id = ?", head.ID.String()).Delete(&models.QueueItem{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete head queue item: %w", MapGormError(result.Error))
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		result = tx.Model(&models.Video{}).
			Where("id = ?", head.VideoID.String()).
			Updates(map[string]interface{}{
				"stream_count":  gorm.Expr("stream_count + 1"),
				"last_streamed": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to record stream for video %s: %w", head.VideoID, MapGormError(result.Error))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &head, nil
}
