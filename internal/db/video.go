package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"telecast/internal/models"
)

// VideoRepository handles database operations for videos
type VideoRepository struct {
	db *DB
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create inserts a new video into the database
func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	result := r.db.WithContext(ctx).Create(video)
	if result.Error != nil {
		return fmt.Errorf("failed to create video: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a video by its UUID
func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	var video models.Video
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&video)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &video, nil
}

// GetByFileID retrieves a video by its Telegram file identifier
// (used for ingestion deduplication)
func (r *VideoRepository) GetByFileID(ctx context.Context, fileID string) (*models.Video, error) {
	var video models.Video
	result := r.db.WithContext(ctx).Where("file_id = ?", fileID).First(&video)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &video, nil
}

// GetByIDs retrieves videos for a set of UUIDs, keyed by ID
func (r *VideoRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Video, error) {
	videos := make(map[uuid.UUID]*models.Video, len(ids))
	if len(ids) == 0 {
		return videos, nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	var rows []*models.Video
	result := r.db.WithContext(ctx).Where("id IN ?", idStrings).Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get videos by ids: %w", MapGormError(result.Error))
	}

	for _, v := range rows {
		videos[v.ID] = v
	}
	return videos, nil
}

// Count returns the total number of videos
func (r *VideoRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Video{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count videos: %w", MapGormError(result.Error))
	}
	return count, nil
}
