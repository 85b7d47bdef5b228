package models

import (
	"time"

	"github.com/google/uuid"
)

// QueueItem represents one pending playback slot. Position strictly defines
// play order; the row with the minimum position is the current item. The
// position column is unique, so at most one row can hold the minimum.
type QueueItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	VideoID   uuid.UUID `json:"video_id" gorm:"type:text;not null;column:video_id" validate:"required"`
	Position  int64     `json:"position" gorm:"type:integer;not null;uniqueIndex;column:position" validate:"gte=0"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewQueueItem creates a new QueueItem with generated UUID and timestamp
func NewQueueItem(videoID uuid.UUID, position int64) *QueueItem {
	return &QueueItem{
		ID:        uuid.New(),
		VideoID:   videoID,
		Position:  position,
		CreatedAt: time.Now().UTC(),
	}
}
