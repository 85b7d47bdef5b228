package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMIMEType is served when a video carries no mime type of its own.
const DefaultMIMEType = "video/mp4"

// Video represents one streamable file ingested from the Telegram channel.
// FileID is the Telegram file identifier used both to resolve bytes and to
// deduplicate ingestion.
type Video struct {
	ID           uuid.UUID  `json:"id" gorm:"type:text;primaryKey;column:id"`
	FileID       string     `json:"file_id" gorm:"type:text;not null;uniqueIndex;column:file_id" validate:"required"`
	MessageID    int        `json:"message_id" gorm:"type:integer;not null;column:message_id" validate:"required"`
	ChannelID    int64      `json:"channel_id" gorm:"type:integer;not null;column:channel_id" validate:"required"`
	Title        string     `json:"title" gorm:"type:text;not null;column:title"`
	Description  *string    `json:"description,omitempty" gorm:"type:text;column:description"`
	Duration     *int       `json:"duration,omitempty" gorm:"type:integer;column:duration"` // seconds
	Width        *int       `json:"width,omitempty" gorm:"type:integer;column:width"`
	Height       *int       `json:"height,omitempty" gorm:"type:integer;column:height"`
	MimeType     *string    `json:"mime_type,omitempty" gorm:"type:text;column:mime_type"`
	FileSize     *int64     `json:"file_size,omitempty" gorm:"type:integer;column:file_size"`
	Thumbnail    *string    `json:"thumbnail,omitempty" gorm:"type:text;column:thumbnail"`
	CreatedAt    time.Time  `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	LastStreamed *time.Time `json:"last_streamed,omitempty" gorm:"type:datetime;column:last_streamed"`
	StreamCount  int64      `json:"stream_count" gorm:"type:integer;not null;default:0;column:stream_count"`
}

// NewVideo creates a new Video with generated UUID and timestamp
func NewVideo(fileID string, messageID int, channelID int64, title string) *Video {
	return &Video{
		ID:        uuid.New(),
		FileID:    fileID,
		MessageID: messageID,
		ChannelID: channelID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
}

// ContentType returns the mime type to serve, falling back to DefaultMIMEType
func (v *Video) ContentType() string {
	if v.MimeType != nil && *v.MimeType != "" {
		return *v.MimeType
	}
	return DefaultMIMEType
}
