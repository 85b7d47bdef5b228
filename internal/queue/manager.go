// Package queue owns the playback ordering: a strictly ordered queue of
// pending videos with race-safe, exactly-once advancement of the head.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"telecast/internal/db"
	"telecast/internal/logger"
	"telecast/internal/models"
)

// Entry is a read-only composed view of one queue slot with its video,
// joined explicitly by the manager rather than loaded as a live reference.
type Entry struct {
	Item  *models.QueueItem
	Video *models.Video
}

// AdvanceResult reports one successful queue advancement.
// Next is nil when the queue drained, which is distinct from advancing an
// already-empty queue (that fails with ErrQueueEmpty).
type AdvanceResult struct {
	Previous *models.Video
	Next     *models.Video
}

// Manager maintains the total order over pending videos. Advance and Append
// serialize on an in-process mutex; SQLite offers no atomic
// pop-min-position primitive, so the read-delete-credit sequence runs under
// the lock plus a transaction. Current and List read without the lock and
// may briefly observe a just-advanced-past item.
type Manager struct {
	repos *db.Repositories
	mu    sync.Mutex
}

// NewManager creates a new queue manager instance
func NewManager(repos *db.Repositories) *Manager {
	return &Manager{repos: repos}
}

// Current returns the video referenced by the head queue item.
// Fails with ErrQueueEmpty when there is no pending item.
func (m *Manager) Current(ctx context.Context) (*models.Video, error) {
	head, err := m.repos.QueueItems.Head(ctx)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrQueueEmpty
		}
		logger.Log.Error().Err(err).Msg("Failed to read queue head")
		return nil, fmt.Errorf("failed to get current video: %w", err)
	}

	video, err := m.repos.Videos.GetByID(ctx, head.VideoID)
	if err != nil {
		if db.IsNotFound(err) {
			logger.Log.Warn().
				Str("queue_item_id", head.ID.String()).
				Str("video_id", head.VideoID.String()).
				Msg("Queue head references a missing video")
			return nil, ErrQueueEmpty
		}
		logger.Log.Error().
			Err(err).
			Str("video_id", head.VideoID.String()).
			Msg("Failed to load video for queue head")
		return nil, fmt.Errorf("failed to get current video: %w", err)
	}

	return video, nil
}

// List returns the full queue in ascending position order, head first,
// with each slot's video joined in.
func (m *Manager) List(ctx context.Context) ([]*Entry, error) {
	items, err := m.repos.QueueItems.ListOrdered(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list queue items")
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.VideoID
	}

	videos, err := m.repos.Videos.GetByIDs(ctx, ids)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to load videos for queue")
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	entries := make([]*Entry, 0, len(items))
	for _, item := range items {
		video, ok := videos[item.VideoID]
		if !ok {
			logger.Log.Warn().
				Str("queue_item_id", item.ID.String()).
				Str("video_id", item.VideoID.String()).
				Msg("Queue item references a missing video, skipping")
			continue
		}
		entries = append(entries, &Entry{Item: item, Video: video})
	}

	return entries, nil
}

// Advance pops the head queue item, credits a play to its video, and returns
// the new head's video. Fails with ErrQueueEmpty when the queue was already
// empty; a nil Next means the queue drained on this call.
func (m *Manager) Advance(ctx context.Context) (*AdvanceResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	popped, err := m.repos.QueueItems.PopHead(ctx, time.Now().UTC())
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrQueueEmpty
		}
		logger.Log.Error().Err(err).Msg("Failed to pop queue head")
		return nil, fmt.Errorf("failed to advance queue: %w", err)
	}

	result := &AdvanceResult{}

	previous, err := m.repos.Videos.GetByID(ctx, popped.VideoID)
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("video_id", popped.VideoID.String()).
			Msg("Failed to load advanced-past video")
	} else {
		result.Previous = previous
	}

	next, err := m.repos.QueueItems.Head(ctx)
	if err != nil {
		if db.IsNotFound(err) {
			logger.Log.Info().
				Str("previous_video_id", popped.VideoID.String()).
				Msg("Queue advanced and is now empty")
			return result, nil
		}
		logger.Log.Error().Err(err).Msg("Failed to read new queue head")
		return nil, fmt.Errorf("failed to advance queue: %w", err)
	}

	video, err := m.repos.Videos.GetByID(ctx, next.VideoID)
	if err != nil {
		if db.IsNotFound(err) {
			logger.Log.Warn().
				Str("queue_item_id", next.ID.String()).
				Str("video_id", next.VideoID.String()).
				Msg("New queue head references a missing video")
			return result, nil
		}
		logger.Log.Error().
			Err(err).
			Str("video_id", next.VideoID.String()).
			Msg("Failed to load video for new queue head")
		return nil, fmt.Errorf("failed to advance queue: %w", err)
	}

	result.Next = video

	logger.Log.Info().
		Str("previous_video_id", popped.VideoID.String()).
		Str("next_video_id", video.ID.String()).
		Msg("Queue advanced")

	return result, nil
}

// Append inserts a new queue item at the tail, position max+1 (0 when the
// queue is empty). Deduplication by file id is the ingestor's job, not ours.
func (m *Manager) Append(ctx context.Context, videoID uuid.UUID) (*models.QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	max, err := m.repos.QueueItems.MaxPosition(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to read max queue position")
		return nil, fmt.Errorf("failed to append to queue: %w", err)
	}

	item := models.NewQueueItem(videoID, max+1)
	if err := m.repos.QueueItems.Create(ctx, item); err != nil {
		logger.Log.Error().
			Err(err).
			Str("video_id", videoID.String()).
			Msg("Failed to create queue item")
		return nil, fmt.Errorf("failed to append to queue: %w", err)
	}

	logger.Log.Debug().
		Str("queue_item_id", item.ID.String()).
		Str("video_id", videoID.String()).
		Int64("position", item.Position).
		Msg("Video appended to queue")

	return item, nil
}
