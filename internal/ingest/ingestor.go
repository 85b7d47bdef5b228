// Package ingest feeds the playback queue from a Telegram channel: videos
// posted to the channel are recorded and appended to the queue tail.
// Delivery is at-least-once; ingestion is idempotent by Telegram file id.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telecast/internal/db"
	"telecast/internal/logger"
	"telecast/internal/models"
	"telecast/internal/queue"
)

// Ingestor long-polls Telegram updates and ingests channel videos.
// Its lifecycle is independent of request handling: per-message failures are
// logged and dropped, never retried, and never stop the loop.
type Ingestor struct {
	bot       *tgbotapi.BotAPI
	repos     *db.Repositories
	queue     *queue.Manager
	channelID int64
	timeout   time.Duration
	wg        sync.WaitGroup
}

// media carries the fields extracted from one Telegram video or document
type media struct {
	fileID      string
	messageID   int
	channelID   int64
	title       string
	description *string
	duration    *int
	width       *int
	height      *int
	mimeType    *string
	fileSize    *int64
	thumbnail   *string
}

// NewIngestor creates a new ingestor instance
func NewIngestor(bot *tgbotapi.BotAPI, repos *db.Repositories, queueManager *queue.Manager, channelID int64, pollTimeout time.Duration) *Ingestor {
	return &Ingestor{
		bot:       bot,
		repos:     repos,
		queue:     queueManager,
		channelID: channelID,
		timeout:   pollTimeout,
	}
}

// Start begins long-polling Telegram for updates in a background goroutine
func (i *Ingestor) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(i.timeout.Seconds())

	updates := i.bot.GetUpdatesChan(u)

	i.wg.Add(1)
	go i.run(ctx, updates)

	logger.Log.Info().
		Int64("channel_id", i.channelID).
		Msg("Telegram ingestor started")
}

// Stop stops polling and waits for the update loop to drain
func (i *Ingestor) Stop() {
	i.bot.StopReceivingUpdates()
	i.wg.Wait()
	logger.Log.Info().Msg("Telegram ingestor stopped")
}

// run consumes the update channel until it closes or the context ends
func (i *Ingestor) run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer i.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := i.handleUpdate(ctx, update); err != nil {
				logger.Log.Error().
					Err(err).
					Int("update_id", update.UpdateID).
					Msg("Failed to process Telegram update")
			}
		}
	}
}

// handleUpdate ingests a single update when it is a video message
// from the configured channel
func (i *Ingestor) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil {
		msg = update.ChannelPost
	}
	if msg == nil || msg.Chat == nil {
		return nil
	}
	if msg.Chat.ID != i.channelID {
		return nil
	}
	return i.handleMessage(ctx, msg)
}

// handleMessage ingests native video messages and video documents;
// everything else in the channel is ignored
func (i *Ingestor) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	switch {
	case msg.Video != nil:
		return i.saveMedia(ctx, videoMedia(msg))
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "video/"):
		return i.saveMedia(ctx, documentMedia(msg))
	default:
		return nil
	}
}

// videoMedia extracts ingestion fields from a native video message
func videoMedia(msg *tgbotapi.Message) media {
	v := msg.Video
	m := media{
		fileID:    v.FileID,
		messageID: msg.MessageID,
		channelID: msg.Chat.ID,
		title:     messageTitle(v.FileName, msg.MessageID),
	}
	if msg.Caption != "" {
		caption := msg.Caption
		m.description = &caption
	}
	if v.Duration > 0 {
		duration := v.Duration
		m.duration = &duration
	}
	if v.Width > 0 {
		width := v.Width
		m.width = &width
	}
	if v.Height > 0 {
		height := v.Height
		m.height = &height
	}
	if v.MimeType != "" {
		mimeType := v.MimeType
		m.mimeType = &mimeType
	}
	if v.FileSize > 0 {
		fileSize := int64(v.FileSize)
		m.fileSize = &fileSize
	}
	if v.Thumbnail != nil {
		thumbnail := v.Thumbnail.FileID
		m.thumbnail = &thumbnail
	}
	return m
}

// documentMedia extracts ingestion fields from a video sent as a document.
// Documents carry no duration or dimensions.
func documentMedia(msg *tgbotapi.Message) media {
	d := msg.Document
	m := media{
		fileID:    d.FileID,
		messageID: msg.MessageID,
		channelID: msg.Chat.ID,
		title:     messageTitle(d.FileName, msg.MessageID),
	}
	if msg.Caption != "" {
		caption := msg.Caption
		m.description = &caption
	}
	if d.MimeType != "" {
		mimeType := d.MimeType
		m.mimeType = &mimeType
	}
	if d.FileSize > 0 {
		fileSize := int64(d.FileSize)
		m.fileSize = &fileSize
	}
	if d.Thumbnail != nil {
		thumbnail := d.Thumbnail.FileID
		m.thumbnail = &thumbnail
	}
	return m
}

// messageTitle falls back to a message-derived title when the file is unnamed
func messageTitle(fileName string, messageID int) string {
	if fileName != "" {
		return fileName
	}
	return fmt.Sprintf("Video %d", messageID)
}

// saveMedia records a video and appends it to the queue tail. A file id that
// was already ingested is a no-op: no duplicate video, no duplicate slot.
func (i *Ingestor) saveMedia(ctx context.Context, m media) error {
	existing, err := i.repos.Videos.GetByFileID(ctx, m.fileID)
	if err != nil && !db.IsNotFound(err) {
		return fmt.Errorf("failed to check for existing video: %w", err)
	}
	if existing != nil {
		logger.Log.Debug().
			Str("file_id", m.fileID).
			Str("video_id", existing.ID.String()).
			Msg("Video already ingested, skipping")
		return nil
	}

	video := models.NewVideo(m.fileID, m.messageID, m.channelID, m.title)
	video.Description = m.description
	video.Duration = m.duration
	video.Width = m.width
	video.Height = m.height
	video.MimeType = m.mimeType
	video.FileSize = m.fileSize
	video.Thumbnail = m.thumbnail

	if err := i.repos.Videos.Create(ctx, video); err != nil {
		// A concurrent ingest of the same file id loses the unique-index
		// race; treat it like the existing-video case.
		if db.IsDuplicate(err) {
			logger.Log.Debug().
				Str("file_id", m.fileID).
				Msg("Video ingested concurrently, skipping")
			return nil
		}
		return fmt.Errorf("failed to create video: %w", err)
	}

	if _, err := i.queue.Append(ctx, video.ID); err != nil {
		return fmt.Errorf("failed to enqueue video: %w", err)
	}

	logger.Log.Info().
		Str("video_id", video.ID.String()).
		Str("file_id", m.fileID).
		Str("title", video.Title).
		Msg("New video added to queue")

	return nil
}
