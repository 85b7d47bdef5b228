package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"telecast/internal/logger"
	"telecast/internal/models"
	"telecast/internal/queue"
)

// QueueEntryResponse represents one queue slot with its embedded video
type QueueEntryResponse struct {
	ID        string        `json:"id"`
	VideoID   string        `json:"video_id"`
	Position  int64         `json:"position"`
	CreatedAt time.Time     `json:"created_at"`
	Video     *models.Video `json:"video"`
}

// QueueHandler handles queue listing requests
type QueueHandler struct {
	queue *queue.Manager
}

// NewQueueHandler creates a new queue handler instance
func NewQueueHandler(queueManager *queue.Manager) *QueueHandler {
	return &QueueHandler{queue: queueManager}
}

// toQueueEntryResponse converts a composed queue entry to API response format
func toQueueEntryResponse(entry *queue.Entry) *QueueEntryResponse {
	return &QueueEntryResponse{
		ID:        entry.Item.ID.String(),
		VideoID:   entry.Item.VideoID.String(),
		Position:  entry.Item.Position,
		CreatedAt: entry.Item.CreatedAt,
		Video:     entry.Video,
	}
}

// GetQueue handles GET /queue
func (h *QueueHandler) GetQueue(c *gin.Context) {
	entries, err := h.queue.List(c.Request.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list queue")
		respondError(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	response := make([]*QueueEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, toQueueEntryResponse(entry))
	}

	respondData(c, http.StatusOK, response)
}

// SetupQueueRoutes registers queue routes
func SetupQueueRoutes(group *gin.RouterGroup, queueManager *queue.Manager) {
	handler := NewQueueHandler(queueManager)
	group.GET("/queue", handler.GetQueue)
}
