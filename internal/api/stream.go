package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"telecast/internal/logger"
	"telecast/internal/queue"
	"telecast/internal/stream"
)

const msgQueueEmpty = "No videos in queue"

// StreamHandler handles playback-related API requests
type StreamHandler struct {
	service *stream.Service
}

// NewStreamHandler creates a new stream handler instance
func NewStreamHandler(service *stream.Service) *StreamHandler {
	return &StreamHandler{service: service}
}

// GetCurrent handles GET /stream/current
func (h *StreamHandler) GetCurrent(c *gin.Context) {
	video, err := h.service.GetCurrent(c.Request.Context())
	if err != nil {
		if queue.IsQueueEmpty(err) {
			respondError(c, http.StatusNotFound, msgQueueEmpty)
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to get current video")
		respondError(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondData(c, http.StatusOK, video)
}

// Next handles POST /stream/next. A null data payload means the queue
// drained on this advance; an already-empty queue is a 404.
func (h *StreamHandler) Next(c *gin.Context) {
	result, err := h.service.GetNext(c.Request.Context())
	if err != nil {
		if queue.IsQueueEmpty(err) {
			respondError(c, http.StatusNotFound, msgQueueEmpty)
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to advance queue")
		respondError(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondData(c, http.StatusOK, result.Next)
}

// Stream handles GET /stream/:id. On success the proxy writes status,
// headers, and bytes directly to the connection; only pre-stream failures
// are mapped to JSON errors here.
func (h *StreamHandler) Stream(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid video ID format")
		return
	}

	rangeHeader := c.GetHeader("Range")

	err = h.service.Stream(c.Request.Context(), id, rangeHeader, c.Writer)
	if err == nil {
		return
	}

	switch {
	case stream.IsBadRange(err):
		logger.Log.Warn().
			Err(err).
			Str("video_id", id.String()).
			Str("range", rangeHeader).
			Msg("Rejected range request")
		respondError(c, http.StatusRequestedRangeNotSatisfiable, "Invalid range request")
	case stream.IsVideoNotFound(err), stream.IsUpstreamUnavailable(err):
		// Upstream failures are deliberately indistinguishable from missing
		// videos at the wire; the distinction is logged by the proxy.
		respondError(c, http.StatusNotFound, "Video not found")
	default:
		logger.Log.Error().
			Err(err).
			Str("video_id", id.String()).
			Msg("Failed to stream video")
		respondError(c, http.StatusInternalServerError, "Internal Server Error")
	}
}

// SetupStreamRoutes registers playback routes. The static /current and
// /next routes must be registered before the parameterized /:id route.
func SetupStreamRoutes(group *gin.RouterGroup, service *stream.Service) {
	handler := NewStreamHandler(service)

	streamGroup := group.Group("/stream")
	streamGroup.GET("/current", handler.GetCurrent)
	streamGroup.POST("/next", handler.Next)
	streamGroup.GET("/:id", handler.Stream)
}
