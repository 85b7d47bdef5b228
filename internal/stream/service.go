package stream

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"telecast/internal/db"
	"telecast/internal/models"
	"telecast/internal/queue"
)

// Service is the thin composition of queue manager, video store, and range
// proxy behind the wire API. It holds no state of its own and passes
// component failures through unchanged.
type Service struct {
	queue *queue.Manager
	repos *db.Repositories
	proxy *Proxy
}

// NewService creates a new stream service instance
func NewService(queueManager *queue.Manager, repos *db.Repositories, proxy *Proxy) *Service {
	return &Service{
		queue: queueManager,
		repos: repos,
		proxy: proxy,
	}
}

// GetCurrent returns the video at the head of the queue
func (s *Service) GetCurrent(ctx context.Context) (*models.Video, error) {
	return s.queue.Current(ctx)
}

// GetNext advances the queue and returns the result
func (s *Service) GetNext(ctx context.Context) (*queue.AdvanceResult, error) {
	return s.queue.Advance(ctx)
}

// Stream relays the video's bytes directly to the client connection,
// honoring an optional range header
func (s *Service) Stream(ctx context.Context, id uuid.UUID, rangeHeader string, w http.ResponseWriter) error {
	video, err := s.repos.Videos.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return ErrVideoNotFound
		}
		return err
	}

	return s.proxy.Relay(ctx, video, rangeHeader, w)
}
