package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telecast/internal/db"
	"telecast/internal/models"
	"telecast/internal/queue"
	"telecast/internal/stream"
)

// fakeLocator resolves every file id to a fixed URL or error
type fakeLocator struct {
	url string
	err error
}

func (f fakeLocator) ResolveURL(_ context.Context, _ string) (string, error) {
	return f.url, f.err
}

// videoEnvelope decodes the success envelope around a video payload
type videoEnvelope struct {
	Success bool          `json:"success"`
	Data    *models.Video `json:"data"`
	Error   string        `json:"error"`
}

// queueEnvelope decodes the success envelope around a queue listing
type queueEnvelope struct {
	Success bool                  `json:"success"`
	Data    []*QueueEntryResponse `json:"data"`
	Error   string                `json:"error"`
}

// setupTestRouter builds the full route surface over a test database and a
// fake upstream serving the given content
func setupTestRouter(t *testing.T, upstreamContent []byte) (*gin.Engine, *db.Repositories, *queue.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpFile := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(tmpFile, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(sqlDB, "file://../../migrations"))

	repos := db.NewRepositories(database)
	queueManager := queue.NewManager(repos)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "video.bin", time.Unix(0, 0), bytes.NewReader(upstreamContent))
	}))
	t.Cleanup(upstream.Close)

	proxy := stream.NewProxy(fakeLocator{url: upstream.URL}, 2*time.Second)
	service := stream.NewService(queueManager, repos, proxy)

	router := gin.New()
	root := router.Group("/")
	SetupQueueRoutes(root, queueManager)
	SetupStreamRoutes(root, service)

	return router, repos, queueManager
}

// ingestVideo records a video and appends it to the queue, as the ingestor would
func ingestVideo(t *testing.T, repos *db.Repositories, queueManager *queue.Manager, fileID, title string) *models.Video {
	t.Helper()
	ctx := context.Background()
	video := models.NewVideo(fileID, 1, -100123, title)
	require.NoError(t, repos.Videos.Create(ctx, video))
	_, err := queueManager.Append(ctx, video.ID)
	require.NoError(t, err)
	return video
}

func doRequest(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetCurrent_EmptyQueue(t *testing.T) {
	router, _, _ := setupTestRouter(t, nil)

	rec := doRequest(router, http.MethodGet, "/stream/current", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var envelope videoEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "No videos in queue", envelope.Error)
}

func TestNext_EmptyQueue(t *testing.T) {
	router, _, _ := setupTestRouter(t, nil)

	rec := doRequest(router, http.MethodPost, "/stream/next", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueueAndAdvance_EndToEnd(t *testing.T) {
	router, repos, queueManager := setupTestRouter(t, nil)

	videoA := ingestVideo(t, repos, queueManager, "f1", "first")
	videoB := ingestVideo(t, repos, queueManager, "f2", "second")

	// Queue lists both, head first, with embedded videos
	rec := doRequest(router, http.MethodGet, "/queue", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing queueEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.True(t, listing.Success)
	require.Len(t, listing.Data, 2)
	assert.Equal(t, videoA.ID, listing.Data[0].Video.ID)
	assert.Equal(t, videoB.ID, listing.Data[1].Video.ID)

	// Current is A
	rec = doRequest(router, http.MethodGet, "/stream/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var current videoEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.True(t, current.Success)
	require.NotNil(t, current.Data)
	assert.Equal(t, videoA.ID, current.Data.ID)

	// Advance returns B and credits A
	rec = doRequest(router, http.MethodPost, "/stream/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var next videoEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))
	require.NotNil(t, next.Data)
	assert.Equal(t, videoB.ID, next.Data.ID)

	advancedA, err := repos.Videos.GetByID(context.Background(), videoA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), advancedA.StreamCount)

	// Current is now B
	rec = doRequest(router, http.MethodGet, "/stream/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, videoB.ID, current.Data.ID)

	// Advancing past B drains the queue: success with null data, not an error
	rec = doRequest(router, http.MethodPost, "/stream/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))
	assert.True(t, next.Success)
	assert.Nil(t, next.Data)

	advancedB, err := repos.Videos.GetByID(context.Background(), videoB.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), advancedB.StreamCount)

	// One more advance on the empty queue is a 404
	rec = doRequest(router, http.MethodPost, "/stream/next", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStream_FullContent(t *testing.T) {
	content := []byte("0123456789abcdef")
	router, repos, queueManager := setupTestRouter(t, content)
	video := ingestVideo(t, repos, queueManager, "f1", "clip")

	rec := doRequest(router, http.MethodGet, "/stream/"+video.ID.String(), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "16", rec.Header().Get("Content-Length"))
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, content, rec.Body.Bytes())
}

func TestStream_RangeRequest(t *testing.T) {
	content := []byte("0123456789abcdef")
	router, repos, queueManager := setupTestRouter(t, content)
	video := ingestVideo(t, repos, queueManager, "f1", "clip")

	rec := doRequest(router, http.MethodGet, "/stream/"+video.ID.String(), map[string]string{
		"Range": "bytes=4-7",
	})

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 4-7/16", rec.Header().Get("Content-Range"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
	assert.Equal(t, []byte("4567"), rec.Body.Bytes())
}

func TestStream_UnsatisfiableRange(t *testing.T) {
	content := []byte("0123456789abcdef")
	router, repos, queueManager := setupTestRouter(t, content)
	video := ingestVideo(t, repos, queueManager, "f1", "clip")

	rec := doRequest(router, http.MethodGet, "/stream/"+video.ID.String(), map[string]string{
		"Range": "bytes=16-",
	})

	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
}

func TestStream_MalformedRange(t *testing.T) {
	content := []byte("0123456789abcdef")
	router, repos, queueManager := setupTestRouter(t, content)
	video := ingestVideo(t, repos, queueManager, "f1", "clip")

	rec := doRequest(router, http.MethodGet, "/stream/"+video.ID.String(), map[string]string{
		"Range": "bytes=abc",
	})

	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
}

func TestStream_UnknownVideo(t *testing.T) {
	router, _, _ := setupTestRouter(t, nil)

	rec := doRequest(router, http.MethodGet, "/stream/5dd3d1b0-98b6-4a2f-bd74-bd8a70a01a1c", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var envelope videoEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "Video not found", envelope.Error)
}

func TestStream_InvalidID(t *testing.T) {
	router, _, _ := setupTestRouter(t, nil)

	rec := doRequest(router, http.MethodGet, "/stream/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStream_UpstreamUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tmpFile := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(tmpFile, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(sqlDB, "file://../../migrations"))

	repos := db.NewRepositories(database)
	queueManager := queue.NewManager(repos)

	proxy := stream.NewProxy(fakeLocator{err: context.DeadlineExceeded}, 2*time.Second)
	service := stream.NewService(queueManager, repos, proxy)

	router := gin.New()
	SetupStreamRoutes(router.Group("/"), service)

	video := ingestVideo(t, repos, queueManager, "f1", "clip")

	rec := doRequest(router, http.MethodGet, "/stream/"+video.ID.String(), nil)

	// Upstream failures surface as 404, same as a missing video
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
