// Package stream serves a video's bytes to the playback client by relaying
// an upstream fetch, honoring HTTP byte-range semantics for seeking.
package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"telecast/internal/logger"
	"telecast/internal/models"
)

// Locator resolves a video's external file identifier into a fetchable
// upstream URL. The Telegram implementation lives in the ingest package.
type Locator interface {
	ResolveURL(ctx context.Context, fileID string) (string, error)
}

// Proxy relays upstream bytes to the client. The two-request pattern (size
// probe, then fetch) is required because the upstream does not expose sizes
// reliably via metadata, and Content-Range needs the exact total.
type Proxy struct {
	locator      Locator
	client       *http.Client
	probeTimeout time.Duration
}

// NewProxy creates a new range proxy using the given locator.
// probeTimeout bounds only the size probe; the byte relay itself has no
// total timeout and is cancelled through the request context.
func NewProxy(locator Locator, probeTimeout time.Duration) *Proxy {
	return &Proxy{
		locator: locator,
		client: &http.Client{
			Transport: &http.Transport{
				DisableCompression: true,
			},
			Timeout: 0, // no total timeout for streaming
		},
		probeTimeout: probeTimeout,
	}
}

// Relay streams the video's bytes to w. With a range header it serves 206
// with the exact span and total size; without one it serves the full file
// with 200. Bytes are piped as they arrive; an upstream failure mid-transfer
// truncates the response rather than retrying.
func (p *Proxy) Relay(ctx context.Context, video *models.Video, rangeHeader string, w http.ResponseWriter) error {
	url, err := p.locator.ResolveURL(ctx, video.FileID)
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("video_id", video.ID.String()).
			Msg("Locator failed to resolve upstream URL")
		return fmt.Errorf("%w: locator: %v", ErrUpstreamUnavailable, err)
	}

	size, err := p.probeSize(ctx, url)
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("video_id", video.ID.String()).
			Msg("Upstream size probe failed")
		return fmt.Errorf("%w: size probe: %v", ErrUpstreamUnavailable, err)
	}

	if rangeHeader != "" {
		return p.relayRange(ctx, video, url, rangeHeader, size, w)
	}
	return p.relayFull(ctx, video, url, size, w)
}

// relayRange serves a partial-content response for one byte span
func (p *Proxy) relayRange(ctx context.Context, video *models.Video, url, rangeHeader string, size int64, w http.ResponseWriter) error {
	start, end, err := parseRange(rangeHeader, size)
	if err != nil {
		return err
	}

	body, err := p.fetch(ctx, url, fmt.Sprintf("bytes=%d-%d", start, end))
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("video_id", video.ID.String()).
			Msg("Upstream range fetch failed")
		return fmt.Errorf("%w: fetch: %v", ErrUpstreamUnavailable, err)
	}
	defer body.Close()

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.FormatInt(end-start+1, 10))
	w.Header().Set("Content-Type", video.ContentType())
	w.WriteHeader(http.StatusPartialContent)

	p.pipe(video, body, w, end-start+1)
	return nil
}

// relayFull serves the whole file
func (p *Proxy) relayFull(ctx context.Context, video *models.Video, url string, size int64, w http.ResponseWriter) error {
	body, err := p.fetch(ctx, url, "")
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("video_id", video.ID.String()).
			Msg("Upstream fetch failed")
		return fmt.Errorf("%w: fetch: %v", ErrUpstreamUnavailable, err)
	}
	defer body.Close()

	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Type", video.ContentType())
	w.WriteHeader(http.StatusOK)

	p.pipe(video, body, w, size)
	return nil
}

// probeSize determines the upstream's total byte length with a HEAD request
// for the full range. The probe runs under its own bounded timeout so a hung
// upstream cannot stall the client indefinitely.
func (p *Proxy) probeSize(ctx context.Context, url string) (int64, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create probe request: %w", err)
	}
	req.Header.Set("Range", "bytes=0-")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("unexpected probe status: %d", resp.StatusCode)
	}

	if resp.ContentLength <= 0 {
		return 0, fmt.Errorf("no usable content length in probe response")
	}

	return resp.ContentLength, nil
}

// fetch issues the upstream GET, optionally restricted to a byte range
func (p *Proxy) fetch(ctx context.Context, url, rangeValue string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if rangeValue != "" {
		req.Header.Set("Range", rangeValue)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// pipe copies upstream bytes to the client as they arrive. A short copy is
// surfaced to the client as a truncated transfer, not a clean error: by the
// time the body streams, the status line is already on the wire.
func (p *Proxy) pipe(video *models.Video, body io.Reader, w io.Writer, expected int64) {
	written, err := io.Copy(w, body)
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("video_id", video.ID.String()).
			Int64("bytes_written", written).
			Int64("bytes_expected", expected).
			Msg("Transfer truncated")
		return
	}

	logger.Log.Debug().
		Str("video_id", video.ID.String()).
		Int64("bytes_written", written).
		Msg("Transfer complete")
}
