package api

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"ytgateway/internal/resolver"
	"ytgateway/pkg/models"
)

// copyBufferSize bounds how much of a stream is held in memory per request
const copyBufferSize = 32 * 1024

// handleRoot handles the liveness check
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, LivenessMessage)
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleVideoInfo returns resolver metadata, including formats, as JSON
func (s *Server) handleVideoInfo(w http.ResponseWriter, r *http.Request) {
	log := requestLog(s.log, r)

	req, apiErr := parseInfoRequest(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	info, apiErr := s.resolveInfo(r.Context(), req)
	if apiErr != nil {
		log.Error("Failed to fetch video info", zap.String("url", req.URL), zap.Error(apiErr.Err))
		writeError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// handleDownload resolves the video behind ?url= and streams it as an mp4 attachment
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	log := requestLog(s.log, r)

	req, apiErr := parseDownloadRequest(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	log = log.With(zap.String("url", req.URL))

	info, apiErr := s.resolveInfo(r.Context(), req)
	if apiErr != nil {
		log.Error("Download error", zap.Error(apiErr.Err))
		writeError(w, apiErr)
		return
	}

	stem := SanitizeFilename(info.Title)
	w.Header().Set("Content-Disposition", contentDisposition(stem))

	stream, err := s.resolver.OpenStream(r.Context(), req.URL, models.DefaultStreamOptions())
	if err != nil {
		s.failBeforeBody(w, log, err)
		return
	}
	defer stream.Body.Close()

	// Some resolvers only fail once the first read happens; wait for a byte
	// while the headers can still carry a JSON error.
	body := bufio.NewReaderSize(stream.Body, copyBufferSize)
	if _, err := body.Peek(1); err != nil && !errors.Is(err, io.EOF) {
		s.failBeforeBody(w, log, err)
		return
	}

	mimeType := stream.MimeType
	if mimeType == "" {
		mimeType = "video/mp4"
	}
	w.Header().Set("Content-Type", mimeType)
	if stream.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(stream.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	written, err := io.Copy(w, body)
	if err != nil {
		s.logStreamFailure(r, log, written, &Error{Kind: StreamFailure, Err: err})
		// Drop the connection so the client sees a truncated transfer
		// instead of a clean end of a chunked body.
		panic(http.ErrAbortHandler)
	}

	log.Debug("Download completed", zap.String("filename", stem+".mp4"), zap.Int64("bytes", written))
}

// failBeforeBody reports a stream that failed before any byte was written
func (s *Server) failBeforeBody(w http.ResponseWriter, log *zap.Logger, err error) {
	w.Header().Del("Content-Disposition")
	log.Error("Download error", zap.Error(err))
	writeError(w, &Error{Kind: ResolutionFailure, Err: err})
}

// parseDownloadRequest requires a non-empty url query parameter. Whether the
// URL is usable is left to the resolver.
func parseDownloadRequest(r *http.Request) (*models.DownloadRequest, *Error) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		return nil, &Error{Kind: MissingInput}
	}

	return &models.DownloadRequest{URL: resolver.NormalizeURL(raw)}, nil
}

// parseInfoRequest additionally rejects URLs outside the supported hosts
func parseInfoRequest(r *http.Request) (*models.DownloadRequest, *Error) {
	req, apiErr := parseDownloadRequest(r)
	if apiErr != nil {
		return nil, apiErr
	}

	if !resolver.IsSupportedURL(req.URL) {
		return nil, &Error{Kind: InvalidInput}
	}

	return req, nil
}

// resolveInfo calls the resolver's metadata lookup under the upstream timeout
func (s *Server) resolveInfo(ctx context.Context, req *models.DownloadRequest) (*models.VideoMetadata, *Error) {
	if timeout := s.config.UpstreamTimeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	info, err := s.resolver.GetInfo(ctx, req.URL)
	if err != nil {
		return nil, &Error{Kind: ResolutionFailure, Err: err}
	}

	return info, nil
}

// logStreamFailure records a transfer that broke after the headers were sent.
// The client only sees a truncated body.
func (s *Server) logStreamFailure(r *http.Request, log *zap.Logger, written int64, e *Error) {
	fields := []zap.Field{
		zap.String("kind", e.Kind.String()),
		zap.Int64("bytes", written),
		zap.Error(e.Err),
	}

	if r.Context().Err() != nil || errors.Is(e.Err, context.Canceled) {
		log.Info("Client disconnected during download", fields...)
		return
	}

	log.Warn("Download aborted mid-stream", fields...)
}
