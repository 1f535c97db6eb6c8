package executor

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LoggingTransport is an http.RoundTripper that tags every request with a
// request ID, logs the round trip at debug level, and optionally hands each
// exchange to a Recorder.
type LoggingTransport struct {
	// Base is the underlying transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	// Logger receives one record per request and one per response.
	Logger *slog.Logger

	// Options configures logging behavior.
	Options LoggingOptions

	// Recorder receives an Exchange for each round trip. Optional.
	Recorder Recorder

	// ErrorHandler is called when recording an exchange fails.
	// If nil, record errors are silently ignored (HTTP request still succeeds).
	ErrorHandler func(error)
}

// LoggingOptions configures the LoggingTransport behavior.
type LoggingOptions struct {
	// FilterHeaders are headers to exclude from logging (case-insensitive).
	FilterHeaders []string

	// RequestIDHeader carries the request ID. An ID already present on the
	// request is kept; otherwise a UUID is generated.
	RequestIDHeader string

	// IncludeBodies controls whether request and response bodies are logged.
	IncludeBodies bool

	// MaxBodySize limits the logged body size. 0 means no limit.
	MaxBodySize int64
}

// DefaultLoggingOptions returns sensible defaults for logging.
func DefaultLoggingOptions() LoggingOptions {
	return LoggingOptions{
		FilterHeaders: []string{
			"authorization",
			"cookie",
			"set-cookie",
			"x-api-key",
			"x-auth-token",
		},
		RequestIDHeader: "X-Request-ID",
		IncludeBodies:   true,
		MaxBodySize:     4 << 10,
	}
}

// LoggingTransportOption configures a LoggingTransport.
type LoggingTransportOption func(*LoggingTransport)

// WithBase sets the base transport.
func WithBase(base http.RoundTripper) LoggingTransportOption {
	return func(t *LoggingTransport) {
		t.Base = base
	}
}

// WithLoggingOptions sets the logging options.
func WithLoggingOptions(opts LoggingOptions) LoggingTransportOption {
	return func(t *LoggingTransport) {
		t.Options = opts
	}
}

// WithRecorder records every exchange to r.
func WithRecorder(r Recorder) LoggingTransportOption {
	return func(t *LoggingTransport) {
		t.Recorder = r
	}
}

// WithTransportErrorHandler sets the error handler for record failures.
func WithTransportErrorHandler(handler func(error)) LoggingTransportOption {
	return func(t *LoggingTransport) {
		t.ErrorHandler = handler
	}
}

// NewLoggingTransport creates a new logging transport. A nil logger uses
// slog.Default().
func NewLoggingTransport(logger *slog.Logger, opts ...LoggingTransportOption) *LoggingTransport {
	if logger == nil {
		logger = slog.Default()
	}
	t := &LoggingTransport{
		Base:    http.DefaultTransport,
		Logger:  logger,
		Options: DefaultLoggingOptions(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	// RoundTrip must not modify the caller's request.
	req = req.Clone(req.Context())
	id := t.requestID(req)

	logger := t.Logger.With("request_id", id)
	verbose := logger.Enabled(req.Context(), slog.LevelDebug)
	capture := t.Recorder != nil || (verbose && t.Options.IncludeBodies)

	var reqBody []byte
	if capture && req.Body != nil {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		reqBody = body
	}

	if verbose {
		attrs := []any{
			"method", req.Method,
			"url", req.URL.String(),
			"headers", t.filterHeaders(req.Header),
		}
		if t.Options.IncludeBodies && len(reqBody) > 0 {
			attrs = append(attrs, "body", t.truncate(reqBody))
		}
		logger.Debug("http request", attrs...)
	}

	startTime := time.Now()
	resp, err := base.RoundTrip(req)
	duration := time.Since(startTime)
	if err != nil {
		logger.Debug("http request failed", "error", err, "duration", duration)
		t.record(&Exchange{
			ID:          id,
			Timestamp:   startTime.UTC(),
			Method:      req.Method,
			URL:         req.URL.String(),
			DurationMs:  float64(duration.Milliseconds()),
			RequestBody: string(reqBody),
			Error:       err.Error(),
		})
		return nil, err
	}

	var respBody []byte
	if capture && resp.Body != nil {
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, err
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))
		respBody = body
	}

	if verbose {
		attrs := []any{
			"status", resp.StatusCode,
			"duration", duration,
			"headers", t.filterHeaders(resp.Header),
		}
		if t.Options.IncludeBodies && len(respBody) > 0 {
			attrs = append(attrs, "body", t.truncate(respBody))
		}
		logger.Debug("http response", attrs...)
	}

	t.record(&Exchange{
		ID:           id,
		Timestamp:    startTime.UTC(),
		Method:       req.Method,
		URL:          req.URL.String(),
		Status:       resp.StatusCode,
		DurationMs:   float64(duration.Milliseconds()),
		RequestBody:  string(reqBody),
		ResponseBody: string(respBody),
	})

	return resp, nil
}

// record hands exchange to the recorder. Write failures go to ErrorHandler
// and never fail the request.
func (t *LoggingTransport) record(exchange *Exchange) {
	if t.Recorder == nil {
		return
	}
	if err := t.Recorder.Record(exchange); err != nil && t.ErrorHandler != nil {
		t.ErrorHandler(err)
	}
}

// requestID returns the ID already set on req, or sets a new one.
func (t *LoggingTransport) requestID(req *http.Request) string {
	header := t.Options.RequestIDHeader
	if header == "" {
		return uuid.New().String()
	}
	if id := req.Header.Get(header); id != "" {
		return id
	}
	id := uuid.New().String()
	req.Header.Set(header, id)
	return id
}

func (t *LoggingTransport) truncate(body []byte) string {
	if t.Options.MaxBodySize > 0 && int64(len(body)) > t.Options.MaxBodySize {
		return string(body[:t.Options.MaxBodySize]) + "..."
	}
	return string(body)
}

func (t *LoggingTransport) filterHeaders(h http.Header) map[string]string {
	if h == nil {
		return nil
	}

	filterSet := make(map[string]bool)
	for _, f := range t.Options.FilterHeaders {
		filterSet[strings.ToLower(f)] = true
	}

	result := make(map[string]string)
	for k, v := range h {
		key := strings.ToLower(k)
		if !filterSet[key] && len(v) > 0 {
			result[key] = v[0]
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
