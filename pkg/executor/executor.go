// Package executor turns parsed command invocations into HTTP calls and
// prints their responses.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/grokify/apicligen/pkg/command"
)

// Executor runs command lines against an API.
type Executor struct {
	program  *command.Program
	baseURL  string
	client   *http.Client
	out      io.Writer
	color    ColorMode
	logger   *slog.Logger
	recorder Recorder
}

// Option configures an Executor.
type Option func(*Executor)

// WithHTTPClient sets the client used for requests. The client is used as
// is; wrap its transport with NewLoggingTransport to keep request logging.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Executor) {
		e.client = client
	}
}

// WithOutput directs response bodies to w.
func WithOutput(w io.Writer) Option {
	return func(e *Executor) {
		e.out = w
	}
}

// WithColor sets when responses are syntax-highlighted.
func WithColor(mode ColorMode) Option {
	return func(e *Executor) {
		e.color = mode
	}
}

// WithLogger sets the logger for diagnostics and HTTP round trips.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithExchangeRecorder records every round trip made by the default client.
func WithExchangeRecorder(r Recorder) Option {
	return func(e *Executor) {
		e.recorder = r
	}
}

// New creates an Executor that parses with program and sends requests to
// baseURL.
func New(program *command.Program, baseURL string, opts ...Option) *Executor {
	e := &Executor{
		program: program,
		baseURL: baseURL,
		out:     os.Stdout,
		color:   ColorAuto,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		transport := NewLoggingTransport(e.logger, WithTransportErrorHandler(func(err error) {
			e.logger.Warn("recording exchange failed", "error", err)
		}))
		transport.Recorder = e.recorder
		e.client = &http.Client{Transport: transport}
	}
	return e
}

// Run parses args and executes the selected action. Help requests print
// help and return nil; parse failures return a *command.UsageError.
func (e *Executor) Run(ctx context.Context, args []string) error {
	inv, err := e.program.Parse(ctx, args)
	if err != nil {
		return err
	}
	if inv == nil {
		return nil
	}
	return e.Execute(ctx, inv)
}

// Execute performs the HTTP call described by inv and prints the response.
// An invocation without a method or path template prints help.
func (e *Executor) Execute(ctx context.Context, inv *command.Invocation) error {
	if inv.Method == "" || inv.PathTemplate == "" {
		return e.program.PrintHelp()
	}

	req, err := e.NewRequest(ctx, inv)
	if err != nil {
		return err
	}

	e.logger.Debug("dispatching",
		"command", strings.Join(inv.CommandPath, " "),
		"method", req.Method,
		"url", req.URL.String())

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Method:     req.Method,
			URL:        req.URL.String(),
			Body:       body,
		}
	}

	return e.report(body)
}

// report prints a successful response body.
func (e *Executor) report(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	formatted, ok := FormatJSON(body)
	if !ok {
		if _, err := e.out.Write(body); err != nil {
			return err
		}
		if body[len(body)-1] != '\n' {
			_, err := io.WriteString(e.out, "\n")
			return err
		}
		return nil
	}

	if e.color.enabled(e.out) {
		var highlighted bytes.Buffer
		if err := highlight(&highlighted, formatted); err == nil {
			_, err := highlighted.WriteTo(e.out)
			return err
		}
	}
	_, err := io.WriteString(e.out, formatted)
	return err
}

// HTTPError is returned for responses outside the 2xx range.
type HTTPError struct {
	StatusCode int
	Status     string
	Method     string
	URL        string
	Body       []byte
}

const maxErrorBody = 512

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
	body := bytes.TrimSpace(e.Body)
	if len(body) == 0 {
		return msg
	}
	if len(body) > maxErrorBody {
		body = append(body[:maxErrorBody:maxErrorBody], "..."...)
	}
	return msg + ": " + string(body)
}
