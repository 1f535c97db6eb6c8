package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/grokify/omnistorage"
	"github.com/grokify/omnistorage/compress/gzip"
	"github.com/grokify/omnistorage/format/ndjson"
)

// Exchange is one recorded HTTP round trip.
type Exchange struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Method       string    `json:"method"`
	URL          string    `json:"url"`
	Status       int       `json:"status,omitempty"`
	DurationMs   float64   `json:"durationMs"`
	RequestBody  string    `json:"requestBody,omitempty"`
	ResponseBody string    `json:"responseBody,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Recorder receives every exchange made through a LoggingTransport.
type Recorder interface {
	Record(exchange *Exchange) error
	Close() error
}

// StorageRecorder writes exchanges as NDJSON to an omnistorage backend.
// If the path ends with .gz, gzip compression is applied.
type StorageRecorder struct {
	ndjsonWriter *ndjson.Writer
	count        int
}

var _ Recorder = (*StorageRecorder)(nil)

// NewStorageRecorder creates a recorder writing to path in backend.
func NewStorageRecorder(ctx context.Context, backend omnistorage.Backend, path string) (*StorageRecorder, error) {
	w, err := backend.NewWriter(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("creating writer: %w", err)
	}

	var writer io.WriteCloser = w
	if isGzip(path) {
		gzWriter, err := gzip.NewWriter(w)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("creating gzip writer: %w", err)
		}
		writer = gzWriter
	}

	return &StorageRecorder{ndjsonWriter: ndjson.NewWriter(writer)}, nil
}

// Record writes a single exchange.
func (r *StorageRecorder) Record(exchange *Exchange) error {
	data, err := json.Marshal(exchange)
	if err != nil {
		return fmt.Errorf("marshaling exchange: %w", err)
	}
	if err := r.ndjsonWriter.Write(data); err != nil {
		return fmt.Errorf("writing exchange: %w", err)
	}
	r.count++
	return nil
}

// Close flushes and closes the recorder.
func (r *StorageRecorder) Close() error {
	return r.ndjsonWriter.Close()
}

// Count returns the number of exchanges written.
func (r *StorageRecorder) Count() int {
	return r.count
}

// ReadExchanges reads every exchange recorded at path in backend.
func ReadExchanges(ctx context.Context, backend omnistorage.Backend, path string) ([]*Exchange, error) {
	rc, err := backend.NewReader(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("creating reader: %w", err)
	}

	var reader io.ReadCloser = rc
	if isGzip(path) {
		gzReader, err := gzip.NewReader(rc)
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		reader = gzReader
	}

	ndjsonReader := ndjson.NewReader(reader)
	defer ndjsonReader.Close()

	var exchanges []*Exchange
	for line := 1; ; line++ {
		data, err := ndjsonReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var exchange Exchange
		if err := json.Unmarshal(data, &exchange); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		exchanges = append(exchanges, &exchange)
	}
	return exchanges, nil
}

func isGzip(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}
