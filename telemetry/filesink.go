package telemetry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

// FileSink rewrites a JSON file with the latest sample on every emission,
// mirroring the file the monitoring frontend polls.
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to the given path. The parent
// directory is created if needed.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &SinkError{Target: path, Err: err}
	}

	return &FileSink{path: path}, nil
}

// Post writes the sample. The write is atomic via a rename so that a reader
// never observes a partial file.
func (s *FileSink) Post(_ context.Context, sample Sample) error {
	data, err := json.MarshalIndent(sample.Envelope(), "", "    ")
	if err != nil {
		return &SinkError{Target: s.path, Err: err}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &SinkError{Target: s.path, Err: err}
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return &SinkError{Target: s.path, Err: err}
	}

	return nil
}
