package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPSink posts samples as JSON to a monitoring endpoint.
type HTTPSink struct {
	url    string
	client *http.Client
}

// NewHTTPSink creates a sink that posts to the given URL. The timeout
// bounds each delivery so that a slow endpoint cannot stall the scheduler.
func NewHTTPSink(url string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Post delivers one sample. A non-2xx response is a SinkError.
func (s *HTTPSink) Post(ctx context.Context, sample Sample) error {
	body, err := json.Marshal(sample.Envelope())
	if err != nil {
		return &SinkError{Target: s.url, Err: err}
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return &SinkError{Target: s.url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	rsp, err := s.client.Do(req)
	if err != nil {
		return &SinkError{Target: s.url, Err: err}
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return &SinkError{
			Target: s.url,
			Err:    fmt.Errorf("unexpected status %d", rsp.StatusCode),
		}
	}

	return nil
}
