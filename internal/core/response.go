package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// response is a simple Response implementation
type response struct {
	statusCode int
	headers    map[string][]string
	body       *bytes.Buffer
}

// NewResponse creates a new response for error cases or simple responses
func NewResponse(statusCode int, body []byte) *response {
	buf := new(bytes.Buffer)
	if body != nil {
		buf.Write(body)
	}
	return &response{
		statusCode: statusCode,
		headers:    make(map[string][]string),
		body:       buf,
	}
}

// NewJSONResponse encodes v as the body of a JSON response
func NewJSONResponse(statusCode int, v any) (Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	resp := NewResponse(statusCode, body)
	resp.headers["Content-Type"] = []string{"application/json"}
	return resp, nil
}

func (r *response) StatusCode() int              { return r.statusCode }
func (r *response) Headers() map[string][]string { return r.headers }
func (r *response) Body() io.ReadCloser          { return io.NopCloser(bytes.NewReader(r.body.Bytes())) }

// headerResponse overlays extra headers on a response produced elsewhere
type headerResponse struct {
	Response
	headers map[string][]string
}

// WithHeaders returns resp with the given headers added. The wrapped
// response is not modified.
func WithHeaders(resp Response, headers map[string]string) Response {
	if resp == nil || len(headers) == 0 {
		return resp
	}

	merged := make(map[string][]string, len(resp.Headers())+len(headers))
	for k, v := range resp.Headers() {
		merged[k] = v
	}
	for k, v := range headers {
		merged[k] = []string{v}
	}
	return &headerResponse{Response: resp, headers: merged}
}

func (r *headerResponse) Headers() map[string][]string { return r.headers }
