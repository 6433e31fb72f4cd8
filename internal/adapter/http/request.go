package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"deskgate/internal/core"
	"deskgate/pkg/errors"
)

const (
	msgTooLarge    = "Request body too large"
	msgInvalidJSON = "Invalid JSON body"
)

// newRequest builds a core request with the JSON body, query and route
// parameters decoded into its payload
func (a *Adapter) newRequest(w http.ResponseWriter, r *http.Request, reqID string) (core.Request, error) {
	body, err := a.decodeBody(w, r)
	if err != nil {
		return nil, err
	}

	payload := &core.Payload{
		Body:   body,
		Query:  r.URL.Query(),
		Params: routeParams(r),
	}

	return core.NewRequest(
		reqID,
		r.Method,
		r.URL.Path,
		r.URL.String(),
		r.RemoteAddr,
		r.Header.Clone(),
		payload,
		r.Context(),
	), nil
}

// decodeBody reads at most MaxRequestSize bytes and parses them as JSON.
// An empty body decodes to nil.
func (a *Adapter) decodeBody(w http.ResponseWriter, r *http.Request) (any, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	limit := a.config.MaxRequestSize
	if limit > 0 && r.ContentLength > limit {
		return nil, errors.NewError(errors.ErrorTypeTooLarge, msgTooLarge).
			WithDetail("content_length", r.ContentLength)
	}

	reader := io.Reader(r.Body)
	if limit > 0 {
		reader = http.MaxBytesReader(w, r.Body, limit)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errors.NewError(errors.ErrorTypeTooLarge, msgTooLarge).WithCause(err)
		}
		return nil, errors.NewError(errors.ErrorTypeBadRequest, msgInvalidJSON).WithCause(err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, errors.NewError(errors.ErrorTypeBadRequest, msgInvalidJSON).WithCause(err)
	}
	return body, nil
}

// routeParams copies the chi URL parameters of the matched route
func routeParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || len(rctx.URLParams.Keys) == 0 {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key == "*" {
			continue
		}
		value := rctx.URLParams.Values[i]
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
		params[key] = value
	}
	return params
}
