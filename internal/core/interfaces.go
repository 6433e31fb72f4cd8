package core

import (
	"context"
	"io"
)

// Request represents an incoming request
type Request interface {
	ID() string
	Method() string
	Path() string
	URL() string
	RemoteAddr() string
	Headers() map[string][]string
	Payload() *Payload
	Context() context.Context
}

// Payload holds the decoded, caller-controlled parts of a request. The
// middleware chain may rewrite these in place before handlers see them.
type Payload struct {
	// Body is the decoded JSON body, nil when the request had none
	Body any
	// Query holds the URL query parameters
	Query map[string][]string
	// Params holds the path parameters captured by the router
	Params map[string]string
}

// Roots returns the payload parts as a list for traversal
func (p *Payload) Roots() []any {
	if p == nil {
		return nil
	}
	return []any{p.Body, p.Query, p.Params}
}

// Response represents an outgoing response
type Response interface {
	StatusCode() int
	Headers() map[string][]string
	Body() io.ReadCloser
}

// Handler processes requests
type Handler func(context.Context, Request) (Response, error)

// Middleware wraps handlers
type Middleware func(Handler) Handler
