package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// Request is a transport-ready HTTP request. Parts switches the request to
// multipart/form-data; Body is ignored in that case.
type Request struct {
	Method     string
	URL        string
	Headers    map[string]string
	Body       []byte
	Fields     map[string]string
	Parts      []Part
	OnProgress func(Progress)
}

// Multipart reports whether the request carries form parts.
func (r Request) Multipart() bool { return len(r.Parts) > 0 || len(r.Fields) > 0 }

// Part is a single file part of a multipart request. Either Data or Path is set;
// Path is opened when the request is executed.
type Part struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
	Path        string
}

// Progress reports bytes of file parts handed to the wire so far.
type Progress struct {
	Sent  int64
	Total int64
}

// Fraction returns the completed share in [0,1].
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Sent) / float64(p.Total)
}

// StaticResponse is an in-memory Response, used by stub transports.
type StaticResponse struct {
	Status  int
	Payload []byte
	Headers http.Header
}

func (s *StaticResponse) Body() []byte    { return s.Payload }
func (s *StaticResponse) StatusCode() int { return s.Status }

func (s *StaticResponse) Header() http.Header {
	if s.Headers == nil {
		return http.Header{}
	}
	return s.Headers
}
