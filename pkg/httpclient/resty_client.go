package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// Do executes req. Failures without an HTTP response come back as *TransportError.
func (r *RestyClient) Do(ctx context.Context, req Request) (Response, error) {
	rr := r.client.R().SetContext(ctx)
	for k, v := range req.Headers {
		// resty writes the multipart Content-Type itself so the boundary is included.
		if req.Multipart() && http.CanonicalHeaderKey(k) == "Content-Type" {
			continue
		}
		rr.SetHeader(k, v)
	}

	if req.Multipart() {
		closers, err := attachParts(rr, req)
		defer closeAll(closers)
		if err != nil {
			return nil, &TransportError{Code: TransportCode(err), Err: err}
		}
	} else if req.Body != nil {
		rr.SetBody(req.Body)
	}

	resp, err := rr.Execute(req.Method, req.URL)
	if err != nil {
		return nil, &TransportError{Code: TransportCode(err), Err: err}
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// attachParts adds form fields and file parts to rr, wrapping file readers so
// progress can be reported across all parts.
func attachParts(rr *resty.Request, req Request) ([]io.Closer, error) {
	if len(req.Fields) > 0 {
		rr.SetMultipartFormData(req.Fields)
	}

	var (
		closers []io.Closer
		total   int64
		readers = make([]io.Reader, len(req.Parts))
	)
	for i, p := range req.Parts {
		if p.Path == "" {
			readers[i] = bytes.NewReader(p.Data)
			total += int64(len(p.Data))
			continue
		}
		f, size, err := openPart(p.Path)
		if err != nil {
			return closers, err
		}
		closers = append(closers, f)
		readers[i] = f
		total += size
	}

	sent := &atomic.Int64{}
	fields := make([]*resty.MultipartField, 0, len(req.Parts))
	for i, p := range req.Parts {
		name := p.FileName
		if name == "" && p.Path != "" {
			name = filepath.Base(p.Path)
		}
		var rd io.Reader = readers[i]
		if req.OnProgress != nil {
			rd = &progressReader{r: rd, sent: sent, total: total, fn: req.OnProgress}
		}
		fields = append(fields, &resty.MultipartField{
			Param:       p.Field,
			FileName:    name,
			ContentType: p.ContentType,
			Reader:      rd,
		})
	}
	if len(fields) > 0 {
		rr.SetMultipartFields(fields...)
	}
	return closers, nil
}

func openPart(path string) (*os.File, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("%s: %w", path, errIsDirectory)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}

type progressReader struct {
	r     io.Reader
	sent  *atomic.Int64
	total int64
	fn    func(Progress)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.fn(Progress{Sent: p.sent.Add(int64(n)), Total: p.total})
	}
	return n, err
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
