package apiclient

import (
	"context"

	"github.com/samvad-hq/samvad-api-client/pkg/endpoint"
	"github.com/samvad-hq/samvad-api-client/pkg/envelope"
	"github.com/samvad-hq/samvad-api-client/pkg/httpclient"
)

// Result is a successful call. HasData is false for acknowledgements whose
// envelope carried a null or scalar data field.
type Result[T any] struct {
	Value   T
	HasData bool
}

// Callback receives the single result of an async call.
type Callback[T any] func(Result[T], error)

// Call executes ep and decodes the envelope data into T.
func Call[T any](ctx context.Context, c *Client, ep endpoint.Endpoint, payload Payload, opts ...CallOption) (Result[T], error) {
	cc := c.callConfig(opts)
	req, err := BuildRequest(c.baseURL, ep, payload, c.headers(ep, cc))
	if err != nil {
		c.log.ErrorObj("api request not built", "error", err)
		return Result[T]{}, err
	}
	return run[T](ctx, c, ep, req, envelope.ModeEnvelope, cc)
}

// CallRaw executes ep and decodes the whole body into T, for endpoints that
// answer without the envelope.
func CallRaw[T any](ctx context.Context, c *Client, ep endpoint.Endpoint, payload Payload, opts ...CallOption) (T, error) {
	cc := c.callConfig(opts)
	req, err := BuildRequest(c.baseURL, ep, payload, c.headers(ep, cc))
	if err != nil {
		c.log.ErrorObj("api request not built", "error", err)
		var zero T
		return zero, err
	}
	res, err := run[T](ctx, c, ep, req, envelope.ModeRaw, cc)
	return res.Value, err
}

// Upload sends payload and parts as multipart/form-data.
func Upload[T any](ctx context.Context, c *Client, ep endpoint.Endpoint, payload Payload, parts []httpclient.Part, opts ...CallOption) (Result[T], error) {
	cc := c.callConfig(opts)
	req, err := BuildUploadRequest(c.baseURL, ep, payload, parts, c.headers(ep, cc))
	if err != nil {
		c.log.ErrorObj("api upload not built", "error", err)
		return Result[T]{}, err
	}
	req.OnProgress = cc.onProgress
	return run[T](ctx, c, ep, req, envelope.ModeUpload, cc)
}

func run[T any](ctx context.Context, c *Client, ep endpoint.Endpoint, req httpclient.Request, mode envelope.Mode, cc callConfig) (Result[T], error) {
	var res Result[T]
	err := c.do(ctx, ep, req, mode, cc, func(data []byte, url string) error {
		v, err := envelope.Decode[T](data, url)
		if err != nil {
			return err
		}
		res.Value, res.HasData = v, true
		return nil
	})
	if err != nil {
		return Result[T]{}, err
	}
	return res, nil
}

// Go runs Call on a new goroutine and delivers the result to cb through the
// client's Dispatcher.
func Go[T any](ctx context.Context, c *Client, ep endpoint.Endpoint, payload Payload, cb Callback[T], opts ...CallOption) {
	go func() {
		res, err := Call[T](ctx, c, ep, payload, opts...)
		c.deliver(err, func() { cb(res, err) })
	}()
}

// GoRaw is the async form of CallRaw.
func GoRaw[T any](ctx context.Context, c *Client, ep endpoint.Endpoint, payload Payload, cb func(T, error), opts ...CallOption) {
	go func() {
		v, err := CallRaw[T](ctx, c, ep, payload, opts...)
		c.deliver(err, func() { cb(v, err) })
	}()
}

// GoUpload is the async form of Upload.
func GoUpload[T any](ctx context.Context, c *Client, ep endpoint.Endpoint, payload Payload, parts []httpclient.Part, cb Callback[T], opts ...CallOption) {
	go func() {
		res, err := Upload[T](ctx, c, ep, payload, parts, opts...)
		c.deliver(err, func() { cb(res, err) })
	}()
}
