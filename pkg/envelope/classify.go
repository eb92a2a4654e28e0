package envelope

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/samvad-hq/samvad-api-client/pkg/apierror"
	"github.com/samvad-hq/samvad-api-client/pkg/httpclient"
)

// Mode selects how a response body is interpreted.
type Mode int

const (
	// ModeEnvelope expects the standard wrapper and decodes its data field.
	ModeEnvelope Mode = iota
	// ModeUpload is ModeEnvelope plus numeric error codes in message on failures.
	ModeUpload
	// ModeRaw decodes the whole body without a wrapper.
	ModeRaw
)

func (m Mode) String() string {
	switch m {
	case ModeUpload:
		return "upload"
	case ModeRaw:
		return "raw"
	default:
		return "envelope"
	}
}

// Kind tags an Outcome.
type Kind int

const (
	// Failure carries Err.
	Failure Kind = iota
	// Value carries Data ready for Decode.
	Value
	// Ack is a success without a payload.
	Ack
)

func (k Kind) String() string {
	switch k {
	case Value:
		return "value"
	case Ack:
		return "ack"
	default:
		return "failure"
	}
}

// Outcome is the single result of classifying a response.
type Outcome struct {
	Kind Kind
	Data json.RawMessage
	Err  *apierror.Error

	// AccessToken is set when a successful envelope carried a token to persist.
	AccessToken string
	// Relogin is set for HTTP 401; the session must be flagged.
	Relogin bool
	// Maintenance is set for HTTP 503; the host prompt hook must run.
	Maintenance bool
	// Detail is a short excerpt of a body that could not be parsed.
	Detail string
}

func failed(err *apierror.Error) Outcome { return Outcome{Kind: Failure, Err: err} }

// Classify turns an HTTP response into an Outcome.
func Classify(resp httpclient.Response, url string, mode Mode) Outcome {
	status := resp.StatusCode()
	body := resp.Body()

	switch status {
	case http.StatusUnauthorized:
		out := failed(apierror.AuthRequired(status, url))
		out.Relogin = true
		return out
	case http.StatusServiceUnavailable:
		out := failed(apierror.Maintenance(url))
		out.Maintenance = true
		return out
	}

	if mode == ModeRaw {
		return classifyRaw(status, body, url)
	}

	uploadFailure := mode == ModeUpload && status != http.StatusOK

	if len(bytes.TrimSpace(body)) == 0 {
		if uploadFailure {
			return failed(apierror.Server(status, apierror.MessageFor(status), url))
		}
		return failed(apierror.Server(status, apierror.MsgDataNotFound, url))
	}

	env, err := Parse(body)
	if err != nil {
		var out Outcome
		if uploadFailure {
			out = failed(apierror.Server(status, apierror.MessageFor(status), url))
		} else {
			out = failed(apierror.Server(status, apierror.MsgSomethingWrong, url))
		}
		out.Err.Cause = err
		out.Detail = Snippet(resp.Header().Get("Content-Type"), body)
		return out
	}

	if uploadFailure {
		return failed(uploadError(env, status, url))
	}

	if !env.Success() {
		return failed(apierror.Server(status, env.Message, url))
	}

	out := Outcome{AccessToken: env.AccessToken}
	switch {
	case !env.HasData():
		out.Kind = Failure
		out.Err = apierror.Empty(status, env.Message, url)
	case env.Structured():
		out.Kind = Value
		out.Data = env.Data
	default:
		out.Kind = Ack
	}
	return out
}

// uploadError reads message as an error code when it is numeric.
func uploadError(env Envelope, status int, url string) *apierror.Error {
	if env.HasCode {
		if env.MessageCode > 0 {
			return apierror.Server(env.MessageCode, apierror.MsgSomethingWrong, url)
		}
		return apierror.Server(env.MessageCode, apierror.MessageFor(status), url)
	}
	return apierror.Server(status, apierror.MessageFor(status), url)
}

func classifyRaw(status int, body []byte, url string) Outcome {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return failed(apierror.Server(status, apierror.MsgDataNotFound, url))
	}
	if !json.Valid(trimmed) {
		out := failed(apierror.Server(status, apierror.MsgSomethingWrong, url))
		out.Detail = Snippet("", trimmed)
		return out
	}
	return Outcome{Kind: Value, Data: json.RawMessage(trimmed)}
}

// Decode unmarshals data into T. Failures are reported as "Data not decoded".
func Decode[T any](data []byte, url string) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, apierror.Decode(url, err)
	}
	return v, nil
}
