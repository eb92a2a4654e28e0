// Package envelope parses the {status, data, message, accessToken} wrapper the
// API puts around every response and classifies it into a single outcome.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
)

// StatusOK is the envelope status that signals success.
const StatusOK = 200

var errNotObject = errors.New("envelope: body is not a JSON object")

// Envelope is the decoded wire wrapper. Data keeps the raw JSON so absent,
// null, scalar and structured payloads stay distinguishable.
type Envelope struct {
	Status      int
	HasStatus   bool
	Data        json.RawMessage
	Message     string
	MessageCode int
	HasCode     bool
	AccessToken string
}

type wireEnvelope struct {
	Status      json.RawMessage `json:"status"`
	Data        json.RawMessage `json:"data"`
	Message     json.RawMessage `json:"message"`
	AccessToken json.RawMessage `json:"accessToken"`
}

// Parse decodes body once into an Envelope. Bodies that are not a JSON object
// return an error.
func Parse(body []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		if len(trimmed) > 0 && !json.Valid(trimmed) {
			return Envelope{}, errors.New("envelope: invalid JSON")
		}
		return Envelope{}, errNotObject
	}

	var w wireEnvelope
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return Envelope{}, err
	}

	var env Envelope
	env.Status, env.HasStatus = intValue(w.Status)
	if len(w.Data) > 0 {
		env.Data = w.Data
	}
	if code, ok := intValue(w.Message); ok {
		env.MessageCode, env.HasCode = code, true
	} else {
		env.Message = stringValue(w.Message)
	}
	env.AccessToken = stringValue(w.AccessToken)
	return env, nil
}

// Success reports whether the envelope status is 200.
func (e Envelope) Success() bool { return e.HasStatus && e.Status == StatusOK }

// HasData reports whether the data key was present, null included.
func (e Envelope) HasData() bool { return len(e.Data) > 0 }

// Structured reports whether data is a JSON object or array.
func (e Envelope) Structured() bool {
	if len(e.Data) == 0 {
		return false
	}
	switch e.Data[0] {
	case '{', '[':
		return true
	}
	return false
}

// intValue accepts JSON numbers with an integral value. Strings are rejected.
func intValue(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 || raw[0] != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
