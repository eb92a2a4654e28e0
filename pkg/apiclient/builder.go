package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/samvad-hq/samvad-api-client/pkg/apierror"
	"github.com/samvad-hq/samvad-api-client/pkg/endpoint"
	"github.com/samvad-hq/samvad-api-client/pkg/httpclient"
)

// Payload is the loosely typed request data: a JSON body for non-GET
// endpoints, the query string for GET endpoints.
type Payload = map[string]any

const (
	contentTypeJSON      = "application/json"
	contentTypeMultipart = "multipart/form-data"

	headerRequestID = "X-Request-ID"
)

// BuildRequest turns an endpoint and payload into a transport-ready request.
// headers are applied over the defaults.
func BuildRequest(baseURL string, ep endpoint.Endpoint, payload Payload, headers map[string]string) (httpclient.Request, error) {
	raw := ep.Resolve(baseURL)
	u, err := NormalizeURL(raw)
	if err != nil {
		return httpclient.Request{}, apierror.Request(apierror.CodeBadURL, apierror.MsgInvalidURL, raw, err)
	}

	var body []byte
	if ep.IsGet() {
		if q := QueryString(payload); q != "" {
			u = appendQuery(u, q)
		}
	} else if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return httpclient.Request{}, apierror.Request(0, apierror.MsgBodyNotEncoded, u, err)
		}
		body = b
	}

	return httpclient.Request{
		Method:  method(ep),
		URL:     u,
		Headers: mergeHeaders(contentTypeJSON, headers),
		Body:    body,
	}, nil
}

// BuildUploadRequest builds a multipart request. Payload values become string
// form fields; parts are appended as files.
func BuildUploadRequest(baseURL string, ep endpoint.Endpoint, payload Payload, parts []httpclient.Part, headers map[string]string) (httpclient.Request, error) {
	raw := ep.Resolve(baseURL)
	u, err := NormalizeURL(raw)
	if err != nil {
		return httpclient.Request{}, apierror.Request(apierror.CodeBadURL, apierror.MsgInvalidURL, raw, err)
	}

	return httpclient.Request{
		Method:  method(ep),
		URL:     u,
		Headers: mergeHeaders(contentTypeMultipart, headers),
		Fields:  FormFields(payload),
		Parts:   parts,
	}, nil
}

func method(ep endpoint.Endpoint) string {
	m := strings.ToUpper(strings.TrimSpace(ep.Method))
	if m == "" {
		return http.MethodGet
	}
	return m
}

func mergeHeaders(contentType string, extra map[string]string) map[string]string {
	h := map[string]string{
		"Content-Type":  contentType,
		"Accept":        contentTypeJSON,
		headerRequestID: uuid.NewString(),
	}
	for k, v := range extra {
		h[http.CanonicalHeaderKey(k)] = v
	}
	return h
}

func appendQuery(raw, q string) string {
	if strings.Contains(raw, "?") {
		return raw + "&" + q
	}
	return raw + "?" + q
}

// QueryString renders payload as key=value pairs joined by '&', keys sorted.
// Keys and values are percent-escaped so each key yields exactly one pair.
func QueryString(payload Payload) string {
	if len(payload) == 0 {
		return ""
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeQueryComponent(k))
		b.WriteByte('=')
		b.WriteString(escapeQueryComponent(queryValue(payload[k])))
	}
	return b.String()
}

func queryValue(v any) string {
	if v == nil {
		return ""
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}

// FormFields renders payload values as multipart string fields. Integers are
// written in decimal; values with no scalar form become empty strings.
func FormFields(payload Payload) map[string]string {
	if len(payload) == 0 {
		return nil
	}
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		out[k] = formValue(v)
	}
	return out
}

func formValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(t).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(t).Uint(), 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// NormalizeURL percent-decodes raw and re-encodes it for the query-allowed
// character set. The result must be absolute.
func NormalizeURL(raw string) (string, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", err
	}
	encoded := escapeQueryAllowed(decoded)
	u, err := url.Parse(encoded)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", encoded)
	}
	return encoded, nil
}

const queryAllowedPunct = "-._~!$&'()*+,;=:@/?"

func escapeQueryAllowed(s string) string {
	return escapeBytes(s, isQueryAllowed)
}

// escapeQueryComponent escapes a single query key or value. Pair and list
// separators are escaped along with everything outside the query-allowed set.
func escapeQueryComponent(s string) string {
	return escapeBytes(s, func(c byte) bool {
		return isQueryAllowed(c) && strings.IndexByte("&=+;", c) < 0
	})
}

func escapeBytes(s string, allowed func(byte) bool) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if allowed(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isQueryAllowed(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte(queryAllowedPunct, c) >= 0
}
