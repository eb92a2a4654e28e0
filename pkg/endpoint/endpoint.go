package endpoint

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// Endpoint is a symbolic remote operation: a path template and an HTTP verb.
// Templates may embed {name} placeholders and a literal query.
type Endpoint struct {
	Name         string `json:"name" yaml:"name" validate:"required"`
	Path         string `json:"path" yaml:"path" validate:"required"`
	Method       string `json:"method" yaml:"method" validate:"required,oneof=GET POST PUT DELETE"`
	RequiresAuth bool   `json:"requires_auth" yaml:"requires_auth"`
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// IsGet reports whether the payload travels as a query string.
func (e Endpoint) IsGet() bool { return strings.EqualFold(e.Method, http.MethodGet) }

// Placeholders lists the unresolved {name} parameters of the path.
func (e Endpoint) Placeholders() []string {
	matches := placeholderRe.FindAllStringSubmatch(e.Path, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// With returns a copy of e with placeholders replaced by params. Values are
// inserted verbatim; the request builder escapes the final URL.
func (e Endpoint) With(params map[string]any) Endpoint {
	out := e
	out.Path = placeholderRe.ReplaceAllStringFunc(e.Path, func(m string) string {
		key := m[1 : len(m)-1]
		if v, ok := params[key]; ok {
			return fmt.Sprint(v)
		}
		return m
	})
	return out
}

// Resolve joins base and the endpoint path. Absolute endpoint URLs are returned unchanged.
func (e Endpoint) Resolve(base string) string {
	if u, err := url.Parse(e.Path); err == nil && u.IsAbs() {
		return e.Path
	}
	base = strings.TrimRight(base, "/")
	path := e.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}
