package mockserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
)

// echoData returns what the client sent: the JSON body, the query string as a
// string map, or multipart fields with a summary of the files.
func echoData(r *http.Request) (any, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "multipart/form-data":
		return multipartData(r)
	case r.Method == http.MethodGet:
		return queryData(r.URL.Query()), nil
	default:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		body = bytes.TrimSpace(body)
		if len(body) == 0 {
			return nil, nil
		}
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		return v, nil
	}
}

func queryData(q url.Values) map[string]any {
	out := make(map[string]any, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

type fileSummary struct {
	Field       string `json:"field"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

func multipartData(r *http.Request) (map[string]any, error) {
	if err := r.ParseMultipartForm(maxMultipartSize); err != nil {
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}
	out := make(map[string]any, len(r.MultipartForm.Value)+1)
	for k, vs := range r.MultipartForm.Value {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}

	fields := make([]string, 0, len(r.MultipartForm.File))
	for field := range r.MultipartForm.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var files []fileSummary
	for _, field := range fields {
		for _, hdr := range r.MultipartForm.File[field] {
			files = append(files, fileSummary{
				Field:       field,
				Name:        hdr.Filename,
				Size:        hdr.Size,
				ContentType: hdr.Header.Get("Content-Type"),
			})
		}
	}
	if len(files) > 0 {
		out["files"] = files
	}
	return out, nil
}
