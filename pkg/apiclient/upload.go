package apiclient

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-api-client/pkg/httpclient"
)

const (
	contentTypeJPEG  = "image/jpeg"
	contentTypeVideo = "video/mp4"
	contentTypeOctet = "application/octet-stream"
)

// ImagePart attaches JPEG bytes under field, named after the current time.
func ImagePart(field string, jpeg []byte) httpclient.Part {
	return httpclient.Part{
		Field:       field,
		FileName:    fmt.Sprintf("%d.jpeg", time.Now().UnixNano()),
		ContentType: contentTypeJPEG,
		Data:        jpeg,
	}
}

// ImageParts attaches each image under the same field.
func ImageParts(field string, images ...[]byte) []httpclient.Part {
	parts := make([]httpclient.Part, 0, len(images))
	for _, img := range images {
		parts = append(parts, ImagePart(field, img))
	}
	return parts
}

// VideoPart streams the video file at path under field.
func VideoPart(field, path string) httpclient.Part {
	return httpclient.Part{
		Field:       field,
		FileName:    fmt.Sprintf("%d.mp4", time.Now().UnixNano()),
		ContentType: contentTypeVideo,
		Path:        path,
	}
}

// FilePart streams the file at path under field, typed by its extension.
func FilePart(field, path string) httpclient.Part {
	return httpclient.Part{
		Field:       field,
		FileName:    filepath.Base(path),
		ContentType: contentTypeFor(path),
		Path:        path,
	}
}

// DocumentPart attaches in-memory document bytes under field.
func DocumentPart(field, name string, data []byte) httpclient.Part {
	return httpclient.Part{
		Field:       field,
		FileName:    name,
		ContentType: contentTypeFor(name),
		Data:        data,
	}
}

func contentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return contentTypeOctet
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return contentTypeOctet
}
