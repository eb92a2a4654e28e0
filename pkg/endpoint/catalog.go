package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// catalogFile represents the structure of the endpoints file.
type catalogFile struct {
	Endpoints []Endpoint `json:"endpoints" yaml:"endpoints"`
}

// Catalog is a named set of endpoints loaded from a file or the built-in list.
type Catalog struct {
	mu        sync.RWMutex
	endpoints []Endpoint
	idx       map[string]Endpoint
}

var validate = validator.New()

// DefaultCatalog returns the built-in endpoints.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(Builtin())
	if err != nil {
		panic(fmt.Sprintf("builtin endpoints invalid: %v", err))
	}
	return c
}

// NewCatalog sanitizes and validates eps.
func NewCatalog(eps []Endpoint) (*Catalog, error) {
	c := &Catalog{
		endpoints: make([]Endpoint, 0, len(eps)),
		idx:       make(map[string]Endpoint, len(eps)),
	}
	for i := range eps {
		ep := sanitizeEndpoint(eps[i])
		if err := validateEndpoint(ep); err != nil {
			return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
		}
		if _, exists := c.idx[ep.Name]; exists {
			return nil, fmt.Errorf("duplicate endpoint name %q", ep.Name)
		}
		c.endpoints = append(c.endpoints, ep)
		c.idx[ep.Name] = ep
	}
	return c, nil
}

// LoadCatalog loads endpoints from a YAML/JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("endpoints file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open endpoints file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}

	parsed, err := parseCatalog(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Endpoints) == 0 {
		return nil, errors.New("endpoints file contains no endpoints entries")
	}
	return NewCatalog(parsed.Endpoints)
}

func parseCatalog(data []byte, ext string) (catalogFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cf catalogFile
		if err := d.fn(data, &cf); err == nil {
			return cf, nil
		}
	}

	return catalogFile{}, errors.New("endpoints file format not recognized (expected YAML or JSON)")
}

func sanitizeEndpoint(ep Endpoint) Endpoint {
	ep.Name = strings.TrimSpace(ep.Name)
	ep.Path = strings.TrimSpace(ep.Path)
	ep.Method = strings.ToUpper(strings.TrimSpace(ep.Method))
	return ep
}

func validateEndpoint(ep Endpoint) error {
	if err := validate.Struct(ep); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("endpoint %q: field %s failed %s", ep.Name, strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("endpoint %q: %w", ep.Name, err)
	}
	return nil
}

// ByName returns the endpoint registered under name.
func (c *Catalog) ByName(name string) (Endpoint, bool) {
	if c == nil {
		return Endpoint{}, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Endpoint{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	ep, ok := c.idx[name]
	return ep, ok
}

// All returns all endpoints in declaration order.
func (c *Catalog) All() []Endpoint {
	if c == nil {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Endpoint, len(c.endpoints))
	copy(out, c.endpoints)
	return out
}
