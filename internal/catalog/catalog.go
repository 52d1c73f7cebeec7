package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Package catalog holds the static registry of source descriptors. Descriptors
// are loaded once at process start and are immutable afterwards.

var (
	// ErrSourceNotFound reports a lookup miss for a source id or its redirect target.
	ErrSourceNotFound = errors.New("source not found")
	// ErrSourceDisabled reports that the resolved source is not active.
	ErrSourceDisabled = errors.New("source disabled")
)

// Source describes one trending source and its refresh policy. The
// environment-specific disable case is resolved against the deployment
// environment at load time, so Enabled is a plain two-state flag at runtime.
type Source struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool
	Redirect string
	Home     string
}

// EffectiveID returns the redirect target when set, the source's own id otherwise.
func (s Source) EffectiveID() string {
	if s.Redirect != "" {
		return s.Redirect
	}
	return s.ID
}

// sourceEntry is the on-disk shape of one source. The disable field accepts a
// bool or an environment name; a name disables the source only when the hub
// runs in that environment.
type sourceEntry struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	IntervalSeconds int64  `json:"interval_seconds" yaml:"interval_seconds"`
	Disable         any    `json:"disable" yaml:"disable"`
	Redirect        string `json:"redirect" yaml:"redirect"`
	Home            string `json:"home" yaml:"home"`
}

type catalogFile struct {
	Sources []sourceEntry `json:"sources" yaml:"sources"`
}

// Catalog resolves source descriptors by id.
type Catalog struct {
	mu      sync.RWMutex
	sources map[string]Source
	order   []string
}

const defaultIntervalSeconds = 600

// Load reads the source catalog from a YAML/JSON file, resolving
// environment-specific disables against the given deployment environment.
func Load(path, env string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	parsed, err := parseCatalog(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	cat := &Catalog{
		sources: make(map[string]Source, len(parsed.Sources)),
		order:   make([]string, 0, len(parsed.Sources)),
	}

	for i := range parsed.Sources {
		src, err := buildSource(parsed.Sources[i], env)
		if err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, exists := cat.sources[src.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", src.ID)
		}
		cat.sources[src.ID] = src
		cat.order = append(cat.order, src.ID)
	}

	for _, src := range cat.sources {
		if src.Redirect == "" {
			continue
		}
		target, ok := cat.sources[src.Redirect]
		if !ok {
			return nil, fmt.Errorf("source %q redirects to unknown source %q", src.ID, src.Redirect)
		}
		if target.Redirect != "" {
			return nil, fmt.Errorf("source %q redirects to %q which itself redirects (single hop only)", src.ID, src.Redirect)
		}
	}

	return cat, nil
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
		var out catalogFile
		if err := d.fn(data, &out); err == nil {
			return out, nil
		}
	}

	return catalogFile{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

func buildSource(entry sourceEntry, env string) (Source, error) {
	entry.ID = strings.TrimSpace(entry.ID)
	entry.Name = strings.TrimSpace(entry.Name)
	entry.Redirect = strings.TrimSpace(entry.Redirect)
	entry.Home = strings.TrimSpace(entry.Home)

	if entry.ID == "" {
		return Source{}, errors.New("id is required")
	}
	if entry.Name == "" {
		return Source{}, fmt.Errorf("name is required for source %q", entry.ID)
	}
	if entry.Redirect == entry.ID {
		return Source{}, fmt.Errorf("source %q redirects to itself", entry.ID)
	}
	if entry.IntervalSeconds <= 0 {
		entry.IntervalSeconds = defaultIntervalSeconds
	}

	enabled, err := resolveEnabled(entry.Disable, env)
	if err != nil {
		return Source{}, fmt.Errorf("source %q: %w", entry.ID, err)
	}

	return Source{
		ID:       entry.ID,
		Name:     entry.Name,
		Interval: time.Duration(entry.IntervalSeconds) * time.Second,
		Enabled:  enabled,
		Redirect: entry.Redirect,
		Home:     entry.Home,
	}, nil
}

// resolveEnabled collapses the file's bool-or-environment disable value into a
// plain enabled flag for the current deployment environment.
func resolveEnabled(disable any, env string) (bool, error) {
	switch v := disable.(type) {
	case nil:
		return true, nil
	case bool:
		return !v, nil
	case string:
		name := strings.TrimSpace(v)
		if name == "" {
			return true, nil
		}
		return !strings.EqualFold(name, strings.TrimSpace(env)), nil
	default:
		return false, fmt.Errorf("disable must be a bool or environment name, got %T", disable)
	}
}

// Resolve looks up a descriptor by id without following redirects.
func (c *Catalog) Resolve(id string) (Source, error) {
	if c == nil {
		return Source{}, fmt.Errorf("%w: %s", ErrSourceNotFound, id)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	src, ok := c.sources[strings.TrimSpace(id)]
	if !ok {
		return Source{}, fmt.Errorf("%w: %s", ErrSourceNotFound, id)
	}
	return src, nil
}

// ResolveEffective looks up a descriptor, follows its redirect once, and
// verifies the resulting descriptor is enabled. All policy decisions
// (interval, enabled) are taken from the redirect target.
func (c *Catalog) ResolveEffective(id string) (Source, error) {
	src, err := c.Resolve(id)
	if err != nil {
		return Source{}, err
	}

	if effective := src.EffectiveID(); effective != src.ID {
		src, err = c.Resolve(effective)
		if err != nil {
			return Source{}, err
		}
	}

	if !src.Enabled {
		return Source{}, fmt.Errorf("%w: %s", ErrSourceDisabled, src.ID)
	}
	return src, nil
}

// All returns the catalog entries in file order.
func (c *Catalog) All() []Source {
	if c == nil {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Source, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.sources[id])
	}
	return out
}

// EnabledIDs returns the ids of all enabled, non-redirecting sources. Redirect
// entries are aliases; refreshing them would double-fetch the target.
func (c *Catalog) EnabledIDs() []string {
	var ids []string
	for _, src := range c.All() {
		if src.Enabled && src.Redirect == "" {
			ids = append(ids, src.ID)
		}
	}
	return ids
}
