// Package seed reads location content from markdown files with YAML
// frontmatter. The markdown body becomes the overview section.
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/sections"
)

var ErrLocationIDMissing = errors.New("seed: location_id missing from frontmatter")

// Entry is one parsed seed file.
type Entry struct {
	Path       string
	LocationID string
	Request    content.SaveRequest
}

type frontMatter struct {
	LocationID    string           `yaml:"location_id"`
	Title         string           `yaml:"title"`
	Slug          string           `yaml:"slug"`
	Type          string           `yaml:"type"`
	Country       string           `yaml:"country"`
	Region        string           `yaml:"region"`
	Editable      *bool            `yaml:"editable"`
	OverviewTitle string           `yaml:"overview_title"`
	Hero          map[string]any   `yaml:"hero"`
	Sections      []map[string]any `yaml:"sections"`
}

// Parse reads one seed document.
func Parse(name string, source []byte) (Entry, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Entry{}, fmt.Errorf("parse frontmatter %s: %w", name, err)
	}
	if strings.TrimSpace(meta.LocationID) == "" {
		return Entry{}, fmt.Errorf("%w: %s", ErrLocationIDMissing, name)
	}

	req := content.SaveRequest{
		Title:    meta.Title,
		Slug:     meta.Slug,
		Type:     meta.Type,
		Country:  meta.Country,
		Region:   meta.Region,
		Editable: meta.Editable,
	}
	if len(meta.Hero) > 0 {
		if req.Hero, err = json.Marshal(normalize(meta.Hero)); err != nil {
			return Entry{}, fmt.Errorf("encode hero %s: %w", name, err)
		}
	}
	for i, raw := range meta.Sections {
		section, err := decodeSection(raw)
		if err != nil {
			return Entry{}, fmt.Errorf("section %d in %s: %w", i, name, err)
		}
		req.Sections = append(req.Sections, section)
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		req.Sections = append(req.Sections, sections.Section{
			Key:  sections.TypeOverview,
			Type: sections.TypeOverview,
			Data: sections.OverviewData{Title: meta.OverviewTitle, Body: text},
		})
	}

	return Entry{Path: name, LocationID: strings.TrimSpace(meta.LocationID), Request: req}, nil
}

// decodeSection routes a YAML section map through the JSON section codec so
// seed files and API payloads share validation.
func decodeSection(raw map[string]any) (sections.Section, error) {
	encoded, err := json.Marshal(normalize(raw))
	if err != nil {
		return sections.Section{}, err
	}
	var section sections.Section
	if err := json.Unmarshal(encoded, &section); err != nil {
		return sections.Section{}, err
	}
	return section, nil
}

// normalize converts the map[any]any values produced by YAML decoding into
// map[string]any so they can be encoded as JSON.
func normalize(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}

// LoadDir parses every *.md file under dir in fsys, sorted by path.
func LoadDir(ctx context.Context, fsys fs.FS, dir string) ([]Entry, error) {
	if dir == "" {
		dir = "."
	}
	var paths []string
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".md" {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		source, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("seed read %s: %w", p, err)
		}
		entry, err := Parse(p, source)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
