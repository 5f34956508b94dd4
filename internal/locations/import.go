package locations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-directory/internal/identity"
)

// Dataset is the reference hierarchy loaded by Import. The YAML and JSON
// encodings share the same keys.
type Dataset struct {
	Countries []DatasetCountry `yaml:"countries" json:"countries"`
}

type DatasetCountry struct {
	Name    string          `yaml:"name" json:"name"`
	Slug    string          `yaml:"slug" json:"slug"`
	Regions []DatasetRegion `yaml:"regions" json:"regions"`
}

type DatasetRegion struct {
	Name   string        `yaml:"name" json:"name"`
	Slug   string        `yaml:"slug" json:"slug"`
	Cities []DatasetCity `yaml:"cities" json:"cities"`
}

type DatasetCity struct {
	Name string `yaml:"name" json:"name"`
	Slug string `yaml:"slug" json:"slug"`
}

// ImportResult counts the nodes written per level.
type ImportResult struct {
	Countries int `json:"countries"`
	Regions   int `json:"regions"`
	Cities    int `json:"cities"`
}

// Total returns the number of nodes written.
func (r ImportResult) Total() int {
	return r.Countries + r.Regions + r.Cities
}

// ParseDataset decodes a YAML or JSON dataset.
func ParseDataset(r io.Reader) (Dataset, error) {
	var dataset Dataset
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&dataset); err != nil {
		if errors.Is(err, io.EOF) {
			return Dataset{}, nil
		}
		return Dataset{}, fmt.Errorf("%w: %v", ErrDatasetInvalid, err)
	}
	return dataset, nil
}

// Import writes the dataset top-down. Ids derive from canonical paths so a
// re-import rewrites the same rows. A node already holding a canonical slug
// keeps its id and is updated in place.
func (s *service) Import(ctx context.Context, dataset Dataset) (ImportResult, error) {
	var result ImportResult
	for _, country := range dataset.Countries {
		countryNode, err := s.importNode(ctx, country.Name, country.Slug, TypeCountry, nil)
		if err != nil {
			return result, err
		}
		result.Countries++

		for _, region := range country.Regions {
			regionNode, err := s.importNode(ctx, region.Name, region.Slug, TypeRegion, countryNode)
			if err != nil {
				return result, err
			}
			result.Regions++

			for _, city := range region.Cities {
				if _, err := s.importNode(ctx, city.Name, city.Slug, TypeCity, regionNode); err != nil {
					return result, err
				}
				result.Cities++
			}
		}
	}
	s.logger.Info("locations.import.completed",
		"countries", result.Countries,
		"regions", result.Regions,
		"cities", result.Cities,
	)
	return result, nil
}

func (s *service) importNode(ctx context.Context, name, rawSlug string, nodeType Type, parent *Node) (*Node, error) {
	name = strings.TrimSpace(name)
	segment := normalizeSlug(rawSlug)
	if segment == "" {
		segment = normalizeSlug(name)
	}
	if segment == "" {
		return nil, fmt.Errorf("%w: %s %q has no usable slug", ErrDatasetInvalid, nodeType, name)
	}
	if name == "" {
		name = segment
	}

	var canonical string
	if parent == nil {
		canonical = s.deriver.Join(segment)
	} else {
		parentCanonical := parent.Canonical()
		if parentCanonical == "" {
			// Parent written without the canonical column; derive from its own chain.
			var err error
			parentCanonical, err = s.Derive(ctx, parent)
			if err != nil {
				return nil, err
			}
		}
		var err error
		canonical, err = s.deriver.Child(parentCanonical, segment)
		if err != nil {
			return nil, err
		}
	}

	id := identity.LocationID(canonical)
	editable := true
	if existing, err := s.repo.GetByCanonicalSlug(ctx, canonical); err == nil {
		id, editable = existing.ID, existing.Editable
	} else if !IsNotFound(err) {
		return nil, err
	}

	node := &Node{
		ID:            id,
		Name:          name,
		Slug:          segment,
		Type:          nodeType,
		CanonicalSlug: &canonical,
		Editable:      editable,
	}
	if parent != nil {
		node.ParentID = stringPtr(parent.ID)
	}
	return s.repo.Upsert(ctx, node)
}
