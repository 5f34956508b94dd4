package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-directory/internal/locations"
	"github.com/goliatone/go-directory/internal/logging"
	"github.com/goliatone/go-directory/internal/sections"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

// Service resolves location ids to canonical slugs and reads or writes the
// content stored under them.
type Service interface {
	// Save ensures the location, resolves its canonical slug, merges req
	// over the template scaffold and upserts the record.
	Save(ctx context.Context, locationID string, req SaveRequest) (*Record, error)
	// Load returns the content of a location. Unknown ids and missing
	// content are empty results, not errors.
	Load(ctx context.Context, locationID string) (LoadResult, error)
	// LoadByCanonical serves public reads and may use the read cache.
	LoadByCanonical(ctx context.Context, canonical string) (LoadResult, error)
	// Relocate changes the slug of a location and re-keys the canonical
	// slugs and content of the location and all its descendants.
	Relocate(ctx context.Context, locationID, newSlug string) (RelocateResult, error)
}

// IDGenerator produces content record ids.
type IDGenerator func() uuid.UUID

// ServiceOption configures the content service.
type ServiceOption func(*service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithRelocator enables Relocate.
func WithRelocator(relocator Relocator) ServiceOption {
	return func(s *service) {
		s.relocator = relocator
	}
}

// WithDefaultCountry sets the country slug used when a save cannot load the
// ancestor chain and the request names no country.
func WithDefaultCountry(country string) ServiceOption {
	return func(s *service) {
		if country = strings.TrimSpace(country); country != "" {
			s.defaultCountry = country
		}
	}
}

type service struct {
	locations      locations.Service
	records        Repository
	relocator      Relocator
	logger         interfaces.Logger
	now            func() time.Time
	id             IDGenerator
	defaultCountry string
}

// NewService wires the content engine over the location service and a record repository.
func NewService(locs locations.Service, records Repository, opts ...ServiceOption) Service {
	s := &service{
		locations:      locs,
		records:        records,
		logger:         logging.NoOp(),
		now:            time.Now,
		id:             uuid.New,
		defaultCountry: "england",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Save(ctx context.Context, locationID string, req SaveRequest) (*Record, error) {
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		return nil, ErrLocationIDRequired
	}

	node, err := s.locations.Ensure(ctx, locationID, locations.Hints{
		Name:     req.Title,
		Slug:     req.Slug,
		Type:     req.Type,
		Editable: req.Editable,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure location %s: %w", locationID, err)
	}

	canonical, err := s.canonicalForSave(ctx, node, req)
	if err != nil {
		return nil, err
	}
	logger := logging.WithLocation(s.logger, node.ID, canonical)

	templateType := string(node.Type)
	record := &Record{
		ID:            s.id(),
		CanonicalSlug: canonical,
		TemplateType:  &templateType,
		Content: sections.Document{
			Sections: sections.Merge(sections.Scaffold(templateType, node.Name), req.Sections, decodeHero(req.Hero)),
		},
		UpdatedAt: s.now().UTC(),
	}
	saved, err := s.records.Upsert(ctx, record)
	if err != nil {
		logger.Error("content.save.failed", "error", err)
		return nil, err
	}

	if node.Canonical() != canonical {
		if err := s.locations.SetCanonicalSlug(ctx, node.ID, canonical); err != nil {
			logger.Warn("content.save.secondary_write_failed", "error", err)
		}
	}

	logger.Info("content.saved", "template_type", templateType, "sections", len(saved.Content.Sections))
	return saved, nil
}

// canonicalForSave prefers the stored canonical slug, then the full ancestor
// chain, then the shallowest form built from the request hints.
func (s *service) canonicalForSave(ctx context.Context, node *locations.Node, req SaveRequest) (string, error) {
	if canonical := node.Canonical(); canonical != "" {
		return canonical, nil
	}
	canonical, err := s.locations.Derive(ctx, node)
	if err == nil {
		return canonical, nil
	}
	if !unresolved(err) {
		return "", err
	}

	deriver := s.locations.Deriver()
	if node.Type == locations.TypeCountry {
		return deriver.Join(node.Slug), nil
	}
	country := hintSlug(req.Country)
	if country == "" {
		country = s.defaultCountry
	}
	segments := []string{country}
	if node.Type == locations.TypeCity {
		segments = append(segments, hintSlug(req.Region))
	}
	canonical = deriver.Join(append(segments, node.Slug)...)
	s.logger.Warn("content.save.canonical_shallow",
		"location_id", node.ID,
		"canonical_slug", canonical,
		"reason", err.Error(),
	)

	// A shallow city can land on a region's path; that record belongs to
	// the other location.
	owner, lookupErr := s.locations.GetByCanonical(ctx, canonical)
	switch {
	case lookupErr == nil && owner.ID != node.ID:
		s.logger.Warn("content.save.canonical_collision",
			"location_id", node.ID,
			"canonical_slug", canonical,
			"owner_location_id", owner.ID,
		)
		return "", fmt.Errorf("%w: %s is owned by %s", ErrCanonicalSlugTaken, canonical, owner.ID)
	case lookupErr != nil && !locations.IsNotFound(lookupErr):
		return "", lookupErr
	}
	return canonical, nil
}

func (s *service) Load(ctx context.Context, locationID string) (LoadResult, error) {
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		return LoadResult{}, ErrLocationIDRequired
	}

	node, err := s.locations.Get(ctx, locationID)
	if err != nil {
		if locations.IsNotFound(err) {
			return LoadResult{}, nil
		}
		return LoadResult{}, err
	}

	result := LoadResult{Location: node}
	canonical := node.Canonical()
	if canonical == "" {
		derived, err := s.locations.Derive(ctx, node)
		if err != nil {
			if unresolved(err) {
				s.logger.Debug("content.load.canonical_unresolved", "location_id", node.ID, "reason", err.Error())
				return result, nil
			}
			return LoadResult{}, err
		}
		canonical = derived
	}
	result.CanonicalSlug = canonical

	record, err := s.records.GetByCanonicalSlug(ctx, canonical)
	if err != nil {
		if IsNotFound(err) {
			return result, nil
		}
		return LoadResult{}, err
	}
	result.Record = record
	return result, nil
}

func (s *service) LoadByCanonical(ctx context.Context, canonical string) (LoadResult, error) {
	canonical = strings.TrimRight(strings.TrimSpace(canonical), "/")
	if _, ok := s.locations.Deriver().Segments(canonical); !ok {
		return LoadResult{}, nil
	}
	result := LoadResult{CanonicalSlug: canonical}
	record, err := s.records.Lookup(ctx, canonical)
	if err != nil {
		if IsNotFound(err) {
			return result, nil
		}
		return LoadResult{}, err
	}
	result.Record = record
	return result, nil
}

func (s *service) Relocate(ctx context.Context, locationID, newSlug string) (RelocateResult, error) {
	if s.relocator == nil {
		return RelocateResult{}, ErrRelocatorUnavailable
	}
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		return RelocateResult{}, ErrLocationIDRequired
	}
	normalized, err := locations.NormalizeSlug(newSlug)
	if err != nil {
		return RelocateResult{}, err
	}
	node, err := s.locations.Get(ctx, locationID)
	if err != nil {
		return RelocateResult{}, err
	}

	plan, err := s.plan(ctx, node, normalized)
	if err != nil {
		return RelocateResult{}, err
	}
	if normalized == node.Slug && !plan.changes() {
		return RelocateResult{Location: node, Moves: []Move{}}, nil
	}
	if err := s.relocator.Apply(ctx, plan); err != nil {
		s.logger.Warn("content.relocate.rejected", "location_id", node.ID, "slug", normalized, "error", err)
		return RelocateResult{}, err
	}

	moved, err := s.locations.Get(ctx, locationID)
	if err != nil {
		return RelocateResult{}, err
	}
	s.logger.Info("content.relocated", "location_id", node.ID, "slug", normalized, "moves", len(plan.Moves))
	return RelocateResult{Location: moved, Moves: plan.Moves}, nil
}

// plan computes the new canonical slug of node and of every descendant.
func (s *service) plan(ctx context.Context, node *locations.Node, newSlug string) (RelocationPlan, error) {
	deriver := s.locations.Deriver()
	parentCanonical, err := s.parentCanonical(ctx, node)
	if err != nil {
		return RelocationPlan{}, err
	}

	oldCanonical := node.Canonical()
	var newCanonical string
	if node.Type == locations.TypeCountry {
		newCanonical = deriver.Join(newSlug)
		if oldCanonical == "" {
			oldCanonical = deriver.Join(node.Slug)
		}
	} else {
		if newCanonical, err = deriver.Child(parentCanonical, newSlug); err != nil {
			return RelocationPlan{}, err
		}
		if oldCanonical == "" {
			oldCanonical, _ = deriver.Child(parentCanonical, node.Slug)
		}
	}

	plan := RelocationPlan{
		LocationID: node.ID,
		ParentID:   node.Parent(),
		Slug:       newSlug,
		Moves:      []Move{{LocationID: node.ID, From: oldCanonical, To: newCanonical}},
	}

	descendants, err := s.locations.Descendants(ctx, node.ID)
	if err != nil {
		return RelocationPlan{}, err
	}
	oldPaths := map[string]string{node.ID: oldCanonical}
	newPaths := map[string]string{node.ID: newCanonical}
	for _, child := range descendants {
		to, err := deriver.Child(newPaths[child.Parent()], child.Slug)
		if err != nil {
			return RelocationPlan{}, fmt.Errorf("relocate descendant %s: %w", child.ID, err)
		}
		from := child.Canonical()
		if from == "" {
			from, _ = deriver.Child(oldPaths[child.Parent()], child.Slug)
		}
		oldPaths[child.ID] = from
		newPaths[child.ID] = to
		plan.Moves = append(plan.Moves, Move{LocationID: child.ID, From: from, To: to})
	}
	return plan, nil
}

// parentCanonical returns the canonical slug of the parent of node from the
// ancestor chain, or from the stored canonical slug when the chain is broken.
func (s *service) parentCanonical(ctx context.Context, node *locations.Node) (string, error) {
	deriver := s.locations.Deriver()
	if node.Type == locations.TypeCountry {
		return deriver.Prefix(), nil
	}
	ancestors, err := s.locations.Ancestors(ctx, node)
	if err == nil {
		segments := make([]string, 0, len(ancestors))
		for _, ancestor := range ancestors {
			segments = append(segments, ancestor.Slug)
		}
		return deriver.Join(segments...), nil
	}
	if !unresolved(err) {
		return "", err
	}
	// A stored shallow slug has fewer segments than the type implies; its
	// parent is still the slug without the last segment.
	if segments, ok := deriver.Segments(node.Canonical()); ok && len(segments) >= 2 && len(segments) <= node.Type.Depth() {
		return deriver.Join(segments[:len(segments)-1]...), nil
	}
	return "", fmt.Errorf("%w: %s: %v", ErrCanonicalUnresolved, node.ID, err)
}

func (p RelocationPlan) changes() bool {
	for _, move := range p.Moves {
		if move.From != move.To {
			return true
		}
	}
	return false
}

// unresolved reports errors that mean the ancestor chain cannot produce a
// canonical slug, as opposed to storage faults.
func unresolved(err error) bool {
	return errors.Is(err, locations.ErrAncestorMissing) ||
		errors.Is(err, locations.ErrAncestorMismatch) ||
		errors.Is(err, locations.ErrTypeUnknown) ||
		errors.Is(err, locations.ErrSlugInvalid)
}

func hintSlug(value string) string {
	normalized, err := locations.NormalizeSlug(value)
	if err != nil {
		return ""
	}
	return normalized
}

func decodeHero(raw []byte) sections.Payload {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return sections.DecodeData(sections.TypeHero, trimmed)
}
