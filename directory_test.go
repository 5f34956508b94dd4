package directory_test

import (
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-directory"
	"github.com/goliatone/go-directory/internal/di"
	"github.com/goliatone/go-directory/pkg/testsupport"
)

func TestConfigValidateRequiresDSNForSQLite(t *testing.T) {
	cfg := directory.DefaultConfig()
	cfg.Storage.Provider = "sqlite"
	if err := cfg.Validate(); !errors.Is(err, directory.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestConfigValidateCacheFeatureNeedsCache(t *testing.T) {
	cfg := directory.DefaultConfig()
	cfg.Features.Cache = true
	if err := cfg.Validate(); !errors.Is(err, directory.ErrCacheFeatureRequired) {
		t.Fatalf("expected ErrCacheFeatureRequired, got %v", err)
	}
}

func TestMigrateRequiresDatabase(t *testing.T) {
	module, err := directory.New(context.Background(), directory.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := module.Migrate(context.Background()); !errors.Is(err, directory.ErrNoDatabase) {
		t.Fatalf("expected ErrNoDatabase, got %v", err)
	}
}

func TestModuleServesPublicPages(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunSQLite(t)
	module, err := directory.New(ctx, directory.DefaultConfig(), di.WithBunDB(db))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ran, err := module.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if len(ran) != 2 {
		t.Fatalf("expected two migrations, got %v", ran)
	}

	if err := module.RegisterSection("testimonial", func(_ context.Context, s directory.Section) (template.HTML, error) {
		return `<blockquote class="testimonial">carer story</blockquote>`, nil
	}); err != nil {
		t.Fatalf("RegisterSection: %v", err)
	}

	_, err = module.Content().Save(ctx, "country-1", directory.SaveRequest{
		Title: "Scotland",
		Type:  "country",
		Sections: []directory.Section{
			{Key: "story", Type: "testimonial"},
		},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	handler, err := module.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	server := httptest.NewServer(handler)
	defer server.Close()

	resp, err := http.Get(server.URL + "/foster-agency/scotland")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `class="testimonial"`) {
		t.Fatalf("unexpected response %d: %s", resp.StatusCode, body)
	}

	content, err := http.Get(server.URL + "/locations/country-1/content")
	if err != nil {
		t.Fatalf("GET content: %v", err)
	}
	content.Body.Close()
	if content.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from content api, got %d", content.StatusCode)
	}
}
