package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vladislavdragonenkov/houseit/internal/catalog"
)

func TestDefault_Categories(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}

	categories := cat.Categories()
	if len(categories) != 7 {
		t.Fatalf("expected 7 categories, got %d", len(categories))
	}
	if categories[0].Key != "electrician" {
		t.Fatalf("expected electrician first, got %s", categories[0].Key)
	}
}

func TestProviders_UnknownCategory(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}

	providers := cat.Providers("gardening")
	if providers == nil {
		t.Fatal("expected empty slice for unknown category, got nil")
	}
	if len(providers) != 0 {
		t.Fatalf("expected no providers, got %d", len(providers))
	}
}

func TestProvider_Lookup(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}

	provider, ok := cat.Provider("electrician", 1)
	if !ok {
		t.Fatal("expected provider electrician/1")
	}
	if provider.Name != "Lightning Electric Co." {
		t.Fatalf("unexpected provider name %q", provider.Name)
	}
	if len(provider.Services) != 5 {
		t.Fatalf("expected 5 services, got %d", len(provider.Services))
	}

	if _, ok := cat.Provider("electrician", 42); ok {
		t.Fatal("did not expect provider electrician/42")
	}
}

func TestItem_Lookup(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}

	item, ok := cat.Item("plumbing", 1, 2)
	if !ok {
		t.Fatal("expected item plumbing/1/2")
	}
	if item.Name != "Drain Cleaning" || item.PriceMinor != 9500 {
		t.Fatalf("unexpected item %+v", item)
	}

	if _, ok := cat.Item("plumbing", 2, 1); ok {
		t.Fatal("provider without price list must not resolve items")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	doc := `{"categories":[{"key":"cleaning","name":"Cleaning"}],"providers":{"cleaning":[{"id":1,"name":"Sparkle","services":[{"id":1,"name":"Deep Clean","price_minor":5000}]}]}}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	if _, ok := cat.Provider("cleaning", 1); !ok {
		t.Fatal("expected provider cleaning/1 from file config")
	}
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := catalog.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
