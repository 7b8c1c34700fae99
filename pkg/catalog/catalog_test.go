package catalog

import (
	"sort"
	"testing"

	"cubenote/pkg/domain"
)

func TestLookupKnownAndUnknown(t *testing.T) {
	ing, ok := Lookup("rice")
	if !ok {
		t.Fatalf("rice must be in the catalog")
	}
	if ing.ID != "rice" || ing.Category != domain.CategoryGrain || ing.NameKo == "" {
		t.Fatalf("unexpected descriptor: %+v", ing)
	}

	if _, ok := Lookup("pasta"); ok {
		t.Fatalf("pasta must not be in the catalog")
	}
	if _, ok := Lookup(""); ok {
		t.Fatalf("empty id must not resolve")
	}
}

func TestIDsSortedAndComplete(t *testing.T) {
	ids := IDs()
	if len(ids) != Len() {
		t.Fatalf("IDs() returned %d of %d entries", len(ids), Len())
	}
	if !sort.StringsAreSorted(ids) {
		t.Fatalf("IDs() must be sorted: %v", ids)
	}
	for _, id := range ids {
		ing, ok := Lookup(id)
		if !ok || ing.ID != id {
			t.Fatalf("id %q does not round-trip through Lookup", id)
		}
	}
}

func TestByCategoryPartitionsCatalog(t *testing.T) {
	categories := []domain.IngredientCategory{
		domain.CategoryGrain,
		domain.CategoryVeggie,
		domain.CategoryMeat,
		domain.CategoryFruit,
		domain.CategoryDairy,
	}
	total := 0
	for _, cat := range categories {
		entries := ByCategory(cat)
		for _, ing := range entries {
			if ing.Category != cat {
				t.Fatalf("%s listed under %s", ing.ID, cat)
			}
		}
		total += len(entries)
	}
	if total != Len() {
		t.Fatalf("categories cover %d of %d ingredients", total, Len())
	}
	if len(ByCategory(domain.IngredientCategory("candy"))) != 0 {
		t.Fatalf("unknown category must be empty")
	}
}
