package taxonomy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalogue(t *testing.T) {
	tax := Default()
	if tax.Len() != 6 {
		t.Fatalf("Len = %d, want 6", tax.Len())
	}

	want := []string{"threats", "privacy", "cyberbullying", "gbv", "stalking", "manipulation"}
	for i, e := range tax.Entries() {
		if e.Category != want[i] {
			t.Errorf("entry %d = %s, want %s", i, e.Category, want[i])
		}
		if e.Description == "" || len(e.Examples) == 0 || len(e.Indicators) == 0 {
			t.Errorf("entry %s is incomplete: %+v", e.Category, e)
		}
		if e.Severity == "" {
			t.Errorf("entry %s missing severity", e.Category)
		}
	}
}

func TestLookup(t *testing.T) {
	tax := Default()

	e, ok := tax.Lookup("stalking")
	if !ok || e.Category != "stalking" {
		t.Errorf("Lookup(stalking) = %+v, %v", e, ok)
	}
	if e.Severity != SeverityHigh {
		t.Errorf("stalking severity = %s", e.Severity)
	}

	if _, ok := tax.Lookup("nonexistent"); ok {
		t.Error("Lookup found a category that does not exist")
	}
}

func TestPromptJSON(t *testing.T) {
	raw := Default().PromptJSON()

	var decoded map[string]Entry
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("PromptJSON is not valid JSON: %v", err)
	}
	if len(decoded) != 6 {
		t.Errorf("decoded %d categories, want 6", len(decoded))
	}
	if decoded["manipulation"].Severity != SeverityMediumHigh {
		t.Errorf("manipulation severity = %s", decoded["manipulation"].Severity)
	}
}

func TestPromptJSONPreservesCatalogueOrder(t *testing.T) {
	raw := Default().PromptJSON()

	prev := -1
	for _, e := range Default().Entries() {
		pos := strings.Index(raw, `"`+e.Category+`":`)
		if pos == -1 {
			t.Fatalf("category %s missing from prompt JSON", e.Category)
		}
		if pos <= prev {
			t.Errorf("category %s out of catalogue order", e.Category)
		}
		prev = pos
	}
}

func TestLoadSeedsReplaceAndAppend(t *testing.T) {
	seed := `entries:
  - category: threats
    description: Replaced threat entry
    examples:
      - custom example
    indicators:
      - custom indicator
    severity: high
  - category: financial_abuse
    description: Pressure over money or accounts
    examples:
      - give me your password
    indicators:
      - credential demands
`
	path := filepath.Join(t.TempDir(), "seeds.yaml")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	base := Default()
	merged, err := base.LoadSeeds(path)
	if err != nil {
		t.Fatalf("LoadSeeds: %v", err)
	}

	if merged.Len() != 7 {
		t.Errorf("merged Len = %d, want 7", merged.Len())
	}

	e, ok := merged.Lookup("threats")
	if !ok || e.Description != "Replaced threat entry" {
		t.Errorf("threats not replaced: %+v", e)
	}

	e, ok = merged.Lookup("financial_abuse")
	if !ok {
		t.Fatal("appended category missing")
	}
	if e.Severity != SeverityMedium {
		t.Errorf("appended severity = %s, want medium default", e.Severity)
	}

	// The receiver is unchanged.
	if base.Len() != 6 {
		t.Errorf("base mutated: Len = %d", base.Len())
	}
	if e, _ := base.Lookup("threats"); e.Description == "Replaced threat entry" {
		t.Error("base entry mutated by merge")
	}
}

func TestLoadSeedsMissingCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.yaml")
	if err := os.WriteFile(path, []byte("entries:\n  - description: no category\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Default().LoadSeeds(path); err == nil {
		t.Error("expected error for entry without category")
	}
}

func TestLoadSeedsMissingFile(t *testing.T) {
	if _, err := Default().LoadSeeds(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
