// Package taxonomy is the single source of truth for risk category
// semantics. The same catalogue drives the model system-prompt and seeds
// the fallback scorer's keyword tables, so the two detection tiers cannot
// drift apart.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity describes how serious a category is when matched on its own.
type Severity string

const (
	SeverityLow        Severity = "low"
	SeverityMedium     Severity = "medium"
	SeverityMediumHigh Severity = "medium-high"
	SeverityHigh       Severity = "high"
)

// Entry describes one risk category.
type Entry struct {
	Category    string   `json:"category" yaml:"category"`
	Description string   `json:"description" yaml:"description"`
	Examples    []string `json:"examples" yaml:"examples"`
	Indicators  []string `json:"indicators" yaml:"indicators"`
	Severity    Severity `json:"severity" yaml:"severity"`
}

// Taxonomy is an ordered, immutable-after-load catalogue of entries.
type Taxonomy struct {
	entries []Entry
}

// Default returns the built-in catalogue. The order is significant: it is
// the order the categories appear in the model prompt.
func Default() *Taxonomy {
	return &Taxonomy{entries: builtinEntries()}
}

func builtinEntries() []Entry {
	return []Entry{
		{
			Category:    "threats",
			Description: "Direct or implied threats to harm, kill, or intimidate",
			Examples: []string{
				"I will find you and hurt you",
				"come for you and kill you",
				"you will regret this",
				"or else you will see",
			},
			Indicators: []string{"violence verbs", "conditional threats", "future intent", "fear language"},
			Severity:   SeverityHigh,
		},
		{
			Category:    "privacy",
			Description: "Doxxing, exposure of photos, blackmail, leaking info",
			Examples: []string{
				"I will share your photos",
				"leak your address",
				"post your pics everywhere",
				"expose you to everyone",
			},
			Indicators: []string{"leak/share/post your", "address/phone/location", "blackmail intent"},
			Severity:   SeverityHigh,
		},
		{
			Category:    "cyberbullying",
			Description: "Insults, humiliation, body/appearance shaming",
			Examples: []string{
				"ugly boy",
				"you are worthless",
				"everyone hates you",
				"disgusting face",
			},
			Indicators: []string{"appearance insults", "worthlessness statements", "pile-on language"},
			Severity:   SeverityHigh,
		},
		{
			Category:    "gbv",
			Description: "Gender-based violence, misogyny, coercive control",
			Examples: []string{
				"because you are a woman",
				"you belong to me",
				"obey or else",
				"women should be quiet",
			},
			Indicators: []string{"gendered slurs", "control/ownership", "submission demands"},
			Severity:   SeverityHigh,
		},
		{
			Category:    "stalking",
			Description: "Following, tracking, unwanted pursuit or surveillance",
			Examples: []string{
				"I know where you live",
				"I am outside your house",
				"I will follow you",
				"tracking your location",
			},
			Indicators: []string{"location tracking", "following behavior", "persistent pursuit"},
			Severity:   SeverityHigh,
		},
		{
			Category:    "manipulation",
			Description: "Coercion, blackmail without explicit threat, emotional control",
			Examples: []string{
				"send me pics or else",
				"do this and I won't leak it",
				"you imagined it, that never happened",
			},
			Indicators: []string{"conditional demands", "emotional coercion", "distortion of reality"},
			Severity:   SeverityMediumHigh,
		},
	}
}

// Entries returns the catalogue in prompt order. Callers must not mutate
// the returned slice.
func (t *Taxonomy) Entries() []Entry {
	return t.entries
}

// Lookup returns the entry for a category, if present.
func (t *Taxonomy) Lookup(category string) (Entry, bool) {
	for _, e := range t.entries {
		if e.Category == category {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int { return len(t.entries) }

// PromptJSON renders the catalogue as indented JSON for embedding in the
// model system-prompt. Categories appear in catalogue order, not the
// alphabetical order a marshalled map would impose.
func (t *Taxonomy) PromptJSON() string {
	var b strings.Builder
	b.WriteString("{")
	for i, e := range t.entries {
		if i > 0 {
			b.WriteString(",")
		}
		key, err := json.Marshal(e.Category)
		if err != nil {
			return "{}"
		}
		val, err := json.MarshalIndent(e, "  ", "  ")
		if err != nil {
			// The catalogue contains only plain strings; marshal cannot
			// fail for the built-in entries. Seed files are validated at
			// load.
			return "{}"
		}
		b.WriteString("\n  ")
		b.Write(key)
		b.WriteString(": ")
		b.Write(val)
	}
	b.WriteString("\n}")
	return b.String()
}

// seedFile is the YAML shape of an external taxonomy seed file.
type seedFile struct {
	Entries []Entry `yaml:"entries"`
}

// LoadSeeds reads a YAML seed file and merges it into the catalogue.
// Entries with a known category replace the built-in entry; unknown
// categories are appended in file order. Returns a new Taxonomy; the
// receiver is not modified.
func (t *Taxonomy) LoadSeeds(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy seeds: %w", err)
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse taxonomy seeds: %w", err)
	}

	merged := make([]Entry, len(t.entries))
	copy(merged, t.entries)

	for _, e := range sf.Entries {
		if e.Category == "" {
			return nil, fmt.Errorf("taxonomy seed entry missing category")
		}
		if e.Severity == "" {
			e.Severity = SeverityMedium
		}
		replaced := false
		for i := range merged {
			if merged[i].Category == e.Category {
				merged[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, e)
		}
	}

	return &Taxonomy{entries: merged}, nil
}
