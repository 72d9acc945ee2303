package patterns

import (
	"strings"
	"sync"
	"testing"
)

func TestGetSingleton(t *testing.T) {
	r1 := Get()
	r2 := Get()
	if r1 != r2 {
		t.Error("Get() should return the same registry instance")
	}
}

func TestGetConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]*Registry, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = Get()
		}(i)
	}
	wg.Wait()
	for i := 1; i < 16; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent Get() returned different instances")
		}
	}
}

func TestSweepOrder(t *testing.T) {
	want := []Category{
		CategoryViolence,
		CategoryIndirectThreat,
		CategoryCyberbullying,
		CategoryGBV,
		CategoryThreatRegex,
		CategoryStalking,
		CategoryTechAbuse,
		CategoryDoxxing,
		CategorySexualHarassment,
		CategoryCoerciveControl,
		CategoryIdentityAbuse,
		CategoryElderAbuse,
		CategoryChildThreat,
		CategorySymbolic,
		CategoryPrivacy,
		CategoryMediumRisk,
	}
	groups := Get().Groups()
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i, g := range groups {
		if g.Category != want[i] {
			t.Errorf("group %d: expected %s, got %s", i, want[i], g.Category)
		}
	}
}

func TestGetByCategory(t *testing.T) {
	r := Get()
	g := r.GetByCategory(CategoryGBV)
	if g == nil {
		t.Fatal("expected gbv group to exist")
	}
	if g.Label != "Gender-based content" {
		t.Errorf("unexpected label: %s", g.Label)
	}
	if r.GetByCategory(Category("nonexistent")) != nil {
		t.Error("expected nil for unknown category")
	}
}

func TestSubjectContains(t *testing.T) {
	tests := []struct {
		name    string
		forms   []string
		keyword string
		want    bool
	}{
		{"direct substring", []string{"i will kill you"}, "kill", true},
		{"collapsed keyword form", []string{"shareyourphotos now"}, "share your photos", true},
		{"match in any variant", []string{"sh are", "share your pic"}, "share your pic", true},
		{"absent", []string{"have a nice day"}, "kill", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Subject{Raw: tt.forms[0], Forms: tt.forms}
			if got := s.Contains(tt.keyword); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.keyword, got, tt.want)
			}
		})
	}
}

func TestMatchKeywordsCollectsAll(t *testing.T) {
	g := Get().GetByCategory(CategoryGBV)
	s := Subject{
		Raw:   "you belong to me, obey",
		Forms: []string{"you belong to me, obey"},
	}
	matched := g.MatchKeywords(s)
	if len(matched) < 2 {
		t.Fatalf("expected at least 2 gbv matches, got %v", matched)
	}
	var sawObey, sawBelong bool
	for _, kw := range matched {
		if kw == "obey" {
			sawObey = true
		}
		if kw == "you belong to" {
			sawBelong = true
		}
	}
	if !sawObey || !sawBelong {
		t.Errorf("expected both \"obey\" and \"you belong to\", got %v", matched)
	}
}

func TestShortCircuitGroups(t *testing.T) {
	g := Get().GetByCategory(CategoryPrivacy)
	if !g.ShortCircuit {
		t.Fatal("privacy group should short-circuit")
	}
	s := Subject{
		Raw:   "your location and phone number",
		Forms: []string{"your location and phone number"},
	}
	matched := g.MatchKeywords(s)
	if len(matched) != 1 {
		t.Errorf("short-circuit group should stop at first match, got %v", matched)
	}
}

func TestSymbolicGroupMatchesRawOnly(t *testing.T) {
	g := Get().GetByCategory(CategorySymbolic)
	if !g.RawOnly {
		t.Fatal("symbolic group should match raw text")
	}
	s := Subject{
		Raw:   "see you soon 🔪",
		Forms: []string{"see you soon"},
	}
	if got := g.MatchKeywords(s); len(got) != 1 {
		t.Errorf("expected one emoji match, got %v", got)
	}
	s2 := Subject{Raw: "see you soon", Forms: []string{"see you soon 🔪"}}
	if got := g.MatchKeywords(s2); len(got) != 0 {
		t.Errorf("raw-only group must ignore normalized forms, got %v", got)
	}
}

func TestThreatRegexes(t *testing.T) {
	g := Get().GetByCategory(CategoryThreatRegex)
	tests := []struct {
		text string
		want bool
	}{
		{"if you don't reply you will regret it", true},
		{"I will share your photos", true},
		{"send me or else", true},
		{"we will come for you and hurt you", true},
		{"looking forward to the party", false},
	}
	for _, tt := range tests {
		s := Subject{Raw: tt.text, Forms: []string{strings.ToLower(tt.text)}}
		got := len(g.MatchRegexes(s)) > 0
		if got != tt.want {
			t.Errorf("regex match on %q = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestTotalKeywords(t *testing.T) {
	if n := Get().TotalKeywords(); n < 150 {
		t.Errorf("expected a substantial keyword table, got %d", n)
	}
}
