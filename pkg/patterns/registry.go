// Package patterns provides a centralized keyword and regex registry for
// risk detection. All groups are registered once at package init and shared
// by every fallback scan.
//
// Design principles:
// - COMPILE ONCE: regexes compiled at init, not per-request
// - DRY: single source of truth for all fallback keyword tables
// - ORDERED: groups are swept in registration order; escalation policy
//   applied by the caller depends on that order
package patterns

import (
	"regexp"
	"strings"
	"sync"
)

// Category identifies a risk keyword group.
type Category string

const (
	CategoryViolence         Category = "violence"           // immediate threats, weapons
	CategoryIndirectThreat   Category = "indirect_threat"    // exposure threats, intimidation
	CategoryCyberbullying    Category = "cyberbullying"      // insults, appearance shaming
	CategoryGBV              Category = "gbv"                // misogyny, power harassment
	CategoryThreatRegex      Category = "threat_regex"       // conditional-threat patterns
	CategoryStalking         Category = "stalking"           // tracking, pursuit, monitoring
	CategoryTechAbuse        Category = "tech_abuse"         // spyware, deepfakes, account takeover
	CategoryDoxxing          Category = "doxxing"            // leaks, sextortion
	CategorySexualHarassment Category = "sexual_harassment"  //
	CategoryCoerciveControl  Category = "coercive_control"   // gaslighting, financial control
	CategoryIdentityAbuse    Category = "identity_abuse"     // outing, medical-status threats
	CategoryElderAbuse       Category = "elder_abuse"        //
	CategoryChildThreat      Category = "child_threat"       //
	CategorySymbolic         Category = "symbolic"           // weapon emoji, raw-text match
	CategoryPrivacy          Category = "privacy"            // generic privacy keywords
	CategoryMediumRisk       Category = "medium_risk"        // generic concerning language
)

// RegexPattern holds a compiled regex with a human-readable description
// used verbatim in indicator strings.
type RegexPattern struct {
	Regex       *regexp.Regexp
	Description string
}

// Group is one swept keyword/regex list.
type Group struct {
	Category Category
	Label    string // indicator prefix, e.g. `Cyberbullying detected: "ugly"`
	Keywords []string
	Regexes  []RegexPattern

	// RawOnly groups match against the raw input text instead of the
	// normalized variants. Used for emoji/symbol keywords, which the
	// ASCII de-obfuscation step would otherwise never see.
	RawOnly bool

	// ShortCircuit groups stop at the first matching keyword. Used for
	// the trailing generic lists, which only ever contribute a single
	// indicator.
	ShortCircuit bool
}

// Subject is one input text prepared for matching: the raw form plus the
// normalized variants (lowercase, whitespace-collapsed, de-obfuscated).
type Subject struct {
	Raw   string
	Forms []string
}

// Contains reports whether the keyword (or its whitespace-collapsed form)
// appears as a substring of any normalized variant.
func (s Subject) Contains(keyword string) bool {
	collapsed := strings.ReplaceAll(keyword, " ", "")
	for _, f := range s.Forms {
		if strings.Contains(f, keyword) {
			return true
		}
		if collapsed != keyword && strings.Contains(f, collapsed) {
			return true
		}
	}
	return false
}

// MatchKeywords returns the group's keywords present in the subject, in
// list order. RawOnly groups are matched against the raw text; everything
// else against the normalized variants.
func (g *Group) MatchKeywords(s Subject) []string {
	var matched []string
	for _, kw := range g.Keywords {
		var hit bool
		if g.RawOnly {
			hit = strings.Contains(s.Raw, kw)
		} else {
			hit = s.Contains(kw)
		}
		if hit {
			matched = append(matched, kw)
			if g.ShortCircuit {
				break
			}
		}
	}
	return matched
}

// MatchRegexes returns the descriptions of the group's regexes that match
// the raw text, in list order.
func (g *Group) MatchRegexes(s Subject) []string {
	var matched []string
	for _, rp := range g.Regexes {
		if rp.Regex.MatchString(s.Raw) {
			matched = append(matched, rp.Description)
			if g.ShortCircuit {
				break
			}
		}
	}
	return matched
}

// Registry holds all groups in sweep order.
type Registry struct {
	groups     []*Group
	byCategory map[Category]*Group
}

var (
	globalRegistry *Registry
	initOnce       sync.Once
)

// Get returns the global pattern registry (singleton).
// Thread-safe and guaranteed to be initialized.
func Get() *Registry {
	initOnce.Do(func() {
		globalRegistry = newRegistry()
	})
	return globalRegistry
}

func newRegistry() *Registry {
	r := &Registry{
		byCategory: make(map[Category]*Group, 16),
	}

	// Registration order is the sweep order. Do not reorder: the
	// escalation rules in the fallback scorer depend on threats being
	// seen before the generic trailing lists.
	r.registerViolenceGroup()
	r.registerIndirectThreatGroup()
	r.registerCyberbullyingGroup()
	r.registerGBVGroup()
	r.registerThreatRegexGroup()
	r.registerStalkingGroup()
	r.registerTechAbuseGroup()
	r.registerDoxxingGroup()
	r.registerSexualHarassmentGroup()
	r.registerCoerciveControlGroup()
	r.registerIdentityAbuseGroup()
	r.registerElderAbuseGroup()
	r.registerChildThreatGroup()
	r.registerSymbolicGroup()
	r.registerPrivacyGroup()
	r.registerMediumRiskGroup()

	return r
}

// register adds a group to the registry (internal use only)
func (r *Registry) register(g *Group) {
	r.groups = append(r.groups, g)
	r.byCategory[g.Category] = g
}

// Groups returns all groups in sweep order.
func (r *Registry) Groups() []*Group {
	return r.groups
}

// GetByCategory returns the group for a category, or nil.
func (r *Registry) GetByCategory(cat Category) *Group {
	return r.byCategory[cat]
}

// TotalKeywords returns the total count of registered keywords.
func (r *Registry) TotalKeywords() int {
	n := 0
	for _, g := range r.groups {
		n += len(g.Keywords)
	}
	return n
}
