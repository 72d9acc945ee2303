package analyzer

import (
	"fmt"
	"strings"

	"github.com/safespace-labs/safespace/pkg/patterns"
)

// Fixed confidence levels for keyword-derived verdicts. The keyword tier
// has no probabilistic signal, so confidence encodes only matched-vs-not.
const (
	fallbackRiskyConfidence = 0.7
	fallbackSafeConfidence  = 0.3
)

const (
	explanationRisky = "Potential safety concern detected through keyword analysis"
	explanationSafe  = "No obvious safety concerns detected"

	recommendBlockNow   = "Block this account immediately and report the content"
	recommendConsider   = "Consider blocking this account and reporting the content"
	recommendBeCautious = "Be cautious and consider hiding this content"
)

// Scorer is the deterministic keyword/pattern tier. It is pure and
// stateless: identical input always yields an identical verdict, and it is
// safe to call concurrently.
type Scorer struct {
	registry *patterns.Registry
}

// NewScorer returns a scorer over the shared pattern registry.
func NewScorer() *Scorer {
	return &Scorer{registry: patterns.Get()}
}

// Score classifies text using keyword tables and threat regexes alone.
// Categories are swept in priority order and every match appends an
// indicator; severity only ever escalates within one pass.
func (s *Scorer) Score(text string, ctx AnalysisContext) RiskVerdict {
	if strings.TrimSpace(text) == "" {
		return safeVerdict(ctx.IsComment)
	}

	subject := prepareSubject(text)

	v := RiskVerdict{
		RiskLevel:  RiskSafe,
		Indicators: []string{},
		IsComment:  ctx.IsComment,
	}

	for _, g := range s.registry.Groups() {
		s.applyGroup(&v, g, subject)
	}

	if v.RiskLevel != RiskSafe {
		v.Confidence = fallbackRiskyConfidence
		v.Explanation = explanationRisky
	} else {
		v.Confidence = fallbackSafeConfidence
		v.Explanation = explanationSafe
	}
	v.Recommendation = recommendation(v.RiskLevel, v.SuggestBlock)

	enforceInvariant(&v)
	return v
}

// applyGroup runs one category's matches through its escalation rule.
// Matches are never mutually exclusive across categories; a single text
// accumulates indicators from every category it trips.
func (s *Scorer) applyGroup(v *RiskVerdict, g *patterns.Group, subject patterns.Subject) {
	// The trailing generic lists only run when nothing else fired.
	if g.ShortCircuit && g.Category != patterns.CategoryThreatRegex && v.RiskLevel != RiskSafe {
		return
	}

	for _, kw := range g.MatchKeywords(subject) {
		s.escalate(v, g.Category)
		v.Indicators = append(v.Indicators, fmt.Sprintf("%s: %q", g.Label, kw))
	}
	for _, desc := range g.MatchRegexes(subject) {
		s.escalate(v, g.Category)
		v.Indicators = append(v.Indicators, desc)
	}
}

// escalate applies one category hit to the running verdict. Rules differ
// per category; none of them lowers an established level except the elder
// rule in the source material, which is kept monotonic here.
func (s *Scorer) escalate(v *RiskVerdict, cat patterns.Category) {
	switch cat {
	case patterns.CategoryViolence, patterns.CategoryIndirectThreat, patterns.CategoryStalking:
		// Always wins over anything lower.
		v.RiskLevel = RiskHigh
		v.RiskType = RiskTypeThreat
		v.SuggestBlock = true

	case patterns.CategoryCyberbullying:
		if v.RiskLevel == RiskSafe {
			v.RiskLevel = RiskHigh
			v.RiskType = RiskTypeHarassment
		}
		v.SuggestBlock = true

	case patterns.CategoryGBV:
		switch v.RiskLevel {
		case RiskSafe:
			v.RiskLevel = RiskMedium
			v.RiskType = RiskTypeHarassment
		case RiskMedium:
			// Two medium-severity signals together escalate.
			v.RiskLevel = RiskHigh
		}

	case patterns.CategoryThreatRegex:
		if v.RiskLevel == RiskSafe || v.RiskLevel == RiskLow {
			v.RiskLevel = RiskHigh
			v.RiskType = RiskTypeThreat
		}
		v.SuggestBlock = true

	case patterns.CategoryTechAbuse:
		if v.RiskLevel == RiskSafe {
			v.RiskLevel = RiskMedium
			v.RiskType = RiskTypeAccountRisk
		}

	case patterns.CategoryDoxxing:
		if v.RiskLevel == RiskSafe {
			v.RiskLevel = RiskHigh
			v.RiskType = RiskTypePrivacy
			v.SuggestBlock = true
		}

	case patterns.CategorySexualHarassment:
		if v.RiskLevel == RiskSafe {
			v.RiskLevel = RiskMedium
			v.RiskType = RiskTypeHarassment
		}

	case patterns.CategoryCoerciveControl:
		if v.RiskLevel == RiskSafe {
			v.RiskLevel = RiskMedium
			v.RiskType = RiskTypeManipulation
		}

	case patterns.CategoryIdentityAbuse:
		v.RiskLevel = RiskHigh
		v.RiskType = RiskTypeGBV
		v.SuggestBlock = true

	case patterns.CategoryElderAbuse:
		// Raises to at least medium but never lowers a higher level.
		if v.RiskLevel == RiskSafe || v.RiskLevel == RiskLow {
			v.RiskLevel = RiskMedium
			v.RiskType = RiskTypeThreat
		}
		v.SuggestBlock = true

	case patterns.CategoryChildThreat, patterns.CategorySymbolic:
		v.RiskLevel = RiskHigh
		v.RiskType = RiskTypeThreat
		v.SuggestBlock = true

	case patterns.CategoryPrivacy:
		v.RiskLevel = RiskMedium
		v.RiskType = RiskTypePrivacy

	case patterns.CategoryMediumRisk:
		v.RiskLevel = RiskMedium
		v.RiskType = RiskTypeHarassment
	}
}

func recommendation(level RiskLevel, suggestBlock bool) string {
	switch {
	case level == RiskHigh && suggestBlock:
		return recommendBlockNow
	case level == RiskHigh:
		return recommendConsider
	case level == RiskMedium:
		return recommendBeCautious
	default:
		return ""
	}
}
