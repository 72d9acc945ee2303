// Package alerts persists risk verdicts as alert records in Redis, newest
// first with a bounded history, plus a per-platform blocklist of flagged
// accounts.
package alerts

import (
	"time"

	"github.com/google/uuid"

	"github.com/safespace-labs/safespace/pkg/analyzer"
)

// contentExcerptLimit truncates stored content. Alerts are evidence
// pointers, not an archive of the offending text.
const contentExcerptLimit = 200

// Alert is one persisted safety event derived from a non-safe verdict.
type Alert struct {
	ID             string             `json:"id"`
	Type           analyzer.RiskType  `json:"type"`
	Severity       analyzer.RiskLevel `json:"severity"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Content        string             `json:"content"`
	Source         string             `json:"source"`
	Username       string             `json:"username,omitempty"`
	Indicators     []string           `json:"indicators"`
	Recommendation string             `json:"recommendation,omitempty"`
	SuggestBlock   bool               `json:"suggestBlock"`
	Timestamp      time.Time          `json:"timestamp"`
}

// FromVerdict builds an alert from a verdict and its source text. Safe
// verdicts produce no alert.
func FromVerdict(v analyzer.RiskVerdict, content string, ctx analyzer.AnalysisContext) *Alert {
	if v.RiskLevel == analyzer.RiskSafe {
		return nil
	}

	alertType := v.RiskType
	if alertType == analyzer.RiskTypeNone {
		alertType = analyzer.RiskTypeHarassment
	}

	description := v.Explanation
	if description == "" {
		description = "Safety concern detected"
	}

	if len(content) > contentExcerptLimit {
		content = content[:contentExcerptLimit]
	}

	source := ctx.Platform
	if source == "" {
		source = "unknown"
	}

	indicators := v.Indicators
	if indicators == nil {
		indicators = []string{}
	}

	return &Alert{
		ID:             uuid.NewString(),
		Type:           alertType,
		Severity:       v.RiskLevel,
		Title:          alertTitle(alertType, v.RiskLevel),
		Description:    description,
		Content:        content,
		Source:         source,
		Username:       ctx.Username,
		Indicators:     indicators,
		Recommendation: v.Recommendation,
		SuggestBlock:   v.SuggestBlock,
		Timestamp:      time.Now().UTC(),
	}
}

func alertTitle(t analyzer.RiskType, severity analyzer.RiskLevel) string {
	switch t {
	case analyzer.RiskTypeHarassment:
		if severity == analyzer.RiskHigh {
			return "Harassment Detected"
		}
		return "Harassment Warning"
	case analyzer.RiskTypeCyberbullying:
		if severity == analyzer.RiskHigh {
			return "Cyberbullying Detected"
		}
		return "Cyberbullying Warning"
	case analyzer.RiskTypePrivacy:
		return "Privacy Risk Detected"
	case analyzer.RiskTypeAccountRisk:
		return "Suspicious Account Detected"
	case analyzer.RiskTypeThreat:
		return "Threatening Content Detected"
	case analyzer.RiskTypeDoxxing:
		return "Doxxing Risk Detected"
	case analyzer.RiskTypeManipulation:
		return "Manipulative Content Detected"
	case analyzer.RiskTypeGBV:
		return "Gender-Based Violence Risk Detected"
	default:
		return "Safety Concern Detected"
	}
}
