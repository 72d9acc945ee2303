// Package analyzer classifies social-media text for harassment, threats,
// gender-based violence, and privacy risks. It runs a remote chat-completion
// model when credentials are available and a deterministic keyword scorer
// when they are not, always producing the same verdict shape.
package analyzer

// RiskLevel is the overall severity of a verdict.
type RiskLevel string

const (
	RiskSafe   RiskLevel = "safe"
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskType categorizes the dominant risk found. Empty means none.
type RiskType string

const (
	RiskTypeNone          RiskType = ""
	RiskTypeHarassment    RiskType = "harassment"
	RiskTypeCyberbullying RiskType = "cyberbullying"
	RiskTypePrivacy       RiskType = "privacy"
	RiskTypeAccountRisk   RiskType = "account_risk"
	RiskTypeThreat        RiskType = "threat"
	RiskTypeDoxxing       RiskType = "doxxing"
	RiskTypeManipulation  RiskType = "manipulation"
	RiskTypeGBV           RiskType = "gbv"
)

// AnalysisContext carries caller-supplied attribution for one text item.
// Passed through into the verdict unmodified.
type AnalysisContext struct {
	Username   string `json:"username,omitempty"`
	Platform   string `json:"platform,omitempty"`
	IsComment  bool   `json:"isComment"`
	ParentText string `json:"parentText,omitempty"`
	ReplyTo    string `json:"replyTo,omitempty"`
}

// RiskVerdict is the result of one classification. Treat as immutable once
// returned; safe verdicts never carry a risk type or a block suggestion.
type RiskVerdict struct {
	RiskLevel      RiskLevel `json:"riskLevel"`
	RiskType       RiskType  `json:"riskType,omitempty"`
	Confidence     float64   `json:"confidence"`
	Indicators     []string  `json:"indicators"`
	Explanation    string    `json:"explanation"`
	Recommendation string    `json:"recommendation,omitempty"`
	IsComment      bool      `json:"isComment"`
	SuggestBlock   bool      `json:"suggestBlock"`

	// Error is set only on degraded batch items, never by Classify itself.
	Error string `json:"error,omitempty"`
}

// safeVerdict returns the canonical verdict for blank input.
func safeVerdict(isComment bool) RiskVerdict {
	return RiskVerdict{
		RiskLevel:   RiskSafe,
		Confidence:  0,
		Indicators:  []string{},
		Explanation: "No content to analyze",
		IsComment:   isComment,
	}
}

// validLevels and validTypes bound what a model reply may set.
var validLevels = map[RiskLevel]bool{
	RiskSafe: true, RiskLow: true, RiskMedium: true, RiskHigh: true,
}

var validTypes = map[RiskType]bool{
	RiskTypeNone: true, RiskTypeHarassment: true, RiskTypeCyberbullying: true,
	RiskTypePrivacy: true, RiskTypeAccountRisk: true, RiskTypeThreat: true,
	RiskTypeDoxxing: true, RiskTypeManipulation: true, RiskTypeGBV: true,
}

// enforceInvariant makes a verdict internally consistent: a safe level
// cannot carry a risk type or a block suggestion.
func enforceInvariant(v *RiskVerdict) {
	if !validLevels[v.RiskLevel] {
		v.RiskLevel = RiskSafe
	}
	if !validTypes[v.RiskType] {
		v.RiskType = RiskTypeNone
	}
	if v.RiskLevel == RiskSafe {
		v.RiskType = RiskTypeNone
		v.SuggestBlock = false
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
	if v.Indicators == nil {
		v.Indicators = []string{}
	}
}
