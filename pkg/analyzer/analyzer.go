package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/safespace-labs/safespace/pkg/httputil"
	"github.com/safespace-labs/safespace/pkg/taxonomy"
)

// CredentialProvider supplies the model API key. An empty key is not an
// error: the analyzer silently skips the model tier and scores with
// keywords only.
type CredentialProvider interface {
	APIKey() string
}

// StaticCredentials is a CredentialProvider around a fixed key.
type StaticCredentials string

func (s StaticCredentials) APIKey() string { return string(s) }

// ContentAnalyzer is the classification entry point. It tries the model
// tier first and falls back to the keyword scorer on any failure, so a
// caller always receives a well-formed verdict and never an error.
type ContentAnalyzer struct {
	client ModelClient
	creds  CredentialProvider
	scorer *Scorer

	// Optional local tiers consulted when the keyword scorer finds
	// nothing. Either may be nil.
	semantic *SemanticDetector
	local    *LocalClassifier

	systemPrompt string

	// batchSem bounds concurrent batch items. Model calls serialize in
	// the client queue regardless; this just caps waiting goroutines.
	batchSem *httputil.Semaphore
}

// NewContentAnalyzer wires an analyzer from its collaborators. client may
// be nil for keyword-only operation.
func NewContentAnalyzer(client ModelClient, creds CredentialProvider, tax *taxonomy.Taxonomy) *ContentAnalyzer {
	if tax == nil {
		tax = taxonomy.Default()
	}
	return &ContentAnalyzer{
		client:       client,
		creds:        creds,
		scorer:       NewScorer(),
		systemPrompt: BuildSystemPrompt(tax),
		batchSem:     httputil.NewSemaphore(8),
	}
}

// SetSemanticDetector attaches the embedding-similarity tier. Call
// before serving; the field is not guarded for concurrent mutation.
func (a *ContentAnalyzer) SetSemanticDetector(sd *SemanticDetector) {
	a.semantic = sd
}

// SetLocalClassifier attaches the on-device toxicity tier.
func (a *ContentAnalyzer) SetLocalClassifier(lc *LocalClassifier) {
	a.local = lc
}

// Classify analyzes one text item. Blank input short-circuits to a safe
// verdict without touching the model.
func (a *ContentAnalyzer) Classify(ctx context.Context, text string, actx AnalysisContext) RiskVerdict {
	if strings.TrimSpace(text) == "" {
		return safeVerdict(actx.IsComment)
	}

	if a.client == nil || a.creds == nil || a.creds.APIKey() == "" {
		return a.localScore(ctx, text, actx)
	}

	reply, err := a.client.Complete(ctx, BuildUserPrompt(text, actx), a.systemPrompt)
	if err != nil {
		log.Printf("[ANALYZER] model tier failed (%v), using keyword scorer", err)
		return a.localScore(ctx, text, actx)
	}

	verdict, err := a.parseModelReply(reply, actx)
	if err != nil {
		log.Printf("[ANALYZER] unparseable model reply (%v), using keyword scorer", err)
		return a.localScore(ctx, text, actx)
	}
	return verdict
}

// localScore runs the offline tiers in escalating cost order: keyword
// tables, then the toxicity model, then embedding similarity. The first
// tier to flag the text wins; later tiers only run on a safe verdict.
func (a *ContentAnalyzer) localScore(ctx context.Context, text string, actx AnalysisContext) RiskVerdict {
	v := a.scorer.Score(text, actx)
	if v.RiskLevel != RiskSafe {
		return v
	}

	if a.local != nil && a.local.IsReady() {
		res, err := a.local.ClassifySingle(ctx, text)
		if err != nil {
			log.Printf("[ANALYZER] local classifier failed: %v", err)
		} else if applyToxicity(&v, res) {
			return v
		}
	}

	if a.semantic != nil && a.semantic.IsReady() {
		res, err := a.semantic.Detect(ctx, text)
		if err != nil {
			log.Printf("[ANALYZER] semantic tier failed: %v", err)
		} else if res != nil && res.IsRisk {
			applySemantic(&v, res)
		}
	}
	return v
}

// toxicityThreshold is the minimum model confidence before a toxic
// label escalates a verdict on its own.
const toxicityThreshold = 0.7

// applyToxicity escalates a safe verdict to medium when the local model
// confidently flags the text. Reports whether it escalated.
func applyToxicity(v *RiskVerdict, res LocalResult) bool {
	if !res.IsToxic || res.Confidence < toxicityThreshold {
		return false
	}
	v.RiskLevel = RiskMedium
	v.RiskType = RiskTypeHarassment
	v.Confidence = res.Confidence
	v.Indicators = append(v.Indicators, fmt.Sprintf("Toxicity model: %s (%.2f)", res.Label, res.Confidence))
	v.Explanation = "Toxic language detected"
	v.Recommendation = recommendBeCautious
	enforceInvariant(v)
	return true
}

// applySemantic escalates a safe verdict to medium on a strong
// similarity hit against a taxonomy example.
func applySemantic(v *RiskVerdict, res *SemanticResult) {
	v.RiskLevel = RiskMedium
	v.RiskType = semanticRiskType(res.Category)
	v.Confidence = float64(res.Similarity)
	v.Indicators = append(v.Indicators, fmt.Sprintf("Similar to known %s pattern (%.2f)", res.Category, res.Similarity))
	v.Explanation = "Resembles known harmful content"
	v.Recommendation = recommendBeCautious
	enforceInvariant(v)
}

func semanticRiskType(category string) RiskType {
	switch category {
	case "threats", "stalking":
		return RiskTypeThreat
	case "privacy":
		return RiskTypePrivacy
	case "cyberbullying":
		return RiskTypeCyberbullying
	case "gbv":
		return RiskTypeGBV
	case "manipulation":
		return RiskTypeManipulation
	default:
		return RiskTypeHarassment
	}
}

// modelReply mirrors the JSON object the model is instructed to emit.
// IsComment is a pointer to distinguish an explicit false from omission.
type modelReply struct {
	RiskLevel      string   `json:"riskLevel"`
	RiskType       string   `json:"riskType"`
	Confidence     float64  `json:"confidence"`
	Indicators     []string `json:"indicators"`
	Explanation    string   `json:"explanation"`
	Recommendation string   `json:"recommendation"`
	IsComment      *bool    `json:"isComment"`
	SuggestBlock   bool     `json:"suggestBlock"`
}

// parseModelReply extracts the first balanced JSON object from the reply
// text and normalizes it into a verdict, substituting defaults for any
// field the model omitted.
func (a *ContentAnalyzer) parseModelReply(reply string, actx AnalysisContext) (RiskVerdict, error) {
	raw, err := extractJSON(reply)
	if err != nil {
		return RiskVerdict{}, err
	}

	var parsed modelReply
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return RiskVerdict{}, fmt.Errorf("%w: %v", ErrUnparseableJSON, err)
	}

	v := RiskVerdict{
		RiskLevel:      RiskLevel(parsed.RiskLevel),
		RiskType:       RiskType(parsed.RiskType),
		Confidence:     parsed.Confidence,
		Indicators:     parsed.Indicators,
		Explanation:    parsed.Explanation,
		Recommendation: parsed.Recommendation,
		SuggestBlock:   parsed.SuggestBlock,
		IsComment:      actx.IsComment,
	}
	if parsed.IsComment != nil {
		v.IsComment = *parsed.IsComment
	}
	if v.RiskLevel == "" {
		v.RiskLevel = RiskSafe
	}
	if v.Confidence == 0 {
		v.Confidence = 0.5
	}
	if v.Explanation == "" {
		v.Explanation = "Analysis completed"
	}

	enforceInvariant(&v)
	return v, nil
}

// extractJSON returns the first balanced {...} substring. Models often
// wrap the object in prose or markdown fences despite instructions.
func extractJSON(content string) (string, error) {
	start := strings.Index(content, "{")
	if start == -1 {
		return "", ErrUnparseableJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return content[start : i+1], nil
				}
			}
		}
	}
	return "", ErrUnparseableJSON
}

// BatchItem pairs one text with its context.
type BatchItem struct {
	Text    string          `json:"text"`
	Context AnalysisContext `json:"context"`
}

// BatchResult tags a verdict with the item that produced it.
type BatchResult struct {
	Item    BatchItem   `json:"item"`
	Verdict RiskVerdict `json:"verdict"`
}

// AnalyzeBatch classifies items independently and returns results in
// input order. One item failing degrades that item to a safe verdict
// carrying the error; siblings are unaffected.
func (a *ContentAnalyzer) AnalyzeBatch(ctx context.Context, items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		if err := a.batchSem.Acquire(ctx); err != nil {
			results[i] = BatchResult{Item: item, Verdict: degradedVerdict(item, err)}
			continue
		}
		wg.Add(1)
		go func(idx int, it BatchItem) {
			defer wg.Done()
			defer a.batchSem.Release()
			results[idx] = BatchResult{Item: it, Verdict: a.classifyItem(ctx, it)}
		}(i, item)
	}
	wg.Wait()

	return results
}

// classifyItem isolates one batch item so a panicking collaborator cannot
// abort the rest of the batch.
func (a *ContentAnalyzer) classifyItem(ctx context.Context, item BatchItem) (v RiskVerdict) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ANALYZER] batch item failed: %v", r)
			v = degradedVerdict(item, fmt.Errorf("classification failed: %v", r))
		}
	}()
	return a.Classify(ctx, item.Text, item.Context)
}

func degradedVerdict(item BatchItem, err error) RiskVerdict {
	v := safeVerdict(item.Context.IsComment)
	v.Explanation = "Analysis failed"
	v.Error = err.Error()
	return v
}
