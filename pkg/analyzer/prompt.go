package analyzer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/safespace-labs/safespace/pkg/taxonomy"
)

const systemPromptTemplate = `You are an expert safety AI assistant specialized in detecting gender-based violence (GBV), cyberbullying, harassment, stalking, privacy/doxxing threats, and online safety threats. You must be HIGHLY SENSITIVE to any form of harmful content and use the provided taxonomy to broaden context detection.

Analyze the provided text and identify ANY of the following:

1. **Cyberbullying & Harassment:**
   - Insults, name-calling, or derogatory language
   - Threats of sharing photos or personal information
   - Body shaming or appearance-based attacks
   - Public humiliation attempts

2. **Gender-Based Violence Indicators:**
   - Sexist or misogynistic statements
   - Gender-based discrimination
   - Controlling or possessive language
   - Statements about "sharing photos" or "exposing" someone

3. **Threatening Language:**
   - Direct or indirect threats
   - Intimidation attempts
   - Coercive statements or blackmail indicators

4. **Privacy & Doxxing Risks:**
   - Threats to share personal information or private media
   - Location sharing risks
   - Blackmail/"leak" language even if implied

5. **Manipulative Content:**
   - Gaslighting attempts
   - Emotional manipulation
   - Coercive control language

6. **Stalking Indicators:**
   - Unwanted attention or obsessive behavior patterns
   - Tracking, finding, or following language
   - Boundary violations

**Risk Taxonomy (JSON for reference, use to classify and expand patterns):**
%s

**IMPORTANT:** Be especially alert for:
- Comments containing "I will share your photos" OR any variation of leaking/exposing media
- Threats to expose or embarrass someone
- Body shaming or appearance insults
- Gender-based put-downs or coercive control language
- Stalking language (finding, tracking, following)
- Any language that could cause emotional harm or fear

Respond ONLY with a JSON object in this exact format:
{
  "riskLevel": "high" | "medium" | "low" | "safe",
  "riskType": "harassment" | "cyberbullying" | "privacy" | "account_risk" | "threat" | "doxxing" | "manipulation" | "gbv" | null,
  "confidence": 0.0-1.0,
  "indicators": ["specific", "indicators", "found"],
  "explanation": "Detailed explanation of why this is harmful",
  "recommendation": "Specific actionable recommendation",
  "isComment": true/false,
  "suggestBlock": true/false
}`

// parentExcerptLimit caps how much of the parent post is quoted in the
// prompt. Parent context is attribution, not the subject of analysis.
const parentExcerptLimit = 200

// BuildSystemPrompt renders the detection instructions with the taxonomy
// embedded as JSON, so the model and the keyword tier derive from the same
// canonical category set.
func BuildSystemPrompt(tax *taxonomy.Taxonomy) string {
	return fmt.Sprintf(systemPromptTemplate, tax.PromptJSON())
}

// BuildUserPrompt renders the per-item analysis request with the text and
// its context fields.
func BuildUserPrompt(text string, ctx AnalysisContext) string {
	contentType := "POST"
	if ctx.IsComment {
		contentType = "COMMENT"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this %s for cyberbullying, harassment, GBV, stalking, privacy/doxxing, and safety risks. Use the taxonomy above to spot broader variations (synonyms, implied threats, coercion, stalking language).\n\n", contentType)
	fmt.Fprintf(&b, "**Content Text:** %q\n\n", text)

	b.WriteString("**Context:**\n")
	if ctx.Username != "" {
		fmt.Fprintf(&b, "- Author/Username: %s\n", ctx.Username)
	}
	if ctx.Platform != "" {
		fmt.Fprintf(&b, "- Platform: %s\n", ctx.Platform)
	}
	if ctx.IsComment {
		b.WriteString("- Type: COMMENT (This is a comment, not a main post)\n")
	} else {
		b.WriteString("- Type: POST\n")
	}
	if ctx.ParentText != "" {
		fmt.Fprintf(&b, "- Parent Post Context: %q\n", truncate(ctx.ParentText, parentExcerptLimit))
	}
	if ctx.ReplyTo != "" {
		fmt.Fprintf(&b, "- Replying to: %s\n", ctx.ReplyTo)
	}

	b.WriteString(`
**IMPORTANT:**
- Look for ANY variation of harmful language, not just exact phrases
- Be sensitive to context - even "jokes" can be harmful
- Flag ANYTHING that could cause harm, distress, or safety concerns
- If this is a COMMENT with harmful content, strongly suggest blocking

Provide your analysis in the specified JSON format.`)

	return b.String()
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
