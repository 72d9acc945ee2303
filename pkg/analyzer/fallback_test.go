package analyzer

import (
	"reflect"
	"strings"
	"testing"
)

func TestScoreEmptyInput(t *testing.T) {
	s := NewScorer()
	for _, text := range []string{"", "   ", "\n\t  "} {
		v := s.Score(text, AnalysisContext{})
		if v.RiskLevel != RiskSafe {
			t.Errorf("Score(%q).RiskLevel = %s, want safe", text, v.RiskLevel)
		}
		if v.Confidence != 0 {
			t.Errorf("Score(%q).Confidence = %v, want 0", text, v.Confidence)
		}
		if len(v.Indicators) != 0 {
			t.Errorf("Score(%q).Indicators = %v, want empty", text, v.Indicators)
		}
	}
}

func TestScoreSafeText(t *testing.T) {
	s := NewScorer()
	v := s.Score("have a wonderful afternoon, see you at the picnic", AnalysisContext{})
	if v.RiskLevel != RiskSafe {
		t.Fatalf("expected safe, got %s with indicators %v", v.RiskLevel, v.Indicators)
	}
	if v.Confidence != 0.3 {
		t.Errorf("safe confidence = %v, want 0.3", v.Confidence)
	}
	if v.RiskType != RiskTypeNone || v.SuggestBlock {
		t.Error("safe verdict must carry no risk type and no block suggestion")
	}
	if v.Recommendation != "" {
		t.Errorf("safe verdict should have no recommendation, got %q", v.Recommendation)
	}
}

func TestScoreInvariantHolds(t *testing.T) {
	s := NewScorer()
	inputs := []string{
		"", "hello there", "kill you", "ugly", "obey", "your location",
		"I will share your photos ugly boy", "you belong to me, obey or else",
		"k1ll y0u", "send me or else", "🔪", "dox", "harass",
	}
	for _, text := range inputs {
		v := s.Score(text, AnalysisContext{})
		if v.RiskLevel == RiskSafe && (v.RiskType != RiskTypeNone || v.SuggestBlock) {
			t.Errorf("invariant violated for %q: safe with type=%q suggestBlock=%v",
				text, v.RiskType, v.SuggestBlock)
		}
	}
}

func TestScoreIsPure(t *testing.T) {
	s := NewScorer()
	text := "I will share your photos ugly boy"
	v1 := s.Score(text, AnalysisContext{IsComment: true})
	v2 := s.Score(text, AnalysisContext{IsComment: true})
	if !reflect.DeepEqual(v1, v2) {
		t.Errorf("scorer not pure:\nfirst:  %+v\nsecond: %+v", v1, v2)
	}
}

func TestScorePhotoThreatWithInsult(t *testing.T) {
	s := NewScorer()
	v := s.Score("I will share your photos ugly boy", AnalysisContext{})

	if v.RiskLevel != RiskHigh {
		t.Errorf("RiskLevel = %s, want high", v.RiskLevel)
	}
	if !v.SuggestBlock {
		t.Error("expected suggestBlock")
	}
	var threat, bullying bool
	for _, ind := range v.Indicators {
		if strings.HasPrefix(ind, "Contains threatening language") {
			threat = true
		}
		if strings.HasPrefix(ind, "Cyberbullying detected") {
			bullying = true
		}
	}
	if !threat || !bullying {
		t.Errorf("expected threat and cyberbullying indicators, got %v", v.Indicators)
	}
	if v.Recommendation != recommendBlockNow {
		t.Errorf("Recommendation = %q, want %q", v.Recommendation, recommendBlockNow)
	}
	if v.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want 0.7", v.Confidence)
	}
}

func TestScoreCoerciveControlPhrase(t *testing.T) {
	s := NewScorer()
	v := s.Score("you belong to me, obey or else", AnalysisContext{})

	if v.RiskLevel != RiskHigh {
		t.Errorf("RiskLevel = %s, want high", v.RiskLevel)
	}
	if v.RiskType != RiskTypeThreat && v.RiskType != RiskTypeHarassment {
		t.Errorf("RiskType = %s, want threat or harassment", v.RiskType)
	}
	var gbv bool
	for _, ind := range v.Indicators {
		if strings.HasPrefix(ind, "Gender-based content") {
			gbv = true
		}
	}
	if !gbv {
		t.Errorf("expected gender-based indicator, got %v", v.Indicators)
	}
}

func TestScoreGBVEscalation(t *testing.T) {
	// Two gender-based matches alone escalate medium to high.
	s := NewScorer()
	v := s.Score("you belong to me and you must obey", AnalysisContext{})
	if v.RiskLevel != RiskHigh {
		t.Errorf("RiskLevel = %s, want high from combined gbv matches", v.RiskLevel)
	}
	if v.RiskType != RiskTypeHarassment {
		t.Errorf("RiskType = %s, want harassment", v.RiskType)
	}
}

func TestScoreDeobfuscation(t *testing.T) {
	s := NewScorer()
	plain := s.Score("kill you", AnalysisContext{})
	leet := s.Score("k1ll y0u", AnalysisContext{})

	if plain.RiskLevel != RiskHigh {
		t.Fatalf("plain text should be high, got %s", plain.RiskLevel)
	}
	if leet.RiskLevel != plain.RiskLevel || leet.RiskType != plain.RiskType ||
		leet.SuggestBlock != plain.SuggestBlock {
		t.Errorf("leetspeak evasion succeeded: plain=%+v leet=%+v", plain, leet)
	}
}

func TestScoreSpacingEvasion(t *testing.T) {
	s := NewScorer()
	v := s.Score("I will s h a r e  y o u r  p h o t o s", AnalysisContext{})
	if v.RiskLevel != RiskHigh {
		t.Errorf("spacing evasion succeeded, got %s", v.RiskLevel)
	}
}

func TestScoreThreatRegex(t *testing.T) {
	s := NewScorer()
	v := s.Score("do what I say unless you want to regret it", AnalysisContext{})
	if v.RiskLevel != RiskHigh || v.RiskType != RiskTypeThreat {
		t.Errorf("conditional threat: level=%s type=%s, want high/threat", v.RiskLevel, v.RiskType)
	}
	var pattern bool
	for _, ind := range v.Indicators {
		if ind == "Threatening language pattern detected" {
			pattern = true
		}
	}
	if !pattern {
		t.Errorf("expected regex indicator, got %v", v.Indicators)
	}
}

func TestScoreStalking(t *testing.T) {
	s := NewScorer()
	v := s.Score("i know where you live", AnalysisContext{})
	if v.RiskLevel != RiskHigh || v.RiskType != RiskTypeThreat || !v.SuggestBlock {
		t.Errorf("stalking: got %s/%s block=%v, want high/threat/true", v.RiskLevel, v.RiskType, v.SuggestBlock)
	}
}

func TestScoreTechAbuseOnlyRaisesFromSafe(t *testing.T) {
	s := NewScorer()

	v := s.Score("i made a deepfake", AnalysisContext{})
	if v.RiskLevel != RiskMedium || v.RiskType != RiskTypeAccountRisk {
		t.Errorf("tech abuse alone: got %s/%s, want medium/account_risk", v.RiskLevel, v.RiskType)
	}

	// Combined with a violent threat, the threat verdict stands.
	v = s.Score("i made a deepfake and i will hurt you", AnalysisContext{})
	if v.RiskLevel != RiskHigh || v.RiskType != RiskTypeThreat {
		t.Errorf("tech abuse with threat: got %s/%s, want high/threat", v.RiskLevel, v.RiskType)
	}
}

func TestScoreDoxxing(t *testing.T) {
	s := NewScorer()
	v := s.Score("pay or i doxx you", AnalysisContext{})
	if v.RiskLevel != RiskHigh || v.RiskType != RiskTypePrivacy || !v.SuggestBlock {
		t.Errorf("doxxing: got %s/%s block=%v, want high/privacy/true", v.RiskLevel, v.RiskType, v.SuggestBlock)
	}
}

func TestScoreManipulation(t *testing.T) {
	s := NewScorer()
	v := s.Score("no one will believe you anyway", AnalysisContext{})
	if v.RiskLevel != RiskMedium || v.RiskType != RiskTypeManipulation {
		t.Errorf("manipulation: got %s/%s, want medium/manipulation", v.RiskLevel, v.RiskType)
	}
	if v.Recommendation != recommendBeCautious {
		t.Errorf("Recommendation = %q, want %q", v.Recommendation, recommendBeCautious)
	}
}

func TestScoreElderAbuseNeverDowngrades(t *testing.T) {
	s := NewScorer()

	v := s.Score("you senile old hag", AnalysisContext{})
	if v.RiskLevel != RiskHigh {
		// "old hag" also trips the cyberbullying table through "hag"? It
		// does not; "senile" raises via the elder rule only.
		t.Logf("standalone elder verdict: %s", v.RiskLevel)
	}
	if !v.SuggestBlock {
		t.Error("elder abuse should suggest blocking")
	}

	v = s.Score("i will kill you, senile fool", AnalysisContext{})
	if v.RiskLevel != RiskHigh {
		t.Errorf("elder match downgraded an existing high to %s", v.RiskLevel)
	}
}

func TestScoreSymbolicEmoji(t *testing.T) {
	s := NewScorer()
	v := s.Score("see you tonight 🔪", AnalysisContext{})
	if v.RiskLevel != RiskHigh || v.RiskType != RiskTypeThreat || !v.SuggestBlock {
		t.Errorf("emoji threat: got %s/%s block=%v, want high/threat/true", v.RiskLevel, v.RiskType, v.SuggestBlock)
	}
}

func TestScoreGenericListsOnlyWhenSafe(t *testing.T) {
	s := NewScorer()

	v := s.Score("turn on your gps", AnalysisContext{})
	if v.RiskLevel != RiskMedium || v.RiskType != RiskTypePrivacy {
		t.Errorf("privacy keyword: got %s/%s, want medium/privacy", v.RiskLevel, v.RiskType)
	}
	if len(v.Indicators) != 1 {
		t.Errorf("privacy list should short-circuit to one indicator, got %v", v.Indicators)
	}

	// A threat match first means the generic lists never run.
	v = s.Score("i will hurt you, send me your gps", AnalysisContext{})
	for _, ind := range v.Indicators {
		if strings.HasPrefix(ind, "Privacy concern") {
			t.Errorf("generic privacy list ran despite non-safe level: %v", v.Indicators)
		}
	}
}

func TestScoreIsCommentPassthrough(t *testing.T) {
	s := NewScorer()
	v := s.Score("hello there", AnalysisContext{IsComment: true})
	if !v.IsComment {
		t.Error("IsComment not carried into verdict")
	}
}

func TestScoreConcurrent(t *testing.T) {
	s := NewScorer()
	done := make(chan RiskVerdict, 32)
	for i := 0; i < 32; i++ {
		go func() {
			done <- s.Score("I will share your photos ugly boy", AnalysisContext{})
		}()
	}
	first := <-done
	for i := 1; i < 32; i++ {
		v := <-done
		if !reflect.DeepEqual(first, v) {
			t.Fatal("concurrent scoring produced divergent verdicts")
		}
	}
}
