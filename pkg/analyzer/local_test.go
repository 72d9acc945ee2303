package analyzer

import (
	"context"
	"testing"
	"time"
)

func TestDefaultLocalConfig(t *testing.T) {
	cfg := DefaultLocalConfig()
	if cfg.ModelName != ModelToxicBERT {
		t.Errorf("ModelName = %s", cfg.ModelName)
	}
	if cfg.ModelPath == "" {
		t.Error("ModelPath should default to a local directory")
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
}

func TestIsToxicLabel(t *testing.T) {
	cases := []struct {
		label string
		want  bool
	}{
		{"toxic", true},
		{"TOXIC", true},
		{"LABEL_1", true},
		{"LABEL_0", false},
		{"non-toxic", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isToxicLabel(tc.label); got != tc.want {
			t.Errorf("isToxicLabel(%q) = %v, want %v", tc.label, got, tc.want)
		}
	}
}

func TestLocalClassifierFallbackNotReady(t *testing.T) {
	// No model path and no model name: initialization cannot succeed, and
	// the fallback constructor must still hand back a usable value.
	lc := NewLocalClassifierWithFallback(LocalClassifierConfig{})
	if lc == nil {
		t.Fatal("fallback constructor returned nil")
	}
	if lc.IsReady() {
		t.Error("classifier reports ready without a model")
	}
	if _, err := lc.Classify(context.Background(), []string{"text"}); err == nil {
		t.Error("Classify should fail when not ready")
	}
	if err := lc.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
