package analyzer

// Local ONNX-based toxicity classification. Fully offline scoring for
// deployments that cannot send user content to a remote model provider.
// Disabled unless SAFESPACE_ENABLE_LOCAL_ML is set and a model directory
// is present; everything degrades gracefully to the keyword tier.

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
)

// ModelToxicBERT is the default local toxicity model.
const ModelToxicBERT = "unitary/toxic-bert"

// LocalClassifierConfig configures the on-device toxicity classifier.
type LocalClassifierConfig struct {
	// ModelPath is the local ONNX model directory. If empty and ModelName
	// is set, the model is downloaded on first use.
	ModelPath string

	// ModelName is the HuggingFace model to download when ModelPath is
	// absent.
	ModelName string

	// OnnxLibraryPath points at libonnxruntime. Empty selects the pure
	// Go backend, which is slower but dependency-free.
	OnnxLibraryPath string

	Timeout time.Duration
}

// DefaultLocalConfig returns the standard local classifier setup.
func DefaultLocalConfig() LocalClassifierConfig {
	return LocalClassifierConfig{
		ModelName:       ModelToxicBERT,
		ModelPath:       "./models/toxic-bert",
		OnnxLibraryPath: defaultOnnxPath(),
		Timeout:         30 * time.Second,
	}
}

func defaultOnnxPath() string {
	paths := []string{
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/opt/homebrew/lib/libonnxruntime.dylib",
		"/usr/local/lib/libonnxruntime.dylib",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return filepath.Dir(p)
		}
	}
	return ""
}

// LocalClassifier scores text toxicity with an ONNX model.
type LocalClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	config   LocalClassifierConfig
	mu       sync.RWMutex
	ready    bool
}

// LocalResult is one local classification outcome.
type LocalResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	IsToxic    bool    `json:"is_toxic"`
	LatencyMs  float64 `json:"latency_ms"`
}

// NewLocalClassifier initializes the session and pipeline, downloading
// the model if necessary.
func NewLocalClassifier(cfg LocalClassifierConfig) (*LocalClassifier, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	lc := &LocalClassifier{config: cfg}
	if err := lc.initialize(); err != nil {
		return nil, fmt.Errorf("local classifier initialization failed: %w", err)
	}
	return lc, nil
}

// NewLocalClassifierWithFallback never fails: on initialization error it
// returns a not-ready classifier and the caller carries on without it.
func NewLocalClassifierWithFallback(cfg LocalClassifierConfig) *LocalClassifier {
	lc, err := NewLocalClassifier(cfg)
	if err != nil {
		log.Printf("[ML] local classifier unavailable: %v", err)
		return &LocalClassifier{config: cfg}
	}
	return lc
}

func (lc *LocalClassifier) initialize() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	session, err := lc.createSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	lc.session = session

	modelPath, err := lc.resolveModelPath()
	if err != nil {
		_ = lc.session.Destroy()
		return fmt.Errorf("failed to resolve model path: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "toxicity-classifier",
	})
	if err != nil {
		_ = lc.session.Destroy()
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	lc.pipeline = pipeline
	lc.ready = true
	log.Printf("[ML] local toxicity classifier ready (model: %s)", modelPath)
	return nil
}

func (lc *LocalClassifier) createSession() (*hugot.Session, error) {
	if lc.config.OnnxLibraryPath != "" {
		session, err := hugot.NewORTSession(
			options.WithOnnxLibraryPath(lc.config.OnnxLibraryPath),
		)
		if err == nil {
			return session, nil
		}
		log.Printf("[ML] ONNX Runtime unavailable, falling back to Go backend: %v", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create Go session: %w", err)
	}
	return session, nil
}

func (lc *LocalClassifier) resolveModelPath() (string, error) {
	if lc.config.ModelPath != "" {
		if _, err := os.Stat(lc.config.ModelPath); err == nil {
			return lc.config.ModelPath, nil
		}
	}
	if lc.config.ModelName == "" {
		return "", fmt.Errorf("no model path or name specified")
	}

	modelsDir := "./models"
	if err := os.MkdirAll(modelsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create models directory: %w", err)
	}

	log.Printf("[ML] downloading model %s...", lc.config.ModelName)
	modelPath, err := hugot.DownloadModel(lc.config.ModelName, modelsDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("failed to download model: %w", err)
	}
	return modelPath, nil
}

// IsReady reports whether the classifier can run inference.
func (lc *LocalClassifier) IsReady() bool {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.ready
}

func isToxicLabel(label string) bool {
	switch label {
	case "toxic", "TOXIC", "LABEL_1":
		return true
	default:
		return false
	}
}

// Classify scores a batch of texts in input order.
func (lc *LocalClassifier) Classify(ctx context.Context, texts []string) ([]LocalResult, error) {
	lc.mu.RLock()
	defer lc.mu.RUnlock()

	if !lc.ready || lc.pipeline == nil {
		return nil, fmt.Errorf("local classifier not ready")
	}
	if len(texts) == 0 {
		return []LocalResult{}, nil
	}

	start := time.Now()
	result, err := lc.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}
	latency := float64(time.Since(start).Milliseconds())

	outputs := make([]LocalResult, len(texts))
	for i := range texts {
		if i < len(result.ClassificationOutputs) && len(result.ClassificationOutputs[i]) > 0 {
			out := result.ClassificationOutputs[i][0]
			outputs[i] = LocalResult{
				Label:      out.Label,
				Confidence: float64(out.Score),
				IsToxic:    isToxicLabel(out.Label),
				LatencyMs:  latency / float64(len(texts)),
			}
		} else {
			outputs[i] = LocalResult{Label: "unknown", LatencyMs: latency / float64(len(texts))}
		}
	}
	return outputs, nil
}

// ClassifySingle scores one text.
func (lc *LocalClassifier) ClassifySingle(ctx context.Context, text string) (LocalResult, error) {
	results, err := lc.Classify(ctx, []string{text})
	if err != nil {
		return LocalResult{}, err
	}
	if len(results) == 0 {
		return LocalResult{}, fmt.Errorf("no results returned")
	}
	return results[0], nil
}

// Close releases the ONNX session.
func (lc *LocalClassifier) Close() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.ready = false
	if lc.session != nil {
		if err := lc.session.Destroy(); err != nil {
			return fmt.Errorf("failed to destroy session: %w", err)
		}
	}
	return nil
}
