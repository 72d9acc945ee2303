package analyzer

import "errors"

// Sentinel errors for the model tier. The orchestrator matches on these
// with errors.Is to decide between failing fast and falling back to the
// keyword scorer.
var (
	// ErrUnauthorized means the credential was rejected. No point trying
	// other models on the same key.
	ErrUnauthorized = errors.New("model provider rejected credentials")

	// ErrRateLimited and ErrUnavailable are transient per-model failures
	// that trigger fallback to the next model in the list.
	ErrRateLimited = errors.New("model rate limited")
	ErrUnavailable = errors.New("model unavailable")

	// ErrProviderExhausted means every model in the list failed.
	ErrProviderExhausted = errors.New("all models exhausted")

	// ErrUnparseableJSON means the model replied but no JSON object could
	// be recovered from its text.
	ErrUnparseableJSON = errors.New("no parseable JSON in model reply")
)
