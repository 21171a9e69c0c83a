package domain

// Message is one entry in a GenerationRequest.
type Message struct {
	Role    Role
	Content string
}

// GenerationRequest is the ordered message list sent to a generation service.
// It is built fresh for every call and never persisted.
type GenerationRequest struct {
	Messages []Message

	// MaxTokens limits the response size. Zero lets the adapter choose.
	MaxTokens int

	// Temperature is passed through when positive.
	Temperature float64
}

// Usage reports token accounting returned by the service.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Completion is a successful answer from a generation service.
type Completion struct {
	// Text is the primary answer field.
	Text string

	// Reasoning is an alternate content field some services populate
	// instead of, or alongside, Text.
	Reasoning string

	// Refusal is set when the model declined to answer.
	Refusal string

	// FinishReason is the service's stop reason, if any.
	FinishReason string

	Usage Usage
}

// OutcomeKind tags a GenerationOutcome.
type OutcomeKind int

// Outcome kinds of a single generation attempt.
const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRateLimited
	OutcomeFatal
)

// String returns the outcome name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// GenerationOutcome is the tagged result of one generation attempt.
// Exactly one of Completion (success), RetryAfterSeconds (rate limited)
// or Reason (fatal) is meaningful, as selected by Kind.
type GenerationOutcome struct {
	Kind OutcomeKind

	Completion *Completion

	// RetryAfterSeconds is the server hint. Zero with HasHint false means no hint was given.
	RetryAfterSeconds float64
	HasHint           bool

	Reason string
	Err    error
}
