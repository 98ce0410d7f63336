package domain

// Completion is the text produced by a language model call.
type Completion struct {
	Text       string
	Model      string
	TokensUsed int
}
