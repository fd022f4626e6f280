package port

// Normalizer turns raw text into the canonical token string used for matching.
type Normalizer interface {
	Normalize(text string) string
}
