package port

// SourceResolver expands a corpus path or glob into concrete files.
type SourceResolver interface {
	Resolve(pattern string) ([]string, error)
}
