package port

// Scorer computes a [0,1] relevance score between two normalized texts.
type Scorer interface {
	Score(a, b string) float64
}

// Relatedness decides whether two normalized tokens are semantically related.
type Relatedness interface {
	// Related reports whether a and b are close enough in the sense network.
	Related(a, b string) bool

	// Available reports whether the underlying lexical resource is loaded.
	Available() bool
}
