package port

// Observer is the write-only observability sink. Calls are fire and forget;
// the engine keeps working when an observer misbehaves.
type Observer interface {
	Metric(name string, value float64, fields map[string]any)

	Error(sessionID string, err error, fields map[string]any)
}
