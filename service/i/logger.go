package i

// Logger is the structured logger used across services and adapters.
type Logger interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
	Debug(msg string)
	// With returns a logger annotating every entry with the given fields.
	With(fields map[string]any) Logger
}
