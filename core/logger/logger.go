package logger

// Logger exposes logging methods for common severity levels. Debugw carries
// structured fields for the per-mission traces of the dispatch loop.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
