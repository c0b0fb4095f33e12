package msgbox

import "go.uber.org/zap"

// defaultLogger builds the zap logger a Box falls back to when no
// WithLogger option is given. Production config keeps msgbox quiet enough
// for a library (JSON output, info level) while still surfacing dispatcher
// failures; if even that construction fails (which in practice only
// happens under a broken logging sink) a no-op logger is used instead of
// panicking a library caller.
func defaultLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
