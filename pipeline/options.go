package pipeline

import "log/slog"

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger used for per-stage progress.
// A nil logger keeps the default, which discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithWorkers bounds how many channels a stage processes concurrently.
// Values below 1 are treated as 1 (strictly sequential).
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.rows = rowRunner{workers: max(n, 1)}
	}
}
