package horn

import (
	"context"
	"log/slog"
	"strings"
)

// Option configures a Parse call.
type Option func(*options)

type options struct {
	tracer *slog.Logger
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithTracer makes Parse emit debug records for the token stream and every
// parsed clause. A nil logger disables tracing.
func WithTracer(logger *slog.Logger) Option {
	return func(o *options) {
		o.tracer = logger
	}
}

func (p *parser) tracing() bool {
	return p.trace != nil && p.trace.Enabled(context.Background(), slog.LevelDebug)
}

func (p *parser) traceTokens(tokens []Token) {
	if !p.tracing() {
		return
	}
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.String()
	}
	p.trace.Debug("tokens", slog.Int("count", len(tokens)), slog.String("stream", strings.Join(parts, " ")))
}

func (p *parser) traceClause(c Clause) {
	if !p.tracing() {
		return
	}
	p.trace.Debug("clause",
		slog.String("pos", c.Pos.String()),
		slog.String("head", c.Head.String()),
		slog.Int("goals", len(c.Body)),
	)
}
