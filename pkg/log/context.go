package log

import (
	"context"
	"log/slog"

	"code.internetisalie.net/sherpa/pkg/propagate"
)

type contextKey string

const contextKeyLogAttrs = contextKey("LogAttrs")

// ContextWithLogAttrs annotates ctx with request-local log attributes. These
// are more local than propagated context and win over it on key conflicts.
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	// merge with any existing attributes
	currentAttrs, _ := ctx.Value(contextKeyLogAttrs).([]slog.Attr)
	if currentAttrs != nil {
		attrs = MergeAttrs(currentAttrs, attrs)
	}
	return context.WithValue(ctx, contextKeyLogAttrs, attrs)
}

// ContextWithFields is ContextWithLogAttrs for a captured propagate.Context,
// for spawn sites that thread a snapshot through ctx instead of the stacks.
func ContextWithFields(ctx context.Context, fields propagate.Context) context.Context {
	return ContextWithLogAttrs(ctx, ContextAttrs(fields)...)
}

func logAttrsFromContext(ctx context.Context) []slog.Attr {
	v, _ := ctx.Value(contextKeyLogAttrs).([]slog.Attr)
	return v
}
