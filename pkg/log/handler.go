package log

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/mo"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"

	"code.internetisalie.net/sherpa/pkg/propagate"
)

const (
	FormatLogFmt  = "logfmt"
	FormatJson    = "json"
	FormatTint    = "tint"
	FormatDefault = FormatLogFmt
)

var TerminalFormat string

func NewConsoleHandler(ho *slog.HandlerOptions) slog.Handler {
	format := FormatDefault
	if isatty.IsTerminal(os.Stdout.Fd()) {
		format = mo.EmptyableToOption(TerminalFormat).OrElse(FormatTint)
	}

	if requestedFormat := os.Getenv("LOG_FORMAT"); requestedFormat != "" {
		requestedFormat = strings.ToLower(requestedFormat)

		switch requestedFormat {
		case FormatJson, FormatLogFmt, FormatTint:
			format = requestedFormat
		}
	}

	consoleWriter := os.Stdout

	var console slog.Handler
	switch format {
	case FormatJson:
		console = slog.NewJSONHandler(consoleWriter, ho)
	case FormatLogFmt:
		console = slog.NewTextHandler(consoleWriter, ho)
	case FormatTint:
		console = tint.NewHandler(consoleWriter, &tint.Options{
			AddSource:   ho.AddSource,
			Level:       ho.Level,
			ReplaceAttr: ho.ReplaceAttr,
			TimeFormat:  "15:04:05.000000",
			NoColor:     !isatty.IsTerminal(consoleWriter.Fd()),
		})
	}
	return console
}

// NewPropagateMiddleware rewrites each record to carry the propagator's
// effective context. Precedence, weakest first: inherited context, then
// request-local attributes from ctx, then the record's own attributes.
//
// The propagator's attachment toggle was evaluated at its construction; a
// disabled propagator makes this middleware pass records through untouched.
func NewPropagateMiddleware(p *propagate.Propagator) slogmulti.Middleware {
	return slogmulti.NewHandleInlineMiddleware(func(ctx context.Context, record slog.Record, next func(context.Context, slog.Record) error) error {
		if !p.AttachmentEnabled() {
			return next(ctx, record)
		}

		inherited := ContextAttrs(p.Effective())
		var local []slog.Attr
		if ctx != nil {
			local = logAttrsFromContext(ctx)
		}
		if len(inherited) == 0 && len(local) == 0 {
			return next(ctx, record)
		}

		attrs := MergeAttrs(inherited, local)

		recordAttrs := make([]slog.Attr, 0, record.NumAttrs())
		record.Attrs(func(a slog.Attr) bool {
			recordAttrs = append(recordAttrs, a)
			return true
		})
		attrs = MergeAttrs(attrs, recordAttrs)

		enriched := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
		enriched.AddAttrs(attrs...)
		return next(ctx, enriched)
	})
}
