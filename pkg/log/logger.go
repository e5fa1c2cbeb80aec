package log

import (
	"log/slog"
	"sync"

	"github.com/samber/lo"
	slogmulti "github.com/samber/slog-multi"

	"code.internetisalie.net/sherpa/pkg/propagate"
)

const FrameworkRootLogger = "sherpa"

const LoggerKey = "logger"

var (
	loggerLevels     = make(map[string]*slog.LevelVar)
	loggerLevelsLock sync.Mutex
)

func SetAllLoggerLevels(level slog.Level) {
	names := func() []string {
		loggerLevelsLock.Lock()
		defer loggerLevelsLock.Unlock()

		return lo.Keys(loggerLevels)
	}()

	for _, name := range names {
		SetLoggerLevel(name, level)
	}
}

func SetLoggerLevel(name string, level slog.Level) {
	GetLoggerLeveler(name).Set(level)
}

func GetLoggerLeveler(name string) *slog.LevelVar {
	loggerLevelsLock.Lock()
	defer loggerLevelsLock.Unlock()

	existingLevel, ok := loggerLevels[name]
	if !ok {
		existingLevel = new(slog.LevelVar)
		loggerLevels[name] = existingLevel
	}

	return existingLevel
}

// NewLogger builds a named logger whose records pass through the propagate
// middleware before reaching the console handler, so every event carries the
// effective context of its call site.
func NewLogger(name string, p *propagate.Propagator, attrs ...slog.Attr) *slog.Logger {
	ho := slog.HandlerOptions{
		Level: GetLoggerLeveler(name),
	}

	console := NewConsoleHandler(&ho)

	handler := slogmulti.
		Pipe(NewPropagateMiddleware(p)).
		Handler(console)

	logger := slog.New(handler)

	// Apply logger name
	logger = logger.With(slog.Attr{
		Key:   LoggerKey,
		Value: slog.StringValue(name),
	})

	// Apply passed attributes
	for _, attr := range attrs {
		logger = logger.With(attr)
	}

	return logger
}

var (
	standardLogger     *slog.Logger
	standardLoggerOnce sync.Once
)

// StandardLogger is the framework logger, wired to the default propagator.
func StandardLogger() *slog.Logger {
	standardLoggerOnce.Do(func() {
		standardLogger = NewLogger(FrameworkRootLogger, propagate.Default())
	})

	return standardLogger
}
