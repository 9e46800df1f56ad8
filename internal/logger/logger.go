package logger

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Type for the context keys
type contextKeyRequestLoggerType struct{}

var contextKeyRequestLogger = &contextKeyRequestLoggerType{}

const (
	requestIDLoggerKey = "requestID"
	localsLoggerKey    = "logger"
)

// InitLogger sets up the text formatter and the level for all log statements.
// An unknown level falls back to info.
func InitLogger(level string) logrus.Level {
	customFormatter := new(logrus.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	logrus.SetFormatter(customFormatter)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	return logLevel
}

// Default returns a logger without a request ID.
func Default() *logrus.Entry {
	return logrus.NewEntry(logrus.StandardLogger())
}

// ContextWithLogger returns a new context carrying a logger with a fresh request ID, unless the
// given context already carries one.
func ContextWithLogger(ctx context.Context) (context.Context, *logrus.Entry) {
	if ctx == nil {
		ctx = context.Background()
	} else if rlog := loggerFromContext(ctx); rlog != nil {
		return ctx, rlog
	}
	rlog := logrus.WithField(requestIDLoggerKey, uuid.NewString())
	return context.WithValue(ctx, contextKeyRequestLogger, rlog), rlog
}

// ContextWithEntry stores the given entry in the context.
func ContextWithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKeyRequestLogger, entry)
}

func loggerFromContext(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return nil
	}
	rlog, ok := ctx.Value(contextKeyRequestLogger).(*logrus.Entry)
	if !ok {
		return nil
	}
	return rlog
}

// FromContext returns the logger from the context, or the default logger.
func FromContext(ctx context.Context) *logrus.Entry {
	if rlog := loggerFromContext(ctx); rlog != nil {
		return rlog
	}
	return Default()
}

// Middleware attaches a request scoped logger to the fiber context and its user context.
// The request ID is taken from the X-Request-ID response header when the requestid
// middleware ran first.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := string(c.Response().Header.Peek(fiber.HeaderXRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		entry := logrus.WithFields(logrus.Fields{
			requestIDLoggerKey: requestID,
			"method":           c.Method(),
			"path":             c.Path(),
		})
		c.Locals(localsLoggerKey, entry)
		c.SetUserContext(ContextWithEntry(c.UserContext(), entry))
		return c.Next()
	}
}

// FromFiber returns the request logger set by Middleware.
func FromFiber(c *fiber.Ctx) *logrus.Entry {
	if entry, ok := c.Locals(localsLoggerKey).(*logrus.Entry); ok {
		return entry
	}
	return Default()
}
