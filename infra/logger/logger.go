package logger

import (
	"os"

	corelogger "github.com/RoMaSystems-source/Leitstellenspiel-bot/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a Logger for the given component at the level named by the
// LSB_LOG_LEVEL environment variable. Components wired through the service
// use the configured level instead, see config.LoggingConfig.
func New(component string) Logger {
	return NewZerologLogger(component, os.Getenv("LSB_LOG_LEVEL"))
}
