// Copyright 2019, Maxim Lamare.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogContext provides the identifying fields attached to every log entry
type LogContext interface {
	AppName() string
	SessionID() string
	LogRootDir() string
}

// BasicLogContext is a minimal LogContext for code paths that have no
// richer context of their own
type BasicLogContext struct {
	sessionID string
}

// AppName returns the application name
func (c *BasicLogContext) AppName() string {
	return "s3-extract"
}

// SessionID returns a session ID, creating one if needed
func (c *BasicLogContext) SessionID() string {
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *BasicLogContext) LogRootDir() string {
	return ""
}

// Severity classifies audit messages
type Severity int8

// Severity levels, most to least verbose
const (
	DEBUG Severity = iota
	INFO
	WARNING
	ERROR
	FATAL
)

// LogAuditInput captures the parameters of an audit log entry
type LogAuditInput struct {
	Actor    string
	Action   string
	Actee    string
	Message  string
	Severity Severity
}

var logLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
var logger *zap.Logger

func init() {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), logLevel)
	logger = zap.New(core)
	if debug, _ := IsDebugEnabled(); debug {
		logLevel.SetLevel(zapcore.DebugLevel)
	}
}

// Logger exposes the underlying zap logger, for callers that re-level
// external process output line by line
func Logger() *zap.Logger {
	return logger
}

// SetDebugLogging toggles debug-level output at runtime
func SetDebugLogging(enabled bool) {
	if enabled {
		logLevel.SetLevel(zapcore.DebugLevel)
	} else {
		logLevel.SetLevel(zapcore.InfoLevel)
	}
}

func contextFields(ctx LogContext) []zap.Field {
	if ctx == nil {
		return nil
	}
	return []zap.Field{
		zap.String("app", ctx.AppName()),
		zap.String("session", ctx.SessionID()),
	}
}

// LogInfo logs an informational message with its context fields
func LogInfo(ctx LogContext, message string) {
	logger.Info(message, contextFields(ctx)...)
}

// LogAlert logs a message that needs attention but is not a failure
func LogAlert(ctx LogContext, message string) {
	logger.Warn(message, contextFields(ctx)...)
}

// LogSimpleErr logs an error with a human-readable lead-in message
func LogSimpleErr(ctx LogContext, message string, err error) {
	logger.Error(message, append(contextFields(ctx), zap.Error(err))...)
}

// LogAudit logs who did what to what, for actions that cross a process or
// filesystem boundary
func LogAudit(ctx LogContext, input LogAuditInput) {
	fields := append(contextFields(ctx),
		zap.String("actor", input.Actor),
		zap.String("action", input.Action),
		zap.String("actee", input.Actee),
	)
	switch input.Severity {
	case DEBUG:
		logger.Debug(input.Message, fields...)
	case WARNING:
		logger.Warn(input.Message, fields...)
	case ERROR, FATAL:
		logger.Error(input.Message, fields...)
	default:
		logger.Info(input.Message, fields...)
	}
}
