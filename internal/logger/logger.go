// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Logger provides a simple logging interface
type Logger interface {
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

var (
	once sync.Once
	base zerolog.Logger
)

// 日志走 stderr，stdout 留给进度条
func configure() zerolog.Logger {
	once.Do(func() {
		level := zerolog.InfoLevel
		if env := os.Getenv("LOG_LEVEL"); env != "" {
			if parsed, err := zerolog.ParseLevel(env); err == nil {
				level = parsed
			}
		}
		zerolog.SetGlobalLevel(level)
		zerolog.TimeFieldFormat = time.RFC3339

		var writer io.Writer = os.Stderr
		if term.IsTerminal(int(os.Stderr.Fd())) {
			writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		}

		base = zerolog.New(writer).With().Timestamp().Logger()
	})
	return base
}

// Verbose lowers the global level to debug.
func Verbose() {
	configure()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

type defaultLogger struct {
	log zerolog.Logger
}

// New returns a Logger tagged with a component name.
func New(component string) Logger {
	l := configure().With().Str("component", component).Logger()
	return &defaultLogger{log: l}
}

func (l *defaultLogger) Info(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

func (l *defaultLogger) Error(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

func (l *defaultLogger) Debug(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &nopLogger{}
}

func (l *nopLogger) Info(format string, args ...interface{})  {}
func (l *nopLogger) Error(format string, args ...interface{}) {}
func (l *nopLogger) Debug(format string, args ...interface{}) {}
