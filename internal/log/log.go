// federails
// Copyright (C) federails authors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package log provides logging for the federation engine: an Entry
// type carrying codeberg.org/gruf/go-kv field sets, a simple atomic
// level gate, and flat Infof-style helpers. The pipeline stages
// (parser, dispatcher, queue, scheduler) log through the flat helpers.
package log

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"codeberg.org/gruf/go-kv"
)

// Level mirrors codeberg.org/gruf/go-logger/v2/level's small integer scale.
type Level int32

const (
	TRACE Level = iota
	DEBUG
	INFO
	WARN
	ERROR
	FATAL
)

// ParseLevel maps a config string ("trace".."fatal", case
// insensitive) to a Level, defaulting to INFO for anything
// unrecognized rather than erroring out at startup over a typo.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "trace":
		return TRACE
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

func (l Level) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

var level atomic.Int32

func init() {
	level.Store(int32(INFO))
}

// SetLevel sets the process-wide minimum log level.
func SetLevel(l Level) { level.Store(int32(l)) }

// LevelGet returns the process-wide minimum log level.
func LevelGet() Level { return Level(level.Load()) }

// ctxKey carries a logger instance through a request-scoped context.
type ctxKey struct{}

// Entry is a single log line builder: a timestamp, level, caller,
// message and field set, flushed to stderr on Send().
type Entry struct {
	lvl    Level
	caller string
	fields []kv.Field
}

// WithContext returns an Entry pre-populated from fields attached
// earlier in the request's lifetime via WithFields/Context, if any.
func WithContext(ctx context.Context) *Entry {
	if e, ok := ctx.Value(ctxKey{}).(*Entry); ok {
		cp := *e
		cp.fields = append([]kv.Field(nil), e.fields...)
		return &cp
	}
	return &Entry{}
}

// Context returns a copy of ctx carrying e's current fields, so that
// downstream WithContext() calls inherit them.
func (e *Entry) Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, e)
}

// WithFields appends fields to the entry and returns it for chaining.
func (e *Entry) WithFields(fields ...kv.Field) *Entry {
	e.fields = append(e.fields, fields...)
	return e
}

func (e *Entry) send(lvl Level, msg string) {
	if lvl < LevelGet() {
		return
	}
	ts := time.Now().UTC().Format(time.RFC3339)
	line := ts + " " + lvl.String() + " " + msg
	for _, f := range e.fields {
		line += " " + f.String()
	}
	if e.caller != "" {
		line += " caller=" + e.caller
	}
	fmt.Fprintln(os.Stderr, line)
	if lvl == FATAL {
		os.Exit(1)
	}
}

func (e *Entry) Trace(msg string) { e.send(TRACE, msg) }
func (e *Entry) Debug(msg string) { e.send(DEBUG, msg) }
func (e *Entry) Info(msg string)  { e.send(INFO, msg) }
func (e *Entry) Warn(msg string)  { e.send(WARN, msg) }
func (e *Entry) Error(msg string) { e.send(ERROR, msg) }

// package-level convenience funcs for flat log.Infof(...)-style call
// sites used throughout the pipeline.

func Tracef(format string, args ...any) { (&Entry{caller: Caller(3)}).send(TRACE, fmt.Sprintf(format, args...)) }
func Debugf(format string, args ...any) { (&Entry{caller: Caller(3)}).send(DEBUG, fmt.Sprintf(format, args...)) }
func Infof(format string, args ...any)  { (&Entry{caller: Caller(3)}).send(INFO, fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { (&Entry{caller: Caller(3)}).send(WARN, fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { (&Entry{caller: Caller(3)}).send(ERROR, fmt.Sprintf(format, args...)) }
func Panicf(format string, args ...any) { panic(fmt.Sprintf(format, args...)) }

func Info(args ...any)  { (&Entry{caller: Caller(3)}).send(INFO, fmt.Sprint(args...)) }
func Error(args ...any) { (&Entry{caller: Caller(3)}).send(ERROR, fmt.Sprint(args...)) }
func Warn(args ...any)  { (&Entry{caller: Caller(3)}).send(WARN, fmt.Sprint(args...)) }
func Debug(args ...any) { (&Entry{caller: Caller(3)}).send(DEBUG, fmt.Sprint(args...)) }
