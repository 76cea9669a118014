// Package vlog implements the structured terminal logger described in
// spec.md §4.7: log(level, message), task_running/task_suspend,
// timer_pending/timer_complete, pause/resume, with a format that adapts to
// whether stderr is a TTY.
//
// Grounded on the teacher's terminal-handling code
// (internal/evaluator/builtins_term.go, builtins_term_unix.go): TTY
// detection via github.com/mattn/go-isatty, and a mutex-guarded
// double-buffering idiom (termBufferStart/termBufferFlush in the teacher)
// generalized here into Logger.mu serializing writes so task/timer lines
// never interleave mid-write with a concurrent log() call.
package vlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
)

// Level orders log severities, least to most severe.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func ParseLevel(s string) (Level, bool) {
	switch s {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Format selects the rendering style (spec.md §6: "auto|basic|pretty").
type Format int

const (
	FormatAuto Format = iota
	FormatBasic
	FormatPretty
)

// TaskKey identifies a running task for later Suspend calls.
type TaskKey uint64

// Logger emits structured events to an output stream, matching the
// contract of spec.md §4.7. The Context (internal/rtctx) holds it behind a
// detachable handle so terminal cleanup happens before the Task Manager
// and Store are torn down.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	pretty bool
	closed int32

	nextKey atomic.Uint64
	running map[TaskKey]string
	paused  bool
}

// New creates a Logger writing to out at the given level. If format is
// FormatAuto, pretty rendering is chosen when out is a terminal (matching
// the teacher's isatty-gated behavior).
func New(out *os.File, level Level, format Format) *Logger {
	pretty := format == FormatPretty
	if format == FormatAuto {
		pretty = isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	}
	return &Logger{
		out:     out,
		level:   level,
		pretty:  pretty,
		running: make(map[TaskKey]string),
	}
}

func (l *Logger) closedFlag() bool {
	return atomic.LoadInt32(&l.closed) == 1
}

// Close detaches the logger. Subsequent calls are no-ops, matching the
// spec's requirement that terminal cleanup happen promptly and before the
// runtime it was attached to disappears (spec.md §4.7).
func (l *Logger) Close() {
	atomic.StoreInt32(&l.closed, 1)
}

// Log emits a single structured log line (spec.md §4.7: "log(level,
// message)").
func (l *Logger) Log(level Level, message string) {
	if l == nil || l.closedFlag() || level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.paused {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	if l.pretty {
		fmt.Fprintf(l.out, "\x1b[2m%s\x1b[0m %-5s %s\n", ts, level, message)
	} else {
		fmt.Fprintf(l.out, "%s [%s] %s\n", ts, level, message)
	}
}

// TaskRunning records that a task named `name` has started, returning a
// key for a later TaskSuspend call (spec.md §4.7).
func (l *Logger) TaskRunning(name string) TaskKey {
	if l == nil || l.closedFlag() {
		return 0
	}
	key := TaskKey(l.nextKey.Add(1))
	l.mu.Lock()
	l.running[key] = name
	n := len(l.running)
	l.mu.Unlock()
	if l.level <= LevelDebug {
		l.Log(LevelDebug, fmt.Sprintf("task %q running (%d active)", name, n))
	}
	return key
}

// TaskSuspend records that the task identified by key has suspended.
func (l *Logger) TaskSuspend(key TaskKey) {
	if l == nil || l.closedFlag() {
		return
	}
	l.mu.Lock()
	name := l.running[key]
	delete(l.running, key)
	l.mu.Unlock()
	if l.level <= LevelDebug {
		l.Log(LevelDebug, fmt.Sprintf("task %q suspended", name))
	}
}

// TimerPending records that a timer has been scheduled.
func (l *Logger) TimerPending(id string) {
	l.Log(LevelDebug, fmt.Sprintf("timer %q pending", id))
}

// TimerComplete records that a timer fired after the given duration.
func (l *Logger) TimerComplete(id string, d time.Duration) {
	l.Log(LevelDebug, fmt.Sprintf("timer %q complete (%s)", id, d))
}

// Pause suspends rendering (e.g. while an interactive sub-process owns the
// terminal); Resume restores it.
func (l *Logger) Pause() {
	l.mu.Lock()
	l.paused = true
	l.mu.Unlock()
}

func (l *Logger) Resume() {
	l.mu.Lock()
	l.paused = false
	l.mu.Unlock()
}
