// Package diagnostics implements the error chain and aggregation machinery
// described in spec.md §7: value errors carry a chain of
// (message, source-location?) contexts, rendered outermost-to-innermost and
// optionally truncated, plus explicit aggregation of independent failures.
//
// Grounded on the teacher's DiagnosticError usage in pkg/cli/entry.go
// (analyzer.AnalyzeNaming(...) returning []*diagnostics.DiagnosticError,
// rendered one per line with a leading "- "), generalized into a full
// chain/aggregate type since the teacher's own diagnostics package was not
// part of the retrieved pack.
package diagnostics

import "strings"

// Kind classifies an Error for propagation policy decisions (spec.md §7).
type Kind int

const (
	KindValue Kind = iota
	KindResolution
	KindType
	KindCancelled
	KindAggregate
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindResolution:
		return "resolution"
	case KindType:
		return "type"
	case KindCancelled:
		return "cancelled"
	case KindAggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// Location anchors an error context to a point in source (spec.md §7:
// "Resolution errors ... reported as value errors anchored to a source
// location").
type Location struct {
	File string
	Line int
	Col  int
}

func (l *Location) String() string {
	if l == nil || l.File == "" {
		return ""
	}
	return l.File + ":" + itoa(l.Line) + ":" + itoa(l.Col)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Frame is one link in an error's context chain.
type Frame struct {
	Message  string
	Location *Location
}

// Error is the core's single error representation: it flows through the
// value graph as the Error kind (spec.md §3/§9) and satisfies the standard
// `error` interface so it composes with idiomatic Go error handling at the
// edges (CLI, plugin ABI).
type Error struct {
	Kind   Kind
	Frames []Frame // outermost first
	Causes []*Error
}

// New creates a root error with a single frame.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Frames: []Frame{{Message: message}}}
}

// Cancelled returns the distinct, never-retried cancellation error
// (spec.md §7).
func Cancelled() *Error {
	return New(KindCancelled, "cancelled")
}

// WithLocation attaches a source location to the outermost frame.
func (e *Error) WithLocation(loc Location) *Error {
	if e == nil || len(e.Frames) == 0 {
		return e
	}
	e.Frames[0].Location = &loc
	return e
}

// Wrap pushes a new outermost context frame onto an existing error,
// preserving the full chain beneath it.
func Wrap(message string, cause *Error) *Error {
	if cause == nil {
		return New(KindValue, message)
	}
	frames := append([]Frame{{Message: message}}, cause.Frames...)
	return &Error{Kind: cause.Kind, Frames: frames, Causes: cause.Causes}
}

// Aggregate combines independent sibling errors into one aggregated error
// (spec.md §7, §8 property 7: "N independent failing children produces one
// aggregate error containing all N"). A single error passed through
// Aggregate is returned unchanged (no superfluous wrapping for N=1).
func Aggregate(errs []*Error) *Error {
	var nonNil []*Error
	for _, e := range errs {
		if e == nil {
			continue
		}
		if e.Kind == KindAggregate {
			nonNil = append(nonNil, e.Causes...)
			continue
		}
		nonNil = append(nonNil, e)
	}
	if len(nonNil) == 0 {
		return nil
	}
	if len(nonNil) == 1 {
		return nonNil[0]
	}
	return &Error{
		Kind:   KindAggregate,
		Frames: []Frame{{Message: "one or more errors occurred"}},
		Causes: nonNil,
	}
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	return e.Render(0)
}

// Render walks the chain outermost-to-innermost: the outermost frame's
// message is the first line, and each inner frame gets one "note:" line,
// optionally truncated after maxFrames note lines (0 means unlimited). Nested
// Causes (from Aggregate) are rendered after the top-level frames.
func (e *Error) Render(maxFrames int) string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if len(e.Frames) > 0 {
		b.WriteString(e.Frames[0].Message)
	}
	shown := 0
	for _, f := range e.Frames[1:] {
		if maxFrames > 0 && shown >= maxFrames {
			b.WriteString("\nnote: ... (truncated)")
			break
		}
		b.WriteString("\nnote: ")
		b.WriteString(f.Message)
		if f.Location != nil {
			b.WriteString(" (")
			b.WriteString(f.Location.String())
			b.WriteString(")")
		}
		shown++
	}
	for _, c := range e.Causes {
		b.WriteString("\n  - ")
		b.WriteString(c.Render(maxFrames))
	}
	return b.String()
}

// IsCancelled reports whether err has the cancellation Kind. Wrap keeps its
// cause's Kind, so a wrapped cancellation counts; an aggregate has
// KindAggregate and never does.
func IsCancelled(err *Error) bool {
	return err != nil && err.Kind == KindCancelled
}
