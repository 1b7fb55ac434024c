package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Frames attaches a list of frame numbers, rendered as compact ranges such
// as "1004-1005,1010" by both handlers.
func Frames(key string, frames []int) Attr {
	return slog.Any(key, frameList(frames))
}

type frameList []int

func (f frameList) LogValue() slog.Value {
	return slog.StringValue(compactFrames(f))
}

// compactFrames collapses runs of consecutive frames. Input is expected in
// ascending order, as the scanner reports it.
func compactFrames(frames []int) string {
	if len(frames) == 0 {
		return "none"
	}
	var b strings.Builder
	start, prev := frames[0], frames[0]
	flush := func() {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(start))
		if prev != start {
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(prev))
		}
	}
	for _, f := range frames[1:] {
		if f == prev+1 {
			prev = f
			continue
		}
		flush()
		start, prev = f, f
	}
	flush()
	return b.String()
}

// plainValue is the unquoted text of v, used for the component and subject
// fields of the console header.
func plainValue(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	}
	return v.String()
}

// consoleValue renders a field for a "key: value" console line. Durations
// are rounded to milliseconds and frame ranges print in their start-end form.
func consoleValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return quoteIfNeeded(x.Error())
		case fmt.Stringer:
			return quoteIfNeeded(x.String())
		case []int:
			return compactFrames(x)
		}
	}
	return quoteIfNeeded(plainValue(v))
}

// quoteIfNeeded quotes values that would be ambiguous on one line: empty
// strings and anything with whitespace, quotes or line breaks. Render paths
// with spaces come out quoted so they can be pasted into a shell.
func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
