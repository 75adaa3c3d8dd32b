package observability

import (
	"net/http"
	"strconv"
	"strings"
)

// AppendServerTiming adds one Server-Timing metric. Entries with neither a
// positive duration nor a description are skipped.
func AppendServerTiming(h http.Header, name string, durMs float64, desc string) {
	if durMs <= 0 && desc == "" {
		return
	}

	var b strings.Builder
	b.WriteString(name)
	if durMs > 0 {
		b.WriteString(";dur=")
		b.WriteString(formatMs(durMs))
	}
	if desc != "" {
		b.WriteString(";desc=")
		b.WriteString(strconv.Quote(desc))
	}
	h.Add("Server-Timing", b.String())
}

// SetIfPos sets key to ms, leaving the header untouched when ms is not positive.
func SetIfPos(h http.Header, key string, ms float64) {
	if ms > 0 {
		h.Set(key, formatMs(ms))
	}
}

func formatMs(ms float64) string { return strconv.FormatFloat(ms, 'f', 2, 64) }
