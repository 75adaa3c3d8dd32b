package service

import "time"

// LookupSource says where FetchOrder found the order.
type LookupSource string

const (
	SourceCache LookupSource = "cache"
	SourceDB    LookupSource = "db"
	// SourceNone is reported when the order was in neither the cache nor
	// the store, or the store call failed.
	SourceNone LookupSource = "none"
)

// LookupStats carries read-path timings in milliseconds. DBMs stays zero on
// a cache hit.
type LookupStats struct {
	Source  LookupSource
	CacheMs float64
	DBMs    float64
}

// WriteStats carries the time spent waiting on the store insert.
type WriteStats struct {
	DBWriteMs float64
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
