package observability

import "sync"

type observe struct {
	Kind    string  `json:"kind"`
	Source  string  `json:"source,omitempty"`
	Op      string  `json:"op,omitempty"`
	Outcome string  `json:"outcome,omitempty"`
	Method  string  `json:"method,omitempty"`
	Route   string  `json:"route,omitempty"`
	Status  int     `json:"status,omitempty"`
	CacheMs float64 `json:"cache_ms,omitempty"`
	DBMs    float64 `json:"db_ms,omitempty"`
	DurMs   float64 `json:"dur_ms,omitempty"`
	OK      bool    `json:"ok,omitempty"`
}

// Inmem keeps the last max observations and running totals. It backs the
// /debug/stats endpoint.
type Inmem struct {
	mu     sync.Mutex
	last   []*observe
	max    int
	totals struct {
		cacheHits, cacheMiss int
		outcomes             map[string]int
	}
}

type Snapshot struct {
	CacheHits   int            `json:"cache_hits"`
	CacheMisses int            `json:"cache_misses"`
	Outcomes    map[string]int `json:"outcomes"`
	Recent      []observe      `json:"recent"`
}

func NewInmem(max int) *Inmem {
	return &Inmem{
		max: max,
	}
}

func (m *Inmem) push(v *observe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[1:]
	}
}

func (m *Inmem) ObserveLookup(source string, cacheMs, dbMs float64) {
	m.push(&observe{Kind: "lookup", Source: source, CacheMs: cacheMs, DBMs: dbMs})
}

func (m *Inmem) ObserveWrite(dbWriteMs float64) {
	m.push(&observe{Kind: "write", DBMs: dbWriteMs})
}

func (m *Inmem) ObserveOutcome(op, outcome string) {
	m.mu.Lock()
	if m.totals.outcomes == nil {
		m.totals.outcomes = make(map[string]int)
	}
	m.totals.outcomes[op+"."+outcome]++
	m.mu.Unlock()
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(&observe{Kind: "http", Method: method, Route: route, Status: status, DurMs: durMs})
}

func (m *Inmem) ObserveKafka(processMs float64, ok bool) {
	m.push(&observe{Kind: "kafka", DurMs: processMs, OK: ok})
}

func (m *Inmem) IncCacheHit() {
	m.mu.Lock()
	m.totals.cacheHits++
	m.mu.Unlock()
}

func (m *Inmem) IncCacheMiss() {
	m.mu.Lock()
	m.totals.cacheMiss++
	m.mu.Unlock()
}

func (m *Inmem) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		CacheHits:   m.totals.cacheHits,
		CacheMisses: m.totals.cacheMiss,
		Outcomes:    make(map[string]int, len(m.totals.outcomes)),
		Recent:      make([]observe, 0, len(m.last)),
	}
	for k, v := range m.totals.outcomes {
		s.Outcomes[k] = v
	}
	for _, o := range m.last {
		s.Recent = append(s.Recent, *o)
	}
	return s
}
