package observability

// Metrics receives timings and counters from the service, HTTP and Kafka layers.
type Metrics interface {
	ObserveLookup(source string, cacheMs, dbMs float64)
	ObserveWrite(dbWriteMs float64)
	ObserveOutcome(op, outcome string)
	ObserveHTTP(method, route string, status int, durMs float64)
	ObserveKafka(processMs float64, ok bool)
	IncCacheHit()
	IncCacheMiss()
}

type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) ObserveLookup(string, float64, float64)   {}
func (Noop) ObserveWrite(float64)                     {}
func (Noop) ObserveOutcome(string, string)            {}
func (Noop) ObserveHTTP(string, string, int, float64) {}
func (Noop) ObserveKafka(float64, bool)               {}
func (Noop) IncCacheHit()                             {}
func (Noop) IncCacheMiss()                            {}
