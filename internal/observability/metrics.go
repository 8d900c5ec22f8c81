package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	mailCount    map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		mailCount:    make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordMail increments delivery counters per mail kind and outcome.
func (m *Metrics) RecordMail(kind string, ok bool) {
	if m == nil {
		return
	}
	outcome := "sent"
	if !ok {
		outcome = "failed"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mailCount[kind+"|"+outcome]++
}

// Snapshot returns a copy of all counters for the debug endpoint.
func (m *Metrics) Snapshot() (requests, errors, mail map[string]int64) {
	if m == nil {
		return nil, nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyCounts(m.requestCount), copyCounts(m.errorCount), copyCounts(m.mailCount)
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
