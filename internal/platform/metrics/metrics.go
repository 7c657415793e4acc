package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps process-wide counters. A nil *Collector records nothing.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64
	feedbackCreated uint64
	jobsCompleted   uint64
	jobsFailed      uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) FeedbackCreated(n int) {
	if c == nil || n <= 0 {
		return
	}
	atomic.AddUint64(&c.feedbackCreated, uint64(n))
}

func (c *Collector) RecordJob(ok bool) {
	if c == nil {
		return
	}
	if ok {
		atomic.AddUint64(&c.jobsCompleted, 1)
		return
	}
	atomic.AddUint64(&c.jobsFailed, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal": atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
		"feedbackCreated":  atomic.LoadUint64(&c.feedbackCreated),
		"jobsCompleted":    atomic.LoadUint64(&c.jobsCompleted),
		"jobsFailed":       atomic.LoadUint64(&c.jobsFailed),
	}
}
