package operations

import (
	"sync"
	"time"
)

// ProgressTracker counts finished steps of a run
type ProgressTracker struct {
	mu        sync.Mutex
	total     int
	current   int
	startTime time.Time
}

// NewProgressTracker creates a tracker for total steps
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{total: total, startTime: time.Now()}
}

// Increment records one more finished step
func (p *ProgressTracker) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current < p.total {
		p.current++
	}
}

// Percentage returns the finished share in [0, 100]
func (p *ProgressTracker) Percentage() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total == 0 {
		return 100
	}
	return float64(p.current) / float64(p.total) * 100
}

// ETA estimates the time until the remaining steps finish
func (p *ProgressTracker) ETA() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == 0 || p.current >= p.total {
		return 0
	}
	elapsed := time.Since(p.startTime)
	perStep := elapsed / time.Duration(p.current)
	return perStep * time.Duration(p.total-p.current)
}
