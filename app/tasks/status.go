package tasks

import (
	"sort"
	"sync"
	"time"
)

// A poller is reported unhealthy once this many cycles fail in a row.
const unhealthyThreshold = 10

// PollCounts accumulates admission outcomes across a poller's lifetime.
type PollCounts struct {
	Admitted   int `json:"admitted"`
	Duplicates int `json:"duplicates"`
	Stale      int `json:"stale"`
	Undated    int `json:"undated"`
	Failed     int `json:"failed"`
}

// SourceStatus is a snapshot of one poller's health and counters. Channels
// lists the channel usernames behind a shared chat poller.
type SourceStatus struct {
	Name              string     `json:"name"`
	Type              string     `json:"type"`
	Channels          []string   `json:"channels,omitempty"`
	LastPollAt        *time.Time `json:"last_poll_at,omitempty"`
	ConsecutiveErrors int        `json:"consecutive_errors"`
	Healthy           bool       `json:"healthy"`
	Counts            PollCounts `json:"counts"`
}

// Registry tracks per-poller status for the stats endpoint. Pollers keep
// running when unhealthy; the flag only surfaces the condition.
type Registry struct {
	mu       sync.Mutex
	statuses map[string]*SourceStatus
}

func NewRegistry() *Registry {
	return &Registry{
		statuses: make(map[string]*SourceStatus),
	}
}

func (r *Registry) Add(name, sourceType string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.statuses[name] = &SourceStatus{
		Name: name,
		Type: sourceType,
	}
}

// SetChannels attaches the channel list to a poller that services several
// sources through one stream.
func (r *Registry) SetChannels(name string, channels []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.statuses[name]
	if !ok {
		return
	}
	status.Channels = channels
}

// RecordPoll closes out one completed poll cycle. A cycle with failed
// deliveries counts against the consecutive-error streak; a clean cycle
// resets it.
func (r *Registry) RecordPoll(name string, counts PollCounts) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.statuses[name]
	if !ok {
		return
	}

	now := time.Now().UTC()
	status.LastPollAt = &now
	if counts.Failed > 0 {
		status.ConsecutiveErrors++
	} else {
		status.ConsecutiveErrors = 0
	}
	status.Counts.Admitted += counts.Admitted
	status.Counts.Duplicates += counts.Duplicates
	status.Counts.Stale += counts.Stale
	status.Counts.Undated += counts.Undated
	status.Counts.Failed += counts.Failed
}

func (r *Registry) RecordFailure(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.statuses[name]
	if !ok {
		return
	}

	now := time.Now().UTC()
	status.LastPollAt = &now
	status.ConsecutiveErrors++
}

func (r *Registry) ConsecutiveErrors(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.statuses[name]
	if !ok {
		return 0
	}
	return status.ConsecutiveErrors
}

// Snapshot returns copies of all statuses with the healthy flag computed.
func (r *Registry) Snapshot() []SourceStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make([]SourceStatus, 0, len(r.statuses))
	for _, status := range r.statuses {
		s := *status
		s.Healthy = s.ConsecutiveErrors < unhealthyThreshold
		snapshot = append(snapshot, s)
	}

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Name < snapshot[j].Name
	})

	return snapshot
}
