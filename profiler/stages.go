// Package profiler records per-stage wall-clock timings of a pipeline run.
package profiler

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Stages tracks how long each named stage of a single run took.
//
// Stages are reported in the order they were first started. A stage started
// more than once accumulates its durations.
type Stages struct {
	mu    sync.Mutex
	order []string
	times map[string]time.Duration
	now   func() time.Time
}

// NewStages returns an empty stage tracker.
func NewStages() *Stages {
	return &Stages{
		times: make(map[string]time.Duration),
		now:   time.Now,
	}
}

// Start begins timing a stage.
//
// Arguments:
//   - name: The stage name, e.g. "grayscale".
//
// Returns:
//   - A function to call when the stage completes.
//
// @example
// done := stages.Start("detect")
// kps, desc, err := detector.Detect(gray)
// done()
func (s *Stages) Start(name string) func() {
	start := s.now()
	s.mu.Lock()
	if _, ok := s.times[name]; !ok {
		s.order = append(s.order, name)
		s.times[name] = 0
	}
	s.mu.Unlock()

	return func() {
		elapsed := s.now().Sub(start)
		s.mu.Lock()
		s.times[name] += elapsed
		s.mu.Unlock()
	}
}

// Names returns the stage names in first-start order.
func (s *Stages) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Durations returns a snapshot of the accumulated stage durations.
func (s *Stages) Durations() map[string]time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]time.Duration, len(s.times))
	for k, v := range s.times {
		out[k] = v
	}
	return out
}

// Total returns the sum of all stage durations.
func (s *Stages) Total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total time.Duration
	for _, d := range s.times {
		total += d
	}
	return total
}

// MarshalZerologObject lets a Stages value be logged with Object().
func (s *Stages) MarshalZerologObject(e *zerolog.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range s.order {
		e.Dur(name, s.times[name])
	}
}
