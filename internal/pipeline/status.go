// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

package pipeline

import (
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/ZSC714725/xrecord/internal/process"
)

// Pipeline phases
const (
	PhaseIdle    = "idle"
	PhaseCapture = "capture"
	PhaseEncode  = "encode"
	PhaseDone    = "done"
	PhaseFailed  = "failed"
)

// Status is a point-in-time view of a run.
type Status struct {
	ID        string
	Phase     string
	Elapsed   time.Duration
	Total     time.Duration
	CPU       float64
	Memory    uint64
	Output    string
	StartedAt time.Time
}

// State tracks the live status of one run for concurrent readers and
// carries the handle used to request a graceful stop. The pipeline
// goroutine writes, everyone else reads.
type State struct {
	mu      sync.RWMutex
	id      string
	phase   string
	elapsed time.Duration
	total   time.Duration
	cpu     float64
	memory  uint64
	output  string
	started time.Time
	proc    *process.Proc
}

// NewState creates a State with a fresh run id.
func NewState() *State {
	return &State{
		id:      shortuuid.New(),
		phase:   PhaseIdle,
		started: time.Now(),
	}
}

// ID returns the run id.
func (s *State) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Status returns a snapshot.
func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		ID:        s.id,
		Phase:     s.phase,
		Elapsed:   s.elapsed,
		Total:     s.total,
		CPU:       s.cpu,
		Memory:    s.memory,
		Output:    s.output,
		StartedAt: s.started,
	}
}

// Stop requests a graceful stop of the active child, if any. During
// capture this ends the recording, during encode it aborts the run.
func (s *State) Stop() {
	s.mu.RLock()
	proc := s.proc
	s.mu.RUnlock()
	if proc != nil {
		proc.Terminate()
	}
}

// Attach registers the running child of the current stage.
func (s *State) Attach(p *process.Proc) {
	s.mu.Lock()
	s.proc = p
	s.elapsed = 0
	s.mu.Unlock()
}

// Progress records a live sample from the current stage.
func (s *State) Progress(elapsed time.Duration, cpu float64, memory uint64) {
	s.mu.Lock()
	s.elapsed = elapsed
	s.cpu = cpu
	s.memory = memory
	s.mu.Unlock()
}

func (s *State) setPhase(phase string) {
	s.mu.Lock()
	s.phase = phase
	s.mu.Unlock()
}

func (s *State) setTotal(d time.Duration) {
	s.mu.Lock()
	s.total = d
	s.mu.Unlock()
}

func (s *State) setOutput(path string) {
	s.mu.Lock()
	s.output = path
	s.mu.Unlock()
}
