// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

package parse

import (
	"regexp"
	"strconv"
	"sync"
	"time"
)

var reTime = regexp.MustCompile(`time=([0-9]{2}):([0-9]{2}):([0-9]{2})\.([0-9]{2})`) // ffmpeg 固定两位补零

// ExtractTime returns the duration encoded in the first time=HH:MM:SS.CC
// stamp on the line. The fractional part is centiseconds.
func ExtractTime(line string) (time.Duration, bool) {
	m := reTime.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}

	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	cs, _ := strconv.Atoi(m[4])

	d := time.Duration(h)*time.Hour +
		time.Duration(min)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(cs)*10*time.Millisecond
	return d, true
}

// Tracker remembers the most recent timestamp seen on a stream. Reads
// are safe while a single goroutine feeds lines.
type Tracker struct {
	lock sync.RWMutex
	last time.Duration
	seen bool
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Parse scans one stderr line, recording any timestamp it carries.
func (t *Tracker) Parse(line string) (time.Duration, bool) {
	d, ok := ExtractTime(line)
	if !ok {
		return 0, false
	}

	t.lock.Lock()
	t.last = d
	t.seen = true
	t.lock.Unlock()
	return d, true
}

// Last returns the most recent timestamp and whether one was seen at all.
func (t *Tracker) Last() (time.Duration, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.last, t.seen
}
