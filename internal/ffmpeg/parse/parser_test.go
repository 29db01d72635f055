// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTime(t *testing.T) {
	tests := []struct {
		name string
		line string
		want time.Duration
		ok   bool
	}{
		{
			name: "real progress line",
			line: "frame=  250 fps= 25 q=-1.0 size=    1024KiB time=00:00:10.04 bitrate= 835.1kbits/s speed=   1x",
			want: 10*time.Second + 40*time.Millisecond,
			ok:   true,
		},
		{
			name: "zero",
			line: "time=00:00:00.00",
			want: 0,
			ok:   true,
		},
		{
			name: "hours and minutes",
			line: "time=01:02:03.45",
			want: time.Hour + 2*time.Minute + 3*time.Second + 450*time.Millisecond,
			ok:   true,
		},
		{
			name: "upper bound",
			line: "time=99:59:59.99",
			want: 99*time.Hour + 59*time.Minute + 59*time.Second + 990*time.Millisecond,
			ok:   true,
		},
		{
			name: "first of several stamps wins",
			line: "time=00:00:01.00 ... time=00:00:09.00",
			want: time.Second,
			ok:   true,
		},
		{
			name: "no stamp",
			line: "Press [q] to stop, [?] for help",
			ok:   false,
		},
		{
			name: "single digit fields do not match",
			line: "time=0:0:1.5",
			ok:   false,
		},
		{
			name: "negative stamp does not match",
			line: "time=-577014:32:22.77",
			ok:   false,
		},
		{
			name: "empty line",
			line: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractTime(tt.line)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrackerRemembersLastStamp(t *testing.T) {
	tr := NewTracker()

	_, seen := tr.Last()
	assert.False(t, seen, "fresh tracker must not report a stamp")

	d, ok := tr.Parse("time=00:00:01.00")
	require.True(t, ok)
	assert.Equal(t, time.Second, d)

	_, ok = tr.Parse("no stamp here")
	assert.False(t, ok)

	last, seen := tr.Last()
	require.True(t, seen)
	assert.Equal(t, time.Second, last, "line without a stamp must not clear the last one")

	_, ok = tr.Parse("time=00:00:02.50")
	require.True(t, ok)

	last, seen = tr.Last()
	require.True(t, seen)
	assert.Equal(t, 2*time.Second+500*time.Millisecond, last)
}
