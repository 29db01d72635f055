// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

//go:build linux

package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ZSC714725/xrecord/internal/config"
	"github.com/ZSC714725/xrecord/internal/ffmpeg"
	"github.com/ZSC714725/xrecord/internal/progress"
	"github.com/ZSC714725/xrecord/internal/xwininfo"
)

// writeFFmpeg builds a fake ffmpeg answering the skill probes, acting
// out capture in the x11grab branch and encode in the fallthrough.
func writeFFmpeg(t *testing.T, capture, encode string) *ffmpeg.FFmpeg {
	t.Helper()
	script := `#!/bin/sh
case "$*" in
*-version*)
echo 'ffmpeg version 6.1.1 Copyright (c) 2000-2023 the FFmpeg developers'
exit 0
;;
*-encoders*)
exit 0
;;
*-devices*)
exit 0
;;
*x11grab*)
` + capture + `
;;
*)
` + encode + `
;;
esac
`
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	f, err := ffmpeg.New(ffmpeg.Config{Binary: path})
	require.NoError(t, err)
	return f
}

var testGeometry = xwininfo.Geometry{X: 0, Y: 0, Width: 820, Height: 580}

var testOptions = []config.Option{
	{Name: "-c:v", Value: "libtheora"},
	{Name: "-q:v", Value: "7"},
	{Name: "-f", Value: "ogg"},
}

const captureOK = `for a in "$@"; do last=$a; done
: > "$last"
echo 'frame=  125 fps=25 q=0.0 size= 512KiB time=00:00:05.00 bitrate=838.9kbits/s speed=1x' 1>&2
exit 0`

const encodeOK = `echo 'time=00:00:02.50' 1>&2
echo 'time=00:00:05.00' 1>&2
printf 'OGGDATA'
exit 0`

func testConfig(t *testing.T, f *ffmpeg.FFmpeg) (Config, string, string) {
	t.Helper()
	cacheRoot := filepath.Join(t.TempDir(), "cache")
	outDir := t.TempDir()
	return Config{
		FFmpeg:    f,
		CacheRoot: cacheRoot,
		Pattern:   filepath.Join(outDir, "rec-{}.ogv"),
		Framerate: 25,
		Display:   ":99",
		Geometry:  testGeometry,
		Options:   testOptions,
	}, cacheRoot, filepath.Join(outDir, "rec-0.ogv")
}

func assertCacheEmpty(t *testing.T, cacheRoot string) {
	t.Helper()
	entries, err := os.ReadDir(cacheRoot)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	assert.Empty(t, entries, "the scratch directory must be removed")
}

func TestPipelineRun(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent(), goleak.IgnoreTopFunction("os/signal.signal_recv"))

	cfg, cacheRoot, output := testConfig(t, writeFFmpeg(t, captureOK, encodeOK))
	var rendered bytes.Buffer
	cfg.Progress = progress.NewPrinter(&rendered)

	p := New(cfg)
	require.NoError(t, p.Run())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "OGGDATA", string(data))

	assertCacheEmpty(t, cacheRoot)

	st := p.State().Status()
	assert.Equal(t, PhaseDone, st.Phase)
	assert.Equal(t, output, st.Output)
	assert.Equal(t, 5*time.Second, st.Total)

	want := "\r\x1b[Kencoding:   0.0%" +
		"\r\x1b[Kencoding:  50.0%" +
		"\r\x1b[Kencoding: 100.0%" +
		"\r\x1b[Kencoding: 100.0%\n"
	assert.Equal(t, want, rendered.String())
}

func TestPipelineEncodeFailureCleansUp(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent(), goleak.IgnoreTopFunction("os/signal.signal_recv"))

	encode := `printf 'PART'
exit 9`
	cfg, cacheRoot, output := testConfig(t, writeFFmpeg(t, captureOK, encode))

	p := New(cfg)
	err := p.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode:")

	var exitErr *ffmpeg.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 9, exitErr.Code)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "a partial output must be deleted")
	assertCacheEmpty(t, cacheRoot)
	assert.Equal(t, PhaseFailed, p.State().Status().Phase)
}

func TestPipelineCaptureFailureCleansUp(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent(), goleak.IgnoreTopFunction("os/signal.signal_recv"))

	capture := `echo 'Cannot open display :99' 1>&2
exit 7`
	cfg, cacheRoot, output := testConfig(t, writeFFmpeg(t, capture, encodeOK))

	p := New(cfg)
	err := p.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capture:")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
	assertCacheEmpty(t, cacheRoot)
	assert.Equal(t, PhaseFailed, p.State().Status().Phase)
}

func TestPipelineRunsWithoutDuration(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent(), goleak.IgnoreTopFunction("os/signal.signal_recv"))

	capture := `for a in "$@"; do last=$a; done
: > "$last"
exit 0`
	cfg, cacheRoot, output := testConfig(t, writeFFmpeg(t, capture, encodeOK))
	var rendered bytes.Buffer
	cfg.Progress = progress.NewPrinter(&rendered)

	p := New(cfg)
	require.NoError(t, p.Run())

	_, err := os.Stat(output)
	assert.NoError(t, err)
	assertCacheEmpty(t, cacheRoot)
	assert.Zero(t, rendered.Len(), "no discovered duration means no progress line")
}

func TestPipelineStopDuringCapture(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent(), goleak.IgnoreTopFunction("os/signal.signal_recv"))

	// the capture child flushes a final stamp and exits 255 on TERM,
	// the encode child shrugs stray TERMs off
	capture := `for a in "$@"; do last=$a; done
: > "$last"
trap 'echo time=00:00:03.00 1>&2; exit 255' TERM
n=0
while [ $n -lt 100 ]; do sleep 0.05; n=$((n+1)); done
exit 1`
	encode := `trap '' TERM
` + encodeOK

	cfg, cacheRoot, output := testConfig(t, writeFFmpeg(t, capture, encode))
	state := NewState()
	cfg.State = state

	p := New(cfg)

	quit := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-quit:
				return
			case <-time.After(20 * time.Millisecond):
				switch state.Status().Phase {
				case PhaseIdle:
					// pipeline not under way yet
				case PhaseCapture:
					state.Stop()
				default:
					return
				}
			}
		}
	}()

	err := p.Run()
	close(quit)
	<-stopped

	require.NoError(t, err, "a stop during capture ends the recording, not the run")

	_, statErr := os.Stat(output)
	assert.NoError(t, statErr)
	assertCacheEmpty(t, cacheRoot)

	st := state.Status()
	assert.Equal(t, PhaseDone, st.Phase)
	assert.Equal(t, 3*time.Second, st.Total)
}

func TestPipelineOutputAllocationFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent(), goleak.IgnoreTopFunction("os/signal.signal_recv"))

	cfg, cacheRoot, _ := testConfig(t, writeFFmpeg(t, captureOK, encodeOK))
	cfg.Pattern = filepath.Join(t.TempDir(), "missing", "rec-{}.ogv")

	p := New(cfg)
	err := p.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allocate output:")
	assertCacheEmpty(t, cacheRoot)
	assert.Equal(t, PhaseFailed, p.State().Status().Phase)
}

func TestPipelineCacheDirFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent(), goleak.IgnoreTopFunction("os/signal.signal_recv"))

	cfg, _, output := testConfig(t, writeFFmpeg(t, captureOK, encodeOK))
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	cfg.CacheRoot = blocker

	p := New(cfg)
	err := p.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create cache dir:")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "no output may be allocated without a scratch directory")
	assert.Equal(t, PhaseFailed, p.State().Status().Phase)
}
