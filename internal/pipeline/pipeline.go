// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具
//
// Package pipeline sequences the capture and encode stages and owns
// every piece of on-disk state they leave behind.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZSC714725/xrecord/internal/config"
	"github.com/ZSC714725/xrecord/internal/ffmpeg"
	"github.com/ZSC714725/xrecord/internal/logger"
	"github.com/ZSC714725/xrecord/internal/progress"
	"github.com/ZSC714725/xrecord/internal/xwininfo"
)

const initialFileName = "first.mkv"

// Config for one pipeline run
type Config struct {
	FFmpeg    *ffmpeg.FFmpeg
	CacheRoot string
	Pattern   string // output pattern, ~ already expanded
	Framerate int
	Display   string
	Geometry  xwininfo.Geometry
	Options   []config.Option
	Progress  *progress.Printer // nil disables rendering
	Logger    logger.Logger
	State     *State
}

// Pipeline records the configured region into a scratch file, encodes
// it into the allocated output and removes the scratch directory no
// matter how the run ends.
type Pipeline struct {
	ffmpeg    *ffmpeg.FFmpeg
	cacheRoot string
	pattern   string
	framerate int
	display   string
	geometry  xwininfo.Geometry
	options   []config.Option
	progress  *progress.Printer
	logger    logger.Logger
	state     *State
}

// New creates a Pipeline.
func New(config Config) *Pipeline {
	p := &Pipeline{
		ffmpeg:    config.FFmpeg,
		cacheRoot: config.CacheRoot,
		pattern:   config.Pattern,
		framerate: config.Framerate,
		display:   config.Display,
		geometry:  config.Geometry,
		options:   config.Options,
		progress:  config.Progress,
		logger:    config.Logger,
		state:     config.State,
	}
	if p.logger == nil {
		p.logger = logger.Nop()
	}
	if p.state == nil {
		p.state = NewState()
	}
	return p
}

// State returns the live status cell of this run.
func (p *Pipeline) State() *State {
	return p.state
}

// Run drives the full capture and encode sequence. The scratch
// directory is removed on every return path, a partial output file is
// removed on failure.
func (p *Pipeline) Run() error {
	cacheDir, err := p.makeCacheDir()
	if err != nil {
		p.state.setPhase(PhaseFailed)
		return fmt.Errorf("create cache dir: %w", err)
	}
	defer p.removeCacheDir(cacheDir)

	out, err := AllocateOutput(p.pattern)
	if err != nil {
		p.state.setPhase(PhaseFailed)
		return fmt.Errorf("allocate output: %w", err)
	}
	p.state.setOutput(out.Name())
	p.logger.Info("recording %s at %d fps into %s", p.geometry.Size(), p.framerate, out.Name())

	cachefile := filepath.Join(cacheDir, initialFileName)

	p.state.setPhase(PhaseCapture)
	duration, haveDuration, err := p.ffmpeg.Capture(cachefile, p.framerate, p.display, p.geometry, p.state)
	if err != nil {
		p.discardOutput(out)
		p.state.setPhase(PhaseFailed)
		return fmt.Errorf("capture: %w", err)
	}

	if haveDuration {
		p.state.setTotal(duration)
		p.logger.Info("captured %s of video", duration)
	} else {
		p.logger.Info("capture reported no duration, progress disabled")
	}

	p.state.setPhase(PhaseEncode)
	if err := p.ffmpeg.Encode(cachefile, out, p.options, p.progressFunc(duration, haveDuration), p.state); err != nil {
		p.discardOutput(out)
		p.state.setPhase(PhaseFailed)
		return fmt.Errorf("encode: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		p.state.setPhase(PhaseFailed)
		return fmt.Errorf("close output: %w", err)
	}

	p.state.setPhase(PhaseDone)
	p.logger.Info("wrote %s", out.Name())
	return nil
}

// progressFunc binds the discovered duration into a render callback.
// Samples never exceed the total, the completion sample renders as
// exactly 100%.
func (p *Pipeline) progressFunc(total time.Duration, haveTotal bool) ffmpeg.ProgressFunc {
	if p.progress == nil || !haveTotal || total <= 0 {
		return nil
	}
	return func(elapsed time.Duration, done bool) {
		if elapsed > total {
			elapsed = total
		}
		p.progress.Render(total, elapsed, done)
	}
}

func (p *Pipeline) makeCacheDir() (string, error) {
	token := fmt.Sprintf("%s-%d-%s",
		time.Now().UTC().Format("20060102T150405Z"),
		os.Getpid(),
		p.state.ID())
	dir := filepath.Join(p.cacheRoot, token)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Cleanup runs after the child of the failed or finished stage has
// been reaped, nothing is writing into the directory anymore.
func (p *Pipeline) removeCacheDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Error("remove cache dir %s: %v", dir, err)
	}
}

// discardOutput drops a partial output file, logging instead of
// masking the stage error.
func (p *Pipeline) discardOutput(out *os.File) {
	out.Close()
	if err := os.Remove(out.Name()); err != nil {
		p.logger.Error("remove partial output %s: %v", out.Name(), err)
	}
}
