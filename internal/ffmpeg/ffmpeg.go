// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具
//
// Package ffmpeg builds and supervises the capture and encode
// commands.

package ffmpeg

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ZSC714725/xrecord/internal/config"
	"github.com/ZSC714725/xrecord/internal/ffmpeg/parse"
	"github.com/ZSC714725/xrecord/internal/ffmpeg/skills"
	"github.com/ZSC714725/xrecord/internal/logger"
	"github.com/ZSC714725/xrecord/internal/process"
	"github.com/ZSC714725/xrecord/internal/xwininfo"
)

// ExitError reports a stage command that exited outside the codes its
// stage accepts.
type ExitError struct {
	Command []string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", strings.Join(e.Command, " "), e.Code)
}

// Exit code policies per stage. ffmpeg exits 255 after a graceful
// terminate, which ends a recording but truncates a transcode.
var (
	captureExitOK = []int{0, 255}
	encodeExitOK  = []int{0}
)

func acceptedExit(codes []int, code int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// ProgressFunc receives encode progress samples in non-decreasing
// order. done is true exactly once, after the child has exited.
type ProgressFunc func(elapsed time.Duration, done bool)

// StatusSink receives live state from a running stage.
type StatusSink interface {
	Attach(p *process.Proc)
	Progress(elapsed time.Duration, cpu float64, memory uint64)
}

// Config for FFmpeg
type Config struct {
	Binary string
	Logger logger.Logger
}

// FFmpeg wraps the resolved binary and its detected skills
type FFmpeg struct {
	binary string
	skills skills.Skills
	logger logger.Logger
}

// New resolves the binary and probes its skills
func New(config Config) (*FFmpeg, error) {
	binary, err := exec.LookPath(config.Binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg binary: %w", err)
	}

	f := &FFmpeg{
		binary: binary,
		logger: config.Logger,
	}
	if f.logger == nil {
		f.logger = logger.Nop()
	}

	s, err := skills.New(f.binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg: %w", err)
	}
	f.skills = s

	return f, nil
}

// Binary returns the resolved binary path.
func (f *FFmpeg) Binary() string {
	return f.binary
}

// Skills returns the detected capabilities.
func (f *FFmpeg) Skills() skills.Skills {
	return f.skills
}

// CaptureArgs builds the screen grab command arguments. The recording
// goes into cachefile losslessly, encoding happens in a second pass.
func CaptureArgs(cachefile string, framerate int, display string, geo xwininfo.Geometry) []string {
	return []string{
		"-nostdin",
		"-video_size", geo.Size(),
		"-framerate", strconv.Itoa(framerate),
		"-f", "x11grab",
		"-i", geo.Input(display),
		"-c:v", "libx264",
		"-qp", "0",
		"-preset", "ultrafast",
		cachefile,
	}
}

// EncodeArgs builds the transcode command arguments, writing to
// stdout. Only flag-shaped option names are forwarded, an empty value
// makes a bare flag.
func EncodeArgs(source string, options []config.Option) []string {
	args := []string{"-nostdin", "-i", source}
	for _, opt := range options {
		if !opt.IsFlag() {
			continue
		}
		args = append(args, opt.Name)
		if opt.Value != "" {
			args = append(args, opt.Value)
		}
	}
	args = append(args, "-")
	return args
}

// Capture records the region into cachefile until the child stops and
// returns the last timestamp it reported, ok is false when it never
// reported one. A graceful terminate ends the recording successfully,
// any other nonzero exit discards it.
func (f *FFmpeg) Capture(cachefile string, framerate int, display string, geo xwininfo.Geometry, sink StatusSink) (time.Duration, bool, error) {
	args := CaptureArgs(cachefile, framerate, display, geo)
	tracker := parse.NewTracker()

	res, err := process.Run(process.Config{
		Binary: f.binary,
		Args:   args,
		Logger: f.logger,
		OnStart: func(p *process.Proc) {
			if sink != nil {
				sink.Attach(p)
			}
		},
		Wait: func(p *process.Proc) error {
			for {
				line, ok := p.ReadLine()
				if !ok {
					return nil
				}
				d, ok := tracker.Parse(line)
				if ok && sink != nil {
					cpu, mem := p.Usage()
					sink.Progress(d, cpu, mem)
				}
			}
		},
	})
	if err != nil {
		return 0, false, err
	}
	if !acceptedExit(captureExitOK, res.Code) {
		return 0, false, &ExitError{Command: append([]string{f.binary}, args...), Code: res.Code}
	}
	if res.Interrupted {
		f.logger.Info("recording stopped by terminate request")
	}

	d, ok := tracker.Last()
	return d, ok, nil
}

// Encode transcodes source into out. With a progress callback the
// child's diagnostic stream is scanned for timestamps, otherwise it is
// discarded. An interrupted encode is a failure, the output would be
// truncated.
func (f *FFmpeg) Encode(source string, out io.Writer, options []config.Option, progress ProgressFunc, sink StatusSink) error {
	args := EncodeArgs(source, options)

	cfg := process.Config{
		Binary: f.binary,
		Args:   args,
		Stdout: out,
		Logger: f.logger,
		OnStart: func(p *process.Proc) {
			if sink != nil {
				sink.Attach(p)
			}
		},
	}

	var last time.Duration
	if progress != nil {
		tracker := parse.NewTracker()
		cfg.Wait = func(p *process.Proc) error {
			progress(0, false)
			for {
				line, ok := p.ReadLine()
				if !ok {
					return nil
				}
				d, ok := tracker.Parse(line)
				if !ok || d < last {
					continue
				}
				last = d
				progress(d, false)
				if sink != nil {
					cpu, mem := p.Usage()
					sink.Progress(d, cpu, mem)
				}
			}
		}
	}

	res, err := process.Run(cfg)
	if err != nil {
		return err
	}
	if progress != nil {
		progress(last, true)
	}
	if !acceptedExit(encodeExitOK, res.Code) {
		return &ExitError{Command: append([]string{f.binary}, args...), Code: res.Code}
	}
	return nil
}
