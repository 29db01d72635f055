// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具
//
// Package process runs one child process at a time under signal
// forwarding supervision.

package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync/atomic"
	"syscall"
	"unicode/utf8"
)

// Logger interface
type Logger interface {
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// WaitFunc drives a stage-specific poll loop over a running child.
// It returns once the child's diagnostic stream is exhausted or the
// stage has seen enough. A non-nil error aborts the run.
type WaitFunc func(p *Proc) error

// Config for one supervised run
type Config struct {
	Binary  string
	Args    []string
	Stdout  io.Writer // nil discards
	Wait    WaitFunc  // nil blocks until exit without reading stderr
	Sampler Sampler
	Logger  Logger
	OnStart func(p *Proc)
}

// Result of a supervised run
type Result struct {
	Code        int
	Interrupted bool
}

// Proc is a live handle on a supervised child, passed to the poll
// strategy and to anyone who may request a graceful stop.
type Proc struct {
	cmd     *exec.Cmd
	scanner *bufio.Scanner
	sampler Sampler
	fwd     *forwarder
}

// Pid returns the child process id.
func (p *Proc) Pid() int {
	return p.cmd.Process.Pid
}

// ReadLine blocks until the child writes a line or closes its stderr.
// CR and LF both delimit lines. The second return is false once the
// stream has ended.
func (p *Proc) ReadLine() (string, bool) {
	if p.scanner == nil {
		return "", false
	}
	if !p.scanner.Scan() {
		return "", false
	}
	return p.scanner.Text(), true
}

// Usage returns the child's current CPU percentage and RSS.
func (p *Proc) Usage() (float64, uint64) {
	return p.sampler.Current()
}

// Interrupted reports whether a terminate request was delivered.
func (p *Proc) Interrupted() bool {
	return p.fwd.interrupted.Load()
}

// Terminate requests a graceful stop of the child, the same path an
// interrupt signal takes.
func (p *Proc) Terminate() {
	p.fwd.interrupted.Store(true)
	p.fwd.terminate()
}

// Run launches the command, installs forwarding signal handlers, runs
// the poll strategy and reports how the child exited. Handlers are
// restored on every return path. SIGINT and SIGTERM are both relayed
// to the child as SIGTERM, at most once per signal type.
func Run(config Config) (Result, error) {
	if len(config.Binary) == 0 {
		return Result{}, fmt.Errorf("no valid binary given")
	}

	log := config.Logger
	if log == nil {
		log = &nopLogger{}
	}
	sampler := config.Sampler
	if sampler == nil {
		sampler = NewSampler()
	}

	cmd := exec.Command(config.Binary, config.Args...)
	cmd.Stdout = config.Stdout

	var stderr io.ReadCloser
	if config.Wait != nil {
		var err error
		stderr, err = cmd.StderrPipe()
		if err != nil {
			return Result{}, fmt.Errorf("stderr pipe: %w", err)
		}
	}

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start %s: %w", config.Binary, err)
	}
	log.Debug("started %s pid %d", config.Binary, cmd.Process.Pid)

	if err := sampler.Start(cmd.Process.Pid); err != nil {
		log.Debug("sampler: %v", err)
	}
	defer sampler.Stop()

	fwd := newForwarder(cmd.Process)
	fwd.install()
	defer fwd.restore()

	p := &Proc{cmd: cmd, sampler: sampler, fwd: fwd}
	if stderr != nil {
		p.scanner = bufio.NewScanner(stderr)
		p.scanner.Split(scanLine)
	}

	if config.OnStart != nil {
		config.OnStart(p)
	}

	if config.Wait != nil {
		if err := config.Wait(p); err != nil {
			// the poll strategy gave up, reap the child before returning
			cmd.Process.Kill()
			cmd.Wait()
			return Result{Interrupted: fwd.interrupted.Load()}, err
		}
	}

	code := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{Interrupted: fwd.interrupted.Load()}, fmt.Errorf("wait %s: %w", config.Binary, err)
		}
		// -1 means the child died to an unhandled signal
		code = exitErr.ExitCode()
	}
	log.Debug("%s exited with code %d", config.Binary, code)

	return Result{Code: code, Interrupted: fwd.interrupted.Load()}, nil
}

// forwarder owns the interruption flag and relays terminate requests.
// The relay goroutine only flips the flag and signals the child, all
// I/O stays on the supervising goroutine.
type forwarder struct {
	proc        *os.Process
	notify      chan os.Signal
	quit        chan struct{}
	done        chan struct{}
	interrupted atomic.Bool
}

func newForwarder(proc *os.Process) *forwarder {
	return &forwarder{
		proc:   proc,
		notify: make(chan os.Signal, 2),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (f *forwarder) install() {
	signal.Notify(f.notify, os.Interrupt, syscall.SIGTERM)
	go f.relay()
}

func (f *forwarder) relay() {
	defer close(f.done)

	seen := make(map[os.Signal]bool)
	for {
		select {
		case sig := <-f.notify:
			if seen[sig] {
				continue
			}
			seen[sig] = true
			f.interrupted.Store(true)
			f.terminate()
		case <-f.quit:
			return
		}
	}
}

func (f *forwarder) terminate() {
	// best effort, the child may already be gone
	f.proc.Signal(syscall.SIGTERM)
}

func (f *forwarder) restore() {
	signal.Stop(f.notify)
	close(f.quit)
	<-f.done
}

func scanLine(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) {
		r, w := utf8.DecodeRune(data[start:])
		if r != '\n' && r != '\r' {
			break
		}
		start += w
	}

	for i := start; i < len(data); {
		r, w := utf8.DecodeRune(data[i:])
		if r == '\n' || r == '\r' {
			return i + w, data[start:i], nil
		}
		i += w
	}

	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}

type nopLogger struct{}

func (l *nopLogger) Info(format string, args ...interface{})  {}
func (l *nopLogger) Error(format string, args ...interface{}) {}
func (l *nopLogger) Debug(format string, args ...interface{}) {}
