// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/ZSC714725/xrecord/internal/api"
	"github.com/ZSC714725/xrecord/internal/config"
	"github.com/ZSC714725/xrecord/internal/ffmpeg"
	"github.com/ZSC714725/xrecord/internal/logger"
	"github.com/ZSC714725/xrecord/internal/pipeline"
	"github.com/ZSC714725/xrecord/internal/progress"
	"github.com/ZSC714725/xrecord/internal/xwininfo"
)

func main() {
	window := flag.Bool("window", false, "Select the window to record by clicking on it")
	windowID := flag.String("window-id", "", "Select the window by id")
	windowName := flag.String("window-name", "", "Select the window by name")
	root := flag.Bool("root", false, "Record the root window (whole screen)")
	framerate := flag.Int("framerate", 0, "Frames per second to grab (overrides config)")
	noProgress := flag.Bool("no-progress", false, "Disable progress output")
	configPath := flag.String("config", "", "Path to YAML config file")
	ffmpegBin := flag.String("ffmpeg", "", "FFmpeg binary path (overrides config)")
	display := flag.String("display", "", "X display to record from (overrides config)")
	bind := flag.String("listen", "", "Bind address for the control API (off when empty)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	selected := 0
	for _, on := range []bool{*window, *windowID != "", *windowName != "", *root} {
		if on {
			selected++
		}
	}
	if selected != 1 {
		fmt.Fprintln(os.Stderr, "exactly one of -window, -window-id, -window-name, -root is required")
		flag.Usage()
		os.Exit(2)
	}

	if *verbose {
		logger.Verbose()
	}
	log := logger.New("xrecord")
	die := func(format string, args ...interface{}) {
		log.Error(format, args...)
		os.Exit(1)
	}

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		die("load config %s: %v", path, err)
	}

	ffmpegPath := cfg.FFmpeg.Path
	if *ffmpegBin != "" {
		ffmpegPath = *ffmpegBin
	}
	rate := cfg.Capture.Framerate
	if *framerate > 0 {
		rate = *framerate
	}
	if *display != "" {
		cfg.Capture.Display = *display
	}
	bindAddr := cfg.API.Bind
	if *bind != "" {
		bindAddr = *bind
	}

	ff, err := ffmpeg.New(ffmpeg.Config{Binary: ffmpegPath, Logger: logger.New("ffmpeg")})
	if err != nil {
		die("%v", err)
	}
	sk := ff.Skills()
	if !sk.HasInputDevice("x11grab") {
		die("ffmpeg at %s has no x11grab capture support", ff.Binary())
	}
	if !sk.HasEncoder("libx264") {
		die("ffmpeg at %s has no libx264 encoder", ff.Binary())
	}
	log.Debug("using ffmpeg %s at %s", sk.FFmpeg.Version, ff.Binary())

	geo, err := xwininfo.Discover("", xwininfo.Selection{ID: *windowID, Name: *windowName, Root: *root})
	if err != nil {
		die("%v", err)
	}

	cacheRoot, err := cfg.CacheRoot()
	if err != nil {
		die("cache dir: %v", err)
	}
	pattern, err := cfg.OutputPattern()
	if err != nil {
		die("output pattern: %v", err)
	}

	var printer *progress.Printer
	if !*noProgress && term.IsTerminal(int(os.Stdout.Fd())) {
		printer = progress.NewPrinter(os.Stdout)
	}

	state := pipeline.NewState()
	if bindAddr != "" {
		stop, err := api.Serve(bindAddr, api.NewHandler(state, sk), logger.New("api"))
		if err != nil {
			die("control api: %v", err)
		}
		defer stop()
	}

	p := pipeline.New(pipeline.Config{
		FFmpeg:    ff,
		CacheRoot: cacheRoot,
		Pattern:   pattern,
		Framerate: rate,
		Display:   cfg.Display(),
		Geometry:  geo,
		Options:   cfg.Encode.Options,
		Progress:  printer,
		Logger:    logger.New("pipeline"),
		State:     state,
	})

	if err := p.Run(); err != nil {
		die("%v", err)
	}
}
