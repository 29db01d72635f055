// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

package skills

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Encoder represents an available encoder
type Encoder struct {
	Id   string
	Type string
	Name string
}

// Device represents a capture or playback device format
type Device struct {
	Id   string
	Name string
}

// Library represents a linked av library
type Library struct {
	Name     string
	Compiled string
	Linked   string
}

type ffmpegInfo struct {
	Version       string
	Compiler      string
	Configuration string
	Libraries     []Library
}

// Skills are the detected capabilities of FFmpeg
type Skills struct {
	FFmpeg   ffmpegInfo
	Encoders []Encoder
	Devices  struct {
		Input  []Device
		Output []Device
	}
}

// HasEncoder reports whether an encoder with the given id is available.
func (s Skills) HasEncoder(id string) bool {
	for _, e := range s.Encoders {
		if e.Id == id {
			return true
		}
	}
	return false
}

// HasInputDevice reports whether a capture device format is available.
func (s Skills) HasInputDevice(id string) bool {
	for _, d := range s.Devices.Input {
		if d.Id == id {
			return true
		}
	}
	return false
}

// New returns the skills that FFmpeg provides
func New(binary string) (Skills, error) {
	c := Skills{}

	ff, err := getVersion(binary)
	if ff.Version == "" || err != nil {
		if err != nil {
			return Skills{}, fmt.Errorf("can't parse ffmpeg version: %w", err)
		}
		return Skills{}, fmt.Errorf("can't parse ffmpeg version")
	}
	c.FFmpeg = ff

	c.Encoders = getEncoders(binary)
	c.Devices = getDevices(binary)

	return c, nil
}

func getVersion(binary string) (ffmpegInfo, error) {
	cmd := exec.Command(binary, "-version")
	cmd.Env = []string{}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return ffmpegInfo{}, err
	}
	return parseVersion(out), nil
}

func parseVersion(data []byte) ffmpegInfo {
	f := ffmpegInfo{}
	reVersion := regexp.MustCompile(`^ffmpeg version ([0-9]+\.[0-9]+(\.[0-9]+)?)`)
	reCompiler := regexp.MustCompile(`(?m)^\s*built with (.*)$`)
	reConfiguration := regexp.MustCompile(`(?m)^\s*configuration: (.*)$`)
	reLibrary := regexp.MustCompile(`(?m)^\s*(lib(?:[a-z]+))\s+([0-9]+\.\s*[0-9]+\.\s*[0-9]+) /\s+([0-9]+\.\s*[0-9]+\.\s*[0-9]+)`)

	if m := reVersion.FindSubmatch(data); m != nil {
		f.Version = string(m[1])
		if len(m[2]) == 0 {
			f.Version += ".0"
		}
	}
	if m := reCompiler.FindSubmatch(data); m != nil {
		f.Compiler = string(m[1])
	}
	if m := reConfiguration.FindSubmatch(data); m != nil {
		f.Configuration = string(m[1])
	}
	for _, m := range reLibrary.FindAllSubmatch(data, -1) {
		f.Libraries = append(f.Libraries, Library{
			Name:     string(m[1]),
			Compiled: string(m[2]),
			Linked:   string(m[3]),
		})
	}
	return f
}

func getEncoders(binary string) []Encoder {
	cmd := exec.Command(binary, "-encoders")
	cmd.Env = []string{}
	stdout, _ := cmd.Output()
	return parseEncoders(stdout)
}

func parseEncoders(data []byte) []Encoder {
	var encoders []Encoder
	re := regexp.MustCompile(`^\s([VAS])[FSXBD.]{5} ([0-9A-Za-z_]+)\s+(.*?)$`)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		e := Encoder{Id: m[2], Name: strings.TrimSpace(m[3])}
		switch m[1] {
		case "V":
			e.Type = "video"
		case "A":
			e.Type = "audio"
		case "S":
			e.Type = "subtitle"
		}
		encoders = append(encoders, e)
	}
	return encoders
}

func getDevices(binary string) struct {
	Input  []Device
	Output []Device
} {
	cmd := exec.Command(binary, "-devices")
	cmd.Env = []string{}
	stdout, _ := cmd.Output()
	return parseDevices(stdout)
}

func parseDevices(data []byte) struct {
	Input  []Device
	Output []Device
} {
	d := struct {
		Input  []Device
		Output []Device
	}{}
	re := regexp.MustCompile(`^\s([D ])([E ]) ([0-9A-Za-z_,]+)\s+(.*?)$`)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id := strings.Split(m[3], ",")[0]
		device := Device{Id: id, Name: m[4]}
		if m[1] == "D" {
			d.Input = append(d.Input, device)
		}
		if m[2] == "E" {
			d.Output = append(d.Output, device)
		}
	}
	return d
}
