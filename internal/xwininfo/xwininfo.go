// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具
//
// Package xwininfo discovers the on-screen geometry of the recording
// target by querying the xwininfo tool.

package xwininfo

import (
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// ErrGeometry marks failures to discover a window geometry.
var ErrGeometry = errors.New("geometry discovery failed")

var (
	reUpperLeftX = regexp.MustCompile(`(?i)absolute upper-left x:\s*([0-9]+)`)
	reUpperLeftY = regexp.MustCompile(`(?i)absolute upper-left y:\s*([0-9]+)`)
	reWidth      = regexp.MustCompile(`(?i)width:\s*([0-9]+)`)
	reHeight     = regexp.MustCompile(`(?i)height:\s*([0-9]+)`)
)

// Selection picks the window to inspect. The zero value asks the user
// to click a window. ID wins over Name wins over Root.
type Selection struct {
	ID   string
	Name string
	Root bool
}

func (s Selection) args() []string {
	args := []string{"-stats"}
	if s.ID != "" {
		args = append(args, "-id", s.ID)
	} else if s.Name != "" {
		args = append(args, "-name", s.Name)
	} else if s.Root {
		args = append(args, "-root")
	}
	return args
}

// Geometry of the recorded region in pixels.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Size returns WIDTHxHEIGHT as the capture command expects it.
func (g Geometry) Size() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// Input returns DISPLAY+X,Y as the capture command expects it.
func (g Geometry) Input(display string) string {
	return fmt.Sprintf("%s+%d,%d", display, g.X, g.Y)
}

// Discover runs xwininfo for the selection and extracts the geometry.
// An empty binary falls back to "xwininfo" from PATH.
func Discover(binary string, sel Selection) (Geometry, error) {
	if binary == "" {
		binary = "xwininfo"
	}

	cmd := exec.Command(binary, sel.args()...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return Geometry{}, fmt.Errorf("%w: xwininfo: %s", ErrGeometry, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Geometry{}, fmt.Errorf("%w: xwininfo: %v", ErrGeometry, err)
	}

	return parseGeometry(out)
}

func parseGeometry(data []byte) (Geometry, error) {
	x, err := matchInt(reUpperLeftX, data, "upper-left x")
	if err != nil {
		return Geometry{}, err
	}
	y, err := matchInt(reUpperLeftY, data, "upper-left y")
	if err != nil {
		return Geometry{}, err
	}
	w, err := matchInt(reWidth, data, "width")
	if err != nil {
		return Geometry{}, err
	}
	h, err := matchInt(reHeight, data, "height")
	if err != nil {
		return Geometry{}, err
	}

	return Geometry{X: x, Y: y, Width: w, Height: h}, nil
}

func matchInt(re *regexp.Regexp, data []byte, name string) (int, error) {
	m := re.FindSubmatch(data)
	if m == nil {
		return 0, fmt.Errorf("%w: no %s in xwininfo output", ErrGeometry, name)
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrGeometry, name, err)
	}
	return n, nil
}
