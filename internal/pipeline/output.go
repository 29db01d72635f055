// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// ErrNoFreeSlot reports that every numbered output slot is taken.
var ErrNoFreeSlot = errors.New("no free output slot")

const maxOutputSlots = 1000

// AllocateOutput creates the output file, failing instead of
// overwriting. Every "{}" in the pattern is replaced with the first
// index in 0..999 whose file does not exist yet.
func AllocateOutput(pattern string) (*os.File, error) {
	if !strings.Contains(pattern, "{}") {
		return createExclusive(pattern)
	}

	for i := 0; i < maxOutputSlots; i++ {
		f, err := createExclusive(strings.ReplaceAll(pattern, "{}", strconv.Itoa(i)))
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return nil, err
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoFreeSlot, pattern)
}

func createExclusive(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}
