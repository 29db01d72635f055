// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	log := New("test")
	assert.NotNil(t, log)

	log.Info("info %d", 1)
	log.Error("error %s", "x")
	log.Debug("debug")
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotNil(t, log)

	log.Info("discarded")
	log.Error("discarded")
	log.Debug("discarded")
}

func TestVerbose(t *testing.T) {
	Verbose()
	New("test").Debug("visible at debug level")
}
