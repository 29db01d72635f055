// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

package api

import (
	"github.com/ZSC714725/xrecord/internal/ffmpeg/skills"
)

// SkillsResponse for API
type SkillsResponse struct {
	FFmpeg struct {
		Version       string          `json:"version"`
		Compiler      string          `json:"compiler"`
		Configuration string          `json:"configuration"`
		Libraries     []SkillsLibrary `json:"libraries"`
	} `json:"ffmpeg"`

	Encoders []SkillsEncoder `json:"encoders"`

	Devices struct {
		Input  []SkillsDevice `json:"input"`
		Output []SkillsDevice `json:"output"`
	} `json:"devices"`
}

// SkillsLibrary is a linked av library
type SkillsLibrary struct {
	Name     string `json:"name"`
	Compiled string `json:"compiled"`
	Linked   string `json:"linked"`
}

// SkillsEncoder is an available encoder
type SkillsEncoder struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// SkillsDevice is an available device format
type SkillsDevice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func skillsToAPI(s skills.Skills) SkillsResponse {
	resp := SkillsResponse{}

	resp.FFmpeg.Version = s.FFmpeg.Version
	resp.FFmpeg.Compiler = s.FFmpeg.Compiler
	resp.FFmpeg.Configuration = s.FFmpeg.Configuration
	resp.FFmpeg.Libraries = make([]SkillsLibrary, len(s.FFmpeg.Libraries))
	for i, lib := range s.FFmpeg.Libraries {
		resp.FFmpeg.Libraries[i] = SkillsLibrary{Name: lib.Name, Compiled: lib.Compiled, Linked: lib.Linked}
	}

	resp.Encoders = make([]SkillsEncoder, len(s.Encoders))
	for i, e := range s.Encoders {
		resp.Encoders[i] = SkillsEncoder{ID: e.Id, Type: e.Type, Name: e.Name}
	}

	resp.Devices.Input = make([]SkillsDevice, len(s.Devices.Input))
	for i, d := range s.Devices.Input {
		resp.Devices.Input[i] = SkillsDevice{ID: d.Id, Name: d.Name}
	}
	resp.Devices.Output = make([]SkillsDevice, len(s.Devices.Output))
	for i, d := range s.Devices.Output {
		resp.Devices.Output[i] = SkillsDevice{ID: d.Id, Name: d.Name}
	}

	return resp
}
