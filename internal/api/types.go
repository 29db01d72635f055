// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

package api

// StatusResponse is the live state of the run
type StatusResponse struct {
	ID        string  `json:"id"`
	State     string  `json:"state"`
	Elapsed   float64 `json:"elapsed_seconds"`
	Duration  float64 `json:"duration_seconds"`
	Progress  float64 `json:"progress"`
	CPU       float64 `json:"cpu_usage"`
	Memory    uint64  `json:"memory_bytes"`
	Output    string  `json:"output"`
	StartedAt int64   `json:"started_at"`
}
