// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	General GeneralConfig `yaml:"general"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Capture CaptureConfig `yaml:"capture"`
	Encode  EncodeConfig  `yaml:"encode"`
	API     APIConfig     `yaml:"api"`
}

// GeneralConfig 通用配置
type GeneralConfig struct {
	CacheDir string `yaml:"cachedir"`
}

// FFmpegConfig FFmpeg 配置
type FFmpegConfig struct {
	Path string `yaml:"path"`
}

// CaptureConfig 录制配置
type CaptureConfig struct {
	Framerate int    `yaml:"framerate"`
	Display   string `yaml:"display"`
}

// EncodeConfig 转码配置
type EncodeConfig struct {
	Output  string   `yaml:"output"`
	Options []Option `yaml:"options"`
}

// APIConfig 控制接口配置，bind 为空时不启动
type APIConfig struct {
	Bind string `yaml:"bind"`
}

// Option is one encoder option pair, kept in file order.
type Option struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// IsFlag reports whether the option name is flag-shaped. Only
// flag-shaped options are forwarded to the encoder command line.
func (o Option) IsFlag() bool {
	return strings.HasPrefix(o.Name, "-")
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		FFmpeg: FFmpegConfig{Path: "ffmpeg"},
		Capture: CaptureConfig{
			Framerate: 25,
		},
		Encode: EncodeConfig{
			Output: "~/out-{}.ogv",
			Options: []Option{
				{Name: "-c:v", Value: "libtheora"},
				{Name: "-q:v", Value: "7"},
				{Name: "-f", Value: "ogg"},
			},
		},
	}
}

// Load 从 YAML 文件加载配置
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// 填充空值
	if cfg.FFmpeg.Path == "" {
		cfg.FFmpeg.Path = "ffmpeg"
	}
	if cfg.Capture.Framerate <= 0 {
		cfg.Capture.Framerate = 25
	}
	if cfg.Encode.Output == "" {
		cfg.Encode.Output = "~/out-{}.ogv"
	}

	return cfg, nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "xrecord", "config.yaml")
}

// CacheRoot returns the directory under which scratch directories
// are created.
func (c *Config) CacheRoot() (string, error) {
	if c.General.CacheDir != "" {
		return ExpandHome(c.General.CacheDir)
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "xrecord"), nil
}

// OutputPattern returns the output file pattern with ~ expanded.
func (c *Config) OutputPattern() (string, error) {
	return ExpandHome(c.Encode.Output)
}

// Display returns the X display to record from. An explicit config
// value wins over $DISPLAY, the final fallback is ":0".
func (c *Config) Display() string {
	if c.Capture.Display != "" {
		return c.Capture.Display
	}
	if d := os.Getenv("DISPLAY"); d != "" {
		return d
	}
	return ":0"
}

// ExpandHome 展开路径前缀 ~
func ExpandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
