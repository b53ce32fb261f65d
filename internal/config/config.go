// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Assets  AssetsConfig  `yaml:"assets"`
	Light   LightConfig   `yaml:"light"`
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds window settings.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	VSync  bool   `yaml:"vsync"`
}

// AssetsConfig holds asset paths.
type AssetsConfig struct {
	Model    string `yaml:"model"`    // glTF or GLB character model
	Lightmap string `yaml:"lightmap"` // face shadow lightmap image
}

// LightConfig holds light proxy settings.
type LightConfig struct {
	MarkerOffset    [3]float32 `yaml:"marker_offset"`
	MarkerScale     float32    `yaml:"marker_scale"`
	InitialRotation float32    `yaml:"initial_rotation"` // radians
	ShowMarker      bool       `yaml:"show_marker"`      // debug: draws the otherwise hidden proxy
}

// RenderConfig holds rendering settings.
type RenderConfig struct {
	Background     [3]float32 `yaml:"background"`
	MSAASamples    int        `yaml:"msaa_samples"`
	ViewportWidth  int        `yaml:"viewport_width"`
	ViewportHeight int        `yaml:"viewport_height"`
}

// CameraConfig holds orbit camera settings.
type CameraConfig struct {
	Distance    float32 `yaml:"distance"`
	MinDistance float32 `yaml:"min_distance"`
	MaxDistance float32 `yaml:"max_distance"`
	Sensitivity float32 `yaml:"sensitivity"`
	FOV         float32 `yaml:"fov"` // degrees
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Face Shadow",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Assets: AssetsConfig{
			Model:    "assets/character.glb",
			Lightmap: "assets/face_lightmap.png",
		},
		Light: LightConfig{
			MarkerOffset: [3]float32{0, 0, 1},
			MarkerScale:  0.2,
		},
		Render: RenderConfig{
			Background:     [3]float32{1, 1, 0.941},
			MSAASamples:    8,
			ViewportWidth:  1024,
			ViewportHeight: 768,
		},
		Camera: CameraConfig{
			Distance:    3,
			MinDistance: 0.5,
			MaxDistance: 20,
			Sensitivity: 0.5,
			FOV:         45,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the viewer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Render.ViewportWidth <= 0 || c.Render.ViewportHeight <= 0 {
		errs = append(errs, fmt.Errorf("viewport size %dx%d must be positive", c.Render.ViewportWidth, c.Render.ViewportHeight))
	}
	if c.Render.MSAASamples < 0 {
		errs = append(errs, fmt.Errorf("msaa_samples %d must not be negative", c.Render.MSAASamples))
	}
	if c.Assets.Model == "" {
		errs = append(errs, errors.New("assets.model is required"))
	}
	if c.Assets.Lightmap == "" {
		errs = append(errs, errors.New("assets.lightmap is required"))
	}
	if c.Light.MarkerScale <= 0 {
		errs = append(errs, fmt.Errorf("light.marker_scale %g must be positive", c.Light.MarkerScale))
	}
	if c.Camera.MinDistance <= 0 || c.Camera.MaxDistance < c.Camera.MinDistance {
		errs = append(errs, fmt.Errorf("camera distance range [%g, %g] is invalid", c.Camera.MinDistance, c.Camera.MaxDistance))
	}
	return errors.Join(errs...)
}
