// Package config loads the YAML configuration with environment expansion.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"postboard/internal/board"
	"postboard/internal/viewport"
)

func init() {
	// report field errors by their YAML key
	validation.ErrorTag = "yaml"
}

// Validator is implemented by configs that check themselves after loading.
type Validator interface {
	Validate() error
}

// Load reads filename, expands environment variables and unmarshals into target.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// LoadOptional behaves like Load but leaves target untouched when the file
// does not exist.
func LoadOptional[T any](filename string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if v, ok := any(target).(Validator); ok {
			return v.Validate()
		}
		return nil
	}
	return Load(filename, target)
}

type Config struct {
	App     AppConfig     `yaml:"app"`
	Canvas  CanvasConfig  `yaml:"canvas"`
	Storage StorageConfig `yaml:"storage"`
	UI      UIConfig      `yaml:"ui"`
}

func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Canvas.Validate(); err != nil {
		return fmt.Errorf("canvas: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

type AppConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	LogFile  string     `yaml:"log_file"`
}

func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFile, validation.Required),
	)
}

// CanvasConfig sizes the viewport. Cell sizes are the screen pixels one
// terminal cell stands for.
type CanvasConfig struct {
	InitialZoom    float64 `yaml:"initial_zoom"`
	MinZoom        float64 `yaml:"min_zoom"`
	MaxZoom        float64 `yaml:"max_zoom"`
	ZoomStep       float64 `yaml:"zoom_step"`
	PanStep        float64 `yaml:"pan_step"`
	DisablePanZoom bool    `yaml:"disable_pan_zoom"`
	CellWidth      float64 `yaml:"cell_width"`
	CellHeight     float64 `yaml:"cell_height"`
}

func (c *CanvasConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MinZoom, validation.Required, validation.Min(0.01)),
		validation.Field(&c.MaxZoom, validation.Required, validation.Min(c.MinZoom)),
		validation.Field(&c.InitialZoom, validation.Required, validation.Min(c.MinZoom), validation.Max(c.MaxZoom)),
		validation.Field(&c.ZoomStep, validation.Required, validation.Min(1.01)),
		validation.Field(&c.PanStep, validation.Required, validation.Min(1.0)),
		validation.Field(&c.CellWidth, validation.Required, validation.Min(1.0)),
		validation.Field(&c.CellHeight, validation.Required, validation.Min(1.0)),
	)
}

// Viewport converts the canvas section into controller options.
func (c CanvasConfig) Viewport() viewport.Options {
	return viewport.Options{
		InitialZoom: c.InitialZoom,
		MinZoom:     c.MinZoom,
		MaxZoom:     c.MaxZoom,
		Step:        c.ZoomStep,
		Disabled:    c.DisablePanZoom,
	}
}

type StorageConfig struct {
	SaveDirectory    string        `yaml:"save_directory"`
	Autosave         bool          `yaml:"autosave"`
	AutosaveInterval time.Duration `yaml:"autosave_interval"`
	AutosaveSlots    int           `yaml:"autosave_slots"`
	Watch            bool          `yaml:"watch"`
}

func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AutosaveInterval, validation.When(c.Autosave, validation.Required, validation.Min(time.Second))),
		validation.Field(&c.AutosaveSlots, validation.When(c.Autosave, validation.Required, validation.Min(1))),
	)
}

// SavePath resolves filename against the save directory, creating it on demand.
func (c *StorageConfig) SavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	_ = os.MkdirAll(c.SaveDirectory, 0o755)
	return filepath.Join(c.SaveDirectory, filename)
}

type UIConfig struct {
	Confirmations bool   `yaml:"confirmations"`
	DefaultColor  string `yaml:"default_color"`
}

func (c *UIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultColor, validation.Required, validation.By(isHexColor)),
	)
}

func isHexColor(value any) error {
	s, _ := value.(string)
	if len(s) != 7 || !strings.HasPrefix(s, "#") {
		return errors.New("must be a #rrggbb colour")
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return errors.New("must be a #rrggbb colour")
		}
	}
	return nil
}

// NewDefaultConfig returns the configuration used when no file is present.
func NewDefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			LogLevel: slog.LevelInfo,
			LogFile:  "postboard.log",
		},
		Canvas: CanvasConfig{
			InitialZoom: 0.5,
			MinZoom:     0.1,
			MaxZoom:     5,
			ZoomStep:    1.1,
			PanStep:     40,
			CellWidth:   8,
			CellHeight:  16,
		},
		Storage: StorageConfig{
			Autosave:         true,
			AutosaveInterval: time.Minute,
			AutosaveSlots:    10,
			Watch:            true,
		},
		UI: UIConfig{
			Confirmations: true,
			DefaultColor:  board.DefaultColor,
		},
	}
}

// DefaultPath is ~/.postboard.yaml, or empty when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".postboard.yaml")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
