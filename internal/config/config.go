// Package config loads repcoach settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/repcoach/internal/pose/detect"
	"github.com/ayusman/repcoach/internal/session"
	"github.com/ayusman/repcoach/internal/signal"
)

type Config struct {
	Server          ServerConfig   `yaml:"server"`
	Store           StoreConfig    `yaml:"store"`
	Camera          CameraConfig   `yaml:"camera"`
	Detector        DetectorConfig `yaml:"detector"`
	Engine          EngineConfig   `yaml:"engine"`
	ProfilesFile    string         `yaml:"profiles_file"`
	DefaultExercise string         `yaml:"default_exercise"`
	Log             LogConfig      `yaml:"log"`
	Tray            TrayConfig     `yaml:"tray"`
	Plugins         PluginsConfig  `yaml:"plugins"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type CameraConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Device          int           `yaml:"device"`
	IdleFPS         int           `yaml:"idle_fps"`
	ActiveFPS       int           `yaml:"active_fps"`
	MotionThreshold float64       `yaml:"motion_threshold"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
}

type DetectorConfig struct {
	Script       string        `yaml:"script"`
	Python       string        `yaml:"python"`
	IdleShutdown time.Duration `yaml:"idle_shutdown"`
}

// EngineConfig tunes the counting engine.
type EngineConfig struct {
	GracePeriod         time.Duration `yaml:"grace_period"`
	Debounce            time.Duration `yaml:"debounce"`
	VelocityWindow      time.Duration `yaml:"velocity_window"`
	MinVelocityInterval time.Duration `yaml:"min_velocity_interval"`
	SmoothingSamples    int           `yaml:"smoothing_samples"`
	WindowSamples       int           `yaml:"window_samples"`
	MinVisibility       float64       `yaml:"min_visibility"`
	MaxAngleVelocity    float64       `yaml:"max_angle_velocity"`
	MaxHeightVelocity   float64       `yaml:"max_height_velocity"`
}

// Options converts the engine settings to session options.
func (e EngineConfig) Options() session.Options {
	return session.Options{
		GracePeriod:       e.GracePeriod,
		Debounce:          e.Debounce,
		MinVisibility:     e.MinVisibility,
		MaxAngleVelocity:  e.MaxAngleVelocity,
		MaxHeightVelocity: e.MaxHeightVelocity,
		Signal: signal.Params{
			SmoothingSamples: e.SmoothingSamples,
			WindowSamples:    e.WindowSamples,
			Window:           e.VelocityWindow,
			MinInterval:      e.MinVelocityInterval,
		},
	}
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// PluginsConfig locates event plugins. An empty Dir disables them.
type PluginsConfig struct {
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := session.DefaultOptions()
	det := detect.DefaultConfig()

	storePath := "repcoach.db"
	pluginDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		storePath = filepath.Join(home, ".repcoach", "repcoach.db")
		pluginDir = filepath.Join(home, ".repcoach", "plugins")
	}

	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080},
		Store:  StoreConfig{Path: storePath},
		Camera: CameraConfig{
			IdleFPS:         5,
			ActiveFPS:       15,
			MotionThreshold: 1.0,
			IdleTimeout:     2 * time.Second,
		},
		Detector: DetectorConfig{IdleShutdown: det.IdleShutdown},
		Engine: EngineConfig{
			GracePeriod:         opts.GracePeriod,
			Debounce:            opts.Debounce,
			VelocityWindow:      opts.Signal.Window,
			MinVelocityInterval: opts.Signal.MinInterval,
			SmoothingSamples:    opts.Signal.SmoothingSamples,
			WindowSamples:       opts.Signal.WindowSamples,
			MinVisibility:       opts.MinVisibility,
			MaxAngleVelocity:    opts.MaxAngleVelocity,
			MaxHeightVelocity:   opts.MaxHeightVelocity,
		},
		Log:     LogConfig{Level: "info", Format: "text"},
		Plugins: PluginsConfig{Dir: pluginDir, Timeout: 5 * time.Second},
	}
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. An empty path skips the file.
// Env vars use the prefix REPCOACH_:
//
//	REPCOACH_SERVER_HOST, REPCOACH_SERVER_PORT, REPCOACH_STORE_PATH,
//	REPCOACH_CAMERA_ENABLED, REPCOACH_CAMERA_DEVICE,
//	REPCOACH_DEFAULT_EXERCISE, REPCOACH_LOG_LEVEL, REPCOACH_PROFILES_FILE,
//	REPCOACH_PLUGINS_DIR
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPCOACH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPCOACH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPCOACH_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("REPCOACH_CAMERA_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Camera.Enabled = b
		}
	}
	if v := os.Getenv("REPCOACH_CAMERA_DEVICE"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.Camera.Device = id
		}
	}
	if v := os.Getenv("REPCOACH_DEFAULT_EXERCISE"); v != "" {
		cfg.DefaultExercise = v
	}
	if v := os.Getenv("REPCOACH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("REPCOACH_PROFILES_FILE"); v != "" {
		cfg.ProfilesFile = v
	}
	if v, ok := os.LookupEnv("REPCOACH_PLUGINS_DIR"); ok {
		cfg.Plugins.Dir = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Camera.IdleFPS <= 0 || c.Camera.ActiveFPS <= 0 {
		return fmt.Errorf("camera fps must be positive")
	}
	e := c.Engine
	if e.GracePeriod < 0 || e.Debounce < 0 {
		return fmt.Errorf("engine.grace_period and engine.debounce must not be negative")
	}
	if e.VelocityWindow <= 0 {
		return fmt.Errorf("engine.velocity_window must be positive")
	}
	if e.SmoothingSamples < 1 {
		return fmt.Errorf("engine.smoothing_samples must be at least 1")
	}
	if e.WindowSamples < 2 {
		return fmt.Errorf("engine.window_samples must be at least 2")
	}
	if e.MinVisibility < 0 || e.MinVisibility >= 1 {
		return fmt.Errorf("engine.min_visibility must be in [0,1)")
	}
	if e.MaxAngleVelocity <= 0 || e.MaxHeightVelocity <= 0 {
		return fmt.Errorf("engine velocity ceilings must be positive")
	}
	if c.Plugins.Timeout < 0 {
		return fmt.Errorf("plugins.timeout must not be negative")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// NewLogger builds the root logger described by the log section.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(c.Log.Level); err == nil {
		log.SetLevel(lvl)
	}
	if c.Log.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// PoseConfig returns the pose detector settings.
func (c *Config) PoseConfig() detect.Config {
	cfg := detect.DefaultConfig()
	cfg.Script = c.Detector.Script
	cfg.Python = c.Detector.Python
	if c.Detector.IdleShutdown > 0 {
		cfg.IdleShutdown = c.Detector.IdleShutdown
	}
	return cfg
}
