// Package config loads service settings from configs/config.yml, MYO_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"myo_monitor/internal/buffer"
	"myo_monitor/internal/dsp"
	"myo_monitor/internal/logger"
	"myo_monitor/internal/models"
	"myo_monitor/internal/serial"
	"myo_monitor/internal/window"
)

const envPrefix = "MYO"

type Config struct {
	Port        string            `mapstructure:"port"`
	Log         LogConfig         `mapstructure:"log"`
	DB          DBConfig          `mapstructure:"db"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Serial      SerialConfig      `mapstructure:"serial"`
	Acquisition AcquisitionConfig `mapstructure:"acquisition"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Filter      FilterConfig      `mapstructure:"filter"`
	Simulator   SimulatorConfig   `mapstructure:"simulator"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type SerialConfig struct {
	Port        string        `mapstructure:"port"` // device path or "sim"
	BaudRate    uint          `mapstructure:"baud_rate"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

type AcquisitionConfig struct {
	Yield       time.Duration `mapstructure:"yield"`
	ReadSize    int           `mapstructure:"read_size"`
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
}

type PipelineConfig struct {
	DataWidth int     `mapstructure:"data_width"` // samples retained
	TimeWidth float64 `mapstructure:"time_width"` // seconds per page
	QueueSize int     `mapstructure:"queue_size"`
}

// FilterConfig is the startup filter configuration. A configuration saved
// through the API takes precedence once one exists.
type FilterConfig struct {
	Bandpass         bool    `mapstructure:"bandpass"`
	Bandstop         bool    `mapstructure:"bandstop"`
	PassLow          float64 `mapstructure:"pass_low"`
	PassHigh         float64 `mapstructure:"pass_high"`
	StopLow          float64 `mapstructure:"stop_low"`
	StopHigh         float64 `mapstructure:"stop_high"`
	SampleIntervalMs float64 `mapstructure:"sample_interval_ms"`
}

type SimulatorConfig struct {
	Tick      time.Duration `mapstructure:"tick"`
	Amplitude float64       `mapstructure:"amplitude"`
	HumHz     float64       `mapstructure:"hum_hz"`
	Seed      uint64        `mapstructure:"seed"`
}

// Model converts the startup filter settings to the pipeline's type.
func (f FilterConfig) Model() models.FilterConfig {
	return models.FilterConfig{
		Bandpass:         f.Bandpass,
		Bandstop:         f.Bandstop,
		PassLow:          f.PassLow,
		PassHigh:         f.PassHigh,
		StopLow:          f.StopLow,
		StopHigh:         f.StopHigh,
		SampleIntervalMs: f.SampleIntervalMs,
	}
}

// UseSimulator reports whether the built-in simulated device is selected.
func (s SerialConfig) UseSimulator() bool {
	return s.Port == serial.SimulatorPort
}

// SetDefaults registers every key so environment overrides are picked up
// even when the file omits them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", logger.InfoLevel)
	v.SetDefault("db.path", "myo.db")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)

	v.SetDefault("serial.port", serial.SimulatorPort)
	v.SetDefault("serial.baud_rate", serial.DefaultBaudRate)
	v.SetDefault("serial.read_timeout", serial.DefaultReadTimeout)

	v.SetDefault("acquisition.yield", 50*time.Millisecond)
	v.SetDefault("acquisition.read_size", 4096)
	v.SetDefault("acquisition.stop_timeout", 2*time.Second)

	v.SetDefault("pipeline.data_width", buffer.DefaultCapacity)
	v.SetDefault("pipeline.time_width", window.DefaultTimeWidth)
	v.SetDefault("pipeline.queue_size", 64)

	v.SetDefault("filter.bandpass", false)
	v.SetDefault("filter.bandstop", false)
	v.SetDefault("filter.pass_low", 30.0)
	v.SetDefault("filter.pass_high", 100.0)
	v.SetDefault("filter.stop_low", 40.0)
	v.SetDefault("filter.stop_high", 60.0)
	v.SetDefault("filter.sample_interval_ms", 1.0)

	v.SetDefault("simulator.tick", time.Millisecond)
	v.SetDefault("simulator.amplitude", 40.0)
	v.SetDefault("simulator.hum_hz", 50.0)
	v.SetDefault("simulator.seed", 1)
}

// Load reads file (or configs/config.yml when file is empty) into v and
// decodes the result. A missing default file is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if err := logger.ValidateLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.DB.Path == "" {
		errs = append(errs, errors.New("db.path is required"))
	}
	if c.Auth.SigningKey == "" {
		errs = append(errs, errors.New("auth.signing_key is required"))
	}
	if c.Serial.Port == "" {
		errs = append(errs, errors.New("serial.port is required"))
	}
	if c.Acquisition.StopTimeout <= 0 {
		errs = append(errs, errors.New("acquisition.stop_timeout must be positive"))
	}
	if c.Pipeline.DataWidth < 2 {
		errs = append(errs, fmt.Errorf("pipeline.data_width must be at least 2, got %d", c.Pipeline.DataWidth))
	}
	if !(c.Pipeline.TimeWidth > 0) {
		errs = append(errs, fmt.Errorf("pipeline.time_width must be positive, got %g", c.Pipeline.TimeWidth))
	}
	if err := dsp.Validate(c.Filter.Model()); err != nil {
		errs = append(errs, fmt.Errorf("filter: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
