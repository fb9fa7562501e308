package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"myo_monitor/internal/dsp"
	"myo_monitor/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
port: "9090"
auth:
  signing_key: "test-key"
serial:
  port: /dev/ttyACM0
  read_timeout: 200ms
filter:
  bandpass: true
  pass_low: 20
  pass_high: 150
`)
	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.Serial.Port != "/dev/ttyACM0" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Serial.ReadTimeout != 200*time.Millisecond {
		t.Fatalf("read timeout = %v", cfg.Serial.ReadTimeout)
	}
	if cfg.Serial.BaudRate != 115200 || cfg.Pipeline.DataWidth != 20000 || cfg.Pipeline.TimeWidth != 10 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	want := models.FilterConfig{Bandpass: true, PassLow: 20, PassHigh: 150, StopLow: 40, StopHigh: 60, SampleIntervalMs: 1}
	if got := cfg.Filter.Model(); got != want {
		t.Fatalf("filter = %+v, want %+v", got, want)
	}
	if cfg.Serial.UseSimulator() {
		t.Fatal("device port must not select the simulator")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "auth:\n  signing_key: from-file\n")
	t.Setenv("MYO_AUTH_SIGNING_KEY", "from-env")
	t.Setenv("MYO_PIPELINE_TIME_WIDTH", "5")

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.SigningKey != "from-env" || cfg.Pipeline.TimeWidth != 5 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if !cfg.Serial.UseSimulator() {
		t.Fatal("default port should be the simulator")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestLoad_RejectsInvalidFilter(t *testing.T) {
	path := writeConfig(t, `
auth:
  signing_key: k
filter:
  bandstop: true
  stop_low: 60
  stop_high: 40
`)
	_, err := Load(viper.New(), path)
	var cfgErr *dsp.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Band != "bandstop" {
		t.Fatalf("expected bandstop ConfigError, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	var base Config
	if err := v.Unmarshal(&base); err != nil {
		t.Fatalf("unmarshal defaults: %v", err)
	}
	base.Auth.SigningKey = "k"
	if err := base.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.Log.Level = "verbose" }, "unknown log level"},
		{"signing key", func(c *Config) { c.Auth.SigningKey = "" }, "auth.signing_key"},
		{"db path", func(c *Config) { c.DB.Path = "" }, "db.path"},
		{"data width", func(c *Config) { c.Pipeline.DataWidth = 1 }, "pipeline.data_width"},
		{"time width", func(c *Config) { c.Pipeline.TimeWidth = 0 }, "pipeline.time_width"},
		{"stop timeout", func(c *Config) { c.Acquisition.StopTimeout = 0 }, "acquisition.stop_timeout"},
		{"sample interval", func(c *Config) { c.Filter.SampleIntervalMs = 0 }, "sample rate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
