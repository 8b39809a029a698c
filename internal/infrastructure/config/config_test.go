package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes content to a temp config.yaml and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
device:
  name: "synth0"
  sample_rate: 48000
  max_fontsounds: 512
database:
  path: "/tmp/test.db"
mqtt:
  enabled: true
  broker:
    host: "broker.local"
    port: 1884
  qos: 0
api:
  port: 9090
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.Name != "synth0" || cfg.Device.SampleRate != 48000 || cfg.Device.MaxFontsounds != 512 {
		t.Errorf("Device = %+v", cfg.Device)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if !cfg.Database.WALMode {
		t.Error("Database.WALMode should keep its default")
	}
	if cfg.MQTT.Broker.Host != "broker.local" || cfg.MQTT.Broker.Port != 1884 || cfg.MQTT.QoS != 0 {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	if cfg.MQTT.TopicPrefix != "fontsound" {
		t.Errorf("MQTT.TopicPrefix = %q, want default %q", cfg.MQTT.TopicPrefix, "fontsound")
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "invalid: [yaml: content")); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(writeConfig(t, `
device:
  name: ""
api:
  port: 0
`))
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	// Every problem is reported.
	for _, want := range []string{"device.name", "api.port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("FONTSOUND_API_PORT", "eighty")
	if _, err := Load(writeConfig(t, "device:\n  name: x\n")); err == nil {
		t.Error("Load() expected error for non-numeric FONTSOUND_API_PORT")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing device name", func(c *Config) { c.Device.Name = "" }, true},
		{"zero sample rate", func(c *Config) { c.Device.SampleRate = 0 }, true},
		{"negative max fontsounds", func(c *Config) { c.Device.MaxFontsounds = -1 }, true},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, true},
		{"invalid QoS", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"mqtt enabled without host", func(c *Config) { c.MQTT.Enabled = true; c.MQTT.Broker.Host = "" }, true},
		{"mqtt wildcard prefix", func(c *Config) { c.MQTT.Enabled = true; c.MQTT.TopicPrefix = "sounds/#" }, true},
		{"mqtt disabled ignores host", func(c *Config) { c.MQTT.Broker.Host = "" }, false},
		{"influx enabled without bucket", func(c *Config) { c.InfluxDB.Enabled = true; c.InfluxDB.Bucket = "" }, true},
		{"telemetry without influx", func(c *Config) { c.Telemetry.Enabled = true }, true},
		{"telemetry zero interval", func(c *Config) {
			c.InfluxDB.Enabled = true
			c.Telemetry.Enabled = true
			c.Telemetry.Interval = 0
		}, true},
		{"telemetry with influx", func(c *Config) { c.InfluxDB.Enabled = true; c.Telemetry.Enabled = true }, false},
		{"invalid port low", func(c *Config) { c.API.Port = 0 }, true},
		{"invalid port high", func(c *Config) { c.API.Port = 70000 }, true},
		{"zero body limit", func(c *Config) { c.API.MaxBodyBytes = 0 }, true},
		{"websocket relative path", func(c *Config) { c.WebSocket.Path = "ws" }, true},
		{"websocket zero ping interval", func(c *Config) { c.WebSocket.PingInterval = 0 }, true},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{Read: 30, Write: 45, Idle: 60},
		},
		Telemetry: TelemetryConfig{Interval: 15},
	}

	if got := cfg.GetReadTimeout(); got != 30*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 30s", got)
	}
	if got := cfg.GetWriteTimeout(); got != 45*time.Second {
		t.Errorf("GetWriteTimeout() = %v, want 45s", got)
	}
	if got := cfg.GetIdleTimeout(); got != time.Minute {
		t.Errorf("GetIdleTimeout() = %v, want 1m", got)
	}
	if got := cfg.GetTelemetryInterval(); got != 15*time.Second {
		t.Errorf("GetTelemetryInterval() = %v, want 15s", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	t.Setenv("FONTSOUND_DEVICE_NAME", "env-device")
	t.Setenv("FONTSOUND_DEVICE_SAMPLE_RATE", "96000")
	t.Setenv("FONTSOUND_DATABASE_PATH", "/custom/path.db")
	t.Setenv("FONTSOUND_MQTT_ENABLED", "true")
	t.Setenv("FONTSOUND_MQTT_HOST", "mqtt.example.com")
	t.Setenv("FONTSOUND_MQTT_USERNAME", "testuser")
	t.Setenv("FONTSOUND_MQTT_PASSWORD", "testpass")
	t.Setenv("FONTSOUND_API_HOST", "192.168.1.1")
	t.Setenv("FONTSOUND_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("FONTSOUND_LOGGING_LEVEL", "debug")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	checks := []struct {
		field string
		got   any
		want  any
	}{
		{"Device.Name", cfg.Device.Name, "env-device"},
		{"Device.SampleRate", cfg.Device.SampleRate, 96000},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Enabled", cfg.MQTT.Enabled, true},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Logging.Level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
		}
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
	if cfg.Device.SampleRate != 44100 {
		t.Errorf("Device.SampleRate = %d, want 44100", cfg.Device.SampleRate)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.MQTT.Enabled || cfg.InfluxDB.Enabled || cfg.Telemetry.Enabled {
		t.Error("optional integrations should be disabled by default")
	}
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	if err != nil {
		t.Fatalf("Load(configs/config.yaml) error = %v", err)
	}
	if cfg.Device.Name != "synth0" || cfg.API.Port != 8080 || cfg.MQTT.Enabled || cfg.Telemetry.Enabled {
		t.Errorf("shipped config = %+v", cfg)
	}
}
