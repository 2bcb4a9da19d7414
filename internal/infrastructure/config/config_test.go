package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
bridge:
  id: "relay-test"
  health_interval: 15
mqtt:
  port: 1884
  client_id: "test-client"
  keepalive: 30
  qos: 1
gpio:
  chip: "gpiochip4"
logging:
  level: debug
  format: text
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bridge.ID != "relay-test" {
		t.Errorf("Bridge.ID = %q, want %q", cfg.Bridge.ID, "relay-test")
	}

	if cfg.MQTT.Port != 1884 {
		t.Errorf("MQTT.Port = %d, want 1884", cfg.MQTT.Port)
	}

	if cfg.GPIO.Chip != "gpiochip4" {
		t.Errorf("GPIO.Chip = %q, want %q", cfg.GPIO.Chip, "gpiochip4")
	}

	// Unset sections keep their defaults
	if len(cfg.GPIO.Lines) != 16 {
		t.Errorf("GPIO.Lines length = %d, want 16", len(cfg.GPIO.Lines))
	}

	if cfg.Journal.Enabled {
		t.Error("Journal.Enabled = true, want false by default")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for absent file", err)
	}

	def := defaultConfig()
	if cfg.Bridge.ID != def.Bridge.ID {
		t.Errorf("Bridge.ID = %q, want default %q", cfg.Bridge.ID, def.Bridge.ID)
	}
	if cfg.MQTT.Port != 1883 {
		t.Errorf("MQTT.Port = %d, want 1883", cfg.MQTT.Port)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
mqtt:
  qos: 7
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for qos 7, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing bridge ID",
			mutate:  func(c *Config) { c.Bridge.ID = "" },
			wantErr: true,
		},
		{
			name:    "zero health interval",
			mutate:  func(c *Config) { c.Bridge.HealthInterval = 0 },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid port low",
			mutate:  func(c *Config) { c.MQTT.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.MQTT.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "zero keepalive",
			mutate:  func(c *Config) { c.MQTT.KeepAlive = 0 },
			wantErr: true,
		},
		{
			name:    "missing client ID",
			mutate:  func(c *Config) { c.MQTT.ClientID = "" },
			wantErr: true,
		},
		{
			name:    "missing GPIO chip",
			mutate:  func(c *Config) { c.GPIO.Chip = "" },
			wantErr: true,
		},
		{
			name:    "too few GPIO lines",
			mutate:  func(c *Config) { c.GPIO.Lines = []int{17, 18, 27} },
			wantErr: true,
		},
		{
			name: "duplicate GPIO lines",
			mutate: func(c *Config) {
				c.GPIO.Lines = []int{17, 17, 27, 22, 23, 24, 25, 4, 2, 3, 8, 7, 10, 9, 11, 14}
			},
			wantErr: true,
		},
		{
			name: "negative GPIO line",
			mutate: func(c *Config) {
				c.GPIO.Lines = []int{-1, 18, 27, 22, 23, 24, 25, 4, 2, 3, 8, 7, 10, 9, 11, 14}
			},
			wantErr: true,
		},
		{
			name: "journal enabled without path",
			mutate: func(c *Config) {
				c.Journal.Enabled = true
				c.Journal.Path = ""
			},
			wantErr: true,
		},
		{
			name:    "negative retention",
			mutate:  func(c *Config) { c.Journal.RetentionDays = -1 },
			wantErr: true,
		},
		{
			name: "influxdb enabled without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.Org = "home"
				c.InfluxDB.Bucket = "relays"
			},
			wantErr: true,
		},
		{
			name: "influxdb enabled fully specified",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = "http://localhost:8086"
				c.InfluxDB.Org = "home"
				c.InfluxDB.Bucket = "relays"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	// Set environment variables
	t.Setenv("RELAYBRIDGE_MQTT_USERNAME", "testuser")
	t.Setenv("RELAYBRIDGE_MQTT_PASSWORD", "testpass")
	t.Setenv("RELAYBRIDGE_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("RELAYBRIDGE_JOURNAL_PATH", "/custom/journal.db")
	t.Setenv("RELAYBRIDGE_LOG_LEVEL", "debug")

	applyEnvOverrides(cfg)

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}

	if cfg.Journal.Path != "/custom/journal.db" {
		t.Errorf("Journal.Path = %q, want %q", cfg.Journal.Path, "/custom/journal.db")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Bridge.ID == "" {
		t.Error("defaultConfig should have non-empty Bridge.ID")
	}

	if cfg.MQTT.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Port = %d, want 1883", cfg.MQTT.Port)
	}

	if cfg.MQTT.KeepAlive != 60 {
		t.Errorf("defaultConfig MQTT.KeepAlive = %d, want 60", cfg.MQTT.KeepAlive)
	}

	if cfg.MQTT.QoS != 1 {
		t.Errorf("defaultConfig MQTT.QoS = %d, want 1", cfg.MQTT.QoS)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig should validate cleanly: %v", err)
	}
}

func TestDefaultGPIOLines(t *testing.T) {
	lines := defaultGPIOLines()

	if len(lines) != 16 {
		t.Fatalf("defaultGPIOLines() length = %d, want 16", len(lines))
	}

	seen := make(map[int]bool)
	for i, line := range lines {
		if line < 0 {
			t.Errorf("line %d is negative: %d", i, line)
		}
		if seen[line] {
			t.Errorf("line offset %d appears more than once", line)
		}
		seen[line] = true
	}
}

func TestGetHealthInterval(t *testing.T) {
	cfg := &Config{Bridge: BridgeConfig{HealthInterval: 45}}

	if got := cfg.GetHealthInterval().Seconds(); got != 45 {
		t.Errorf("GetHealthInterval() = %v, want 45s", got)
	}
}

func TestGetKeepAlive(t *testing.T) {
	cfg := MQTTConfig{KeepAlive: 60}

	if got := cfg.GetKeepAlive().Seconds(); got != 60 {
		t.Errorf("GetKeepAlive() = %v, want 60s", got)
	}
}
