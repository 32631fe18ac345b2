package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	defaultPath          = "/etc/system_exporter/config.yml"
	defaultListenAddress = ":9182"
	defaultMetricsPath   = "/metrics"
	defaultProcDir       = "/proc"
	defaultLogLevel      = "info"
)

type Config struct {
	Namespace        string    `yaml:"namespace"`
	ProcDir          string    `yaml:"proc_dir"`
	ListenAddress    string    `yaml:"listen_address"`
	MetricsPath      string    `yaml:"metrics_path"`
	HandshakeKey     string    `yaml:"handshake_key"`
	GoCollector      bool      `yaml:"go_collector"`
	ProcessCollector bool      `yaml:"process_collector"`
	Log              LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultPath returns SYSEXP_CONFIG_PATH when set, else the system-wide path.
func DefaultPath() string {
	if override := strings.TrimSpace(os.Getenv("SYSEXP_CONFIG_PATH")); override != "" {
		return override
	}
	return defaultPath
}

func Default() *Config {
	return &Config{
		ProcDir:       defaultProcDir,
		ListenAddress: defaultListenAddress,
		MetricsPath:   defaultMetricsPath,
		Log:           LogConfig{Level: defaultLogLevel},
	}
}

// Read loads the YAML file at path on top of Default. A missing file is
// not an error and yields the defaults.
func Read(path string) (*Config, error) {
	config := Default()

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	byteValue, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.UnmarshalStrict(byteValue, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.ProcDir == "" {
		c.ProcDir = defaultProcDir
	}
	if c.ListenAddress == "" {
		c.ListenAddress = defaultListenAddress
	}
	if c.MetricsPath == "" {
		c.MetricsPath = defaultMetricsPath
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddress); err != nil {
		return fmt.Errorf("listen_address %q: %w", c.ListenAddress, err)
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("metrics_path %q must start with /", c.MetricsPath)
	}
	if c.MetricsPath == "/healthz" {
		return fmt.Errorf("metrics_path %q collides with the health endpoint", c.MetricsPath)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}
