package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLocation = "~/.bucketdav.yaml"

	configEnvVar   = "BUCKETDAV_CONFIG"
	envUsername    = "BUCKETDAV_USERNAME"
	envPassword    = "BUCKETDAV_PASSWORD"
	envAccessKeyId = "BUCKETDAV_ACCESS_KEY_ID"
	envSecretKey   = "BUCKETDAV_SECRET_ACCESS_KEY"
	defaultListen  = "127.0.0.1:8080"
	defaultBackend = "s3"
)

// Config is everything the serve command needs: where to listen, the
// one accepted credential pair and the storage backend parameters.
type Config struct {
	Listen string `yaml:"listen"`

	Auth struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`

	Storage struct {
		Backend   string `yaml:"backend"`
		Bucket    string `yaml:"bucket"`
		Endpoint  string `yaml:"endpoint"`
		Region    string `yaml:"region"`
		AccessKey string `yaml:"access_key_id"`
		SecretKey string `yaml:"secret_access_key"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"storage"`
}

// Load reads the YAML config at location. An empty location falls back
// to BUCKETDAV_CONFIG and then ~/.bucketdav.yaml; a missing file is not
// an error, the environment alone may carry enough. Environment
// variables override file values for credentials.
func Load(location string) (*Config, error) {
	if location == "" {
		location = os.Getenv(configEnvVar)
	}
	if location == "" {
		location = DefaultLocation
	}
	configPath, err := homedir.Expand(location)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("could not parse %s: %w", configPath, err)
		}
	}
	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(envUsername); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv(envPassword); v != "" {
		cfg.Auth.Password = v
	}
	if v := os.Getenv(envAccessKeyId); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv(envSecretKey); v != "" {
		cfg.Storage.SecretKey = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaultBackend
	}
}
