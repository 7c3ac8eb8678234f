package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the lookchat server.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Serp    SerpConfig    `mapstructure:"serp"`
	Store   StoreConfig   `mapstructure:"store"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// BackendConfig holds the AI workflow backend endpoints and the server-held
// credential used to authenticate outbound calls.
type BackendConfig struct {
	DispatchURL string `mapstructure:"dispatch_url"`
	UploadURL   string `mapstructure:"upload_url"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	ClienteNome string `mapstructure:"cliente_nome"`
	ClienteID   int    `mapstructure:"cliente_id"`
}

// SerpConfig holds the product search provider configuration.
type SerpConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// StoreConfig holds correlation store tuning.
type StoreConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from file and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("LOOKCHAT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("backend.dispatch_url", "")
	v.SetDefault("backend.upload_url", "")
	v.SetDefault("backend.username", "")
	v.SetDefault("backend.password", "")
	v.SetDefault("backend.cliente_nome", "")
	v.SetDefault("backend.cliente_id", 0)

	v.SetDefault("serp.api_key", "")

	v.SetDefault("store.ttl", "10m")
}

// Address returns the server listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DispatchConfigured reports whether every field needed for outbound
// message dispatch is set.
func (c *Config) DispatchConfigured() bool {
	b := c.Backend
	return b.DispatchURL != "" && b.Username != "" && b.Password != "" &&
		b.ClienteNome != "" && b.ClienteID != 0
}

// UploadConfigured reports whether the file-storage upload endpoint and
// its credential are set.
func (c *Config) UploadConfigured() bool {
	b := c.Backend
	return b.UploadURL != "" && b.Username != "" && b.Password != ""
}
