package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/isectech/soc-dashboard/infrastructure/elasticsearch"
	"github.com/isectech/soc-dashboard/pkg/logging"
)

// Config holds all configuration for the SOC dashboard service.
type Config struct {
	Service       ServiceConfig        `mapstructure:"service"`
	HTTP          HTTPConfig           `mapstructure:"http"`
	Elasticsearch ElasticsearchConfig  `mapstructure:"elasticsearch"`
	Logging       logging.Config       `mapstructure:"logging"`
	Metrics       MetricsConfig        `mapstructure:"metrics"`
}

// ServiceConfig contains general service configuration.
type ServiceConfig struct {
	Name            string        `mapstructure:"name"`
	Version         string        `mapstructure:"version"`
	Environment     string        `mapstructure:"environment"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// ElasticsearchConfig contains search engine configuration, including the
// per-operation query timeouts.
type ElasticsearchConfig struct {
	Connection     elasticsearch.Config `mapstructure:"connection"`
	HuntingTimeout time.Duration        `mapstructure:"hunting_timeout"`
	MetricsTimeout time.Duration        `mapstructure:"metrics_timeout"`
}

// MetricsConfig contains prometheus configuration.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// LoadConfig loads configuration from config files and the environment.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/soc-dashboard")

	viper.SetEnvPrefix("SOC_DASHBOARD")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults and environment variables apply.
	}

	overrideWithEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("service.name", "soc-dashboard")
	viper.SetDefault("service.version", "1.0.0")
	viper.SetDefault("service.environment", "development")
	viper.SetDefault("service.shutdown_timeout", "30s")

	viper.SetDefault("http.host", "0.0.0.0")
	viper.SetDefault("http.port", "8000")

	viper.SetDefault("elasticsearch.connection.addresses", []string{"http://localhost:9200"})
	viper.SetDefault("elasticsearch.connection.insecure_skip_verify", false)
	viper.SetDefault("elasticsearch.connection.max_retries", 3)
	viper.SetDefault("elasticsearch.connection.ping_timeout", "5s")
	viper.SetDefault("elasticsearch.hunting_timeout", "30s")
	viper.SetDefault("elasticsearch.metrics_timeout", "10s")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
	viper.SetDefault("logging.service_name", "soc-dashboard")

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.namespace", "soc_dashboard")
}

// overrideWithEnv overrides sensitive settings from plain environment
// variables, matching how deployments inject credentials.
func overrideWithEnv() {
	if val := os.Getenv("ELASTICSEARCH_URL"); val != "" {
		viper.Set("elasticsearch.connection.addresses", []string{val})
	}
	if val := os.Getenv("ELASTICSEARCH_USERNAME"); val != "" {
		viper.Set("elasticsearch.connection.username", val)
	}
	if val := os.Getenv("ELASTICSEARCH_PASSWORD"); val != "" {
		viper.Set("elasticsearch.connection.password", val)
	}
	if val := os.Getenv("SERVICE_PORT"); val != "" {
		viper.Set("http.port", val)
	}
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Service.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if _, err := strconv.Atoi(config.HTTP.Port); err != nil {
		return fmt.Errorf("invalid HTTP port: %s", config.HTTP.Port)
	}
	if len(config.Elasticsearch.Connection.Addresses) == 0 {
		return fmt.Errorf("at least one Elasticsearch address is required")
	}
	if config.Elasticsearch.HuntingTimeout <= 0 {
		return fmt.Errorf("hunting_timeout must be greater than 0")
	}
	if config.Elasticsearch.MetricsTimeout <= 0 {
		return fmt.Errorf("metrics_timeout must be greater than 0")
	}
	return nil
}
