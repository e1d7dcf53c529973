package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Carrier   CarrierConfig   `yaml:"carrier"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	APIKeyEventsTopicName string `yaml:"api_key_events_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type CarrierConfig struct {
	BaseURL            string `yaml:"base_url"`
	Mode               string `yaml:"mode"` // "novapost" | "fake"
	HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds"`
}

type DashboardConfig struct {
	HTTPAddr           string `yaml:"http_addr"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`

	FetchCacheTTLSeconds     int `yaml:"fetch_cache_ttl_seconds"`
	FetchCacheMaxEntries     int `yaml:"fetch_cache_max_entries"`
	AnalyticsCacheTTLSeconds int `yaml:"analytics_cache_ttl_seconds"`
	AnalyticsCacheMaxEntries int `yaml:"analytics_cache_max_entries"`

	RegistryMaxClients     int `yaml:"registry_max_clients"`
	RegistryIdleTTLSeconds int `yaml:"registry_idle_ttl_seconds"`

	FetchConcurrency       int `yaml:"fetch_concurrency"`
	JanitorIntervalSeconds int `yaml:"janitor_interval_seconds"`

	ValidateRateLimitPerMinute int `yaml:"validate_rate_limit_per_minute"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	// Переменная окружения важнее файла: так же настраивался исходный дашборд.
	if u := os.Getenv("NOVA_POST_API_URL"); u != "" {
		config.Carrier.BaseURL = u
	}

	return &config, nil
}

func (c DatabaseConfig) ConnString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username, c.Password, c.Host, c.Port, c.DBName, sslMode)
}

func (c CarrierConfig) HTTPTimeout() time.Duration {
	return secondsOr(c.HTTPTimeoutSeconds, 30*time.Second)
}

func (c DashboardConfig) FetchCacheTTL() time.Duration {
	return secondsOr(c.FetchCacheTTLSeconds, 60*time.Second)
}

func (c DashboardConfig) AnalyticsCacheTTL() time.Duration {
	return secondsOr(c.AnalyticsCacheTTLSeconds, 60*time.Second)
}

func (c DashboardConfig) RegistryIdleTTL() time.Duration {
	return secondsOr(c.RegistryIdleTTLSeconds, 2*time.Hour)
}

func (c DashboardConfig) JanitorInterval() time.Duration {
	return secondsOr(c.JanitorIntervalSeconds, time.Minute)
}

func secondsOr(sec int, def time.Duration) time.Duration {
	if sec <= 0 {
		return def
	}
	return time.Duration(sec) * time.Second
}

func intOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func (c DashboardConfig) FetchCacheSize() int     { return intOr(c.FetchCacheMaxEntries, 200) }
func (c DashboardConfig) AnalyticsCacheSize() int { return intOr(c.AnalyticsCacheMaxEntries, 100) }
func (c DashboardConfig) RegistrySize() int       { return intOr(c.RegistryMaxClients, 100) }
func (c DashboardConfig) Concurrency() int        { return intOr(c.FetchConcurrency, 4) }
func (c DashboardConfig) ValidateLimit() int      { return intOr(c.ValidateRateLimitPerMinute, 5) }
