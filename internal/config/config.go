// Package config загружает конфигурацию сервиса из TOML файла
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/spaflow/booking-engine/internal/domain"
)

// Config конфигурация сервиса
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Redis        RedisConfig        `toml:"redis"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
	Engine       EngineConfig       `toml:"engine"`
	AuditService AuditServiceConfig `toml:"audit_service"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig настройки подключения к Redis (кеш доступности)
type RedisConfig struct {
	Address  string `toml:"address"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	PoolSize int    `toml:"pool_size"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// EngineConfig настройки движка доступности и аллокации
type EngineConfig struct {
	SlotGranularityMinutes     int    `toml:"slot_granularity_minutes"`
	BusinessHoursStart         string `toml:"business_hours_start"`
	BusinessHoursEnd           string `toml:"business_hours_end"`
	MaxAdvanceBookingDays      int    `toml:"max_advance_booking_days"`
	MinAdvanceBookingHours     int    `toml:"min_advance_booking_hours"`
	DateSummaryCacheTTLSeconds int    `toml:"date_summary_cache_ttl_seconds"`
	SlotCacheTTLSeconds        int    `toml:"slot_cache_ttl_seconds"`
}

// AuditServiceConfig настройки клиента внешнего аудит-сервиса
type AuditServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
	Enabled bool   `toml:"enabled"`
}

// Load загружает конфигурацию из TOML файла и применяет дефолты
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}

	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Redis.Address == "" {
		c.Redis.Address = "localhost:6379"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "booking-engine"
	}

	if c.Engine.SlotGranularityMinutes == 0 {
		c.Engine.SlotGranularityMinutes = domain.DefaultSlotGranularityMinutes
	}
	if c.Engine.BusinessHoursStart == "" {
		c.Engine.BusinessHoursStart = domain.DefaultBusinessHoursStart
	}
	if c.Engine.BusinessHoursEnd == "" {
		c.Engine.BusinessHoursEnd = domain.DefaultBusinessHoursEnd
	}
	if c.Engine.MaxAdvanceBookingDays == 0 {
		c.Engine.MaxAdvanceBookingDays = domain.DefaultMaxAdvanceBookingDays
	}
	if c.Engine.MinAdvanceBookingHours == 0 {
		c.Engine.MinAdvanceBookingHours = domain.DefaultMinAdvanceBookingHours
	}
	if c.Engine.DateSummaryCacheTTLSeconds == 0 {
		c.Engine.DateSummaryCacheTTLSeconds = domain.DefaultDateSummaryCacheTTLSec
	}
	if c.Engine.SlotCacheTTLSeconds == 0 {
		c.Engine.SlotCacheTTLSeconds = domain.DefaultSlotCacheTTLSec
	}

	if c.AuditService.Timeout == 0 {
		c.AuditService.Timeout = 5
	}
}

func (c *Config) validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.dbname is required")
	}
	if c.Engine.SlotGranularityMinutes < domain.MinSlotGranularityMinutes ||
		c.Engine.SlotGranularityMinutes > domain.MaxSlotGranularityMinutes {
		return fmt.Errorf("config: engine.slot_granularity_minutes must be between %d and %d",
			domain.MinSlotGranularityMinutes, domain.MaxSlotGranularityMinutes)
	}
	if c.Engine.BusinessHoursStart >= c.Engine.BusinessHoursEnd {
		return fmt.Errorf("config: engine.business_hours_start must be before business_hours_end")
	}
	if c.AuditService.Enabled && c.AuditService.URL == "" {
		return fmt.Errorf("config: audit_service.url is required when audit_service.enabled")
	}
	return nil
}
