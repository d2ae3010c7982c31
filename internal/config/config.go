package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-SpaceBookingService/internal/domain"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	SpaceService  IntegrationConfig   `toml:"space_service"`
	UserService   IntegrationConfig   `toml:"user_service"`
	NotifyService IntegrationConfig   `toml:"notify_service"`
	Booking       BookingRulesConfig  `toml:"booking"`
	IcalSync      IcalSyncConfig      `toml:"ical_sync"`
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

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// IntegrationConfig настройки HTTP клиента внешнего сервиса
type IntegrationConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // seconds
}

// BookingRulesConfig бизнес-настройки бронирований
type BookingRulesConfig struct {
	// DefaultTimezone таймзона для пространств без явной настройки
	DefaultTimezone string `toml:"default_timezone"`

	// DayRateThresholdHours порог длительности для применения дневного тарифа
	DayRateThresholdHours int `toml:"day_rate_threshold_hours"`

	CheckinGraceMinutes       int `toml:"checkin_grace_minutes"`
	CheckoutGraceMinutes      int `toml:"checkout_grace_minutes"`
	PastStartToleranceMinutes int `toml:"past_start_tolerance_minutes"`
}

// IcalSyncConfig настройки синхронизации внешних календарей
type IcalSyncConfig struct {
	FetchTimeout     int `toml:"fetch_timeout"` // seconds, per feed
	ExportWindowDays int `toml:"export_window_days"`
}

// Load загружает конфигурацию из toml файла и подставляет дефолты
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if cfg.Database.Host == "" {
		return nil, fmt.Errorf("config: database.host is required")
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "space-booking-service"
	}
	if cfg.Booking.DefaultTimezone == "" {
		cfg.Booking.DefaultTimezone = "UTC"
	}
	if cfg.Booking.DayRateThresholdHours == 0 {
		cfg.Booking.DayRateThresholdHours = domain.DefaultDayRateThresholdHours
	}
	if cfg.Booking.CheckinGraceMinutes == 0 {
		cfg.Booking.CheckinGraceMinutes = domain.DefaultCheckinGraceMinutes
	}
	if cfg.Booking.CheckoutGraceMinutes == 0 {
		cfg.Booking.CheckoutGraceMinutes = domain.DefaultCheckoutGraceMinutes
	}
	if cfg.Booking.PastStartToleranceMinutes == 0 {
		cfg.Booking.PastStartToleranceMinutes = domain.DefaultPastStartToleranceMinutes
	}
	if cfg.IcalSync.FetchTimeout == 0 {
		cfg.IcalSync.FetchTimeout = 30
	}
	if cfg.IcalSync.ExportWindowDays == 0 {
		cfg.IcalSync.ExportWindowDays = domain.DefaultExportWindowDays
	}
}
