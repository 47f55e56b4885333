package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	// Timezone is the civil time zone all window math runs in.
	Timezone string

	Database DatabaseConfig
	Redis    RedisConfig
	Window   WindowConfig
	Device   DeviceConfig
	Roster   RosterConfig
	Board    BoardConfig
	Export   ExportConfig
	CORS     CORSConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// WindowConfig holds the attendance window boundaries as HH:MM clock values.
// This is the single authoritative copy; the recorder, the roster projection
// and the board all consume the parsed result of this block.
type WindowConfig struct {
	Start          string
	OnTimeDeadline string
	End            string
}

// DeviceConfig governs scanner device token issuance.
type DeviceConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	Issuer      string
}

// RosterConfig tunes the today-projection cache.
type RosterConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// BoardConfig drives the live board client cadence.
type BoardConfig struct {
	ServerURL    string
	PollInterval time.Duration
	TickInterval time.Duration
	HighlightTTL time.Duration
}

// ExportConfig gates the day-sheet export endpoint. When Dir is set every
// rendered export is also archived on disk; a non-zero Retention prunes
// archived copies older than that after each render.
type ExportConfig struct {
	Enabled   bool
	Dir       string
	Retention time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Timezone = v.GetString("TIMEZONE")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Window = WindowConfig{
		Start:          v.GetString("WINDOW_START"),
		OnTimeDeadline: v.GetString("ONTIME_DEADLINE"),
		End:            v.GetString("WINDOW_END"),
	}

	cfg.Device = DeviceConfig{
		TokenSecret: v.GetString("DEVICE_TOKEN_SECRET"),
		TokenTTL:    parseDuration(v.GetString("DEVICE_TOKEN_TTL"), 12*time.Hour),
		Issuer:      v.GetString("DEVICE_TOKEN_ISSUER"),
	}

	cfg.Roster = RosterConfig{
		CacheEnabled: v.GetBool("ROSTER_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("ROSTER_CACHE_TTL"), 5*time.Second),
	}

	cfg.Board = BoardConfig{
		ServerURL:    v.GetString("BOARD_SERVER_URL"),
		PollInterval: parseDuration(v.GetString("BOARD_POLL_INTERVAL"), 5*time.Second),
		TickInterval: parseDuration(v.GetString("BOARD_TICK_INTERVAL"), time.Second),
		HighlightTTL: parseDuration(v.GetString("BOARD_HIGHLIGHT_TTL"), 3*time.Second),
	}

	cfg.Export = ExportConfig{
		Enabled:   v.GetBool("ENABLE_EXPORT"),
		Dir:       v.GetString("EXPORT_DIR"),
		Retention: parseDuration(v.GetString("EXPORT_RETENTION"), 0),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("TIMEZONE", "Asia/Jakarta")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "absensi_rfid")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("WINDOW_START", "05:00")
	v.SetDefault("ONTIME_DEADLINE", "07:00")
	v.SetDefault("WINDOW_END", "09:15")

	v.SetDefault("DEVICE_TOKEN_SECRET", "dev_device_secret")
	v.SetDefault("DEVICE_TOKEN_TTL", "12h")
	v.SetDefault("DEVICE_TOKEN_ISSUER", "absensi-rfid-api")

	v.SetDefault("ROSTER_CACHE_ENABLED", false)
	v.SetDefault("ROSTER_CACHE_TTL", "5s")

	v.SetDefault("BOARD_SERVER_URL", "http://localhost:8080")
	v.SetDefault("BOARD_POLL_INTERVAL", "5s")
	v.SetDefault("BOARD_TICK_INTERVAL", "1s")
	v.SetDefault("BOARD_HIGHLIGHT_TTL", "3s")

	v.SetDefault("ENABLE_EXPORT", false)
	v.SetDefault("EXPORT_DIR", "")
	v.SetDefault("EXPORT_RETENTION", "0")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
