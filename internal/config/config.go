package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"support-relay/internal/models"
)

// global configuration structure
type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Relay    RelayConfig    `mapstructure:"relay"`
	Database DatabaseConfig `mapstructure:"database"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Dedup    DedupConfig    `mapstructure:"dedup"`
}

// Telegram bot configuration
type BotConfig struct {
	Token    string        `mapstructure:"token"`
	Mode     string        `mapstructure:"mode"`
	Brand    string        `mapstructure:"brand"`
	Language string        `mapstructure:"language"`
	Webhook  WebhookConfig `mapstructure:"webhook"`
}

// webhook server configuration
type WebhookConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	ListenPort string `mapstructure:"listen_port"`
	DebugPath  string `mapstructure:"debug_path"`
	CertFile   string `mapstructure:"cert_file"`
	KeyFile    string `mapstructure:"key_file"`
}

// logging configuration
type LoggerConfig struct {
	Directory  string            `mapstructure:"directory"`
	Rotation   LogRotationConfig `mapstructure:"rotation"`
	TimeFormat string            `mapstructure:"time_format"`
	Level      string            `mapstructure:"level"`
}

// log rotation settings
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	SSLMode         string        `mapstructure:"sslmode"`
	Path            string        `mapstructure:"path"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// relay engine settings
type RelayConfig struct {
	Admins             AdminsConfig  `mapstructure:"admins"`
	ArchiveChatID      int64         `mapstructure:"archive_chat_id"`
	BanDuration        time.Duration `mapstructure:"ban_duration"`
	HandlerConcurrency int           `mapstructure:"handler_concurrency"`
	DeleteConcurrency  int           `mapstructure:"delete_concurrency"`
}

// AdminsConfig is the static category to admin table.
type AdminsConfig struct {
	WebSupport int64 `mapstructure:"websupport"`
	Advertise  int64 `mapstructure:"advertise"`
	ReportLink int64 `mapstructure:"reportlink"`
}

// ArchiveConfig holds optional transcript mirrors besides the archive chat.
type ArchiveConfig struct {
	COS COSConfig `mapstructure:"cos"`
}

type COSConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	BucketURL string        `mapstructure:"bucket_url"`
	SecretID  string        `mapstructure:"secret_id"`
	SecretKey string        `mapstructure:"secret_key"`
	Prefix    string        `mapstructure:"prefix"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// DedupConfig configures redelivered update suppression.
type DedupConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

var (
	ErrMissingToken   = errors.New("bot token is required")
	ErrMissingAdmin   = errors.New("every category needs an admin id")
	ErrMissingArchive = errors.New("archive chat id is required")
)

var cfg *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if dbURL := v.GetString("database_url"); dbURL != "" {
		db, err := parseDatabaseURL(dbURL, loaded.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		loaded.Database = db
	}

	if err := loaded.Validate(); err != nil {
		return nil, err
	}

	cfg = loaded
	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		log.Fatal("Configuration not initialized, call Load() first")
	}
	return cfg
}

// Validate rejects configurations the relay cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bot.Token) == "" {
		return ErrMissingToken
	}
	for _, category := range models.AllCategories {
		if c.Relay.Admins.For(category) == 0 {
			return fmt.Errorf("%w: %s", ErrMissingAdmin, category)
		}
	}
	if c.Relay.ArchiveChatID == 0 {
		return ErrMissingArchive
	}
	return nil
}

// For returns the admin configured for a category, 0 if none.
func (a AdminsConfig) For(category models.Category) int64 {
	switch category {
	case models.CategoryWebSupport:
		return a.WebSupport
	case models.CategoryAdvertise:
		return a.Advertise
	case models.CategoryReportLink:
		return a.ReportLink
	}
	return 0
}

// Table returns the category to admin mapping.
func (a AdminsConfig) Table() map[models.Category]int64 {
	table := make(map[models.Category]int64, len(models.AllCategories))
	for _, category := range models.AllCategories {
		table[category] = a.For(category)
	}
	return table
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.mode", "polling")
	v.SetDefault("bot.brand", "Support")
	v.SetDefault("bot.language", models.LangIndonesian)
	v.SetDefault("bot.webhook.listen_port", "8443")
	v.SetDefault("bot.webhook.debug_path", "/debug")
	v.SetDefault("bot.webhook.cert_file", "")
	v.SetDefault("bot.webhook.key_file", "")

	v.SetDefault("logger.directory", "logs")
	v.SetDefault("logger.rotation.max_size", 10)
	v.SetDefault("logger.rotation.max_backups", 30)
	v.SetDefault("logger.rotation.max_age", 90)
	v.SetDefault("logger.rotation.compress", true)
	v.SetDefault("logger.time_format", "2006/01/02 15:04:05")
	v.SetDefault("logger.level", "INFO")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "support-relay.db")
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("relay.ban_duration", 24*time.Hour)
	v.SetDefault("relay.handler_concurrency", 32)
	v.SetDefault("relay.delete_concurrency", 4)

	v.SetDefault("archive.cos.enabled", false)
	v.SetDefault("archive.cos.prefix", "transcripts")
	v.SetDefault("archive.cos.timeout", 60*time.Second)

	v.SetDefault("dedup.enabled", false)
	v.SetDefault("dedup.addr", "127.0.0.1:6379")
	v.SetDefault("dedup.ttl", 10*time.Minute)
}

// bindEnv maps the deployment environment variables onto config keys.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("bot.token", "BOT_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("relay.admins.websupport", "ADMIN_WEB_ID")
	_ = v.BindEnv("relay.admins.advertise", "ADMIN_ADS_ID")
	_ = v.BindEnv("relay.admins.reportlink", "ADMIN_REPORT_ID")
	_ = v.BindEnv("relay.archive_chat_id", "ARCHIVE_CHAT_ID")
	_ = v.BindEnv("bot.brand", "SUPPORT_BRAND")
}

func parseDatabaseURL(dbURL string, base DatabaseConfig) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	db := base
	switch u.Scheme {
	case "postgres", "postgresql":
		db.Driver = "postgres"
		db.Port = 5432
	case "mysql":
		db.Driver = "mysql"
		db.Port = 3306
	default:
		return DatabaseConfig{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return DatabaseConfig{}, fmt.Errorf("invalid port %q: %w", p, err)
		}
		db.Port = port
	}

	db.Host = u.Hostname()
	db.Username = u.User.Username()
	db.Password, _ = u.User.Password()
	db.DBName = strings.TrimPrefix(u.Path, "/")
	if mode := u.Query().Get("sslmode"); mode != "" {
		db.SSLMode = mode
	}
	return db, nil
}
