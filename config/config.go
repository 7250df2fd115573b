package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Domenick1991/tutorbooking/internal/pricing"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Pricing  pricing.Table  `yaml:"pricing"`
	Mail     MailConfig     `yaml:"mail"`
}

type AppConfig struct {
	Env               string `yaml:"env"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
	SubmitLockSeconds int    `yaml:"submit_lock_seconds"`
	SlotsCacheTTL     int    `yaml:"slots_cache_ttl_seconds"`
	MigrateOnStart    bool   `yaml:"migrate_on_start"`
	AdminEmail        string `yaml:"admin_email"`
	AdminPassword     string `yaml:"admin_password"`
}

func (a AppConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

func (a AppConfig) SubmitLockTTL() time.Duration {
	return time.Duration(a.SubmitLockSeconds) * time.Second
}

func (a AppConfig) SlotsCacheTTLDuration() time.Duration {
	return time.Duration(a.SlotsCacheTTL) * time.Second
}

type HTTPConfig struct {
	Address             string `yaml:"address"`
	ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_seconds"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	ChangesTopic       string   `yaml:"changes_topic"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	GroupID            string   `yaml:"group_id"`
	WorkerGroupID      string   `yaml:"worker_group_id"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

type MailConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// LoadConfig reads the YAML file at path. Values from a .env file or the environment
// override the secrets kept in the file.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Env:               "development",
			SessionTTLMinutes: 120,
			SubmitLockSeconds: 30,
			SlotsCacheTTL:     60,
			MigrateOnStart:    true,
		},
		HTTP:     HTTPConfig{Address: ":8080", ShutdownTimeoutSecs: 10},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, SSLMode: "disable"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		Kafka: KafkaConfig{
			ChangesTopic:       "tutorbooking.changes",
			BookingEventsTopic: "tutorbooking.bookings",
			GroupID:            "tutorbooking-app",
			WorkerGroupID:      "tutorbooking-worker",
		},
		Auth:    AuthConfig{TokenTTLMinutes: 12 * 60},
		Pricing: pricing.DefaultTable.Clone(),
	}
}

func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("config: http.address is required")
	}
	if c.Database.Name == "" {
		return errors.New("config: database.name is required")
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("MAILERSEND_API_KEY"); v != "" {
		c.Mail.APIKey = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.App.Env = v
	}
}
