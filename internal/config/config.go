package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "LEADS_CONFIG"

type Config struct {
	Version       string              `yaml:"version"`
	HTTP          HTTPConfig          `yaml:"http"`
	Database      DatabaseConfig      `yaml:"database"`
	RabbitMQ      RabbitMQConfig      `yaml:"rabbitmq"`
	Redis         RedisConfig         `yaml:"redis"`
	Mail          MailConfig          `yaml:"mail"`
	Kommo         KommoConfig         `yaml:"kommo"`
	Mailchimp     MailchimpConfig     `yaml:"mailchimp"`
	Recalculation RecalculationConfig `yaml:"recalculation"`
}

type HTTPConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RabbitMQConfig leaves Host empty to run without the sync queue.
type RabbitMQConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
}

// RedisConfig leaves Addr empty to fall back to an in-process lock.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	AppURL   string `yaml:"appUrl"`
}

type KommoConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	Token    string `yaml:"token"`
	StatusID int    `yaml:"statusId"`
}

type MailchimpConfig struct {
	APIKey string `yaml:"apiKey"`
	ListID string `yaml:"listId"`
}

// RecalculationConfig disables the periodic run when Interval is zero.
type RecalculationConfig struct {
	Interval time.Duration `yaml:"interval"`
	LockTTL  time.Duration `yaml:"lockTtl"`
}

// Load reads .env (if present), then the YAML file named by LEADS_CONFIG (if
// set), then applies environment overrides on top.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ [CONFIG] .env ignored: %v", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Version: "dev",
		HTTP: HTTPConfig{
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		RabbitMQ: RabbitMQConfig{User: "guest", Password: "guest", Port: "5672"},
		Mail:     MailConfig{Port: 587, AppURL: "http://localhost:5173"},
		Recalculation: RecalculationConfig{
			LockTTL: 10 * time.Minute,
		},
	}
}

func (c *Config) applyEnvOverrides() error {
	setString(&c.Version, "APP_VERSION")
	setString(&c.HTTP.Port, "PORT")
	setString(&c.Database.URL, "DATABASE_URL")

	setString(&c.RabbitMQ.User, "RABBITMQ_USER")
	setString(&c.RabbitMQ.Password, "RABBITMQ_PASSWORD")
	setString(&c.RabbitMQ.Host, "RABBITMQ_HOST")
	setString(&c.RabbitMQ.Port, "RABBITMQ_PORT")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	setString(&c.Mail.Host, "MAIL_HOST")
	setString(&c.Mail.User, "MAIL_USER")
	setString(&c.Mail.Password, "MAIL_PASS")
	setString(&c.Mail.From, "MAIL_FROM")
	setString(&c.Mail.AppURL, "APP_URL")

	setString(&c.Kommo.BaseURL, "KOMMO_BASE_URL")
	setString(&c.Kommo.Token, "KOMMO_TOKEN")

	setString(&c.Mailchimp.APIKey, "MAILCHIMP_API_KEY")
	setString(&c.Mailchimp.ListID, "MAILCHIMP_LIST_ID")

	if err := setInt(&c.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&c.Mail.Port, "MAIL_PORT"); err != nil {
		return err
	}
	if err := setInt(&c.Kommo.StatusID, "KOMMO_STATUS_ID"); err != nil {
		return err
	}
	if err := setDuration(&c.Recalculation.Interval, "RECALC_INTERVAL"); err != nil {
		return err
	}
	return setDuration(&c.Recalculation.LockTTL, "RECALC_LOCK_TTL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
