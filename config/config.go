package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting of the service.
type Config struct {
	Port          string          `yaml:"port"`
	GinMode       string          `yaml:"gin_mode"`
	AutoMigrate   bool            `yaml:"auto_migrate"`
	Log           LogConfig       `yaml:"log"`
	DB            DBConfig        `yaml:"database"`
	JWT           JWTConfig       `yaml:"jwt"`
	CORSOrigins   []string        `yaml:"cors_origins"`
	UploadDir     string          `yaml:"upload_dir"`
	PublicBaseURL string          `yaml:"public_base_url"`
	Promotion     PromotionConfig `yaml:"promotion"`
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DBConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	TimeZone string `yaml:"time_zone"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// PromotionConfig names the weekly promotion day ("Sunday") and the zone the
// day is evaluated in. An empty zone means the server's local zone.
type PromotionConfig struct {
	Day      string `yaml:"day"`
	TimeZone string `yaml:"time_zone"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Default returns the development defaults.
func Default() *Config {
	return &Config{
		Port:        "3000",
		GinMode:     "debug",
		AutoMigrate: true,
		Log:         LogConfig{Level: "info", Format: "text"},
		DB: DBConfig{
			Driver: "mysql",
			Host:   "127.0.0.1",
			Port:   "3306",
			User:   "root",
			Name:   "cake_hawker",
		},
		JWT:           JWTConfig{Secret: "", TTL: time.Hour},
		CORSOrigins:   []string{"*"},
		UploadDir:     "public/uploads/cakes",
		PublicBaseURL: "http://localhost:3000",
		Promotion:     PromotionConfig{Day: "Sunday"},
		RateLimit:     RateLimitConfig{RequestsPerSecond: 50, Burst: 100},
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE, the .env file and finally the process environment.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	// .env is optional; a missing file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	setString(&c.DB.Driver, "DB_DRIVER")
	setString(&c.DB.DSN, "DB_DSN")
	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.Port, "DB_PORT")
	setString(&c.DB.User, "DB_USER")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.Name, "DB_NAME")
	setString(&c.DB.TimeZone, "DB_TIMEZONE")

	setString(&c.JWT.Secret, "JWT_SECRET")
	setString(&c.UploadDir, "UPLOAD_DIR")
	setString(&c.PublicBaseURL, "PUBLIC_BASE_URL")
	setString(&c.Promotion.Day, "PROMOTION_DAY")
	setString(&c.Promotion.TimeZone, "PROMOTION_TIMEZONE")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_TTL: %w", err)
		}
		c.JWT.TTL = d
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AUTO_MIGRATE: %w", err)
		}
		c.AutoMigrate = b
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimit.RequestsPerSecond = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimit.Burst = n
	}
	return nil
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.JWT.TTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.Promotion.Day == "" {
		return errors.New("PROMOTION_DAY must be set")
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
