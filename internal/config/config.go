package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string `yaml:"port" env:"SERVER_PORT"`
		Mode        string `yaml:"mode" env:"SERVER_MODE"`
		PublicURL   string `yaml:"public_url" env:"SERVER_PUBLIC_URL"`
		MaxUploadMB int    `yaml:"max_upload_mb" env:"SERVER_MAX_UPLOAD_MB"`
	} `yaml:"server"`

	Database struct {
		// Driver is "postgres" or "memory"
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Security struct {
		BcryptCost int `yaml:"bcrypt_cost" env:"SECURITY_BCRYPT_COST"`
	} `yaml:"security"`

	Storage struct {
		// Driver is "local" or "cloudinary"
		Driver        string `yaml:"driver" env:"STORAGE_DRIVER"`
		Path          string `yaml:"path" env:"STORAGE_PATH"`
		CloudinaryURL string `yaml:"cloudinary_url" env:"CLOUDINARY_URL"`
	} `yaml:"storage"`

	Events struct {
		// Driver is "log" or "kafka"
		Driver       string `yaml:"driver" env:"EVENTS_DRIVER"`
		Brokers      string `yaml:"brokers" env:"KAFKA_BROKERS"`
		Topic        string `yaml:"topic" env:"KAFKA_TOPIC"`
		WriteTimeout string `yaml:"write_timeout" env:"KAFKA_WRITE_TIMEOUT"`
	} `yaml:"events"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Setup struct {
		SuperuserUsername string `yaml:"superuser_username" env:"SUPERUSER_USERNAME"`
		SuperuserEmail    string `yaml:"superuser_email" env:"SUPERUSER_EMAIL"`
		SuperuserPassword string `yaml:"superuser_password" env:"SUPERUSER_PASSWORD"`
		FacultyPassword   string `yaml:"faculty_password" env:"SEED_FACULTY_PASSWORD"`
	} `yaml:"setup"`
}

// LoadConfig reads the YAML file at configPath (if present), then a .env file
// in the working directory (if present), then applies environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if file, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.MaxUploadMB = 5

	config.Database.Driver = "postgres"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "campusrecords"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "campusrecords"

	config.Security.BcryptCost = 12

	config.Storage.Driver = "local"
	config.Storage.Path = "uploads"

	config.Events.Driver = "log"
	config.Events.Topic = "campusrecords.events"
	config.Events.WriteTimeout = "10s"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Setup.SuperuserUsername = "admin"
	config.Setup.SuperuserEmail = "admin@example.com"
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case "postgres":
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database connection lifetime: %w", err)
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}
	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	if config.Security.BcryptCost < 4 || config.Security.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", config.Security.BcryptCost)
	}

	switch config.Storage.Driver {
	case "local":
		if config.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the local driver")
		}
	case "cloudinary":
		if config.Storage.CloudinaryURL == "" {
			return fmt.Errorf("cloudinary url is required for the cloudinary driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", config.Storage.Driver)
	}

	switch config.Events.Driver {
	case "log":
	case "kafka":
		if len(config.KafkaBrokers()) == 0 {
			return fmt.Errorf("at least one kafka broker is required for the kafka events driver")
		}
		if config.Events.Topic == "" {
			return fmt.Errorf("kafka topic is required")
		}
	default:
		return fmt.Errorf("unsupported events driver %q", config.Events.Driver)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// KafkaBrokers splits the comma separated broker list.
func (c *Config) KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.Events.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// PublicBaseURL is the externally reachable origin used to build file URLs.
func (c *Config) PublicBaseURL() string {
	if c.Server.PublicURL != "" {
		return strings.TrimRight(c.Server.PublicURL, "/")
	}
	return "http://localhost:" + c.Server.Port
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}
