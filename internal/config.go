package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Replication   ReplicationConfig   `mapstructure:"replication"`
	Pagination    PaginationConfig    `mapstructure:"pagination"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

// PaginationConfig resolves the default page limit once at startup; services
// receive it through their constructors instead of reading ambient state.
type PaginationConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
}

type ReplicationConfig struct {
	// Provider selects the outbound sink: "aws" or "redis".
	Provider string                 `mapstructure:"provider"`
	Source   string                 `mapstructure:"source"`
	AWS      AWSReplicationConfig   `mapstructure:"aws"`
	Redis    RedisReplicationConfig `mapstructure:"redis"`
}

type AWSReplicationConfig struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseLocalStack   bool   `mapstructure:"use_localstack"`
	Endpoint        string `mapstructure:"endpoint"`
	AdminSNSTopic   string `mapstructure:"admin_sns_topic_arn"`
	AdminSalesSQS   string `mapstructure:"admin_sales_sqs_url"`
}

type RedisReplicationConfig struct {
	Addr           string `mapstructure:"addr"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db"`
	QueueProducts  string `mapstructure:"queue_products"`
	QueuePurchases string `mapstructure:"queue_purchases"`
	QueueSales     string `mapstructure:"queue_sales"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ----------------- ENV LOADING -----------------

// LoadConfigFromEnv builds the config from environment variables for
// container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:           getEnv("SERVER_BASE_URL", ""),
			AllowedOrigins:    getEnv("SERVER_ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DB_SOURCE", ""),
		},
		Pagination: PaginationConfig{
			DefaultLimit: getEnvAsInt("PAGINATION_DEFAULT_LIMIT", 1000),
		},
		Replication: ReplicationConfig{
			Provider: getEnv("REPLICATION_PROVIDER", "redis"),
			Source:   getEnv("REPLICATION_SOURCE", "api-admin"),
			AWS: AWSReplicationConfig{
				Region:          getEnv("AWS_REGION", "us-east-1"),
				AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
				UseLocalStack:   getEnv("AWS_USE_LOCALSTACK", "") == "1",
				Endpoint:        getEnv("AWS_ENDPOINT", ""),
				AdminSNSTopic:   getEnv("AWS_ADMIN_SNS_TOPIC_ARN", ""),
				AdminSalesSQS:   getEnv("AWS_ADMIN_SALES_SQS_URL", ""),
			},
			Redis: RedisReplicationConfig{
				Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				QueueProducts:  getEnv("REDIS_QUEUE_PRODUCTS", "job-queue-products"),
				QueuePurchases: getEnv("REDIS_QUEUE_PURCHASES", "job-queue-purchases"),
				QueueSales:     getEnv("REDIS_QUEUE_SALES", "job-queue-sales"),
			},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Replication.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("replication config: %v", err))
	}

	if c.Pagination.DefaultLimit <= 0 {
		errs = append(errs, "pagination config: default_limit must be positive")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *ReplicationConfig) Validate() error {
	switch c.Provider {
	case "aws":
		if c.AWS.AdminSNSTopic == "" {
			return errors.New("aws.admin_sns_topic_arn is required")
		}
		if c.AWS.AdminSalesSQS == "" {
			return errors.New("aws.admin_sales_sqs_url is required")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required")
		}
	case "none":
		// messages dropped; useful for local development only
	default:
		return fmt.Errorf("unknown replication provider %q", c.Provider)
	}
	return nil
}
