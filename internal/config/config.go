package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/petatwork/service-booking/internal/pkg/database"
)

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker and consumer-group settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port   string
	AppEnv string

	DBConfig    database.PostgresConfig
	JWTConfig   JWTConfig
	KafkaConfig KafkaConfig

	// DailyRateCents is the per-day care rate used to derive booking prices.
	DailyRateCents int64

	// AllowOwnerAccept enables the trusted mode in which pet owners may
	// accept their own bookings without going through the counterparty.
	AllowOwnerAccept bool
}

// Load reads configuration from the environment with the PETWORK prefix.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("PETWORK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "petatwork")
	v.SetDefault("DB_PASSWORD", "petatwork")
	v.SetDefault("DB_NAME", "petatwork_booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "petatwork.")
	v.SetDefault("DAILY_RATE_CENTS", 1000)
	v.SetDefault("ALLOW_OWNER_ACCEPT", false)

	secret := v.GetString("JWT_SECRET")
	if secret == "" {
		if v.GetString("APP_ENV") != "development" {
			return nil, fmt.Errorf("PETWORK_JWT_SECRET is required outside development")
		}
		secret = "dev-only-secret"
	}

	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{Secret: secret},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		DailyRateCents:   v.GetInt64("DAILY_RATE_CENTS"),
		AllowOwnerAccept: v.GetBool("ALLOW_OWNER_ACCEPT"),
	}, nil
}
