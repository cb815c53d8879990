package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Admin     AdminConfig
	Booking   BookingConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
	BaseURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type AdminConfig struct {
	// Bcrypt hash of the single shared admin credential.
	PasswordHash string
}

type BookingConfig struct {
	PendingTimeout time.Duration
	SweepInterval  time.Duration
	MaxSeats       int
	MaxNameLength  int
	MaxPhoneLength int
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "seat-reservation")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("PENDING_TIMEOUT_MINUTES", 30)
	viper.SetDefault("SWEEP_INTERVAL_MINUTES", 5)
	viper.SetDefault("MAX_SEATS_PER_BOOKING", 10)
	viper.SetDefault("MAX_NAME_LENGTH", 100)
	viper.SetDefault("MAX_PHONE_LENGTH", 20)
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
			BaseURL: viper.GetString("BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Admin: AdminConfig{
			PasswordHash: viper.GetString("ADMIN_PASSWORD_HASH"),
		},
		Booking: BookingConfig{
			PendingTimeout: time.Duration(viper.GetInt("PENDING_TIMEOUT_MINUTES")) * time.Minute,
			SweepInterval:  time.Duration(viper.GetInt("SWEEP_INTERVAL_MINUTES")) * time.Minute,
			MaxSeats:       viper.GetInt("MAX_SEATS_PER_BOOKING"),
			MaxNameLength:  viper.GetInt("MAX_NAME_LENGTH"),
			MaxPhoneLength: viper.GetInt("MAX_PHONE_LENGTH"),
		},
		RateLimit: RateLimitConfig{
			RPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst: viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	return config, nil
}
