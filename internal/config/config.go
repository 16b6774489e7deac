package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from the environment
// (optionally seeded from a .env file).
type Config struct {
	AppName         string
	ServerPort      string
	MySQLDSN        string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	JWTSecret       string
	SwaggerHost     string
	LogLevel        string
	LogPretty       bool
	StrictClone     bool
	ResetDB         bool
	MailFrom        string
	SendgridAPIKey  string
	ResetURL        string
	ResetTokenTTL   time.Duration
	ShutdownTimeout time.Duration
}

// Load builds Config from environment with sensible defaults.
// A missing .env file is not an error; a malformed one is.
func Load() (*Config, error) {
	dotEnv := os.Getenv("DOTENV_PATH")
	if dotEnv == "" {
		dotEnv = ".env"
	}
	if err := godotenv.Load(dotEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return &Config{
		AppName:         v.GetString("APP_NAME"),
		ServerPort:      v.GetString("SERVER_PORT"),
		MySQLDSN:        v.GetString("MYSQL_DSN"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisDB:         v.GetInt("REDIS_DB"),
		RedisPass:       v.GetString("REDIS_PASSWORD"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		SwaggerHost:     v.GetString("SWAGGER_HOST"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogPretty:       v.GetBool("LOG_PRETTY"),
		StrictClone:     v.GetBool("STRICT_CLONE"),
		ResetDB:         v.GetBool("RESET_DB"),
		MailFrom:        v.GetString("MAIL_FROM"),
		SendgridAPIKey:  v.GetString("SENDGRID_API_KEY"),
		ResetURL:        v.GetString("PASSWORD_RESET_URL"),
		ResetTokenTTL:   v.GetDuration("PASSWORD_RESET_TTL"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "Learnpath")
	v.SetDefault("SERVER_PORT", "4000")
	v.SetDefault("MYSQL_DSN", "user:password@tcp(localhost:3306)/learnpath?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("SWAGGER_HOST", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("STRICT_CLONE", false)
	v.SetDefault("RESET_DB", false)
	v.SetDefault("MAIL_FROM", "noreply@localhost")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("PASSWORD_RESET_URL", "http://localhost:3000/password-reset")
	v.SetDefault("PASSWORD_RESET_TTL", 24*time.Hour)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
}
