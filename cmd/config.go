package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hako/internal/core/domain/services"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Env      string
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	TimeZone           string
	LockerCount        int
	LeadTime           time.Duration
	BookingHorizonDays int
	SlotDuration       time.Duration

	ExpirySchedule       string
	PenaltyPurgeSchedule string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	KafkaBrokers          []string
	KafkaAppointmentTopic string
	KafkaRetries          int

	JWTSecret string
	TokenTTL  time.Duration
}

// LoadConfig reads a .env file when present, then the environment. Unset
// variables fall back to their defaults; JWT_SECRET has none.
func LoadConfig() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{
		Env:      getEnv("ENV", "development"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "hako"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		TimeZone: getEnv("TIME_ZONE", "America/Bogota"),

		ExpirySchedule:       getEnv("EXPIRY_SCHEDULE", "0 */5 * * * *"),
		PenaltyPurgeSchedule: getEnv("PENALTY_PURGE_SCHEDULE", "0 30 3 * * *"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaBrokers:          splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaAppointmentTopic: getEnv("KAFKA_APPOINTMENT_TOPIC", "appointment-status"),

		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	var errInt, errDur []error
	cfg.LockerCount, errInt = appendInt(errInt, "LOCKER_COUNT", 12)
	cfg.BookingHorizonDays, errInt = appendInt(errInt, "BOOKING_HORIZON_DAYS", 7)
	cfg.RedisDB, errInt = appendInt(errInt, "REDIS_DB", 0)
	cfg.KafkaRetries, errInt = appendInt(errInt, "KAFKA_RETRIES", 5)
	cfg.LeadTime, errDur = appendDuration(errDur, "LEAD_TIME", 60*time.Minute)
	cfg.SlotDuration, errDur = appendDuration(errDur, "SLOT_DURATION", time.Hour)
	cfg.RedisTTL, errDur = appendDuration(errDur, "REDIS_TTL", 8*24*time.Hour)
	cfg.TokenTTL, errDur = appendDuration(errDur, "TOKEN_TTL", 24*time.Hour)

	var errSecret error
	if cfg.JWTSecret == "" {
		errSecret = errors.New("JWT_SECRET is required but not set")
	}

	if err := errors.Join(errors.Join(errInt...), errors.Join(errDur...), errSecret); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DSN is the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// ReservationPolicy builds the booking rules from the configuration.
func (c Config) ReservationPolicy() (services.ReservationPolicy, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return services.ReservationPolicy{}, fmt.Errorf("load time zone %q: %w", c.TimeZone, err)
	}
	return services.NewReservationPolicy(loc, c.LeadTime, c.BookingHorizonDays, c.SlotDuration, c.LockerCount)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func appendInt(errs []error, key string, fallback int) (int, []error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, errs
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, append(errs, fmt.Errorf("%s: %w", key, err))
	}
	return v, errs
}

func appendDuration(errs []error, key string, fallback time.Duration) (time.Duration, []error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, errs
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, append(errs, fmt.Errorf("%s: %w", key, err))
	}
	return v, errs
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
