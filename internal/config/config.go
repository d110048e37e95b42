// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds every runtime setting the booking API needs.  One field
// per environment variable; required variables abort startup when
// missing so misconfiguration surfaces immediately instead of at first
// request.
type Config struct {
	Env            string // application environment (dev/test/prod)
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	Timezone     *time.Location // business timezone for event dates (APP_TIMEZONE)
	PixKey       string         // receiving PIX key shown on charges
	CompanyName  string         // company name rendered into notifications
	CompanyPhone string         // support phone rendered into notifications

	PointsPerReal   int64 // loyalty points credited per whole currency unit paid
	CompletionBonus int64 // points granted when staff mark a booking completed
}

// Load reads the environment and returns a Config.  Missing required
// variables are fatal.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		Timezone:     mustLocation(getenv("APP_TIMEZONE", "America/Sao_Paulo")),
		PixKey:       must("PIX_KEY"),
		CompanyName:  getenv("COMPANY_NAME", "Conexão Adventure"),
		CompanyPhone: getenv("COMPANY_PHONE", ""),

		PointsPerReal:   int64(envInt("POINTS_PER_REAL", 1)),
		CompletionBonus: int64(envInt("COMPLETION_BONUS_POINTS", 50)),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is must() plus integer conversion.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE: %q", name)
	}
	return loc
}
