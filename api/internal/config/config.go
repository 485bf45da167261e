package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
)

type Config struct {
	Port  string
	Debug bool

	DatabaseURL string

	PlannerBaseURL string
	PlannerAPIKey  string
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() *Config {
	return &Config{
		Port:  getEnv("PORT", "8000"),
		Debug: strings.EqualFold(getEnv("DEBUG", ""), "true"),

		DatabaseURL: resolveDSN(),

		PlannerBaseURL: mustEnv("PLANNER_BASE_URL"),
		PlannerAPIKey:  getEnv("PLANNER_API_KEY", ""),
	}
}

// resolveDSN prefers DATABASE_URL and otherwise assembles a DSN from the
// individual POSTGRES_* vars.
func resolveDSN() string {
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		return dsn
	}
	host := strings.TrimSpace(os.Getenv("POSTGRES_HOST"))
	if host == "" {
		return ""
	}
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "postgres")
	pass := os.Getenv("POSTGRES_PASSWORD")
	db := getEnv("POSTGRES_DB", "survey_studio")
	ssl := getEnv("POSTGRES_SSLMODE", "disable")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(user), url.QueryEscape(pass), host, port, db, ssl)
}
