/*
Package config loads server configuration from the environment.

PURPOSE:
  One place that knows every environment key and its default. A .env file
  in the working directory is read first if present; variables already set
  in the process environment win.

KEYS:
  APP_ADDR                             listen address          (:8080)
  DB_PATH                              SQLite file             (payroll.db)
  LOG_LEVEL                            logrus level            (info)
  APP_ENV                              development|staging|production
  TAX_RATES_FILE                       optional YAML tax rates
  FORECAST_CRON                        cron spec               (0 6 * * *)
  FORECAST_CRON_ENABLED                run the refresher       (true)
  COMMISSION_PARTIAL_OVERRIDE_INHERIT  partial overrides fall through (false)
  SALARY_PAYCHECKS_PER_YEAR            salary divisor          (26)
  CORS_ORIGINS                         comma separated origins

SEE ALSO:
  - cmd/server/main.go: flags override Addr and DBPath
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all server configuration.
type Config struct {
	Addr        string
	DBPath      string
	LogLevel    string
	Environment string

	TaxRatesFile string

	ForecastCron        string
	ForecastCronEnabled bool

	PartialOverrideInherit bool
	SalaryPaychecksPerYear int

	CORSOrigins []string
}

var defaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	// Missing .env is fine; it never overrides variables already set.
	_ = godotenv.Load()

	cfg := Config{
		Addr:                   getEnv("APP_ADDR", ":8080"),
		DBPath:                 getEnv("DB_PATH", "payroll.db"),
		LogLevel:               strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment:            strings.ToLower(getEnv("APP_ENV", "development")),
		TaxRatesFile:           getEnv("TAX_RATES_FILE", ""),
		ForecastCron:           getEnv("FORECAST_CRON", "0 6 * * *"),
		ForecastCronEnabled:    getEnvBool("FORECAST_CRON_ENABLED", true),
		PartialOverrideInherit: getEnvBool("COMMISSION_PARTIAL_OVERRIDE_INHERIT", false),
		SalaryPaychecksPerYear: getEnvInt("SALARY_PAYCHECKS_PER_YEAR", 26),
		CORSOrigins:            getEnvList("CORS_ORIGINS", defaultCORSOrigins),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configuration the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.SalaryPaychecksPerYear <= 0 {
		return fmt.Errorf("SALARY_PAYCHECKS_PER_YEAR must be positive, got %d", c.SalaryPaychecksPerYear)
	}
	if c.ForecastCronEnabled {
		if _, err := cron.ParseStandard(c.ForecastCron); err != nil {
			return fmt.Errorf("invalid FORECAST_CRON %q: %w", c.ForecastCron, err)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
