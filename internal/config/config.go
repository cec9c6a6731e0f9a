package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDBPath         = "xDraft_database.db"
	DefaultSeason         = 2025
	DefaultMinPA          = 25
	DefaultEligibilityURL = "https://baseball.fantasysports.yahoo.com/b1/860/positioneligibility"
	DefaultSavantURL      = "https://baseballsavant.mlb.com"
	DefaultWaitTimeout    = 10 * time.Second
)

type Config struct {
	Addr   string
	DBPath string

	Season int
	MinPA  int

	EligibilityURL string
	SavantURL      string
	WaitTimeout    time.Duration
	Headless       bool
	ChromePath     string
	UserAgent      string

	LogLevel    string
	CORSOrigins []string
}

// Default lit la configuration depuis l'environnement (XDRAFT_*); les flags CLI
// peuvent ensuite la surcharger.
func Default() Config {
	return Config{
		Addr:           envOr("XDRAFT_ADDR", "127.0.0.1:8080"),
		DBPath:         envOr("XDRAFT_DB_PATH", DefaultDBPath),
		Season:         envInt("XDRAFT_SEASON", DefaultSeason),
		MinPA:          envInt("XDRAFT_MIN_PA", DefaultMinPA),
		EligibilityURL: envOr("XDRAFT_ELIGIBILITY_URL", DefaultEligibilityURL),
		SavantURL:      envOr("XDRAFT_SAVANT_URL", DefaultSavantURL),
		WaitTimeout:    envDuration("XDRAFT_WAIT_TIMEOUT", DefaultWaitTimeout),
		Headless:       envBool("XDRAFT_HEADLESS", true),
		ChromePath:     os.Getenv("XDRAFT_CHROME_PATH"),
		UserAgent:      os.Getenv("XDRAFT_USER_AGENT"),
		LogLevel:       envOr("XDRAFT_LOG_LEVEL", "info"),
		CORSOrigins:    envList("XDRAFT_CORS_ORIGINS"),
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db path is empty")
	}
	if c.Season < 1900 {
		return fmt.Errorf("invalid season %d", c.Season)
	}
	if c.MinPA < 0 {
		return fmt.Errorf("invalid min PA %d", c.MinPA)
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("invalid wait timeout %s", c.WaitTimeout)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

// envDuration accepte une durée Go ("15s") ou un nombre de secondes.
func envDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
