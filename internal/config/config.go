package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	TargetChar   string
	SweepTargets []string
	Workers      int
	LogLevel     string

	DatabaseURL string
	ExportPath  string
	ChartPath   string

	Serve     bool
	Port      string
	BindAddrs string

	PushoverAppToken string
	PushoverUserKey  string
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		TargetChar:       os.Getenv("TARGET_CHAR"),
		SweepTargets:     splitList(os.Getenv("SWEEP_TARGETS")),
		Workers:          intEnv("WORKERS", 1),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ExportPath:       os.Getenv("EXPORT_PATH"),
		ChartPath:        os.Getenv("CHART_PATH"),
		Serve:            boolEnv("SERVE"),
		Port:             os.Getenv("PORT"),
		BindAddrs:        os.Getenv("BIND_ADDRS"),
		PushoverAppToken: os.Getenv("PUSHOVER_APP_TOKEN"),
		PushoverUserKey:  os.Getenv("PUSHOVER_USER_KEY"),
	}

	// An explicitly empty TARGET_CHAR is left for the search to reject
	if _, set := os.LookupEnv("TARGET_CHAR"); !set {
		cfg.TargetChar = "H"
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.BindAddrs == "" {
		cfg.BindAddrs = "0.0.0.0"
	}

	return cfg
}

// Addrs returns the listen addresses, one per bind address
func (c *Config) Addrs() []string {
	var addrs []string
	for _, host := range splitList(c.BindAddrs) {
		if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
			host = "[" + host + "]"
		}
		addrs = append(addrs, host+":"+c.Port)
	}
	return addrs
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func intEnv(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func boolEnv(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}
