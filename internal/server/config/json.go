package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/blogauth/internal/flagx"
	"github.com/dmitrijs2005/blogauth/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	DatabaseDSN           string         `json:"database_dsn"`
	RedisAddr             string         `json:"redis_addr"`
	SessionLifetime       timex.Duration `json:"session_lifetime"`
	MaxConcurrentSessions int            `json:"max_concurrent_sessions"`
	SessionCapPolicy      string         `json:"session_cap_policy"`
	RateLimitWindow       timex.Duration `json:"rate_limit_window"`
	RateLimitMaxAttempts  int            `json:"rate_limit_max_attempts"`
	LockoutThreshold      int            `json:"lockout_threshold"`
	LockoutDuration       timex.Duration `json:"lockout_duration"`
	HashCost              int            `json:"hash_cost"`
	SweepInterval         timex.Duration `json:"sweep_interval"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. The resulting values are copied into the target Config.
// If the file cannot be read or contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	// Seed the DTO from the current values so a partial file overlays only
	// the fields it names; absent keys keep their defaults.
	c := &JsonConfig{
		DatabaseDSN:           config.DatabaseDSN,
		RedisAddr:             config.RedisAddr,
		SessionLifetime:       timex.Duration{Duration: config.SessionLifetime},
		MaxConcurrentSessions: config.MaxConcurrentSessions,
		SessionCapPolicy:      config.SessionCapPolicy,
		RateLimitWindow:       timex.Duration{Duration: config.RateLimitWindow},
		RateLimitMaxAttempts:  config.RateLimitMaxAttempts,
		LockoutThreshold:      config.LockoutThreshold,
		LockoutDuration:       timex.Duration{Duration: config.LockoutDuration},
		HashCost:              config.HashCost,
		SweepInterval:         timex.Duration{Duration: config.SweepInterval},
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.RedisAddr = c.RedisAddr
	config.SessionLifetime = time.Duration(c.SessionLifetime.Duration)
	config.MaxConcurrentSessions = c.MaxConcurrentSessions
	config.SessionCapPolicy = c.SessionCapPolicy
	config.RateLimitWindow = time.Duration(c.RateLimitWindow.Duration)
	config.RateLimitMaxAttempts = c.RateLimitMaxAttempts
	config.LockoutThreshold = c.LockoutThreshold
	config.LockoutDuration = time.Duration(c.LockoutDuration.Duration)
	config.HashCost = c.HashCost
	config.SweepInterval = time.Duration(c.SweepInterval.Duration)
}
