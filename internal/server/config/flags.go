package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/blogauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-r string   Redis address for attempt counters (empty keeps them in Postgres)
//	-l int      session lifetime, minutes
//	-m int      max concurrent sessions per user (0 = unlimited)
//	-y string   session cap policy ("evict-oldest" or "reject")
//	-w int      rate limit window, seconds
//	-n int      rate limit max attempts per window
//	-k int      lockout threshold (consecutive failures)
//	-o int      lockout duration, minutes
//	-b int      bcrypt hash cost
//	-i int      expired session sweep interval, minutes
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and converted to time.Duration.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-l", "-m", "-y", "-w", "-n", "-k", "-o", "-b", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address for attempt counters")
	fs.StringVar(&config.SessionCapPolicy, "y", config.SessionCapPolicy, "session cap policy (evict-oldest|reject)")

	sessionLifetime := fs.Int("l", int(config.SessionLifetime.Minutes()), "session lifetime (in minutes)")
	fs.IntVar(&config.MaxConcurrentSessions, "m", config.MaxConcurrentSessions, "max concurrent sessions per user (0 = unlimited)")
	rateLimitWindow := fs.Int("w", int(config.RateLimitWindow.Seconds()), "rate limit window (in seconds)")
	fs.IntVar(&config.RateLimitMaxAttempts, "n", config.RateLimitMaxAttempts, "rate limit max attempts per window")
	fs.IntVar(&config.LockoutThreshold, "k", config.LockoutThreshold, "lockout threshold (consecutive failures)")
	lockoutDuration := fs.Int("o", int(config.LockoutDuration.Minutes()), "lockout duration (in minutes)")
	fs.IntVar(&config.HashCost, "b", config.HashCost, "bcrypt hash cost")
	sweepInterval := fs.Int("i", int(config.SweepInterval.Minutes()), "expired session sweep interval (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Duration flags are applied only when actually passed; re-applying the
	// integer defaults would truncate a finer-grained JSON value.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "l":
			config.SessionLifetime = time.Duration(*sessionLifetime) * time.Minute
		case "w":
			config.RateLimitWindow = time.Duration(*rateLimitWindow) * time.Second
		case "o":
			config.LockoutDuration = time.Duration(*lockoutDuration) * time.Minute
		case "i":
			config.SweepInterval = time.Duration(*sweepInterval) * time.Minute
		}
	})
}
