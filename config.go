// config.go
//
// Engine timing configuration from the environment. All knobs default to the
// production values; tests construct session.Config directly.

package main

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connect4/go-server/internal/session"
)

// engineConfig builds the session engine config from env vars:
//
//	BOT_WAIT      wait before substituting a bot opponent (default 10s)
//	BOT_DELAY     simulated bot thinking time (default 300ms)
//	FORFEIT_GRACE reconnection window after a disconnect (default 30s)
//	RETENTION     how long an ended match stays reachable (default 15s)
func engineConfig() session.Config {
	cfg := session.DefaultConfig()
	cfg.BotWait = getDuration("BOT_WAIT", cfg.BotWait)
	cfg.BotDelay = getDuration("BOT_DELAY", cfg.BotDelay)
	cfg.ForfeitGrace = getDuration("FORFEIT_GRACE", cfg.ForfeitGrace)
	cfg.Retention = getDuration("RETENTION", cfg.Retention)
	return cfg
}

func getDuration(k string, def time.Duration) time.Duration {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("var", k).Str("value", v).Msg("bad duration, using default")
		return def
	}
	return d
}
