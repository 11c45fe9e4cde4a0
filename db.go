// db.go
//
// Result store selection. The DSN decides the backend:
//   - postgres://... (or postgresql://...) → Postgres (production)
//   - any other non-empty value            → SQLite file path
//   - unset                                → in-memory (results lost on exit)

package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connect4/go-server/internal/store"
)

func openStore() (store.Store, error) {
	dsn := os.Getenv("DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch {
	case dsn == "":
		log.Warn().Msg("DATABASE_URL not set, using in-memory result store")
		return store.NewMemory(), nil
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		log.Info().Msg("using postgres result store")
		return store.OpenPostgres(ctx, dsn)
	default:
		log.Info().Str("path", dsn).Msg("using sqlite result store")
		return store.OpenSQLite(ctx, dsn)
	}
}
