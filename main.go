package main

import (
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connect4/go-server/internal/events"
	"github.com/robalobadob/connect4/go-server/internal/httpserver"
	"github.com/robalobadob/connect4/go-server/internal/session"
	"os"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	results, err := openStore()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open result store")
	}

	var pub events.Publisher = events.Nop{}
	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		topic := getEnv("KAFKA_TOPIC", "connect4-events")
		pub = events.NewKafka(broker, topic)
		log.Info().Str("broker", broker).Str("topic", topic).Msg("kafka publisher enabled")
	}
	defer func() { _ = pub.Close() }()

	hub := httpserver.NewHub()
	engine := session.New(engineConfig(), clockwork.NewRealClock(), hub, results, pub)
	srv := httpserver.New(engine, hub, results)

	port := getEnv("PORT", "4000")
	log.Info().Str("port", port).Msg("starting connect4 server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
