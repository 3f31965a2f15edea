package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/db"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/player"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/realtime"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/redis"
)

func main() {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	env := LoadEnvironment()
	if env.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}

	// run pending migrations
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	if env.RedisAddress != "" {
		redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)
	}

	store := db.NewStore(nil)
	storageSystem := InitStorage(env)
	playerSvc := player.NewService(store)

	commands, err := realtime.NewCommandPublisher(env.MQTTBrokerURL)
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect failed")
	}
	defer commands.Close()

	hub := realtime.NewHub()
	relay := realtime.NewRelay(hub, store, commands, env.SecretKey)
	playerSvc.SetPresence(relay)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := realtime.NewSweeper(store, relay)
	if env.SweepInterval > 0 {
		sweeper.SetInterval(env.SweepInterval)
	}
	go sweeper.Run(ctx)

	r := gin.Default()
	RegisterRoutes(r, env, store, storageSystem, playerSvc, relay)

	log.Info().Str("address", env.ServerAddress).Msg("server listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
