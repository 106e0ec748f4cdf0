package main

import (
	"github.com/foliopulse/internal/config"
	"github.com/foliopulse/internal/db"
	"github.com/foliopulse/internal/handler"
	"github.com/foliopulse/internal/logger"
	"github.com/foliopulse/internal/queue"
	"github.com/foliopulse/internal/router"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Logger

	gin.SetMode(cfg.GinMode)

	gdb, err := db.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	var jobQueue queue.Queue
	if cfg.AMQPURL != "" {
		amqpQueue, err := queue.NewAMQPQueue(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect job queue")
		}
		defer amqpQueue.Close()
		jobQueue = amqpQueue
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("job queue connected")
	} else {
		// Queue-less dev mode: jobs are accepted and dropped in-process.
		jobQueue = queue.NewMemoryQueue()
		log.Warn().Msg("AMQP_URL not set, using in-memory job queue")
	}

	api := handler.NewAPI(gdb, jobQueue, cfg, log)
	r := router.Setup(api, cfg.SessionSecret)

	log.Info().Str("addr", cfg.ListenAddr).Msg("server starting")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("failed to run server")
	}
}
