package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/piyushzingade/exchange/api/redisserver"
	"github.com/piyushzingade/exchange/config"
	infrakafka "github.com/piyushzingade/exchange/infra/kafka"
	"github.com/piyushzingade/exchange/infra/outbox"
	"github.com/piyushzingade/exchange/jobs/broadcaster"
	"github.com/piyushzingade/exchange/service"
	"github.com/piyushzingade/exchange/snapshot"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	// ---------------- Outbox ----------------

	ob, err := outbox.Open(cfg.Snapshot.OutboxDir)
	if err != nil {
		logger.Fatalf("outbox init failed: %v", err)
	}
	defer ob.Close()

	// ---------------- Broadcast producer ----------------

	producer := infrakafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.BroadcastTopic, logger)
	defer producer.Close()

	// ---------------- Engine ----------------

	engine := service.New(cfg.Currency, ob, producer, logger)
	defer engine.Close()

	snap, err := snapshot.Load(cfg.Snapshot.Path)
	if err != nil {
		logger.Fatalf("snapshot load failed: %v", err)
	}
	if snap != nil {
		engine.Restore(snap)
		logger.WithField("path", cfg.Snapshot.Path).Info("restored engine state from snapshot")
	} else {
		logger.Info("no snapshot found, starting fresh")
		for _, base := range cfg.Markets {
			engine.AddMarket(base)
		}
		seedDemoUsers(engine, cfg)
	}

	// ---------------- Background jobs ----------------

	writer := &snapshot.Writer{Path: cfg.Snapshot.Path}
	snapshotDone := engine.StartSnapshotJob(ctx, writer, time.Duration(cfg.Snapshot.IntervalSeconds)*time.Second)

	bc, err := broadcaster.New(
		ob,
		cfg.Kafka.Brokers,
		cfg.Kafka.TradesTopic,
		time.Duration(cfg.Kafka.DrainIntervalSeconds)*time.Second,
		logger,
	)
	if err != nil {
		logger.Fatalf("broadcaster init failed: %v", err)
	}
	defer bc.Close()
	go bc.Run(ctx)

	// ---------------- Command queue ----------------

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	server := redisserver.New(redisClient, engine, cfg.Redis.Queue, logger)

	logger.WithFields(logrus.Fields{
		"markets": cfg.Markets,
		"queue":   cfg.Redis.Queue,
	}).Info("engine running")

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("command server exited: %v", err)
	}

	// Wait for the final shutdown snapshot.
	cancel()
	<-snapshotDone
	logger.Info("engine shutdown complete")
}

// seedDemoUsers funds the configured demo accounts on a fresh start so
// the simulator is usable immediately.
func seedDemoUsers(engine *service.Engine, cfg *config.Config) {
	for _, user := range cfg.Seed.Users {
		if cfg.Seed.QuoteAmount > 0 {
			engine.Credit(user, cfg.Currency, cfg.Seed.QuoteAmount)
		}
		for _, base := range cfg.Markets {
			if cfg.Seed.BaseAmount > 0 {
				engine.Credit(user, base, cfg.Seed.BaseAmount)
			}
		}
	}
}
