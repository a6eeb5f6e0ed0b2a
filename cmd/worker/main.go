package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/internal/metrics"
	"github.com/lectio/lectio/internal/pipeline/repository"
	"github.com/lectio/lectio/internal/pipeline/tasks"
	"github.com/lectio/lectio/internal/recognizer"
	"github.com/lectio/lectio/internal/rpcclient"
	"github.com/lectio/lectio/internal/store"
	"github.com/lectio/lectio/pkg/db/aws"
	"github.com/lectio/lectio/pkg/db/postgres"
	clientRedis "github.com/lectio/lectio/pkg/db/redis"
	"github.com/lectio/lectio/pkg/logger"
	"github.com/lectio/lectio/pkg/rabbitmq"
)

func main() {
	configFile := "config.yml"
	cfgFile, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}
	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to db: %s", err)
	}
	appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
	defer psqlDB.Close()

	redisClient, err := clientRedis.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	appLogger.Infof("redis connected")
	defer redisClient.Close()

	s3Client, err := aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		appLogger.Fatalf("could not connect to s3: %s", err)
	}

	broker, err := rabbitmq.NewRabbitMQ(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to rabbitmq: %s", err)
	}
	appLogger.Infof("rabbitmq connected")
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipelineTasks, err := tasks.NewTasks(broker, tasks.Deps{
		Cfg:        cfg,
		Repo:       repository.NewPipelineRepo(psqlDB),
		RedisRepo:  repository.NewPipelineRedisRepo(redisClient),
		Source:     repository.NewS3Repository(s3Client, cfg.S3.MediaBucket),
		Store:      store.NewFileStore(cfg),
		Transcoder: rpcclient.NewClient(cfg),
		Recognizer: recognizer.NewHTTPRecognizer(cfg),
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Fatalf("could not wire tasks: %s", err)
	}

	metricsServer := metrics.StartMetricsServer(cfg.Metrics.Port, appLogger)
	defer metricsServer.Shutdown(context.Background()) // nolint: errcheck

	if err := pipelineTasks.ConsumeAll(ctx, cfg.Worker.WorkerCount); err != nil {
		appLogger.Fatalf("could not start consumers: %s", err)
	}
	pipelineTasks.StartAwakerTicker(ctx, cfg.Scheduler.Interval)
	appLogger.Infof("worker running, %d workers per stage, sweep every %s", cfg.Worker.WorkerCount, cfg.Scheduler.Interval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, os.Interrupt)
	<-quit

	appLogger.Infof("shutting down worker")
	cancel()
	pipelineTasks.Wait()
}
