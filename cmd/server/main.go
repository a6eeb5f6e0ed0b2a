package main

import (
	"log"

	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/internal/server"
	"github.com/lectio/lectio/pkg/db/aws"
	"github.com/lectio/lectio/pkg/db/postgres"
	"github.com/lectio/lectio/pkg/db/redis"
	"github.com/lectio/lectio/pkg/logger"
	"github.com/lectio/lectio/pkg/rabbitmq"
)

func main() {
	log.Println("Starting trigger api server")
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

	redisClient, err := redis.NewRedisClient(cfg)
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

	s := server.NewServer(cfg, psqlDB, redisClient, s3Client, broker, appLogger)
	if err = s.Run(); err != nil {
		appLogger.Fatalf("could not start server: %s", err)
	}
}
