package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Postgres   DBConfig
	Redis      RedisConfig
	S3         S3Config
	RabbitMQ   RabbitMQConfig
	Store      StoreConfig
	Scheduler  SchedulerConfig
	Worker     WorkerConfig
	Transcoder TranscoderConfig
	Recognizer RecognizerConfig
	Metrics    MetricsConfig
	Logger     Logger
}

type ServerConfig struct {
	AppVersion   string
	Port         string
	Mode         string
	JwtSecretKey string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	PgDriver string
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
}

type S3Config struct {
	Endpoint    string
	Region      string
	AccessKey   string
	SecretKey   string
	MediaBucket string
}

type RabbitMQConfig struct {
	URL         string
	QueueSuffix string
	Prefetch    int
	MaxAttempts int
}

// StoreConfig locates the shared data root. Every worker, on every host,
// must reach the same filesystem under DataDir.
type StoreConfig struct {
	DataDir string
	TempDir string
}

type SchedulerConfig struct {
	Interval       time.Duration
	OfferingWindow time.Duration
	SweepLockTTL   time.Duration
	Languages      []string
	// CueLength overrides the caption cue bound; zero means the engine
	// default.
	CueLength int
}

type WorkerConfig struct {
	WorkerCount int
	MaxCPUUsage float64
}

type TranscoderConfig struct {
	Addr    string
	Timeout time.Duration
}

type RecognizerConfig struct {
	Addr    string
	Timeout time.Duration
}

type MetricsConfig struct {
	Port string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
