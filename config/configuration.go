package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	DevMode  bool   `arg:"--dev,env:DEV_MODE" default:"false"`
	Port     int    `arg:"-p,--port,env:LISTEN_PORT" default:"8010"`
	LogLevel string `arg:"--log-level,env:LOG_LEVEL" default:"default" help:"Log level to use.  Valid values are: debug, info, and warn/warning.  If default the level will be info or debug in dev mode."`

	DBHost     string `arg:"--db-host,env:DB_HOST" default:"localhost"`
	DBName     string `arg:"--db-name,env:DB_NAME" default:"courier"`
	DBPort     int    `arg:"--db-port,env:DB_PORT" default:"5432"`
	DBMaxConns int    `arg:"--db-max-conns,env:DB_MAX_CONNS" default:"10"`
	DBMinConns int    `arg:"--db-min-conns,env:DB_MIN_CONNS" default:"1"`
	DBSSLMode  string `arg:"--db-ssl-mode,env:DB_SSL_MODE" default:"disable"`
	DBUsername string `arg:"--db-username,env:DB_USERNAME" default:"courier"`
	DBPassword string `arg:"--db-password,env:DB_PASSWORD" default:"badpassword"`

	DeliveryWorkers   int           `arg:"--delivery-workers,env:DELIVERY_WORKERS" default:"32" help:"Number of concurrent outbound delivery workers."`
	DeliveryQueueSize int           `arg:"--delivery-queue-size,env:DELIVERY_QUEUE_SIZE" default:"1024" help:"Buffer size of the fresh-emission handoff channel."`
	DeliveryTimeout   time.Duration `arg:"--delivery-timeout,env:DELIVERY_TIMEOUT" default:"10s" help:"Per-request timeout for outbound webhook calls."`
	SchedulerInterval time.Duration `arg:"--scheduler-interval,env:SCHEDULER_INTERVAL" default:"60s" help:"How often the retry scheduler sweeps for due deliveries."`
	ClaimBatchSize    int           `arg:"--claim-batch-size,env:CLAIM_BATCH_SIZE" default:"200" help:"Max due deliveries claimed per scheduler sweep."`
	DrainGrace        time.Duration `arg:"--drain-grace,env:DRAIN_GRACE" default:"15s" help:"How long in-flight deliveries get to finish on shutdown."`
	RetentionDays     int           `arg:"--retention-days,env:RETENTION_DAYS" default:"90" help:"Delivery rows older than this are purged."`
}

func LoadConfig() (*AppConfig, error) {
	var appConfig AppConfig
	arg.MustParse(&appConfig)

	if appConfig.DevMode {
		err := godotenv.Load(".env")
		if err == nil {
			// re-parse to get env vars from .env
			slog.Info("Loaded .env")
			arg.MustParse(&appConfig)
		}
	}

	if appConfig.LogLevel == "default" {
		if appConfig.DevMode {
			logLevel.Set(slog.LevelDebug)
		} else {
			logLevel.Set(slog.LevelInfo)
		}
	} else {
		intendedLevel := strings.ToLower(appConfig.LogLevel)
		switch intendedLevel {
		case "debug":
			logLevel.Set(slog.LevelDebug)
		case "info":
			logLevel.Set(slog.LevelInfo)
		case "warn", "warning":
			logLevel.Set(slog.LevelWarn)
		default:
			slog.Error("Unable to configure log level", "level", appConfig.LogLevel)
		}
	}

	return &appConfig, nil
}
