package app

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"olilab/engine"
	"olilab/notify"
	"olilab/store"
)

// Aliases so handlers can write app.H / app.Ctx.
type (
	Ctx = gin.Context
	H   = gin.H
)

// App aggregates the wired dependencies.
type App struct {
	Router *gin.Engine
	Store  store.Store
	Engine *engine.Engine
	RDB    *redis.Client
	Config Config
}

// Config comes from environment variables; see loadConfig for keys.
type Config struct {
	Port           string
	WebOrigin      string
	StorageDriver  store.Driver
	SQLitePath     string
	PostgresDSN    string
	RedisAddr      string
	RedisPwd       string
	NotifyChannel  string
	LoanPeriodDays int

	BootstrapUsername string
	BootstrapFullName string
	BootstrapEmail    string
}

func MustNew() *App {
	cfg := loadConfig()

	st, err := store.Open(cfg.StorageDriver, cfg.SQLitePath, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	// Redis is optional; without it notification records still commit, they
	// just are not fanned out to dispatchers.
	var rdb *redis.Client
	var notifier engine.Notifier
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		notifier = notify.NewPublisher(rdb, cfg.NotifyChannel)
	}

	eng := engine.New(st, engine.Options{
		Notifier:       notifier,
		LoanPeriodDays: cfg.LoanPeriodDays,
	})

	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{Router: r, Store: st, Engine: eng, RDB: rdb, Config: cfg}
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	_ = a.Store.Close()
}

func loadConfig() Config {
	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	loanDays := engine.DefaultLoanPeriodDays
	if v := os.Getenv("LOAN_PERIOD_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			loanDays = n
		}
	}
	return Config{
		Port:           get("PORT", "3001"),
		WebOrigin:      get("WEB_ORIGIN", "http://localhost:5173"),
		StorageDriver:  store.Driver(get("OLILAB_STORAGE_DRIVER", string(store.DriverSQLite))),
		SQLitePath:     get("OLILAB_SQLITE_PATH", "olilab.db"),
		PostgresDSN:    os.Getenv("OLILAB_POSTGRES_DSN"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPwd:       os.Getenv("REDIS_PASSWORD"),
		NotifyChannel:  get("NOTIFY_CHANNEL", notify.DefaultChannel),
		LoanPeriodDays: loanDays,

		BootstrapUsername: get("BOOTSTRAP_ADMIN_USERNAME", ""),
		BootstrapFullName: get("BOOTSTRAP_ADMIN_NAME", "Administrator"),
		BootstrapEmail:    get("BOOTSTRAP_ADMIN_EMAIL", ""),
	}
}
