package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	http_adapter "github.com/timeless/bank-core/internal/app/core/adapter/in/http"
	kafka_adapter "github.com/timeless/bank-core/internal/app/core/adapter/out/kafka"
	memory_adapter "github.com/timeless/bank-core/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/timeless/bank-core/internal/app/core/adapter/out/mysql"
	notify_adapter "github.com/timeless/bank-core/internal/app/core/adapter/out/notify"
	"github.com/timeless/bank-core/internal/app/core/usecase"
	"github.com/timeless/bank-core/pkg/mysql"
	"github.com/timeless/bank-core/pkg/wal"
)

// Ledger 後端種類
const (
	BackendMemory = "memory"
	BackendMySQL  = "mysql"
)

type Config struct {
	Server struct {
		ListenAddress string `yaml:"listen_address"`
	} `yaml:"server"`
	Ledger struct {
		Backend string `yaml:"backend"`
		WALPath string `yaml:"wal_path"`
	} `yaml:"ledger"`
	MySQL mysql.Config         `yaml:"mysql"`
	Kafka kafka_adapter.Config `yaml:"kafka"`
}

func main() {
	// 1. 載入設定
	cfg := loadConfig()

	// 2. 通知出口：有設定 Kafka 就發佈到 Topic，否則寫 Log
	var sink usecase.NotificationSink
	if len(cfg.Kafka.Brokers) > 0 {
		notifier := kafka_adapter.NewNotifier(cfg.Kafka)
		defer notifier.Close()
		sink = notifier
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("using kafka notification sink")
	} else {
		sink = notify_adapter.NewLogSink()
		log.Info().Msg("using log notification sink")
	}

	// 3. 選擇 Ledger 後端
	var accounts usecase.AccountStore
	var uow usecase.UnitOfWork
	switch cfg.Ledger.Backend {
	case BackendMemory:
		// 初始化 WAL
		walFile, err := wal.NewWAL(cfg.Ledger.WALPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init WAL")
		}
		// 程式結束時關閉 WAL
		defer walFile.Close()

		store, err := memory_adapter.NewStore(walFile)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init memory store")
		}
		accounts, uow = store, store
	case BackendMySQL:
		client, err := mysql.NewClient(cfg.MySQL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mysql")
		}
		defer client.Close()
		log.Info().Msg("connected to mysql successfully")

		store := mysql_adapter.NewStore(client)
		if err := store.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate schema")
		}
		accounts, uow = store, store
	default:
		log.Fatal().Str("backend", cfg.Ledger.Backend).Msg("invalid ledger backend")
	}

	// 4. 初始化核心
	engine := usecase.NewLedgerEngine(accounts, uow, sink)
	core := usecase.NewCoreUseCase(engine, accounts)

	// 通知輸送帶的生命週期：cancel 後會先把佇列送完
	engineCtx, stopEngine := context.WithCancel(context.Background())
	core.Start(engineCtx)

	// 5. 啟動 HTTP Server (Driving Adapter)
	server := http_adapter.NewServer(core)
	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddress,
		Handler: server.Router(),
	}

	go func() {
		log.Info().Str("addr", cfg.Server.ListenAddress).Msg("starting http server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to serve")
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	stopEngine()
	log.Info().Msg("server exited")
}

func loadConfig() Config {
	var cfg Config

	cfgData, err := os.ReadFile("config/config.yaml")
	if err == nil {
		if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to parse config")
		}
	} else {
		log.Warn().Err(err).Msg("config file not found, using defaults")
	}

	// 補全預設配置 (如果 yaml 沒寫)
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = ":8080"
	}
	if cfg.Ledger.Backend == "" {
		cfg.Ledger.Backend = BackendMemory
	}
	if cfg.Ledger.WALPath == "" {
		cfg.Ledger.WALPath = "wal.log"
	}
	if cfg.MySQL.MaxOpenConns == 0 {
		cfg.MySQL.MaxOpenConns = 100
	}
	if cfg.MySQL.MaxIdleConns == 0 {
		cfg.MySQL.MaxIdleConns = 10
	}
	if cfg.MySQL.ConnMaxLifetime == 0 {
		cfg.MySQL.ConnMaxLifetime = 30 * time.Minute
	}
	return cfg
}
