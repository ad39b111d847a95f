package main

import (
	"os"
	"time"

	v1 "certhub/api/v1"
	"certhub/internal/acme"
	"certhub/internal/auth"
	"certhub/internal/cache"
	"certhub/internal/config"
	"certhub/internal/issuance"
	"certhub/internal/report"
	"certhub/internal/stats"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// 1. Load configuration (INI file when CONFIG_FILE is set, env otherwise)
	var cfg *config.Config
	var err error
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = config.LoadFromINI(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Info("Configuration loaded")

	// 2. ACME account key and client
	accountKey, err := acme.LoadOrCreateAccountKey(cfg.ACME.AccountKeyPath)
	if err != nil {
		logger.Fatalf("Failed to load ACME account key: %v", err)
	}
	acmeClient := acme.NewClient(cfg.ACME.DirectoryURL, accountKey)
	logger.Infof("ACME directory: %s", cfg.ACME.DirectoryURL)

	// 3. Usage statistics, shared via Redis when configured
	var recorder stats.Recorder = stats.NewMemoryRecorder()
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatalf("Failed to initialize Redis: %v", err)
		}
		defer rdb.Close()
		recorder = stats.NewRedisRecorder(rdb, logger.WithField("component", "stats"))
		logger.Info("Redis connected")
	}

	// 4. Request store, orchestrator and background sweeper
	store := issuance.NewStore(time.Duration(cfg.Store.RetentionMinutes)*time.Minute, nil)
	orch := issuance.NewOrchestrator(issuance.Config{
		Client: acmeClient,
		Store:  store,
		Poll: issuance.PollPolicy{
			Interval:    time.Duration(cfg.Poll.IntervalSec) * time.Second,
			MaxAttempts: cfg.Poll.MaxAttempts,
		},
		Stats:  recorder,
		Logger: logger,
	})

	sweeper := issuance.NewSweeper(store, issuance.SweeperConfig{
		Enabled:     cfg.Store.SweeperEnabled,
		IntervalSec: cfg.Store.SweepIntervalSec,
	}, logger)
	sweeper.Start()
	defer sweeper.Stop()

	// 5. Admin auth and issue reports
	auth.InitJWT(cfg.JWT.Secret)
	sender := report.NewSender(report.Config{
		ServerToken:  cfg.Report.PostmarkServerToken,
		AccountToken: cfg.Report.PostmarkAccountToken,
		FromEmail:    cfg.Report.FromEmail,
		SupportEmail: cfg.Report.SupportEmail,
	}, logger)

	// 6. HTTP server
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	v1.SetupRouter(r, v1.Deps{
		Config:       cfg,
		Orchestrator: orch,
		Store:        store,
		Stats:        recorder,
		Reports:      sender,
	})

	logger.Infof("Server starting on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
