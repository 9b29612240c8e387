package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cassieopeanuts/sithtipahpreview/config"
	"github.com/cassieopeanuts/sithtipahpreview/controller"
	"github.com/cassieopeanuts/sithtipahpreview/dao"
	"github.com/cassieopeanuts/sithtipahpreview/logger"
	"github.com/cassieopeanuts/sithtipahpreview/logic"
	"github.com/cassieopeanuts/sithtipahpreview/middleware"
	"github.com/cassieopeanuts/sithtipahpreview/pkg"
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// .env is optional; secrets can come from the config file instead
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		logger.Fatal("usage: sithtipahpreview <config.yaml>")
	}
	if err := config.LoadConfig(os.Args[1]); err != nil {
		logger.Fatal("failed to load config", zap.String("path", os.Args[1]), zap.Error(err))
	}
	cfg := &config.GlobalConfig

	// Open the embedded database. The pool is capped at one connection so
	// store statements are serialized; busy_timeout covers transient locks.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.Database.Path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", cfg.Database.Path), zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to access database pool", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(1)

	// Initialize DAOs
	userDAO := dao.NewUserDAO(db)
	if err := userDAO.Migrate(context.Background()); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// Initialize Logics
	ledger := logic.NewLedgerLogic(userDAO, logic.LedgerConfig{
		DefaultBalance:  cfg.Bot.DefaultBalance,
		FaucetAmount:    cfg.Bot.FaucetAmount,
		FaucetThreshold: cfg.Bot.FaucetThreshold,
	})
	authLogic := logic.NewAuthLogic(userDAO, cfg.Auth.Secret, cfg.Auth.ExpHour)

	// Initialize Nostr client
	nostrClient, err := pkg.NewNostrClient(cfg.Nostr.RelayURL, cfg.Nostr.BotPubkey, cfg.Nostr.SecretKey)
	if err != nil {
		logger.Fatal("failed to initialize nostr client", zap.Error(err))
	}
	defer nostrClient.Close()

	// Initialize Controllers
	commandCtrl := controller.NewCommandController(ledger)
	botCtrl := controller.NewBotController(commandCtrl, nostrClient, cfg.Bot.Prefix)
	userCtrl := controller.NewUserController(ledger, authLogic)

	// Start the chat command loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := botCtrl.StartNostrServices(ctx); err != nil {
		logger.Fatal("failed to start nostr services", zap.Error(err))
	}
	logger.Info("bot listening", zap.String("relay", cfg.Nostr.RelayURL))

	// Setup Gin router
	r := gin.Default()
	r.POST("/user/login", userCtrl.Login)
	r.GET("/user", middleware.Auth, userCtrl.GetUser)
	r.GET("/user/balance", middleware.Auth, userCtrl.GetBalance)

	// Run server
	if err := r.Run(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		logger.Fatal("failed to run server", zap.Error(err))
	}
}
