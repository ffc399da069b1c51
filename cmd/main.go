package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pairlog/pairlog/internal/cli"
	"github.com/pairlog/pairlog/internal/config"
	"github.com/pairlog/pairlog/internal/identity"
	"github.com/pairlog/pairlog/internal/logger"
	"github.com/pairlog/pairlog/internal/model"
	"github.com/pairlog/pairlog/internal/repository/memory"
	"github.com/pairlog/pairlog/internal/repository/postgres"
	"github.com/pairlog/pairlog/internal/service"
	"github.com/pairlog/pairlog/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	var users model.UserStore
	switch cfg.Store {
	case "memory":
		users = memory.NewUserStore()
	default:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Fatal("failed to initialize storage", "error", err)
		}
		defer db.Close()
		users = postgres.NewUserRepository(db)
	}

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.SessionTTL)
	identityService := identity.NewService(users, tokenManager, nil, logger)

	linkingService := service.NewLinking(users, service.NewSequentialPairWriter(users, logger), logger)
	calendarService := service.NewCalendar(users, linkingService, logger)
	profileService := service.NewProfile(users, logger)
	ctxMgr := model.NewSessionContext()

	logAppVersion()

	app := cli.NewApp(identityService, profileService, linkingService, calendarService, ctxMgr, logger)
	app.Run(ctx)
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
