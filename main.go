package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/artontop/artontop/config"
	"github.com/artontop/artontop/routes"
	"github.com/artontop/artontop/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync() //nolint:errcheck

	db := config.InitDatabase()
	r := routes.SetupRouter(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// remove uploads no row points at any more
	utils.StartOrphanSweeper(ctx, db, cfg.UploadDir, time.Duration(cfg.OrphanSweepMinutes)*time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(ctx, ":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
	utils.Sugar.Info("server stopped")
}
