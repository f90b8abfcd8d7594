package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pairvest/config"
	"pairvest/internal/database"
	"pairvest/internal/domain"
	"pairvest/internal/router"
	"pairvest/internal/scheduler"
	"pairvest/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	clock := domain.RealClock{}
	bonusSvc := service.NewBonusService(db, clock)
	investmentSvc := service.NewInvestmentService(db, clock, bonusSvc)
	pairingSvc := service.NewPairingService(db, clock, investmentSvc, bonusSvc)
	maturitySvc := service.NewMaturityService(db, clock)

	ctx, cancel := context.WithCancel(context.Background())
	sched := scheduler.New(maturitySvc, pairingSvc, cfg.Scheduler.SweepInterval)
	sched.Start(ctx)

	engine := router.Setup(cfg, db, clock)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
