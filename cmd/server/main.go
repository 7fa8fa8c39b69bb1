package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/A7medBenRomdhanO/backend/internal/config"
	"github.com/A7medBenRomdhanO/backend/internal/db"
	"github.com/A7medBenRomdhanO/backend/internal/server"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	if migrateOnlyFlag != nil && *migrateOnlyFlag {
		if _, err := db.ConnectAndMigrate(); err != nil {
			log.Fatalf("migrate-only failed: %v", err)
		}
		log.Println("migrations completed; exiting as requested")
		return
	}
	cfg := config.Load()
	if os.Getenv("DATABASE_DSN") == "" {
		// config default is advisory; ConnectAndMigrate reads the env var directly
		os.Setenv("DATABASE_DSN", cfg.DatabaseDSN)
	}
	dbConn, err := db.ConnectAndMigrate()
	if err != nil {
		log.Fatalf("Erreur connexion DB: %v", err)
	}
	log.Printf("Starting server env=%s port=%s", cfg.Env, cfg.Port)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(dbConn)}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
