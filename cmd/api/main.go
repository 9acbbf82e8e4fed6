package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"grow104.org/internal/auth"
	"grow104.org/internal/garden"
	"grow104.org/internal/httpapi"
	"grow104.org/internal/obs"
	"grow104.org/internal/store/pg"
)

var version = "0.3.1"

func main() {
	obs.Init()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  os.Getenv("GROW_AUTH_SECRET"),
		RefreshSecret: os.Getenv("GROW_REFRESH_SECRET"),
	})
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	// Postgres when a DSN is set, in-memory otherwise. /readyz pings
	// the database only in the former case.
	var (
		store garden.Store
		db    *sql.DB
	)
	if dsn := os.Getenv("GROW_PG_DSN"); dsn != "" {
		pgStore, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		store = pgStore
		db = pgStore.DB()
	} else {
		store = garden.NewMemoryStore()
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, store, tokens)
	if origins := os.Getenv("GROW_ALLOWED_ORIGINS"); origins != "" {
		api.SetAllowedOrigins(strings.Split(origins, ","))
	}

	addr := os.Getenv("GROW_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting grow-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
