// Command echoing-hearts runs the Echoing Hearts API: accounts, whispers on
// the map, anonymous conversations with progressive profile reveal, and the
// WebSocket gateway that pushes all of it in real time.
//
// main only wires things together. Each layer is built in its own init_*.go
// file: repositories, then services, then handlers, then routes.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yash-SD99/Echoing-Hearts/config"
	"github.com/Yash-SD99/Echoing-Hearts/database"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/i18n"
	"github.com/Yash-SD99/Echoing-Hearts/ws"
	"github.com/rs/cors"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] echoing-hearts server starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	db, err := database.New(cfg.Database.Path, database.Migrations())
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	catalog, err := i18n.LoadEmbedded()
	if err != nil {
		log.Fatalf("[main] failed to load translations: %v", err)
	}

	repos := initRepositories(db.Conn)

	hub := ws.NewHub()
	go hub.Run()

	svcs, limiters, cleanup := initServices(db.Conn, repos, hub, catalog, cfg)
	registerHubCallbacks(hub, svcs)
	cleanup.Start()

	h, err := initHandlers(svcs, repos, limiters, hub, catalog, cfg)
	if err != nil {
		log.Fatalf("[main] failed to initialize handlers: %v", err)
	}

	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Auth, repos.User)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// WebSocket clients first, then in-flight HTTP requests get 5 seconds.
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] forced shutdown: %v", err)
	}

	cleanup.Stop()
	limiters.Stop()
	svcs.Location.Close()

	log.Println("[main] server stopped gracefully")
}
