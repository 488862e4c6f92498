package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thumbnailer/internal/cache"
	"thumbnailer/internal/config"
	"thumbnailer/internal/handlers"
	"thumbnailer/internal/logging"
	"thumbnailer/internal/metrics"
	"thumbnailer/internal/middleware"
	"thumbnailer/internal/render"
	"thumbnailer/internal/thumbnail"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("configuration error: %v", err)
	}
	cfg.LogSettings()

	metrics.Initialize()

	if cfg.VipsEnabled {
		render.InitVips()
	}

	store := cache.New(cfg.CacheDir)
	extractor, err := thumbnail.New(thumbnail.Config{
		Quality:   cfg.Quality,
		MaxHeight: cfg.MaxHeight,
		Store:     store,
		Workers:   cfg.Workers,
	})
	if err != nil {
		logging.Fatal("failed to initialize extractor: %v", err)
	}

	h := handlers.New(extractor)
	router := setupRouter(h)

	handler := middleware.Metrics()(router)
	handler = middleware.Logger(cfg.LogHealthChecks)(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, extractor)

	logging.Info("thumbnailer listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/thumbnail", h.Thumbnail).Methods("GET")

	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}

func handleShutdown(srv *http.Server, extractor *thumbnail.Extractor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logging.Info("received %v, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("server shutdown: %v", err)
	}

	// In-flight extractions finish before vips goes away under them.
	extractor.Close()
	render.ShutdownVips()
}
