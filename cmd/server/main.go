package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"medialinks-backend/internal/api"
	"medialinks-backend/internal/config"
	"medialinks-backend/internal/files"
	"medialinks-backend/internal/links"
	"medialinks-backend/internal/logging"
	"medialinks-backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Sync()
	logger := logging.L()

	backend, err := storage.NewStorageBackend(cfg)
	if err != nil {
		logger.Fatal("failed to create storage backend", zap.Error(err))
	}

	issuer, err := links.NewIssuer(cfg)
	if err != nil {
		logger.Fatal("failed to create link issuer", zap.Error(err))
	}

	folders, err := files.FoldersFromConfig(cfg.Folders)
	if err != nil {
		logger.Fatal("invalid folder configuration", zap.Error(err))
	}

	singleExpiry, err := cfg.GetSingleExpiry()
	if err != nil {
		logger.Fatal("invalid single link expiry", zap.Error(err))
	}

	service := files.NewService(
		storage.NewRemoteLister(backend, cfg.CDN.BaseURL),
		issuer,
		files.Options{
			CDNBase:      cfg.CDN.BaseURL,
			Folders:      folders,
			SingleExpiry: singleExpiry,
			Concurrency:  cfg.Links.Concurrency,
		},
	)

	router := api.NewRouter(api.NewFileHandler(service))

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	useTLS := cfg.Server.TLS.CertFile != "" && cfg.Server.TLS.KeyFile != ""
	if useTLS {
		server.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			CurvePreferences: []tls.CurveID{
				tls.CurveP256,
				tls.X25519,
			},
		}
	}

	go func() {
		logger.Info("starting server",
			zap.String("addr", server.Addr),
			zap.String("storage", backend.GetName()),
			zap.String("issuer", issuer.GetName()),
			zap.Bool("tls", useTLS),
		)
		var err error
		if useTLS {
			err = server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}
