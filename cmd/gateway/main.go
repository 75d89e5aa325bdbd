package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clusslin/exdicom/config"
	"github.com/clusslin/exdicom/dispatch"
	httphandler "github.com/clusslin/exdicom/ingestion/service/http"
	"github.com/clusslin/exdicom/notify"
	"github.com/clusslin/exdicom/pipeline"
	"github.com/clusslin/exdicom/storage/blob"
	"github.com/clusslin/exdicom/storage/ledger"
)

// Gateway configuration file path
const gatewayConfigPath = "./config/gateway.defaults.yml"

func main() {
	logger := log.New(os.Stdout, "[UPLOAD-GW] ", log.LstdFlags|log.Lshortfile)
	logger.Println("Starting upload-completion gateway...")

	// 1. Load gateway configuration
	cfg, err := config.LoadGatewayConfig(gatewayConfigPath)
	if err != nil {
		logger.Fatalf("Failed to load gateway configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize collaborators
	logger.Println("Initializing blob store...")
	blobStore, err := blob.NewDriveStore(ctx, cfg.Google.CredentialsFile, cfg.Google.DriveFolderID, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize blob store: %v", err)
	}
	defer blobStore.Close()

	logger.Println("Initializing ledger...")
	led, err := ledger.New(ctx, &cfg.Ledger, &cfg.Google, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize ledger: %v", err)
	}
	defer led.Close()

	var notifier notify.Notifier
	if cfg.Notifier.Enabled {
		notifier, err = notify.NewSMTPNotifier(cfg.Notifier, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize notifier: %v", err)
		}
	} else {
		logger.Println("Notifications disabled in configuration.")
		notifier = notify.NewNoopNotifier(logger)
	}

	dispatcher, err := dispatch.New(&cfg.Dispatch, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize dispatcher: %v", err)
	}
	defer dispatcher.Close()

	// 3. Create the completion pipeline and HTTP handler
	orchestrator := pipeline.New(cfg.Pipeline, blobStore, led, notifier, dispatcher, logger)
	handler := httphandler.NewUploadHandler(orchestrator, led, logger)

	mux := http.NewServeMux()
	handler.Register(mux)

	// Use HTTP server configuration with defaults
	readTimeout := config.ParseDuration(cfg.HttpServer.ReadTimeout, 5*time.Second, "http_server.read_timeout")
	// The pipeline performs blocking calls to Drive, the ledger, SMTP and
	// the webhook endpoint inside one request.
	writeTimeout := config.ParseDuration(cfg.HttpServer.WriteTimeout, 60*time.Second, "http_server.write_timeout")
	idleTimeout := config.ParseDuration(cfg.HttpServer.IdleTimeout, 60*time.Second, "http_server.idle_timeout")
	maxHeaderBytes := cfg.HttpServer.MaxHeaderBytes
	if maxHeaderBytes == 0 {
		maxHeaderBytes = 1 << 20 // 1 MB
	}

	httpServer := &http.Server{
		Addr:           cfg.HttpListenAddr,
		Handler:        mux,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		MaxHeaderBytes: maxHeaderBytes,
	}

	go func() {
		logger.Printf("HTTP server listening on %s", cfg.HttpListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server startup failed: %v", err)
		}
		logger.Println("HTTP server stopped listening.")
	}()

	// 4. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Printf("Received shutdown signal: %s, starting graceful shutdown...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server shutdown failed: %v", err)
	} else {
		logger.Println("HTTP server shutdown.")
	}
	logger.Println("Upload-completion gateway stopped.")
}
