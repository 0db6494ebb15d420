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

	"housepoint/internal/backup"
	"housepoint/internal/config"
	"housepoint/internal/database"
	"housepoint/internal/ledger"
	"housepoint/internal/logging"
	"housepoint/internal/notify"
	"housepoint/internal/server"
	"housepoint/internal/snapshot"
	"housepoint/internal/store"
	ws "housepoint/internal/websocket"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "vapid-keys" {
		pub, priv, err := notify.GenerateVAPIDKeys()
		if err != nil {
			log.Fatalf("generate VAPID keys: %v", err)
		}
		fmt.Printf("HOUSEPOINT_VAPID_PUBLIC_KEY=%s\nHOUSEPOINT_VAPID_PRIVATE_KEY=%s\n", pub, priv)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	gateway := snapshot.New(db, logger.With("component", "snapshot"))
	pushStore := store.NewPushStore(db)

	notifySvc := notify.NewService(notify.Config{
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		QuietStart:      cfg.QuietStart,
		QuietEnd:        cfg.QuietEnd,
	}, pushStore, logger.With("component", "notify"))

	ledg, err := ledger.Open(gateway, notifySvc, logger.With("component", "ledger"))
	if err != nil {
		log.Fatalf("failed to open ledger: %v", err)
	}

	hub := ws.NewHub(logger.With("component", "websocket"))

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		},
		Interval: time.Duration(cfg.BackupInterval) * time.Minute,
	}, ledg, func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra:  map[string]any{"error": s.Error},
		})
	}, logger.With("component", "backup"))

	ctx, cancelBackground := context.WithCancel(context.Background())
	backupMgr.Start(ctx)

	srv := server.New(ledg, hub, pushStore, notifySvc, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("housepoint running", "addr", "http://localhost:"+cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancelBackground()
	backupMgr.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
