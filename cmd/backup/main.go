package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"journal-seeder/config"
	"journal-seeder/storage"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// BackupConfig erweitert die Seeder-Konfiguration um die Rotation.
type BackupConfig struct {
	KeepBackups int `envconfig:"KEEP_BACKUPS" default:"4"`
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starte Backup-Prozess...")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}
	var bcfg BackupConfig
	if err := envconfig.Process("", &bcfg); err != nil {
		logger.Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}
	dsn, err := cfg.DSN("")
	if err != nil {
		logger.Fatal("Keine Datenbank konfiguriert", zap.Error(err))
	}
	if cfg.BackupBucket == "" {
		logger.Fatal("BACKUP_S3_BUCKET ist nicht gesetzt")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. S3-Client erstellen
	client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		logger.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}

	// 2. Dump erstellen und hochladen
	key := storage.BackupKey("backup", time.Now())
	location, err := storage.BackupDatabase(ctx, client, cfg.BackupBucket, key, dsn, cfg.BackupPGDump)
	if err != nil {
		logger.Fatal("Fehler beim Backup", zap.Error(err))
	}
	logger.Info("Backup erfolgreich hochgeladen", zap.String("location", location))

	// 3. Alte Backups rotieren
	if err := storage.RotateBackups(ctx, client, cfg.BackupBucket, bcfg.KeepBackups, logger); err != nil {
		logger.Fatal("Fehler bei der Rotation alter Backups", zap.Error(err))
	}

	logger.Info("Backup-Prozess erfolgreich abgeschlossen.")
}
