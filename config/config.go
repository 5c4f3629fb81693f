package config

import (
	"errors"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrMissingDatabaseURL wird zurückgegeben, wenn weder Flag noch DATABASE_URL gesetzt ist.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set (use .env or -database-url)")

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Object Storage für s3:// Eingaben und Backups vor dem Löschen
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`

	BackupBucket string `envconfig:"BACKUP_S3_BUCKET"`
	BackupPGDump string `envconfig:"BACKUP_PG_DUMP" default:"pg_dump"`

	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"`

	DemoPassword   string `envconfig:"SEED_DEMO_PASSWORD" default:"password123"`
	BcryptCost     int    `envconfig:"SEED_BCRYPT_COST" default:"10"`
	UnmappedPolicy string `envconfig:"SEED_UNMAPPED_JOURNALS" default:"first"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// DSN gibt den Connection-String zurück; ein gesetzter Override gewinnt.
func (c *Config) DSN(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if c.DatabaseURL == "" {
		return "", ErrMissingDatabaseURL
	}
	return c.DatabaseURL, nil
}

// S3Enabled meldet, ob genug Angaben für einen S3-Client vorhanden sind.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" || c.S3AccessKey != ""
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
