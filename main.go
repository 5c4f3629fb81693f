package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"journal-seeder/config"
	"journal-seeder/services"
	"journal-seeder/storage"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type flags struct {
	file        string
	databaseURL string
	dryRun      bool
	clearFirst  bool
	confirm     string
	unmapped    string
	journals    string
	verbose     bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("journal-seeder", flag.ContinueOnError)
	fs.StringVar(&f.file, "file", "", "path or s3:// uri of the scraped items (.json, .jsonl, optionally .gz)")
	fs.StringVar(&f.databaseURL, "database-url", "", "PostgreSQL connection string (default $DATABASE_URL)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "simulate the run without touching the database")
	fs.BoolVar(&f.clearFirst, "clear-first", false, "delete all platform data before seeding")
	fs.StringVar(&f.confirm, "confirm", "", `answer the clear prompt non-interactively ("yes" to proceed)`)
	fs.StringVar(&f.unmapped, "unmapped-journals", "", "policy for unknown journal names: first, misc or skip (default $SEED_UNMAPPED_JOURNALS)")
	fs.StringVar(&f.journals, "journals", "", "JSON file replacing the built-in journal table")
	fs.BoolVar(&f.verbose, "verbose", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.file == "" && fs.NArg() > 0 {
		f.file = fs.Arg(0)
	}
	if f.file == "" {
		return f, errors.New("missing -file")
	}
	return f, nil
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	if !verbose && level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	f, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Config load error: %v", err)
		return 1
	}

	logging, err := newLogger(cfg.LogLevel, f.verbose)
	if err != nil {
		log.Printf("can't initialize zap logger: %v", err)
		return 1
	}
	defer logging.Sync()

	if !services.IsRemote(f.file) {
		if _, err := os.Stat(f.file); err != nil {
			logging.Error("File not found", zap.String("file", f.file), zap.Error(err))
			return 1
		}
	}

	policyName := f.unmapped
	if policyName == "" {
		policyName = cfg.UnmappedPolicy
	}
	policy, err := services.ParseUnmappedPolicy(policyName)
	if err != nil {
		logging.Error("Invalid journal policy", zap.Error(err))
		return 1
	}

	var dsn string
	if !f.dryRun {
		dsn, err = cfg.DSN(f.databaseURL)
		if err != nil {
			logging.Error("No database configured", zap.Error(err))
			return 1
		}
	}

	journals := services.DefaultJournalTable()
	if f.journals != "" {
		journals, err = services.LoadJournalTable(f.journals)
		if err != nil {
			logging.Error("Journal table load error", zap.Error(err))
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var s3Client *s3.Client
	if cfg.S3Enabled() || services.IsRemote(f.file) {
		s3Client, err = storage.NewS3Client(ctx, cfg)
		if err != nil {
			logging.Error("Failed to create S3 client", zap.Error(err))
			return 1
		}
	}

	var remote services.Opener
	if s3Client != nil {
		remote = storage.Opener(s3Client)
	}
	records, err := services.NewLoader(logging, remote).Load(ctx, f.file)
	if err != nil {
		logging.Error("Loading input failed", zap.Error(err))
		return 1
	}

	var writer services.Writer
	if f.dryRun {
		logging.Info("DRY RUN MODE - no database connection will be opened")
		writer = services.NewDryRunWriter(logging)
	} else {
		gw, err := services.OpenGormWriter(dsn, logging)
		if err != nil {
			logging.Error("Failed to connect to database", zap.Error(err))
			return 1
		}
		logging.Info("Successfully connected to database.")
		writer = gw
	}

	seeder := services.NewSeeder(writer, journals, services.NewNormalizer(), logging)
	switch {
	case f.confirm != "":
		seeder.Confirm = services.TokenConfirm(f.confirm)
	case isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()):
		seeder.Confirm = services.PromptConfirm(os.Stdin, os.Stdout)
	default:
		seeder.Confirm = services.RefuseConfirm()
	}
	if s3Client != nil && cfg.BackupBucket != "" && !f.dryRun {
		seeder.Backup = func(ctx context.Context) error {
			location, err := storage.BackupDatabase(ctx, s3Client, cfg.BackupBucket,
				storage.BackupKey("pre-clear", time.Now()), dsn, cfg.BackupPGDump)
			if err != nil {
				return err
			}
			logging.Info("Backup created", zap.String("location", location))
			return nil
		}
	}

	started := time.Now()
	stats, err := seeder.Run(ctx, records, services.Options{
		DryRun:       f.dryRun,
		ClearFirst:   f.clearFirst,
		Unmapped:     policy,
		DemoPassword: cfg.DemoPassword,
		BcryptCost:   cfg.BcryptCost,
	})

	metrics := services.NewMetrics()
	metrics.Observe(stats, f.dryRun, time.Since(started))
	if cfg.PushgatewayURL != "" {
		if perr := metrics.Push(cfg.PushgatewayURL); perr != nil {
			logging.Warn("Pushing metrics failed", zap.Error(perr))
		}
	}

	stats.Report(os.Stdout, f.dryRun)
	if errors.Is(err, services.ErrClearCancelled) {
		return 0
	}
	if err != nil {
		logging.Error("Seeding failed", zap.Error(err))
		return 1
	}
	logging.Info("Seeding completed", zap.Duration("took", time.Since(started)))
	return 0
}
