package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"journal-seeder/models"
)

// DryRunWriter simulates a run without a database. Every write succeeds and
// upserts hand out synthetic ids, so counters match a real run on an empty
// database.
type DryRunWriter struct {
	Logger *zap.Logger
}

// NewDryRunWriter erstellt einen Writer, der nichts schreibt.
func NewDryRunWriter(logger *zap.Logger) *DryRunWriter {
	return &DryRunWriter{Logger: logger}
}

func (w *DryRunWriter) Begin(context.Context) error { return nil }
func (w *DryRunWriter) Commit() error               { return nil }
func (w *DryRunWriter) Rollback() error             { return nil }
func (w *DryRunWriter) Close() error                { return nil }

func (w *DryRunWriter) Guard(_ context.Context, fn func() error) error {
	return fn()
}

func (w *DryRunWriter) UpsertUser(_ context.Context, u *models.User) (string, error) {
	w.Logger.Info("[DRY RUN] Would create user", zap.String("email", u.Email))
	return "dry-run-" + uuid.NewString(), nil
}

func (w *DryRunWriter) UpsertJournal(_ context.Context, j *models.Journal) (string, error) {
	w.Logger.Info("[DRY RUN] Would create journal", zap.String("code", j.Code), zap.String("name", j.FullName))
	return "dry-run-" + uuid.NewString(), nil
}

func (w *DryRunWriter) InsertArticle(_ context.Context, a *models.Article) error {
	w.Logger.Debug("[DRY RUN] Would create article", zap.String("title", truncateRunes(a.Title, logTitleLen)))
	return nil
}

func (w *DryRunWriter) InsertDissertation(_ context.Context, d *models.Dissertation) error {
	w.Logger.Debug("[DRY RUN] Would create dissertation", zap.String("title", truncateRunes(d.Title, logTitleLen)))
	return nil
}

func (w *DryRunWriter) DOIExists(context.Context, string) (bool, error) { return false, nil }

func (w *DryRunWriter) DeleteAll(_ context.Context, table string) error {
	w.Logger.Info("[DRY RUN] Would clear table", zap.String("table", table))
	return nil
}
