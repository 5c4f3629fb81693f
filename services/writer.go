package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"journal-seeder/models"
)

var (
	// ErrNoTransaction is returned by writes issued outside Begin/Commit.
	ErrNoTransaction = errors.New("no open transaction")
	// ErrTransactionBroken means a failed record could not be rolled back to
	// its savepoint; the run cannot continue.
	ErrTransactionBroken = errors.New("transaction cannot be recovered")
)

// ClearOrder lists every table the clear step empties, dependents first.
var ClearOrder = []string{
	"Review",
	"Article",
	"Dissertation",
	"Blog",
	"Notification",
	"ConferenceRegistration",
	"Conference",
	"Membership",
	"Journal",
	"User",
}

// Writer persists seeded rows. All writes happen inside Begin/Commit; Guard
// isolates a single record so its failure does not abort the transaction.
type Writer interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error
	Guard(ctx context.Context, fn func() error) error

	UpsertUser(ctx context.Context, u *models.User) (string, error)
	UpsertJournal(ctx context.Context, j *models.Journal) (string, error)
	InsertArticle(ctx context.Context, a *models.Article) error
	InsertDissertation(ctx context.Context, d *models.Dissertation) error
	DOIExists(ctx context.Context, doi string) (bool, error)
	DeleteAll(ctx context.Context, table string) error

	Close() error
}

const recordSavepoint = "seed_record"

// GormWriter writes to PostgreSQL through gorm on a single connection.
type GormWriter struct {
	DB     *gorm.DB
	Logger *zap.Logger
	tx     *gorm.DB
}

// OpenGormWriter connects to dsn and pins the pool to one connection.
func OpenGormWriter(dsn string, log *zap.Logger) (*GormWriter, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	return NewGormWriter(db, log), nil
}

// NewGormWriter wraps an existing gorm handle.
func NewGormWriter(db *gorm.DB, log *zap.Logger) *GormWriter {
	return &GormWriter{DB: db, Logger: log}
}

func (w *GormWriter) conn(ctx context.Context) (*gorm.DB, error) {
	if w.tx == nil {
		return nil, ErrNoTransaction
	}
	return w.tx.WithContext(ctx), nil
}

func (w *GormWriter) Begin(ctx context.Context) error {
	if w.tx != nil {
		return errors.New("transaction already open")
	}
	tx := w.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin: %w", tx.Error)
	}
	w.tx = tx
	return nil
}

func (w *GormWriter) Commit() error {
	if w.tx == nil {
		return ErrNoTransaction
	}
	err := w.tx.Commit().Error
	w.tx = nil
	return err
}

// Rollback ends the open transaction. A transaction that database/sql already
// rolled back because its context was cancelled counts as rolled back.
func (w *GormWriter) Rollback() error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Rollback().Error
	w.tx = nil
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// Guard runs fn behind a savepoint. A failing fn is rolled back to the
// savepoint and its error returned; earlier work in the transaction survives.
func (w *GormWriter) Guard(ctx context.Context, fn func() error) error {
	db, err := w.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.SavePoint(recordSavepoint).Error; err != nil {
		return fmt.Errorf("%w: savepoint: %v", ErrTransactionBroken, err)
	}
	if ferr := fn(); ferr != nil {
		if rerr := w.tx.WithContext(ctx).RollbackTo(recordSavepoint).Error; rerr != nil {
			return fmt.Errorf("%w: %v (record error: %v)", ErrTransactionBroken, rerr, ferr)
		}
		return ferr
	}
	if err := w.tx.WithContext(ctx).Exec("RELEASE SAVEPOINT " + recordSavepoint).Error; err != nil {
		return fmt.Errorf("%w: release savepoint: %v", ErrTransactionBroken, err)
	}
	return nil
}

func returningID() clause.Returning {
	return clause.Returning{Columns: []clause.Column{{Name: "id"}}}
}

// userUpsert keeps id, password and flags of an existing user.
func userUpsert() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "university", "role"}),
	}
}

// journalUpsert only refreshes display text; code and id are identity.
func journalUpsert() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"fullName", "description"}),
	}
}

// UpsertUser inserts u or updates the existing row with the same email and
// returns the id that survives.
func (w *GormWriter) UpsertUser(ctx context.Context, u *models.User) (string, error) {
	db, err := w.conn(ctx)
	if err != nil {
		return "", err
	}
	if err := db.Clauses(userUpsert(), returningID()).Create(u).Error; err != nil {
		return "", err
	}
	return u.ID, nil
}

// UpsertJournal inserts j or updates the existing row with the same code and
// returns the id that survives.
func (w *GormWriter) UpsertJournal(ctx context.Context, j *models.Journal) (string, error) {
	db, err := w.conn(ctx)
	if err != nil {
		return "", err
	}
	if err := db.Clauses(journalUpsert(), returningID()).Create(j).Error; err != nil {
		return "", err
	}
	return j.ID, nil
}

func (w *GormWriter) InsertArticle(ctx context.Context, a *models.Article) error {
	db, err := w.conn(ctx)
	if err != nil {
		return err
	}
	return db.Create(a).Error
}

func (w *GormWriter) InsertDissertation(ctx context.Context, d *models.Dissertation) error {
	db, err := w.conn(ctx)
	if err != nil {
		return err
	}
	return db.Create(d).Error
}

func (w *GormWriter) DOIExists(ctx context.Context, doi string) (bool, error) {
	db, err := w.conn(ctx)
	if err != nil {
		return false, err
	}
	var count int64
	if err := db.Model(&models.Article{}).Where(`"doi" = ?`, doi).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteAll empties one of the tables in ClearOrder.
func (w *GormWriter) DeleteAll(ctx context.Context, table string) error {
	if !clearable(table) {
		return fmt.Errorf("refusing to clear unknown table %q", table)
	}
	db, err := w.conn(ctx)
	if err != nil {
		return err
	}
	return db.Exec("DELETE FROM ?", clause.Table{Name: table}).Error
}

func (w *GormWriter) Close() error {
	if w.tx != nil {
		if err := w.Rollback(); err != nil {
			w.Logger.Warn("Rollback on close failed", zap.Error(err))
		}
	}
	sqlDB, err := w.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func clearable(table string) bool {
	for _, t := range ClearOrder {
		if t == table {
			return true
		}
	}
	return false
}
