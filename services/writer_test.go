package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"journal-seeder/models"
)

// dryRunDB renders SQL without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=seed dbname=seed sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return db
}

func TestJournalUpsertSQL(t *testing.T) {
	db := dryRunDB(t)
	j := journalRow(JournalEntry{Name: jsaeName, Code: "JSAE"}, 0)
	j.ID = "j-1"

	sql := db.Clauses(journalUpsert(), returningID()).Create(j).Statement.SQL.String()
	for _, want := range []string{
		`INSERT INTO "Journal"`,
		`ON CONFLICT ("code") DO UPDATE SET`,
		`"fullName"="excluded"."fullName"`,
		`"description"="excluded"."description"`,
		`RETURNING "id"`,
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("missing %q in %s", want, sql)
		}
	}
	if strings.Contains(sql, `"displayOrder"="excluded"`) {
		t.Errorf("display order must not be overwritten: %s", sql)
	}
}

func TestUserUpsertSQL(t *testing.T) {
	db := dryRunDB(t)
	u := &models.User{ID: "u-1", Email: "demo.author@c5k.com", Name: "C5K Author"}

	sql := db.Clauses(userUpsert(), returningID()).Create(u).Statement.SQL.String()
	for _, want := range []string{
		`INSERT INTO "User"`,
		`ON CONFLICT ("email") DO UPDATE SET`,
		`"name"="excluded"."name"`,
		`"role"="excluded"."role"`,
		`RETURNING "id"`,
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("missing %q in %s", want, sql)
		}
	}
	if strings.Contains(sql, `"passwordHash"="excluded"`) {
		t.Errorf("password hash must survive upsert: %s", sql)
	}
}

func TestGormWriterRequiresTransaction(t *testing.T) {
	w := NewGormWriter(dryRunDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	if _, err := w.UpsertUser(ctx, &models.User{}); !errors.Is(err, ErrNoTransaction) {
		t.Errorf("UpsertUser: %v", err)
	}
	if err := w.InsertArticle(ctx, &models.Article{}); !errors.Is(err, ErrNoTransaction) {
		t.Errorf("InsertArticle: %v", err)
	}
	if err := w.Guard(ctx, func() error { return nil }); !errors.Is(err, ErrNoTransaction) {
		t.Errorf("Guard: %v", err)
	}
	if err := w.Commit(); !errors.Is(err, ErrNoTransaction) {
		t.Errorf("Commit: %v", err)
	}
	if err := w.Rollback(); err != nil {
		t.Errorf("Rollback without transaction: %v", err)
	}
}

func TestDeleteAllRefusesUnknownTable(t *testing.T) {
	w := NewGormWriter(dryRunDB(t), zaptest.NewLogger(t))
	err := w.DeleteAll(context.Background(), "pg_catalog.pg_user")
	if err == nil || !strings.Contains(err.Error(), "unknown table") {
		t.Fatalf("expected refusal, got %v", err)
	}
	for _, table := range ClearOrder {
		if !clearable(table) {
			t.Errorf("%s should be clearable", table)
		}
	}
}

func TestClearOrderDependentsFirst(t *testing.T) {
	pos := map[string]int{}
	for i, table := range ClearOrder {
		pos[table] = i
	}
	for _, pair := range [][2]string{
		{"Review", "Article"},
		{"Article", "Journal"},
		{"Article", "User"},
		{"Dissertation", "User"},
		{"ConferenceRegistration", "Conference"},
		{"Membership", "User"},
	} {
		if pos[pair[0]] >= pos[pair[1]] {
			t.Errorf("%s must be cleared before %s", pair[0], pair[1])
		}
	}
}

// txConnector is a database/sql connector that only supports transactions and
// reports every rollback it receives.
type txConnector struct {
	rolledBack chan struct{}
}

func (c *txConnector) Connect(context.Context) (driver.Conn, error) { return &txConn{c: c}, nil }
func (c *txConnector) Driver() driver.Driver                       { return txDriver{c: c} }

type txDriver struct{ c *txConnector }

func (d txDriver) Open(string) (driver.Conn, error) { return &txConn{c: d.c}, nil }

type txConn struct{ c *txConnector }

func (c *txConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("statements not supported")
}
func (c *txConn) Close() error              { return nil }
func (c *txConn) Begin() (driver.Tx, error) { return txHandle{c: c.c}, nil }

type txHandle struct{ c *txConnector }

func (h txHandle) Commit() error { return nil }
func (h txHandle) Rollback() error {
	select {
	case h.c.rolledBack <- struct{}{}:
	default:
	}
	return nil
}

func txWriter(t *testing.T) (*GormWriter, *txConnector) {
	t.Helper()
	conn := &txConnector{rolledBack: make(chan struct{}, 4)}
	sqlDB := sql.OpenDB(conn)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return NewGormWriter(db, zaptest.NewLogger(t)), conn
}

func TestRollbackAfterCancelledContext(t *testing.T) {
	w, conn := txWriter(t)
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Begin(ctx); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	cancel()

	select {
	case <-conn.rolledBack:
	case <-time.After(5 * time.Second):
		t.Fatal("database/sql did not roll back the cancelled transaction")
	}
	if err := w.Rollback(); err != nil {
		t.Fatalf("Rollback after cancel: %v", err)
	}
	if err := w.Commit(); !errors.Is(err, ErrNoTransaction) {
		t.Errorf("transaction still open: %v", err)
	}
}

func TestRollbackOpenTransaction(t *testing.T) {
	w, conn := txWriter(t)
	if err := w.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := w.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	select {
	case <-conn.rolledBack:
	default:
		t.Fatal("driver rollback not called")
	}
}
