package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"journal-seeder/models"
)

// DefaultAuthorEmail is the demo user every seeded article and dissertation
// is attributed to.
const DefaultAuthorEmail = "demo.author@c5k.com"

const progressEvery = 50

type demoUser struct {
	Email       string
	Name        string
	University  string
	Role        string
	Affiliation string
}

var demoUsers = []demoUser{
	{DefaultAuthorEmail, "C5K Author", "C5K University", "author", "Department of Research"},
	{"reviewer1@c5k.com", "Dr. Jane Smith", "Stanford University", "reviewer", "Department of Computer Science"},
	{"reviewer2@c5k.com", "Dr. John Doe", "MIT", "reviewer", "Department of Engineering"},
	{"reviewer3@c5k.com", "Dr. Sarah Johnson", "Harvard University", "reviewer", "Department of Medicine"},
	{"reviewer4@c5k.com", "Dr. Michael Chen", "UC Berkeley", "reviewer", "Department of Data Science"},
	{"admin@c5k.com", "C5K Administrator", "C5K Platform", "admin", "Platform Administration"},
}

// Phase is a state of a seeding run.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseLoaded
	PhaseClearing
	PhaseSeedingUsers
	PhaseSeedingJournals
	PhaseSeedingArticles
	PhaseSeedingDissertations
	PhaseCommitted
	PhaseCancelled
	PhaseFailed
	PhaseClosed
)

var phaseNames = [...]string{
	"INIT", "LOADED", "CLEARING", "SEEDING_USERS", "SEEDING_JOURNALS",
	"SEEDING_ARTICLES", "SEEDING_DISSERTATIONS", "COMMITTED", "CANCELLED",
	"FAILED", "CLOSED",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Options steuern einen Seeding-Lauf.
type Options struct {
	DryRun       bool
	ClearFirst   bool
	Unmapped     UnmappedPolicy
	DemoPassword string
	BcryptCost   int
}

// Seeder runs the load pipeline against a Writer.
type Seeder struct {
	Writer     Writer
	Journals   *JournalTable
	Normalizer *Normalizer
	Logger     *zap.Logger

	// Confirm is asked before clearing. Nil refuses.
	Confirm ConfirmFunc
	// Backup, when set, runs after confirmation and before any delete.
	Backup func(ctx context.Context) error

	phase Phase
}

// NewSeeder erstellt einen Seeder mit den Standard-Abhängigkeiten.
func NewSeeder(w Writer, journals *JournalTable, n *Normalizer, logger *zap.Logger) *Seeder {
	return &Seeder{Writer: w, Journals: journals, Normalizer: n, Logger: logger}
}

// Phase returns the state the run is in.
func (s *Seeder) Phase() Phase {
	return s.phase
}

func (s *Seeder) enter(p Phase, fields ...zap.Field) {
	s.Logger.Info("Phase "+p.String(), append(fields, zap.Stringer("from", s.phase))...)
	s.phase = p
}

// Run seeds records and always closes the writer. The returned Stats are
// valid even when err is non-nil; in that case nothing was committed by the
// seeding transaction.
func (s *Seeder) Run(ctx context.Context, records []models.RawRecord, opts Options) (stats Stats, err error) {
	s.enter(PhaseLoaded, zap.Int("records", len(records)))
	defer func() {
		if cerr := s.Writer.Close(); cerr != nil {
			s.Logger.Warn("Closing writer failed", zap.Error(cerr))
		}
		switch {
		case errors.Is(err, ErrClearCancelled):
			s.enter(PhaseCancelled)
		case err != nil:
			s.enter(PhaseFailed, zap.Error(err))
		}
		s.enter(PhaseClosed)
	}()

	if opts.ClearFirst {
		if err := s.clear(ctx, opts.DryRun); err != nil {
			return stats, err
		}
	}

	if err := s.Writer.Begin(ctx); err != nil {
		return stats, fmt.Errorf("begin seeding transaction: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rerr := s.Writer.Rollback(); rerr != nil {
			s.Logger.Error("Rollback failed", zap.Error(rerr))
			return
		}
		s.Logger.Warn("Changes rolled back")
	}()

	part := Classify(records)
	s.Logger.Info("Classified records",
		zap.Int("articles", len(part.Articles)),
		zap.Int("articles_without_summary", part.WithoutSummary),
		zap.Int("dissertations", len(part.Dissertations)),
		zap.Int("ignored", part.Ignored),
	)

	s.enter(PhaseSeedingUsers)
	st, authorID, err := s.seedUsers(ctx, opts)
	stats = stats.Add(st)
	if err != nil {
		return stats, err
	}

	s.enter(PhaseSeedingJournals)
	st, index, err := s.seedJournals(ctx, records, opts.Unmapped)
	stats = stats.Add(st)
	if err != nil {
		return stats, err
	}

	s.enter(PhaseSeedingArticles)
	st, err = s.seedArticles(ctx, part.Articles, index, authorID, opts.Unmapped)
	stats = stats.Add(st)
	if err != nil {
		return stats, err
	}

	s.enter(PhaseSeedingDissertations)
	st, err = s.seedDissertations(ctx, part.Dissertations, authorID)
	stats = stats.Add(st)
	if err != nil {
		return stats, err
	}

	if err := s.Writer.Commit(); err != nil {
		return stats, fmt.Errorf("commit: %w", err)
	}
	committed = true
	s.enter(PhaseCommitted)
	return stats, nil
}

// clear empties all platform tables in one transaction of its own.
func (s *Seeder) clear(ctx context.Context, dryRun bool) error {
	if dryRun {
		s.Logger.Info("[DRY RUN] Would clear existing data")
		return nil
	}
	confirm := s.Confirm
	if confirm == nil {
		confirm = RefuseConfirm()
	}
	ok, err := confirm(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.Logger.Info("Cancelled.")
		return ErrClearCancelled
	}

	s.enter(PhaseClearing)
	if s.Backup != nil {
		if err := s.Backup(ctx); err != nil {
			return fmt.Errorf("backup before clear: %w", err)
		}
	}
	if err := s.Writer.Begin(ctx); err != nil {
		return fmt.Errorf("begin clear transaction: %w", err)
	}
	for _, table := range ClearOrder {
		if err := s.Writer.DeleteAll(ctx, table); err != nil {
			if rerr := s.Writer.Rollback(); rerr != nil {
				s.Logger.Error("Rollback failed", zap.Error(rerr))
			}
			return fmt.Errorf("clear %s: %w", table, err)
		}
		s.Logger.Info("Cleared table", zap.String("table", table))
	}
	if err := s.Writer.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	s.Logger.Info("Data cleared successfully")
	return nil
}

// guarded writes one record. Record failures are counted and swallowed; only
// cancellation and an unrecoverable transaction escape.
func (s *Seeder) guarded(ctx context.Context, label string, st *Stats, fn func() error) error {
	err := s.Writer.Guard(ctx, fn)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTransactionBroken) {
		return err
	}
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	st.Errors++
	s.Logger.Error("Record failed", zap.String("title", label), zap.Error(err))
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context, opts Options) (Stats, string, error) {
	var st Stats
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.DemoPassword), cost)
	if err != nil {
		return st, "", fmt.Errorf("hash demo password: %w", err)
	}

	ids := map[string]string{}
	for _, du := range demoUsers {
		if err := ctx.Err(); err != nil {
			return st, "", err
		}
		affiliation := du.Affiliation
		user := &models.User{
			ID:              uuid.NewString(),
			Email:           du.Email,
			PasswordHash:    string(hash),
			Name:            du.Name,
			University:      du.University,
			Role:            du.Role,
			Affiliation:     &affiliation,
			IsEmailVerified: true,
			IsActive:        true,
		}
		err := s.guarded(ctx, du.Email, &st, func() error {
			id, err := s.Writer.UpsertUser(ctx, user)
			if err != nil {
				return err
			}
			ids[du.Email] = id
			st.UsersCreated++
			s.Logger.Info("Created user", zap.String("email", du.Email))
			return nil
		})
		if err != nil {
			return st, "", err
		}
	}
	return st, ids[DefaultAuthorEmail], nil
}

func (s *Seeder) seedJournals(ctx context.Context, records []models.RawRecord, policy UnmappedPolicy) (Stats, JournalIndex, error) {
	var (
		st Stats
		ix JournalIndex
	)
	entries := s.Journals.MappedJournals(records)
	s.Logger.Info("Found unique journals", zap.Int("count", len(entries)))

	rows := make([]*models.Journal, 0, len(entries)+1)
	for i, e := range entries {
		rows = append(rows, journalRow(e, i))
	}
	if policy == UnmappedMisc {
		rows = append(rows, miscJournalRow())
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return st, ix, err
		}
		row.ID = uuid.NewString()
		err := s.guarded(ctx, row.Code, &st, func() error {
			id, err := s.Writer.UpsertJournal(ctx, row)
			if err != nil {
				return err
			}
			ix.add(row.Code, id)
			st.JournalsCreated++
			return nil
		})
		if err != nil {
			return st, ix, err
		}
	}
	return st, ix, nil
}

func (s *Seeder) seedArticles(ctx context.Context, articles []models.RawRecord, ix JournalIndex, authorID string, policy UnmappedPolicy) (Stats, error) {
	var st Stats
	s.Logger.Info("Found articles with summaries", zap.Int("count", len(articles)))
	if authorID == "" {
		s.Logger.Error("Default author missing, skipping all articles", zap.String("email", DefaultAuthorEmail))
		st.Skipped += len(articles)
		return st, nil
	}

	for idx, rec := range articles {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		label := recordLabel(rec)
		code, ok := s.Journals.Resolve(rec, ix, policy)
		if !ok {
			s.Logger.Warn("Skipping article (no journal)", zap.String("title", label))
			st.Skipped++
			continue
		}
		journalID, ok := ix.ID(code)
		if !ok {
			s.Logger.Warn("Skipping article (journal not created)", zap.String("code", code), zap.String("title", label))
			st.Skipped++
			continue
		}

		err := s.guarded(ctx, label, &st, func() error {
			article, err := s.Normalizer.NormalizeArticle(rec, journalID, authorID)
			if err != nil {
				return err
			}
			if article.DOI != nil {
				exists, err := s.Writer.DOIExists(ctx, *article.DOI)
				if err != nil {
					return err
				}
				if exists {
					s.Logger.Debug("Duplicate DOI, storing article without it", zap.String("doi", *article.DOI))
					article.DOI = nil
				}
			}
			if err := s.Writer.InsertArticle(ctx, article); err != nil {
				return err
			}
			st.ArticlesCreated++
			return nil
		})
		if err != nil {
			return st, err
		}
		if (idx+1)%progressEvery == 0 {
			s.Logger.Info("Article progress", zap.Int("done", idx+1), zap.Int("total", len(articles)))
		}
	}
	s.Logger.Info("Created articles", zap.Int("count", st.ArticlesCreated))
	return st, nil
}

func (s *Seeder) seedDissertations(ctx context.Context, dissertations []models.RawRecord, authorID string) (Stats, error) {
	var st Stats
	s.Logger.Info("Found dissertations", zap.Int("count", len(dissertations)))
	if authorID == "" {
		s.Logger.Error("Default author missing, skipping all dissertations", zap.String("email", DefaultAuthorEmail))
		st.Skipped += len(dissertations)
		return st, nil
	}

	for _, rec := range dissertations {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		label := recordLabel(rec)
		err := s.guarded(ctx, label, &st, func() error {
			d, err := s.Normalizer.NormalizeDissertation(rec, authorID)
			if err != nil {
				return err
			}
			if err := s.Writer.InsertDissertation(ctx, d); err != nil {
				return err
			}
			st.DissertationsCreated++
			return nil
		})
		if err != nil {
			return st, err
		}
	}
	s.Logger.Info("Created dissertations", zap.Int("count", st.DissertationsCreated))
	return st, nil
}
