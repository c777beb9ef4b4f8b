package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/config"
	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"
)

//go:embed schema.sql
var schema string

var (
	_ Store                = (*Repository)(nil)
	_ InstallationRegistry = (*Repository)(nil)
	_ Queries              = (*queries)(nil)
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

// Migrate creates the schema when it does not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, schema)
	return err
}

func (r *Repository) WithTx(ctx context.Context, fn func(q Queries) error) error {
	return r.transact(ctx, &sql.TxOptions{}, fn)
}

func (r *Repository) View(ctx context.Context, fn func(q Queries) error) error {
	return r.transact(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

// transact runs fn in a transaction, retrying the whole unit on serialization
// failures and deadlocks.
func (r *Repository) transact(ctx context.Context, opts *sql.TxOptions, fn func(q Queries) error) error {
	backoff := retry.WithMaxRetries(uint64(r.cfg.Database.TransactionRetries), retry.NewExponential(50*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := r.runTx(ctx, opts, fn)
		if isRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (r *Repository) runTx(ctx context.Context, opts *sql.TxOptions, fn func(q Queries) error) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&queries{tx: tx, cfg: r.cfg}); err != nil {
		return err
	}

	return tx.Commit()
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}

// translate turns driver errors into the store's sentinel errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case "shifts_date_template_key":
			return ErrShiftSlotTaken
		case "shift_members_worker_day_key":
			return ErrWorkerDayBooked
		case "teams_installation_name_key":
			return ErrTeamNameTaken
		case "team_members_active_key":
			return ErrTeamMemberExists
		case "weekly_pattern_assignments_slot_key":
			return ErrDuplicatePatternAssignment
		case "weekly_patterns_active_key":
			return ErrActivePatternExists
		case "shift_templates_name_key":
			return ErrTemplateNameTaken
		case "shift_version_history_version_key":
			return ErrHistoryVersionTaken
		}
	}
	return err
}

// queries implements Queries on top of one database transaction.
type queries struct {
	tx  *sql.Tx
	cfg *config.Config
}

func (q *queries) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(q.cfg.Database.QueryTimeout)*time.Second)
}

// execOne runs a statement that must touch exactly one row.
func (q *queries) execOne(ctx context.Context, query string, args ...any) error {
	ctx, cancel := q.timeout(ctx)
	defer cancel()

	res, err := q.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *Repository) CreateInstallation(ctx context.Context, inst *domain.Installation) error {
	query := `
		INSERT INTO installations (id, name, is_active)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, inst.ID, inst.Name, inst.IsActive).Scan(&inst.CreatedAt)
}

func (r *Repository) ListInstallations(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT id FROM installations WHERE is_active ORDER BY created_at`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// Open creates the connection pool and checks that the database answers.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not connect, so ping explicitly
	if err := dbpool.PingContext(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}
	return dbpool, nil
}
