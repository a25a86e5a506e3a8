package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/payneu/gateway/internal/domain/errors"
	"github.com/payneu/gateway/internal/domain/model"
	"github.com/payneu/gateway/internal/domain/repository"
)

// dbPool is the pool surface the storage relies on.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   dbPool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type attemptRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Attempts() repository.AttemptRepository {
	return &attemptRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payment_attempts (
            id TEXT PRIMARY KEY,
            invoice_id BIGINT NOT NULL,
            payer TEXT NOT NULL,
            path TEXT NOT NULL DEFAULT '',
            state TEXT NOT NULL,
            approval_tx TEXT NOT NULL DEFAULT '',
            approval_amount TEXT NOT NULL DEFAULT '',
            confirmations BIGINT NOT NULL DEFAULT 0,
            error TEXT NOT NULL DEFAULT '',
            started_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_payment_attempts_invoice ON payment_attempts(invoice_id, started_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_attempts_updated ON payment_attempts(updated_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Login = login
	u.PasswordHash = passwordHash
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, login, password_hash, created_at FROM users WHERE login=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, login, password_hash, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- AttemptRepository implementation ---

func (r *attemptRepository) Record(ctx context.Context, attempt model.PaymentAttempt) error {
	const query = `INSERT INTO payment_attempts
                   (id, invoice_id, payer, path, state, approval_tx, approval_amount, confirmations, error, started_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
                   ON CONFLICT (id) DO UPDATE
                   SET state = EXCLUDED.state,
                       approval_tx = EXCLUDED.approval_tx,
                       approval_amount = EXCLUDED.approval_amount,
                       confirmations = EXCLUDED.confirmations,
                       error = EXCLUDED.error,
                       updated_at = EXCLUDED.updated_at`

	amount := ""
	if attempt.ApprovalAmount != nil {
		amount = attempt.ApprovalAmount.String()
	}
	_, err := r.storage.pool.Exec(ctx, query,
		attempt.ID,
		attempt.InvoiceID,
		attempt.Payer,
		string(attempt.Path),
		string(attempt.State),
		attempt.ApprovalTx,
		amount,
		int64(attempt.Confirmations),
		attempt.Error,
		attempt.StartedAt,
		attempt.UpdatedAt,
	)
	return err
}

func (r *attemptRepository) ListRecent(ctx context.Context, limit int) ([]model.PaymentAttempt, error) {
	const query = `SELECT id, invoice_id, payer, path, state, approval_tx, approval_amount, confirmations, error, started_at, updated_at
                   FROM payment_attempts ORDER BY updated_at DESC LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttempts(rows)
}

func (r *attemptRepository) ListByInvoice(ctx context.Context, invoiceID int64) ([]model.PaymentAttempt, error) {
	const query = `SELECT id, invoice_id, payer, path, state, approval_tx, approval_amount, confirmations, error, started_at, updated_at
                   FROM payment_attempts WHERE invoice_id=$1 ORDER BY started_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttempts(rows)
}

func scanAttempts(rows pgx.Rows) ([]model.PaymentAttempt, error) {
	var result []model.PaymentAttempt
	for rows.Next() {
		var (
			a             model.PaymentAttempt
			path, state   string
			amount        string
			confirmations int64
		)
		if err := rows.Scan(&a.ID, &a.InvoiceID, &a.Payer, &path, &state, &a.ApprovalTx, &amount, &confirmations, &a.Error, &a.StartedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Path = model.PaymentPath(path)
		a.State = model.AttemptState(state)
		a.Confirmations = uint64(confirmations)
		if amount != "" {
			parsed, ok := new(big.Int).SetString(amount, 10)
			if !ok {
				return nil, fmt.Errorf("malformed approval amount %q for attempt %s", amount, a.ID)
			}
			a.ApprovalAmount = parsed
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
