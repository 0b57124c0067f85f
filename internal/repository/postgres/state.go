package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FBK-Manuel/wearehfg/pkg/database"
	apperrors "github.com/FBK-Manuel/wearehfg/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema files for database.RunMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// DB is the part of a pgx pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// StateRepository stores session state as JSONB rows in storefront_state.
// Rows older than ttl are invisible to Load and removed by PurgeExpired.
type StateRepository struct {
	db     DB
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewStateRepository(db DB, ttl time.Duration, logger *slog.Logger) *StateRepository {
	return &StateRepository{
		db:     db,
		ttl:    ttl,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *StateRepository) Load(ctx context.Context, key string) (_ []byte, err error) {
	ctx, done := database.TraceOp(ctx, r.logger, "postgresql", "select", key)
	defer func() { done(err) }()

	query := `
		SELECT value FROM storefront_state
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`

	var value []byte
	if err := r.db.QueryRow(ctx, query, key, r.now()).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("session state", key)
		}
		return nil, fmt.Errorf("select state %s: %w", key, err)
	}
	return value, nil
}

func (r *StateRepository) Save(ctx context.Context, key string, value []byte) (err error) {
	ctx, done := database.TraceOp(ctx, r.logger, "postgresql", "upsert", key)
	defer func() { done(err) }()

	now := r.now()
	var expiresAt *time.Time
	if r.ttl > 0 {
		t := now.Add(r.ttl)
		expiresAt = &t
	}

	query := `
		INSERT INTO storefront_state (key, value, updated_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at`

	if _, err := r.db.Exec(ctx, query, key, value, now, expiresAt); err != nil {
		return fmt.Errorf("upsert state %s: %w", key, err)
	}
	return nil
}

func (r *StateRepository) Delete(ctx context.Context, key string) (err error) {
	ctx, done := database.TraceOp(ctx, r.logger, "postgresql", "delete", key)
	defer func() { done(err) }()

	if _, err := r.db.Exec(ctx, `DELETE FROM storefront_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete state %s: %w", key, err)
	}
	return nil
}

// PurgeExpired deletes rows whose TTL has passed and reports how many went.
func (r *StateRepository) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM storefront_state WHERE expires_at IS NOT NULL AND expires_at <= $1`, r.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired state: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *StateRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
