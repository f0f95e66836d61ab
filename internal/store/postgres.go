package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/link-shortener/internal/links"
)

const pgUniqueViolation = "23505"

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS links (
		link_id     VARCHAR(255) PRIMARY KEY,
		target      TEXT         NOT NULL,
		control_key TEXT         NOT NULL,
		added_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		visit_count BIGINT       NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS links_added_at_idx ON links (added_at DESC);
`

// PostgresStore is a PostgreSQL implementation of links.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the links table if it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create links schema: %w", err)
	}

	return nil
}

func (p *PostgresStore) Create(ctx context.Context, batch ...*links.Link) error {
	query := `
		INSERT INTO links (link_id, target, control_key, added_at, visit_count)
		VALUES ($1, $2, $3, $4, $5)
	`

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	b := &pgx.Batch{}
	for _, link := range batch {
		b.Queue(query, link.ID, link.Target, link.ControlKeyHash, link.AddedAt, link.VisitCount)
	}

	results := tx.SendBatch(ctx, b)

	for _, link := range batch {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()

			return translatePgError(err, link.ID)
		}
	}

	if err := results.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*links.Link, error) {
	query := `
		SELECT link_id, target, control_key, added_at, visit_count
		FROM links
		WHERE link_id = $1
	`

	var link links.Link

	err := p.pool.QueryRow(ctx, query, id).Scan(
		&link.ID,
		&link.Target,
		&link.ControlKeyHash,
		&link.AddedAt,
		&link.VisitCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, links.ErrNotFound
		}

		return nil, err
	}

	return &link, nil
}

func (p *PostgresStore) List(ctx context.Context) ([]*links.Link, error) {
	query := `
		SELECT link_id, target, control_key, added_at, visit_count
		FROM links
		ORDER BY added_at DESC, link_id
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*links.Link, error) {
		var link links.Link

		err := row.Scan(&link.ID, &link.Target, &link.ControlKeyHash, &link.AddedAt, &link.VisitCount)

		return &link, err
	})
}

func (p *PostgresStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM links WHERE link_id = $1)`, id).Scan(&exists)

	return exists, err
}

func (p *PostgresStore) Update(ctx context.Context, id string, changes links.Changes) (*links.Link, error) {
	query := `
		UPDATE links
		SET link_id = COALESCE(NULLIF($2, ''), link_id),
		    target  = COALESCE(NULLIF($3, ''), target)
		WHERE link_id = $1
		RETURNING link_id, target, control_key, added_at, visit_count
	`

	var link links.Link

	err := p.pool.QueryRow(ctx, query, id, changes.NewID, changes.Target).Scan(
		&link.ID,
		&link.Target,
		&link.ControlKeyHash,
		&link.AddedAt,
		&link.VisitCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, links.ErrNotFound
		}

		return nil, translatePgError(err, changes.NewID)
	}

	return &link, nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM links WHERE link_id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return links.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) IncrementVisits(ctx context.Context, id string, n int64) error {
	tag, err := p.pool.Exec(ctx, `UPDATE links SET visit_count = visit_count + $2 WHERE link_id = $1`, id, n)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return links.ErrNotFound
	}

	return nil
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

func translatePgError(err error, id string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", links.ErrDuplicateID, id)
	}

	return err
}

var _ links.Repository = (*PostgresStore)(nil)
