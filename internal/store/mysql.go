package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/serroba/link-shortener/internal/links"
)

const mysqlDuplicateEntry = 1062

const mysqlSchema = `
	CREATE TABLE IF NOT EXISTS links (
		link_id     VARCHAR(255) NOT NULL PRIMARY KEY,
		target      TEXT         NOT NULL,
		control_key VARCHAR(255) NOT NULL,
		added_at    DATETIME(6)  NOT NULL,
		visit_count BIGINT       NOT NULL DEFAULT 0,
		INDEX links_added_at_idx (added_at)
	)
`

// MySQLStore is a MySQL implementation of links.Repository.
type MySQLStore struct {
	db *sql.DB
}

// OpenMySQL opens a connection pool for dsn. Time parsing and found-rows reporting
// are always enabled since the store relies on both.
func OpenMySQL(dsn string, maxConns int) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}

	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)

	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
	}

	db.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// NewMySQLStore creates a new MySQL-backed link store.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// EnsureSchema creates the links table if it does not exist.
func (m *MySQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, mysqlSchema); err != nil {
		return fmt.Errorf("create links schema: %w", err)
	}

	return nil
}

func (m *MySQLStore) Create(ctx context.Context, batch ...*links.Link) error {
	query := `
		INSERT INTO links (link_id, target, control_key, added_at, visit_count)
		VALUES (?, ?, ?, ?, ?)
	`

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}

	defer stmt.Close()

	for _, link := range batch {
		_, err := stmt.ExecContext(ctx, link.ID, link.Target, link.ControlKeyHash, link.AddedAt, link.VisitCount)
		if err != nil {
			return translateMySQLError(err, link.ID)
		}
	}

	return tx.Commit()
}

func (m *MySQLStore) Get(ctx context.Context, id string) (*links.Link, error) {
	return m.get(ctx, m.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (m *MySQLStore) get(ctx context.Context, q queryRower, id string) (*links.Link, error) {
	query := `
		SELECT link_id, target, control_key, added_at, visit_count
		FROM links
		WHERE link_id = ?
	`

	var link links.Link

	err := q.QueryRowContext(ctx, query, id).Scan(
		&link.ID,
		&link.Target,
		&link.ControlKeyHash,
		&link.AddedAt,
		&link.VisitCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, links.ErrNotFound
		}

		return nil, err
	}

	return &link, nil
}

func (m *MySQLStore) List(ctx context.Context) ([]*links.Link, error) {
	query := `
		SELECT link_id, target, control_key, added_at, visit_count
		FROM links
		ORDER BY added_at DESC, link_id
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var result []*links.Link

	for rows.Next() {
		var link links.Link

		if err := rows.Scan(&link.ID, &link.Target, &link.ControlKeyHash, &link.AddedAt, &link.VisitCount); err != nil {
			return nil, err
		}

		result = append(result, &link)
	}

	return result, rows.Err()
}

func (m *MySQLStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	err := m.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM links WHERE link_id = ?)`, id).Scan(&exists)

	return exists, err
}

func (m *MySQLStore) Update(ctx context.Context, id string, changes links.Changes) (*links.Link, error) {
	query := `
		UPDATE links
		SET link_id = COALESCE(NULLIF(?, ''), link_id),
		    target  = COALESCE(NULLIF(?, ''), target)
		WHERE link_id = ?
	`

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, query, changes.NewID, changes.Target, id)
	if err != nil {
		return nil, translateMySQLError(err, changes.NewID)
	}

	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, links.ErrNotFound
	}

	newID := id
	if changes.NewID != "" {
		newID = changes.NewID
	}

	link, err := m.get(ctx, tx, newID)
	if err != nil {
		return nil, err
	}

	return link, tx.Commit()
}

func (m *MySQLStore) Delete(ctx context.Context, id string) error {
	return m.execOne(ctx, `DELETE FROM links WHERE link_id = ?`, id)
}

func (m *MySQLStore) IncrementVisits(ctx context.Context, id string, n int64) error {
	return m.execOne(ctx, `UPDATE links SET visit_count = visit_count + ? WHERE link_id = ?`, n, id)
}

// execOne runs a statement that must affect exactly one link.
func (m *MySQLStore) execOne(ctx context.Context, query string, args ...any) error {
	res, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return links.ErrNotFound
	}

	return nil
}

// Ping checks database connectivity.
func (m *MySQLStore) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// Shutdown closes the connection pool.
func (m *MySQLStore) Shutdown() error {
	return m.db.Close()
}

func translateMySQLError(err error, id string) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: %s", links.ErrDuplicateID, id)
	}

	return err
}

var _ links.Repository = (*MySQLStore)(nil)
