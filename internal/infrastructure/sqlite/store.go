// Package sqlite implements the storage collaborator over a single SQLite
// file, matching the system's single-binary deployment. Rank history is a
// strictly append-only log: the core never updates or deletes observations.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shoprank/backend/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT    NOT NULL UNIQUE,
    memo        TEXT    NOT NULL DEFAULT '',
    created_at  TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    client_id       INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
    raw_reference   TEXT    NOT NULL,
    raw_id          TEXT    NOT NULL,
    catalog_id      TEXT    NOT NULL DEFAULT '',
    storefront_id   TEXT    NOT NULL DEFAULT '',
    ref_kind        TEXT    NOT NULL,
    display_name    TEXT    NOT NULL DEFAULT '',
    mall_name_hint  TEXT    NOT NULL DEFAULT '',
    created_at      TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS keywords (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    client_id   INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
    keyword     TEXT    NOT NULL,
    created_at  TEXT    NOT NULL,
    UNIQUE(client_id, keyword)
);

CREATE TABLE IF NOT EXISTS rank_history (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    client_id         INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
    product_ref       TEXT    NOT NULL,
    product_name      TEXT    NOT NULL DEFAULT '',
    keyword           TEXT    NOT NULL,
    rank              INTEGER,
    matched_item_id   TEXT    NOT NULL DEFAULT '',
    matched_mall_name TEXT    NOT NULL DEFAULT '',
    matched_price     INTEGER NOT NULL DEFAULT 0,
    item_type         INTEGER NOT NULL DEFAULT 0,
    reason            TEXT    NOT NULL DEFAULT '',
    observed_at       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rank_history_lookup
    ON rank_history(client_id, keyword, observed_at);
`

// Store is the SQLite-backed implementation of domain.Store and
// domain.Registry. Safe for concurrent independent writes from different
// client runs; WAL mode plus busy_timeout handle writer contention.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// production pragmas and schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListClients returns all registered clients ordered by id.
func (s *Store) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, memo, created_at FROM clients ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var c domain.Client
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.Memo, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(createdAt)
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// ListProducts returns the tracked products of a client ordered by id.
func (s *Store) ListProducts(ctx context.Context, clientID int64) ([]domain.TrackedProduct, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_id, raw_reference, raw_id, catalog_id, storefront_id,
		        ref_kind, display_name, mall_name_hint, created_at
		   FROM products WHERE client_id = ? ORDER BY id`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.TrackedProduct
	for rows.Next() {
		var p domain.TrackedProduct
		var kind, createdAt string
		if err := rows.Scan(&p.ID, &p.ClientID, &p.RawReference, &p.RawID,
			&p.CatalogID, &p.StorefrontID, &kind, &p.DisplayName,
			&p.MallNameHint, &createdAt); err != nil {
			return nil, err
		}
		p.Kind = domain.RefKind(kind)
		p.CreatedAt = parseTime(createdAt)
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListKeywords returns the keywords of a client ordered by id.
func (s *Store) ListKeywords(ctx context.Context, clientID int64) ([]domain.Keyword, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_id, keyword, created_at
		   FROM keywords WHERE client_id = ? ORDER BY id`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keywords []domain.Keyword
	for rows.Next() {
		var k domain.Keyword
		var createdAt string
		if err := rows.Scan(&k.ID, &k.ClientID, &k.Text, &createdAt); err != nil {
			return nil, err
		}
		k.CreatedAt = parseTime(createdAt)
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// AppendObservations writes a whole run batch in one transaction.
// Append-only: rows are never updated afterwards.
func (s *Store) AppendObservations(ctx context.Context, batch []domain.RankObservation) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rank_history
		   (client_id, product_ref, product_name, keyword, rank,
		    matched_item_id, matched_mall_name, matched_price, item_type,
		    reason, observed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, obs := range batch {
		rank := sql.NullInt64{Int64: int64(obs.Rank), Valid: obs.Rank > 0}
		if _, err := stmt.ExecContext(ctx,
			obs.ClientID, obs.ProductRef, obs.ProductName, obs.Keyword, rank,
			obs.MatchedItemID, obs.MatchedMallName, obs.MatchedPrice,
			obs.ItemType, obs.Reason, formatTime(obs.ObservedAt)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CreateClient registers a new client.
func (s *Store) CreateClient(ctx context.Context, name, memo string) (*domain.Client, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (name, memo, created_at) VALUES (?, ?, ?)`,
		name, memo, formatTime(now))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.Client{ID: id, Name: name, Memo: memo, CreatedAt: now}, nil
}

// AddProduct registers a resolved product for tracking. The identity must
// already have passed reference resolution.
func (s *Store) AddProduct(ctx context.Context, p *domain.TrackedProduct) error {
	if err := s.clientExists(ctx, p.ClientID); err != nil {
		return err
	}
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products
		   (client_id, raw_reference, raw_id, catalog_id, storefront_id,
		    ref_kind, display_name, mall_name_hint, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ClientID, p.RawReference, p.RawID, p.CatalogID, p.StorefrontID,
		string(p.Kind), p.DisplayName, p.MallNameHint, formatTime(now))
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	p.CreatedAt = now
	return err
}

// AddKeyword registers a keyword for a client. Keywords are unique per
// client; duplicates yield domain.ErrDuplicateKeyword.
func (s *Store) AddKeyword(ctx context.Context, clientID int64, text string) (*domain.Keyword, error) {
	if err := s.clientExists(ctx, clientID); err != nil {
		return nil, err
	}
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO keywords (client_id, keyword, created_at) VALUES (?, ?, ?)`,
		clientID, text, formatTime(now))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, domain.ErrDuplicateKeyword
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.Keyword{ID: id, ClientID: clientID, Text: text, CreatedAt: now}, nil
}

// History returns the observation log for one (client, keyword) since the
// given time, most recent first. Read path for trend queries only; the
// tracking core never calls it.
func (s *Store) History(ctx context.Context, clientID int64, keyword string, since time.Time) ([]domain.RankObservation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT client_id, product_ref, product_name, keyword, rank,
		        matched_item_id, matched_mall_name, matched_price, item_type,
		        reason, observed_at
		   FROM rank_history
		  WHERE client_id = ? AND keyword = ? AND observed_at >= ?
		  ORDER BY observed_at DESC, id DESC`,
		clientID, keyword, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.RankObservation
	for rows.Next() {
		var obs domain.RankObservation
		var rank sql.NullInt64
		var observedAt string
		if err := rows.Scan(&obs.ClientID, &obs.ProductRef, &obs.ProductName,
			&obs.Keyword, &rank, &obs.MatchedItemID, &obs.MatchedMallName,
			&obs.MatchedPrice, &obs.ItemType, &obs.Reason, &observedAt); err != nil {
			return nil, err
		}
		if rank.Valid {
			obs.Rank = int(rank.Int64)
		}
		obs.ObservedAt = parseTime(observedAt)
		history = append(history, obs)
	}
	return history, rows.Err()
}

func (s *Store) clientExists(ctx context.Context, clientID int64) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM clients WHERE id = ?`, clientID).Scan(&one)
	if err == sql.ErrNoRows {
		return domain.ErrClientNotFound
	}
	return err
}

// Timestamps are stored as RFC 3339 text so the append-only log stays
// readable with plain sqlite tooling.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
