package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/cognicore/promoscan/pkg/promoscan/internalerr"
	"github.com/cognicore/promoscan/pkg/promoscan/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(internalerr.ErrStoreUnavailable, "sqlite: open %s: %v", path, err)
	}

	// Pragmas are per connection; a single connection keeps them in force
	// and serializes writers.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(internalerr.ErrStoreUnavailable, "sqlite: exec %s: %v", pragma, err)
		}
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	retailer TEXT,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	product_name TEXT NOT NULL,
	product_category TEXT NOT NULL,
	price REAL NOT NULL,
	old_price REAL,
	discount_percent INTEGER,
	is_promotional INTEGER NOT NULL DEFAULT 0,
	promo_start TEXT,
	promo_end TEXT,
	confidence REAL NOT NULL,
	line_index INTEGER NOT NULL,
	original_line TEXT,
	PRIMARY KEY(run_id, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_products_category ON products(product_category);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS blacklist (
	term TEXT PRIMARY KEY
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return eris.Wrap(err, "sqlite: init schema")
	}
	return nil
}

// SaveRun inserts a run and its products in one transaction.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return eris.Wrap(internalerr.ErrInvalidInput, "sqlite: run without id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save run")
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, r.ID).Scan(&exists)
	if err == nil {
		return eris.Wrapf(internalerr.ErrDuplicate, "sqlite: run %s", r.ID)
	}
	if err != sql.ErrNoRows {
		return eris.Wrap(err, "sqlite: check run")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, retailer, created_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.Source, r.Retailer, r.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert run")
	}

	if err := insertProducts(ctx, tx, r.ID, r.Products); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit run")
	}
	return nil
}

// ReplaceProducts rewrites the products of an existing run.
func (s *sqliteStore) ReplaceProducts(ctx context.Context, runID string, products []store.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace products")
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err == sql.ErrNoRows {
		return eris.Wrapf(internalerr.ErrNotFound, "sqlite: run %s", runID)
	}
	if err != nil {
		return eris.Wrap(err, "sqlite: check run")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE run_id = ?`, runID); err != nil {
		return eris.Wrap(err, "sqlite: delete products")
	}
	if err := insertProducts(ctx, tx, runID, products); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit replace products")
}

func insertProducts(ctx context.Context, tx *sql.Tx, runID string, products []store.Product) error {
	if len(products) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO products (
	run_id, position, product_name, product_category, price, old_price,
	discount_percent, is_promotional, promo_start, promo_end, confidence,
	line_index, original_line
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare products")
	}
	defer stmt.Close()

	for i, p := range products {
		_, err := stmt.ExecContext(ctx,
			runID, i, p.Name, p.Category, p.Price,
			nullFloat(p.OldPrice), nullInt(p.DiscountPercent), p.IsPromotional,
			nullString(p.PromoStart), nullString(p.PromoEnd), p.Confidence,
			p.LineIndex, p.OriginalLine,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert product %q", p.Name)
		}
	}
	return nil
}

// GetRun retrieves a run with its products.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	var (
		r        store.Run
		retailer sql.NullString
		created  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, retailer, created_at FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.Source, &retailer, &created)
	if err == sql.ErrNoRows {
		return store.Run{}, eris.Wrapf(internalerr.ErrNotFound, "sqlite: run %s", id)
	}
	if err != nil {
		return store.Run{}, eris.Wrap(err, "sqlite: get run")
	}
	r.Retailer = retailer.String
	r.CreatedAt = time.Unix(0, created).UTC()

	products, err := s.queryProducts(ctx, productColumns+`
FROM products WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return store.Run{}, err
	}
	r.Products = products
	return r, nil
}

// ListRuns returns run summaries, newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT r.id, r.source, r.retailer, r.created_at, COUNT(p.position)
FROM runs r
LEFT JOIN products p ON p.run_id = r.id
GROUP BY r.id
ORDER BY r.created_at DESC, r.id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var out []store.RunSummary
	for rows.Next() {
		var (
			sum      store.RunSummary
			retailer sql.NullString
			created  int64
		)
		if err := rows.Scan(&sum.ID, &sum.Source, &retailer, &created, &sum.ProductCount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		sum.Retailer = retailer.String
		sum.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, sum)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list runs")
}

// ProductsByCategory returns products of one category, newest run first.
func (s *sqliteStore) ProductsByCategory(ctx context.Context, category string, limit int) ([]store.Product, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	return s.queryProducts(ctx, `
SELECT p.run_id, p.product_name, p.product_category, p.price, p.old_price,
	p.discount_percent, p.is_promotional, p.promo_start, p.promo_end,
	p.confidence, p.line_index, p.original_line
FROM products p
JOIN runs r ON r.id = p.run_id
WHERE p.product_category = ?
ORDER BY r.created_at DESC, r.id DESC, p.position
LIMIT ?`, category, limit)
}

const productColumns = `
SELECT run_id, product_name, product_category, price, old_price,
	discount_percent, is_promotional, promo_start, promo_end,
	confidence, line_index, original_line`

func (s *sqliteStore) queryProducts(ctx context.Context, query string, args ...interface{}) ([]store.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query products")
	}
	defer rows.Close()

	var out []store.Product
	for rows.Next() {
		var (
			p          store.Product
			oldPrice   sql.NullFloat64
			discount   sql.NullInt64
			promoStart sql.NullString
			promoEnd   sql.NullString
			original   sql.NullString
		)
		err := rows.Scan(
			&p.RunID, &p.Name, &p.Category, &p.Price, &oldPrice,
			&discount, &p.IsPromotional, &promoStart, &promoEnd,
			&p.Confidence, &p.LineIndex, &original,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan product")
		}
		if oldPrice.Valid {
			v := oldPrice.Float64
			p.OldPrice = &v
		}
		if discount.Valid {
			v := int(discount.Int64)
			p.DiscountPercent = &v
		}
		if promoStart.Valid {
			v := promoStart.String
			p.PromoStart = &v
		}
		if promoEnd.Valid {
			v := promoEnd.String
			p.PromoEnd = &v
		}
		p.OriginalLine = original.String
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: read products")
}

// BlacklistTerms returns stored terms, sorted.
func (s *sqliteStore) BlacklistTerms(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT term FROM blacklist ORDER BY term`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query blacklist")
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan blacklist term")
		}
		out = append(out, term)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: read blacklist")
}

// AddBlacklistTerms stores terms; existing ones are ignored.
func (s *sqliteStore) AddBlacklistTerms(ctx context.Context, terms []string) error {
	return s.execTerms(ctx, `INSERT OR IGNORE INTO blacklist (term) VALUES (?)`, terms)
}

// RemoveBlacklistTerms deletes terms; missing ones are ignored.
func (s *sqliteStore) RemoveBlacklistTerms(ctx context.Context, terms []string) error {
	return s.execTerms(ctx, `DELETE FROM blacklist WHERE term = ?`, terms)
}

func (s *sqliteStore) execTerms(ctx context.Context, query string, terms []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin blacklist update")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare blacklist update")
	}
	defer stmt.Close()

	for _, term := range terms {
		term = strings.Join(strings.Fields(strings.ToLower(term)), " ")
		if term == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, term); err != nil {
			return eris.Wrapf(err, "sqlite: blacklist term %q", term)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit blacklist update")
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
