package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/supplier-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It is the
// zero-dependency driver for local development and the CLI.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'PENDING',
	fallback    INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS suppliers (
	id             TEXT PRIMARY KEY,
	analysis_id    TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	product        TEXT NOT NULL,
	quantity       INTEGER NOT NULL,
	quality        REAL NOT NULL,
	delivery_delay INTEGER NOT NULL,
	price          REAL NOT NULL,
	delivery_date  DATETIME NOT NULL,
	performance    REAL,
	category       TEXT,
	created_at     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	type        TEXT NOT NULL,
	subject     TEXT NOT NULL,
	body        TEXT NOT NULL,
	recipient   TEXT NOT NULL,
	created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_owner ON analyses(owner_id);
CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE INDEX IF NOT EXISTS idx_suppliers_analysis ON suppliers(analysis_id);
CREATE INDEX IF NOT EXISTS idx_messages_analysis ON messages(analysis_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateAnalysis(ctx context.Context, ownerID, title, description string) (*model.Analysis, error) {
	a := &model.Analysis{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      model.AnalysisStatusPending,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, owner_id, title, description, status, fallback, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerID, a.Title, a.Description, string(a.Status), a.Fallback, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert analysis")
	}
	return a, nil
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, ownerID, id string) (*model.Analysis, error) {
	var a model.Analysis
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, status, fallback, created_at, updated_at FROM analyses WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan(&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.Status, &a.Fallback, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get analysis %s", id)
	}
	return &a, nil
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.Analysis, int, error) {
	where := ` WHERE owner_id = ?`
	args := []any{filter.OwnerID}

	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, string(filter.Status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM analyses`+where, args...).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: count analyses")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, owner_id, title, description, status, fallback, created_at, updated_at FROM analyses` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, max(filter.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		var a model.Analysis
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.Status, &a.Fallback, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, eris.Wrap(err, "sqlite: scan analysis")
		}
		analyses = append(analyses, a)
	}
	return analyses, total, eris.Wrap(rows.Err(), "sqlite: list analyses rows")
}

func (s *SQLiteStore) DeleteAnalysis(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete analysis %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpdateAnalysisStatus(ctx context.Context, id string, status model.AnalysisStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update analysis status %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpdateAnalysisOutcome(ctx context.Context, id string, status model.AnalysisStatus, description string, fallback bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, description = ?, fallback = ?, updated_at = ? WHERE id = ?`,
		string(status), description, fallback, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update analysis outcome %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) AnalysisStats(ctx context.Context, ownerID string) (*model.AnalysisStats, error) {
	var stats model.AnalysisStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			count(*),
			count(CASE WHEN status = 'COMPLETED' THEN 1 END),
			count(CASE WHEN status = 'PENDING' THEN 1 END),
			count(CASE WHEN status = 'FAILED' THEN 1 END)
		FROM analyses WHERE owner_id = ?`, ownerID,
	).Scan(&stats.TotalAnalyses, &stats.CompletedAnalyses, &stats.PendingAnalyses, &stats.FailedAnalyses)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: analysis stats")
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT count(*), coalesce(avg(s.performance), 0)
		FROM suppliers s JOIN analyses a ON a.id = s.analysis_id
		WHERE a.owner_id = ?`, ownerID,
	).Scan(&stats.TotalSuppliers, &stats.AveragePerformance)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: supplier aggregate")
	}
	return &stats, nil
}

func (s *SQLiteStore) CreateSuppliers(ctx context.Context, analysisID string, suppliers []model.Supplier) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO suppliers (id, analysis_id, name, product, quantity, quality, delivery_delay, price, delivery_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare supplier insert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	for _, sup := range suppliers {
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), analysisID, sup.Name, sup.Product, sup.Quantity,
			sup.Quality, sup.DeliveryDelay, sup.Price, sup.DeliveryDate, now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert supplier %s", sup.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit suppliers")
	}
	return len(suppliers), nil
}

func (s *SQLiteStore) ListSuppliers(ctx context.Context, analysisID string) ([]model.Supplier, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, analysis_id, name, product, quantity, quality, delivery_delay, price, delivery_date, performance, category, created_at
		 FROM suppliers WHERE analysis_id = ? ORDER BY performance IS NULL, performance DESC, name`,
		analysisID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list suppliers")
	}
	defer rows.Close()

	var suppliers []model.Supplier
	for rows.Next() {
		var sup model.Supplier
		var performance sql.NullFloat64
		var category sql.NullString
		if err := rows.Scan(&sup.ID, &sup.AnalysisID, &sup.Name, &sup.Product, &sup.Quantity, &sup.Quality,
			&sup.DeliveryDelay, &sup.Price, &sup.DeliveryDate, &performance, &category, &sup.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan supplier")
		}
		if performance.Valid {
			sup.Performance = &performance.Float64
		}
		if category.Valid {
			c := model.Category(category.String)
			sup.Category = &c
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, eris.Wrap(rows.Err(), "sqlite: list suppliers rows")
}

func (s *SQLiteStore) UpdateSupplierScore(ctx context.Context, id string, performance float64, category model.Category) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE suppliers SET performance = ?, category = ? WHERE id = ?`,
		performance, string(category), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update supplier score %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SupplierStats(ctx context.Context, ownerID string) (*model.SupplierStats, error) {
	stats := &model.SupplierStats{
		CategoryBreakdown: make(map[model.Category]int),
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT count(*), coalesce(avg(s.quality), 0), coalesce(avg(s.delivery_delay), 0), coalesce(avg(s.price), 0)
		FROM suppliers s JOIN analyses a ON a.id = s.analysis_id
		WHERE a.owner_id = ?`, ownerID,
	).Scan(&stats.TotalSuppliers, &stats.AverageQuality, &stats.AverageDelay, &stats.AveragePrice)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: supplier stats")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.category, count(*)
		FROM suppliers s JOIN analyses a ON a.id = s.analysis_id
		WHERE a.owner_id = ? AND s.category IS NOT NULL
		GROUP BY s.category`, ownerID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: category breakdown")
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan category count")
		}
		stats.CategoryBreakdown[model.Category(category)] = count
	}
	return stats, eris.Wrap(rows.Err(), "sqlite: category rows")
}

func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *model.Message) (*model.Message, error) {
	out := *msg
	out.ID = uuid.New().String()
	out.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, analysis_id, type, subject, body, recipient, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.AnalysisID, string(out.Type), out.Subject, out.Body, out.Recipient, out.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert message")
	}
	return &out, nil
}

func (s *SQLiteStore) ListMessages(ctx context.Context, analysisID string) ([]model.Message, error) {
	return s.queryMessages(ctx,
		`SELECT id, analysis_id, type, subject, body, recipient, created_at FROM messages WHERE analysis_id = ? ORDER BY created_at DESC`,
		analysisID,
	)
}

func (s *SQLiteStore) ListMessagesByType(ctx context.Context, analysisID string, typ model.MessageType) ([]model.Message, error) {
	return s.queryMessages(ctx,
		`SELECT id, analysis_id, type, subject, body, recipient, created_at FROM messages WHERE analysis_id = ? AND type = ? ORDER BY created_at DESC`,
		analysisID, string(typ),
	)
}

func (s *SQLiteStore) GetMessage(ctx context.Context, ownerID, id string) (*model.Message, error) {
	var m model.Message
	err := s.db.QueryRowContext(ctx,
		`SELECT m.id, m.analysis_id, m.type, m.subject, m.body, m.recipient, m.created_at
		 FROM messages m JOIN analyses a ON a.id = m.analysis_id
		 WHERE m.id = ? AND a.owner_id = ?`,
		id, ownerID,
	).Scan(&m.ID, &m.AnalysisID, &m.Type, &m.Subject, &m.Body, &m.Recipient, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get message %s", id)
	}
	return &m, nil
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list messages")
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.AnalysisID, &m.Type, &m.Subject, &m.Body, &m.Recipient, &m.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan message")
		}
		messages = append(messages, m)
	}
	return messages, eris.Wrap(rows.Err(), "sqlite: message rows")
}
