package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/supplier-cli/internal/db"
	"github.com/sells-group/supplier-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'PENDING',
	fallback    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS suppliers (
	id             TEXT PRIMARY KEY,
	analysis_id    TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	product        TEXT NOT NULL,
	quantity       INTEGER NOT NULL,
	quality        DOUBLE PRECISION NOT NULL,
	delivery_delay INTEGER NOT NULL,
	price          DOUBLE PRECISION NOT NULL,
	delivery_date  DATE NOT NULL,
	performance    DOUBLE PRECISION,
	category       TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	type        TEXT NOT NULL,
	subject     TEXT NOT NULL,
	body        TEXT NOT NULL,
	recipient   TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_analyses_owner ON analyses(owner_id);
CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE INDEX IF NOT EXISTS idx_suppliers_analysis ON suppliers(analysis_id);
CREATE INDEX IF NOT EXISTS idx_suppliers_category ON suppliers(category);
CREATE INDEX IF NOT EXISTS idx_messages_analysis ON messages(analysis_id);
CREATE INDEX IF NOT EXISTS idx_messages_type ON messages(analysis_id, type);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateAnalysis(ctx context.Context, ownerID, title, description string) (*model.Analysis, error) {
	a := &model.Analysis{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      model.AnalysisStatusPending,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO analyses (id, owner_id, title, description, status, fallback, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.OwnerID, a.Title, a.Description, string(a.Status), a.Fallback, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert analysis")
	}
	return a, nil
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, ownerID, id string) (*model.Analysis, error) {
	var a model.Analysis
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, title, description, status, fallback, created_at, updated_at FROM analyses WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.Status, &a.Fallback, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get analysis %s", id)
	}
	return &a, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.Analysis, int, error) {
	where := ` WHERE owner_id = $1`
	args := []any{filter.OwnerID}
	argIdx := 2

	if filter.Status != "" {
		where += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM analyses`+where, args...).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "postgres: count analyses")
	}

	query := `SELECT id, owner_id, title, description, status, fallback, created_at, updated_at FROM analyses` + where + ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		var a model.Analysis
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.Status, &a.Fallback, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, eris.Wrap(err, "postgres: scan analysis")
		}
		analyses = append(analyses, a)
	}
	return analyses, total, eris.Wrap(rows.Err(), "postgres: list analyses rows")
}

func (s *PostgresStore) DeleteAnalysis(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM analyses WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete analysis %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateAnalysisStatus(ctx context.Context, id string, status model.AnalysisStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update analysis status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateAnalysisOutcome(ctx context.Context, id string, status model.AnalysisStatus, description string, fallback bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET status = $1, description = $2, fallback = $3, updated_at = $4 WHERE id = $5`,
		string(status), description, fallback, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update analysis outcome %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AnalysisStats(ctx context.Context, ownerID string) (*model.AnalysisStats, error) {
	var stats model.AnalysisStats
	err := s.pool.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'COMPLETED'),
			count(*) FILTER (WHERE status = 'PENDING'),
			count(*) FILTER (WHERE status = 'FAILED')
		FROM analyses WHERE owner_id = $1`, ownerID,
	).Scan(&stats.TotalAnalyses, &stats.CompletedAnalyses, &stats.PendingAnalyses, &stats.FailedAnalyses)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: analysis stats")
	}

	err = s.pool.QueryRow(ctx, `
		SELECT count(*), coalesce(avg(s.performance), 0)
		FROM suppliers s JOIN analyses a ON a.id = s.analysis_id
		WHERE a.owner_id = $1`, ownerID,
	).Scan(&stats.TotalSuppliers, &stats.AveragePerformance)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: supplier aggregate")
	}
	return &stats, nil
}

// supplierColumns is the COPY column list for bulk imports.
var supplierColumns = []string{
	"id", "analysis_id", "name", "product", "quantity", "quality",
	"delivery_delay", "price", "delivery_date", "created_at",
}

func (s *PostgresStore) CreateSuppliers(ctx context.Context, analysisID string, suppliers []model.Supplier) (int, error) {
	now := time.Now().UTC()
	rows := make([][]any, len(suppliers))
	for i, sup := range suppliers {
		rows[i] = []any{
			uuid.New().String(), analysisID, sup.Name, sup.Product, sup.Quantity,
			sup.Quality, sup.DeliveryDelay, sup.Price, sup.DeliveryDate, now,
		}
	}

	n, err := db.CopyFrom(ctx, s.pool, "suppliers", supplierColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: copy suppliers")
	}
	return int(n), nil
}

func (s *PostgresStore) ListSuppliers(ctx context.Context, analysisID string) ([]model.Supplier, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, analysis_id, name, product, quantity, quality, delivery_delay, price, delivery_date, performance, category, created_at
		 FROM suppliers WHERE analysis_id = $1 ORDER BY performance DESC NULLS LAST, name`,
		analysisID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list suppliers")
	}
	defer rows.Close()

	var suppliers []model.Supplier
	for rows.Next() {
		var sup model.Supplier
		if err := rows.Scan(&sup.ID, &sup.AnalysisID, &sup.Name, &sup.Product, &sup.Quantity, &sup.Quality,
			&sup.DeliveryDelay, &sup.Price, &sup.DeliveryDate, &sup.Performance, &sup.Category, &sup.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan supplier")
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, eris.Wrap(rows.Err(), "postgres: list suppliers rows")
}

func (s *PostgresStore) UpdateSupplierScore(ctx context.Context, id string, performance float64, category model.Category) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE suppliers SET performance = $1, category = $2 WHERE id = $3`,
		performance, string(category), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update supplier score %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SupplierStats(ctx context.Context, ownerID string) (*model.SupplierStats, error) {
	stats := &model.SupplierStats{
		CategoryBreakdown: make(map[model.Category]int),
	}

	err := s.pool.QueryRow(ctx, `
		SELECT count(*), coalesce(avg(s.quality), 0), coalesce(avg(s.delivery_delay), 0), coalesce(avg(s.price), 0)
		FROM suppliers s JOIN analyses a ON a.id = s.analysis_id
		WHERE a.owner_id = $1`, ownerID,
	).Scan(&stats.TotalSuppliers, &stats.AverageQuality, &stats.AverageDelay, &stats.AveragePrice)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: supplier stats")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT s.category, count(*)
		FROM suppliers s JOIN analyses a ON a.id = s.analysis_id
		WHERE a.owner_id = $1 AND s.category IS NOT NULL
		GROUP BY s.category`, ownerID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: category breakdown")
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan category count")
		}
		stats.CategoryBreakdown[model.Category(category)] = count
	}
	return stats, eris.Wrap(rows.Err(), "postgres: category rows")
}

func (s *PostgresStore) CreateMessage(ctx context.Context, msg *model.Message) (*model.Message, error) {
	out := *msg
	out.ID = uuid.New().String()
	out.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, analysis_id, type, subject, body, recipient, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		out.ID, out.AnalysisID, string(out.Type), out.Subject, out.Body, out.Recipient, out.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert message")
	}
	return &out, nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, analysisID string) ([]model.Message, error) {
	return s.queryMessages(ctx,
		`SELECT id, analysis_id, type, subject, body, recipient, created_at FROM messages WHERE analysis_id = $1 ORDER BY created_at DESC`,
		analysisID,
	)
}

func (s *PostgresStore) ListMessagesByType(ctx context.Context, analysisID string, typ model.MessageType) ([]model.Message, error) {
	return s.queryMessages(ctx,
		`SELECT id, analysis_id, type, subject, body, recipient, created_at FROM messages WHERE analysis_id = $1 AND type = $2 ORDER BY created_at DESC`,
		analysisID, string(typ),
	)
}

func (s *PostgresStore) GetMessage(ctx context.Context, ownerID, id string) (*model.Message, error) {
	var m model.Message
	err := s.pool.QueryRow(ctx,
		`SELECT m.id, m.analysis_id, m.type, m.subject, m.body, m.recipient, m.created_at
		 FROM messages m JOIN analyses a ON a.id = m.analysis_id
		 WHERE m.id = $1 AND a.owner_id = $2`,
		id, ownerID,
	).Scan(&m.ID, &m.AnalysisID, &m.Type, &m.Subject, &m.Body, &m.Recipient, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get message %s", id)
	}
	return &m, nil
}

func (s *PostgresStore) queryMessages(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list messages")
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.AnalysisID, &m.Type, &m.Subject, &m.Body, &m.Recipient, &m.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan message")
		}
		messages = append(messages, m)
	}
	return messages, eris.Wrap(rows.Err(), "postgres: message rows")
}
