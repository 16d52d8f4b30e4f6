package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/supplier-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetAnalysis_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, owner_id, title, description, status, fallback, created_at, updated_at FROM analyses`).
		WithArgs("missing-id", "user-1").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetAnalysis(context.Background(), "user-1", "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAnalysis(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, owner_id, title, description, status, fallback, created_at, updated_at FROM analyses`).
		WithArgs("an-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "title", "description", "status", "fallback", "created_at", "updated_at"}).
			AddRow("an-1", "user-1", "Q1 review", "", model.AnalysisStatusCompleted, true, now, now))

	a, err := s.GetAnalysis(context.Background(), "user-1", "an-1")
	require.NoError(t, err)
	assert.Equal(t, "Q1 review", a.Title)
	assert.Equal(t, model.AnalysisStatusCompleted, a.Status)
	assert.True(t, a.Fallback)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateAnalysis(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO analyses`).
		WithArgs(pgxmock.AnyArg(), "user-1", "new run", "desc", "PENDING", false, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	a, err := s.CreateAnalysis(context.Background(), "user-1", "new run", "desc")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, model.AnalysisStatusPending, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAnalyses_StatusFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT count\(\*\) FROM analyses`).
		WithArgs("user-1", "COMPLETED").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT id, owner_id, title, description, status, fallback, created_at, updated_at FROM analyses`).
		WithArgs("user-1", "COMPLETED", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "title", "description", "status", "fallback", "created_at", "updated_at"}).
			AddRow("an-1", "user-1", "done", "", model.AnalysisStatusCompleted, false, now, now))

	analyses, total, err := s.ListAnalyses(context.Background(), AnalysisFilter{
		OwnerID: "user-1",
		Status:  model.AnalysisStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, analyses, 1)
	assert.Equal(t, "an-1", analyses[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteAnalysis_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM analyses`).
		WithArgs("missing-id", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteAnalysis(context.Background(), "user-1", "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateAnalysisOutcome(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE analyses SET status = \$1, description = \$2, fallback = \$3`).
		WithArgs("COMPLETED", "Basic analysis performed (AI unavailable)", true, pgxmock.AnyArg(), "an-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateAnalysisOutcome(context.Background(), "an-1", model.AnalysisStatusCompleted,
		"Basic analysis performed (AI unavailable)", true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateSupplierScore(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE suppliers SET performance = \$1, category = \$2`).
		WithArgs(84.0, "GOOD", "sup-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateSupplierScore(context.Background(), "sup-1", 84, model.CategoryGood)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateSupplierScore_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE suppliers SET performance = \$1, category = \$2`).
		WithArgs(50.0, "AVERAGE", "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateSupplierScore(context.Background(), "missing", 50, model.CategoryAverage)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateSuppliers_Copy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"suppliers"}, supplierColumns).
		WillReturnResult(2)

	n, err := s.CreateSuppliers(context.Background(), "an-1", []model.Supplier{
		{Name: "Acme Corp", Product: "Widget", Quantity: 100, Quality: 8.5, DeliveryDelay: 5, Price: 150.50},
		{Name: "Beta Ltd", Product: "Gadget", Quantity: 50, Quality: 4.0, DeliveryDelay: 20, Price: 800},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListSuppliers(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()
	perf := 84.0
	cat := model.CategoryGood

	mock.ExpectQuery(`SELECT id, analysis_id, name, product, quantity, quality, delivery_delay, price, delivery_date, performance, category, created_at`).
		WithArgs("an-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "analysis_id", "name", "product", "quantity", "quality",
			"delivery_delay", "price", "delivery_date", "performance", "category", "created_at",
		}).AddRow("sup-1", "an-1", "Acme Corp", "Widget", 100, 8.5, 5, 150.50, now, &perf, &cat, now))

	suppliers, err := s.ListSuppliers(context.Background(), "an-1")
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	require.NotNil(t, suppliers[0].Performance)
	assert.InDelta(t, 84, *suppliers[0].Performance, 0.001)
	require.NotNil(t, suppliers[0].Category)
	assert.Equal(t, model.CategoryGood, *suppliers[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateMessage(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs(pgxmock.AnyArg(), "an-1", "SUPPLIER", "subject", "body", "Fournisseurs", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	msg, err := s.CreateMessage(context.Background(), &model.Message{
		AnalysisID: "an-1",
		Type:       model.MessageTypeSupplier,
		Subject:    "subject",
		Body:       "body",
		Recipient:  model.MessageTypeSupplier.Recipient(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AnalysisStats(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM analyses WHERE owner_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"total", "completed", "pending", "failed"}).AddRow(3, 2, 1, 0))
	mock.ExpectQuery(`FROM suppliers s JOIN analyses a`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count", "avg"}).AddRow(12, 71.5))

	stats, err := s.AnalysisStats(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalAnalyses)
	assert.Equal(t, 2, stats.CompletedAnalyses)
	assert.Equal(t, 12, stats.TotalSuppliers)
	assert.InDelta(t, 71.5, stats.AveragePerformance, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}
