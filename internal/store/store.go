package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/supplier-cli/internal/model"
)

// ErrNotFound is returned when an entity does not exist or is not visible
// to the requesting owner.
var ErrNotFound = eris.New("store: not found")

// AnalysisFilter specifies criteria for listing analyses.
type AnalysisFilter struct {
	OwnerID string               `json:"owner_id"`
	Status  model.AnalysisStatus `json:"status,omitempty"`
	Limit   int                  `json:"limit,omitempty"`
	Offset  int                  `json:"offset,omitempty"`
}

// Store defines the persistence interface for the analysis service.
type Store interface {
	// Analyses
	CreateAnalysis(ctx context.Context, ownerID, title, description string) (*model.Analysis, error)
	GetAnalysis(ctx context.Context, ownerID, id string) (*model.Analysis, error)
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.Analysis, int, error)
	DeleteAnalysis(ctx context.Context, ownerID, id string) error
	UpdateAnalysisStatus(ctx context.Context, id string, status model.AnalysisStatus) error
	UpdateAnalysisOutcome(ctx context.Context, id string, status model.AnalysisStatus, description string, fallback bool) error
	AnalysisStats(ctx context.Context, ownerID string) (*model.AnalysisStats, error)

	// Suppliers
	CreateSuppliers(ctx context.Context, analysisID string, suppliers []model.Supplier) (int, error)
	ListSuppliers(ctx context.Context, analysisID string) ([]model.Supplier, error)
	UpdateSupplierScore(ctx context.Context, id string, performance float64, category model.Category) error
	SupplierStats(ctx context.Context, ownerID string) (*model.SupplierStats, error)

	// Messages
	CreateMessage(ctx context.Context, msg *model.Message) (*model.Message, error)
	ListMessages(ctx context.Context, analysisID string) ([]model.Message, error)
	ListMessagesByType(ctx context.Context, analysisID string, typ model.MessageType) ([]model.Message, error)
	GetMessage(ctx context.Context, ownerID, id string) (*model.Message, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
