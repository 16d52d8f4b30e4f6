package model

import "time"

// AnalysisStatus represents the lifecycle state of an analysis.
type AnalysisStatus string

const (
	AnalysisStatusPending    AnalysisStatus = "PENDING"
	AnalysisStatusProcessing AnalysisStatus = "PROCESSING"
	AnalysisStatusCompleted  AnalysisStatus = "COMPLETED"
	AnalysisStatusFailed     AnalysisStatus = "FAILED"
)

// Analysis is a user-owned batch of supplier records plus its run status.
type Analysis struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"owner_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      AnalysisStatus `json:"status"`
	Fallback    bool           `json:"fallback"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// AnalysisStats aggregates an owner's analyses for the dashboard.
type AnalysisStats struct {
	TotalAnalyses      int     `json:"total_analyses"`
	CompletedAnalyses  int     `json:"completed_analyses"`
	PendingAnalyses    int     `json:"pending_analyses"`
	FailedAnalyses     int     `json:"failed_analyses"`
	TotalSuppliers     int     `json:"total_suppliers"`
	AveragePerformance float64 `json:"average_performance"`
}
