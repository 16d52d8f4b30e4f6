package model

import "time"

// Category is the discretized performance tier of a supplier.
type Category string

const (
	CategoryExcellent Category = "EXCELLENT"
	CategoryGood      Category = "GOOD"
	CategoryAverage   Category = "AVERAGE"
	CategoryPoor      Category = "POOR"
	CategoryCritical  Category = "CRITICAL"
)

// Valid reports whether c is one of the five known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryExcellent, CategoryGood, CategoryAverage, CategoryPoor, CategoryCritical:
		return true
	}
	return false
}

// Supplier is one canonical order record imported for an analysis.
// Performance and Category are both nil until a run has scored the record;
// Category is always the categorization of Performance.
type Supplier struct {
	ID            string    `json:"id"`
	AnalysisID    string    `json:"analysis_id"`
	Name          string    `json:"name"`
	Product       string    `json:"product"`
	Quantity      int       `json:"quantity"`
	Quality       float64   `json:"quality"`
	DeliveryDelay int       `json:"delivery_delay"`
	Price         float64   `json:"price"`
	DeliveryDate  time.Time `json:"delivery_date"`
	Performance   *float64  `json:"performance,omitempty"`
	Category      *Category `json:"category,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SupplierStats aggregates an owner's suppliers across all analyses.
type SupplierStats struct {
	TotalSuppliers    int              `json:"total_suppliers"`
	CategoryBreakdown map[Category]int `json:"category_breakdown"`
	AverageQuality    float64          `json:"average_quality"`
	AverageDelay      float64          `json:"average_delay"`
	AveragePrice      float64          `json:"average_price"`
}
