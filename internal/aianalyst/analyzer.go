// Package aianalyst calls Claude to assess supplier performance and draft
// outbound communications. Both collaborators are modeled as interfaces so
// the orchestrator is testable without a live API call.
package aianalyst

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/supplier-cli/internal/config"
	"github.com/sells-group/supplier-cli/internal/model"
	"github.com/sells-group/supplier-cli/pkg/anthropic"
)

// SupplierAssessment is the model's verdict on one supplier, keyed by the
// supplier's exact name.
type SupplierAssessment struct {
	Name             string         `json:"name"`
	Category         model.Category `json:"category"`
	PerformanceScore float64        `json:"performanceScore"`
	Strengths        []string       `json:"strengths,omitempty"`
	Weaknesses       []string       `json:"weaknesses,omitempty"`
	Recommendations  []string       `json:"recommendations,omitempty"`
}

// GlobalAnalysis summarizes the whole batch.
type GlobalAnalysis struct {
	OverallQuality       float64 `json:"overallQuality"`
	AverageDeliveryDelay float64 `json:"averageDeliveryDelay"`
	PriceCompetitiveness float64 `json:"priceCompetitiveness"`
	TotalSuppliers       int     `json:"totalSuppliers"`
}

// Result is the structured analysis returned by the Analyzer.
type Result struct {
	Global      GlobalAnalysis       `json:"globalAnalysis"`
	PerSupplier []SupplierAssessment `json:"supplierAnalysis"`
	Summary     string               `json:"summary"`
}

// ByName indexes the per-supplier assessments by exact name.
func (r *Result) ByName() map[string]SupplierAssessment {
	out := make(map[string]SupplierAssessment, len(r.PerSupplier))
	for _, sa := range r.PerSupplier {
		out[sa.Name] = sa
	}
	return out
}

// Analyzer assesses a batch of supplier records. Implementations may fail
// or time out; the orchestrator treats any error as a signal to fall back
// to local scoring.
type Analyzer interface {
	Analyze(ctx context.Context, suppliers []model.Supplier) (*Result, error)
}

// analyzerSystemPrompt mirrors the expert persona of the original service.
const analyzerSystemPrompt = `You are an expert in supplier performance analysis. Provide precise, detailed assessments based strictly on the data supplied. Respond with JSON only, no prose outside the JSON object.`

const analyzerPromptTemplate = `Analyze the performance of the following suppliers.

Supplier data:
%s

Assess for each supplier: overall quality (0-10 scale), delivery punctuality, price competitiveness, strengths, weaknesses, and improvement recommendations. Assign each supplier a category (EXCELLENT, GOOD, AVERAGE, POOR, CRITICAL) and a performance score from 0 to 100.

Respond with exactly this JSON structure:
{
  "globalAnalysis": {
    "overallQuality": number,
    "averageDeliveryDelay": number,
    "priceCompetitiveness": number,
    "totalSuppliers": number
  },
  "supplierAnalysis": [
    {
      "name": "string",
      "category": "EXCELLENT|GOOD|AVERAGE|POOR|CRITICAL",
      "performanceScore": number,
      "strengths": ["string"],
      "weaknesses": ["string"],
      "recommendations": ["string"]
    }
  ],
  "summary": "string"
}`

// ClaudeAnalyzer implements Analyzer with a single Claude message call.
type ClaudeAnalyzer struct {
	client anthropic.Client
	cfg    config.AnthropicConfig
}

// NewClaudeAnalyzer creates an Analyzer backed by the given client.
func NewClaudeAnalyzer(client anthropic.Client, cfg config.AnthropicConfig) *ClaudeAnalyzer {
	return &ClaudeAnalyzer{client: client, cfg: cfg}
}

// analyzedSupplier is the subset of the record sent to the model.
type analyzedSupplier struct {
	Name          string  `json:"name"`
	Product       string  `json:"product"`
	Quantity      int     `json:"quantity"`
	Quality       float64 `json:"quality"`
	DeliveryDelay int     `json:"deliveryDelay"`
	Price         float64 `json:"price"`
	DeliveryDate  string  `json:"deliveryDate"`
}

func (a *ClaudeAnalyzer) Analyze(ctx context.Context, suppliers []model.Supplier) (*Result, error) {
	payload := make([]analyzedSupplier, len(suppliers))
	for i, s := range suppliers {
		payload[i] = analyzedSupplier{
			Name:          s.Name,
			Product:       s.Product,
			Quantity:      s.Quantity,
			Quality:       s.Quality,
			DeliveryDelay: s.DeliveryDelay,
			Price:         s.Price,
			DeliveryDate:  s.DeliveryDate.Format("2006-01-02"),
		}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "aianalyst: marshal suppliers")
	}

	temp := 0.3
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		System:      []anthropic.SystemBlock{{Text: analyzerSystemPrompt}},
		Messages:    []anthropic.Message{{Role: "user", Content: fmt.Sprintf(analyzerPromptTemplate, string(data))}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "aianalyst: analyze")
	}
	resp.Usage.LogCost(a.cfg.Model, "analyze")

	var result Result
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &result); err != nil {
		return nil, eris.Wrap(err, "aianalyst: parse analysis json")
	}
	if err := validateResult(&result); err != nil {
		return nil, err
	}

	zap.L().Info("aianalyst: analysis complete",
		zap.Int("suppliers", len(suppliers)),
		zap.Int("assessed", len(result.PerSupplier)),
	)
	return &result, nil
}

// validateResult rejects malformed model output so the caller can fall back
// to local scoring rather than persist garbage.
func validateResult(r *Result) error {
	if len(r.PerSupplier) == 0 {
		return eris.New("aianalyst: response contains no supplier assessments")
	}
	for _, sa := range r.PerSupplier {
		if sa.Name == "" {
			return eris.New("aianalyst: assessment missing supplier name")
		}
		if !sa.Category.Valid() {
			return eris.Errorf("aianalyst: invalid category %q for %s", string(sa.Category), sa.Name)
		}
		if sa.PerformanceScore < 0 || sa.PerformanceScore > 100 {
			return eris.Errorf("aianalyst: performance score %g out of range for %s", sa.PerformanceScore, sa.Name)
		}
	}
	return nil
}
