package aianalyst

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/supplier-cli/internal/config"
	"github.com/sells-group/supplier-cli/internal/model"
	"github.com/sells-group/supplier-cli/pkg/anthropic"
)

// stubClient returns a canned response for every CreateMessage call.
type stubClient struct {
	text string
	err  error
	last anthropic.MessageRequest
}

func (s *stubClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: s.text}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 50},
	}, nil
}

func testCfg() config.AnthropicConfig {
	return config.AnthropicConfig{Model: "claude-sonnet-4-5-20250929", MaxTokens: 2048}
}

func sampleSuppliers() []model.Supplier {
	return []model.Supplier{
		{Name: "Acme Corp", Product: "Widget", Quantity: 100, Quality: 8.5, DeliveryDelay: 5, Price: 150.50, DeliveryDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
}

const analysisJSON = `{
  "globalAnalysis": {"overallQuality": 8.5, "averageDeliveryDelay": 5, "priceCompetitiveness": 0.85, "totalSuppliers": 1},
  "supplierAnalysis": [
    {"name": "Acme Corp", "category": "GOOD", "performanceScore": 84, "strengths": ["reliable"], "weaknesses": [], "recommendations": ["negotiate pricing"]}
  ],
  "summary": "Solid panel overall."
}`

func TestAnalyze_ParsesResponse(t *testing.T) {
	t.Parallel()

	client := &stubClient{text: analysisJSON}
	a := NewClaudeAnalyzer(client, testCfg())

	result, err := a.Analyze(context.Background(), sampleSuppliers())
	require.NoError(t, err)
	assert.Equal(t, "Solid panel overall.", result.Summary)
	assert.Equal(t, 1, result.Global.TotalSuppliers)
	require.Len(t, result.PerSupplier, 1)
	assert.Equal(t, model.CategoryGood, result.PerSupplier[0].Category)
	assert.InDelta(t, 84, result.PerSupplier[0].PerformanceScore, 0.001)

	// The request carries the supplier payload and the system persona.
	require.Len(t, client.last.Messages, 1)
	assert.Contains(t, client.last.Messages[0].Content, "Acme Corp")
	require.Len(t, client.last.System, 1)
	require.NotNil(t, client.last.Temperature)
	assert.InDelta(t, 0.3, *client.last.Temperature, 0.001)
}

func TestAnalyze_StripsCodeFences(t *testing.T) {
	t.Parallel()

	client := &stubClient{text: "Here is the analysis:\n```json\n" + analysisJSON + "\n```\nLet me know if you need more."}
	a := NewClaudeAnalyzer(client, testCfg())

	result, err := a.Analyze(context.Background(), sampleSuppliers())
	require.NoError(t, err)
	assert.Equal(t, "Solid panel overall.", result.Summary)
}

func TestAnalyze_ClientError(t *testing.T) {
	t.Parallel()

	client := &stubClient{err: eris.New("api unavailable")}
	a := NewClaudeAnalyzer(client, testCfg())

	_, err := a.Analyze(context.Background(), sampleSuppliers())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analyze")
}

func TestAnalyze_MalformedJSON(t *testing.T) {
	t.Parallel()

	client := &stubClient{text: "I could not produce JSON, sorry."}
	a := NewClaudeAnalyzer(client, testCfg())

	_, err := a.Analyze(context.Background(), sampleSuppliers())
	assert.Error(t, err)
}

func TestAnalyze_RejectsBadModelOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"no assessments", `{"globalAnalysis": {}, "supplierAnalysis": [], "summary": "x"}`},
		{"missing name", `{"supplierAnalysis": [{"name": "", "category": "GOOD", "performanceScore": 50}], "summary": "x"}`},
		{"unknown category", `{"supplierAnalysis": [{"name": "Acme", "category": "SUPERB", "performanceScore": 50}], "summary": "x"}`},
		{"score out of range", `{"supplierAnalysis": [{"name": "Acme", "category": "GOOD", "performanceScore": 140}], "summary": "x"}`},
		{"negative score", `{"supplierAnalysis": [{"name": "Acme", "category": "GOOD", "performanceScore": -1}], "summary": "x"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := NewClaudeAnalyzer(&stubClient{text: tt.text}, testCfg())
			_, err := a.Analyze(context.Background(), sampleSuppliers())
			assert.Error(t, err)
		})
	}
}

func TestResult_ByName(t *testing.T) {
	t.Parallel()

	r := &Result{PerSupplier: []SupplierAssessment{
		{Name: "Acme Corp", PerformanceScore: 84},
		{Name: "Beta Ltd", PerformanceScore: 32},
	}}
	byName := r.ByName()
	assert.Len(t, byName, 2)
	assert.InDelta(t, 32, byName["Beta Ltd"].PerformanceScore, 0.001)
	_, ok := byName["Gamma"]
	assert.False(t, ok)
}
