package aianalyst

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/supplier-cli/internal/config"
	"github.com/sells-group/supplier-cli/pkg/anthropic"
)

// GeneratedMessage is one drafted communication.
type GeneratedMessage struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MessageSet holds the three audience-specific messages produced per run.
type MessageSet struct {
	Supplier   GeneratedMessage `json:"supplierMessage"`
	Buyer      GeneratedMessage `json:"buyerMessage"`
	Management GeneratedMessage `json:"managementMessage"`
}

// MessageGenerator drafts outbound messages from a finished analysis.
// It can fail independently of the Analyzer; callers treat that as a
// partial-result condition, not a run failure.
type MessageGenerator interface {
	Generate(ctx context.Context, result *Result, analysisTitle string) (*MessageSet, error)
}

const generatorSystemPrompt = `You are an expert in professional business communication. Write clear, constructive messages adapted to each recipient. Respond with JSON only.`

const generatorPromptTemplate = `Draft personalized messages for the analysis %q based on this supplier assessment:

%s

Produce 3 messages:
1. For the suppliers (encouragement, feedback, improvement requests)
2. For the buyers (performance summary, recommendations)
3. For management (strategic synthesis, actions to take)

Respond with exactly this JSON structure:
{
  "supplierMessage": {"subject": "string", "body": "string"},
  "buyerMessage": {"subject": "string", "body": "string"},
  "managementMessage": {"subject": "string", "body": "string"}
}`

// ClaudeGenerator implements MessageGenerator with a single Claude call.
type ClaudeGenerator struct {
	client anthropic.Client
	cfg    config.AnthropicConfig
}

// NewClaudeGenerator creates a MessageGenerator backed by the given client.
func NewClaudeGenerator(client anthropic.Client, cfg config.AnthropicConfig) *ClaudeGenerator {
	return &ClaudeGenerator{client: client, cfg: cfg}
}

func (g *ClaudeGenerator) Generate(ctx context.Context, result *Result, analysisTitle string) (*MessageSet, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "aianalyst: marshal analysis result")
	}

	temp := 0.4
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		System:      []anthropic.SystemBlock{{Text: generatorSystemPrompt}},
		Messages:    []anthropic.Message{{Role: "user", Content: fmt.Sprintf(generatorPromptTemplate, analysisTitle, string(data))}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "aianalyst: generate messages")
	}
	resp.Usage.LogCost(g.cfg.Model, "generate_messages")

	var set MessageSet
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &set); err != nil {
		return nil, eris.Wrap(err, "aianalyst: parse message json")
	}
	for _, m := range []GeneratedMessage{set.Supplier, set.Buyer, set.Management} {
		if m.Subject == "" || m.Body == "" {
			return nil, eris.New("aianalyst: generated message missing subject or body")
		}
	}
	return &set, nil
}
