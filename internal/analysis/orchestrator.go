// Package analysis drives a full supplier-performance run: AI assessment
// with a deterministic local fallback, concurrent score persistence, and
// message generation.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/supplier-cli/internal/aianalyst"
	"github.com/sells-group/supplier-cli/internal/config"
	"github.com/sells-group/supplier-cli/internal/model"
	"github.com/sells-group/supplier-cli/internal/scorer"
	"github.com/sells-group/supplier-cli/internal/store"
)

var (
	// ErrNoSuppliers means the analysis has no supplier records to score.
	ErrNoSuppliers = eris.New("analysis: no suppliers to analyze")
	// ErrNoValidData means every record failed the pre-run sanity check.
	ErrNoValidData = eris.New("analysis: no valid supplier data")
)

// fallbackDescription is the analysis description recorded when the AI is
// unavailable and local scoring is used instead.
const fallbackDescription = "Basic analysis performed (AI unavailable)"

// RunResult is the outcome of one orchestrated run.
type RunResult struct {
	Suppliers        []model.Supplier `json:"suppliers"`
	Messages         []model.Message  `json:"messages,omitempty"`
	SuppliersUpdated int              `json:"suppliers_updated"`
	MessagesCreated  int              `json:"messages_created"`
	Fallback         bool             `json:"fallback"`

	// MessageErr records a message-generation failure that did not fail
	// the run. Scores are committed either way.
	MessageErr error `json:"-"`
}

// Orchestrator runs the analysis state machine over a Store.
type Orchestrator struct {
	store     store.Store
	analyzer  aianalyst.Analyzer
	generator aianalyst.MessageGenerator
	weights   scorer.Weights
	cfg       config.AnalysisConfig
}

// NewOrchestrator wires the orchestrator. A nil analyzer or generator
// disables that collaborator; runs then use local scoring only.
func NewOrchestrator(st store.Store, analyzer aianalyst.Analyzer, generator aianalyst.MessageGenerator, weights scorer.Weights, cfg config.AnalysisConfig) *Orchestrator {
	if cfg.AITimeoutSecs <= 0 {
		cfg.AITimeoutSecs = 60
	}
	if cfg.UpdateConcurrency <= 0 {
		cfg.UpdateConcurrency = 5
	}
	return &Orchestrator{
		store:     st,
		analyzer:  analyzer,
		generator: generator,
		weights:   weights,
		cfg:       cfg,
	}
}

// Run executes a full analysis for one stored batch. Re-running a finished
// analysis overwrites the previous scores.
func (o *Orchestrator) Run(ctx context.Context, ownerID, analysisID string) (*RunResult, error) {
	log := zap.L().With(zap.String("analysis_id", analysisID))

	analysis, err := o.store.GetAnalysis(ctx, ownerID, analysisID)
	if err != nil {
		return nil, err
	}

	suppliers, err := o.store.ListSuppliers(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if len(suppliers) == 0 {
		return nil, ErrNoSuppliers
	}

	valid := validRecords(suppliers)
	if len(valid) == 0 {
		return nil, ErrNoValidData
	}
	if skipped := len(suppliers) - len(valid); skipped > 0 {
		log.Warn("skipping invalid supplier records", zap.Int("skipped", skipped))
	}

	if err := o.store.UpdateAnalysisStatus(ctx, analysisID, model.AnalysisStatusProcessing); err != nil {
		return nil, err
	}

	result, aiErr := o.analyze(ctx, valid)
	fallback := aiErr != nil
	if fallback {
		log.Warn("ai analysis failed, falling back to local scoring", zap.Error(aiErr))
		if err := o.store.UpdateAnalysisStatus(ctx, analysisID, model.AnalysisStatusFailed); err != nil {
			return nil, err
		}
		result = o.localResult(valid)
	}

	scored := o.applyResult(valid, result)
	if err := o.persistScores(ctx, scored); err != nil {
		if statusErr := o.store.UpdateAnalysisStatus(ctx, analysisID, model.AnalysisStatusFailed); statusErr != nil {
			log.Error("failed to mark analysis failed", zap.Error(statusErr))
		}
		if fallback {
			// Scores could not be committed even locally; report the
			// original AI failure as the cause of the run failing.
			log.Error("fallback persistence failed", zap.Error(err))
			return nil, aiErr
		}
		return nil, err
	}

	description := result.Summary
	if fallback {
		description = fallbackDescription
	}
	if err := o.store.UpdateAnalysisOutcome(ctx, analysisID, model.AnalysisStatusCompleted, description, fallback); err != nil {
		return nil, err
	}

	out := &RunResult{
		Suppliers:        scored,
		SuppliersUpdated: len(scored),
		Fallback:         fallback,
	}

	messages, msgErr := o.generateMessages(ctx, analysisID, result, analysis.Title)
	if msgErr != nil {
		log.Warn("message generation failed, run result is partial", zap.Error(msgErr))
		out.MessageErr = msgErr
	}
	out.Messages = messages
	out.MessagesCreated = len(messages)

	log.Info("analysis run complete",
		zap.Int("suppliers_updated", out.SuppliersUpdated),
		zap.Int("messages_created", out.MessagesCreated),
		zap.Bool("fallback", fallback),
	)
	return out, nil
}

// analyze runs the single timeout-bounded AI attempt.
func (o *Orchestrator) analyze(ctx context.Context, suppliers []model.Supplier) (*aianalyst.Result, error) {
	if o.analyzer == nil {
		return nil, eris.New("analysis: no analyzer configured")
	}
	aiCtx, cancel := context.WithTimeout(ctx, time.Duration(o.cfg.AITimeoutSecs)*time.Second)
	defer cancel()
	return o.analyzer.Analyze(aiCtx, suppliers)
}

// applyResult merges AI assessments into the supplier records by exact
// name. Records the model skipped fall back to the local scorer so no
// supplier is left unscored after a run.
func (o *Orchestrator) applyResult(suppliers []model.Supplier, result *aianalyst.Result) []model.Supplier {
	byName := result.ByName()
	out := make([]model.Supplier, len(suppliers))
	for i, sup := range suppliers {
		var perf float64
		var cat model.Category
		if sa, ok := byName[sup.Name]; ok {
			perf = sa.PerformanceScore
			cat = sa.Category
		} else {
			score := scorer.ScoreWith(o.weights, sup)
			perf = float64(score)
			cat = scorer.Categorize(score)
		}
		sup.Performance = &perf
		sup.Category = &cat
		out[i] = sup
	}
	return out
}

// localResult scores everything deterministically and synthesizes the
// basic batch summary used when the AI is unavailable.
func (o *Orchestrator) localResult(suppliers []model.Supplier) *aianalyst.Result {
	assessments := make([]aianalyst.SupplierAssessment, len(suppliers))
	categoryCounts := make(map[model.Category]int)
	var qualitySum, delaySum, priceScoreSum float64

	for i, sup := range suppliers {
		score := scorer.ScoreWith(o.weights, sup)
		cat := scorer.Categorize(score)
		categoryCounts[cat]++
		qualitySum += sup.Quality
		delaySum += float64(sup.DeliveryDelay)
		priceScoreSum += 1 - sup.Price/o.weights.PriceCeiling

		assessments[i] = aianalyst.SupplierAssessment{
			Name:             sup.Name,
			Category:         cat,
			PerformanceScore: float64(score),
		}
	}

	n := float64(len(suppliers))
	return &aianalyst.Result{
		Global: aianalyst.GlobalAnalysis{
			OverallQuality:       qualitySum / n,
			AverageDeliveryDelay: delaySum / n,
			PriceCompetitiveness: priceScoreSum / n,
			TotalSuppliers:       len(suppliers),
		},
		PerSupplier: assessments,
		Summary:     basicSummary(len(suppliers), qualitySum/n, delaySum/n, categoryCounts),
	}
}

func basicSummary(count int, avgQuality, avgDelay float64, categories map[model.Category]int) string {
	parts := make([]string, 0, len(categories))
	for cat, n := range categories {
		parts = append(parts, fmt.Sprintf("%s: %d", string(cat), n))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%d suppliers analyzed. Average quality %.1f/10, average delivery delay %.1f days. Categories: %s.",
		count, avgQuality, avgDelay, strings.Join(parts, ", "))
}

// persistScores writes all per-supplier updates concurrently. Every update
// must land before message generation begins.
func (o *Orchestrator) persistScores(ctx context.Context, suppliers []model.Supplier) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.UpdateConcurrency)

	for _, sup := range suppliers {
		sup := sup
		g.Go(func() error {
			if err := o.store.UpdateSupplierScore(gctx, sup.ID, *sup.Performance, *sup.Category); err != nil {
				return eris.Wrapf(err, "analysis: update supplier %s", sup.Name)
			}
			return nil
		})
	}
	return g.Wait()
}

// generateMessages drafts and persists the three audience messages. Any
// failure here is reported to the caller but never fails the run.
func (o *Orchestrator) generateMessages(ctx context.Context, analysisID string, result *aianalyst.Result, title string) ([]model.Message, error) {
	if o.generator == nil {
		return nil, nil
	}

	genCtx, cancel := context.WithTimeout(ctx, time.Duration(o.cfg.AITimeoutSecs)*time.Second)
	defer cancel()

	set, err := o.generator.Generate(genCtx, result, title)
	if err != nil {
		return nil, err
	}

	drafts := []struct {
		typ model.MessageType
		msg aianalyst.GeneratedMessage
	}{
		{model.MessageTypeSupplier, set.Supplier},
		{model.MessageTypeBuyer, set.Buyer},
		{model.MessageTypeManagement, set.Management},
	}

	var messages []model.Message
	for _, d := range drafts {
		created, err := o.store.CreateMessage(ctx, &model.Message{
			AnalysisID: analysisID,
			Type:       d.typ,
			Subject:    d.msg.Subject,
			Body:       d.msg.Body,
			Recipient:  d.typ.Recipient(),
		})
		if err != nil {
			return messages, eris.Wrapf(err, "analysis: persist %s message", string(d.typ))
		}
		messages = append(messages, *created)
	}
	return messages, nil
}

// validRecords re-applies the import-time range rules on typed records.
// Bad rows normally never reach the store, so anything filtered here is a
// defect upstream, not expected input.
func validRecords(suppliers []model.Supplier) []model.Supplier {
	valid := make([]model.Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if s.Name == "" || s.Quantity <= 0 || s.Quality < 0 || s.Quality > 10 ||
			s.DeliveryDelay < 0 || s.Price <= 0 {
			continue
		}
		valid = append(valid, s)
	}
	return valid
}
