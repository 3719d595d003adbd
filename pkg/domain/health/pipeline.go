// Package health turns a snapshot of tracker records into a scored health assessment.
package health

import (
	"github.com/felixgeelhaar/vitals/pkg/domain/team"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
)

// AnalysisResult is the complete assessment returned to callers.
type AnalysisResult struct {
	Summary         Summary               `json:"summary"`
	Metrics         DetailedHealthMetrics `json:"metrics"`
	Risks           []RiskAssessment      `json:"risks"`
	Insights        Insights              `json:"insights"`
	Recommendations Recommendations       `json:"recommendations"`
	Trends          Trends                `json:"trends"`
}

// Pipeline sequences metrics, risks, insights, recommendations, trends, and summary.
// It is a pure function of its inputs and safe for concurrent use.
type Pipeline struct {
	cfg         Config
	engine      *Engine
	assessor    *RiskAssessor
	categorizer *Categorizer
}

// NewPipeline validates cfg and builds the stages.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:         cfg,
		engine:      NewEngine(cfg),
		assessor:    NewRiskAssessor(cfg),
		categorizer: NewCategorizer(cfg),
	}, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Run computes metrics for the snapshot and evaluates them.
func (p *Pipeline) Run(records []tracker.Record, members team.Roster, tf Timeframe) (*AnalysisResult, error) {
	metrics, err := p.engine.CalculateHealthScore(records, members, tf)
	if err != nil {
		return nil, err
	}
	return p.Evaluate(metrics), nil
}

// Evaluate derives everything downstream of the metrics engine.
func (p *Pipeline) Evaluate(metrics DetailedHealthMetrics) *AnalysisResult {
	risks := p.assessor.AnalyzeRisks(metrics)
	return &AnalysisResult{
		Summary:         CreateSummary(metrics, p.cfg.GradeBands),
		Metrics:         metrics,
		Risks:           risks,
		Insights:        GenerateInsights(metrics, risks, p.cfg.Thresholds),
		Recommendations: p.categorizer.CategorizeRecommendations(metrics.Recommendations, risks),
		Trends:          AnalyzeTrends(metrics, p.cfg.Thresholds),
	}
}
