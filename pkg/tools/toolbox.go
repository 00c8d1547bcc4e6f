package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/richard-senior/knockouts/internal/logger"
	"github.com/richard-senior/knockouts/pkg/dixoncoles"
	"github.com/richard-senior/knockouts/pkg/posterior"
	"github.com/richard-senior/knockouts/pkg/protocol"
)

// Entry pairs a tool definition with its handler
type Entry struct {
	Tool    protocol.Tool
	Handler Handler
}

// Toolbox holds what the prediction tools share: one predictor and the
// posterior the team ratings come from. The posterior is loaded on first use.
type Toolbox struct {
	predictor *dixoncoles.Predictor
	source    posterior.Source

	mu      sync.Mutex
	adapter *posterior.Adapter
}

// NewToolbox creates a Toolbox. source may be nil, in which case only the
// tools that take explicit rates work.
func NewToolbox(predictor *dixoncoles.Predictor, source posterior.Source) *Toolbox {
	return &Toolbox{predictor: predictor, source: source}
}

// Entries returns every tool the Toolbox provides
func (b *Toolbox) Entries() []Entry {
	return []Entry{
		{Tool: PMFTool(), Handler: HandlePMF},
		{Tool: ScoreMatrixTool(), Handler: b.HandleScoreMatrix},
		{Tool: PredictMatchTool(), Handler: b.HandlePredictMatch},
		{Tool: TeamStrengthTool(), Handler: b.HandleTeamStrength},
	}
}

// Adapter loads the posterior on first call and returns the cached adapter after
func (b *Toolbox) Adapter(ctx context.Context) (*posterior.Adapter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.adapter != nil {
		return b.adapter, nil
	}
	if b.source == nil {
		return nil, fmt.Errorf("no posterior samples configured")
	}

	logger.Info("Loading posterior samples from", b.source.Name())
	samples, err := b.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	adapter, err := posterior.NewAdapter(samples)
	if err != nil {
		return nil, err
	}
	b.adapter = adapter
	return adapter, nil
}
