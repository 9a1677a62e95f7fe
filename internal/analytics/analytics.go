package analytics

import (
	"context"
	"fmt"

	"github.com/robopoint/salesops-manager/internal/dependency"
	"github.com/robopoint/salesops-manager/internal/entity"
)

// Service is the pipeline analytics engine. It owns no state beyond the
// repository handle; every computation is a burst of independent reads
// followed by synchronous aggregation.
type Service struct {
	repo dependency.Repository
}

func New(repo dependency.Repository) *Service {
	return &Service{repo: repo}
}

// ComputeOpportunityMargins resolves the margins of one opportunity's line
// items against a fresh price book snapshot.
func (s *Service) ComputeOpportunityMargins(ctx context.Context, uuid string) (*MarginReport, error) {
	opp, err := s.repo.Opportunities().GetOpportunityByUUID(ctx, uuid)
	if err != nil {
		return nil, fmt.Errorf("opportunity: %w", err)
	}
	items, err := s.repo.Opportunities().GetLineItems(ctx, opp.Id)
	if err != nil {
		return nil, fmt.Errorf("line items: %w", err)
	}
	pb, err := s.repo.Pricing().GetPriceBook(ctx)
	if err != nil {
		return nil, fmt.Errorf("price book: %w", err)
	}
	report := ComputeMargins(items, pb)
	return &report, nil
}

// ListOpportunities returns the opportunities created within the window,
// optionally restricted to open pipeline stages.
func (s *Service) ListOpportunities(ctx context.Context, window entity.TimeRange, openOnly bool) ([]entity.Opportunity, error) {
	if window.From.After(window.To) {
		return nil, entity.ErrInvalidRange
	}
	pred := dependency.Predicate{dependency.Between("created_at", window.From, window.To)}
	if openOnly {
		stages := make([]any, len(entity.OpenStages))
		for i, st := range entity.OpenStages {
			stages[i] = string(st)
		}
		pred = append(pred, dependency.In("stage", stages...))
	}
	opps, err := s.repo.Opportunities().ListOpportunities(ctx, pred, "created_at")
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	return opps, nil
}

// GoalWithProgress pairs a goal with its computed progress percentage.
// Progress is derived on read and never persisted.
type GoalWithProgress struct {
	Goal     entity.Goal
	Progress int
}

// ListGoalProgress returns the goals active at the store's current time with
// their clamped progress.
func (s *Service) ListGoalProgress(ctx context.Context) ([]GoalWithProgress, error) {
	goals, err := s.repo.Goals().ListGoals(ctx, s.repo.Now())
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	result := make([]GoalWithProgress, len(goals))
	for i, g := range goals {
		result[i] = GoalWithProgress{
			Goal:     g,
			Progress: GoalProgress(g.CurrentValue, g.TargetValue),
		}
	}
	return result, nil
}
