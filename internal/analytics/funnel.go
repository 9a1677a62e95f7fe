package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/robopoint/salesops-manager/internal/entity"
)

// GetFunnel buckets the opportunities created within the window by pipeline
// stage. Stages with no opportunities still appear, zero-valued, in fixed
// funnel order. TotalPipeline covers open stages only; WinRate is 0 when no
// deals closed in the window.
func (s *Service) GetFunnel(ctx context.Context, window entity.TimeRange) (*entity.FunnelReport, error) {
	if window.From.After(window.To) {
		return nil, entity.ErrInvalidRange
	}
	byStage, err := s.repo.Metrics().FunnelByStage(ctx, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("funnel by stage: %w", err)
	}

	report := &entity.FunnelReport{
		Period:        window,
		Stages:        make([]entity.FunnelStage, 0, len(entity.PipelineStages)),
		TotalPipeline: decimal.Zero,
	}
	for _, stage := range entity.PipelineStages {
		fs, ok := byStage[stage]
		if !ok {
			fs = entity.FunnelStage{Stage: stage, Value: decimal.Zero}
		}
		report.Stages = append(report.Stages, fs)
	}
	for _, stage := range entity.OpenStages {
		if fs, ok := byStage[stage]; ok {
			report.TotalPipeline = report.TotalPipeline.Add(fs.Value)
		}
	}

	won := byStage[entity.StageClosedWon].Count
	lost := byStage[entity.StageClosedLost].Count
	if won+lost > 0 {
		report.WinRate = decimal.NewFromInt(int64(won)).
			Div(decimal.NewFromInt(int64(won + lost))).
			Mul(hundred)
	}
	return report, nil
}
