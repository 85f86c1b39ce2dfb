package dashboard

import (
	"context"
	"fmt"
	"log/slog"
)

// RepositoryAPI runs the read-only aggregate queries behind the dashboard.
type RepositoryAPI interface {
	// StatusCounts returns row counts grouped by status for one of the status-bearing tables.
	StatusCounts(ctx context.Context, table string) (map[string]int64, error)
	AverageMissionProgress(ctx context.Context) (float64, error)
	AverageEvaluationScore(ctx context.Context) (float64, error)
}

const (
	TableStagiaires  = "stagiaires"
	TableMissions    = "missions"
	TableEvaluations = "evaluations"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	stagiaires, err := s.counts(ctx, TableStagiaires)
	if err != nil {
		return nil, err
	}
	missions, err := s.counts(ctx, TableMissions)
	if err != nil {
		return nil, err
	}
	evaluations, err := s.counts(ctx, TableEvaluations)
	if err != nil {
		return nil, err
	}

	progress, err := s.repo.AverageMissionProgress(ctx)
	if err != nil {
		s.logger.Error("failed to compute mission progress", "error", err)
		return nil, fmt.Errorf("failed to compute mission progress: %w", err)
	}
	score, err := s.repo.AverageEvaluationScore(ctx)
	if err != nil {
		s.logger.Error("failed to compute evaluation score", "error", err)
		return nil, fmt.Errorf("failed to compute evaluation score: %w", err)
	}

	return &Stats{
		Stagiaires: StagiaireStats{
			Total:     sum(stagiaires),
			Active:    stagiaires["active"],
			Completed: stagiaires["completed"],
			Upcoming:  stagiaires["upcoming"],
		},
		Missions: MissionStats{
			Total:           sum(missions),
			NotStarted:      missions["not_started"],
			InProgress:      missions["in_progress"],
			Completed:       missions["completed"],
			AverageProgress: round2(progress),
		},
		Evaluations: EvaluationStats{
			Total:        sum(evaluations),
			Draft:        evaluations["draft"],
			Reviewed:     evaluations["reviewed"],
			AverageScore: round2(score),
		},
	}, nil
}

func (s *Service) counts(ctx context.Context, table string) (map[string]int64, error) {
	counts, err := s.repo.StatusCounts(ctx, table)
	if err != nil {
		s.logger.Error("failed to count rows by status", "table", table, "error", err)
		return nil, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return counts, nil
}

func sum(counts map[string]int64) int64 {
	var total int64
	for _, c := range counts {
		total += c
	}
	return total
}
