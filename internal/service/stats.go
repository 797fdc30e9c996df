package service

import (
	"context"

	"helphop/internal/domain"
)

type statsService struct {
	repo StatsRepository
}

func NewStatsService(repo StatsRepository) StatsService {
	return &statsService{repo: repo}
}

func (s *statsService) GetStats(ctx context.Context, req domain.StatsRequest) (*domain.IncidentStats, error) {
	minutes := req.Minutes
	if minutes == 0 {
		minutes = 60
	}

	byStatus, err := s.repo.CountByStatus(ctx, minutes)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	return &domain.IncidentStats{
		ByStatus: byStatus,
		Total:    total,
		Minutes:  minutes,
	}, nil
}
