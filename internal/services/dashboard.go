package services

import (
	"context"

	"github.com/uppath-hq/apiserver/types"
)

// DashboardRepository defines the read-only aggregate queries.
type DashboardRepository interface {
	WellbeingHistory(ctx context.Context, userID int) ([]types.WellbeingEntry, error)
	TrackProgress(ctx context.Context, userID int) ([]types.TrackProgress, error)
	Recommendations(ctx context.Context, userID int) ([]types.Recommendation, error)
	CareerLevelDistribution(ctx context.Context, companyID int) ([]types.CareerLevelCount, error)
	WellbeingAverages(ctx context.Context, companyID int) (types.WellbeingAverages, error)
	TrackPopularity(ctx context.Context, companyID int) ([]types.TrackUsage, error)
	LowMotivationFlags(ctx context.Context, companyID int) ([]types.LowMotivationFlag, error)
}

// DashboardService encapsulates dashboard use-cases.
type DashboardService struct {
	repo DashboardRepository
}

func NewDashboardService(repo DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

func (s *DashboardService) WellbeingHistory(ctx context.Context, userID int) ([]types.WellbeingEntry, error) {
	return s.repo.WellbeingHistory(ctx, userID)
}

func (s *DashboardService) TrackProgress(ctx context.Context, userID int) ([]types.TrackProgress, error) {
	return s.repo.TrackProgress(ctx, userID)
}

func (s *DashboardService) Recommendations(ctx context.Context, userID int) ([]types.Recommendation, error) {
	return s.repo.Recommendations(ctx, userID)
}

func (s *DashboardService) CareerLevelDistribution(ctx context.Context, companyID int) ([]types.CareerLevelCount, error) {
	return s.repo.CareerLevelDistribution(ctx, companyID)
}

func (s *DashboardService) WellbeingAverages(ctx context.Context, companyID int) (types.WellbeingAverages, error) {
	return s.repo.WellbeingAverages(ctx, companyID)
}

func (s *DashboardService) TrackPopularity(ctx context.Context, companyID int) ([]types.TrackUsage, error) {
	return s.repo.TrackPopularity(ctx, companyID)
}

func (s *DashboardService) LowMotivationFlags(ctx context.Context, companyID int) ([]types.LowMotivationFlag, error) {
	return s.repo.LowMotivationFlags(ctx, companyID)
}
