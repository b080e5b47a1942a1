package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/uppath-hq/apiserver/internal/storage"
	"github.com/uppath-hq/apiserver/internal/validate"
	"github.com/uppath-hq/apiserver/types"
)

const (
	reportContentType     = "application/json"
	reportTimestampLayout = "20060102T150405"

	reportScopeCompanies = "companies"
	reportScopeUsers     = "users"
)

// Archived report object names are the export timestamp plus .json.
var reportNamePattern = regexp.MustCompile(`^[0-9]{8}T[0-9]{6}\.json$`)

// CompanyReport is a point-in-time JSON snapshot of a company's
// dashboard, as archived to object storage.
type CompanyReport struct {
	CompanyID     int                       `json:"company_id"`
	GeneratedAt   time.Time                 `json:"generated_at"`
	CareerLevels  []types.CareerLevelCount  `json:"career_levels"`
	Wellbeing     types.WellbeingAverages   `json:"wellbeing"`
	TrackUsage    []types.TrackUsage        `json:"track_usage"`
	LowMotivation []types.LowMotivationFlag `json:"low_motivation"`
}

// UserReport is a point-in-time JSON snapshot of a user's dashboard.
type UserReport struct {
	UserID           int                    `json:"user_id"`
	GeneratedAt      time.Time              `json:"generated_at"`
	WellbeingHistory []types.WellbeingEntry `json:"wellbeing_history"`
	TrackProgress    []types.TrackProgress  `json:"track_progress"`
	Recommendations  []types.Recommendation `json:"recommendations"`
}

// ReportService assembles dashboard snapshots, archives them as JSON
// objects in the configured bucket, and serves archived snapshots back.
type ReportService struct {
	dashboard DashboardRepository
	archive   *storage.Storage
}

func NewReportService(dashboard DashboardRepository, archive *storage.Storage) *ReportService {
	return &ReportService{dashboard: dashboard, archive: archive}
}

// ExportCompanyReport runs the four corporate dashboard queries, bundles
// the results into one JSON object and uploads it. It returns the object
// key of the archived report.
func (s *ReportService) ExportCompanyReport(ctx context.Context, companyID int) (string, error) {
	careerLevels, err := s.dashboard.CareerLevelDistribution(ctx, companyID)
	if err != nil {
		return "", err
	}
	wellbeing, err := s.dashboard.WellbeingAverages(ctx, companyID)
	if err != nil {
		return "", err
	}
	trackUsage, err := s.dashboard.TrackPopularity(ctx, companyID)
	if err != nil {
		return "", err
	}
	lowMotivation, err := s.dashboard.LowMotivationFlags(ctx, companyID)
	if err != nil {
		return "", err
	}

	report := CompanyReport{
		CompanyID:     companyID,
		GeneratedAt:   time.Now().UTC(),
		CareerLevels:  careerLevels,
		Wellbeing:     wellbeing,
		TrackUsage:    trackUsage,
		LowMotivation: lowMotivation,
	}
	key, err := reportKey(reportScopeCompanies, companyID, report.GeneratedAt.Format(reportTimestampLayout)+".json")
	if err != nil {
		return "", err
	}
	if err := s.upload(ctx, key, report); err != nil {
		return "", err
	}
	return key, nil
}

// ExportUserReport runs the three individual dashboard queries, bundles
// the results into one JSON object and uploads it. It returns the object
// key of the archived report.
func (s *ReportService) ExportUserReport(ctx context.Context, userID int) (string, error) {
	history, err := s.dashboard.WellbeingHistory(ctx, userID)
	if err != nil {
		return "", err
	}
	progress, err := s.dashboard.TrackProgress(ctx, userID)
	if err != nil {
		return "", err
	}
	recommendations, err := s.dashboard.Recommendations(ctx, userID)
	if err != nil {
		return "", err
	}

	report := UserReport{
		UserID:           userID,
		GeneratedAt:      time.Now().UTC(),
		WellbeingHistory: history,
		TrackProgress:    progress,
		Recommendations:  recommendations,
	}
	key, err := reportKey(reportScopeUsers, userID, report.GeneratedAt.Format(reportTimestampLayout)+".json")
	if err != nil {
		return "", err
	}
	if err := s.upload(ctx, key, report); err != nil {
		return "", err
	}
	return key, nil
}

// FetchCompanyReport opens an archived company report by its object
// name. The caller owns the returned reader.
func (s *ReportService) FetchCompanyReport(ctx context.Context, companyID int, name string) (io.ReadCloser, error) {
	key, err := reportKey(reportScopeCompanies, companyID, name)
	if err != nil {
		return nil, err
	}
	return s.archive.Get(ctx, key)
}

// FetchUserReport opens an archived user report by its object name.
func (s *ReportService) FetchUserReport(ctx context.Context, userID int, name string) (io.ReadCloser, error) {
	key, err := reportKey(reportScopeUsers, userID, name)
	if err != nil {
		return nil, err
	}
	return s.archive.Get(ctx, key)
}

// RemoveCompanyReport deletes an archived company report.
func (s *ReportService) RemoveCompanyReport(ctx context.Context, companyID int, name string) error {
	key, err := reportKey(reportScopeCompanies, companyID, name)
	if err != nil {
		return err
	}
	return s.archive.Delete(ctx, key)
}

// RemoveUserReport deletes an archived user report.
func (s *ReportService) RemoveUserReport(ctx context.Context, userID int, name string) error {
	key, err := reportKey(reportScopeUsers, userID, name)
	if err != nil {
		return err
	}
	return s.archive.Delete(ctx, key)
}

func (s *ReportService) upload(ctx context.Context, key string, report any) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return s.archive.Put(ctx, key, bytes.NewReader(data), int64(len(data)), reportContentType)
}

// reportKey builds the object key for one archived report. The name is
// checked against the generated pattern so a caller-supplied value can
// never address objects outside the entity's prefix.
func reportKey(scope string, id int, name string) (string, error) {
	if !reportNamePattern.MatchString(name) {
		return "", &validate.Error{Field: "report", Message: "invalid report name"}
	}
	return fmt.Sprintf("reports/%s/%d/%s", scope, id, name), nil
}
