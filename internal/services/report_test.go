package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uppath-hq/apiserver/internal/storage"
	"github.com/uppath-hq/apiserver/internal/validate"
	"github.com/uppath-hq/apiserver/types"
)

type fakeDashboard struct {
	flags []types.LowMotivationFlag
	err   error
}

func (f *fakeDashboard) WellbeingHistory(context.Context, int) ([]types.WellbeingEntry, error) {
	return []types.WellbeingEntry{{StressLevel: 7, MotivationLevel: 4, SleepQuality: 5}}, f.err
}

func (f *fakeDashboard) TrackProgress(context.Context, int) ([]types.TrackProgress, error) {
	return []types.TrackProgress{{TrackName: "Liderança", ProgressPct: 40, Status: "in_progress"}}, f.err
}

func (f *fakeDashboard) Recommendations(context.Context, int) ([]types.Recommendation, error) {
	return []types.Recommendation{{Kind: types.RecommendationKindCourse, ReferenceID: 3}}, f.err
}

func (f *fakeDashboard) CareerLevelDistribution(context.Context, int) ([]types.CareerLevelCount, error) {
	return []types.CareerLevelCount{{CareerLevel: "Pleno", Total: 12}}, f.err
}

func (f *fakeDashboard) WellbeingAverages(context.Context, int) (types.WellbeingAverages, error) {
	return types.WellbeingAverages{AvgStress: 6.25, AvgMotivation: 4.5, AvgSleep: 7, HasRecords: true}, f.err
}

func (f *fakeDashboard) TrackPopularity(context.Context, int) ([]types.TrackUsage, error) {
	return []types.TrackUsage{{TrackName: "Liderança", TotalUsers: 9}}, f.err
}

func (f *fakeDashboard) LowMotivationFlags(context.Context, int) ([]types.LowMotivationFlag, error) {
	return f.flags, f.err
}

type fakeArchiveObject struct {
	key         string
	data        []byte
	contentType string
}

type fakeArchive struct {
	objects    []fakeArchiveObject
	deleted    []string
	fetched    []string
	putErr     error
	getPayload string
}

func (f *fakeArchive) EnsureBucket(context.Context) error { return nil }

func (f *fakeArchive) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects = append(f.objects, fakeArchiveObject{key: key, data: data, contentType: contentType})
	return nil
}

func (f *fakeArchive) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f.fetched = append(f.fetched, key)
	return io.NopCloser(strings.NewReader(f.getPayload)), nil
}

func (f *fakeArchive) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeArchive) Bucket() string { return "uppath-reports" }

func TestExportCompanyReport(t *testing.T) {
	archive := &fakeArchive{}
	svc := NewReportService(&fakeDashboard{}, storage.NewStorage(archive))

	key, err := svc.ExportCompanyReport(context.Background(), 7)
	require.NoError(t, err)
	assert.Regexp(t, `^reports/companies/7/[0-9]{8}T[0-9]{6}\.json$`, key)
	require.Len(t, archive.objects, 1)

	stored := archive.objects[0]
	assert.Equal(t, key, stored.key)
	assert.Equal(t, "application/json", stored.contentType)

	var report CompanyReport
	require.NoError(t, json.Unmarshal(stored.data, &report))
	assert.Equal(t, 7, report.CompanyID)
	assert.True(t, report.Wellbeing.HasRecords)
	require.Len(t, report.CareerLevels, 1)
	assert.Equal(t, "Pleno", report.CareerLevels[0].CareerLevel)
}

func TestExportUserReport(t *testing.T) {
	archive := &fakeArchive{}
	svc := NewReportService(&fakeDashboard{}, storage.NewStorage(archive))

	key, err := svc.ExportUserReport(context.Background(), 3)
	require.NoError(t, err)
	assert.Regexp(t, `^reports/users/3/[0-9]{8}T[0-9]{6}\.json$`, key)
	require.Len(t, archive.objects, 1)

	var report UserReport
	require.NoError(t, json.Unmarshal(archive.objects[0].data, &report))
	assert.Equal(t, 3, report.UserID)
	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, types.RecommendationKindCourse, report.Recommendations[0].Kind)
}

func TestExportCompanyReportQueryError(t *testing.T) {
	archive := &fakeArchive{}
	svc := NewReportService(&fakeDashboard{err: errors.New("db down")}, storage.NewStorage(archive))

	_, err := svc.ExportCompanyReport(context.Background(), 7)
	assert.Error(t, err)
	// Nothing may be uploaded when any query fails.
	assert.Empty(t, archive.objects)
}

func TestExportUserReportUploadError(t *testing.T) {
	archive := &fakeArchive{putErr: errors.New("bucket gone")}
	svc := NewReportService(&fakeDashboard{}, storage.NewStorage(archive))

	_, err := svc.ExportUserReport(context.Background(), 3)
	assert.Error(t, err)
}

func TestFetchCompanyReport(t *testing.T) {
	archive := &fakeArchive{getPayload: `{"company_id":7}`}
	svc := NewReportService(&fakeDashboard{}, storage.NewStorage(archive))

	body, err := svc.FetchCompanyReport(context.Background(), 7, "20260310T120000.json")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"company_id":7}`, string(data))
	assert.Equal(t, []string{"reports/companies/7/20260310T120000.json"}, archive.fetched)
}

func TestRemoveUserReport(t *testing.T) {
	archive := &fakeArchive{}
	svc := NewReportService(&fakeDashboard{}, storage.NewStorage(archive))

	require.NoError(t, svc.RemoveUserReport(context.Background(), 3, "20260310T120000.json"))
	assert.Equal(t, []string{"reports/users/3/20260310T120000.json"}, archive.deleted)
}

func TestReportNameRejected(t *testing.T) {
	archive := &fakeArchive{}
	svc := NewReportService(&fakeDashboard{}, storage.NewStorage(archive))

	names := []string{"", "notes.txt", "../../secrets.json", "20260310T120000.json.bak"}
	for _, name := range names {
		_, err := svc.FetchUserReport(context.Background(), 3, name)
		var vErr *validate.Error
		require.ErrorAs(t, err, &vErr, "name %q", name)
		assert.Equal(t, "report", vErr.Field)
	}
	assert.Empty(t, archive.fetched)
}
