package store

import (
	"context"
	"database/sql"

	"github.com/uppath-hq/apiserver/types"
)

// Motivation levels strictly below this threshold are flagged.
const lowMotivationThreshold = 5

// DashboardRepository answers the read-only aggregate queries behind the
// individual and corporate dashboards. It never mutates state; every
// failure is returned as an ordinary error value for the caller to check.
type DashboardRepository struct {
	db *sql.DB
}

func NewDashboardRepository(db *sql.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// WellbeingHistory returns a user's well-being measurements ordered by
// record date ascending.
func (r *DashboardRepository) WellbeingHistory(ctx context.Context, userID int) ([]types.WellbeingEntry, error) {
	const query = `
		SELECT recorded_at, stress_level, motivation_level, sleep_quality
		FROM wellbeing_records
		WHERE user_id = $1
		ORDER BY recorded_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]types.WellbeingEntry, 0)
	for rows.Next() {
		var entry types.WellbeingEntry
		if err := rows.Scan(
			&entry.RecordedAt,
			&entry.StressLevel,
			&entry.MotivationLevel,
			&entry.SleepQuality,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// TrackProgress returns one row per track the user is enrolled in.
func (r *DashboardRepository) TrackProgress(ctx context.Context, userID int) ([]types.TrackProgress, error) {
	const query = `
		SELECT t.name, e.progress_pct, e.status
		FROM track_enrollments e
		JOIN tracks t ON e.track_id = t.id
		WHERE e.user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	progress := make([]types.TrackProgress, 0)
	for rows.Next() {
		var p types.TrackProgress
		if err := rows.Scan(&p.TrackName, &p.ProgressPct, &p.Status); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return progress, nil
}

// Recommendations returns the recommendations delivered to a user,
// newest first.
func (r *DashboardRepository) Recommendations(ctx context.Context, userID int) ([]types.Recommendation, error) {
	const query = `
		SELECT kind, reference_id, reason, recommended_at
		FROM recommendations
		WHERE user_id = $1
		ORDER BY recommended_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recommendations := make([]types.Recommendation, 0)
	for rows.Next() {
		var rec types.Recommendation
		if err := rows.Scan(&rec.Kind, &rec.ReferenceID, &rec.Reason, &rec.RecommendedAt); err != nil {
			return nil, err
		}
		recommendations = append(recommendations, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recommendations, nil
}

// CareerLevelDistribution groups a company's users by career level,
// largest bucket first.
func (r *DashboardRepository) CareerLevelDistribution(ctx context.Context, companyID int) ([]types.CareerLevelCount, error) {
	const query = `
		SELECT career_level, COUNT(*) AS total
		FROM users
		WHERE company_id = $1
		GROUP BY career_level
		ORDER BY total DESC`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]types.CareerLevelCount, 0)
	for rows.Next() {
		var count types.CareerLevelCount
		if err := rows.Scan(&count.CareerLevel, &count.Total); err != nil {
			return nil, err
		}
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// WellbeingAverages returns company-wide well-being averages rounded to
// two decimal places. HasRecords is false when the company has no
// well-being records at all.
func (r *DashboardRepository) WellbeingAverages(ctx context.Context, companyID int) (types.WellbeingAverages, error) {
	const query = `
		SELECT ROUND(AVG(w.stress_level), 2),
		       ROUND(AVG(w.motivation_level), 2),
		       ROUND(AVG(w.sleep_quality), 2)
		FROM wellbeing_records w
		JOIN users u ON u.id = w.user_id
		WHERE u.company_id = $1`
	var stress, motivation, sleep sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, query, companyID).Scan(&stress, &motivation, &sleep); err != nil {
		return types.WellbeingAverages{}, err
	}
	if !stress.Valid {
		return types.WellbeingAverages{}, nil
	}
	return types.WellbeingAverages{
		AvgStress:     stress.Float64,
		AvgMotivation: motivation.Float64,
		AvgSleep:      sleep.Float64,
		HasRecords:    true,
	}, nil
}

// TrackPopularity counts enrollments per track across a company's users,
// most used first.
func (r *DashboardRepository) TrackPopularity(ctx context.Context, companyID int) ([]types.TrackUsage, error) {
	const query = `
		SELECT t.name, COUNT(*) AS total_users
		FROM track_enrollments e
		JOIN users u ON e.user_id = u.id
		JOIN tracks t ON t.id = e.track_id
		WHERE u.company_id = $1
		GROUP BY t.name
		ORDER BY total_users DESC`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usage := make([]types.TrackUsage, 0)
	for rows.Next() {
		var u types.TrackUsage
		if err := rows.Scan(&u.TrackName, &u.TotalUsers); err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return usage, nil
}

// LowMotivationFlags returns every well-being record of the company's
// users whose motivation level fell strictly below the alert threshold,
// newest first.
func (r *DashboardRepository) LowMotivationFlags(ctx context.Context, companyID int) ([]types.LowMotivationFlag, error) {
	const query = `
		SELECT u.full_name, w.motivation_level, w.recorded_at
		FROM wellbeing_records w
		JOIN users u ON u.id = w.user_id
		WHERE u.company_id = $1
		  AND w.motivation_level < $2
		ORDER BY w.recorded_at DESC`
	rows, err := r.db.QueryContext(ctx, query, companyID, lowMotivationThreshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flags := make([]types.LowMotivationFlag, 0)
	for rows.Next() {
		var flag types.LowMotivationFlag
		if err := rows.Scan(&flag.FullName, &flag.MotivationLevel, &flag.RecordedAt); err != nil {
			return nil, err
		}
		flags = append(flags, flag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return flags, nil
}
