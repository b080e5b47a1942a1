package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/uppath-hq/apiserver/internal/mq"
	"github.com/uppath-hq/apiserver/types"
)

// AlertChannel is the broker channel low-motivation alerts are
// published to.
const AlertChannel = "wellbeing.low-motivation"

// LowMotivationAlert is the message payload published for one flagged
// well-being record.
type LowMotivationAlert struct {
	CompanyID       int       `json:"company_id"`
	CompanyName     string    `json:"company_name"`
	FullName        string    `json:"full_name"`
	MotivationLevel int       `json:"motivation_level"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// CompanyLister yields the companies to scan for alerts.
type CompanyLister interface {
	List(ctx context.Context) ([]types.Company, error)
}

// FlagSource answers the low-motivation query for one company.
type FlagSource interface {
	LowMotivationFlags(ctx context.Context, companyID int) ([]types.LowMotivationFlag, error)
}

// AlertPublisher scans every company's low-motivation flags and publishes
// one alert message per flagged record.
type AlertPublisher struct {
	companies CompanyLister
	dashboard FlagSource
	broker    *mq.MQ
	log       *slog.Logger
}

func NewAlertPublisher(companies CompanyLister, dashboard FlagSource, broker *mq.MQ, log *slog.Logger) *AlertPublisher {
	return &AlertPublisher{
		companies: companies,
		dashboard: dashboard,
		broker:    broker,
		log:       log,
	}
}

// PublishAll runs the low-motivation query for every company and
// publishes the flagged records. A failing company does not stop the
// scan; its error is logged and the rest proceed. It returns the number
// of alerts published.
func (p *AlertPublisher) PublishAll(ctx context.Context) (int, error) {
	companies, err := p.companies.List(ctx)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, company := range companies {
		flags, err := p.dashboard.LowMotivationFlags(ctx, company.ID)
		if err != nil {
			p.log.Error("low-motivation query failed", "company_id", company.ID, "error", err)
			continue
		}
		for _, flag := range flags {
			alert := LowMotivationAlert{
				CompanyID:       company.ID,
				CompanyName:     company.Name,
				FullName:        flag.FullName,
				MotivationLevel: flag.MotivationLevel,
				RecordedAt:      flag.RecordedAt,
			}
			data, err := json.Marshal(alert)
			if err != nil {
				return published, err
			}
			attrs := map[string]string{"company_id": strconv.Itoa(company.ID)}
			if _, err := p.broker.Publish(ctx, AlertChannel, data, attrs); err != nil {
				return published, err
			}
			published++
		}
	}

	p.log.Info("low-motivation alerts published", "count", published)
	return published, nil
}

// LogAlerts returns a broker handler that decodes low-motivation alerts
// and logs them. A payload that does not decode is returned as an error
// so the broker redelivers it instead of dropping it silently.
func LogAlerts(log *slog.Logger) mq.Handler {
	return func(ctx context.Context, msg mq.Message) error {
		var alert LowMotivationAlert
		if err := json.Unmarshal(msg.Data, &alert); err != nil {
			return err
		}
		log.Warn("low motivation reported",
			"company_id", alert.CompanyID,
			"company_name", alert.CompanyName,
			"full_name", alert.FullName,
			"motivation_level", alert.MotivationLevel,
			"recorded_at", alert.RecordedAt.Format("2006-01-02"),
		)
		return nil
	}
}
