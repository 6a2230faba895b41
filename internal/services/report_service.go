package services

import (
	"context"
	"fmt"
	"time"

	"github.com/joshua-takyi/tripbay/internal/models"
)

// ReportService backs the admin dashboard with aggregates over the booking
// event log.
type ReportService struct {
	reportRepo models.ReportRepo
}

func NewReportService(reportRepo models.ReportRepo) *ReportService {
	return &ReportService{reportRepo: reportRepo}
}

type ReportSummary struct {
	Totals []models.StatusTotal      `json:"totals"`
	Daily  []models.DailyBookingStat `json:"daily"`
	From   time.Time                 `json:"from"`
	To     time.Time                 `json:"to"`
}

// Summary covers the trailing N days, defaulting to 30.
func (rs *ReportService) Summary(ctx context.Context, days int) (*ReportSummary, error) {
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		return nil, fmt.Errorf("report range too large")
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)

	daily, err := rs.reportRepo.DailySummary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	totals, err := rs.reportRepo.TotalsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &ReportSummary{
		Totals: totals,
		Daily:  daily,
		From:   from,
		To:     to,
	}, nil
}
