package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/presensi-backend-go/internal/service/violation"
)

// MonthlyCalculator aggregates one month of violations into penalties.
type MonthlyCalculator interface {
	CalculateMonth(ctx context.Context, month string, employeeID *string) (violation.MonthResult, error)
}

// NewMonthlyViolationJob builds the monthly aggregation sweep. The job
// ticks hourly and gates itself to the first hour of the first day of the
// month in the company time zone, processing the month that just closed.
// Penalty issuance is idempotent, so repeated firings are harmless.
func NewMonthlyViolationJob(svc MonthlyCalculator, settingsProvider settings.Provider) Job {
	return Job{
		Name:     "violation-monthly-aggregation",
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			cfg, err := settingsProvider.GetCompanySettings(ctx)
			if err != nil {
				return fmt.Errorf("failed to get company settings: %w", err)
			}

			now := time.Now().In(cfg.Location())
			if now.Day() != 1 || now.Hour() != 0 {
				return nil
			}

			previousMonth := now.AddDate(0, -1, 0).Format("2006-01")
			result, err := svc.CalculateMonth(ctx, previousMonth, nil)
			if err != nil {
				return err
			}

			slog.Info("Monthly violation aggregation completed",
				"month", result.Month,
				"records_scanned", result.RecordsScanned,
				"employees_affected", result.EmployeesAffected,
				"penalties_issued", result.PenaltiesIssued)
			return nil
		},
	}
}
