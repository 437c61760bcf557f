package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/settings"
)

// DailyFinalizer finalizes one calendar day of attendance.
type DailyFinalizer interface {
	FinalizeDay(ctx context.Context, date time.Time) (attendance.FinalizeResult, error)
}

// NewDailyFinalizationJob builds the end-of-day sweep. The job ticks hourly
// and gates itself to the first hour after midnight in the company time
// zone, finalizing the day that just ended. Idempotence of FinalizeDay
// makes repeated firings within the hour harmless.
func NewDailyFinalizationJob(svc DailyFinalizer, settingsProvider settings.Provider) Job {
	return Job{
		Name:     "attendance-daily-finalization",
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			cfg, err := settingsProvider.GetCompanySettings(ctx)
			if err != nil {
				return fmt.Errorf("failed to get company settings: %w", err)
			}

			now := time.Now().In(cfg.Location())
			if now.Hour() != 0 {
				return nil
			}

			yesterday := now.AddDate(0, 0, -1)
			result, err := svc.FinalizeDay(ctx, yesterday)
			if err != nil {
				return err
			}

			slog.Info("Daily attendance finalization completed",
				"date", result.Date,
				"processed", result.Processed,
				"absent_created", result.AbsentRecordsCreated,
				"updated", result.RecordsUpdated)
			return nil
		},
	}
}
