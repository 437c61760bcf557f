package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/penalty"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type settingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) settings.Provider {
	return &settingsRepository{db: db}
}

// GetCompanySettings implements settings.Provider. The settings table holds
// a single row; structured fields (windows, thresholds, amounts, calendar)
// are stored as jsonb.
func (s *settingsRepository) GetCompanySettings(ctx context.Context) (settings.CompanySettings, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT timezone, workplace_latitude, workplace_longitude,
		       workplace_radius_meters, geofencing_enabled,
		       slot_windows, grace_periods, violation_thresholds,
		       penalty_amounts, working_days, holidays
		FROM company_settings
		LIMIT 1
	`

	var cfg settings.CompanySettings
	var windowsJSON, graceJSON, thresholdsJSON, amountsJSON, workingDaysJSON, holidaysJSON []byte

	err := q.QueryRow(ctx, query).Scan(
		&cfg.Timezone, &cfg.WorkplaceLatitude, &cfg.WorkplaceLongitude,
		&cfg.WorkplaceRadiusMeters, &cfg.GeofencingEnabled,
		&windowsJSON, &graceJSON, &thresholdsJSON,
		&amountsJSON, &workingDaysJSON, &holidaysJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.CompanySettings{}, settings.ErrNotConfigured
		}
		return settings.CompanySettings{}, fmt.Errorf("failed to get company settings: %w", err)
	}

	if err := json.Unmarshal(windowsJSON, &cfg.SlotWindows); err != nil {
		return settings.CompanySettings{}, fmt.Errorf("failed to unmarshal slot windows: %w", err)
	}
	if err := json.Unmarshal(graceJSON, &cfg.GracePeriods); err != nil {
		return settings.CompanySettings{}, fmt.Errorf("failed to unmarshal grace periods: %w", err)
	}
	if err := json.Unmarshal(thresholdsJSON, &cfg.ViolationThresholds); err != nil {
		return settings.CompanySettings{}, fmt.Errorf("failed to unmarshal violation thresholds: %w", err)
	}

	// Amounts are stored as strings inside jsonb to keep them exact.
	rawAmounts := map[penalty.ViolationType]string{}
	if err := json.Unmarshal(amountsJSON, &rawAmounts); err != nil {
		return settings.CompanySettings{}, fmt.Errorf("failed to unmarshal penalty amounts: %w", err)
	}
	cfg.PenaltyAmounts = make(map[penalty.ViolationType]decimal.Decimal, len(rawAmounts))
	for vt, raw := range rawAmounts {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return settings.CompanySettings{}, fmt.Errorf("invalid penalty amount for %s: %w", vt, err)
		}
		cfg.PenaltyAmounts[vt] = amount
	}

	var workingDays []int
	if err := json.Unmarshal(workingDaysJSON, &workingDays); err != nil {
		return settings.CompanySettings{}, fmt.Errorf("failed to unmarshal working days: %w", err)
	}
	cfg.WorkingDays = make([]time.Weekday, 0, len(workingDays))
	for _, d := range workingDays {
		cfg.WorkingDays = append(cfg.WorkingDays, time.Weekday(d))
	}

	if err := json.Unmarshal(holidaysJSON, &cfg.Holidays); err != nil {
		return settings.CompanySettings{}, fmt.Errorf("failed to unmarshal holidays: %w", err)
	}

	// Every slot must carry a window; a partially configured company is
	// treated the same as an unconfigured one.
	for _, slot := range attendance.SlotOrder() {
		if _, ok := cfg.SlotWindows[slot]; !ok {
			return settings.CompanySettings{}, settings.ErrNotConfigured
		}
	}

	return cfg, nil
}
