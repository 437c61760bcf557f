package settings

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/penalty"
	"github.com/shopspring/decimal"
)

var ErrNotConfigured = errors.New("company settings not configured")

// CompanySettings is the read-only configuration the engine resolves once
// per request or job invocation at the orchestration boundary.
type CompanySettings struct {
	Timezone string

	WorkplaceLatitude     float64
	WorkplaceLongitude    float64
	WorkplaceRadiusMeters float64
	GeofencingEnabled     bool

	SlotWindows  map[attendance.SlotName]attendance.Window
	GracePeriods map[attendance.SlotName]int // minutes

	ViolationThresholds map[penalty.ViolationType]int
	PenaltyAmounts      map[penalty.ViolationType]decimal.Decimal

	WorkingDays []time.Weekday
	Holidays    []string // "YYYY-MM-DD"
}

// Location resolves the company time zone, falling back to UTC when the
// configured name does not load.
func (s CompanySettings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Provider supplies the current company settings.
type Provider interface {
	GetCompanySettings(ctx context.Context) (CompanySettings, error)
}
