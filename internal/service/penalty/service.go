package penalty

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/penalty"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/database"
)

type Service struct {
	tx        database.TxManager
	penalties penalty.Repository
	auditor   audit.Recorder
}

func NewPenaltyService(tx database.TxManager, penaltyRepo penalty.Repository, auditor audit.Recorder) *Service {
	return &Service{tx: tx, penalties: penaltyRepo, auditor: auditor}
}

// Acknowledge marks a penalty as seen by its owner. Only the employee the
// penalty was issued to may acknowledge it.
func (s *Service) Acknowledge(ctx context.Context, employeeID, penaltyID string) (penalty.Penalty, error) {
	return s.transition(ctx, penaltyID, penalty.StatusAcknowledged, employeeID, &employeeID)
}

// Waive cancels a penalty. Admin only; the waiver is audited.
func (s *Service) Waive(ctx context.Context, performedBy, penaltyID string) (penalty.Penalty, error) {
	return s.transition(ctx, penaltyID, penalty.StatusWaived, performedBy, nil)
}

// MarkPaid settles a penalty. Admin only.
func (s *Service) MarkPaid(ctx context.Context, performedBy, penaltyID string) (penalty.Penalty, error) {
	return s.transition(ctx, penaltyID, penalty.StatusPaid, performedBy, nil)
}

// transition loads, validates and persists a status change in one
// transaction. ownerID, when set, restricts the change to the penalty's
// own employee.
func (s *Service) transition(ctx context.Context, penaltyID string, to penalty.Status, performedBy string, ownerID *string) (penalty.Penalty, error) {
	var p penalty.Penalty
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.penalties.GetByID(ctx, penaltyID)
		if err != nil {
			return err
		}

		if ownerID != nil && p.EmployeeID != *ownerID {
			return penalty.ErrNotPenaltyOwner
		}

		from := p.Status
		if err := p.Transition(to); err != nil {
			return err
		}

		if err := s.penalties.UpdateStatus(ctx, p.ID, p.Status); err != nil {
			return err
		}

		s.recordAudit(ctx, audit.Entry{
			Action:      fmt.Sprintf("penalty_%s", to),
			Resource:    "penalty",
			ResourceID:  p.ID,
			PerformedBy: performedBy,
			OldValues:   map[string]any{"status": string(from)},
			NewValues:   map[string]any{"status": string(to)},
		})
		return nil
	})
	if err != nil {
		return penalty.Penalty{}, err
	}
	return p, nil
}

// GetMyPenalties returns an employee's own penalties, optionally for one month.
func (s *Service) GetMyPenalties(ctx context.Context, employeeID string, month *string) ([]penalty.Penalty, error) {
	return s.penalties.ListByEmployee(ctx, employeeID, month)
}

// ListPenalties is the admin view across employees.
func (s *Service) ListPenalties(ctx context.Context, month *string, status *penalty.Status) ([]penalty.Penalty, error) {
	return s.penalties.List(ctx, month, status)
}

func (s *Service) recordAudit(ctx context.Context, entry audit.Entry) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.RecordAuditLog(ctx, entry); err != nil {
		slog.Error("Failed to record audit log", "action", entry.Action, "error", err)
	}
}
