package leaderboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vilakshan/pli-leaderboard/model"
)

// AdjustmentStore persists manual adjustments (store/sqlite in this
// repo). Approval/rejection is a status transition, never a row delete —
// spec.md §4.12 requires the audit trail to survive rejection.
type AdjustmentStore interface {
	Create(ctx context.Context, a model.Adjustment) error
	Get(ctx context.Context, id string) (model.Adjustment, bool, error)
	SetStatus(ctx context.Context, id string, status model.AdjustmentStatus, actedBy string) error
	ListForMonth(ctx context.Context, employeeID model.EntityID, month model.Month) ([]model.Adjustment, error)
}

// AdjustmentService implements the admin-facing Adjustments API
// (spec.md §4.12 NEW): creating a pending correction, approving or
// rejecting it.
type AdjustmentService struct {
	store AdjustmentStore
}

func NewAdjustmentService(store AdjustmentStore) *AdjustmentService {
	return &AdjustmentService{store: store}
}

// Propose records a new PENDING adjustment. It never touches the
// leaderboard until approved (Aggregate only folds in AdjustmentApproved
// rows).
func (s *AdjustmentService) Propose(ctx context.Context, employeeID model.EntityID, month model.Month, value float64, typ model.AdjustmentType, reason, actedBy string) (model.Adjustment, error) {
	a := model.Adjustment{
		ID: uuid.NewString(), EmployeeID: employeeID, Month: month,
		Reason: reason, Value: value, Type: typ, Status: model.AdjustmentPending,
		CreatedAt: month.Start(), ActedBy: actedBy,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return model.Adjustment{}, fmt.Errorf("leaderboard: propose adjustment: %w", err)
	}
	return a, nil
}

func (s *AdjustmentService) Approve(ctx context.Context, id, actedBy string) error {
	return s.transition(ctx, id, model.AdjustmentApproved, actedBy)
}

func (s *AdjustmentService) Reject(ctx context.Context, id, actedBy string) error {
	return s.transition(ctx, id, model.AdjustmentRejected, actedBy)
}

func (s *AdjustmentService) transition(ctx context.Context, id string, status model.AdjustmentStatus, actedBy string) error {
	a, found, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("leaderboard: adjustment %q not found", id)
	}
	if a.Status != model.AdjustmentPending {
		return fmt.Errorf("leaderboard: adjustment %q already %s", id, a.Status)
	}
	return s.store.SetStatus(ctx, id, status, actedBy)
}

func (s *AdjustmentService) ForMonth(ctx context.Context, employeeID model.EntityID, month model.Month) ([]model.Adjustment, error) {
	return s.store.ListForMonth(ctx, employeeID, month)
}
