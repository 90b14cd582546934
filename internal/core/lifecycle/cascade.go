package lifecycle

import (
	"context"
	"fmt"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

func (s *Service) hasWorkedShift(ctx context.Context, query workforce.ShiftQuery, asOf temporal.AsOf) (bool, error) {
	worked, err := s.repos.Shifts.List(ctx, query.AsOf(asOf).Completed().Limited(1))
	if err != nil {
		return false, err
	}
	return len(worked) > 0, nil
}

// terminate は割り当てを今日付で終了し (終了日が未設定の場合のみ)、今日以降のシフトを削除します。
func (s *Service) terminate(ctx context.Context, a *workforce.Assignment, asOf temporal.AsOf) (Cascade, error) {
	var cascade Cascade
	if a.EndDate == nil {
		today := asOf.Today()
		a.EndDate = &today
		a.UpdatedAt = asOf.Now()
		if _, err := s.repos.Assignments.Update(ctx, a); err != nil {
			return cascade, fmt.Errorf("end assignment %s: %w", a.ID, err)
		}
		cascade.AssignmentsEnded++
	}

	deleted, err := s.deleteShifts(ctx, workforce.Shifts().AsOf(asOf).ForAssignment(a.ID).Upcoming())
	if err != nil {
		return cascade, err
	}
	cascade.ShiftsDeleted += deleted
	return cascade, nil
}

func (s *Service) deleteShifts(ctx context.Context, query workforce.ShiftQuery) (int, error) {
	shifts, err := s.repos.Shifts.List(ctx, query)
	if err != nil {
		return 0, err
	}
	for _, shift := range shifts {
		if err := s.repos.Shifts.Delete(ctx, shift.ID); err != nil {
			return 0, fmt.Errorf("delete shift %s: %w", shift.ID, err)
		}
	}
	return len(shifts), nil
}

// endPriorAssignment は社員の現在の割り当てを newStart で終了し、終了日より後の今日以降のシフトを削除します。
// 既存の割り当ての開始日が newStart より後の場合は検証エラーを返します。
func (s *Service) endPriorAssignment(ctx context.Context, employeeID string, next *workforce.Assignment, asOf temporal.AsOf) (Cascade, workforce.FieldErrors, error) {
	var cascade Cascade
	current, err := s.repos.Assignments.List(ctx, workforce.Assignments().ForEmployee(employeeID).CurrentOnly())
	if err != nil {
		return cascade, nil, err
	}

	for _, prior := range current {
		if temporal.Date(prior.StartDate).After(temporal.Date(next.StartDate)) {
			errs := workforce.FieldErrors{}
			errs.Add("start_date", "must be on or after the start date of the current assignment")
			return cascade, errs, nil
		}
	}

	for _, prior := range current {
		end := temporal.Date(next.StartDate)
		prior.EndDate = &end
		prior.UpdatedAt = asOf.Now()
		if _, err := s.repos.Assignments.Update(ctx, prior); err != nil {
			return cascade, nil, fmt.Errorf("end prior assignment %s: %w", prior.ID, err)
		}
		cascade.AssignmentsEnded++

		deleted, err := s.deleteUncoveredShifts(ctx, prior, asOf)
		if err != nil {
			return cascade, nil, err
		}
		cascade.ShiftsDeleted += deleted
	}
	return cascade, nil, nil
}

// deleteUncoveredShifts は a の期間外になった今日以降のシフトを削除します。完了済みのシフトは残します。
func (s *Service) deleteUncoveredShifts(ctx context.Context, a *workforce.Assignment, asOf temporal.AsOf) (int, error) {
	upcoming, err := s.repos.Shifts.List(ctx, workforce.Shifts().AsOf(asOf).ForAssignment(a.ID).Upcoming())
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, shift := range upcoming {
		if a.Covers(shift.Date) {
			continue
		}
		if err := s.repos.Shifts.Delete(ctx, shift.ID); err != nil {
			return deleted, fmt.Errorf("delete shift %s: %w", shift.ID, err)
		}
		deleted++
	}
	return deleted, nil
}
