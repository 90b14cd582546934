package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

// CreateAssignmentInput は割り当て作成時の入力です。
type CreateAssignmentInput struct {
	EmployeeID string
	StoreID    string
	PayLevel   int
	StartDate  time.Time
	EndDate    *time.Time
	// InputErrors は値の解釈時に見つかった誤りです。同じフィールドの検証結果を置き換えて返します。
	InputErrors workforce.FieldErrors
}

// TerminateAssignmentInput は割り当て終了時の入力です。
type TerminateAssignmentInput struct {
	ID string
}

// CreateAssignment は割り当てを作成します。
// 新しい割り当てが現在の割り当て (終了日なし) であれば、社員の既存の現在の割り当てを新しい開始日で終了します。
func (s *Service) CreateAssignment(ctx context.Context, in CreateAssignmentInput) (*workforce.Assignment, Outcome, error) {
	var created *workforce.Assignment
	outcome, err := s.execute(ctx, "CreateAssignment", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		employee, err := s.findEmployeeReference(ctx, in.EmployeeID)
		if err != nil {
			return Outcome{}, err
		}
		store, err := s.findStoreReference(ctx, in.StoreID)
		if err != nil {
			return Outcome{}, err
		}

		now := asOf.Now()
		a := &workforce.Assignment{
			EmployeeID: strings.TrimSpace(in.EmployeeID),
			StoreID:    strings.TrimSpace(in.StoreID),
			PayLevel:   in.PayLevel,
			StartDate:  temporal.Date(in.StartDate),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if in.EndDate != nil {
			end := temporal.Date(*in.EndDate)
			a.EndDate = &end
		}

		errs := workforce.ValidateNewAssignment(a, employee, store, asOf)
		for _, field := range in.InputErrors.Fields() {
			delete(errs, field)
		}
		errs.Merge(in.InputErrors)
		if !errs.OK() {
			return rejectedValidation(errs), nil
		}

		var cascade Cascade
		if a.IsCurrent() {
			var priorErrs workforce.FieldErrors
			cascade, priorErrs, err = s.endPriorAssignment(ctx, employee.ID, a, asOf)
			if err != nil {
				return Outcome{}, err
			}
			if !priorErrs.OK() {
				return rejectedValidation(priorErrs), nil
			}
		}

		if a.ID, err = s.newID(); err != nil {
			return Outcome{}, err
		}
		created, err = s.repos.Assignments.Create(ctx, a)
		if err != nil {
			return Outcome{}, err
		}

		outcome := committed(EffectCreated)
		outcome.Cascade = cascade
		return outcome, nil
	})
	if err != nil || !outcome.Committed() {
		return nil, outcome, err
	}
	return created, outcome, nil
}

// TerminateAssignment は割り当てを今日付で終了し、今日以降のシフトを削除します。
func (s *Service) TerminateAssignment(ctx context.Context, in TerminateAssignmentInput) (*workforce.Assignment, Outcome, error) {
	if err := requireID("id", in.ID); err != nil {
		return nil, Outcome{}, err
	}

	var terminated *workforce.Assignment
	outcome, err := s.execute(ctx, "TerminateAssignment", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		a, err := s.repos.Assignments.FindByID(ctx, in.ID)
		if err != nil {
			return Outcome{}, err
		}
		if !a.IsCurrent() {
			return rejectedPolicy("assignment has already ended"), nil
		}

		cascade, err := s.terminate(ctx, a, asOf)
		if err != nil {
			return Outcome{}, err
		}
		terminated = a

		outcome := committed(EffectTerminated)
		outcome.Cascade = cascade
		return outcome, nil
	})
	if err != nil || !outcome.Committed() {
		return nil, outcome, err
	}
	return terminated, outcome, nil
}

// DeleteAssignment は割り当てを削除します。
// 勤務済みのシフトがある場合は削除の代わりに終了処理を行います。
func (s *Service) DeleteAssignment(ctx context.Context, in DeleteInput) (Outcome, error) {
	if err := requireID("id", in.ID); err != nil {
		return Outcome{}, err
	}

	return s.execute(ctx, "DeleteAssignment", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		a, err := s.repos.Assignments.FindByID(ctx, in.ID)
		if err != nil {
			return Outcome{}, err
		}

		worked, err := s.hasWorkedShift(ctx, workforce.Shifts().ForAssignment(a.ID), asOf)
		if err != nil {
			return Outcome{}, err
		}

		if decideDeletion(KindAssignment, worked) == decideTerminate {
			cascade, err := s.terminate(ctx, a, asOf)
			if err != nil {
				return Outcome{}, err
			}
			outcome := committedAsDeactivation(EffectTerminated, "assignment has worked shifts")
			outcome.Cascade = cascade
			return outcome, nil
		}

		deleted, err := s.deleteShifts(ctx, workforce.Shifts().ForAssignment(a.ID))
		if err != nil {
			return Outcome{}, err
		}
		if err := s.repos.Assignments.Delete(ctx, a.ID); err != nil {
			return Outcome{}, fmt.Errorf("delete assignment %s: %w", a.ID, err)
		}

		outcome := committed(EffectDeleted)
		outcome.Cascade.ShiftsDeleted = deleted
		return outcome, nil
	})
}

func (s *Service) findStoreReference(ctx context.Context, id string) (*workforce.Store, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	store, err := s.repos.Stores.FindByID(ctx, id)
	if errors.Is(err, workforce.ErrStoreNotFound) || errors.Is(err, workforce.ErrInvalidID) {
		return nil, nil
	}
	return store, err
}

func (s *Service) findAssignmentReference(ctx context.Context, id string) (*workforce.Assignment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	a, err := s.repos.Assignments.FindByID(ctx, id)
	if errors.Is(err, workforce.ErrAssignmentNotFound) || errors.Is(err, workforce.ErrInvalidID) {
		return nil, nil
	}
	return a, err
}
