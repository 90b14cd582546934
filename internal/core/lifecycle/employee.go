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

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	SSN         string
	Phone       string
	Role        workforce.Role
	Active      *bool
}

// UpdateEmployeeInput は社員更新時の入力です。nil の項目は変更しません。
type UpdateEmployeeInput struct {
	ID          string
	FirstName   *string
	LastName    *string
	DateOfBirth *time.Time
	SSN         *string
	Phone       *string
	Role        *workforce.Role
	Active      *bool
}

// CreateAccountInput はアカウント作成時の入力です。
type CreateAccountInput struct {
	EmployeeID string
	Email      string
}

// Profile は社員と派生属性、現在の割り当てをまとめたものです。
type Profile struct {
	Employee          *workforce.Employee
	Account           *workforce.Account
	CurrentAssignment *workforce.Assignment
	DisplayName       string
	ProperName        string
	Age               int
	Adult             bool
}

// CreateEmployee は社員を作成します。SSN と電話番号は数字のみに正規化して保存します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*workforce.Employee, Outcome, error) {
	var created *workforce.Employee
	outcome, err := s.execute(ctx, "CreateEmployee", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		now := asOf.Now()
		e := &workforce.Employee{
			FirstName:   strings.TrimSpace(in.FirstName),
			LastName:    strings.TrimSpace(in.LastName),
			DateOfBirth: in.DateOfBirth,
			SSN:         strings.TrimSpace(in.SSN),
			Phone:       strings.TrimSpace(in.Phone),
			Role:        in.Role,
			Active:      boolOr(in.Active, true),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if e.Role == "" {
			e.Role = workforce.RoleEmployee
		}

		errs, err := s.validator.Employee(ctx, e, asOf)
		if err != nil {
			return Outcome{}, err
		}
		if !errs.OK() {
			return rejectedValidation(errs), nil
		}
		normalizeEmployee(e)

		if e.ID, err = s.newID(); err != nil {
			return Outcome{}, err
		}
		created, err = s.repos.Employees.Create(ctx, e)
		if err != nil {
			if o, ok := conflictOutcome(err); ok {
				return o, nil
			}
			return Outcome{}, err
		}
		return committed(EffectCreated), nil
	})
	if err != nil || !outcome.Committed() {
		return nil, outcome, err
	}
	return created, outcome, nil
}

// UpdateEmployee は社員情報を更新します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*workforce.Employee, Outcome, error) {
	if err := requireID("id", in.ID); err != nil {
		return nil, Outcome{}, err
	}

	var updated *workforce.Employee
	outcome, err := s.execute(ctx, "UpdateEmployee", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		e, err := s.repos.Employees.FindByID(ctx, in.ID)
		if err != nil {
			return Outcome{}, err
		}

		if in.FirstName != nil {
			e.FirstName = strings.TrimSpace(*in.FirstName)
		}
		if in.LastName != nil {
			e.LastName = strings.TrimSpace(*in.LastName)
		}
		if in.DateOfBirth != nil {
			e.DateOfBirth = *in.DateOfBirth
		}
		if in.SSN != nil {
			e.SSN = strings.TrimSpace(*in.SSN)
		}
		if in.Phone != nil {
			e.Phone = strings.TrimSpace(*in.Phone)
		}
		if in.Role != nil {
			e.Role = *in.Role
		}
		if in.Active != nil {
			e.Active = *in.Active
		}

		errs, err := s.validator.Employee(ctx, e, asOf)
		if err != nil {
			return Outcome{}, err
		}
		if !errs.OK() {
			return rejectedValidation(errs), nil
		}
		normalizeEmployee(e)
		e.UpdatedAt = asOf.Now()

		updated, err = s.repos.Employees.Update(ctx, e)
		if err != nil {
			if o, ok := conflictOutcome(err); ok {
				return o, nil
			}
			return Outcome{}, err
		}
		return committed(EffectUpdated), nil
	})
	if err != nil || !outcome.Committed() {
		return nil, outcome, err
	}
	return updated, outcome, nil
}

// DeleteEmployee は社員を削除します。
// 勤務済みのシフトがある場合は削除の代わりに無効化し、現在の割り当てを終了して今日以降のシフトを削除します。
// 勤務実績がない場合はアカウント、割り当て、シフトを合わせて削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteInput) (Outcome, error) {
	if err := requireID("id", in.ID); err != nil {
		return Outcome{}, err
	}

	return s.execute(ctx, "DeleteEmployee", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		e, err := s.repos.Employees.FindByID(ctx, in.ID)
		if err != nil {
			return Outcome{}, err
		}

		worked, err := s.hasWorkedShift(ctx, workforce.Shifts().ForEmployee(e.ID), asOf)
		if err != nil {
			return Outcome{}, err
		}

		switch decideDeletion(KindEmployee, worked) {
		case decideDeactivate:
			return s.deactivateEmployee(ctx, e, asOf)
		default:
			return s.hardDeleteEmployee(ctx, e, asOf)
		}
	})
}

func (s *Service) deactivateEmployee(ctx context.Context, e *workforce.Employee, asOf temporal.AsOf) (Outcome, error) {
	e.Active = false
	e.UpdatedAt = asOf.Now()
	if _, err := s.repos.Employees.Update(ctx, e); err != nil {
		return Outcome{}, fmt.Errorf("deactivate employee %s: %w", e.ID, err)
	}

	outcome := committedAsDeactivation(EffectDeactivated, "employee has worked shifts")
	current, err := s.repos.Assignments.List(ctx, workforce.Assignments().ForEmployee(e.ID).CurrentOnly())
	if err != nil {
		return Outcome{}, err
	}
	for _, a := range current {
		cascade, err := s.terminate(ctx, a, asOf)
		if err != nil {
			return Outcome{}, err
		}
		outcome.Cascade.AssignmentsEnded += cascade.AssignmentsEnded
		outcome.Cascade.ShiftsDeleted += cascade.ShiftsDeleted
	}

	// 過去の割り当てに残った未来日のシフトも削除する
	deleted, err := s.deleteShifts(ctx, workforce.Shifts().AsOf(asOf).ForEmployee(e.ID).Upcoming())
	if err != nil {
		return Outcome{}, err
	}
	outcome.Cascade.ShiftsDeleted += deleted
	return outcome, nil
}

func (s *Service) hardDeleteEmployee(ctx context.Context, e *workforce.Employee, asOf temporal.AsOf) (Outcome, error) {
	outcome := committed(EffectDeleted)

	account, err := s.repos.Accounts.FindByEmployee(ctx, e.ID)
	switch {
	case err == nil:
		if err := s.repos.Accounts.Delete(ctx, account.ID); err != nil {
			return Outcome{}, fmt.Errorf("delete account %s: %w", account.ID, err)
		}
		outcome.Cascade.AccountsDeleted++
	case !errors.Is(err, workforce.ErrAccountNotFound):
		return Outcome{}, err
	}

	assignments, err := s.repos.Assignments.List(ctx, workforce.Assignments().ForEmployee(e.ID))
	if err != nil {
		return Outcome{}, err
	}
	for _, a := range assignments {
		deleted, err := s.deleteShifts(ctx, workforce.Shifts().ForAssignment(a.ID))
		if err != nil {
			return Outcome{}, err
		}
		outcome.Cascade.ShiftsDeleted += deleted
		if err := s.repos.Assignments.Delete(ctx, a.ID); err != nil {
			return Outcome{}, fmt.Errorf("delete assignment %s: %w", a.ID, err)
		}
		outcome.Cascade.AssignmentsDeleted++
	}

	if err := s.repos.Employees.Delete(ctx, e.ID); err != nil {
		return Outcome{}, err
	}
	return outcome, nil
}

// CreateAccount は有効な社員にアカウントを作成します。社員 1 人につき 1 件までです。
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (*workforce.Account, Outcome, error) {
	var created *workforce.Account
	outcome, err := s.execute(ctx, "CreateAccount", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		employee, err := s.findEmployeeReference(ctx, in.EmployeeID)
		if err != nil {
			return Outcome{}, err
		}

		now := asOf.Now()
		a := &workforce.Account{
			EmployeeID: strings.TrimSpace(in.EmployeeID),
			Email:      workforce.NormalizeEmail(in.Email),
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		errs, err := s.validator.Account(ctx, a, employee)
		if err != nil {
			return Outcome{}, err
		}
		if !errs.OK() {
			return rejectedValidation(errs), nil
		}

		if a.ID, err = s.newID(); err != nil {
			return Outcome{}, err
		}
		created, err = s.repos.Accounts.Create(ctx, a)
		if err != nil {
			if o, ok := conflictOutcome(err); ok {
				return o, nil
			}
			return Outcome{}, err
		}
		return committed(EffectCreated), nil
	})
	if err != nil || !outcome.Committed() {
		return nil, outcome, err
	}
	return created, outcome, nil
}

// findEmployeeReference は参照先の社員を取得します。存在しない場合は nil を返し、検証エラーとして扱います。
func (s *Service) findEmployeeReference(ctx context.Context, id string) (*workforce.Employee, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	e, err := s.repos.Employees.FindByID(ctx, id)
	if errors.Is(err, workforce.ErrEmployeeNotFound) || errors.Is(err, workforce.ErrInvalidID) {
		return nil, nil
	}
	return e, err
}

func normalizeEmployee(e *workforce.Employee) {
	e.SSN = workforce.NormalizeSSN(e.SSN)
	e.Phone = workforce.NormalizePhone(e.Phone)
}
