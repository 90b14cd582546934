package lifecycle

import (
	"context"
	"errors"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

// GetEmployee は ID で社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, id string) (*workforce.Employee, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	var found *workforce.Employee
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		found, err = s.repos.Employees.FindByID(ctx, id)
		return err
	})
	return found, err
}

// EmployeeProfile は社員と派生属性、アカウント、現在の割り当てを取得します。
func (s *Service) EmployeeProfile(ctx context.Context, id string) (*Profile, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}

	asOf := s.AsOf()
	var profile *Profile
	err := s.readOnly(ctx, func(ctx context.Context) error {
		e, err := s.repos.Employees.FindByID(ctx, id)
		if err != nil {
			return err
		}

		account, err := s.repos.Accounts.FindByEmployee(ctx, id)
		if err != nil && !errors.Is(err, workforce.ErrAccountNotFound) {
			return err
		}

		assignments, err := s.repos.Assignments.List(ctx, workforce.Assignments().ForEmployee(id).CurrentOnly())
		if err != nil {
			return err
		}

		profile = &Profile{
			Employee:          e,
			Account:           account,
			CurrentAssignment: workforce.CurrentAssignment(assignments),
			DisplayName:       e.DisplayName(),
			ProperName:        e.ProperName(),
			Age:               e.Age(asOf),
			Adult:             e.IsAdult(asOf),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// ListEmployees は条件に一致する社員を取得します。年齢条件の基準日は呼び出し時点です。
func (s *Service) ListEmployees(ctx context.Context, query workforce.EmployeeQuery) ([]*workforce.Employee, error) {
	query = query.AsOf(s.AsOf())
	var list []*workforce.Employee
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		list, err = s.repos.Employees.List(ctx, query)
		return err
	})
	return list, err
}

// GetAssignment は ID で割り当てを取得します。
func (s *Service) GetAssignment(ctx context.Context, id string) (*workforce.Assignment, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	var found *workforce.Assignment
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		found, err = s.repos.Assignments.FindByID(ctx, id)
		return err
	})
	return found, err
}

// ListAssignments は条件に一致する割り当てを取得します。
func (s *Service) ListAssignments(ctx context.Context, query workforce.AssignmentQuery) ([]*workforce.Assignment, error) {
	var list []*workforce.Assignment
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		list, err = s.repos.Assignments.List(ctx, query)
		return err
	})
	return list, err
}

// GetShift は ID でシフトと割り当て済み職務を取得します。
func (s *Service) GetShift(ctx context.Context, id string) (*ShiftDetail, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}

	asOf := s.AsOf()
	var detail *ShiftDetail
	err := s.readOnly(ctx, func(ctx context.Context) error {
		shift, err := s.repos.Shifts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		links, err := s.repos.Shifts.ListJobs(ctx, id)
		if err != nil {
			return err
		}
		jobIDs := make([]string, 0, len(links))
		for _, link := range links {
			jobIDs = append(jobIDs, link.JobID)
		}
		detail = &ShiftDetail{Shift: shift, JobIDs: jobIDs, Completed: shift.IsCompleted(asOf)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// ListShifts は条件に一致するシフトを取得します。日付条件の基準日は呼び出し時点です。
func (s *Service) ListShifts(ctx context.Context, query workforce.ShiftQuery) ([]*workforce.Shift, error) {
	query = query.AsOf(s.AsOf())
	var list []*workforce.Shift
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		list, err = s.repos.Shifts.List(ctx, query)
		return err
	})
	return list, err
}

func (s *Service) ListStores(ctx context.Context, query workforce.CatalogQuery) ([]*workforce.Store, error) {
	var list []*workforce.Store
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		list, err = s.repos.Stores.List(ctx, query)
		return err
	})
	return list, err
}

func (s *Service) ListJobs(ctx context.Context, query workforce.CatalogQuery) ([]*workforce.Job, error) {
	var list []*workforce.Job
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		list, err = s.repos.Jobs.List(ctx, query)
		return err
	})
	return list, err
}

func (s *Service) ListFlavors(ctx context.Context, query workforce.CatalogQuery) ([]*workforce.Flavor, error) {
	var list []*workforce.Flavor
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		list, err = s.repos.Flavors.List(ctx, query)
		return err
	})
	return list, err
}
