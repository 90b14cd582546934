package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

// EmployeeRepository は社員のインメモリ実装です。
type EmployeeRepository struct {
	store *Store
}

func (r *EmployeeRepository) Create(ctx context.Context, e *workforce.Employee) (*workforce.Employee, error) {
	if e == nil {
		return nil, workforce.ErrNilEntity
	}
	if err := requireID(e.ID); err != nil {
		return nil, err
	}

	var created workforce.Employee
	err := r.store.write(ctx, func(st *state) error {
		for _, existing := range st.employees {
			if existing.SSN == e.SSN {
				return workforce.ErrSSNAlreadyExists
			}
		}
		created = *e
		st.employees[e.ID] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, e *workforce.Employee) (*workforce.Employee, error) {
	if e == nil {
		return nil, workforce.ErrNilEntity
	}

	var updated workforce.Employee
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.employees[e.ID]; !ok {
			return workforce.ErrEmployeeNotFound
		}
		for id, existing := range st.employees {
			if id != e.ID && existing.SSN == e.SSN {
				return workforce.ErrSSNAlreadyExists
			}
		}
		updated = *e
		st.employees[e.ID] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete は社員を削除します。アカウントや割り当てが残っている場合は削除しません。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.employees[id]; !ok {
			return workforce.ErrEmployeeNotFound
		}
		for _, a := range st.accounts {
			if a.EmployeeID == id {
				return fmt.Errorf("memory: employee %s is referenced by account %s", id, a.ID)
			}
		}
		for _, a := range st.assignments {
			if a.EmployeeID == id {
				return fmt.Errorf("memory: employee %s is referenced by assignment %s", id, a.ID)
			}
		}
		delete(st.employees, id)
		return nil
	})
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*workforce.Employee, error) {
	var found workforce.Employee
	err := r.store.read(ctx, func(st *state) error {
		e, ok := st.employees[id]
		if !ok {
			return workforce.ErrEmployeeNotFound
		}
		found = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *EmployeeRepository) FindBySSN(ctx context.Context, ssn string) (*workforce.Employee, error) {
	var found *workforce.Employee
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.employees {
			if e.SSN == ssn {
				e := e
				found = &e
				return nil
			}
		}
		return workforce.ErrEmployeeNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *EmployeeRepository) List(ctx context.Context, query workforce.EmployeeQuery) ([]*workforce.Employee, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var list []*workforce.Employee
	err := r.store.read(ctx, func(st *state) error {
		all := make([]*workforce.Employee, 0, len(st.employees))
		for _, e := range st.employees {
			e := e
			all = append(all, &e)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
		list = query.Apply(all)
		return nil
	})
	return list, err
}

// AccountRepository はアカウントのインメモリ実装です。
type AccountRepository struct {
	store *Store
}

func (r *AccountRepository) Create(ctx context.Context, a *workforce.Account) (*workforce.Account, error) {
	if a == nil {
		return nil, workforce.ErrNilEntity
	}
	if err := requireID(a.ID); err != nil {
		return nil, err
	}

	var created workforce.Account
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.employees[a.EmployeeID]; !ok {
			return workforce.ErrEmployeeNotFound
		}
		for _, existing := range st.accounts {
			if existing.Email == a.Email {
				return workforce.ErrEmailAlreadyExists
			}
			if existing.EmployeeID == a.EmployeeID {
				return workforce.ErrAccountAlreadyExists
			}
		}
		created = *a
		st.accounts[a.ID] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.accounts[id]; !ok {
			return workforce.ErrAccountNotFound
		}
		delete(st.accounts, id)
		return nil
	})
}

func (r *AccountRepository) FindByEmployee(ctx context.Context, employeeID string) (*workforce.Account, error) {
	return r.find(ctx, func(a workforce.Account) bool { return a.EmployeeID == employeeID })
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*workforce.Account, error) {
	return r.find(ctx, func(a workforce.Account) bool { return a.Email == email })
}

func (r *AccountRepository) find(ctx context.Context, match func(workforce.Account) bool) (*workforce.Account, error) {
	var found *workforce.Account
	err := r.store.read(ctx, func(st *state) error {
		for _, a := range st.accounts {
			if match(a) {
				a := a
				found = &a
				return nil
			}
		}
		return workforce.ErrAccountNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
