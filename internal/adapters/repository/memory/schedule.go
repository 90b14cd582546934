package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

// AssignmentRepository は割り当てのインメモリ実装です。
type AssignmentRepository struct {
	store *Store
}

func (r *AssignmentRepository) Create(ctx context.Context, a *workforce.Assignment) (*workforce.Assignment, error) {
	if a == nil {
		return nil, workforce.ErrNilEntity
	}
	if err := requireID(a.ID); err != nil {
		return nil, err
	}

	created := cloneAssignment(*a)
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.employees[a.EmployeeID]; !ok {
			return workforce.ErrEmployeeNotFound
		}
		if _, ok := st.stores[a.StoreID]; !ok {
			return workforce.ErrStoreNotFound
		}
		st.assignments[a.ID] = cloneAssignment(created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *AssignmentRepository) Update(ctx context.Context, a *workforce.Assignment) (*workforce.Assignment, error) {
	if a == nil {
		return nil, workforce.ErrNilEntity
	}

	updated := cloneAssignment(*a)
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.assignments[a.ID]; !ok {
			return workforce.ErrAssignmentNotFound
		}
		st.assignments[a.ID] = cloneAssignment(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete は割り当てを削除します。シフトが残っている場合は削除しません。
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.assignments[id]; !ok {
			return workforce.ErrAssignmentNotFound
		}
		for _, s := range st.shifts {
			if s.AssignmentID == id {
				return fmt.Errorf("memory: assignment %s is referenced by shift %s", id, s.ID)
			}
		}
		delete(st.assignments, id)
		return nil
	})
}

func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*workforce.Assignment, error) {
	var found workforce.Assignment
	err := r.store.read(ctx, func(st *state) error {
		a, ok := st.assignments[id]
		if !ok {
			return workforce.ErrAssignmentNotFound
		}
		found = cloneAssignment(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *AssignmentRepository) List(ctx context.Context, query workforce.AssignmentQuery) ([]*workforce.Assignment, error) {
	var list []*workforce.Assignment
	err := r.store.read(ctx, func(st *state) error {
		views := make([]workforce.AssignmentView, 0, len(st.assignments))
		for _, a := range st.assignments {
			views = append(views, assignmentView(st, a))
		}
		list = query.Apply(views)
		return nil
	})
	return list, err
}

func assignmentView(st *state, a workforce.Assignment) workforce.AssignmentView {
	a = cloneAssignment(a)
	view := workforce.AssignmentView{Assignment: &a}
	if e, ok := st.employees[a.EmployeeID]; ok {
		view.Employee = &e
	}
	if s, ok := st.stores[a.StoreID]; ok {
		view.Store = &s
	}
	return view
}

// ShiftRepository はシフトと職務割り当てのインメモリ実装です。
type ShiftRepository struct {
	store *Store
}

func (r *ShiftRepository) Create(ctx context.Context, s *workforce.Shift) (*workforce.Shift, error) {
	if s == nil {
		return nil, workforce.ErrNilEntity
	}
	if err := requireID(s.ID); err != nil {
		return nil, err
	}

	created := cloneShift(*s)
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.assignments[s.AssignmentID]; !ok {
			return workforce.ErrAssignmentNotFound
		}
		st.shifts[s.ID] = cloneShift(created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ShiftRepository) Update(ctx context.Context, s *workforce.Shift) (*workforce.Shift, error) {
	if s == nil {
		return nil, workforce.ErrNilEntity
	}

	updated := cloneShift(*s)
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.shifts[s.ID]; !ok {
			return workforce.ErrShiftNotFound
		}
		st.shifts[s.ID] = cloneShift(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete はシフトと職務との関連を削除します。
func (r *ShiftRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.shifts[id]; !ok {
			return workforce.ErrShiftNotFound
		}
		for linkID, link := range st.shiftJobs {
			if link.ShiftID == id {
				delete(st.shiftJobs, linkID)
			}
		}
		delete(st.shifts, id)
		return nil
	})
}

func (r *ShiftRepository) FindByID(ctx context.Context, id string) (*workforce.Shift, error) {
	var found workforce.Shift
	err := r.store.read(ctx, func(st *state) error {
		s, ok := st.shifts[id]
		if !ok {
			return workforce.ErrShiftNotFound
		}
		found = cloneShift(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *ShiftRepository) List(ctx context.Context, query workforce.ShiftQuery) ([]*workforce.Shift, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var list []*workforce.Shift
	err := r.store.read(ctx, func(st *state) error {
		jobsByShift := make(map[string][]string)
		for _, link := range st.shiftJobs {
			jobsByShift[link.ShiftID] = append(jobsByShift[link.ShiftID], link.JobID)
		}

		views := make([]workforce.ShiftView, 0, len(st.shifts))
		for _, s := range st.shifts {
			s := cloneShift(s)
			view := workforce.ShiftView{Shift: &s, JobIDs: jobsByShift[s.ID]}
			if a, ok := st.assignments[s.AssignmentID]; ok {
				av := assignmentView(st, a)
				view.Assignment = av.Assignment
				view.Employee = av.Employee
				view.Store = av.Store
			}
			views = append(views, view)
		}
		list = query.Apply(views)
		return nil
	})
	return list, err
}

func (r *ShiftRepository) AddJob(ctx context.Context, link *workforce.ShiftJob) (*workforce.ShiftJob, error) {
	if link == nil {
		return nil, workforce.ErrNilEntity
	}
	if err := requireID(link.ID); err != nil {
		return nil, err
	}

	var created workforce.ShiftJob
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.shifts[link.ShiftID]; !ok {
			return workforce.ErrShiftNotFound
		}
		if _, ok := st.jobs[link.JobID]; !ok {
			return workforce.ErrJobNotFound
		}
		for _, existing := range st.shiftJobs {
			if existing.ShiftID == link.ShiftID && existing.JobID == link.JobID {
				return workforce.ErrShiftJobAlreadyExists
			}
		}
		created = *link
		st.shiftJobs[link.ID] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ShiftRepository) ListJobs(ctx context.Context, shiftID string) ([]*workforce.ShiftJob, error) {
	var list []*workforce.ShiftJob
	err := r.store.read(ctx, func(st *state) error {
		for _, link := range st.shiftJobs {
			if link.ShiftID == shiftID {
				link := link
				list = append(list, &link)
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
		return nil
	})
	return list, err
}
