// Package memory はプロセス内で完結するリポジトリ実装です。
// テストと、データベースを用意しないローカル実行で使用します。
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

// ErrReadOnly は読み取り専用トランザクション内で書き込もうとした場合に返却されます。
var ErrReadOnly = errors.New("memory: write in read-only transaction")

type state struct {
	employees    map[string]workforce.Employee
	accounts     map[string]workforce.Account
	stores       map[string]workforce.Store
	flavors      map[string]workforce.Flavor
	storeFlavors map[string]workforce.StoreFlavor
	jobs         map[string]workforce.Job
	assignments  map[string]workforce.Assignment
	shifts       map[string]workforce.Shift
	shiftJobs    map[string]workforce.ShiftJob
}

func newState() *state {
	return &state{
		employees:    map[string]workforce.Employee{},
		accounts:     map[string]workforce.Account{},
		stores:       map[string]workforce.Store{},
		flavors:      map[string]workforce.Flavor{},
		storeFlavors: map[string]workforce.StoreFlavor{},
		jobs:         map[string]workforce.Job{},
		assignments:  map[string]workforce.Assignment{},
		shifts:       map[string]workforce.Shift{},
		shiftJobs:    map[string]workforce.ShiftJob{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.employees {
		c.employees[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.stores {
		c.stores[k] = v
	}
	for k, v := range s.flavors {
		c.flavors[k] = v
	}
	for k, v := range s.storeFlavors {
		c.storeFlavors[k] = v
	}
	for k, v := range s.jobs {
		c.jobs[k] = cloneJob(v)
	}
	for k, v := range s.assignments {
		c.assignments[k] = cloneAssignment(v)
	}
	for k, v := range s.shifts {
		c.shifts[k] = cloneShift(v)
	}
	for k, v := range s.shiftJobs {
		c.shiftJobs[k] = v
	}
	return c
}

type txContextKey struct{}

type txState struct {
	state    *state
	readOnly bool
}

// Store はトランザクション単位で状態を複製し、コミット時に差し替えるインメモリストアです。
type Store struct {
	mu    sync.RWMutex
	state *state
}

// NewStore は空の Store を生成します。
func NewStore() *Store {
	return &Store{state: newState()}
}

// WithinReadOnly は状態を読み取り専用で参照しながら fn を実行します。
func (s *Store) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("memory: transaction function is required")
	}
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(context.WithValue(ctx, txContextKey{}, &txState{state: s.state, readOnly: true}))
}

// WithinReadWrite は状態の複製に対して fn を実行し、成功した場合のみ複製を確定します。
func (s *Store) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("memory: transaction function is required")
	}
	if tx, ok := txFromContext(ctx); ok {
		if tx.readOnly {
			return ErrReadOnly
		}
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(context.WithValue(ctx, txContextKey{}, &txState{state: working})); err != nil {
		return err
	}
	s.state = working
	return nil
}

func txFromContext(ctx context.Context) (*txState, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txContextKey{}).(*txState)
	return tx, ok
}

func (s *Store) read(ctx context.Context, fn func(*state) error) error {
	if tx, ok := txFromContext(ctx); ok {
		return fn(tx.state)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

func (s *Store) write(ctx context.Context, fn func(*state) error) error {
	if tx, ok := txFromContext(ctx); ok {
		if tx.readOnly {
			return ErrReadOnly
		}
		return fn(tx.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	working := s.state.clone()
	if err := fn(working); err != nil {
		return err
	}
	s.state = working
	return nil
}

// Repositories は Store を共有する全リポジトリを返します。
func (s *Store) Repositories() workforce.Repositories {
	return workforce.Repositories{
		Employees:   &EmployeeRepository{store: s},
		Accounts:    &AccountRepository{store: s},
		Stores:      &StoreRepository{store: s},
		Flavors:     &FlavorRepository{store: s},
		Jobs:        &JobRepository{store: s},
		Assignments: &AssignmentRepository{store: s},
		Shifts:      &ShiftRepository{store: s},
	}
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneJob(j workforce.Job) workforce.Job {
	j.Description = cloneString(j.Description)
	return j
}

func cloneAssignment(a workforce.Assignment) workforce.Assignment {
	if a.EndDate != nil {
		end := *a.EndDate
		a.EndDate = &end
	}
	return a
}

func cloneShift(s workforce.Shift) workforce.Shift {
	s.Notes = cloneString(s.Notes)
	return s
}

func requireID(id string) error {
	if id == "" {
		return workforce.ErrInvalidID
	}
	return nil
}
