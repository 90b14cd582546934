package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ogurasousui/codex-grpc-workforce/internal/adapters/repository/memory"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%05d", g.n), nil
}

type harness struct {
	svc   *Service
	repos workforce.Repositories
	store *memory.Store
	clock *stubClock
	ssns  int
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	store := memory.NewStore()
	clock := &stubClock{now: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithIDGenerator(&sequentialIDs{})}, opts...)
	repos := store.Repositories()
	return &harness{
		svc:   NewService(repos, clock, store, opts...),
		repos: repos,
		store: store,
		clock: clock,
	}
}

func (h *harness) asOf() temporal.AsOf {
	return h.svc.AsOf()
}

func (h *harness) daysFromToday(n int) time.Time {
	return h.asOf().DaysFromToday(n)
}

func requireCommitted(t *testing.T, outcome Outcome, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Committed() {
		t.Fatalf("expected committed outcome, got %+v", outcome)
	}
}

func (h *harness) employee(t *testing.T, first, last string, dob time.Time) *workforce.Employee {
	t.Helper()
	h.ssns++
	e, outcome, err := h.svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: dob,
		SSN:         fmt.Sprintf("%03d-45-%04d", 100+h.ssns, h.ssns),
		Role:        workforce.RoleEmployee,
	})
	requireCommitted(t, outcome, err)
	return e
}

func (h *harness) storeNamed(t *testing.T, name string) *workforce.Store {
	t.Helper()
	s, outcome, err := h.svc.CreateStore(context.Background(), CreateStoreInput{
		Name:   name,
		Street: "5000 Forbes Avenue",
		City:   "Pittsburgh",
		State:  workforce.StatePennsylvania,
		Zip:    "15213",
		Phone:  "412-268-8211",
	})
	requireCommitted(t, outcome, err)
	return s
}

func (h *harness) assignment(t *testing.T, employeeID, storeID string, start time.Time) *workforce.Assignment {
	t.Helper()
	a, outcome, err := h.svc.CreateAssignment(context.Background(), CreateAssignmentInput{
		EmployeeID: employeeID,
		StoreID:    storeID,
		PayLevel:   3,
		StartDate:  start,
	})
	requireCommitted(t, outcome, err)
	return a
}

func (h *harness) job(t *testing.T, name string) *workforce.Job {
	t.Helper()
	j, outcome, err := h.svc.CreateJob(context.Background(), CreateJobInput{Name: name})
	requireCommitted(t, outcome, err)
	return j
}

// seedShift はコマンドを経由せずにシフトを保存します。過去日付のシフトを用意するために使います。
func (h *harness) seedShift(t *testing.T, id, assignmentID string, date time.Time) *workforce.Shift {
	t.Helper()
	s, err := h.repos.Shifts.Create(context.Background(), &workforce.Shift{
		ID:           id,
		AssignmentID: assignmentID,
		Date:         date,
		StartTime:    temporal.NewTimeOfDay(11, 0, 0),
		EndTime:      temporal.NewTimeOfDay(14, 0, 0),
	})
	if err != nil {
		t.Fatalf("seed shift: %v", err)
	}
	return s
}

func (h *harness) linkJob(t *testing.T, id, shiftID, jobID string) {
	t.Helper()
	if _, err := h.repos.Shifts.AddJob(context.Background(), &workforce.ShiftJob{ID: id, ShiftID: shiftID, JobID: jobID}); err != nil {
		t.Fatalf("link job: %v", err)
	}
}

func dateOf(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
