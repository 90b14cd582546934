package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

var testAsOf = temporal.At(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC), time.UTC)

func seed(t *testing.T, repos workforce.Repositories) {
	t.Helper()
	ctx := context.Background()

	if _, err := repos.Employees.Create(ctx, &workforce.Employee{ID: "e1", FirstName: "Ed", LastName: "Gruberman", SSN: "084359822", Role: workforce.RoleEmployee, Active: true}); err != nil {
		t.Fatalf("create employee: %v", err)
	}
	if _, err := repos.Stores.Create(ctx, &workforce.Store{ID: "s1", Name: "CMU", Active: true}); err != nil {
		t.Fatalf("create store: %v", err)
	}
	if _, err := repos.Assignments.Create(ctx, &workforce.Assignment{ID: "a1", EmployeeID: "e1", StoreID: "s1", PayLevel: 1, StartDate: testAsOf.DaysFromToday(-30)}); err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	if _, err := repos.Jobs.Create(ctx, &workforce.Job{ID: "j1", Name: "Mopping", Active: true}); err != nil {
		t.Fatalf("create job: %v", err)
	}
	for _, s := range []*workforce.Shift{
		{ID: "sh1", AssignmentID: "a1", Date: testAsOf.DaysFromToday(-1), StartTime: temporal.NewTimeOfDay(9, 0, 0), EndTime: temporal.NewTimeOfDay(12, 0, 0)},
		{ID: "sh2", AssignmentID: "a1", Date: testAsOf.DaysFromToday(2), StartTime: temporal.NewTimeOfDay(9, 0, 0), EndTime: temporal.NewTimeOfDay(12, 0, 0)},
	} {
		if _, err := repos.Shifts.Create(ctx, s); err != nil {
			t.Fatalf("create shift: %v", err)
		}
	}
	if _, err := repos.Shifts.AddJob(ctx, &workforce.ShiftJob{ID: "sj1", ShiftID: "sh1", JobID: "j1"}); err != nil {
		t.Fatalf("add job: %v", err)
	}
}

func TestStore_RollbackDiscardsWrites(t *testing.T) {
	t.Parallel()

	store := NewStore()
	repos := store.Repositories()
	seed(t, repos)

	boom := errors.New("boom")
	err := store.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		if err := repos.Shifts.Delete(ctx, "sh2"); err != nil {
			return err
		}
		if _, err := repos.Shifts.FindByID(ctx, "sh2"); !errors.Is(err, workforce.ErrShiftNotFound) {
			t.Fatalf("expected shift to be gone inside transaction, got %v", err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := repos.Shifts.FindByID(context.Background(), "sh2"); err != nil {
		t.Fatalf("expected shift to survive rollback, got %v", err)
	}
}

func TestStore_CommitKeepsWrites(t *testing.T) {
	t.Parallel()

	store := NewStore()
	repos := store.Repositories()
	seed(t, repos)

	err := store.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		return repos.Shifts.Delete(ctx, "sh2")
	})
	if err != nil {
		t.Fatalf("WithinReadWrite returned error: %v", err)
	}
	if _, err := repos.Shifts.FindByID(context.Background(), "sh2"); !errors.Is(err, workforce.ErrShiftNotFound) {
		t.Fatalf("expected ErrShiftNotFound, got %v", err)
	}
}

func TestStore_ReadOnlyRejectsWrites(t *testing.T) {
	t.Parallel()

	store := NewStore()
	repos := store.Repositories()
	seed(t, repos)

	err := store.WithinReadOnly(context.Background(), func(ctx context.Context) error {
		return repos.Shifts.Delete(ctx, "sh2")
	})
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

func TestShiftRepository_DeleteRemovesJobLinks(t *testing.T) {
	t.Parallel()

	store := NewStore()
	repos := store.Repositories()
	seed(t, repos)
	ctx := context.Background()

	if err := repos.Shifts.Delete(ctx, "sh1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	links, err := repos.Shifts.ListJobs(ctx, "sh1")
	if err != nil {
		t.Fatalf("ListJobs returned error: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("expected links to be removed, got %d", len(links))
	}
}

func TestShiftRepository_ListEvaluatesQuery(t *testing.T) {
	t.Parallel()

	store := NewStore()
	repos := store.Repositories()
	seed(t, repos)
	ctx := context.Background()

	worked, err := repos.Shifts.List(ctx, workforce.Shifts().AsOf(testAsOf).ForJob("j1").Completed())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(worked) != 1 || worked[0].ID != "sh1" {
		t.Fatalf("expected sh1, got %+v", worked)
	}

	if _, err := repos.Shifts.List(ctx, workforce.Shifts().Upcoming()); !errors.Is(err, workforce.ErrMissingAsOf) {
		t.Fatalf("expected ErrMissingAsOf, got %v", err)
	}
}

func TestRepositories_UniqueConstraints(t *testing.T) {
	t.Parallel()

	store := NewStore()
	repos := store.Repositories()
	seed(t, repos)
	ctx := context.Background()

	if _, err := repos.Employees.Create(ctx, &workforce.Employee{ID: "e2", SSN: "084359822"}); !errors.Is(err, workforce.ErrSSNAlreadyExists) {
		t.Fatalf("expected ErrSSNAlreadyExists, got %v", err)
	}
	if _, err := repos.Stores.Create(ctx, &workforce.Store{ID: "s2", Name: "CMU"}); !errors.Is(err, workforce.ErrStoreNameAlreadyExists) {
		t.Fatalf("expected ErrStoreNameAlreadyExists, got %v", err)
	}
	if _, err := repos.Shifts.AddJob(ctx, &workforce.ShiftJob{ID: "sj2", ShiftID: "sh1", JobID: "j1"}); !errors.Is(err, workforce.ErrShiftJobAlreadyExists) {
		t.Fatalf("expected ErrShiftJobAlreadyExists, got %v", err)
	}
}

func TestRepositories_DeleteRestrictsReferencedRows(t *testing.T) {
	t.Parallel()

	store := NewStore()
	repos := store.Repositories()
	seed(t, repos)
	ctx := context.Background()

	if err := repos.Assignments.Delete(ctx, "a1"); err == nil {
		t.Fatalf("expected assignment with shifts to be protected")
	}
	if err := repos.Employees.Delete(ctx, "e1"); err == nil {
		t.Fatalf("expected employee with assignments to be protected")
	}

	if err := repos.Jobs.Delete(ctx, "j1"); err != nil {
		t.Fatalf("Delete job returned error: %v", err)
	}
	links, err := repos.Shifts.ListJobs(ctx, "sh1")
	if err != nil {
		t.Fatalf("ListJobs returned error: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("expected job links to be removed, got %d", len(links))
	}
}

func TestRepositories_ReturnCopies(t *testing.T) {
	t.Parallel()

	store := NewStore()
	repos := store.Repositories()
	seed(t, repos)
	ctx := context.Background()

	a, err := repos.Assignments.FindByID(ctx, "a1")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	end := testAsOf.Today()
	a.EndDate = &end

	again, err := repos.Assignments.FindByID(ctx, "a1")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if again.EndDate != nil {
		t.Fatalf("expected stored assignment to be unaffected by caller mutation")
	}
}
