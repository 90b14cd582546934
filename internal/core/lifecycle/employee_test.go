package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

func TestService_CreateEmployee_NormalizesSSNAndPhone(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	e, outcome, err := h.svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FirstName:   "  Ed ",
		LastName:    "Gruberman",
		DateOfBirth: h.daysFromToday(0).AddDate(-20, 0, 0),
		SSN:         "123-45-6789",
		Phone:       "(412) 268-3259",
	})
	requireCommitted(t, outcome, err)

	if outcome.Effect != EffectCreated {
		t.Fatalf("expected created effect, got %s", outcome.Effect)
	}
	if e.SSN != "123456789" {
		t.Fatalf("expected normalized ssn, got %s", e.SSN)
	}
	if e.Phone != "4122683259" {
		t.Fatalf("expected normalized phone, got %s", e.Phone)
	}
	if e.FirstName != "Ed" || e.Role != workforce.RoleEmployee || !e.Active {
		t.Fatalf("unexpected defaults: %+v", e)
	}

	other, outcome, err := h.svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FirstName:   "Cindy",
		LastName:    "Crawford",
		DateOfBirth: h.daysFromToday(0).AddDate(-30, 0, 0),
		SSN:         "987654321",
		Phone:       "4122683259",
	})
	requireCommitted(t, outcome, err)
	if other.Phone != e.Phone {
		t.Fatalf("expected both phone formats to store the same value, got %s and %s", other.Phone, e.Phone)
	}
}

func TestService_CreateEmployee_RejectsInvalidFields(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	e, outcome, err := h.svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		LastName:    "Gruberman",
		DateOfBirth: h.daysFromToday(0).AddDate(-10, 0, 0),
		SSN:         "12-345-678",
		Role:        workforce.Role("owner"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e != nil {
		t.Fatalf("expected nil employee, got %+v", e)
	}
	if outcome.Kind != OutcomeRejectedValidation {
		t.Fatalf("expected rejected_validation, got %s", outcome.Kind)
	}
	for _, field := range []string{"first_name", "date_of_birth", "ssn", "role"} {
		if !outcome.FieldErrors.Has(field) {
			t.Errorf("expected error on %s, got %v", field, outcome.FieldErrors)
		}
	}

	list, err := h.svc.ListEmployees(context.Background(), workforce.Employees())
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected nothing persisted, got %d", len(list))
	}
}

func TestService_CreateEmployee_DuplicateSSN(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	dob := dateOf(1990, time.January, 1)
	first := h.employee(t, "Ed", "Gruberman", dob)

	_, outcome, err := h.svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FirstName:   "Cindy",
		LastName:    "Crawford",
		DateOfBirth: dob,
		SSN:         first.SSN[:3] + " " + first.SSN[3:5] + " " + first.SSN[5:],
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.FieldErrors["ssn"] != "has already been taken" {
		t.Fatalf("expected duplicate ssn error, got %+v", outcome)
	}
}

func TestService_UpdateEmployee(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	e := h.employee(t, "Ed", "Gruberman", dateOf(1990, time.January, 1))

	phone := "412.268.3259"
	role := workforce.RoleManager
	updated, outcome, err := h.svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: e.ID, Phone: &phone, Role: &role})
	requireCommitted(t, outcome, err)
	if updated.Phone != "4122683259" || updated.Role != workforce.RoleManager {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	bad := "nope"
	_, outcome, err = h.svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: e.ID, SSN: &bad})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.FieldErrors.Has("ssn") {
		t.Fatalf("expected ssn error, got %+v", outcome)
	}

	if _, _, err := h.svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: "missing"}); !errors.Is(err, workforce.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if _, _, err := h.svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{}); !errors.Is(err, workforce.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestService_DeleteEmployee_WithoutWorkedShiftsHardDeletes(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	e := h.employee(t, "Ed", "Gruberman", dateOf(1990, time.January, 1))
	store := h.storeNamed(t, "CMU")
	a := h.assignment(t, e.ID, store.ID, h.daysFromToday(-10))
	h.seedShift(t, "shift-upcoming", a.ID, h.daysFromToday(3))
	if _, outcome, err := h.svc.CreateAccount(ctx, CreateAccountInput{EmployeeID: e.ID, Email: "ed@example.com"}); err != nil || !outcome.Committed() {
		t.Fatalf("CreateAccount failed: %+v %v", outcome, err)
	}

	outcome, err := h.svc.DeleteEmployee(ctx, DeleteInput{ID: e.ID})
	requireCommitted(t, outcome, err)
	if outcome.Kind != OutcomeCommitted || outcome.Effect != EffectDeleted {
		t.Fatalf("expected hard delete, got %+v", outcome)
	}
	want := Cascade{AssignmentsDeleted: 1, ShiftsDeleted: 1, AccountsDeleted: 1}
	if outcome.Cascade != want {
		t.Fatalf("expected cascade %+v, got %+v", want, outcome.Cascade)
	}

	if _, err := h.svc.GetEmployee(ctx, e.ID); !errors.Is(err, workforce.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if _, err := h.repos.Accounts.FindByEmployee(ctx, e.ID); !errors.Is(err, workforce.ErrAccountNotFound) {
		t.Fatalf("expected account to be deleted, got %v", err)
	}
	if _, err := h.svc.GetAssignment(ctx, a.ID); !errors.Is(err, workforce.ErrAssignmentNotFound) {
		t.Fatalf("expected assignment to be deleted, got %v", err)
	}
}

func TestService_DeleteEmployee_WithWorkedShiftsDeactivates(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	e := h.employee(t, "Ed", "Gruberman", dateOf(1990, time.January, 1))
	store := h.storeNamed(t, "CMU")
	a := h.assignment(t, e.ID, store.ID, h.daysFromToday(-10))
	h.seedShift(t, "shift-worked", a.ID, h.daysFromToday(-2))
	h.seedShift(t, "shift-today", a.ID, h.daysFromToday(0))
	h.seedShift(t, "shift-upcoming", a.ID, h.daysFromToday(4))

	outcome, err := h.svc.DeleteEmployee(ctx, DeleteInput{ID: e.ID})
	requireCommitted(t, outcome, err)
	if outcome.Kind != OutcomeCommittedAsDeactivation || outcome.Effect != EffectDeactivated {
		t.Fatalf("expected deactivation, got %+v", outcome)
	}

	got, err := h.svc.GetEmployee(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}
	if got.Active {
		t.Fatalf("expected employee to be inactive")
	}

	terminated, err := h.svc.GetAssignment(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAssignment returned error: %v", err)
	}
	if terminated.EndDate == nil || !terminated.EndDate.Equal(h.daysFromToday(0)) {
		t.Fatalf("expected assignment to end today, got %v", terminated.EndDate)
	}

	remaining, err := h.svc.ListShifts(ctx, workforce.Shifts().ForEmployee(e.ID))
	if err != nil {
		t.Fatalf("ListShifts returned error: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "shift-worked" {
		t.Fatalf("expected only the worked shift to remain, got %+v", remaining)
	}
}

func TestService_CreateAccount(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	e := h.employee(t, "Ed", "Gruberman", dateOf(1990, time.January, 1))

	account, outcome, err := h.svc.CreateAccount(ctx, CreateAccountInput{EmployeeID: e.ID, Email: " Ed@Example.com "})
	requireCommitted(t, outcome, err)
	if account.Email != "ed@example.com" {
		t.Fatalf("expected normalized email, got %s", account.Email)
	}

	_, outcome, err = h.svc.CreateAccount(ctx, CreateAccountInput{EmployeeID: e.ID, Email: "ed@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.FieldErrors["email"] != "has already been taken" || !outcome.FieldErrors.Has("employee_id") {
		t.Fatalf("expected duplicate errors, got %+v", outcome)
	}

	_, outcome, err = h.svc.CreateAccount(ctx, CreateAccountInput{EmployeeID: "missing", Email: "x@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.FieldErrors["employee_id"] != "is not active in the system" {
		t.Fatalf("expected inactive employee error, got %+v", outcome)
	}
}

func TestService_EmployeeProfile(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	e := h.employee(t, "Ed", "Gruberman", dateOf(2007, time.June, 16))
	store := h.storeNamed(t, "CMU")
	a := h.assignment(t, e.ID, store.ID, h.daysFromToday(-10))

	profile, err := h.svc.EmployeeProfile(ctx, e.ID)
	if err != nil {
		t.Fatalf("EmployeeProfile returned error: %v", err)
	}
	if profile.DisplayName != "Gruberman, Ed" || profile.ProperName != "Ed Gruberman" {
		t.Fatalf("unexpected names: %+v", profile)
	}
	if profile.Age != 17 || profile.Adult {
		t.Fatalf("expected 17 and not adult, got %d %v", profile.Age, profile.Adult)
	}
	if profile.CurrentAssignment == nil || profile.CurrentAssignment.ID != a.ID {
		t.Fatalf("expected current assignment %s, got %+v", a.ID, profile.CurrentAssignment)
	}

	again, err := h.svc.EmployeeProfile(ctx, e.ID)
	if err != nil {
		t.Fatalf("EmployeeProfile returned error: %v", err)
	}
	if again.Age != profile.Age {
		t.Fatalf("expected age to be stable within a day, got %d and %d", profile.Age, again.Age)
	}

	h.clock.advance(24 * time.Hour)
	later, err := h.svc.EmployeeProfile(ctx, e.ID)
	if err != nil {
		t.Fatalf("EmployeeProfile returned error: %v", err)
	}
	if later.Age != 18 || !later.Adult {
		t.Fatalf("expected 18 and adult on birthday, got %d %v", later.Age, later.Adult)
	}
}
