package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

func TestService_CreateAssignment_EndsPriorCurrentAssignment(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	e := h.employee(t, "Ed", "Gruberman", dateOf(1990, time.January, 1))
	cmu := h.storeNamed(t, "CMU")
	oakland := h.storeNamed(t, "Oakland")

	first := h.assignment(t, e.ID, cmu.ID, h.daysFromToday(-30))

	second, outcome, err := h.svc.CreateAssignment(ctx, CreateAssignmentInput{
		EmployeeID: e.ID,
		StoreID:    oakland.ID,
		PayLevel:   4,
		StartDate:  h.daysFromToday(-2),
	})
	requireCommitted(t, outcome, err)
	if outcome.Cascade.AssignmentsEnded != 1 {
		t.Fatalf("expected one prior assignment to end, got %+v", outcome.Cascade)
	}

	prior, err := h.svc.GetAssignment(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetAssignment returned error: %v", err)
	}
	if prior.EndDate == nil || !prior.EndDate.Equal(second.StartDate) {
		t.Fatalf("expected prior assignment to end at %v, got %v", second.StartDate, prior.EndDate)
	}

	current, err := h.svc.ListAssignments(ctx, workforce.Assignments().ForEmployee(e.ID).CurrentOnly())
	if err != nil {
		t.Fatalf("ListAssignments returned error: %v", err)
	}
	if len(current) != 1 || current[0].ID != second.ID {
		t.Fatalf("expected exactly the new assignment to be current, got %+v", current)
	}
}

func TestService_CreateAssignment_RemovesShiftsAfterPriorEnd(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	e := h.employee(t, "Ed", "Gruberman", dateOf(1990, time.January, 1))
	cmu := h.storeNamed(t, "CMU")
	oakland := h.storeNamed(t, "Oakland")

	first := h.assignment(t, e.ID, cmu.ID, h.daysFromToday(-30))
	h.seedShift(t, "shift-worked", first.ID, h.daysFromToday(-3))
	h.seedShift(t, "shift-today", first.ID, h.daysFromToday(0))
	h.seedShift(t, "shift-later", first.ID, h.daysFromToday(5))

	_, outcome, err := h.svc.CreateAssignment(ctx, CreateAssignmentInput{
		EmployeeID: e.ID,
		StoreID:    oakland.ID,
		PayLevel:   4,
		StartDate:  h.daysFromToday(0),
	})
	requireCommitted(t, outcome, err)
	if outcome.Cascade.AssignmentsEnded != 1 || outcome.Cascade.ShiftsDeleted != 1 {
		t.Fatalf("expected one ended assignment and one deleted shift, got %+v", outcome.Cascade)
	}

	prior, err := h.svc.GetAssignment(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetAssignment returned error: %v", err)
	}
	remaining, err := h.svc.ListShifts(ctx, workforce.Shifts().ForAssignment(first.ID))
	if err != nil {
		t.Fatalf("ListShifts returned error: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 remaining shifts, got %d", len(remaining))
	}
	for _, shift := range remaining {
		if shift.ID == "shift-later" {
			t.Fatalf("expected shift after the prior end date to be deleted")
		}
		if !prior.Covers(shift.Date) {
			t.Fatalf("shift %s on %s is outside the ended assignment", shift.ID, shift.Date.Format("2006-01-02"))
		}
	}

	atOldStore, err := h.svc.ListShifts(ctx, workforce.Shifts().ForStore(cmu.ID).Upcoming())
	if err != nil {
		t.Fatalf("ListShifts returned error: %v", err)
	}
	if len(atOldStore) != 1 || atOldStore[0].ID != "shift-today" {
		t.Fatalf("expected only today's shift at the old store, got %+v", atOldStore)
	}
}

func TestService_CreateAssignment_RejectsStartBeforeCurrent(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	e := h.employee(t, "Ed", "Gruberman", dateOf(1990, time.January, 1))
	cmu := h.storeNamed(t, "CMU")
	first := h.assignment(t, e.ID, cmu.ID, h.daysFromToday(-5))

	_, outcome, err := h.svc.CreateAssignment(ctx, CreateAssignmentInput{
		EmployeeID: e.ID,
		StoreID:    cmu.ID,
		PayLevel:   2,
		StartDate:  h.daysFromToday(-10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.FieldErrors.Has("start_date") {
		t.Fatalf("expected start_date error, got %+v", outcome)
	}

	unchanged, err := h.svc.GetAssignment(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetAssignment returned error: %v", err)
	}
	if !unchanged.IsCurrent() {
		t.Fatalf("expected existing assignment to remain current")
	}
}

func TestService_CreateAssignment_PayLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		payLevel int
		wantOK   bool
	}{
		{name: "lowest", payLevel: 1, wantOK: true},
		{name: "middle", payLevel: 3, wantOK: true},
		{name: "highest", payLevel: 6, wantOK: true},
		{name: "zero", payLevel: 0},
		{name: "above range", payLevel: 7},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			e := h.employee(t, "Ed", "Gruberman", dateOf(1990, time.January, 1))
			store := h.storeNamed(t, "CMU")

			_, outcome, err := h.svc.CreateAssignment(context.Background(), CreateAssignmentInput{
				EmployeeID: e.ID,
				StoreID:    store.ID,
				PayLevel:   tc.payLevel,
				StartDate:  h.daysFromToday(-1),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if outcome.Committed() != tc.wantOK {
				t.Fatalf("pay level %d: expected committed=%v, got %+v", tc.payLevel, tc.wantOK, outcome)
			}
			if !tc.wantOK && !outcome.FieldErrors.Has("pay_level") {
				t.Fatalf("expected pay_level error, got %+v", outcome.FieldErrors)
			}
		})
	}
}

func TestService_CreateAssignment_RejectsInactiveReferences(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	e := h.employee(t, "Ed", "Gruberman", dateOf(1990, time.January, 1))
	store := h.storeNamed(t, "CMU")
	if outcome, err := h.svc.DeleteStore(ctx, DeleteInput{ID: store.ID}); err != nil || !outcome.Committed() {
		t.Fatalf("DeleteStore failed: %+v %v", outcome, err)
	}

	_, outcome, err := h.svc.CreateAssignment(ctx, CreateAssignmentInput{
		EmployeeID: e.ID,
		StoreID:    store.ID,
		PayLevel:   1,
		StartDate:  h.daysFromToday(1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.FieldErrors["store_id"] != "is not active in the system" {
		t.Fatalf("expected inactive store error, got %+v", outcome.FieldErrors)
	}
	if !outcome.FieldErrors.Has("start_date") {
		t.Fatalf("expected future start_date error, got %+v", outcome.FieldErrors)
	}

	_, outcome, err = h.svc.CreateAssignment(ctx, CreateAssignmentInput{
		EmployeeID: "missing",
		StoreID:    store.ID,
		PayLevel:   1,
		StartDate:  h.daysFromToday(0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.FieldErrors.Has("employee_id") {
		t.Fatalf("expected employee_id error, got %+v", outcome.FieldErrors)
	}
}

func TestService_DeleteAssignment_WithWorkedShiftsTerminates(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	e := h.employee(t, "Ed", "Gruberman", dateOf(1990, time.January, 1))
	store := h.storeNamed(t, "CMU")
	a := h.assignment(t, e.ID, store.ID, h.daysFromToday(-14))
	h.seedShift(t, "shift-worked-1", a.ID, h.daysFromToday(-7))
	h.seedShift(t, "shift-worked-2", a.ID, h.daysFromToday(-1))
	h.seedShift(t, "shift-upcoming", a.ID, h.daysFromToday(2))

	outcome, err := h.svc.DeleteAssignment(ctx, DeleteInput{ID: a.ID})
	requireCommitted(t, outcome, err)
	if outcome.Kind != OutcomeCommittedAsDeactivation || outcome.Effect != EffectTerminated {
		t.Fatalf("expected termination, got %+v", outcome)
	}
	if outcome.Cascade.AssignmentsEnded != 1 || outcome.Cascade.ShiftsDeleted != 1 {
		t.Fatalf("unexpected cascade: %+v", outcome.Cascade)
	}

	got, err := h.svc.GetAssignment(ctx, a.ID)
	if err != nil {
		t.Fatalf("expected assignment to survive, got %v", err)
	}
	if got.EndDate == nil || !got.EndDate.Equal(h.daysFromToday(0)) {
		t.Fatalf("expected end date today, got %v", got.EndDate)
	}

	remaining, err := h.svc.ListShifts(ctx, workforce.Shifts().ForAssignment(a.ID))
	if err != nil {
		t.Fatalf("ListShifts returned error: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected both worked shifts to remain, got %d", len(remaining))
	}
	for _, s := range remaining {
		if s.ID == "shift-upcoming" {
			t.Fatalf("expected upcoming shift to be deleted")
		}
	}
}

func TestService_DeleteAssignment_WithoutWorkedShiftsDeletes(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	e := h.employee(t, "Ed", "Gruberman", dateOf(1990, time.January, 1))
	store := h.storeNamed(t, "CMU")
	a := h.assignment(t, e.ID, store.ID, h.daysFromToday(0))
	h.seedShift(t, "shift-today", a.ID, h.daysFromToday(0))
	h.seedShift(t, "shift-upcoming", a.ID, h.daysFromToday(3))

	outcome, err := h.svc.DeleteAssignment(ctx, DeleteInput{ID: a.ID})
	requireCommitted(t, outcome, err)
	if outcome.Kind != OutcomeCommitted || outcome.Effect != EffectDeleted {
		t.Fatalf("expected hard delete, got %+v", outcome)
	}
	if outcome.Cascade.ShiftsDeleted != 2 {
		t.Fatalf("expected two shifts deleted, got %+v", outcome.Cascade)
	}

	if _, err := h.svc.GetAssignment(ctx, a.ID); !errors.Is(err, workforce.ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
	remaining, err := h.svc.ListShifts(ctx, workforce.Shifts().ForAssignment(a.ID))
	if err != nil {
		t.Fatalf("ListShifts returned error: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no shifts, got %d", len(remaining))
	}
}

func TestService_TerminateAssignment(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	e := h.employee(t, "Ed", "Gruberman", dateOf(1990, time.January, 1))
	store := h.storeNamed(t, "CMU")
	a := h.assignment(t, e.ID, store.ID, h.daysFromToday(-3))
	h.seedShift(t, "shift-upcoming", a.ID, h.daysFromToday(1))

	terminated, outcome, err := h.svc.TerminateAssignment(ctx, TerminateAssignmentInput{ID: a.ID})
	requireCommitted(t, outcome, err)
	if outcome.Effect != EffectTerminated || outcome.Cascade.ShiftsDeleted != 1 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if terminated.IsCurrent() {
		t.Fatalf("expected assignment to be ended")
	}

	_, outcome, err = h.svc.TerminateAssignment(ctx, TerminateAssignmentInput{ID: a.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Kind != OutcomeRejectedPolicy {
		t.Fatalf("expected rejected_policy for ended assignment, got %+v", outcome)
	}

	if _, _, err := h.svc.TerminateAssignment(ctx, TerminateAssignmentInput{ID: "missing"}); !errors.Is(err, workforce.ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestService_ListAssignments_OrderedByStoreName(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	ed := h.employee(t, "Ed", "Gruberman", dateOf(1990, time.January, 1))
	cindy := h.employee(t, "Cindy", "Crawford", dateOf(1991, time.March, 2))
	oakland := h.storeNamed(t, "Oakland")
	cmu := h.storeNamed(t, "CMU")

	inOakland := h.assignment(t, ed.ID, oakland.ID, h.daysFromToday(-3))
	inCMU := h.assignment(t, cindy.ID, cmu.ID, h.daysFromToday(-3))

	list, err := h.svc.ListAssignments(ctx, workforce.Assignments().OrderedByStoreNameThenInsertion())
	if err != nil {
		t.Fatalf("ListAssignments returned error: %v", err)
	}
	if len(list) != 2 || list[0].ID != inCMU.ID || list[1].ID != inOakland.ID {
		t.Fatalf("expected CMU before Oakland, got %+v", list)
	}
}
