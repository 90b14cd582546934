package workforce

import (
	"testing"
	"time"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
)

func TestCurrentAssignment(t *testing.T) {
	t.Parallel()

	ended := date(2025, time.January, 1)
	list := []*Assignment{
		{ID: "a3", StartDate: date(2025, time.March, 1)},
		{ID: "a1", StartDate: date(2024, time.January, 1), EndDate: &ended},
		{ID: "a2", StartDate: date(2025, time.February, 1)},
	}

	got := CurrentAssignment(list)
	if got == nil || got.ID != "a2" {
		t.Fatalf("expected a2, got %+v", got)
	}
	if CurrentAssignment(list[1:2]) != nil {
		t.Fatalf("expected nil when only past assignments exist")
	}
	if CurrentAssignment(nil) != nil {
		t.Fatalf("expected nil for empty list")
	}
}

func TestEmployee_Names(t *testing.T) {
	t.Parallel()

	e := validEmployee()
	if e.DisplayName() != "Gruberman, Ed" {
		t.Fatalf("unexpected display name: %s", e.DisplayName())
	}
	if e.ProperName() != "Ed Gruberman" {
		t.Fatalf("unexpected proper name: %s", e.ProperName())
	}

	a := &Assignment{}
	if got := a.Name(e, validStore()); got != "Ed Gruberman, CMU" {
		t.Fatalf("unexpected assignment name: %s", got)
	}
}

func TestEmployee_AgeAndAdult(t *testing.T) {
	t.Parallel()

	e := validEmployee()
	e.DateOfBirth = date(2007, time.June, 16)
	if e.Age(testAsOf) != 17 || e.IsAdult(testAsOf) {
		t.Fatalf("expected 17 and not adult, got %d", e.Age(testAsOf))
	}

	birthday := temporal.At(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), time.UTC)
	if e.Age(birthday) != 18 || !e.IsAdult(birthday) {
		t.Fatalf("expected 18 and adult on birthday, got %d", e.Age(birthday))
	}
}

func TestShift_IsCompleted(t *testing.T) {
	t.Parallel()

	s := &Shift{Date: testAsOf.DaysFromToday(-1)}
	if !s.IsCompleted(testAsOf) {
		t.Fatalf("expected yesterday's shift to be completed")
	}

	s.Date = testAsOf.Today()
	if s.IsCompleted(testAsOf) {
		t.Fatalf("expected today's shift to be incomplete")
	}

	tomorrow := temporal.At(testAsOf.Now().Add(24*time.Hour), time.UTC)
	if !s.IsCompleted(tomorrow) {
		t.Fatalf("expected completion to be re-evaluated against a later as-of")
	}
}
