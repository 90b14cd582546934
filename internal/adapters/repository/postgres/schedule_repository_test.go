package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var assignmentRowColumns = []string{"id", "employee_id", "store_id", "pay_level", "start_date", "end_date", "created_at", "updated_at"}

func TestScanShift_ConvertsTimes(t *testing.T) {
	t.Parallel()

	date := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 8 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "shift-1"
		*(dest[1].(*string)) = "asg-1"
		*(dest[2].(*time.Time)) = date
		*(dest[3].(*pgtype.Time)) = pgtype.Time{Microseconds: int64(9*time.Hour/time.Microsecond) + 15*60*1e6, Valid: true}
		*(dest[4].(*pgtype.Time)) = pgtype.Time{Microseconds: int64(12*time.Hour/time.Microsecond) + 30*60*1e6, Valid: true}
		notes := dest[5].(*sql.NullString)
		notes.String = "covering for Kelly"
		notes.Valid = true
		*(dest[6].(*time.Time)) = now
		*(dest[7].(*time.Time)) = now
		return nil
	}}

	s, err := scanShift(row)
	if err != nil {
		t.Fatalf("scanShift returned error: %v", err)
	}
	if s.StartTime != temporal.NewTimeOfDay(9, 15, 0) {
		t.Fatalf("expected 09:15, got %s", s.StartTime)
	}
	if s.EndTime != temporal.NewTimeOfDay(12, 30, 0) {
		t.Fatalf("expected 12:30, got %s", s.EndTime)
	}
	if s.Notes == nil || *s.Notes != "covering for Kelly" {
		t.Fatalf("expected notes, got %+v", s.Notes)
	}
}

func TestScanShift_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	if _, err := scanShift(row); !errors.Is(err, workforce.ErrShiftNotFound) {
		t.Fatalf("expected ErrShiftNotFound, got %v", err)
	}
}

func TestTimeValue_RoundTrip(t *testing.T) {
	t.Parallel()

	cases := []temporal.TimeOfDay{
		temporal.NewTimeOfDay(0, 0, 0),
		temporal.NewTimeOfDay(9, 0, 0),
		temporal.NewTimeOfDay(23, 59, 59),
	}
	for _, tc := range cases {
		got := timeOfDayValue(timeValue(tc))
		if got != tc {
			t.Fatalf("expected %s, got %s", tc, got)
		}
	}

	if got := timeOfDayValue(pgtype.Time{Microseconds: microsPerDayTime, Valid: true}); got != 0 {
		t.Fatalf("expected 24:00 to wrap to 00:00, got %s", got)
	}
	if got := timeOfDayValue(pgtype.Time{}); got != 0 {
		t.Fatalf("expected null time to be zero, got %s", got)
	}
}

func TestAssignmentRepository_List_CurrentForStore(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAssignmentRepository(mock)
	query := regexp.QuoteMeta(`
        SELECT a.id, a.employee_id, a.store_id, a.pay_level, a.start_date, a.end_date, a.created_at, a.updated_at
          FROM assignments a
          JOIN employees e ON e.id = a.employee_id
          JOIN stores s ON s.id = a.store_id
         WHERE a.end_date IS NULL AND a.store_id = $1
         ORDER BY e.last_name, e.first_name, a.id
    `)

	now := time.Now().UTC()
	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	ended := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(assignmentRowColumns).
		AddRow("asg-1", "emp-1", "store-1", 3, start, nil, now, now).
		AddRow("asg-2", "emp-2", "store-1", 1, start, ended, now, now)

	mock.ExpectQuery(query).
		WithArgs("store-1").
		WillReturnRows(rows)

	assignments, err := repo.List(context.Background(), workforce.Assignments().
		CurrentOnly().
		ForStore("store-1").
		OrderedByEmployeeLastThenFirstName())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assignments))
	}
	if !assignments[0].IsCurrent() {
		t.Fatalf("expected first assignment to be current")
	}
	if assignments[1].EndDate == nil || !assignments[1].EndDate.Equal(ended) {
		t.Fatalf("expected end date %v, got %+v", ended, assignments[1].EndDate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignmentRepository_Create_MissingStore(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAssignmentRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO assignments`)).
		WithArgs("asg-1", "emp-1", "store-x", 2, time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC), nil, now, now).
		WillReturnError(&pgconn.PgError{
			Code:           foreignKeyViolationCode,
			ConstraintName: "assignments_store_id_fkey",
			TableName:      "assignments",
		})

	_, err = repo.Create(context.Background(), &workforce.Assignment{
		ID:         "asg-1",
		EmployeeID: "emp-1",
		StoreID:    "store-x",
		PayLevel:   2,
		StartDate:  time.Date(2025, time.January, 6, 8, 30, 0, 0, time.UTC),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if !errors.Is(err, workforce.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignmentRepository_Delete_WithShifts(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAssignmentRepository(mock)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM assignments WHERE id = $1`)).
		WithArgs("asg-1").
		WillReturnError(&pgconn.PgError{
			Code:           foreignKeyViolationCode,
			ConstraintName: "shifts_assignment_id_fkey",
			TableName:      "assignments",
		})

	if err := repo.Delete(context.Background(), "asg-1"); !errors.Is(err, ErrReferenced) {
		t.Fatalf("expected ErrReferenced, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestShiftRepository_List_RequiresAsOf(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewShiftRepository(mock)
	if _, err := repo.List(context.Background(), workforce.Shifts().Completed()); !errors.Is(err, workforce.ErrMissingAsOf) {
		t.Fatalf("expected ErrMissingAsOf, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestShiftRepository_Create_WritesTimeColumns(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewShiftRepository(mock)
	now := time.Now().UTC()
	date := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	start := temporal.NewTimeOfDay(9, 0, 0)
	end := temporal.NewTimeOfDay(12, 0, 0)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO shifts`)).
		WithArgs("shift-1", "asg-x", date, timeValue(start), timeValue(end), nil, now, now).
		WillReturnError(&pgconn.PgError{
			Code:           foreignKeyViolationCode,
			ConstraintName: "shifts_assignment_id_fkey",
			TableName:      "shifts",
		})

	_, err = repo.Create(context.Background(), &workforce.Shift{
		ID:           "shift-1",
		AssignmentID: "asg-x",
		Date:         date,
		StartTime:    start,
		EndTime:      end,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if !errors.Is(err, workforce.ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestShiftRepository_AddJob_Duplicate(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewShiftRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO shift_jobs`)).
		WithArgs("sj-1", "shift-1", "job-1", now).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "shift_jobs_shift_id_job_id_key"})

	_, err = repo.AddJob(context.Background(), &workforce.ShiftJob{ID: "sj-1", ShiftID: "shift-1", JobID: "job-1", CreatedAt: now})
	if !errors.Is(err, workforce.ErrShiftJobAlreadyExists) {
		t.Fatalf("expected ErrShiftJobAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestShiftRepository_ListJobs(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewShiftRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM shift_jobs WHERE shift_id = $1 ORDER BY id`)).
		WithArgs("shift-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "shift_id", "job_id", "created_at"}).
			AddRow("sj-1", "shift-1", "job-1", now).
			AddRow("sj-2", "shift-1", "job-2", now))

	links, err := repo.ListJobs(context.Background(), "shift-1")
	if err != nil {
		t.Fatalf("ListJobs returned error: %v", err)
	}
	if len(links) != 2 || links[1].JobID != "job-2" {
		t.Fatalf("unexpected links: %+v", links)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
