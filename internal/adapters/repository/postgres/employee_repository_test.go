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
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
	pgdb "github.com/ogurasousui/codex-grpc-workforce/internal/platform/db/postgres"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

type stubRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

var employeeRowColumns = []string{"id", "first_name", "last_name", "date_of_birth", "ssn", "phone", "role", "active", "created_at", "updated_at"}

func TestScanEmployee_Success(t *testing.T) {
	t.Parallel()

	dob := time.Date(1990, time.March, 4, 0, 0, 0, 0, time.UTC)
	createdAt := time.Now().UTC()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 10 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "emp-1"
		*(dest[1].(*string)) = "Ed"
		*(dest[2].(*string)) = "Gruberman"
		*(dest[3].(*time.Time)) = dob
		*(dest[4].(*string)) = "123456789"

		phone := dest[5].(*sql.NullString)
		phone.String = "4122683259"
		phone.Valid = true

		*(dest[6].(*string)) = string(workforce.RoleManager)
		*(dest[7].(*bool)) = true
		*(dest[8].(*time.Time)) = createdAt
		*(dest[9].(*time.Time)) = createdAt
		return nil
	}}

	e, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}
	if e.Phone != "4122683259" {
		t.Fatalf("expected phone, got %q", e.Phone)
	}
	if e.Role != workforce.RoleManager {
		t.Fatalf("expected manager role, got %s", e.Role)
	}
	if !e.DateOfBirth.Equal(dob) {
		t.Fatalf("expected date of birth %v, got %v", dob, e.DateOfBirth)
	}
}

func TestScanEmployee_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanEmployee(row)
	if !errors.Is(err, workforce.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestEmployeeRepository_List_AdultsAlphabetical(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	asOf := temporal.At(time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC), time.UTC)
	threshold := time.Date(2007, time.June, 15, 0, 0, 0, 0, time.UTC)

	query := regexp.QuoteMeta(`
        SELECT id, first_name, last_name, date_of_birth, ssn, phone, role, active, created_at, updated_at
          FROM employees
         WHERE date_of_birth <= $1 AND active = TRUE
         ORDER BY last_name, first_name, id
         LIMIT $2
    `)

	now := time.Now().UTC()
	rows := pgxmock.NewRows(employeeRowColumns).
		AddRow("emp-1", "Ed", "Gruberman", time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC), "123456789", nil, "employee", true, now, now).
		AddRow("emp-2", "Cindy", "Crawford", time.Date(1985, time.May, 2, 0, 0, 0, 0, time.UTC), "987654321", "4122683259", "manager", true, now, now)

	mock.ExpectQuery(query).
		WithArgs(threshold, 10).
		WillReturnRows(rows)

	employees, err := repo.List(context.Background(), workforce.Employees().
		AsOf(asOf).
		AdultsOnly().
		Active().
		AlphabeticalByLastThenFirst().
		Limited(10))
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(employees))
	}
	if employees[0].Phone != "" || employees[1].Phone != "4122683259" {
		t.Fatalf("unexpected phones: %q %q", employees[0].Phone, employees[1].Phone)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_List_RequiresAsOf(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	if _, err := repo.List(context.Background(), workforce.Employees().YoungerThan18()); !errors.Is(err, workforce.ErrMissingAsOf) {
		t.Fatalf("expected ErrMissingAsOf, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_Create_DuplicateSSN(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	now := time.Now().UTC()
	e := &workforce.Employee{
		ID:          "emp-1",
		FirstName:   "Ed",
		LastName:    "Gruberman",
		DateOfBirth: time.Date(1990, time.January, 1, 15, 0, 0, 0, time.UTC),
		SSN:         "123456789",
		Role:        workforce.RoleEmployee,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO employees`)).
		WithArgs("emp-1", "Ed", "Gruberman", time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC), "123456789", nil, "employee", true, now, now).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_ssn_key"})

	if _, err := repo.Create(context.Background(), e); !errors.Is(err, workforce.ErrSSNAlreadyExists) {
		t.Fatalf("expected ErrSSNAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_Delete(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	deleteSQL := regexp.QuoteMeta(`DELETE FROM employees WHERE id = $1`)

	mock.ExpectExec(deleteSQL).WithArgs("emp-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(deleteSQL).WithArgs("missing").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(deleteSQL).WithArgs("emp-2").WillReturnError(&pgconn.PgError{
		Code:           foreignKeyViolationCode,
		ConstraintName: "assignments_employee_id_fkey",
		TableName:      "employees",
	})

	ctx := context.Background()
	if err := repo.Delete(ctx, "emp-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, workforce.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "emp-2"); !errors.Is(err, ErrReferenced) {
		t.Fatalf("expected ErrReferenced, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_FindByEmail(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)
	now := time.Now().UTC()
	query := regexp.QuoteMeta(`FROM accounts WHERE email = $1`)

	mock.ExpectQuery(query).
		WithArgs("ed@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "employee_id", "email", "created_at", "updated_at"}).
			AddRow("acc-1", "emp-1", "ed@example.com", now, now))
	mock.ExpectQuery(query).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	ctx := context.Background()
	a, err := repo.FindByEmail(ctx, "ed@example.com")
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}
	if a.EmployeeID != "emp-1" {
		t.Fatalf("expected emp-1, got %s", a.EmployeeID)
	}
	if _, err := repo.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, workforce.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_UsesTransactionFromContext(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM employees`)).WithArgs("emp-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	repo := NewEmployeeRepository(mock)
	tm := pgdb.NewTransactionManager(mock)
	err = tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		return repo.Delete(ctx, "emp-1")
	})
	if err != nil {
		t.Fatalf("WithinReadWrite returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
