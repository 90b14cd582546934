package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
	pgdb "github.com/ogurasousui/codex-grpc-workforce/internal/platform/db/postgres"
)

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *workforce.Employee) (*workforce.Employee, error) {
	if e == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (id, first_name, last_name, date_of_birth, ssn, phone, role, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+employeeColumns+`
    `,
		e.ID,
		e.FirstName,
		e.LastName,
		dateValue(e.DateOfBirth),
		e.SSN,
		nullableString(e.Phone),
		string(e.Role),
		e.Active,
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrEmployeeNotFound)
	}
	return created, nil
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *workforce.Employee) (*workforce.Employee, error) {
	if e == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET first_name = $1,
               last_name = $2,
               date_of_birth = $3,
               ssn = $4,
               phone = $5,
               role = $6,
               active = $7,
               updated_at = $8
         WHERE id = $9
        RETURNING `+employeeColumns+`
    `,
		e.FirstName,
		e.LastName,
		dateValue(e.DateOfBirth),
		e.SSN,
		nullableString(e.Phone),
		string(e.Role),
		e.Active,
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrEmployeeNotFound)
	}
	return updated, nil
}

// Delete は社員を削除します。アカウントや割り当てが残っている場合は ErrReferenced を返します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err, workforce.ErrEmployeeNotFound)
	}
	if tag.RowsAffected() == 0 {
		return workforce.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*workforce.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrEmployeeNotFound)
	}
	return found, nil
}

// FindBySSN は正規化済みの SSN で社員を取得します。
func (r *EmployeeRepository) FindBySSN(ctx context.Context, ssn string) (*workforce.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE ssn = $1
         LIMIT 1
    `, ssn)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrEmployeeNotFound)
	}
	return found, nil
}

// List は検索条件に一致する社員を取得します。
func (r *EmployeeRepository) List(ctx context.Context, query workforce.EmployeeQuery) ([]*workforce.Employee, error) {
	sqlText, args, err := buildEmployeeQuery(query)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrEmployeeNotFound)
	}
	defer rows.Close()

	employees := make([]*workforce.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, translatePgError(err, workforce.ErrEmployeeNotFound)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err, workforce.ErrEmployeeNotFound)
	}
	return employees, nil
}

func scanEmployee(row pgx.Row) (*workforce.Employee, error) {
	var (
		e     workforce.Employee
		dob   time.Time
		phone sql.NullString
		role  string
	)
	if err := row.Scan(
		&e.ID,
		&e.FirstName,
		&e.LastName,
		&dob,
		&e.SSN,
		&phone,
		&role,
		&e.Active,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workforce.ErrEmployeeNotFound
		}
		return nil, err
	}

	e.DateOfBirth = dateValue(dob)
	e.Phone = phone.String
	e.Role = workforce.Role(role)
	return &e, nil
}

// AccountRepository は PostgreSQL を利用したアカウント永続化の実装です。
type AccountRepository struct {
	pool pgdb.Queryer
}

// NewAccountRepository は AccountRepository を生成します。
func NewAccountRepository(pool pgdb.Queryer) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, employee_id, email, created_at, updated_at`

// Create はアカウントを新規作成します。
func (r *AccountRepository) Create(ctx context.Context, a *workforce.Account) (*workforce.Account, error) {
	if a == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO accounts (id, employee_id, email, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+accountColumns+`
    `, a.ID, a.EmployeeID, a.Email, a.CreatedAt, a.UpdatedAt)

	created, err := scanAccount(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrAccountNotFound)
	}
	return created, nil
}

// Delete はアカウントを削除します。
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err, workforce.ErrAccountNotFound)
	}
	if tag.RowsAffected() == 0 {
		return workforce.ErrAccountNotFound
	}
	return nil
}

// FindByEmployee は社員 ID でアカウントを取得します。
func (r *AccountRepository) FindByEmployee(ctx context.Context, employeeID string) (*workforce.Account, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+accountColumns+`
          FROM accounts
         WHERE employee_id = $1
         LIMIT 1
    `, employeeID)

	found, err := scanAccount(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrAccountNotFound)
	}
	return found, nil
}

// FindByEmail は正規化済みのメールアドレスでアカウントを取得します。
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*workforce.Account, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+accountColumns+`
          FROM accounts
         WHERE email = $1
         LIMIT 1
    `, email)

	found, err := scanAccount(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrAccountNotFound)
	}
	return found, nil
}

func scanAccount(row pgx.Row) (*workforce.Account, error) {
	var a workforce.Account
	if err := row.Scan(&a.ID, &a.EmployeeID, &a.Email, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workforce.ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// dateValue は時刻を切り捨てた UTC の日付を返します。
func dateValue(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableStringPtr(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return dateValue(*value)
}

func datePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	d := dateValue(value.Time.UTC())
	return &d
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}
