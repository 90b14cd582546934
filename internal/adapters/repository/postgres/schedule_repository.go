package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
	pgdb "github.com/ogurasousui/codex-grpc-workforce/internal/platform/db/postgres"
)

// AssignmentRepository は PostgreSQL を利用した割り当て永続化の実装です。
type AssignmentRepository struct {
	pool pgdb.Queryer
}

// NewAssignmentRepository は AssignmentRepository を生成します。
func NewAssignmentRepository(pool pgdb.Queryer) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

const assignmentReturning = `id, employee_id, store_id, pay_level, start_date, end_date, created_at, updated_at`

// Create は割り当てを新規作成します。
func (r *AssignmentRepository) Create(ctx context.Context, a *workforce.Assignment) (*workforce.Assignment, error) {
	if a == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO assignments (id, employee_id, store_id, pay_level, start_date, end_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+assignmentReturning+`
    `,
		a.ID,
		a.EmployeeID,
		a.StoreID,
		a.PayLevel,
		dateValue(a.StartDate),
		nullableDate(a.EndDate),
		a.CreatedAt,
		a.UpdatedAt,
	)

	created, err := scanAssignment(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrAssignmentNotFound)
	}
	return created, nil
}

// Update は割り当てを更新します。
func (r *AssignmentRepository) Update(ctx context.Context, a *workforce.Assignment) (*workforce.Assignment, error) {
	if a == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE assignments
           SET employee_id = $1,
               store_id = $2,
               pay_level = $3,
               start_date = $4,
               end_date = $5,
               updated_at = $6
         WHERE id = $7
        RETURNING `+assignmentReturning+`
    `,
		a.EmployeeID,
		a.StoreID,
		a.PayLevel,
		dateValue(a.StartDate),
		nullableDate(a.EndDate),
		a.UpdatedAt,
		a.ID,
	)

	updated, err := scanAssignment(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrAssignmentNotFound)
	}
	return updated, nil
}

// Delete は割り当てを削除します。シフトが残っている場合は ErrReferenced を返します。
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err, workforce.ErrAssignmentNotFound)
	}
	if tag.RowsAffected() == 0 {
		return workforce.ErrAssignmentNotFound
	}
	return nil
}

// FindByID は ID で割り当てを取得します。
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*workforce.Assignment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+assignmentReturning+`
          FROM assignments
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanAssignment(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrAssignmentNotFound)
	}
	return found, nil
}

// List は検索条件に一致する割り当てを取得します。
func (r *AssignmentRepository) List(ctx context.Context, query workforce.AssignmentQuery) ([]*workforce.Assignment, error) {
	sqlText, args := buildAssignmentQuery(query)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrAssignmentNotFound)
	}
	defer rows.Close()

	assignments := make([]*workforce.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, translatePgError(err, workforce.ErrAssignmentNotFound)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err, workforce.ErrAssignmentNotFound)
	}
	return assignments, nil
}

func scanAssignment(row pgx.Row) (*workforce.Assignment, error) {
	var (
		a     workforce.Assignment
		start time.Time
		end   sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.EmployeeID, &a.StoreID, &a.PayLevel, &start, &end, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workforce.ErrAssignmentNotFound
		}
		return nil, err
	}
	a.StartDate = dateValue(start)
	a.EndDate = datePtr(end)
	return &a, nil
}

// ShiftRepository は PostgreSQL を利用したシフト永続化の実装です。
type ShiftRepository struct {
	pool pgdb.Queryer
}

// NewShiftRepository は ShiftRepository を生成します。
func NewShiftRepository(pool pgdb.Queryer) *ShiftRepository {
	return &ShiftRepository{pool: pool}
}

const (
	shiftReturning   = `id, assignment_id, date, start_time, end_time, notes, created_at, updated_at`
	shiftJobColumns  = `id, shift_id, job_id, created_at`
	microsPerSecond  = int64(time.Second / time.Microsecond)
	microsPerDayTime = 24 * 60 * 60 * microsPerSecond
)

// Create はシフトを新規作成します。
func (r *ShiftRepository) Create(ctx context.Context, s *workforce.Shift) (*workforce.Shift, error) {
	if s == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO shifts (id, assignment_id, date, start_time, end_time, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+shiftReturning+`
    `,
		s.ID,
		s.AssignmentID,
		dateValue(s.Date),
		timeValue(s.StartTime),
		timeValue(s.EndTime),
		nullableStringPtr(s.Notes),
		s.CreatedAt,
		s.UpdatedAt,
	)

	created, err := scanShift(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrShiftNotFound)
	}
	return created, nil
}

// Update はシフトを更新します。
func (r *ShiftRepository) Update(ctx context.Context, s *workforce.Shift) (*workforce.Shift, error) {
	if s == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE shifts
           SET assignment_id = $1,
               date = $2,
               start_time = $3,
               end_time = $4,
               notes = $5,
               updated_at = $6
         WHERE id = $7
        RETURNING `+shiftReturning+`
    `,
		s.AssignmentID,
		dateValue(s.Date),
		timeValue(s.StartTime),
		timeValue(s.EndTime),
		nullableStringPtr(s.Notes),
		s.UpdatedAt,
		s.ID,
	)

	updated, err := scanShift(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrShiftNotFound)
	}
	return updated, nil
}

// Delete はシフトを削除します。職務との関連は外部キーの ON DELETE CASCADE で削除されます。
func (r *ShiftRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err, workforce.ErrShiftNotFound)
	}
	if tag.RowsAffected() == 0 {
		return workforce.ErrShiftNotFound
	}
	return nil
}

// FindByID は ID でシフトを取得します。
func (r *ShiftRepository) FindByID(ctx context.Context, id string) (*workforce.Shift, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+shiftReturning+`
          FROM shifts
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanShift(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrShiftNotFound)
	}
	return found, nil
}

// List は検索条件に一致するシフトを取得します。
func (r *ShiftRepository) List(ctx context.Context, query workforce.ShiftQuery) ([]*workforce.Shift, error) {
	sqlText, args, err := buildShiftQuery(query)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrShiftNotFound)
	}
	defer rows.Close()

	shifts := make([]*workforce.Shift, 0)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, translatePgError(err, workforce.ErrShiftNotFound)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err, workforce.ErrShiftNotFound)
	}
	return shifts, nil
}

// AddJob はシフトに職務を割り当てます。
func (r *ShiftRepository) AddJob(ctx context.Context, link *workforce.ShiftJob) (*workforce.ShiftJob, error) {
	if link == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO shift_jobs (id, shift_id, job_id, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING `+shiftJobColumns+`
    `, link.ID, link.ShiftID, link.JobID, link.CreatedAt)

	var created workforce.ShiftJob
	if err := row.Scan(&created.ID, &created.ShiftID, &created.JobID, &created.CreatedAt); err != nil {
		return nil, translatePgError(err, workforce.ErrShiftNotFound)
	}
	return &created, nil
}

// ListJobs はシフトに割り当てられた職務を登録順に取得します。
func (r *ShiftRepository) ListJobs(ctx context.Context, shiftID string) ([]*workforce.ShiftJob, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+shiftJobColumns+`
          FROM shift_jobs
         WHERE shift_id = $1
         ORDER BY id
    `, shiftID)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrShiftNotFound)
	}
	defer rows.Close()

	links := make([]*workforce.ShiftJob, 0)
	for rows.Next() {
		var link workforce.ShiftJob
		if err := rows.Scan(&link.ID, &link.ShiftID, &link.JobID, &link.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, &link)
	}
	return links, rows.Err()
}

func scanShift(row pgx.Row) (*workforce.Shift, error) {
	var (
		s          workforce.Shift
		date       time.Time
		start, end pgtype.Time
		notes      sql.NullString
	)
	if err := row.Scan(&s.ID, &s.AssignmentID, &date, &start, &end, &notes, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workforce.ErrShiftNotFound
		}
		return nil, err
	}
	s.Date = dateValue(date)
	s.StartTime = timeOfDayValue(start)
	s.EndTime = timeOfDayValue(end)
	s.Notes = stringPtr(notes)
	return &s, nil
}

// timeValue は TimeOfDay を PostgreSQL の time 型に変換します。
func timeValue(t temporal.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * microsPerSecond, Valid: true}
}

func timeOfDayValue(t pgtype.Time) temporal.TimeOfDay {
	if !t.Valid {
		return 0
	}
	// time 型は 24:00:00 を許容するため 1 日分で丸める
	return temporal.TimeOfDay((t.Microseconds % microsPerDayTime) / microsPerSecond)
}
