package postgres

import (
	"strconv"
	"strings"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

// queryArgs はプレースホルダ番号を採番しながら引数を蓄積します。
type queryArgs struct {
	values     []any
	conditions []string
}

func (a *queryArgs) add(value any) string {
	a.values = append(a.values, value)
	return "$" + strconv.Itoa(len(a.values))
}

func (a *queryArgs) where(condition string) {
	a.conditions = append(a.conditions, condition)
}

func (a *queryArgs) whereClause() string {
	if len(a.conditions) == 0 {
		return ""
	}
	return "\n         WHERE " + strings.Join(a.conditions, " AND ")
}

func (a *queryArgs) limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return "\n         LIMIT " + a.add(limit)
}

const assignmentColumns = `a.id, a.employee_id, a.store_id, a.pay_level, a.start_date, a.end_date, a.created_at, a.updated_at`

// buildAssignmentQuery は割り当ての検索条件を SQL に変換します。
func buildAssignmentQuery(q workforce.AssignmentQuery) (string, []any) {
	args := &queryArgs{}
	for _, f := range q.Filters() {
		switch f.Kind {
		case workforce.AssignmentCurrent:
			args.where("a.end_date IS NULL")
		case workforce.AssignmentPast:
			args.where("a.end_date IS NOT NULL")
		case workforce.AssignmentForStore:
			args.where("a.store_id = " + args.add(f.ID))
		case workforce.AssignmentForEmployee:
			args.where("a.employee_id = " + args.add(f.ID))
		case workforce.AssignmentForPayLevel:
			args.where("a.pay_level = " + args.add(f.PayLevel))
		case workforce.AssignmentForRole:
			args.where("e.role = " + args.add(string(f.Role)))
		}
	}

	var order string
	switch q.Ordering() {
	case workforce.AssignmentOrderByStoreName:
		order = "s.name, a.id"
	case workforce.AssignmentOrderByStartDate:
		order = "a.start_date, a.id"
	case workforce.AssignmentOrderByEmployeeName:
		order = "e.last_name, e.first_name, a.id"
	default:
		order = "a.id"
	}

	query := `
        SELECT ` + assignmentColumns + `
          FROM assignments a
          JOIN employees e ON e.id = a.employee_id
          JOIN stores s ON s.id = a.store_id` + args.whereClause() + `
         ORDER BY ` + order + args.limitClause(q.Limit())
	return query, args.values
}

const shiftColumns = `sh.id, sh.assignment_id, sh.date, sh.start_time, sh.end_time, sh.notes, sh.created_at, sh.updated_at`

// buildShiftQuery はシフトの検索条件を SQL に変換します。日付条件は基準日をパラメータとして渡します。
func buildShiftQuery(q workforce.ShiftQuery) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	today, _ := q.Today()

	args := &queryArgs{}
	for _, f := range q.Filters() {
		switch f.Kind {
		case workforce.ShiftCompleted:
			args.where("sh.date < " + args.add(today))
		case workforce.ShiftIncomplete:
			args.where("sh.date >= " + args.add(today))
		case workforce.ShiftNextDays:
			args.where("sh.date > " + args.add(today))
			args.where("sh.date <= " + args.add(today.AddDate(0, 0, f.Days)))
		case workforce.ShiftPastDays:
			args.where("sh.date >= " + args.add(today.AddDate(0, 0, -f.Days)))
			args.where("sh.date < " + args.add(today))
		case workforce.ShiftForStore:
			args.where("a.store_id = " + args.add(f.ID))
		case workforce.ShiftForEmployee:
			args.where("a.employee_id = " + args.add(f.ID))
		case workforce.ShiftForAssignment:
			args.where("sh.assignment_id = " + args.add(f.ID))
		case workforce.ShiftForJob:
			args.where("EXISTS (SELECT 1 FROM shift_jobs sj WHERE sj.shift_id = sh.id AND sj.job_id = " + args.add(f.ID) + ")")
		}
	}

	var order string
	switch q.Ordering() {
	case workforce.ShiftOrderChronologicalDescending:
		order = "sh.date DESC, sh.start_time DESC, sh.id DESC"
	case workforce.ShiftOrderByStoreThenDate:
		order = "s.name, sh.date, sh.start_time, sh.id"
	case workforce.ShiftOrderByEmployeeThenDate:
		order = "e.last_name, e.first_name, sh.date, sh.start_time, sh.id"
	default:
		order = "sh.id"
	}

	query := `
        SELECT ` + shiftColumns + `
          FROM shifts sh
          JOIN assignments a ON a.id = sh.assignment_id
          JOIN employees e ON e.id = a.employee_id
          JOIN stores s ON s.id = a.store_id` + args.whereClause() + `
         ORDER BY ` + order + args.limitClause(q.Limit())
	return query, args.values, nil
}

const employeeColumns = `id, first_name, last_name, date_of_birth, ssn, phone, role, active, created_at, updated_at`

// buildEmployeeQuery は社員の検索条件を SQL に変換します。年齢条件は 18 年前の日付との比較になります。
func buildEmployeeQuery(q workforce.EmployeeQuery) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	threshold, _ := q.AdultThreshold()

	args := &queryArgs{}
	for _, f := range q.Filters() {
		switch f.Kind {
		case workforce.EmployeeYoungerThan18:
			args.where("date_of_birth > " + args.add(threshold))
		case workforce.EmployeeAdultsOnly:
			args.where("date_of_birth <= " + args.add(threshold))
		case workforce.EmployeeActive:
			args.where("active = TRUE")
		case workforce.EmployeeInactive:
			args.where("active = FALSE")
		case workforce.EmployeeByRole:
			args.where("role = " + args.add(string(f.Role)))
		}
	}

	order := "id"
	if q.Ordering() == workforce.EmployeeOrderAlphabetical {
		order = "last_name, first_name, id"
	}

	query := `
        SELECT ` + employeeColumns + `
          FROM employees` + args.whereClause() + `
         ORDER BY ` + order + args.limitClause(q.Limit())
	return query, args.values, nil
}

// buildCatalogQuery は店舗、職務、フレーバーの検索条件を SQL に変換します。
func buildCatalogQuery(table, columns string, q workforce.CatalogQuery) string {
	args := &queryArgs{}
	switch q.Filter() {
	case workforce.CatalogActive:
		args.where("active = TRUE")
	case workforce.CatalogInactive:
		args.where("active = FALSE")
	}

	order := "id"
	if q.IsAlphabetical() {
		order = "name, id"
	}

	return `
        SELECT ` + columns + `
          FROM ` + table + args.whereClause() + `
         ORDER BY ` + order
}
